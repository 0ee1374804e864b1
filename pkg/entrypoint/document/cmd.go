package document

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ugorji/go/codec"

	"github.com/Azure/cosmos-rest/pkg/database"
	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
	"github.com/Azure/cosmos-rest/pkg/entrypoint/config"
	"github.com/Azure/cosmos-rest/pkg/env"
)

const (
	flagProperty       = "property"
	flagIfMatch        = "if-match"
	flagMaxItemCount   = "max-item-count"
	flagContinuation   = "continuation"
	flagPartitionKey   = "partition-key"
	flagCrossPartition = "cross-partition"
	flagParameter      = "parameter"
	flagNewID          = "new-id"
	flagCondition      = "condition"
)

// NewCommands returns one cobra command per document operation.
func NewCommands() []*cobra.Command {
	return []*cobra.Command{
		newUpsertCommand(),
		newGetCommand(),
		newListCommand(),
		newQueryCommand(),
		newReplaceCommand(),
		newPatchCommand(),
		newDeleteCommand(),
	}
}

type operation func(ctx context.Context, c cosmosdb.DocumentClient) (*cosmosdb.Response, error)

// run executes op against the configured container and prints the response
// body.
func run(cmd *cobra.Command, op operation) error {
	return config.RunWithDatabase(cmd, env.COMPONENT_CLI, func(ctx context.Context, log *logrus.Entry, db *database.Database) error {
		return execute(ctx, log, cmd.OutOrStdout(), db.Client, op)
	})
}

func execute(ctx context.Context, log *logrus.Entry, out io.Writer, c cosmosdb.DocumentClient, op operation) error {
	resp, err := op(ctx, c)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"status_code":    resp.StatusCode,
		"request_charge": resp.RequestCharge,
		"etag":           resp.ETag,
	}).Debug("response")

	if len(resp.Body) > 0 {
		fmt.Fprintf(out, "%s\n", resp.Body)
	}
	if resp.Continuation != "" {
		fmt.Fprintf(out, "continuation: %s\n", resp.Continuation)
	}

	return nil
}

func newUpsertCommand() *cobra.Command {
	cc := &cobra.Command{
		Use:   "upsert ID PARTITION_KEY",
		Short: "Create a document, or replace the document with the same id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := documentFromFlags(cmd, args[0], args[1])
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context, c cosmosdb.DocumentClient) (*cosmosdb.Response, error) {
				return c.Upsert(ctx, doc)
			})
		},
	}

	addPropertyFlag(cc)

	return cc
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID PARTITION_KEY",
		Short: "Read a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c cosmosdb.DocumentClient) (*cosmosdb.Response, error) {
				return c.Get(ctx, args[0], args[1])
			})
		},
	}
}

func newListCommand() *cobra.Command {
	cc := &cobra.Command{
		Use:   "list PARTITION_KEY",
		Short: "List one page of the documents in a partition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxItemCount, continuation, err := pagingFromFlags(cmd)
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context, c cosmosdb.DocumentClient) (*cosmosdb.Response, error) {
				return c.List(ctx, args[0], &cosmosdb.ListOptions{
					MaxItemCount: maxItemCount,
					Continuation: continuation,
				})
			})
		},
	}

	addPagingFlags(cc)

	return cc
}

func newQueryCommand() *cobra.Command {
	cc := &cobra.Command{
		Use:   "query QUERY",
		Short: "Run one page of a SQL query",
		Example: `  cosmosrest query 'SELECT * FROM c WHERE c.pk = @pk' --parameter @pk=pk1 --partition-key pk1
  cosmosrest query 'SELECT * FROM c' --cross-partition --max-item-count 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, o, crossPartition, err := queryFromFlags(cmd, args[0])
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context, c cosmosdb.DocumentClient) (*cosmosdb.Response, error) {
				if crossPartition {
					return c.QueryCrossPartition(ctx, q, o)
				}
				return c.Query(ctx, q, o)
			})
		},
	}

	addPagingFlags(cc)
	cc.Flags().String(flagPartitionKey, "", "partition to query")
	cc.Flags().Bool(flagCrossPartition, false, "query every partition")
	cc.Flags().StringArray(flagParameter, nil, "query parameter NAME=VALUE; may be repeated")

	return cc
}

func newReplaceCommand() *cobra.Command {
	cc := &cobra.Command{
		Use:   "replace ID PARTITION_KEY",
		Short: "Replace a document; the id may change, the partition key may not",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			newID, err := cmd.Flags().GetString(flagNewID)
			if err != nil {
				return err
			}
			if newID == "" {
				newID = args[0]
			}

			doc, err := documentFromFlags(cmd, newID, args[1])
			if err != nil {
				return err
			}

			o, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context, c cosmosdb.DocumentClient) (*cosmosdb.Response, error) {
				return c.Replace(ctx, args[0], args[1], doc, o)
			})
		},
	}

	addPropertyFlag(cc)
	cc.Flags().String(flagNewID, "", "id of the replacement document")
	cc.Flags().String(flagIfMatch, "", "only replace the document if its ETag matches")

	return cc
}

func newPatchCommand() *cobra.Command {
	cc := &cobra.Command{
		Use:   "patch ID PARTITION_KEY",
		Short: "Apply partial updates to a document",
		Example: `  cosmosrest patch id1 pk1 --set /someProperty=value-patched
  cosmosrest patch id1 pk1 --incr /count=1 --remove /obsolete`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}

			o, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context, c cosmosdb.DocumentClient) (*cosmosdb.Response, error) {
				return c.Patch(ctx, args[0], args[1], patch, o)
			})
		},
	}

	for _, op := range patchOps {
		if op == cosmosdb.PatchOperationRemove {
			cc.Flags().StringArray(string(op), nil, "remove PATH; may be repeated")
		} else {
			cc.Flags().StringArray(string(op), nil, fmt.Sprintf("%s PATH=VALUE; may be repeated", op))
		}
	}
	cc.Flags().String(flagCondition, "", `only patch if the predicate holds, e.g. "from c where c.count > 0"`)
	cc.Flags().String(flagIfMatch, "", "only patch the document if its ETag matches")

	return cc
}

func newDeleteCommand() *cobra.Command {
	cc := &cobra.Command{
		Use:   "delete ID PARTITION_KEY",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}

			return run(cmd, func(ctx context.Context, c cosmosdb.DocumentClient) (*cosmosdb.Response, error) {
				return c.Delete(ctx, args[0], args[1], o)
			})
		},
	}

	cc.Flags().String(flagIfMatch, "", "only delete the document if its ETag matches")

	return cc
}

func addPropertyFlag(cc *cobra.Command) {
	cc.Flags().StringArray(flagProperty, nil, "document property NAME=VALUE; VALUE is parsed as JSON if it can be; may be repeated")
}

func addPagingFlags(cc *cobra.Command) {
	cc.Flags().Int(flagMaxItemCount, 0, "page size; 0 lets the service decide")
	cc.Flags().String(flagContinuation, "", "continuation token returned by a previous call")
}

func documentFromFlags(cmd *cobra.Command, id, partitionKey string) (*cosmosdb.Document, error) {
	properties, err := cmd.Flags().GetStringArray(flagProperty)
	if err != nil {
		return nil, err
	}

	doc := &cosmosdb.Document{
		ID:           id,
		PartitionKey: partitionKey,
		Properties:   map[string]interface{}{},
	}

	for _, p := range properties {
		k, v, err := splitAssignment(p)
		if err != nil {
			return nil, err
		}
		doc.Properties[k] = v
	}

	return doc, nil
}

func pagingFromFlags(cmd *cobra.Command) (int, string, error) {
	maxItemCount, err := cmd.Flags().GetInt(flagMaxItemCount)
	if err != nil {
		return 0, "", err
	}

	continuation, err := cmd.Flags().GetString(flagContinuation)
	if err != nil {
		return 0, "", err
	}

	return maxItemCount, continuation, nil
}

func queryFromFlags(cmd *cobra.Command, text string) (*cosmosdb.Query, *cosmosdb.QueryOptions, bool, error) {
	maxItemCount, continuation, err := pagingFromFlags(cmd)
	if err != nil {
		return nil, nil, false, err
	}

	partitionKey, err := cmd.Flags().GetString(flagPartitionKey)
	if err != nil {
		return nil, nil, false, err
	}

	crossPartition, err := cmd.Flags().GetBool(flagCrossPartition)
	if err != nil {
		return nil, nil, false, err
	}

	if crossPartition && partitionKey != "" {
		return nil, nil, false, fmt.Errorf("--%s and --%s are mutually exclusive", flagCrossPartition, flagPartitionKey)
	}

	parameters, err := cmd.Flags().GetStringArray(flagParameter)
	if err != nil {
		return nil, nil, false, err
	}

	q := &cosmosdb.Query{Query: text}
	for _, p := range parameters {
		name, value, err := splitAssignment(p)
		if err != nil {
			return nil, nil, false, err
		}
		if !strings.HasPrefix(name, "@") {
			name = "@" + name
		}
		q.Parameters = append(q.Parameters, cosmosdb.QueryParameter{Name: name, Value: value})
	}

	return q, &cosmosdb.QueryOptions{
		PartitionKey: partitionKey,
		MaxItemCount: maxItemCount,
		Continuation: continuation,
	}, crossPartition, nil
}

var patchOps = []cosmosdb.PatchOperationType{
	cosmosdb.PatchOperationAdd,
	cosmosdb.PatchOperationSet,
	cosmosdb.PatchOperationReplace,
	cosmosdb.PatchOperationIncrement,
	cosmosdb.PatchOperationRemove,
}

// patchFromFlags collects the patch operations, grouped by op in the order of
// patchOps.
func patchFromFlags(cmd *cobra.Command) (*cosmosdb.Patch, error) {
	condition, err := cmd.Flags().GetString(flagCondition)
	if err != nil {
		return nil, err
	}

	patch := &cosmosdb.Patch{Condition: condition}

	for _, op := range patchOps {
		values, err := cmd.Flags().GetStringArray(string(op))
		if err != nil {
			return nil, err
		}

		for _, v := range values {
			if op == cosmosdb.PatchOperationRemove {
				patch.Operations = append(patch.Operations, cosmosdb.PatchOperation{Op: op, Path: v})
				continue
			}

			path, value, err := splitAssignment(v)
			if err != nil {
				return nil, err
			}
			patch.Operations = append(patch.Operations, cosmosdb.PatchOperation{Op: op, Path: path, Value: value})
		}
	}

	if len(patch.Operations) == 0 {
		return nil, fmt.Errorf("at least one of --add, --set, --replace, --incr or --remove is required")
	}

	return patch, nil
}

func optionsFromFlags(cmd *cobra.Command) (*cosmosdb.Options, error) {
	ifMatch, err := cmd.Flags().GetString(flagIfMatch)
	if err != nil {
		return nil, err
	}

	return &cosmosdb.Options{IfMatch: ifMatch}, nil
}

// splitAssignment splits NAME=VALUE.  VALUE is decoded as JSON if it is valid
// JSON, otherwise it is kept as a string.
func splitAssignment(s string) (string, interface{}, error) {
	k, v, found := strings.Cut(s, "=")
	if !found || k == "" {
		return "", nil, fmt.Errorf("%q is not of the form NAME=VALUE", s)
	}

	var value interface{}
	d := codec.NewDecoderBytes([]byte(v), cosmosdb.JSONHandle)
	if err := d.Decode(&value); err != nil || d.NumBytesRead() != len(v) {
		return k, v, nil
	}

	return k, value, nil
}
