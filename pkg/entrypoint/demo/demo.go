package demo

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Azure/cosmos-rest/pkg/database"
	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
)

type item struct {
	id           string
	pk           string
	someProperty string
}

func (i *item) document() *cosmosdb.Document {
	return &cosmosdb.Document{
		ID:           i.id,
		PartitionKey: i.pk,
		Properties: map[string]interface{}{
			"someProperty": i.someProperty,
		},
	}
}

type result struct {
	resp *cosmosdb.Response
	err  error
}

type runner struct {
	log  *logrus.Entry
	out  io.Writer
	c    cosmosdb.DocumentClient
	errs *multierror.Error
}

// Run replays the document lifecycle against db, writing a report of every
// step to out.  suffix is appended to every document id.  The returned error
// lists the failed steps.
func Run(ctx context.Context, log *logrus.Entry, out io.Writer, db *database.Database, suffix string) error {
	r := &runner{
		log: log,
		out: out,
		c:   db.Client,
	}

	item1 := &item{id: "id1" + suffix, pk: "pk1", someProperty: "value1"}
	item11 := &item{id: "id11" + suffix, pk: "pk1", someProperty: "value-11"}
	item2 := &item{id: "id2" + suffix, pk: "pk1", someProperty: "value2"}
	item3 := &item{id: "id3" + suffix, pk: "pk2", someProperty: "value3"}

	r.create(ctx, item1, item2, item3)

	r.report(fmt.Sprintf("Patch Document with id '%s'", item1.id), outcome(r.c.Patch(ctx, item1.id, item1.pk, &cosmosdb.Patch{
		Operations: []cosmosdb.PatchOperation{
			{Op: cosmosdb.PatchOperationSet, Path: "/someProperty", Value: "value-patched"},
		},
	}, nil)))

	// the partition key cannot change on replace, the id can
	r.report(fmt.Sprintf("Replace Document with id '%s'", item1.id), outcome(r.c.Replace(ctx, item1.id, item1.pk, item11.document(), nil)))

	r.report(fmt.Sprintf("List Documents for partitionKey %s", item1.pk), outcome(r.c.List(ctx, item1.pk, nil)))
	r.report(fmt.Sprintf("Get Document by id: '%s'", item2.id), outcome(r.c.Get(ctx, item2.id, item2.pk)))

	r.report("Query", outcome(r.c.Query(ctx, &cosmosdb.Query{
		Query: "SELECT * FROM c WHERE c.pk = @pk",
		Parameters: []cosmosdb.QueryParameter{
			{Name: "@pk", Value: item1.pk},
		},
	}, &cosmosdb.QueryOptions{PartitionKey: item1.pk})))

	r.report("Cross Partition Query", outcome(r.c.QueryCrossPartition(ctx, &cosmosdb.Query{
		Query: "SELECT * FROM c",
	}, &cosmosdb.QueryOptions{MaxItemCount: 2})))

	for _, i := range []*item{item1, item11, item2, item3} {
		r.delete(ctx, i)
	}

	return r.errs.ErrorOrNil()
}

func outcome(resp *cosmosdb.Response, err error) *result {
	return &result{resp: resp, err: err}
}

// create upserts items concurrently and reports them in order.
func (r *runner) create(ctx context.Context, items ...*item) {
	results := make([]*result, len(items))

	g := &errgroup.Group{}
	for i, it := range items {
		g.Go(func() error {
			results[i] = outcome(r.c.Upsert(ctx, it.document()))
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		r.report("Create Document", res)
	}
}

func (r *runner) delete(ctx context.Context, i *item) {
	_, err := r.c.Delete(ctx, i.id, i.pk, nil)
	fmt.Fprintf(r.out, "Deleted item with id '%s': %t\n", i.id, err == nil)

	// id1 no longer exists once it has been replaced
	if err != nil && !cosmosdb.IsErrorStatusCode(err, http.StatusNotFound) {
		r.fail(fmt.Sprintf("Delete Document with id '%s'", i.id), err)
	}
}

func (r *runner) report(step string, res *result) {
	var cerr *cosmosdb.Error

	switch {
	case res.err == nil:
		fmt.Fprintf(r.out, "%s: SUCCESS\n    %s\n\n", step, res.resp.Body)
		if res.resp.Continuation != "" {
			r.log.Infof("%s: more results available", step)
		}

	case errors.As(res.err, &cerr):
		fmt.Fprintf(r.out, "%s: FAILED -> %d: %s.\n    %s\n\n", step, cerr.StatusCode, cerr.Status, cerr.Body)
		r.fail(step, res.err)

	default:
		fmt.Fprintf(r.out, "%s: FAILED -> %v\n\n", step, res.err)
		r.fail(step, res.err)
	}
}

func (r *runner) fail(step string, err error) {
	r.errs = multierror.Append(r.errs, fmt.Errorf("%s: %w", step, err))
}
