package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"fmt"
	"strings"
)

// Operation is a logical document operation.
type Operation string

const (
	OperationUpsert              Operation = "upsert"
	OperationGet                 Operation = "get"
	OperationList                Operation = "list"
	OperationQuery               Operation = "query"
	OperationQueryCrossPartition Operation = "querycrosspartition"
	OperationReplace             Operation = "replace"
	OperationPatch               Operation = "patch"
	OperationDelete              Operation = "delete"
)

// Document is an open JSON document.  Only ID and PartitionKey are interpreted
// by the client; Properties are sent as-is.
type Document struct {
	ID           string
	PartitionKey string
	Properties   map[string]interface{}
}

// partitionKeyProperty turns a partition key path such as "/pk" into the
// property name used in the document body.
func partitionKeyProperty(path string) string {
	return strings.TrimPrefix(path, "/")
}

// body flattens the document into the JSON object stored by the service.
func (d *Document) body(partitionKeyPath string) map[string]interface{} {
	m := make(map[string]interface{}, len(d.Properties)+2)
	for k, v := range d.Properties {
		m[k] = v
	}

	m["id"] = d.ID
	m[partitionKeyProperty(partitionKeyPath)] = d.PartitionKey

	return m
}

// DecodeDocument decodes a single document body as returned by the service.
// System properties (_rid, _etag, ...) are kept in Properties.
func DecodeDocument(b []byte, partitionKeyPath string) (*Document, error) {
	var m map[string]interface{}
	err := decodeJSON(JSONHandle, b, &m)
	if err != nil {
		return nil, err
	}

	return documentFromMap(m, partitionKeyPath), nil
}

func documentFromMap(m map[string]interface{}, partitionKeyPath string) *Document {
	doc := &Document{Properties: map[string]interface{}{}}
	pkProperty := partitionKeyProperty(partitionKeyPath)

	for k, v := range m {
		switch k {
		case "id":
			doc.ID = fmt.Sprint(v)
		case pkProperty:
			doc.PartitionKey = fmt.Sprint(v)
		default:
			doc.Properties[k] = v
		}
	}

	return doc
}

// DocumentList is the envelope returned by list and query operations.
type DocumentList struct {
	ResourceID string                   `json:"_rid,omitempty"`
	Documents  []map[string]interface{} `json:"Documents"`
	Count      int                      `json:"_count,omitempty"`
}

// QueryParameter is a named query parameter, e.g. {"name": "@pk", "value": "pk1"}.
type QueryParameter struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Query is the body of a query request.
type Query struct {
	Query      string           `json:"query"`
	Parameters []QueryParameter `json:"parameters"`
}

// PatchOperationType is the op of a single patch operation.
type PatchOperationType string

const (
	PatchOperationAdd       PatchOperationType = "add"
	PatchOperationSet       PatchOperationType = "set"
	PatchOperationReplace   PatchOperationType = "replace"
	PatchOperationRemove    PatchOperationType = "remove"
	PatchOperationIncrement PatchOperationType = "incr"
)

// PatchOperation is one entry of a patch body.  Value is ignored for remove.
type PatchOperation struct {
	Op    PatchOperationType `json:"op"`
	Path  string             `json:"path"`
	Value interface{}        `json:"value"`
}

// Patch is the body of a patch request.  Condition is an optional
// "from c where ..." predicate evaluated by the service.
type Patch struct {
	Condition  string           `json:"condition,omitempty"`
	Operations []PatchOperation `json:"operations"`
}

// body renders the patch envelope.  Remove operations carry no value; every
// other op keeps its value even when it is a zero value.
func (p *Patch) body() map[string]interface{} {
	ops := make([]map[string]interface{}, 0, len(p.Operations))
	for _, op := range p.Operations {
		o := map[string]interface{}{
			"op":   string(op.Op),
			"path": op.Path,
		}
		if op.Op != PatchOperationRemove {
			o["value"] = op.Value
		}
		ops = append(ops, o)
	}

	b := map[string]interface{}{
		"operations": ops,
	}
	if p.Condition != "" {
		b["condition"] = p.Condition
	}

	return b
}

func (p *Patch) validate() error {
	if p == nil || len(p.Operations) == 0 {
		return fmt.Errorf("%w: patch requires at least one operation", ErrInvalidArgument)
	}

	for i, op := range p.Operations {
		switch op.Op {
		case PatchOperationAdd, PatchOperationSet, PatchOperationReplace, PatchOperationRemove, PatchOperationIncrement:
		default:
			return fmt.Errorf("%w: patch operation %d: unsupported op %q", ErrInvalidArgument, i, op.Op)
		}

		if !strings.HasPrefix(op.Path, "/") {
			return fmt.Errorf("%w: patch operation %d: path %q must start with '/'", ErrInvalidArgument, i, op.Path)
		}
	}

	return nil
}
