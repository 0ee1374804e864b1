package database

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"
	"fmt"

	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
)

// maxPages bounds ListAll and QueryAll.
const maxPages = 1000

// Documents is the database interface for the documents of one container.
// Unlike cosmosdb.DocumentClient it decodes responses, follows continuation
// tokens and retries read-modify-write cycles which lose an ETag race.
type Documents interface {
	Create(context.Context, *cosmosdb.Document) (*cosmosdb.Document, error)
	Get(ctx context.Context, id, partitionKey string) (*cosmosdb.Document, error)
	Update(context.Context, *cosmosdb.Document) (*cosmosdb.Document, error)
	Patch(ctx context.Context, id, partitionKey string, f func(*cosmosdb.Document) error) (*cosmosdb.Document, error)
	PatchOperations(ctx context.Context, id, partitionKey string, patch *cosmosdb.Patch) (*cosmosdb.Document, error)
	Delete(context.Context, *cosmosdb.Document) error
	ListAll(ctx context.Context, partitionKey string) ([]*cosmosdb.Document, error)
	QueryAll(ctx context.Context, partitionKey string, q *cosmosdb.Query) ([]*cosmosdb.Document, error)
}

type documents struct {
	c                cosmosdb.DocumentClient
	partitionKeyPath string
	maxItemCount     int
}

// NewDocuments returns a new Documents.  maxItemCount is the page size used by
// ListAll and QueryAll; <= 0 lets the service decide.
func NewDocuments(c cosmosdb.DocumentClient, partitionKeyPath string, maxItemCount int) Documents {
	if partitionKeyPath == "" {
		partitionKeyPath = cosmosdb.DefaultPartitionKeyPath
	}

	return &documents{
		c:                c,
		partitionKeyPath: partitionKeyPath,
		maxItemCount:     maxItemCount,
	}
}

// Create upserts doc.
func (d *documents) Create(ctx context.Context, doc *cosmosdb.Document) (*cosmosdb.Document, error) {
	resp, err := d.c.Upsert(ctx, doc)
	if err != nil {
		return nil, err
	}

	return resp.Document(d.partitionKeyPath)
}

func (d *documents) Get(ctx context.Context, id, partitionKey string) (*cosmosdb.Document, error) {
	resp, err := d.c.Get(ctx, id, partitionKey)
	if err != nil {
		return nil, err
	}

	return resp.Document(d.partitionKeyPath)
}

// Update replaces doc, conditional on the ETag it was read with.
func (d *documents) Update(ctx context.Context, doc *cosmosdb.Document) (*cosmosdb.Document, error) {
	resp, err := d.c.Replace(ctx, doc.ID, doc.PartitionKey, doc, &cosmosdb.Options{IfMatch: ETag(doc)})
	if err != nil {
		return nil, err
	}

	return resp.Document(d.partitionKeyPath)
}

// Patch reads the document, applies f and writes it back.  The cycle is
// repeated if another writer got there first.
func (d *documents) Patch(ctx context.Context, id, partitionKey string, f func(*cosmosdb.Document) error) (*cosmosdb.Document, error) {
	var doc *cosmosdb.Document

	err := cosmosdb.RetryOnPreconditionFailed(func() (err error) {
		doc, err = d.Get(ctx, id, partitionKey)
		if err != nil {
			return
		}

		err = f(doc)
		if err != nil {
			return
		}

		if doc.ID != id || doc.PartitionKey != partitionKey {
			return fmt.Errorf("patch must not change the id or partition key of %s", id)
		}

		doc, err = d.Update(ctx, doc)
		return
	})

	return doc, err
}

// PatchOperations sends patch as a partial document update.
func (d *documents) PatchOperations(ctx context.Context, id, partitionKey string, patch *cosmosdb.Patch) (*cosmosdb.Document, error) {
	resp, err := d.c.Patch(ctx, id, partitionKey, patch, nil)
	if err != nil {
		return nil, err
	}

	return resp.Document(d.partitionKeyPath)
}

func (d *documents) Delete(ctx context.Context, doc *cosmosdb.Document) error {
	_, err := d.c.Delete(ctx, doc.ID, doc.PartitionKey, nil)
	return err
}

// ListAll returns every document in partitionKey.
func (d *documents) ListAll(ctx context.Context, partitionKey string) ([]*cosmosdb.Document, error) {
	return d.all(func(continuation string) (*cosmosdb.Response, error) {
		return d.c.List(ctx, partitionKey, &cosmosdb.ListOptions{
			MaxItemCount: d.maxItemCount,
			Continuation: continuation,
		})
	})
}

// QueryAll returns every result of q.  An empty partitionKey queries all
// partitions.
func (d *documents) QueryAll(ctx context.Context, partitionKey string, q *cosmosdb.Query) ([]*cosmosdb.Document, error) {
	return d.all(func(continuation string) (*cosmosdb.Response, error) {
		o := &cosmosdb.QueryOptions{
			PartitionKey: partitionKey,
			MaxItemCount: d.maxItemCount,
			Continuation: continuation,
		}

		if partitionKey == "" {
			return d.c.QueryCrossPartition(ctx, q, o)
		}
		return d.c.Query(ctx, q, o)
	})
}

func (d *documents) all(next func(string) (*cosmosdb.Response, error)) ([]*cosmosdb.Document, error) {
	var docs []*cosmosdb.Document
	var continuation string

	for i := 0; i < maxPages; i++ {
		resp, err := next(continuation)
		if err != nil {
			return nil, err
		}

		page, err := resp.Documents(d.partitionKeyPath)
		if err != nil {
			return nil, err
		}
		docs = append(docs, page...)

		continuation = resp.Continuation
		if continuation == "" {
			return docs, nil
		}
	}

	return nil, fmt.Errorf("read more than %d pages", maxPages)
}

// ETag returns the _etag system property of doc, or "".
func ETag(doc *cosmosdb.Document) string {
	if doc == nil {
		return ""
	}

	etag, _ := doc.Properties["_etag"].(string)
	return etag
}
