package database

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"strings"

	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
)

// Fixture seeds a Server with documents.
type Fixture struct {
	partitionKeyPath string
	documents        []*cosmosdb.Document
}

func NewFixture() *Fixture {
	return &Fixture{partitionKeyPath: cosmosdb.DefaultPartitionKeyPath}
}

func (f *Fixture) WithPartitionKeyPath(partitionKeyPath string) *Fixture {
	f.partitionKeyPath = partitionKeyPath
	return f
}

func (f *Fixture) AddDocuments(docs ...*cosmosdb.Document) *Fixture {
	f.documents = append(f.documents, docs...)
	return f
}

// Create stores the fixture's documents in s.
func (f *Fixture) Create(s *Server) error {
	for _, doc := range f.documents {
		m, err := flatten(doc, f.partitionKeyPath)
		if err != nil {
			return err
		}

		s.Put(m)
	}

	return nil
}

// flatten renders doc the way it is stored, with JSON types.
func flatten(doc *cosmosdb.Document, partitionKeyPath string) (map[string]interface{}, error) {
	m := map[string]interface{}{}
	for k, v := range doc.Properties {
		m[k] = v
	}
	m["id"] = doc.ID
	m[strings.TrimPrefix(partitionKeyPath, "/")] = doc.PartitionKey

	b, err := encode(m)
	if err != nil {
		return nil, err
	}

	var out map[string]interface{}
	err = decode(b, &out)
	return out, err
}
