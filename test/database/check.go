package database

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-test/deep"

	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
)

// Checker compares the documents stored by a Server with the expected
// documents, ignoring system properties.
type Checker struct {
	partitionKeyPath string
	documents        []*cosmosdb.Document
}

func NewChecker() *Checker {
	return &Checker{partitionKeyPath: cosmosdb.DefaultPartitionKeyPath}
}

func (f *Checker) WithPartitionKeyPath(partitionKeyPath string) *Checker {
	f.partitionKeyPath = partitionKeyPath
	return f
}

func (f *Checker) AddDocuments(docs ...*cosmosdb.Document) *Checker {
	f.documents = append(f.documents, docs...)
	return f
}

func (f *Checker) Check(s *Server) (errs []error) {
	all := s.Documents()
	for _, doc := range all {
		for k := range doc {
			if strings.HasPrefix(k, "_") {
				delete(doc, k)
			}
		}
	}

	expected := make([]map[string]interface{}, 0, len(f.documents))
	for _, doc := range f.documents {
		m, err := flatten(doc, f.partitionKeyPath)
		if err != nil {
			return []error{err}
		}
		expected = append(expected, m)
	}

	pkProperty := strings.TrimPrefix(f.partitionKeyPath, "/")
	sort.Slice(expected, func(i, j int) bool {
		pi, pj := fmt.Sprint(expected[i][pkProperty]), fmt.Sprint(expected[j][pkProperty])
		if pi != pj {
			return pi < pj
		}
		return fmt.Sprint(expected[i]["id"]) < fmt.Sprint(expected[j]["id"])
	})

	if len(all) != len(expected) {
		return []error{fmt.Errorf("documents length different, %d vs %d", len(all), len(expected))}
	}

	if len(all) == 0 {
		return nil
	}

	for _, i := range deep.Equal(all, expected) {
		errs = append(errs, errors.New(i))
	}

	return errs
}
