package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"fmt"
	"strings"
)

// ResourceKind is the protocol-level type of a resource.  It is signed as the
// second line of the authorization payload and is independent of how deep the
// accompanying ResourcePath is: every document operation, whether it addresses
// the container or a single item, uses ResourceKindDocument.
type ResourceKind string

const (
	ResourceKindDatabase  ResourceKind = "dbs"
	ResourceKindContainer ResourceKind = "colls"
	ResourceKindDocument  ResourceKind = "docs"
)

func (k ResourceKind) String() string {
	return string(k)
}

// ResourcePath is a slash-delimited resource link of the form
// dbs/{db}[/colls/{coll}[/docs/{id}]].  It never has a leading or trailing
// slash.
type ResourcePath string

func (p ResourcePath) String() string {
	return string(p)
}

// BuildDatabasePath returns dbs/{database}.
func BuildDatabasePath(database string) (ResourcePath, error) {
	if err := validateSegment("database", database); err != nil {
		return "", err
	}

	return ResourcePath("dbs/" + database), nil
}

// BuildCollectionPath returns the container-level link dbs/{database}/colls/{container},
// used when creating, listing or querying documents.
func BuildCollectionPath(database, container string) (ResourcePath, error) {
	db, err := BuildDatabasePath(database)
	if err != nil {
		return "", err
	}

	if err := validateSegment("container", container); err != nil {
		return "", err
	}

	return ResourcePath(string(db) + "/colls/" + container), nil
}

// BuildItemPath returns the item-level link dbs/{database}/colls/{container}/docs/{id}.
func BuildItemPath(database, container, id string) (ResourcePath, error) {
	coll, err := BuildCollectionPath(database, container)
	if err != nil {
		return "", err
	}

	if err := validateSegment("document id", id); err != nil {
		return "", err
	}

	return ResourcePath(string(coll) + "/docs/" + id), nil
}

func validateSegment(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidArgument, name)
	}

	if strings.Contains(value, "/") {
		return fmt.Errorf("%w: %s %q must not contain '/'", ErrInvalidArgument, name, value)
	}

	return nil
}
