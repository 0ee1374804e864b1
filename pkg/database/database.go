package database

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
)

// Database represents the configured container
type Database struct {
	Client           cosmosdb.DocumentClient
	Documents        Documents
	PartitionKeyPath string
}

// NewDatabase returns a new Database
func NewDatabase(c cosmosdb.DocumentClient, partitionKeyPath string, maxItemCount int) *Database {
	if partitionKeyPath == "" {
		partitionKeyPath = cosmosdb.DefaultPartitionKeyPath
	}

	return &Database{
		Client:           c,
		Documents:        NewDocuments(c, partitionKeyPath, maxItemCount),
		PartitionKeyPath: partitionKeyPath,
	}
}
