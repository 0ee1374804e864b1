package keysprovider

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"
	"fmt"

	sdkcosmos "github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cosmos/armcosmos/v2"

	"github.com/Azure/cosmos-rest/pkg/util/azureclient/azuresdk/armcosmos"
)

// KeyInfo is a master key together with a message describing which key it is,
// suitable for logging.  The message never contains the key.
type KeyInfo struct {
	Value       string
	ContextInfo string
}

type DatabaseKeysProvider interface {
	GetPrimaryMasterKey() KeyInfo
	GetSecondaryMasterKey() KeyInfo
}

type databaseKeysProvider struct {
	keys sdkcosmos.DatabaseAccountsClientListKeysResponse
}

func NewDatabaseKeysProvider(keys sdkcosmos.DatabaseAccountsClientListKeysResponse) DatabaseKeysProvider {
	return &databaseKeysProvider{keys: keys}
}

func (p *databaseKeysProvider) GetPrimaryMasterKey() KeyInfo {
	return keyInfo(p.keys.PrimaryMasterKey, "PrimaryMasterKey")
}

func (p *databaseKeysProvider) GetSecondaryMasterKey() KeyInfo {
	return keyInfo(p.keys.SecondaryMasterKey, "SecondaryMasterKey")
}

func keyInfo(key *string, name string) KeyInfo {
	ki := KeyInfo{
		ContextInfo: fmt.Sprintf("Using %s to authenticate with CosmosDB", name),
	}
	if key != nil {
		ki.Value = *key
	}

	return ki
}

// FetchKeys lists the master keys of the database account through ARM.
func FetchKeys(ctx context.Context, databaseAccounts armcosmos.DatabaseAccountsClient, resourceGroup, accountName string) (DatabaseKeysProvider, error) {
	keys, err := databaseAccounts.ListKeys(ctx, resourceGroup, accountName, nil)
	if err != nil {
		return nil, fmt.Errorf("listing keys of database account %s/%s: %w", resourceGroup, accountName, err)
	}

	return NewDatabaseKeysProvider(keys), nil
}
