package database

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
	"github.com/Azure/cosmos-rest/pkg/database/keysprovider"
	"github.com/Azure/cosmos-rest/pkg/env"
	"github.com/Azure/cosmos-rest/pkg/metrics"
	"github.com/Azure/cosmos-rest/pkg/util/azureclient/azuresdk/armcosmos"
)

// KeysFetcher returns the master keys of a database account.
type KeysFetcher func(ctx context.Context, subscriptionID, resourceGroup, accountName string) (keysprovider.DatabaseKeysProvider, error)

// FetchKeys lists the keys of the database account through ARM, using the
// default Azure credential chain.
func FetchKeys(ctx context.Context, subscriptionID, resourceGroup, accountName string) (keysprovider.DatabaseKeysProvider, error) {
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}

	databaseAccounts, err := armcosmos.NewDatabaseAccountsClient(subscriptionID, credential, nil)
	if err != nil {
		return nil, err
	}

	return keysprovider.FetchKeys(ctx, databaseAccounts, resourceGroup, accountName)
}

// NewDatabaseFromEnv creates a Database from the environment configuration.
// Every missing setting is reported at once, before any request is made.  If
// COSMOS_KEY is unset the key is fetched with fetchKeys, which requires
// AZURE_SUBSCRIPTION_ID and AZURE_RESOURCE_GROUP.
func NewDatabaseFromEnv(ctx context.Context, _env env.Core, m metrics.Emitter, fetchKeys KeysFetcher, o *cosmosdb.ClientOptions) (*Database, error) {
	log := _env.Logger().WithField("component", "database")

	if err := validate(_env); err != nil {
		return nil, fmt.Errorf("%w: %v", cosmosdb.ErrInvalidConfiguration, err)
	}

	endpoint, err := env.DBEndpoint(_env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cosmosdb.ErrInvalidConfiguration, err)
	}

	dbName, err := env.DBName(_env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cosmosdb.ErrInvalidConfiguration, err)
	}

	containerName, err := env.ContainerName(_env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cosmosdb.ErrInvalidConfiguration, err)
	}

	masterKey := _env.GetEnv(env.EnvKey)
	if masterKey == "" {
		if fetchKeys == nil {
			fetchKeys = FetchKeys
		}

		accountName, err := env.DBAccountName(_env)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cosmosdb.ErrInvalidConfiguration, err)
		}

		keys, err := fetchKeys(ctx, _env.GetEnv(env.EnvSubscriptionID), _env.GetEnv(env.EnvResourceGroup), accountName)
		if err != nil {
			return nil, err
		}

		keyInfo := keys.GetSecondaryMasterKey()
		log.Info(keyInfo.ContextInfo)
		masterKey = keyInfo.Value
	}

	authorizer, err := cosmosdb.NewMasterKeyAuthorizer(masterKey)
	if err != nil {
		return nil, err
	}

	var opts cosmosdb.ClientOptions
	if o != nil {
		opts = *o
	}
	if opts.PartitionKeyPath == "" {
		opts.PartitionKeyPath = _env.GetEnv(env.EnvPartitionKeyPath)
	}

	c, err := cosmosdb.NewDocumentClient(log, m, endpoint, authorizer, dbName, containerName, &opts)
	if err != nil {
		return nil, err
	}

	log.Infof("using container %s/%s on %s", dbName, containerName, endpoint)

	return NewDatabase(c, opts.PartitionKeyPath, _env.GetInt(env.EnvMaxItemCount)), nil
}

func validate(_env env.Core) error {
	vars := []string{
		env.EnvDatabaseName,
		env.EnvContainerName,
	}

	needsAccount := _env.GetEnv(env.EnvEndpoint) == ""

	if _env.GetEnv(env.EnvKey) == "" {
		if _env.GetEnv(env.EnvSubscriptionID) == "" && _env.GetEnv(env.EnvResourceGroup) == "" {
			vars = append(vars, env.EnvKey)
		} else {
			vars = append(vars, env.EnvSubscriptionID, env.EnvResourceGroup)
			needsAccount = true
		}
	}

	if needsAccount {
		vars = append(vars, env.EnvAccountName)
	}

	return _env.ValidateVars(vars...)
}
