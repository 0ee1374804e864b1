package database

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	sdkcosmos "github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cosmos/armcosmos/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/types"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
	"github.com/Azure/cosmos-rest/pkg/database/keysprovider"
	"github.com/Azure/cosmos-rest/pkg/env"
	"github.com/Azure/cosmos-rest/pkg/metrics/noop"
	testdatabase "github.com/Azure/cosmos-rest/test/database"
	utilerror "github.com/Azure/cosmos-rest/test/util/error"
	testlog "github.com/Azure/cosmos-rest/test/util/log"
)

func TestNewDatabaseFromEnv(t *testing.T) {
	ctx := context.Background()

	s, err := testdatabase.NewServer(testMasterKey, "db1", "c1", "")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	keys := keysprovider.NewDatabaseKeysProvider(sdkcosmos.DatabaseAccountsClientListKeysResponse{
		DatabaseAccountListKeysResult: sdkcosmos.DatabaseAccountListKeysResult{
			PrimaryMasterKey:   to.Ptr("BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBA="),
			SecondaryMasterKey: to.Ptr(testMasterKey),
		},
	})

	for _, tt := range []struct {
		name      string
		vars      map[string]string
		fetchKeys KeysFetcher
		wantErr   string
		wantLogs  []map[string]types.GomegaMatcher
	}{
		{
			name: "nothing set",
			wantErr: `invalid configuration: environment variable "COSMOS_DATABASE_NAME" unset; ` +
				`environment variable "COSMOS_CONTAINER_NAME" unset; ` +
				`environment variable "COSMOS_KEY" unset; ` +
				`environment variable "COSMOS_ACCOUNT_NAME" unset`,
		},
		{
			name: "key fetch is missing a resource group",
			vars: map[string]string{
				env.EnvEndpoint:       s.URL,
				env.EnvDatabaseName:   "db1",
				env.EnvContainerName:  "c1",
				env.EnvSubscriptionID: "00000000-0000-0000-0000-000000000000",
			},
			wantErr: `invalid configuration: environment variable "AZURE_RESOURCE_GROUP" unset; ` +
				`environment variable "COSMOS_ACCOUNT_NAME" unset`,
		},
		{
			name: "invalid endpoint",
			vars: map[string]string{
				env.EnvEndpoint:      "not a url",
				env.EnvKey:           testMasterKey,
				env.EnvDatabaseName:  "db1",
				env.EnvContainerName: "c1",
			},
			wantErr: `invalid configuration: environment variable "COSMOS_ENDPOINT": invalid endpoint "not a url"`,
		},
		{
			name: "invalid key",
			vars: map[string]string{
				env.EnvEndpoint:      s.URL,
				env.EnvKey:           "not base64!",
				env.EnvDatabaseName:  "db1",
				env.EnvContainerName: "c1",
			},
			wantErr: "invalid master key: illegal base64 data at input byte 3",
		},
		{
			name: "key from the environment",
			vars: map[string]string{
				env.EnvEndpoint:      s.URL,
				env.EnvKey:           testMasterKey,
				env.EnvDatabaseName:  "db1",
				env.EnvContainerName: "c1",
			},
			wantLogs: []map[string]types.GomegaMatcher{
				{
					"level":     gomega.Equal(logrus.InfoLevel),
					"msg":       gomega.Equal("using container db1/c1 on " + s.URL),
					"component": gomega.Equal("database"),
				},
			},
		},
		{
			name: "key from ARM",
			vars: map[string]string{
				env.EnvEndpoint:       s.URL,
				env.EnvAccountName:    "acct",
				env.EnvDatabaseName:   "db1",
				env.EnvContainerName:  "c1",
				env.EnvSubscriptionID: "00000000-0000-0000-0000-000000000000",
				env.EnvResourceGroup:  "rg",
			},
			fetchKeys: func(ctx context.Context, subscriptionID, resourceGroup, accountName string) (keysprovider.DatabaseKeysProvider, error) {
				if subscriptionID != "00000000-0000-0000-0000-000000000000" || resourceGroup != "rg" || accountName != "acct" {
					return nil, errors.New("unexpected account")
				}
				return keys, nil
			},
			wantLogs: []map[string]types.GomegaMatcher{
				{
					"level": gomega.Equal(logrus.InfoLevel),
					"msg":   gomega.Equal("Using SecondaryMasterKey to authenticate with CosmosDB"),
				},
				{
					"level": gomega.Equal(logrus.InfoLevel),
					"msg":   gomega.Equal("using container db1/c1 on " + s.URL),
				},
			},
		},
		{
			name: "key fetch fails",
			vars: map[string]string{
				env.EnvAccountName:    "acct",
				env.EnvDatabaseName:   "db1",
				env.EnvContainerName:  "c1",
				env.EnvSubscriptionID: "00000000-0000-0000-0000-000000000000",
				env.EnvResourceGroup:  "rg",
			},
			fetchKeys: func(context.Context, string, string, string) (keysprovider.DatabaseKeysProvider, error) {
				return nil, errors.New("listing keys of database account rg/acct: forbidden")
			},
			wantErr: "listing keys of database account rg/acct: forbidden",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			h, log := testlog.New()

			cfg := viper.New()
			for k, v := range tt.vars {
				cfg.Set(k, v)
			}

			db, err := NewDatabaseFromEnv(ctx, env.NewCore(log, env.COMPONENT_CLI, cfg), &noop.Noop{}, tt.fetchKeys, &cosmosdb.ClientOptions{
				ClientOptions: azcore.ClientOptions{Transport: s.Client()},
			})
			utilerror.AssertErrorMessage(t, err, tt.wantErr)
			if err != nil {
				return
			}

			err = testlog.AssertLoggingOutput(h, tt.wantLogs)
			if err != nil {
				t.Error(err)
			}

			_, err = db.Documents.Create(ctx, &cosmosdb.Document{ID: "a", PartitionKey: "p"})
			if err != nil {
				t.Error(err)
			}
		})
	}
}

func TestNewDatabaseFromEnvDoesNotModifyOptions(t *testing.T) {
	ctx := context.Background()

	s, err := testdatabase.NewServer(testMasterKey, "db1", "c1", "/tenant")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	cfg := viper.New()
	cfg.Set(env.EnvEndpoint, s.URL)
	cfg.Set(env.EnvKey, testMasterKey)
	cfg.Set(env.EnvDatabaseName, "db1")
	cfg.Set(env.EnvContainerName, "c1")
	cfg.Set(env.EnvPartitionKeyPath, "/tenant")

	_, log := testlog.New()
	o := &cosmosdb.ClientOptions{
		ClientOptions: azcore.ClientOptions{Transport: s.Client()},
	}

	db, err := NewDatabaseFromEnv(ctx, env.NewCore(log, env.COMPONENT_CLI, cfg), &noop.Noop{}, nil, o)
	if err != nil {
		t.Fatal(err)
	}

	if o.PartitionKeyPath != "" {
		t.Errorf("options were modified: partition key path %q", o.PartitionKeyPath)
	}
	if db.PartitionKeyPath != "/tenant" {
		t.Errorf("got partition key path %q", db.PartitionKeyPath)
	}

	_, err = db.Documents.Create(ctx, &cosmosdb.Document{ID: "a", PartitionKey: "p"})
	if err != nil {
		t.Fatal(err)
	}

	if s.Document("p", "a")["tenant"] != "p" {
		t.Errorf("got %v", s.Document("p", "a"))
	}
}
