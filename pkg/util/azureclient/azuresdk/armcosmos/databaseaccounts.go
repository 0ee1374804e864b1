package armcosmos

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	sdkcosmos "github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cosmos/armcosmos/v2"
)

//go:generate go run go.uber.org/mock/mockgen -destination=../../../mocks/azureclient/azuresdk/$GOPACKAGE/$GOPACKAGE.go github.com/Azure/cosmos-rest/pkg/util/azureclient/azuresdk/$GOPACKAGE DatabaseAccountsClient

// DatabaseAccountsClient is a minimal interface for Azure DatabaseAccountsClient
type DatabaseAccountsClient interface {
	ListKeys(ctx context.Context, resourceGroupName string, accountName string, options *sdkcosmos.DatabaseAccountsClientListKeysOptions) (sdkcosmos.DatabaseAccountsClientListKeysResponse, error)
}

type databaseAccountsClient struct {
	*sdkcosmos.DatabaseAccountsClient
}

var _ DatabaseAccountsClient = &databaseAccountsClient{}

// NewDatabaseAccountsClient creates a new DatabaseAccountsClient
func NewDatabaseAccountsClient(subscriptionID string, credential azcore.TokenCredential, options *arm.ClientOptions) (DatabaseAccountsClient, error) {
	clientFactory, err := sdkcosmos.NewClientFactory(subscriptionID, credential, options)
	if err != nil {
		return nil, err
	}
	return &databaseAccountsClient{DatabaseAccountsClient: clientFactory.NewDatabaseAccountsClient()}, nil
}
