package main

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Azure/cosmos-rest/pkg/entrypoint/config"
	"github.com/Azure/cosmos-rest/pkg/entrypoint/demo"
	"github.com/Azure/cosmos-rest/pkg/entrypoint/document"
)

var (
	gitCommit = "unknown"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cosmosrest",
		Short: "Cosmos DB document operations over the REST API, signed with the account master key",
		Long: `cosmosrest runs document operations against one Cosmos DB container.

Configuration is read from the environment, or from the file given with
--config: COSMOS_ACCOUNT_NAME (or COSMOS_ENDPOINT), COSMOS_KEY,
COSMOS_DATABASE_NAME and COSMOS_CONTAINER_NAME.  If COSMOS_KEY is unset the
key is listed through ARM using AZURE_SUBSCRIPTION_ID and
AZURE_RESOURCE_GROUP.`,
		Version:      gitCommit,
		SilenceUsage: true,
	}

	config.AddCommonFlags(root)

	root.AddCommand(demo.NewCommand())
	root.AddCommand(document.NewCommands()...)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}
