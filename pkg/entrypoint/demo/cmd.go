package demo

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Azure/cosmos-rest/pkg/database"
	"github.com/Azure/cosmos-rest/pkg/entrypoint/config"
	"github.com/Azure/cosmos-rest/pkg/env"
	"github.com/Azure/cosmos-rest/pkg/util/uuid"
)

const flagUnique = "unique"

// NewCommand returns the cobra command for "demo".
func NewCommand() *cobra.Command {
	cc := &cobra.Command{
		Use:   "demo",
		Short: "Run every document operation once against the configured container",
		Long: `Creates three documents, patches and replaces the first, lists, gets and
queries them, runs a cross partition query and deletes everything again.
Each step is reported as SUCCESS or FAILED.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			unique, err := cmd.Flags().GetBool(flagUnique)
			if err != nil {
				return err
			}

			return config.RunWithDatabase(cmd, env.COMPONENT_DEMO, func(ctx context.Context, log *logrus.Entry, db *database.Database) error {
				return Run(ctx, log, cmd.OutOrStdout(), db, idSuffix(uuid.DefaultGenerator, unique))
			})
		},
	}

	cc.Flags().Bool(flagUnique, false, "suffix document ids with a random uuid")

	return cc
}

// idSuffix keeps repeated runs against a shared container apart.
func idSuffix(g uuid.Generator, unique bool) string {
	if !unique {
		return ""
	}

	return "-" + g.Generate()
}
