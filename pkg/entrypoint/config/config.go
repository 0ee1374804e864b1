package config

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Azure/cosmos-rest/pkg/database"
	"github.com/Azure/cosmos-rest/pkg/env"
	utillog "github.com/Azure/cosmos-rest/pkg/util/log"
)

const (
	FlagConfig         = "config"
	FlagLogLevel       = "log-level"
	FlagMetricsAddress = "metrics-address"
)

// Common is the configuration shared by every command.
type Common struct {
	ConfigFile     string
	LogLevel       string
	MetricsAddress string

	Viper *viper.Viper
}

// AddCommonFlags registers the persistent flags read by CommonConfigFromCmd.
func AddCommonFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagConfig, "", "config file providing the COSMOS_* settings (yaml, json or toml)")
	cmd.PersistentFlags().String(FlagLogLevel, "", "log level; defaults to LOG_LEVEL, then info")
	cmd.PersistentFlags().String(FlagMetricsAddress, "", "serve prometheus metrics on this address, e.g. :9090")
}

// CommonConfigFromCmd reads the common flags of cmd and loads the
// configuration they point at.
func CommonConfigFromCmd(cmd *cobra.Command) (Common, error) {
	var c Common
	var err error

	c.ConfigFile, err = cmd.Flags().GetString(FlagConfig)
	if err != nil {
		return c, err
	}

	c.LogLevel, err = cmd.Flags().GetString(FlagLogLevel)
	if err != nil {
		return c, err
	}

	c.MetricsAddress, err = cmd.Flags().GetString(FlagMetricsAddress)
	if err != nil {
		return c, err
	}

	c.Viper, err = env.NewConfig(c.ConfigFile)
	if err != nil {
		return c, err
	}

	if c.LogLevel == "" {
		c.LogLevel = c.Viper.GetString(env.EnvLogLevel)
	}

	return c, nil
}

// RunFunc is the body of a command which talks to the configured container.
type RunFunc func(ctx context.Context, log *logrus.Entry, db *database.Database) error

// RunWithDatabase wires logging, metrics and the database for cmd, then calls
// f.
func RunWithDatabase(cmd *cobra.Command, component env.ServiceComponent, f RunFunc) error {
	c, err := CommonConfigFromCmd(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := utillog.GetLogger(c.LogLevel)
	_env := env.NewCore(log, component, c.Viper)

	m, closeMetrics, err := c.NewEmitter(_env)
	if err != nil {
		return err
	}
	defer closeMetrics()

	db, err := database.NewDatabaseFromEnv(ctx, _env, m, nil, nil)
	if err != nil {
		return err
	}

	return f(ctx, _env.Logger(), db)
}
