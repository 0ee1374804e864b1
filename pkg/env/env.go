package env

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

const (
	EnvAccountName      = "COSMOS_ACCOUNT_NAME"
	EnvKey              = "COSMOS_KEY"
	EnvDatabaseName     = "COSMOS_DATABASE_NAME"
	EnvContainerName    = "COSMOS_CONTAINER_NAME"
	EnvEndpoint         = "COSMOS_ENDPOINT"
	EnvDNSSuffix        = "COSMOS_DNS_SUFFIX"
	EnvPartitionKeyPath = "COSMOS_PARTITION_KEY_PATH"
	EnvMaxItemCount     = "COSMOS_MAX_ITEM_COUNT"
	EnvStatsdSocket     = "COSMOS_STATSD_SOCKET"
	EnvSubscriptionID   = "AZURE_SUBSCRIPTION_ID"
	EnvResourceGroup    = "AZURE_RESOURCE_GROUP"
	EnvLogLevel         = "LOG_LEVEL"
)

// legacyNames are the colon separated names which are also accepted for the
// required settings, e.g. Cosmos:Key.
var legacyNames = map[string]string{
	EnvAccountName:   "Cosmos:AccountName",
	EnvKey:           "Cosmos:Key",
	EnvDatabaseName:  "Cosmos:DatabaseName",
	EnvContainerName: "Cosmos:ContainerName",
}

// NewConfig returns the configuration read from the environment and, if path
// is not empty, from the config file at path.  Environment variables take
// precedence over the file.
func NewConfig(path string) (*viper.Viper, error) {
	cfg := viper.New()
	cfg.SetEnvKeyReplacer(strings.NewReplacer(":", "_"))
	cfg.AutomaticEnv()

	for key, legacy := range legacyNames {
		err := cfg.BindEnv(key, key, legacy)
		if err != nil {
			return nil, err
		}
	}

	if path != "" {
		cfg.SetConfigFile(path)

		err := cfg.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	return cfg, nil
}

// ValidateVars returns an error listing every var which is unset or empty in
// cfg.
func ValidateVars(cfg *viper.Viper, vars ...string) error {
	var err error

	for _, v := range vars {
		if strings.TrimSpace(cfg.GetString(v)) == "" {
			err = multierror.Append(err, fmt.Errorf("environment variable %q unset", v))
		}
	}

	if merr, ok := err.(*multierror.Error); ok {
		merr.ErrorFormat = listFormat
	}

	return err
}

func listFormat(errs []error) string {
	s := make([]string, 0, len(errs))
	for _, err := range errs {
		s = append(s, err.Error())
	}

	return strings.Join(s, "; ")
}
