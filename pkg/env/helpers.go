package env

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
)

// DBAccountName returns the database account name.
func DBAccountName(c Core) (string, error) {
	if err := c.ValidateVars(EnvAccountName); err != nil {
		return "", err
	}

	return c.GetEnv(EnvAccountName), nil
}

// DBName returns the database name.
func DBName(c Core) (string, error) {
	if err := c.ValidateVars(EnvDatabaseName); err != nil {
		return "", err
	}

	return c.GetEnv(EnvDatabaseName), nil
}

func ContainerName(c Core) (string, error) {
	if err := c.ValidateVars(EnvContainerName); err != nil {
		return "", err
	}

	return c.GetEnv(EnvContainerName), nil
}

// DBEndpoint returns COSMOS_ENDPOINT if set (e.g. for the emulator), otherwise
// https://{account}.{dnsSuffix}.
func DBEndpoint(c Core) (string, error) {
	if endpoint := c.GetEnv(EnvEndpoint); endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", fmt.Errorf("environment variable %q: invalid endpoint %q", EnvEndpoint, endpoint)
		}

		return strings.TrimSuffix(endpoint, "/"), nil
	}

	account, err := DBAccountName(c)
	if err != nil {
		return "", err
	}

	return cosmosdb.Endpoint(account, c.GetEnv(EnvDNSSuffix)), nil
}
