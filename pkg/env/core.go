package env

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type ServiceComponent string

const (
	COMPONENT_CLI  ServiceComponent = "CLI"
	COMPONENT_DEMO ServiceComponent = "DEMO"
)

// Core collects the configuration shared by every entrypoint.
type Core interface {
	GetEnv(string) string
	GetInt(string) int
	ValidateVars(...string) error

	Component() string
	Logger() *logrus.Entry
}

type core struct {
	cfg *viper.Viper

	component    ServiceComponent
	componentLog *logrus.Entry
}

func (c *core) Component() string {
	return string(c.component)
}

func (c *core) Logger() *logrus.Entry {
	return c.componentLog
}

func (c *core) GetEnv(name string) string {
	return c.cfg.GetString(name)
}

func (c *core) GetInt(name string) int {
	return c.cfg.GetInt(name)
}

func (c *core) ValidateVars(vars ...string) error {
	return ValidateVars(c.cfg, vars...)
}

func NewCore(log *logrus.Entry, component ServiceComponent, cfg *viper.Viper) Core {
	return &core{
		cfg: cfg,

		component:    component,
		componentLog: log.WithField("component", strings.ReplaceAll(strings.ToLower(string(component)), "_", "-")),
	}
}
