package config

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Azure/cosmos-rest/pkg/env"
	"github.com/Azure/cosmos-rest/pkg/metrics"
	"github.com/Azure/cosmos-rest/pkg/metrics/noop"
	"github.com/Azure/cosmos-rest/pkg/metrics/prometheus"
	"github.com/Azure/cosmos-rest/pkg/metrics/statsd"
	"github.com/Azure/cosmos-rest/pkg/util/recover"
)

const metricsNamespace = "cosmosrest"

// NewEmitter returns the metrics emitter selected by the configuration:
// statsd if COSMOS_STATSD_SOCKET is set, otherwise prometheus if
// --metrics-address is set, otherwise a no-op.  The returned func releases
// the emitter.
func (c *Common) NewEmitter(_env env.Core) (metrics.Emitter, func(), error) {
	log := _env.Logger().WithField("component", "metrics")

	if socket := _env.GetEnv(env.EnvStatsdSocket); socket != "" {
		s, err := statsd.New(log, metricsNamespace, socket)
		if err != nil {
			return nil, nil, err
		}

		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn(err)
			}
		}, nil
	}

	if c.MetricsAddress != "" {
		p := prometheus.New(log)

		l, err := net.Listen("tcp", c.MetricsAddress)
		if err != nil {
			return nil, nil, err
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", p.Handler())

		s := &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			defer recover.Panic(log)

			err := s.Serve(l)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(err)
			}
		}()

		log.Infof("serving metrics on http://%s/metrics", l.Addr())

		return p, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = s.Shutdown(ctx)
		}, nil
	}

	return &noop.Noop{}, func() {}, nil
}
