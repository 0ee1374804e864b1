package prometheus

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Azure/cosmos-rest/pkg/metrics"
)

const metricsTag = "cosmosrest"

// Prometheus exposes emitted metrics as gauge vectors on its own registry.
// Gauges are accumulated, so client.cosmosdb.count reads as a running total;
// floats are set.
type Prometheus struct {
	log      *logrus.Entry
	registry *prometheus.Registry

	mu     sync.Mutex
	gauges map[string]*prometheus.GaugeVec
}

var _ metrics.Emitter = &Prometheus{}

func New(log *logrus.Entry) *Prometheus {
	return &Prometheus{
		log:      log,
		registry: prometheus.NewRegistry(),
		gauges:   map[string]*prometheus.GaugeVec{},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) EmitFloat(m string, value float64, dims map[string]string) {
	g := p.gauge(m, dims)
	if g != nil {
		g.With(prometheus.Labels(dims)).Set(value)
	}
}

// EmitGauge sets the gauge to the last emitted value, as a statsd gauge does.
func (p *Prometheus) EmitGauge(m string, value int64, dims map[string]string) {
	g := p.gauge(m, dims)
	if g != nil {
		g.With(prometheus.Labels(dims)).Set(float64(value))
	}
}

// gauge returns the vector for m, registering it on first use.  A metric is
// registered with the label names of its first emission; later emissions with
// different labels are dropped.
func (p *Prometheus) gauge(m string, dims map[string]string) *prometheus.GaugeVec {
	labels := make([]string, 0, len(dims))
	for k := range dims {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	name := Name(m)
	key := name + "{" + strings.Join(labels, ",") + "}"

	p.mu.Lock()
	defer p.mu.Unlock()

	if g, ok := p.gauges[key]; ok {
		return g
	}

	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: metricsTag,
		Name:      name,
		Help:      m,
	}, labels)

	err := p.registry.Register(g)
	if err != nil {
		p.log.Warnf("dropping metric %s: %v", m, err)
		p.gauges[key] = nil
		return nil
	}

	p.gauges[key] = g
	return g
}

// Name turns a dotted metric name into a Prometheus metric name, e.g.
// client.cosmosdb.count becomes client_cosmosdb_count.
func Name(m string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, m)
}
