package prometheus

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	testlog "github.com/Azure/cosmos-rest/test/util/log"
)

func TestEmitGauge(t *testing.T) {
	_, log := testlog.New()
	p := New(log)

	// the last value wins: a duration is not summed up across requests
	dims := map[string]string{"operation": "get", "code": "200"}
	p.EmitGauge("client.cosmosdb.duration", 12, dims)
	p.EmitGauge("client.cosmosdb.duration", 7, dims)
	p.EmitGauge("client.cosmosdb.duration", 30, map[string]string{"operation": "get", "code": "404"})

	expected := `
# HELP cosmosrest_client_cosmosdb_duration client.cosmosdb.duration
# TYPE cosmosrest_client_cosmosdb_duration gauge
cosmosrest_client_cosmosdb_duration{code="200",operation="get"} 7
cosmosrest_client_cosmosdb_duration{code="404",operation="get"} 30
`

	err := testutil.GatherAndCompare(p.Registry(), strings.NewReader(expected), "cosmosrest_client_cosmosdb_duration")
	if err != nil {
		t.Error(err)
	}
}

func TestEmitFloat(t *testing.T) {
	_, log := testlog.New()
	p := New(log)

	p.EmitFloat("client.cosmosdb.request_charge", 1.5, nil)
	p.EmitFloat("client.cosmosdb.request_charge", 2.5, nil)

	expected := `
# HELP cosmosrest_client_cosmosdb_request_charge client.cosmosdb.request_charge
# TYPE cosmosrest_client_cosmosdb_request_charge gauge
cosmosrest_client_cosmosdb_request_charge 2.5
`

	err := testutil.GatherAndCompare(p.Registry(), strings.NewReader(expected), "cosmosrest_client_cosmosdb_request_charge")
	if err != nil {
		t.Error(err)
	}
}

func TestConflictingLabelsAreDropped(t *testing.T) {
	h, log := testlog.New()
	p := New(log)

	p.EmitGauge("client.cosmosdb.count", 1, map[string]string{"operation": "get"})
	p.EmitGauge("client.cosmosdb.count", 1, map[string]string{"code": "200"})
	p.EmitGauge("client.cosmosdb.count", 1, map[string]string{"code": "200"})

	if len(h.Entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(h.Entries))
	}

	n, err := testutil.GatherAndCount(p.Registry(), "cosmosrest_client_cosmosdb_count")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 series, got %d", n)
	}
}

func TestName(t *testing.T) {
	for _, tt := range []struct {
		m    string
		want string
	}{
		{m: "client.cosmosdb.duration", want: "client_cosmosdb_duration"},
		{m: "a-b c", want: "a_b_c"},
	} {
		if got := Name(tt.m); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.m, got, tt.want)
		}
	}
}
