package log

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"fmt"
	"strings"

	"github.com/onsi/gomega/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// New creates a logging hook and entry suitable for passing to functions and
// asserting on.
func New() (*test.Hook, *logrus.Entry) {
	logger, h := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return h, logrus.NewEntry(logger)
}

// AssertLoggingOutput compares the entries captured by h with expected.  Each
// expected entry maps a field name ("msg", "level" or any logged field) to a
// matcher.
func AssertLoggingOutput(h *test.Hook, expected []map[string]types.GomegaMatcher) error {
	entries := h.AllEntries()

	if len(entries) != len(expected) {
		return fmt.Errorf("got %d entries, expected %d", len(entries), len(expected))
	}

	for i, e := range entries {
		for key, m := range expected[i] {
			var value interface{}
			switch key {
			case "msg":
				value = e.Message
			case "level":
				value = e.Level
			default:
				value = e.Data[key]
			}

			ok, err := m.Match(value)
			if err != nil {
				return errors.Wrapf(err, "entry %d, field %s", i, key)
			}
			if !ok {
				return errors.Errorf("entry %d, field %s: %s", i, key, m.FailureMessage(value))
			}
		}
	}

	return nil
}

// AssertNotLogged fails if s appears in the message or any field of a
// captured entry.
func AssertNotLogged(h *test.Hook, s string) error {
	for i, e := range h.AllEntries() {
		if strings.Contains(e.Message, s) {
			return fmt.Errorf("entry %d: message contains %q", i, s)
		}
		for k, v := range e.Data {
			if strings.Contains(fmt.Sprint(v), s) {
				return fmt.Errorf("entry %d: field %s contains %q", i, k, s)
			}
		}
	}

	return nil
}
