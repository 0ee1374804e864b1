package database

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"reflect"

	"github.com/ugorji/go/codec"

	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
)

func encode(v interface{}) ([]byte, error) {
	var b []byte
	err := codec.NewEncoderBytes(&b, cosmosdb.JSONHandle).Encode(v)
	return b, err
}

func decode(b []byte, v interface{}) error {
	return codec.NewDecoderBytes(b, cosmosdb.JSONHandle).Decode(v)
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}

	c := make(map[string]interface{}, len(m))
	for k, v := range m {
		c[k] = copyValue(v)
	}

	return c
}

func copyValue(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		return copyMap(v)
	case []interface{}:
		c := make([]interface{}, len(v))
		for i := range v {
			c[i] = copyValue(v[i])
		}
		return c
	}

	return v
}

func toFloat(v interface{}) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case nil:
		return 0, false
	}

	return 0, false
}

// equal compares two decoded JSON values; numbers compare by value whatever
// their decoded type.
func equal(a, b interface{}) bool {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa == fb
	}

	return reflect.DeepEqual(a, b)
}
