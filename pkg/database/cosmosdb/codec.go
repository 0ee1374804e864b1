package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"reflect"

	"github.com/ugorji/go/codec"
)

var mapStringInterfaceType = reflect.TypeOf(map[string]interface{}(nil))

// JSONHandle is the codec handle used for every request and response body.
// HTML characters are written as-is so that partition key values and document
// properties reach the service unmodified.
var JSONHandle = &codec.JsonHandle{
	HTMLCharsAsIs: true,
	BasicHandle: codec.BasicHandle{
		EncodeOptions: codec.EncodeOptions{
			Canonical: true,
		},
		DecodeOptions: codec.DecodeOptions{
			MapType: mapStringInterfaceType,
		},
	},
}

func encodeJSON(h *codec.JsonHandle, v interface{}) ([]byte, error) {
	var b []byte
	err := codec.NewEncoderBytes(&b, h).Encode(v)
	if err != nil {
		return nil, err
	}

	return b, nil
}

func decodeJSON(h *codec.JsonHandle, b []byte, v interface{}) error {
	return codec.NewDecoderBytes(b, h).Decode(v)
}
