package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

const (
	masterKeyType = "master"
	tokenVersion  = "1.0"
)

// Authorizer produces the value of the authorization header for one request.
// The date must be the exact string sent as x-ms-date.
type Authorizer interface {
	Authorize(verb string, kind ResourceKind, path ResourcePath, date string) string
}

type masterKeyAuthorizer struct {
	key []byte
}

// NewMasterKeyAuthorizer returns an Authorizer signing with the given base64
// encoded account master key.
func NewMasterKeyAuthorizer(masterKey string) (Authorizer, error) {
	key, err := decodeMasterKey(masterKey)
	if err != nil {
		return nil, err
	}

	return &masterKeyAuthorizer{key: key}, nil
}

func (a *masterKeyAuthorizer) Authorize(verb string, kind ResourceKind, path ResourcePath, date string) string {
	return sign(a.key, verb, kind, path, date)
}

// Sign computes the master key authorization token for a single request.  The
// result is query-escaped and must be sent verbatim as the authorization
// header.
func Sign(verb string, kind ResourceKind, path ResourcePath, date, masterKey string) (string, error) {
	key, err := decodeMasterKey(masterKey)
	if err != nil {
		return "", err
	}

	return sign(key, verb, kind, path, date), nil
}

func decodeMasterKey(masterKey string) ([]byte, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("%w: key is empty", ErrInvalidKey)
	}

	key, err := base64.StdEncoding.DecodeString(masterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return key, nil
}

// payload lines are lower cased, except for the resource link which is case
// sensitive.  The trailing empty line is required.
func signingPayload(verb string, kind ResourceKind, path ResourcePath, date string) string {
	return strings.ToLower(verb) + "\n" +
		strings.ToLower(string(kind)) + "\n" +
		string(path) + "\n" +
		strings.ToLower(date) + "\n" +
		"" + "\n"
}

func sign(key []byte, verb string, kind ResourceKind, path ResourcePath, date string) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(signingPayload(verb, kind, path, date)))

	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return url.QueryEscape("type=" + masterKeyType + "&ver=" + tokenVersion + "&sig=" + sig)
}
