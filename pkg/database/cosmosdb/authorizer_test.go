package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"testing"

	utilerror "github.com/Azure/cosmos-rest/test/util/error"
)

const (
	testMasterKey = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="
	testDate      = "Tue, 01 Jan 2019 00:00:00 GMT"
)

func TestSign(t *testing.T) {
	for _, tt := range []struct {
		name      string
		verb      string
		kind      ResourceKind
		path      ResourcePath
		date      string
		masterKey string
		want      string
		wantErr   error
	}{
		{
			name:      "collection level create",
			verb:      "POST",
			kind:      ResourceKindDocument,
			path:      "dbs/db1/colls/c1",
			date:      testDate,
			masterKey: testMasterKey,
			want:      "type%3Dmaster%26ver%3D1.0%26sig%3DwKvOqg9bgO6ElPBq4aD26gAJSuJA%2B31cdMjCfBiSk%2Fo%3D",
		},
		{
			name:      "item level read",
			verb:      "GET",
			kind:      ResourceKindDocument,
			path:      "dbs/db1/colls/c1/docs/docA",
			date:      testDate,
			masterKey: testMasterKey,
			want:      "type%3Dmaster%26ver%3D1.0%26sig%3DILtkN1JcOKqEzJ8FPkPMkLJRsOwR0ZrZKLB3q20BTmM%3D",
		},
		{
			name:      "verb and date case do not matter",
			verb:      "post",
			kind:      "DOCS",
			path:      "dbs/db1/colls/c1",
			date:      strings.ToUpper(testDate),
			masterKey: testMasterKey,
			want:      "type%3Dmaster%26ver%3D1.0%26sig%3DwKvOqg9bgO6ElPBq4aD26gAJSuJA%2B31cdMjCfBiSk%2Fo%3D",
		},
		{
			name:      "invalid key",
			verb:      "POST",
			kind:      ResourceKindDocument,
			path:      "dbs/db1/colls/c1",
			date:      testDate,
			masterKey: "not base64!",
			wantErr:   ErrInvalidKey,
		},
		{
			name:    "empty key",
			verb:    "POST",
			kind:    ResourceKindDocument,
			path:    "dbs/db1/colls/c1",
			date:    testDate,
			wantErr: ErrInvalidKey,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sign(tt.verb, tt.kind, tt.path, tt.date, tt.masterKey)
			utilerror.AssertErrorIs(t, err, tt.wantErr)

			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSignIsDeterministic(t *testing.T) {
	a, err := Sign("POST", ResourceKindDocument, "dbs/db1/colls/c1", testDate, testMasterKey)
	if err != nil {
		t.Fatal(err)
	}

	authorizer, err := NewMasterKeyAuthorizer(testMasterKey)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		b := authorizer.Authorize("POST", ResourceKindDocument, "dbs/db1/colls/c1", testDate)
		if a != b {
			t.Fatalf("token %d differs: %q != %q", i, b, a)
		}
	}
}

func TestSignIsSensitiveToEveryInput(t *testing.T) {
	otherKey := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

	base, err := Sign("POST", ResourceKindDocument, "dbs/db1/colls/c1", testDate, testMasterKey)
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		name      string
		verb      string
		kind      ResourceKind
		path      ResourcePath
		date      string
		masterKey string
	}{
		{name: "verb", verb: "PUT", kind: ResourceKindDocument, path: "dbs/db1/colls/c1", date: testDate, masterKey: testMasterKey},
		{name: "kind", verb: "POST", kind: ResourceKindContainer, path: "dbs/db1/colls/c1", date: testDate, masterKey: testMasterKey},
		{name: "path", verb: "POST", kind: ResourceKindDocument, path: "dbs/db1/colls/c2", date: testDate, masterKey: testMasterKey},
		{name: "path case", verb: "POST", kind: ResourceKindDocument, path: "dbs/DB1/colls/c1", date: testDate, masterKey: testMasterKey},
		{name: "date", verb: "POST", kind: ResourceKindDocument, path: "dbs/db1/colls/c1", date: "Tue, 01 Jan 2019 00:00:01 GMT", masterKey: testMasterKey},
		{name: "key", verb: "POST", kind: ResourceKindDocument, path: "dbs/db1/colls/c1", date: testDate, masterKey: otherKey},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sign(tt.verb, tt.kind, tt.path, tt.date, tt.masterKey)
			if err != nil {
				t.Fatal(err)
			}

			if got == base {
				t.Errorf("changing the %s did not change the token", tt.name)
			}
		})
	}
}

func TestTokenShape(t *testing.T) {
	for _, path := range []ResourcePath{"dbs/db1/colls/c1", "dbs/db1/colls/c1/docs/docA", "dbs/d/colls/c/docs/a+b=c"} {
		token, err := Sign("PATCH", ResourceKindDocument, path, testDate, testMasterKey)
		if err != nil {
			t.Fatal(err)
		}

		if strings.ContainsAny(token, "&=+/") {
			t.Errorf("token %q is not query-escaped", token)
		}

		unescaped, err := url.QueryUnescape(token)
		if err != nil {
			t.Fatal(err)
		}

		sig, found := strings.CutPrefix(unescaped, "type=master&ver=1.0&sig=")
		if !found {
			t.Fatalf("unexpected token %q", unescaped)
		}

		b, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			t.Fatal(err)
		}

		if len(b) != 32 {
			t.Errorf("signature is %d bytes, want 32", len(b))
		}
	}
}

func TestNewMasterKeyAuthorizer(t *testing.T) {
	_, err := NewMasterKeyAuthorizer("%%%")
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("got error %v, want %v", err, ErrInvalidKey)
	}
}

func TestSigningPayload(t *testing.T) {
	got := signingPayload("GET", ResourceKindDocument, "dbs/DB/colls/C/docs/ID", testDate)
	want := "get\ndocs\ndbs/DB/colls/C/docs/ID\ntue, 01 jan 2019 00:00:00 gmt\n\n"

	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
