package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"errors"
	"mime"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-test/deep"

	utilerror "github.com/Azure/cosmos-rest/test/util/error"
)

func newTestFramer(t *testing.T) *Framer {
	authorizer, err := NewMasterKeyAuthorizer(testMasterKey)
	if err != nil {
		t.Fatal(err)
	}

	f, err := NewFramer("https://account.documents.azure.com/", "db1", "c1", "", authorizer)
	if err != nil {
		t.Fatal(err)
	}

	f.now = func() time.Time {
		return time.Date(2019, time.January, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600)).Add(time.Hour)
	}

	return f
}

func header(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func mustSign(t *testing.T, verb string, path ResourcePath) string {
	token, err := Sign(verb, ResourceKindDocument, path, testDate, testMasterKey)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestFrame(t *testing.T) {
	const (
		collectionURI = "https://account.documents.azure.com/dbs/db1/colls/c1/docs"
		itemURI       = "https://account.documents.azure.com/dbs/db1/colls/c1/docs/docA"
	)

	doc := &Document{
		ID:           "docA",
		PartitionKey: "pk1",
		Properties: map[string]interface{}{
			"name": "a",
		},
	}

	for _, tt := range []struct {
		name       string
		op         Operation
		p          *FrameParams
		wantMethod string
		wantURI    string
		wantHeader func(*testing.T) http.Header
		wantBody   string
	}{
		{
			name:       "upsert",
			op:         OperationUpsert,
			p:          &FrameParams{Document: doc},
			wantMethod: http.MethodPost,
			wantURI:    collectionURI,
			wantHeader: func(t *testing.T) http.Header {
				return header(
					"Accept", "application/json",
					"authorization", mustSign(t, "POST", "dbs/db1/colls/c1"),
					"x-ms-date", testDate,
					"x-ms-version", "2018-12-31",
					"x-ms-documentdb-is-upsert", "True",
					"x-ms-documentdb-partitionkey", `["pk1"]`,
					"Content-Type", "application/json",
				)
			},
			wantBody: `{"id":"docA","name":"a","pk":"pk1"}`,
		},
		{
			name:       "get",
			op:         OperationGet,
			p:          &FrameParams{ID: "docA", PartitionKey: "pk1"},
			wantMethod: http.MethodGet,
			wantURI:    itemURI,
			wantHeader: func(t *testing.T) http.Header {
				return header(
					"Accept", "application/json",
					"authorization", mustSign(t, "GET", "dbs/db1/colls/c1/docs/docA"),
					"x-ms-date", testDate,
					"x-ms-version", "2018-12-31",
					"x-ms-documentdb-partitionkey", `["pk1"]`,
				)
			},
		},
		{
			name:       "list",
			op:         OperationList,
			p:          &FrameParams{PartitionKey: "pk1", MaxItemCount: 2, Continuation: "token"},
			wantMethod: http.MethodGet,
			wantURI:    collectionURI,
			wantHeader: func(t *testing.T) http.Header {
				return header(
					"Accept", "application/json",
					"authorization", mustSign(t, "GET", "dbs/db1/colls/c1"),
					"x-ms-date", testDate,
					"x-ms-version", "2018-12-31",
					"x-ms-documentdb-partitionkey", `["pk1"]`,
					"x-ms-max-item-count", "2",
					"x-ms-continuation", "token",
				)
			},
		},
		{
			name: "query",
			op:   OperationQuery,
			p: &FrameParams{
				PartitionKey: "pk1",
				Query: &Query{
					Query:      "SELECT * FROM c WHERE c.pk = @pk",
					Parameters: []QueryParameter{{Name: "@pk", Value: "pk1"}},
				},
			},
			wantMethod: http.MethodPost,
			wantURI:    collectionURI,
			wantHeader: func(t *testing.T) http.Header {
				return header(
					"Accept", "application/json",
					"authorization", mustSign(t, "POST", "dbs/db1/colls/c1"),
					"x-ms-date", testDate,
					"x-ms-version", "2018-12-31",
					"x-ms-documentdb-isquery", "True",
					"x-ms-documentdb-partitionkey", `["pk1"]`,
					"Content-Type", "application/query+json",
				)
			},
			wantBody: `{"query":"SELECT * FROM c WHERE c.pk = @pk","parameters":[{"name":"@pk","value":"pk1"}]}`,
		},
		{
			name: "query without a partition key or parameters",
			op:   OperationQuery,
			p: &FrameParams{
				Query: &Query{Query: "SELECT * FROM c"},
			},
			wantMethod: http.MethodPost,
			wantURI:    collectionURI,
			wantHeader: func(t *testing.T) http.Header {
				return header(
					"Accept", "application/json",
					"authorization", mustSign(t, "POST", "dbs/db1/colls/c1"),
					"x-ms-date", testDate,
					"x-ms-version", "2018-12-31",
					"x-ms-documentdb-isquery", "True",
					"Content-Type", "application/query+json",
				)
			},
			wantBody: `{"query":"SELECT * FROM c","parameters":[]}`,
		},
		{
			name: "cross partition query",
			op:   OperationQueryCrossPartition,
			p: &FrameParams{
				PartitionKey: "ignored",
				MaxItemCount: 10,
				Query:        &Query{Query: "SELECT * FROM c"},
			},
			wantMethod: http.MethodPost,
			wantURI:    collectionURI,
			wantHeader: func(t *testing.T) http.Header {
				return header(
					"Accept", "application/json",
					"authorization", mustSign(t, "POST", "dbs/db1/colls/c1"),
					"x-ms-date", testDate,
					"x-ms-version", "2018-12-31",
					"x-ms-documentdb-isquery", "True",
					"x-ms-documentdb-query-enablecrosspartition", "True",
					"x-ms-max-item-count", "10",
					"Content-Type", "application/query+json",
				)
			},
			wantBody: `{"query":"SELECT * FROM c","parameters":[]}`,
		},
		{
			name: "cross partition query with continuation and default page size",
			op:   OperationQueryCrossPartition,
			p: &FrameParams{
				Continuation: "token",
				Query:        &Query{Query: "SELECT * FROM c"},
			},
			wantMethod: http.MethodPost,
			wantURI:    collectionURI,
			wantHeader: func(t *testing.T) http.Header {
				return header(
					"Accept", "application/json",
					"authorization", mustSign(t, "POST", "dbs/db1/colls/c1"),
					"x-ms-date", testDate,
					"x-ms-version", "2018-12-31",
					"x-ms-documentdb-isquery", "True",
					"x-ms-documentdb-query-enablecrosspartition", "True",
					"x-ms-max-item-count", "-1",
					"x-ms-continuation", "token",
					"Content-Type", "application/query+json",
				)
			},
			wantBody: `{"query":"SELECT * FROM c","parameters":[]}`,
		},
		{
			name: "replace with a new id",
			op:   OperationReplace,
			p: &FrameParams{
				ID:           "docA",
				PartitionKey: "pk1",
				Document: &Document{
					ID:         "docB",
					Properties: map[string]interface{}{"name": "b"},
				},
				IfMatch: `"etag"`,
			},
			wantMethod: http.MethodPut,
			wantURI:    itemURI,
			wantHeader: func(t *testing.T) http.Header {
				return header(
					"Accept", "application/json",
					"authorization", mustSign(t, "PUT", "dbs/db1/colls/c1/docs/docA"),
					"x-ms-date", testDate,
					"x-ms-version", "2018-12-31",
					"x-ms-documentdb-partitionkey", `["pk1"]`,
					"If-Match", `"etag"`,
					"Content-Type", "application/json",
				)
			},
			wantBody: `{"id":"docB","name":"b","pk":"pk1"}`,
		},
		{
			name: "patch",
			op:   OperationPatch,
			p: &FrameParams{
				ID:           "docA",
				PartitionKey: "pk1",
				Patch: &Patch{
					Operations: []PatchOperation{
						{Op: PatchOperationSet, Path: "/name", Value: "b"},
						{Op: PatchOperationIncrement, Path: "/count", Value: 0},
						{Op: PatchOperationRemove, Path: "/old", Value: "ignored"},
					},
				},
			},
			wantMethod: http.MethodPatch,
			wantURI:    itemURI,
			wantHeader: func(t *testing.T) http.Header {
				return header(
					"Accept", "application/json",
					"authorization", mustSign(t, "PATCH", "dbs/db1/colls/c1/docs/docA"),
					"x-ms-date", testDate,
					"x-ms-version", "2018-12-31",
					"x-ms-documentdb-partitionkey", `["pk1"]`,
					"Content-Type", "application/json",
				)
			},
			wantBody: `{"operations":[{"op":"set","path":"/name","value":"b"},{"op":"incr","path":"/count","value":0},{"op":"remove","path":"/old"}]}`,
		},
		{
			name:       "delete",
			op:         OperationDelete,
			p:          &FrameParams{ID: "docA", PartitionKey: "pk1", IfMatch: `"etag"`},
			wantMethod: http.MethodDelete,
			wantURI:    itemURI,
			wantHeader: func(t *testing.T) http.Header {
				return header(
					"Accept", "application/json",
					"authorization", mustSign(t, "DELETE", "dbs/db1/colls/c1/docs/docA"),
					"x-ms-date", testDate,
					"x-ms-version", "2018-12-31",
					"x-ms-documentdb-partitionkey", `["pk1"]`,
					"If-Match", `"etag"`,
				)
			},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			r, err := newTestFramer(t).Frame(tt.op, tt.p)
			if err != nil {
				t.Fatal(err)
			}

			if r.Operation != tt.op {
				t.Errorf("got operation %s", r.Operation)
			}
			if r.Method != tt.wantMethod {
				t.Errorf("got method %s, want %s", r.Method, tt.wantMethod)
			}
			if r.URI != tt.wantURI {
				t.Errorf("got URI %s, want %s", r.URI, tt.wantURI)
			}
			for _, diff := range deep.Equal(r.Header, tt.wantHeader(t)) {
				t.Error(diff)
			}
			assertJSONBody(t, r.Body, tt.wantBody)
		})
	}
}

func TestFrameErrors(t *testing.T) {
	for _, tt := range []struct {
		name    string
		op      Operation
		p       *FrameParams
		wantErr string
	}{
		{
			name:    "upsert without a document",
			op:      OperationUpsert,
			p:       &FrameParams{},
			wantErr: "invalid argument: document is required",
		},
		{
			name:    "upsert without an id",
			op:      OperationUpsert,
			p:       &FrameParams{Document: &Document{PartitionKey: "pk1"}},
			wantErr: "invalid argument: document id must not be empty",
		},
		{
			name:    "get with a slash in the id",
			op:      OperationGet,
			p:       &FrameParams{ID: "a/b", PartitionKey: "pk1"},
			wantErr: `invalid argument: document id "a/b" must not contain '/'`,
		},
		{
			name:    "query without text",
			op:      OperationQuery,
			p:       &FrameParams{Query: &Query{}},
			wantErr: "invalid argument: query text is required",
		},
		{
			name: "replace moving the document to another partition",
			op:   OperationReplace,
			p: &FrameParams{
				ID:           "docA",
				PartitionKey: "pk1",
				Document:     &Document{ID: "docA", PartitionKey: "pk2"},
			},
			wantErr: `invalid argument: replace cannot move a document from partition "pk1" to "pk2"`,
		},
		{
			name:    "patch without operations",
			op:      OperationPatch,
			p:       &FrameParams{ID: "docA", PartitionKey: "pk1", Patch: &Patch{}},
			wantErr: "invalid argument: patch requires at least one operation",
		},
		{
			name: "patch with an unknown op",
			op:   OperationPatch,
			p: &FrameParams{ID: "docA", PartitionKey: "pk1", Patch: &Patch{
				Operations: []PatchOperation{{Op: "move", Path: "/a"}},
			}},
			wantErr: `invalid argument: patch operation 0: unsupported op "move"`,
		},
		{
			name: "patch with a relative path",
			op:   OperationPatch,
			p: &FrameParams{ID: "docA", PartitionKey: "pk1", Patch: &Patch{
				Operations: []PatchOperation{{Op: PatchOperationSet, Path: "a", Value: 1}},
			}},
			wantErr: `invalid argument: patch operation 0: path "a" must start with '/'`,
		},
		{
			name:    "unknown operation",
			op:      "upsertall",
			wantErr: `invalid argument: unsupported operation "upsertall"`,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestFramer(t).Frame(tt.op, tt.p)
			utilerror.AssertErrorMessage(t, err, tt.wantErr)

			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error %v is not an invalid argument", err)
			}
		})
	}
}

func TestNewFramer(t *testing.T) {
	authorizer, err := NewMasterKeyAuthorizer(testMasterKey)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewFramer("https://account.documents.azure.com", "", "c1", "", authorizer)
	utilerror.AssertErrorMessage(t, err, "invalid argument: database must not be empty")
}

func TestQueryContentTypeHasNoCharset(t *testing.T) {
	f := newTestFramer(t)

	for _, op := range []Operation{OperationQuery, OperationQueryCrossPartition} {
		r, err := f.Frame(op, &FrameParams{PartitionKey: "pk1", Query: &Query{Query: "SELECT * FROM c"}})
		if err != nil {
			t.Fatal(err)
		}

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			t.Fatal(err)
		}

		if mediaType != "application/query+json" {
			t.Errorf("%s: got media type %s", op, mediaType)
		}
		if params["charset"] != "" {
			t.Errorf("%s: got charset %s", op, params["charset"])
		}
	}
}

func TestPartitionKeyHeader(t *testing.T) {
	for _, tt := range []struct {
		pk   string
		want string
	}{
		{pk: "pk1", want: `["pk1"]`},
		{pk: `quote"d`, want: `["quote\"d"]`},
		{pk: "<b>", want: `["<b>"]`},
		{pk: "", want: `[""]`},
	} {
		if got := partitionKeyHeader(tt.pk); got != tt.want {
			t.Errorf("partitionKeyHeader(%q) = %s, want %s", tt.pk, got, tt.want)
		}
	}
}

// Replace is signed with the link of the document being replaced, not the id
// in the new body.
func TestReplaceSignsTheOriginalItemPath(t *testing.T) {
	f := newTestFramer(t)

	var signed []ResourcePath
	f.authorizer = authorizerFunc(func(verb string, kind ResourceKind, path ResourcePath, date string) string {
		signed = append(signed, path)
		if kind != ResourceKindDocument {
			t.Errorf("signed kind %s", kind)
		}
		return "token"
	})

	_, err := f.Frame(OperationReplace, &FrameParams{
		ID:           "docA",
		PartitionKey: "pk1",
		Document:     &Document{ID: "docB", PartitionKey: "pk1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, diff := range deep.Equal(signed, []ResourcePath{"dbs/db1/colls/c1/docs/docA"}) {
		t.Error(diff)
	}
}

func TestFrameBuildsFreshHeaders(t *testing.T) {
	f := newTestFramer(t)

	upsert, err := f.Frame(OperationUpsert, &FrameParams{Document: &Document{ID: "docA", PartitionKey: "pk1"}})
	if err != nil {
		t.Fatal(err)
	}

	get, err := f.Frame(OperationGet, &FrameParams{ID: "docA", PartitionKey: "pk1"})
	if err != nil {
		t.Fatal(err)
	}

	if get.Header.Get("x-ms-documentdb-is-upsert") != "" {
		t.Error("upsert header leaked into get")
	}

	get.Header.Set("x-ms-documentdb-isquery", "True")
	if upsert.Header.Get("x-ms-documentdb-isquery") != "" {
		t.Error("header maps are shared")
	}
}

func TestFrameConcurrently(t *testing.T) {
	f := newTestFramer(t)
	want := mustSign(t, "GET", "dbs/db1/colls/c1/docs/docA")

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := f.Frame(OperationGet, &FrameParams{ID: "docA", PartitionKey: "pk1"})
			if err != nil {
				errs <- err
				return
			}
			if r.Header.Get("authorization") != want {
				errs <- errors.New("unexpected token " + r.Header.Get("authorization"))
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

// assertJSONBody compares bodies structurally: key order is not part of the
// wire contract.
func assertJSONBody(t *testing.T, got []byte, want string) {
	t.Helper()

	if want == "" {
		if got != nil {
			t.Errorf("got body %s, want none", string(got))
		}
		return
	}

	var g, w interface{}
	if err := decodeJSON(JSONHandle, got, &g); err != nil {
		t.Fatal(err)
	}
	if err := decodeJSON(JSONHandle, []byte(want), &w); err != nil {
		t.Fatal(err)
	}

	for _, diff := range deep.Equal(g, w) {
		t.Errorf("body %s: %s", string(got), diff)
	}
}

type authorizerFunc func(verb string, kind ResourceKind, path ResourcePath, date string) string

func (f authorizerFunc) Authorize(verb string, kind ResourceKind, path ResourcePath, date string) string {
	return f(verb, kind, path, date)
}
