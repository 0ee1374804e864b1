package database

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/Azure/cosmos-rest/pkg/database/cosmosdb"
)

// Server is an in-memory Cosmos DB SQL API endpoint for a single container.
// It authenticates every request by recomputing the master key signature and
// rejects requests whose headers do not match the operation.
type Server struct {
	*httptest.Server

	masterKey  []byte
	database   string
	container  string
	pkProperty string

	mu       sync.Mutex
	docs     map[string]map[string]map[string]interface{} // partition key -> id -> document
	etag     int
	requests []*RecordedRequest
}

// RecordedRequest is a request as received by the Server.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewServer starts a Server.  masterKey is the base64 encoded account key.
func NewServer(masterKey, database, container, partitionKeyPath string) (*Server, error) {
	key, err := base64.StdEncoding.DecodeString(masterKey)
	if err != nil {
		return nil, err
	}

	if partitionKeyPath == "" {
		partitionKeyPath = cosmosdb.DefaultPartitionKeyPath
	}

	s := &Server{
		masterKey:  key,
		database:   database,
		container:  container,
		pkProperty: strings.TrimPrefix(partitionKeyPath, "/"),
		docs:       map[string]map[string]map[string]interface{}{},
	}

	s.Server = httptest.NewServer(s.router())

	return s, nil
}

// Requests returns the requests received so far.
func (s *Server) Requests() []*RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*RecordedRequest(nil), s.requests...)
}

// Document returns a copy of the stored document, or nil.
func (s *Server) Document(partitionKey, id string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, found := s.docs[partitionKey][id]
	if !found {
		return nil
	}

	return copyMap(doc)
}

// Documents returns copies of all stored documents ordered by partition key
// and id.
func (s *Server) Documents() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.all("")
}

// Put stores doc without going through the REST interface.
func (s *Server) Put(doc map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store(copyMap(doc))
}

type cosmosError struct {
	statusCode int
	code       string
	message    string
}

func errorf(statusCode int, format string, a ...interface{}) *cosmosError {
	return &cosmosError{
		statusCode: statusCode,
		code:       strings.ReplaceAll(http.StatusText(statusCode), " ", ""),
		message:    fmt.Sprintf(format, a...),
	}
}

type response struct {
	statusCode int
	header     http.Header
	body       interface{}
}

// request is an authenticated request against the container.
type request struct {
	*http.Request
	body []byte

	id    string
	pk    string
	hasPK bool
}

type handlerFunc func(*request) (*response, *cosmosError)

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.NotFound(s.handler(func(r *request) (*response, *cosmosError) {
		return nil, errorf(http.StatusNotFound, "resource %s not found", r.URL.Path)
	}))
	r.MethodNotAllowed(s.handler(func(r *request) (*response, *cosmosError) {
		return nil, errorf(http.StatusMethodNotAllowed, "%s %s is not supported", r.Method, r.URL.Path)
	}))

	r.Route("/dbs/{database}/colls/{container}/docs", func(r chi.Router) {
		r.Post("/", s.authenticated(func(r *request) (*response, *cosmosError) {
			if r.Header.Get("x-ms-documentdb-isquery") == "True" {
				return s.query(r.Request, r.body, r.pk, r.hasPK)
			}
			if !r.hasPK {
				return nil, errorf(http.StatusBadRequest, "partition key header is required")
			}
			return s.create(r.Request, r.body, r.pk)
		}))
		r.Get("/", s.authenticated(func(r *request) (*response, *cosmosError) {
			return s.list(r.Request, r.pk, r.hasPK)
		}))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.item(func(r *request) (*response, *cosmosError) {
				return s.get(r.pk, r.id)
			}))
			r.Put("/", s.item(func(r *request) (*response, *cosmosError) {
				return s.replace(r.Request, r.body, r.pk, r.id)
			}))
			r.Patch("/", s.item(func(r *request) (*response, *cosmosError) {
				return s.patch(r.Request, r.body, r.pk, r.id)
			}))
			r.Delete("/", s.item(func(r *request) (*response, *cosmosError) {
				return s.delete(r.Request, r.pk, r.id)
			}))
		})
	})

	return r
}

// item wraps an item level handler: the partition key header is required.
func (s *Server) item(f handlerFunc) http.HandlerFunc {
	return s.authenticated(func(r *request) (*response, *cosmosError) {
		if !r.hasPK {
			return nil, errorf(http.StatusBadRequest, "partition key header is required")
		}
		return f(r)
	})
}

// authenticated checks the addressed container, the signature and the shared
// headers of r before calling f.
func (s *Server) authenticated(f handlerFunc) http.HandlerFunc {
	return s.handler(func(r *request) (*response, *cosmosError) {
		database, container := chi.URLParam(r.Request, "database"), chi.URLParam(r.Request, "container")
		if database != s.database || container != s.container {
			return nil, errorf(http.StatusNotFound, "container dbs/%s/colls/%s not found", database, container)
		}

		resourceLink := "dbs/" + s.database + "/colls/" + s.container
		if id := chi.URLParam(r.Request, "id"); id != "" {
			var err error
			r.id, err = url.PathUnescape(id)
			if err != nil {
				return nil, errorf(http.StatusBadRequest, "malformed id %q", id)
			}
			resourceLink += "/docs/" + r.id
		}

		if cerr := s.authorize(r.Request, resourceLink); cerr != nil {
			return nil, cerr
		}

		if r.Header.Get("Accept") != "application/json" {
			return nil, errorf(http.StatusBadRequest, "unexpected Accept header %q", r.Header.Get("Accept"))
		}

		if r.Header.Get("x-ms-version") != cosmosdb.APIVersion {
			return nil, errorf(http.StatusBadRequest, "unsupported x-ms-version %q", r.Header.Get("x-ms-version"))
		}

		var cerr *cosmosError
		r.pk, r.hasPK, cerr = partitionKey(r.Header)
		if cerr != nil {
			return nil, cerr
		}

		return f(r)
	})
}

// handler records r and writes the response of f, or its error in the Cosmos
// error envelope.
func (s *Server) handler(f handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		s.requests = append(s.requests, &RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})

		resp, cerr := f(&request{Request: r, body: body})
		if cerr != nil {
			resp = &response{
				statusCode: cerr.statusCode,
				body: map[string]interface{}{
					"code":    cerr.code,
					"message": cerr.message,
				},
			}
		}

		for k, v := range resp.header {
			w.Header()[k] = v
		}
		w.Header().Set("x-ms-activity-id", uuid.Must(uuid.NewV4()).String())
		w.Header().Set("x-ms-request-charge", "1")

		if resp.body == nil {
			w.WriteHeader(resp.statusCode)
			return
		}

		b, err := encode(resp.body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.statusCode)
		_, _ = w.Write(b)
	}
}

// authorize recomputes the master key signature of r.
func (s *Server) authorize(r *http.Request, resourceLink string) *cosmosError {
	date := r.Header.Get("x-ms-date")
	if date == "" {
		return errorf(http.StatusUnauthorized, "x-ms-date header is required")
	}

	if _, err := time.Parse(http.TimeFormat, date); err != nil {
		return errorf(http.StatusUnauthorized, "x-ms-date %q is not an RFC1123 date", date)
	}

	token, err := url.QueryUnescape(r.Header.Get("authorization"))
	if err != nil {
		return errorf(http.StatusUnauthorized, "malformed authorization header")
	}

	fields := map[string]string{}
	for _, kv := range strings.Split(token, "&") {
		k, v, _ := strings.Cut(kv, "=")
		fields[k] = v
	}

	if fields["type"] != "master" || fields["ver"] != "1.0" {
		return errorf(http.StatusUnauthorized, "unsupported authorization type %q version %q", fields["type"], fields["ver"])
	}

	payload := strings.ToLower(r.Method) + "\n" +
		"docs\n" +
		resourceLink + "\n" +
		strings.ToLower(date) + "\n" +
		"\n"

	h := hmac.New(sha256.New, s.masterKey)
	h.Write([]byte(payload))
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(fields["sig"]), []byte(want)) {
		return errorf(http.StatusUnauthorized, "The input authorization token can't serve the request. The wrong key is being used or the expected payload is not built as per the protocol.")
	}

	return nil
}

func partitionKey(h http.Header) (string, bool, *cosmosError) {
	v := h.Get("x-ms-documentdb-partitionkey")
	if v == "" {
		return "", false, nil
	}

	var pk []string
	err := decode([]byte(v), &pk)
	if err != nil || len(pk) != 1 {
		return "", false, errorf(http.StatusBadRequest, "malformed partition key %q", v)
	}

	return pk[0], true, nil
}

func (s *Server) create(r *http.Request, body []byte, pk string) (*response, *cosmosError) {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" {
		return nil, errorf(http.StatusBadRequest, "unexpected Content-Type %q", ct)
	}

	var doc map[string]interface{}
	if err := decode(body, &doc); err != nil {
		return nil, errorf(http.StatusBadRequest, "%v", err)
	}

	id, _ := doc["id"].(string)
	if id == "" {
		return nil, errorf(http.StatusBadRequest, "document id is required")
	}

	if doc[s.pkProperty] != pk {
		return nil, errorf(http.StatusBadRequest, "partition key in header %q does not match the document", pk)
	}

	_, exists := s.docs[pk][id]
	statusCode := http.StatusCreated
	if exists {
		if r.Header.Get("x-ms-documentdb-is-upsert") != "True" {
			return nil, errorf(http.StatusConflict, "document %s already exists", id)
		}
		statusCode = http.StatusOK
	}

	stored := s.store(doc)

	return &response{statusCode: statusCode, header: etagHeader(stored), body: stored}, nil
}

func (s *Server) get(pk, id string) (*response, *cosmosError) {
	doc, found := s.docs[pk][id]
	if !found {
		return nil, errorf(http.StatusNotFound, "Entity with the specified id does not exist in the system.")
	}

	return &response{statusCode: http.StatusOK, header: etagHeader(doc), body: copyMap(doc)}, nil
}

func (s *Server) list(r *http.Request, pk string, hasPK bool) (*response, *cosmosError) {
	var docs []map[string]interface{}
	if hasPK {
		docs = s.all(pk)
	} else {
		docs = s.all("")
	}

	return s.page(r, docs)
}

var queryRx = regexp.MustCompile(`(?i)^\s*SELECT\s+\*\s+FROM\s+(\w+)(?:\s+WHERE\s+(.+?))?\s*$`)
var conditionRx = regexp.MustCompile(`^(\w+)\.(\w+)\s*=\s*(@\w+|'[^']*'|"[^"]*"|-?[0-9.]+|true|false)$`)

// query supports SELECT * FROM c [WHERE c.a = @p [AND c.b = 'v' ...]].
func (s *Server) query(r *http.Request, body []byte, pk string, hasPK bool) (*response, *cosmosError) {
	if ct := r.Header.Get("Content-Type"); ct != "application/query+json" {
		return nil, errorf(http.StatusBadRequest, "unexpected Content-Type %q", ct)
	}

	crossPartition := r.Header.Get("x-ms-documentdb-query-enablecrosspartition") == "True"
	if !hasPK && !crossPartition {
		return nil, errorf(http.StatusBadRequest, "Cross partition query is required but disabled. Please set x-ms-documentdb-query-enablecrosspartition to true, specify x-ms-documentdb-partitionkey, or revise your query to avoid this exception.")
	}

	var q cosmosdb.Query
	if err := decode(body, &q); err != nil {
		return nil, errorf(http.StatusBadRequest, "%v", err)
	}

	if q.Parameters == nil {
		return nil, errorf(http.StatusBadRequest, "parameters must be an array")
	}

	params := map[string]interface{}{}
	for _, p := range q.Parameters {
		params[p.Name] = p.Value
	}

	m := queryRx.FindStringSubmatch(q.Query)
	if m == nil {
		return nil, errorf(http.StatusBadRequest, "unsupported query %q", q.Query)
	}
	alias := m[1]

	type condition struct {
		property string
		value    interface{}
	}
	var conditions []condition

	if m[2] != "" {
		for _, c := range regexp.MustCompile(`(?i)\s+AND\s+`).Split(m[2], -1) {
			cm := conditionRx.FindStringSubmatch(strings.TrimSpace(c))
			if cm == nil || cm[1] != alias {
				return nil, errorf(http.StatusBadRequest, "unsupported condition %q", c)
			}

			var value interface{}
			switch v := cm[3]; {
			case strings.HasPrefix(v, "@"):
				var found bool
				value, found = params[v]
				if !found {
					return nil, errorf(http.StatusBadRequest, "parameter %s is not defined", v)
				}
			case strings.HasPrefix(v, "'"), strings.HasPrefix(v, `"`):
				value = v[1 : len(v)-1]
			case v == "true", v == "false":
				value = v == "true"
			default:
				f, _ := strconv.ParseFloat(v, 64)
				value = f
			}

			conditions = append(conditions, condition{property: cm[2], value: value})
		}
	}

	scope := ""
	if hasPK {
		scope = pk
	}

	var docs []map[string]interface{}
	for _, doc := range s.all(scope) {
		matches := true
		for _, c := range conditions {
			if !equal(doc[c.property], c.value) {
				matches = false
				break
			}
		}
		if matches {
			docs = append(docs, doc)
		}
	}

	return s.page(r, docs)
}

// page applies x-ms-max-item-count and x-ms-continuation.  The continuation
// token is the offset of the next page.
func (s *Server) page(r *http.Request, docs []map[string]interface{}) (*response, *cosmosError) {
	offset := 0
	if c := r.Header.Get("x-ms-continuation"); c != "" {
		var err error
		offset, err = strconv.Atoi(c)
		if err != nil || offset < 0 || offset > len(docs) {
			return nil, errorf(http.StatusBadRequest, "invalid continuation token %q", c)
		}
	}

	limit := len(docs) - offset
	if c := r.Header.Get("x-ms-max-item-count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil {
			return nil, errorf(http.StatusBadRequest, "invalid max item count %q", c)
		}
		if n > 0 && n < limit {
			limit = n
		}
	}

	header := http.Header{}
	if offset+limit < len(docs) {
		header.Set("x-ms-continuation", strconv.Itoa(offset+limit))
	}

	page := docs[offset : offset+limit]
	if page == nil {
		page = []map[string]interface{}{}
	}

	return &response{
		statusCode: http.StatusOK,
		header:     header,
		body: &cosmosdb.DocumentList{
			Documents: page,
			Count:     len(page),
		},
	}, nil
}

func (s *Server) checkIfMatch(r *http.Request, doc map[string]interface{}) *cosmosError {
	if ifMatch := r.Header.Get("If-Match"); ifMatch != "" && ifMatch != doc["_etag"] {
		return errorf(http.StatusPreconditionFailed, "Operation cannot be performed because one of the specified precondition is not met.")
	}

	return nil
}

func (s *Server) replace(r *http.Request, body []byte, pk, id string) (*response, *cosmosError) {
	existing, found := s.docs[pk][id]
	if !found {
		return nil, errorf(http.StatusNotFound, "Entity with the specified id does not exist in the system.")
	}

	if cerr := s.checkIfMatch(r, existing); cerr != nil {
		return nil, cerr
	}

	var doc map[string]interface{}
	if err := decode(body, &doc); err != nil {
		return nil, errorf(http.StatusBadRequest, "%v", err)
	}

	if doc[s.pkProperty] != pk {
		return nil, errorf(http.StatusBadRequest, "PartitionKey extracted from document doesn't match the one specified in the header")
	}

	newID, _ := doc["id"].(string)
	if newID == "" {
		return nil, errorf(http.StatusBadRequest, "document id is required")
	}

	if newID != id {
		if _, exists := s.docs[pk][newID]; exists {
			return nil, errorf(http.StatusConflict, "document %s already exists", newID)
		}
		delete(s.docs[pk], id)
	}

	stored := s.store(doc)

	return &response{statusCode: http.StatusOK, header: etagHeader(stored), body: stored}, nil
}

func (s *Server) patch(r *http.Request, body []byte, pk, id string) (*response, *cosmosError) {
	existing, found := s.docs[pk][id]
	if !found {
		return nil, errorf(http.StatusNotFound, "Entity with the specified id does not exist in the system.")
	}

	if cerr := s.checkIfMatch(r, existing); cerr != nil {
		return nil, cerr
	}

	var p struct {
		Condition  string                   `json:"condition"`
		Operations []map[string]interface{} `json:"operations"`
	}
	if err := decode(body, &p); err != nil {
		return nil, errorf(http.StatusBadRequest, "%v", err)
	}

	if len(p.Operations) == 0 {
		return nil, errorf(http.StatusBadRequest, "patch requires at least one operation")
	}

	doc := copyMap(existing)
	for _, op := range p.Operations {
		if cerr := applyPatch(doc, op); cerr != nil {
			return nil, cerr
		}
	}

	if doc["id"] != id || doc[s.pkProperty] != pk {
		return nil, errorf(http.StatusBadRequest, "patch cannot modify the id or the partition key")
	}

	stored := s.store(doc)

	return &response{statusCode: http.StatusOK, header: etagHeader(stored), body: stored}, nil
}

func applyPatch(doc map[string]interface{}, op map[string]interface{}) *cosmosError {
	path, _ := op["path"].(string)
	if !strings.HasPrefix(path, "/") || path == "/" {
		return errorf(http.StatusBadRequest, "invalid patch path %q", path)
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	parent := doc
	for _, s := range segments[:len(segments)-1] {
		child, ok := parent[s].(map[string]interface{})
		if !ok {
			return errorf(http.StatusBadRequest, "path %q does not exist", path)
		}
		parent = child
	}
	leaf := segments[len(segments)-1]

	value, hasValue := op["value"]
	_, exists := parent[leaf]

	switch op["op"] {
	case "add", "set":
		if !hasValue {
			return errorf(http.StatusBadRequest, "patch operation %s requires a value", op["op"])
		}
		parent[leaf] = value
	case "replace":
		if !exists {
			return errorf(http.StatusBadRequest, "path %q does not exist", path)
		}
		parent[leaf] = value
	case "remove":
		if !exists {
			return errorf(http.StatusBadRequest, "path %q does not exist", path)
		}
		delete(parent, leaf)
	case "incr":
		current, ok := toFloat(parent[leaf])
		if exists && !ok {
			return errorf(http.StatusBadRequest, "path %q is not a number", path)
		}
		by, ok := toFloat(value)
		if !ok {
			return errorf(http.StatusBadRequest, "incr requires a numeric value")
		}
		parent[leaf] = current + by
	default:
		return errorf(http.StatusBadRequest, "unsupported patch operation %v", op["op"])
	}

	return nil
}

func (s *Server) delete(r *http.Request, pk, id string) (*response, *cosmosError) {
	existing, found := s.docs[pk][id]
	if !found {
		return nil, errorf(http.StatusNotFound, "Entity with the specified id does not exist in the system.")
	}

	if cerr := s.checkIfMatch(r, existing); cerr != nil {
		return nil, cerr
	}

	delete(s.docs[pk], id)

	return &response{statusCode: http.StatusNoContent}, nil
}

// store saves doc with fresh system properties and returns a copy.
func (s *Server) store(doc map[string]interface{}) map[string]interface{} {
	pk := fmt.Sprint(doc[s.pkProperty])
	id := fmt.Sprint(doc["id"])

	s.etag++
	doc["_etag"] = fmt.Sprintf(`"%08x-0000-0000-0000-000000000000"`, s.etag)
	doc["_rid"] = base64.StdEncoding.EncodeToString([]byte(pk + "/" + id))
	doc["_ts"] = time.Now().Unix()

	if s.docs[pk] == nil {
		s.docs[pk] = map[string]map[string]interface{}{}
	}
	s.docs[pk][id] = doc

	return copyMap(doc)
}

// all returns copies of the documents in partition pk, or of every document
// if pk is empty.
func (s *Server) all(pk string) []map[string]interface{} {
	var pks []string
	if pk != "" {
		pks = []string{pk}
	} else {
		for k := range s.docs {
			pks = append(pks, k)
		}
		sort.Strings(pks)
	}

	var docs []map[string]interface{}
	for _, k := range pks {
		ids := make([]string, 0, len(s.docs[k]))
		for id := range s.docs[k] {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			docs = append(docs, copyMap(s.docs[k][id]))
		}
	}

	return docs
}

func etagHeader(doc map[string]interface{}) http.Header {
	h := http.Header{}
	h.Set("Etag", fmt.Sprint(doc["_etag"]))
	return h
}
