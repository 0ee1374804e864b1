package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIVersion is sent as x-ms-version on every request.
const APIVersion = "2018-12-31"

const (
	headerAccept                    = "Accept"
	headerContentType               = "Content-Type"
	headerAuthorization             = "authorization"
	headerDate                      = "x-ms-date"
	headerVersion                   = "x-ms-version"
	headerPartitionKey              = "x-ms-documentdb-partitionkey"
	headerIsUpsert                  = "x-ms-documentdb-is-upsert"
	headerIsQuery                   = "x-ms-documentdb-isquery"
	headerEnableCrossPartitionQuery = "x-ms-documentdb-query-enablecrosspartition"
	headerMaxItemCount              = "x-ms-max-item-count"
	headerContinuation              = "x-ms-continuation"
	headerIfMatch                   = "If-Match"
	headerRequestCharge             = "x-ms-request-charge"
	headerActivityID                = "x-ms-activity-id"
	headerETag                      = "Etag"

	contentTypeJSON  = "application/json"
	contentTypeQuery = "application/query+json"

	headerValueTrue = "True"
)

// Request is a fully framed REST call.  A new Request, with a new Header map,
// is built for every call; nothing is shared between two Requests.
type Request struct {
	Operation Operation
	Method    string
	URI       string
	Header    http.Header
	Body      []byte
}

// FrameParams carries the per-call inputs of Frame.  Which fields are used
// depends on the Operation.
type FrameParams struct {
	ID           string
	PartitionKey string
	Document     *Document
	Query        *Query
	Patch        *Patch

	// MaxItemCount is the page size of a query; <= 0 lets the service decide.
	MaxItemCount int
	// Continuation resumes a previous query page.
	Continuation string
	// IfMatch makes replace, patch and delete conditional on an ETag.
	IfMatch string
}

// descriptor is the per-call operation descriptor: what is signed and what is
// sent, before the shared headers are added.
type descriptor struct {
	verb   string
	kind   ResourceKind
	path   ResourcePath
	uri    string
	header http.Header
	body   interface{}

	contentType string
}

// Framer turns an Operation into a wire-correct Request for one container.
// It holds no mutable state and may be used concurrently.
type Framer struct {
	endpoint         string
	database         string
	container        string
	partitionKeyPath string

	authorizer Authorizer
	now        func() time.Time
}

// NewFramer returns a Framer addressing database/container on endpoint, e.g.
// https://myaccount.documents.azure.com.
func NewFramer(endpoint, database, container, partitionKeyPath string, authorizer Authorizer) (*Framer, error) {
	if _, err := BuildCollectionPath(database, container); err != nil {
		return nil, err
	}

	if partitionKeyPath == "" {
		partitionKeyPath = DefaultPartitionKeyPath
	}

	return &Framer{
		endpoint:         strings.TrimSuffix(endpoint, "/"),
		database:         database,
		container:        container,
		partitionKeyPath: partitionKeyPath,

		authorizer: authorizer,
		now:        time.Now,
	}, nil
}

// Frame builds the request for op.
func (f *Framer) Frame(op Operation, p *FrameParams) (*Request, error) {
	if p == nil {
		p = &FrameParams{}
	}

	d, err := f.describe(op, p)
	if err != nil {
		return nil, err
	}

	return f.frame(op, d)
}

func (f *Framer) describe(op Operation, p *FrameParams) (*descriptor, error) {
	switch op {
	case OperationUpsert:
		if p.Document == nil {
			return nil, fmt.Errorf("%w: document is required", ErrInvalidArgument)
		}
		if err := validateSegment("document id", p.Document.ID); err != nil {
			return nil, err
		}

		d, err := f.collection(http.MethodPost)
		if err != nil {
			return nil, err
		}
		d.header.Set(headerIsUpsert, headerValueTrue)
		d.header.Set(headerPartitionKey, partitionKeyHeader(p.Document.PartitionKey))
		d.body = p.Document.body(f.partitionKeyPath)
		d.contentType = contentTypeJSON
		return d, nil

	case OperationGet, OperationDelete:
		method := http.MethodGet
		if op == OperationDelete {
			method = http.MethodDelete
		}

		d, err := f.item(method, p.ID)
		if err != nil {
			return nil, err
		}
		d.header.Set(headerPartitionKey, partitionKeyHeader(p.PartitionKey))
		if op == OperationDelete {
			setIfMatch(d.header, p.IfMatch)
		}
		return d, nil

	case OperationList:
		d, err := f.collection(http.MethodGet)
		if err != nil {
			return nil, err
		}
		d.header.Set(headerPartitionKey, partitionKeyHeader(p.PartitionKey))
		setPaging(d.header, p)
		return d, nil

	case OperationQuery, OperationQueryCrossPartition:
		if p.Query == nil || p.Query.Query == "" {
			return nil, fmt.Errorf("%w: query text is required", ErrInvalidArgument)
		}

		d, err := f.collection(http.MethodPost)
		if err != nil {
			return nil, err
		}
		d.header.Set(headerIsQuery, headerValueTrue)
		if op == OperationQueryCrossPartition {
			d.header.Set(headerEnableCrossPartitionQuery, headerValueTrue)
			d.header.Set(headerMaxItemCount, maxItemCount(p.MaxItemCount))
			if p.Continuation != "" {
				d.header.Set(headerContinuation, p.Continuation)
			}
		} else {
			if p.PartitionKey != "" {
				d.header.Set(headerPartitionKey, partitionKeyHeader(p.PartitionKey))
			}
			setPaging(d.header, p)
		}

		q := *p.Query
		if q.Parameters == nil {
			q.Parameters = []QueryParameter{}
		}
		d.body = &q
		d.contentType = contentTypeQuery
		return d, nil

	case OperationReplace:
		if p.Document == nil {
			return nil, fmt.Errorf("%w: document is required", ErrInvalidArgument)
		}
		if p.Document.PartitionKey != "" && p.Document.PartitionKey != p.PartitionKey {
			return nil, fmt.Errorf("%w: replace cannot move a document from partition %q to %q", ErrInvalidArgument, p.PartitionKey, p.Document.PartitionKey)
		}
		if err := validateSegment("document id", p.Document.ID); err != nil {
			return nil, err
		}

		// the link is always built from the id being replaced; the body may
		// carry a new id
		d, err := f.item(http.MethodPut, p.ID)
		if err != nil {
			return nil, err
		}
		d.header.Set(headerPartitionKey, partitionKeyHeader(p.PartitionKey))
		setIfMatch(d.header, p.IfMatch)

		doc := *p.Document
		doc.PartitionKey = p.PartitionKey
		d.body = doc.body(f.partitionKeyPath)
		d.contentType = contentTypeJSON
		return d, nil

	case OperationPatch:
		if err := p.Patch.validate(); err != nil {
			return nil, err
		}

		d, err := f.item(http.MethodPatch, p.ID)
		if err != nil {
			return nil, err
		}
		d.header.Set(headerPartitionKey, partitionKeyHeader(p.PartitionKey))
		setIfMatch(d.header, p.IfMatch)
		d.body = p.Patch.body()
		d.contentType = contentTypeJSON
		return d, nil
	}

	return nil, fmt.Errorf("%w: unsupported operation %q", ErrInvalidArgument, op)
}

// collection describes a request against dbs/{db}/colls/{coll}/docs, signed
// with the container link.
func (f *Framer) collection(verb string) (*descriptor, error) {
	path, err := BuildCollectionPath(f.database, f.container)
	if err != nil {
		return nil, err
	}

	return &descriptor{
		verb:   verb,
		kind:   ResourceKindDocument,
		path:   path,
		uri:    f.endpoint + "/dbs/" + url.PathEscape(f.database) + "/colls/" + url.PathEscape(f.container) + "/docs",
		header: http.Header{},
	}, nil
}

// item describes a request against dbs/{db}/colls/{coll}/docs/{id}.
func (f *Framer) item(verb, id string) (*descriptor, error) {
	path, err := BuildItemPath(f.database, f.container, id)
	if err != nil {
		return nil, err
	}

	return &descriptor{
		verb:   verb,
		kind:   ResourceKindDocument,
		path:   path,
		uri:    f.endpoint + "/dbs/" + url.PathEscape(f.database) + "/colls/" + url.PathEscape(f.container) + "/docs/" + url.PathEscape(id),
		header: http.Header{},
	}, nil
}

func (f *Framer) frame(op Operation, d *descriptor) (*Request, error) {
	date := f.now().UTC().Format(http.TimeFormat)

	h := d.header
	h.Set(headerAccept, contentTypeJSON)
	h.Set(headerDate, date)
	h.Set(headerVersion, APIVersion)
	h.Set(headerAuthorization, f.authorizer.Authorize(d.verb, d.kind, d.path, date))

	r := &Request{
		Operation: op,
		Method:    d.verb,
		URI:       d.uri,
		Header:    h,
	}

	if d.body != nil {
		b, err := encodeJSON(JSONHandle, d.body)
		if err != nil {
			return nil, err
		}

		r.Body = b
		// a bare media type: the service rejects a charset parameter on
		// query bodies
		h.Set(headerContentType, d.contentType)
	}

	return r, nil
}

// partitionKeyHeader renders a partition key as a single element JSON array,
// e.g. ["pk1"].
func partitionKeyHeader(pk string) string {
	b, err := encodeJSON(JSONHandle, []string{pk})
	if err != nil {
		// encoding a []string cannot fail
		panic(err)
	}

	return string(b)
}

func maxItemCount(n int) string {
	if n <= 0 {
		return "-1"
	}

	return strconv.Itoa(n)
}

func setPaging(h http.Header, p *FrameParams) {
	if p.MaxItemCount > 0 {
		h.Set(headerMaxItemCount, strconv.Itoa(p.MaxItemCount))
	}
	if p.Continuation != "" {
		h.Set(headerContinuation, p.Continuation)
	}
}

func setIfMatch(h http.Header, etag string) {
	if etag != "" {
		h.Set(headerIfMatch, etag)
	}
}
