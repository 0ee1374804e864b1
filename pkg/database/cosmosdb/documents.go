package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/sirupsen/logrus"

	"github.com/Azure/cosmos-rest/pkg/metrics"
	"github.com/Azure/cosmos-rest/pkg/metrics/noop"
)

const (
	// DefaultDNSSuffix is the DNS suffix of Cosmos DB accounts in the public
	// cloud.
	DefaultDNSSuffix = "documents.azure.com"

	// DefaultPartitionKeyPath is used when the container partition key path
	// is not configured.
	DefaultPartitionKeyPath = "/pk"
)

// Endpoint returns https://{account}.{dnsSuffix}.
func Endpoint(account, dnsSuffix string) string {
	if dnsSuffix == "" {
		dnsSuffix = DefaultDNSSuffix
	}

	return "https://" + account + "." + dnsSuffix
}

// Options are the conditional request options of replace, patch and delete.
type Options struct {
	IfMatch string
}

// ListOptions page a list operation.
type ListOptions struct {
	MaxItemCount int
	Continuation string
}

// QueryOptions configure a query.  PartitionKey scopes a single partition
// query; it is ignored by QueryCrossPartition.
type QueryOptions struct {
	PartitionKey string
	MaxItemCount int
	Continuation string
}

// DocumentClient is a document client for a single container.  Every call is
// a single attempt: a non-2xx response is returned as *Error, a failed HTTP
// exchange as *TransportError.
type DocumentClient interface {
	Upsert(context.Context, *Document) (*Response, error)
	Get(ctx context.Context, id, partitionKey string) (*Response, error)
	List(ctx context.Context, partitionKey string, o *ListOptions) (*Response, error)
	Query(context.Context, *Query, *QueryOptions) (*Response, error)
	QueryCrossPartition(context.Context, *Query, *QueryOptions) (*Response, error)
	Replace(ctx context.Context, id, partitionKey string, doc *Document, o *Options) (*Response, error)
	Patch(ctx context.Context, id, partitionKey string, patch *Patch, o *Options) (*Response, error)
	Delete(ctx context.Context, id, partitionKey string, o *Options) (*Response, error)
}

// Response is a successful (2xx) response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	ETag          string
	Continuation  string
	RequestCharge float64
	ActivityID    string
}

// Decode decodes the response body into v.
func (r *Response) Decode(v interface{}) error {
	return decodeJSON(JSONHandle, r.Body, v)
}

// Document decodes a single document response.
func (r *Response) Document(partitionKeyPath string) (*Document, error) {
	return DecodeDocument(r.Body, partitionKeyPath)
}

// Documents decodes a list or query response.
func (r *Response) Documents(partitionKeyPath string) ([]*Document, error) {
	var l DocumentList
	err := r.Decode(&l)
	if err != nil {
		return nil, err
	}

	docs := make([]*Document, 0, len(l.Documents))
	for _, m := range l.Documents {
		docs = append(docs, documentFromMap(m, partitionKeyPath))
	}

	return docs, nil
}

type documentClient struct {
	log      *logrus.Entry
	m        metrics.Emitter
	framer   *Framer
	pipeline runtime.Pipeline
}

var _ DocumentClient = &documentClient{}

// NewDocumentClient returns a DocumentClient for database/container on the
// account reachable at endpoint.  A nil m discards metrics.
func NewDocumentClient(log *logrus.Entry, m metrics.Emitter, endpoint string, authorizer Authorizer, database, container string, o *ClientOptions) (DocumentClient, error) {
	for name, value := range map[string]string{
		"endpoint":  endpoint,
		"database":  database,
		"container": container,
	} {
		if value == "" {
			return nil, fmt.Errorf("%w: %s must not be empty", ErrInvalidConfiguration, name)
		}
	}

	if authorizer == nil {
		return nil, fmt.Errorf("%w: authorizer must not be nil", ErrInvalidConfiguration)
	}

	if m == nil {
		m = &noop.Noop{}
	}

	if o == nil {
		o = &ClientOptions{}
	}

	framer, err := NewFramer(endpoint, database, container, o.PartitionKeyPath, authorizer)
	if err != nil {
		return nil, err
	}

	return &documentClient{
		log:      log,
		m:        m,
		framer:   framer,
		pipeline: newPipeline(log, o),
	}, nil
}

// Upsert creates doc, or replaces the document with the same id and
// partition key.
func (c *documentClient) Upsert(ctx context.Context, doc *Document) (*Response, error) {
	return c.do(ctx, OperationUpsert, &FrameParams{Document: doc})
}

func (c *documentClient) Get(ctx context.Context, id, partitionKey string) (*Response, error) {
	return c.do(ctx, OperationGet, &FrameParams{ID: id, PartitionKey: partitionKey})
}

func (c *documentClient) List(ctx context.Context, partitionKey string, o *ListOptions) (*Response, error) {
	p := &FrameParams{PartitionKey: partitionKey}
	if o != nil {
		p.MaxItemCount = o.MaxItemCount
		p.Continuation = o.Continuation
	}

	return c.do(ctx, OperationList, p)
}

func (c *documentClient) Query(ctx context.Context, q *Query, o *QueryOptions) (*Response, error) {
	return c.do(ctx, OperationQuery, queryParams(q, o))
}

// QueryCrossPartition runs q over all partitions.  A continuation token, if
// any, is returned in Response.Continuation; it is not followed.
func (c *documentClient) QueryCrossPartition(ctx context.Context, q *Query, o *QueryOptions) (*Response, error) {
	p := queryParams(q, o)
	p.PartitionKey = ""

	return c.do(ctx, OperationQueryCrossPartition, p)
}

func queryParams(q *Query, o *QueryOptions) *FrameParams {
	p := &FrameParams{Query: q}
	if o != nil {
		p.PartitionKey = o.PartitionKey
		p.MaxItemCount = o.MaxItemCount
		p.Continuation = o.Continuation
	}

	return p
}

// Replace replaces the document id in partitionKey with doc.  doc may carry a
// new id but not a new partition key.
func (c *documentClient) Replace(ctx context.Context, id, partitionKey string, doc *Document, o *Options) (*Response, error) {
	return c.do(ctx, OperationReplace, &FrameParams{ID: id, PartitionKey: partitionKey, Document: doc, IfMatch: o.ifMatch()})
}

func (c *documentClient) Patch(ctx context.Context, id, partitionKey string, patch *Patch, o *Options) (*Response, error) {
	return c.do(ctx, OperationPatch, &FrameParams{ID: id, PartitionKey: partitionKey, Patch: patch, IfMatch: o.ifMatch()})
}

func (c *documentClient) Delete(ctx context.Context, id, partitionKey string, o *Options) (*Response, error) {
	return c.do(ctx, OperationDelete, &FrameParams{ID: id, PartitionKey: partitionKey, IfMatch: o.ifMatch()})
}

func (o *Options) ifMatch() string {
	if o == nil {
		return ""
	}

	return o.IfMatch
}

func (c *documentClient) do(ctx context.Context, op Operation, p *FrameParams) (*Response, error) {
	r, err := c.framer.Frame(op, p)
	if err != nil {
		return nil, err
	}

	req, err := runtime.NewRequest(ctx, r.Method, r.URI)
	if err != nil {
		return nil, err
	}

	for k, v := range r.Header {
		req.Raw().Header[k] = v
	}

	if r.Body != nil {
		err = req.SetBody(streaming.NopCloser(bytes.NewReader(r.Body)), r.Header.Get(headerContentType))
		if err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.pipeline.Do(req)
	if err != nil {
		c.emit(op, 0, start)
		c.log.WithField("operation", op).Warnf("%s failed: %v", op, err)
		return nil, &TransportError{Operation: op, Err: err}
	}

	body, err := runtime.Payload(resp)
	if err != nil {
		c.emit(op, 0, start)
		return nil, &TransportError{Operation: op, Err: err}
	}

	c.emit(op, resp.StatusCode, start)

	l := c.log.WithFields(logrus.Fields{
		"operation":   op,
		"status_code": resp.StatusCode,
		"activity_id": resp.Header.Get(headerActivityID),
	})

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		l.Warnf("%s: %s", op, resp.Status)
		return nil, newError(resp, body)
	}

	l.Infof("%s: %s", op, resp.Status)

	charge, _ := strconv.ParseFloat(resp.Header.Get(headerRequestCharge), 64)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,

		ETag:          resp.Header.Get(headerETag),
		Continuation:  resp.Header.Get(headerContinuation),
		RequestCharge: charge,
		ActivityID:    resp.Header.Get(headerActivityID),
	}, nil
}

func (c *documentClient) emit(op Operation, statusCode int, start time.Time) {
	dims := map[string]string{
		"operation": string(op),
		"code":      strconv.Itoa(statusCode),
	}

	c.m.EmitGauge("client.cosmosdb.duration", time.Since(start).Milliseconds(), dims)
	c.m.EmitGauge("client.cosmosdb.count", 1, dims)
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		c.m.EmitGauge("client.cosmosdb.errors", 1, dims)
	}
}

func newError(resp *http.Response, body []byte) *Error {
	cerr := &Error{
		StatusCode: resp.StatusCode,
		Status:     reasonPhrase(resp),
		Body:       body,
	}

	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if len(body) > 0 && decodeJSON(JSONHandle, body, &e) == nil {
		cerr.Code = e.Code
		cerr.Message = e.Message
	}

	return cerr
}

// reasonPhrase strips the status code from resp.Status ("404 Not Found").
func reasonPhrase(resp *http.Response) string {
	if resp.Status == "" {
		return http.StatusText(resp.StatusCode)
	}

	return strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
}
