package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/sirupsen/logrus"
)

const (
	moduleName    = "cosmosrest"
	moduleVersion = "v1.0.0"

	responseCode         = "response_status_code"
	contentLength        = "content_length"
	durationMilliseconds = "duration_milliseconds"
)

// ClientOptions configures a DocumentClient.  Retry settings are ignored:
// every call is a single attempt.
type ClientOptions struct {
	azcore.ClientOptions

	// PartitionKeyPath is the partition key path of the container, e.g. "/pk".
	PartitionKeyPath string
}

type policyFunc func(req *policy.Request) (*http.Response, error)

func (p policyFunc) Do(req *policy.Request) (*http.Response, error) {
	return p(req)
}

var _ policy.Policy = policyFunc(nil)

// newLoggingPolicy logs every outgoing request.  Headers are never logged:
// they carry the authorization token.
func newLoggingPolicy(log *logrus.Entry) policy.Policy {
	return policyFunc(func(req *policy.Request) (*http.Response, error) {
		requestTime := time.Now()
		l := log.WithFields(logrus.Fields{
			"request_method": req.Raw().Method,
			"request_path":   req.Raw().URL.Path,
		})

		l.Debug("HttpRequestStart")

		res, err := req.Next()

		if res == nil {
			l = l.WithFields(logrus.Fields{
				responseCode:         "0",
				durationMilliseconds: time.Since(requestTime).Milliseconds(),
			})
		} else {
			l = l.WithFields(logrus.Fields{
				responseCode:         res.StatusCode,
				contentLength:        res.ContentLength,
				durationMilliseconds: time.Since(requestTime).Milliseconds(),
			})
		}
		l.Debug("HttpRequestEnd")

		return res, err
	})
}

func newPipeline(log *logrus.Entry, o *ClientOptions) runtime.Pipeline {
	clientOptions := o.ClientOptions
	// a negative value means one try and no retries
	clientOptions.Retry = policy.RetryOptions{MaxRetries: -1}

	return runtime.NewPipeline(
		moduleName,
		moduleVersion,
		runtime.PipelineOptions{
			PerCall: []policy.Policy{newLoggingPolicy(log)},
		},
		&clientOptions,
	)
}
