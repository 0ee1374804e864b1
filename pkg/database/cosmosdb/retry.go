package cosmosdb

// Copyright (c) Microsoft Corporation.
// Licensed under the Apache License 2.0.

import (
	"net/http"
)

// RetryOnPreconditionFailed calls f until it returns anything other than a
// 412, at most five times.  The DocumentClient never calls it itself.
func RetryOnPreconditionFailed(f func() error) (err error) {
	for i := 0; i < 5; i++ {
		err = f()
		if !IsErrorStatusCode(err, http.StatusPreconditionFailed) {
			return
		}
	}

	return
}
