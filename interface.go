// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"context"
	"net/http"
	"net/url"
)

// HTTPDoer is the interface the Client requires of the underlying
// HTTP transport. It is implemented by *http.Client and by
// sandbox.Transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// IdleCloser is optionally implemented by an HTTPDoer that can close
// its idle connections. *http.Client implements it.
type IdleCloser interface {
	CloseIdleConnections()
}

// Caller is the interface the resource services require of the Client:
// a single method that performs one logical API request, retrying as
// the retry policy dictates, and decodes the response into v.
//
// It exists so services can be tested against a fake, and so
// decorated clients, like those returned from WithRetryPolicy, can
// stand in for the original.
type Caller interface {
	Call(ctx context.Context, method, path string, query url.Values, header http.Header, body, v any) error
}
