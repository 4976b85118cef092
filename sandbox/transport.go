// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package sandbox

import (
	"net/http"
	"net/http/httptest"

	"github.com/gogama/payx"
)

// Transport dispatches requests straight into a Server without opening
// a network socket. It satisfies the client's HTTPDoer contract, so a
// payx.Client configured with a Transport exercises the full request
// path, including retries, against in-memory state.
type Transport struct {
	Server *Server
}

// Do serves req from the transport's Server and returns the recorded
// response.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.Server.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// Client returns a payx.Client wired directly to the server. The
// client carries the server's API key and needs no running listener.
func (s *Server) Client() *payx.Client {
	return &payx.Client{
		APIKey:   s.APIKey,
		BaseURL:  "http://sandbox.local/v1",
		HTTPDoer: &Transport{Server: s},
	}
}
