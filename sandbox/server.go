// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package sandbox

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Magic card numbers with deterministic outcomes. Payments funded
// with CardApproved always succeed; the others are rejected with the
// matching decline code.
const (
	CardApproved   = "4111111111111111"
	CardDeclined   = "4000000000000002"
	CardExpired    = "4000000000000069"
	CardInvalidCVV = "4000000000000127"
)

// PendingThreshold is the amount, in minor currency units, above
// which a created payment or refund is left in the PENDING state
// instead of completing immediately.
const PendingThreshold = 10000

const defaultPageLimit = 10

// A Server simulates the payment API. It implements http.Handler, so
// it can be served by httptest or dispatched into directly through a
// Transport. The zero value is a working server that accepts any
// API key and never injects failures.
//
// Configure the exported fields before the first request. FailRate
// may be adjusted between requests, but not while requests are in
// flight.
//
// All state lives in memory. Requests may arrive concurrently; the
// stored resources are guarded by one mutex.
type Server struct {
	// APIKey, when set, requires every request to carry an
	// Authorization header of exactly "Basic " followed by the key.
	// When empty, authentication is not enforced.
	APIKey string
	// FailRate is the probability, from 0 to 1, that a request is
	// rejected with a randomly chosen transient failure before it
	// reaches a handler.
	FailRate float64
	// MinLatency and MaxLatency bound the uniform random delay added
	// to every request. Zero values add no delay.
	MinLatency time.Duration
	MaxLatency time.Duration
	// Limiter, when set, imposes a request rate. Requests beyond the
	// rate are rejected with 429 and a Retry-After header.
	Limiter *rate.Limiter
	// MaxInFlight, when positive, caps the number of requests handled
	// concurrently. Requests beyond the cap wait their turn.
	MaxInFlight int64
	// Logger, when set, receives a debug line per handled request.
	Logger *slog.Logger

	once sync.Once
	mux  *http.ServeMux
	sem  *semaphore.Weighted

	mu          sync.Mutex
	customers   *store
	payments    *store
	webhooks    *store
	cards       map[string]*store
	refunds     map[string]*store
	idempotency map[string][]byte
}

func (s *Server) init() {
	s.customers = newStore()
	s.payments = newStore()
	s.webhooks = newStore()
	s.cards = make(map[string]*store)
	s.refunds = make(map[string]*store)
	s.idempotency = make(map[string][]byte)
	if s.MaxInFlight > 0 {
		s.sem = semaphore.NewWeighted(s.MaxInFlight)
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("POST /customers", s.createCustomer)
	s.mux.HandleFunc("GET /customers", s.listCustomers)
	s.mux.HandleFunc("GET /customers/{id}", s.getCustomer)
	s.mux.HandleFunc("PUT /customers/{id}", s.updateCustomer)
	s.mux.HandleFunc("DELETE /customers/{id}", s.deleteCustomer)

	s.mux.HandleFunc("POST /customers/{id}/cards", s.createCard)
	s.mux.HandleFunc("GET /customers/{id}/cards", s.listCards)
	s.mux.HandleFunc("GET /customers/{id}/cards/{cardID}", s.getCard)
	s.mux.HandleFunc("PUT /customers/{id}/cards/{cardID}", s.updateCard)
	s.mux.HandleFunc("DELETE /customers/{id}/cards/{cardID}", s.deleteCard)

	s.mux.HandleFunc("POST /payments", s.createPayment)
	s.mux.HandleFunc("GET /payments", s.listPayments)
	s.mux.HandleFunc("GET /payments/{id}", s.getPayment)
	s.mux.HandleFunc("POST /payments/{id}/cancel", s.cancelPayment)
	s.mux.HandleFunc("POST /payments/{id}/capture", s.capturePayment)

	s.mux.HandleFunc("POST /payments/{id}/refunds", s.createRefund)
	s.mux.HandleFunc("GET /payments/{id}/refunds", s.listRefunds)
	s.mux.HandleFunc("GET /payments/{id}/refunds/{refundID}", s.getRefund)
	s.mux.HandleFunc("POST /payments/{id}/refunds/{refundID}/cancel", s.cancelRefund)

	s.mux.HandleFunc("POST /webhooks", s.createWebhook)
	s.mux.HandleFunc("GET /webhooks", s.listWebhooks)
	s.mux.HandleFunc("GET /webhooks/{id}", s.getWebhook)
	s.mux.HandleFunc("PUT /webhooks/{id}", s.updateWebhook)
	s.mux.HandleFunc("DELETE /webhooks/{id}", s.deleteWebhook)

	s.mux.HandleFunc("/", s.notFound)
}

// ServeHTTP dispatches one API request, applying the configured
// latency, failure injection, rate limit, authentication, and
// idempotency replay before the resource handlers run.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.once.Do(s.init)
	if s.sem != nil {
		if err := s.sem.Acquire(r.Context(), 1); err != nil {
			return
		}
		defer s.sem.Release(1)
	}
	if err := s.sleepLatency(r.Context()); err != nil {
		return
	}
	if s.Limiter != nil && !s.Limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
		return
	}
	if s.injectFailure(w) {
		return
	}
	if !s.authorize(w, r) {
		return
	}
	if strings.HasPrefix(r.URL.Path, "/v1/") {
		r = r.Clone(r.Context())
		r.URL.Path = strings.TrimPrefix(r.URL.Path, "/v1")
	}
	if s.replayIdempotent(w, r) {
		return
	}
	key := r.Header.Get("Idempotency-Key")
	rec := &recorder{ResponseWriter: w, status: http.StatusOK, capture: r.Method == http.MethodPost && key != ""}
	s.mux.ServeHTTP(rec, r)
	if rec.capture && rec.status == http.StatusOK {
		s.mu.Lock()
		s.idempotency[key] = rec.body.Bytes()
		s.mu.Unlock()
	}
	if s.Logger != nil {
		s.Logger.Debug("sandbox request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status))
	}
}

// Reset drops every stored resource and idempotency record, returning
// the server to its initial empty state.
func (s *Server) Reset() {
	s.once.Do(s.init)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = newStore()
	s.payments = newStore()
	s.webhooks = newStore()
	s.cards = make(map[string]*store)
	s.refunds = make(map[string]*store)
	s.idempotency = make(map[string][]byte)
}

func (s *Server) sleepLatency(ctx context.Context) error {
	if s.MaxLatency <= 0 {
		return nil
	}
	lo := s.MinLatency
	if lo < 0 {
		lo = 0
	}
	if lo > s.MaxLatency {
		lo = s.MaxLatency
	}
	d := lo + time.Duration(rand.Float64()*float64(s.MaxLatency-lo))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Server) injectFailure(w http.ResponseWriter) bool {
	if s.FailRate <= 0 || rand.Float64() >= s.FailRate {
		return false
	}
	switch rand.Intn(3) {
	case 0:
		writeError(w, http.StatusInternalServerError, "ERROR", "Network error occurred")
	case 1:
		writeError(w, http.StatusInternalServerError, "ERROR", "Internal server error")
	default:
		writeError(w, http.StatusTooManyRequests, "ERROR", "Rate limit exceeded")
	}
	return true
}

func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	if s.APIKey == "" {
		return true
	}
	if r.Header.Get("Authorization") != "Basic "+s.APIKey {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid API key provided")
		return false
	}
	return true
}

func (s *Server) replayIdempotent(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		return false
	}
	s.mu.Lock()
	cached, ok := s.idempotency[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	w.Header().Set("Idempotent-Replayed", "true")
	writeJSON(w, http.StatusOK, cached)
	return true
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Path not found: "+r.URL.Path)
}

// recorder tees the response status, and optionally the body, so the
// server can log the outcome and cache idempotent POST responses.
type recorder struct {
	http.ResponseWriter
	status  int
	capture bool
	body    bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(p []byte) (int, error) {
	if r.capture {
		r.body.Write(p)
	}
	return r.ResponseWriter.Write(p)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read request body")
		return nil, false
	}
	if len(body) == 0 {
		body = []byte(`{}`)
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body is not valid JSON")
		return nil, false
	}
	return body, true
}

func (s *Server) require(w http.ResponseWriter, body []byte, fields ...string) bool {
	var missing []string
	for _, f := range fields {
		if !gjson.GetBytes(body, f).Exists() {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Missing required parameters: "+strings.Join(missing, ", "))
		return false
	}
	return true
}

func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func set(doc []byte, path string, value any) []byte {
	doc, _ = sjson.SetBytes(doc, path, value)
	return doc
}

func stamp(doc []byte) []byte {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	doc = set(doc, "createdAt", now)
	return set(doc, "updatedAt", now)
}

func touch(doc []byte) []byte {
	return set(doc, "updatedAt", time.Now().UTC().Format(time.RFC3339Nano))
}

// mergeDocs overlays the top level fields of patch onto doc, the way
// the API treats a PUT carrying partial fields.
func mergeDocs(doc, patch []byte) []byte {
	gjson.ParseBytes(patch).ForEach(func(key, value gjson.Result) bool {
		doc = set(doc, key.Str, value.Value())
		return true
	})
	return doc
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	body := []byte(`{"error":{"code":"","message":"","details":[]}}`)
	body = set(body, "error.code", code)
	body = set(body, "error.message", message)
	writeJSON(w, status, body)
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, offset = defaultPageLimit, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func page(docs [][]byte, limit, offset int) [][]byte {
	if offset >= len(docs) {
		return nil
	}
	end := offset + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[offset:end]
}

func listEnvelope(resource string, docs [][]byte, total, limit, offset int) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteString(strconv.Quote(resource))
	buf.WriteString(":[")
	for i, doc := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(doc)
	}
	buf.WriteString(`],"pagination":{"totalItems":`)
	buf.WriteString(strconv.Itoa(total))
	buf.WriteString(`,"limit":`)
	buf.WriteString(strconv.Itoa(limit))
	buf.WriteString(`,"offset":`)
	buf.WriteString(strconv.Itoa(offset))
	buf.WriteString(`}}`)
	return buf.Bytes()
}
