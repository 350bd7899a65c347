// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/weddingbook/internal/auth"
	"github.com/tomtom215/weddingbook/internal/authz"
	"github.com/tomtom215/weddingbook/internal/catalog"
	"github.com/tomtom215/weddingbook/internal/config"
	"github.com/tomtom215/weddingbook/internal/emailqueue"
	"github.com/tomtom215/weddingbook/internal/logging"
	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/orders"
	"github.com/tomtom215/weddingbook/internal/payments"
	"github.com/tomtom215/weddingbook/internal/recommend"
	"github.com/tomtom215/weddingbook/internal/store"
)

const adminEmail = "admin@example.com"

// fakeQueue records email jobs and implements EmailQueue.
type fakeQueue struct {
	mu   sync.Mutex
	jobs []emailqueue.Payload
}

func (q *fakeQueue) Enqueue(p emailqueue.Payload, _ ...emailqueue.Option) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, p)
	return fmt.Sprintf("job-%d", len(q.jobs)), nil
}

func (q *fakeQueue) Status() emailqueue.Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return emailqueue.Stats{Total: len(q.jobs), Waiting: len(q.jobs)}
}

func (q *fakeQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.jobs)
	q.jobs = nil
	return n
}

func (q *fakeQueue) otpFor(t *testing.T, email string) string {
	t.Helper()
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := len(q.jobs) - 1; i >= 0; i-- {
		if p, ok := q.jobs[i].(emailqueue.VerificationOTP); ok && p.To == email {
			return p.Code
		}
	}
	t.Fatalf("no verification email for %s", email)
	return ""
}

// fakeImages stands in for the object store.
type fakeImages struct {
	mu      sync.Mutex
	uploads []string
}

func (f *fakeImages) Upload(_ context.Context, key, _ string, _ io.ReadSeeker) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, key)
	return "https://cdn.example/" + key, nil
}

func (f *fakeImages) Delete(context.Context, string) error { return nil }

// fakeProcessor accepts signature "valid"; the payload is "<type> <session id>".
type fakeProcessor struct {
	mu       sync.Mutex
	sessions map[string]*payments.Session
}

func (f *fakeProcessor) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (*payments.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("cs_test_%d", len(f.sessions)+1)
	sess := &payments.Session{
		ID:            id,
		URL:           "https://checkout.example/" + id,
		AmountMinor:   req.AmountMinor,
		OrderID:       req.OrderID,
		UserID:        req.UserID,
		PaymentAmount: req.PaymentAmount,
	}
	f.sessions[id] = sess
	out := *sess
	return &out, nil
}

func (f *fakeProcessor) GetSession(_ context.Context, id string) (*payments.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[id]
	if !ok {
		return nil, models.NewNotFoundError("payment session")
	}
	out := *sess
	return &out, nil
}

func (f *fakeProcessor) ParseWebhook(payload []byte, signature string) (*payments.Event, error) {
	if signature != "valid" {
		return nil, payments.ErrInvalidSignature
	}
	typ, id, _ := strings.Cut(string(payload), " ")
	ev := &payments.Event{ID: "evt_" + id, Type: typ}
	f.mu.Lock()
	defer f.mu.Unlock()
	if sess, ok := f.sessions[id]; ok {
		sess.Paid = true
		out := *sess
		ev.Session = &out
	}
	return ev, nil
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *store.Store
	catalog *catalog.Service
	queue   *fakeQueue
	images  *fakeImages
}

func newTestServer(t *testing.T, tweak func(*config.Config)) *testServer {
	t.Helper()
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{PublicURL: "http://localhost:3000", MaxUpload: 1 << 10},
		Security: config.SecurityConfig{
			JWTSecret:            "api_test_secret_that_is_definitely_long_enough",
			TokenTTL:             time.Hour,
			ResetTokenTTL:        15 * time.Minute,
			OTPTTL:               10 * time.Minute,
			AdminEmail:           adminEmail,
			RateLimitDisabled:    true,
			AccountEmailsPerHour: 5,
		},
	}
	if tweak != nil {
		tweak(cfg)
	}

	logger := logging.NewTestLogger(io.Discard)
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	queue := &fakeQueue{}
	images := &fakeImages{}
	accounts := auth.NewAccounts(st, jwtManager, queue, cfg, logger)
	accounts.SetHashCost(bcrypt.MinCost)
	cat := catalog.NewService(st, images, logger)
	proc := &fakeProcessor{sessions: map[string]*payments.Session{}}
	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(enforcer.Close)

	handler := NewRouter(&Deps{
		Config:   cfg,
		Store:    st,
		JWT:      jwtManager,
		Accounts: accounts,
		Catalog:  cat,
		Orders:   orders.NewService(st, cat, proc, queue, logger),
		Engine:   recommend.NewEngine(cat, logger),
		Queue:    queue,
	}, enforcer)

	return &testServer{t: t, handler: handler, store: st, catalog: cat, queue: queue, images: images}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

type response struct {
	code    int
	header  http.Header
	body    []byte
	env     envelope
	cookies []*http.Cookie
}

func (r *response) decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", r.env.Data, err)
	}
}

func (r *response) errorCode() string {
	if r.env.Error == nil {
		return ""
	}
	return r.env.Error.Code
}

// do sends a request. body may be nil, a string (sent verbatim) or any
// value marshalled to JSON.
func (s *testServer) do(method, path, token string, body interface{}) *response {
	s.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			s.t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(req)
}

func (s *testServer) send(req *http.Request) *response {
	s.t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	res := &response{code: rec.Code, header: rec.Header(), body: rec.Body.Bytes(), cookies: rec.Result().Cookies()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(res.body, &res.env)
	}
	return res
}

// login registers and verifies an account and returns its access token.
func (s *testServer) login(email string) string {
	s.t.Helper()
	res := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Test User", "email": email, "password": "correct horse",
	})
	if res.code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", email, res.code, res.body)
	}
	res = s.do(http.MethodPost, "/api/v1/auth/verify-email", "", map[string]string{
		"email": email, "otp": s.queue.otpFor(s.t, email),
	})
	if res.code != http.StatusOK {
		s.t.Fatalf("verify %s: %d %s", email, res.code, res.body)
	}
	var sess struct {
		Token string `json:"token"`
	}
	res.decode(s.t, &sess)
	return sess.Token
}
