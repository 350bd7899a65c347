// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/weddingbook/internal/auth"
	"github.com/tomtom215/weddingbook/internal/config"
	"github.com/tomtom215/weddingbook/internal/models"
	"github.com/tomtom215/weddingbook/internal/orders"
)

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)

	res := s.do(http.MethodGet, "/api/v1/health/live", "", nil)
	if res.code != http.StatusOK || !res.env.Success {
		t.Fatalf("live = %d %s", res.code, res.body)
	}
	if res.header.Get("X-Request-ID") == "" || res.env.Meta == nil || res.env.Meta.RequestID != res.header.Get("X-Request-ID") {
		t.Errorf("request id not propagated: header %q meta %+v", res.header.Get("X-Request-ID"), res.env.Meta)
	}
	if res.header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	res = s.do(http.MethodGet, "/api/v1/health/ready", "", nil)
	var status HealthStatus
	res.decode(t, &status)
	if res.code != http.StatusOK || status.StoreConnected == nil || !*status.StoreConnected {
		t.Errorf("ready = %d %s", res.code, res.body)
	}

	_ = s.store.Close()
	if res := s.do(http.MethodGet, "/api/v1/health/ready", "", nil); res.code != http.StatusServiceUnavailable {
		t.Errorf("ready with closed store = %d, want 503", res.code)
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	if res := s.do(http.MethodGet, "/api/v1/nope", "", nil); res.code != http.StatusNotFound || res.errorCode() != ErrCodeNotFound {
		t.Errorf("unknown route = %d %s", res.code, res.body)
	}
	if res := s.do(http.MethodPatch, "/api/v1/venues", "", nil); res.code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH /venues = %d", res.code)
	}
	if res := s.do(http.MethodGet, "/metrics", "", nil); res.code != http.StatusOK {
		t.Errorf("/metrics = %d", res.code)
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	tests := []struct {
		name   string
		header string
		cookie string
	}{
		{"no credentials", "", ""},
		{"malformed header", "Token abc", ""},
		{"garbage bearer", "Bearer not-a-jwt", ""},
		{"garbage cookie", "", "not-a-jwt"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if tt.cookie != "" {
			req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: tt.cookie})
		}
		res := s.send(req)
		if res.code != http.StatusUnauthorized || res.errorCode() != ErrCodeUnauthorized {
			t.Errorf("%s: status %d %s, want 401 %s", tt.name, res.code, res.body, ErrCodeUnauthorized)
		}
	}
}

func TestAuthenticateWithRespondError(t *testing.T) {
	t.Parallel()

	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{
		JWTSecret:     "api_test_secret_that_is_definitely_long_enough",
		TokenTTL:      time.Hour,
		ResetTokenTTL: 15 * time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	handler := auth.NewMiddleware(jwtManager, respondError).Authenticate(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("handler reached without a token")
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d %s, want 401", rec.Code, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Success || env.Error == nil || env.Error.Code != ErrCodeUnauthorized || env.Error.Message != "missing token" {
		t.Errorf("envelope = %s", rec.Body.String())
	}
}

func TestAccountFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	const email = "bride@example.com"

	res := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"name": "Bride", "email": email, "password": "short"})
	if res.code != http.StatusBadRequest || res.errorCode() != ErrCodeValidationFailed {
		t.Errorf("short password = %d %s", res.code, res.body)
	}
	res = s.do(http.MethodPost, "/api/v1/auth/register", "", `{"name":"Bride","email":"bride@example.com","password":"correct horse","role":"admin"}`)
	if res.code != http.StatusBadRequest {
		t.Errorf("unknown field = %d, want 400", res.code)
	}
	res = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"name": "Bride", "email": email, "password": "correct horse"})
	if res.code != http.StatusCreated {
		t.Fatalf("register = %d %s", res.code, res.body)
	}
	if res := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"name": "Again", "email": email, "password": "correct horse"}); res.code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", res.code)
	}

	login := map[string]string{"email": email, "password": "correct horse"}
	if res := s.do(http.MethodPost, "/api/v1/auth/login", "", login); res.code != http.StatusForbidden {
		t.Errorf("unverified login = %d, want 403", res.code)
	}
	if res := s.do(http.MethodPost, "/api/v1/auth/verify-email", "", map[string]string{"email": email, "otp": "12ab56"}); res.code != http.StatusBadRequest {
		t.Errorf("malformed otp = %d, want 400", res.code)
	}
	res = s.do(http.MethodPost, "/api/v1/auth/verify-email", "", map[string]string{"email": email, "otp": s.queue.otpFor(t, email)})
	if res.code != http.StatusOK {
		t.Fatalf("verify = %d %s", res.code, res.body)
	}

	res = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "wrong horse"})
	if res.code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d, want 401", res.code)
	}
	res = s.do(http.MethodPost, "/api/v1/auth/login", "", login)
	if res.code != http.StatusOK {
		t.Fatalf("login = %d %s", res.code, res.body)
	}
	var cookie *http.Cookie
	for _, c := range res.cookies {
		if c.Name == auth.TokenCookie {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly || cookie.Value == "" {
		t.Fatalf("session cookie = %+v", cookie)
	}

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(cookie)
	res = s.send(req)
	var me models.User
	res.decode(t, &me)
	if res.code != http.StatusOK || me.Email != email || me.Role != models.RoleUser {
		t.Errorf("me = %d %+v", res.code, me)
	}
	if strings.Contains(string(res.body), "passwordHash") || strings.Contains(string(res.body), "$2a$") {
		t.Error("password hash leaked in /auth/me")
	}

	if res := s.do(http.MethodGet, "/api/v1/auth/me", "", nil); res.code != http.StatusUnauthorized {
		t.Errorf("anonymous me = %d, want 401", res.code)
	}
	if res := s.do(http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "ghost@example.com"}); res.code != http.StatusOK {
		t.Errorf("forgot unknown = %d, want 200", res.code)
	}
}

func TestAuthRateLimit(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, func(c *config.Config) {
		c.Security.RateLimitDisabled = false
		c.Security.RateLimitReqs = 100
		c.Security.RateLimitWindow = 60_000_000_000
		c.Security.AuthRateLimitReqs = 2
	})
	body := map[string]string{"email": "ghost@example.com", "password": "whatever1"}
	for i := 0; i < 2; i++ {
		if res := s.do(http.MethodPost, "/api/v1/auth/login", "", body); res.code != http.StatusUnauthorized {
			t.Fatalf("attempt %d = %d", i+1, res.code)
		}
	}
	res := s.do(http.MethodPost, "/api/v1/auth/login", "", body)
	if res.code != http.StatusTooManyRequests || res.errorCode() != ErrCodeTooManyRequests {
		t.Errorf("third attempt = %d %s", res.code, res.body)
	}
	if res := s.do(http.MethodGet, "/api/v1/venues", "", nil); res.code != http.StatusOK {
		t.Errorf("catalog after auth limit = %d, want 200", res.code)
	}
}

func TestCatalogAdmin(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	admin := s.login(adminEmail)
	user := s.login("guest@example.com")

	venue := map[string]interface{}{"name": "Rose Hall", "location": "Dhaka", "price": 1000, "capacity": 200, "rating": 4.5}
	if res := s.do(http.MethodPost, "/api/v1/admin/venues", user, venue); res.code != http.StatusForbidden {
		t.Errorf("user create venue = %d, want 403", res.code)
	}
	if res := s.do(http.MethodPost, "/api/v1/admin/venues", "", venue); res.code != http.StatusUnauthorized {
		t.Errorf("anonymous create venue = %d, want 401", res.code)
	}
	res := s.do(http.MethodPost, "/api/v1/admin/venues", admin, venue)
	if res.code != http.StatusCreated {
		t.Fatalf("admin create venue = %d %s", res.code, res.body)
	}
	var created models.Venue
	res.decode(t, &created)
	if created.ID == "" || created.Name != "Rose Hall" {
		t.Fatalf("created = %+v", created)
	}

	bad := map[string]interface{}{"name": "", "location": "Dhaka", "rating": 9}
	if res := s.do(http.MethodPost, "/api/v1/admin/venues", admin, bad); res.code != http.StatusBadRequest {
		t.Errorf("invalid venue = %d, want 400", res.code)
	}

	res = s.do(http.MethodGet, "/api/v1/venues", "", nil)
	if res.code != http.StatusOK || res.env.Meta == nil || res.env.Meta.Count == nil || *res.env.Meta.Count != 1 {
		t.Errorf("list venues = %d %s", res.code, res.body)
	}
	if res := s.do(http.MethodGet, "/api/v1/venues/"+created.ID, "", nil); res.code != http.StatusOK {
		t.Errorf("get venue = %d", res.code)
	}
	if res := s.do(http.MethodGet, "/api/v1/venues/missing", "", nil); res.code != http.StatusNotFound {
		t.Errorf("get missing venue = %d, want 404", res.code)
	}

	venue["price"] = 1200
	res = s.do(http.MethodPut, "/api/v1/admin/venues/"+created.ID, admin, venue)
	var updated models.Venue
	res.decode(t, &updated)
	if res.code != http.StatusOK || updated.Price != 1200 || updated.ID != created.ID {
		t.Errorf("update = %d %+v", res.code, updated)
	}

	res = s.send(imageRequest(t, "/api/v1/admin/venues/"+created.ID+"/images", admin, []byte("\x89PNG\r\n\x1a\n0000000000")))
	updated = models.Venue{}
	res.decode(t, &updated)
	if res.code != http.StatusCreated || len(updated.Images) != 1 || !strings.HasPrefix(updated.Images[0], "https://cdn.example/catalog/venue/") {
		t.Fatalf("upload = %d %s", res.code, res.body)
	}
	res = s.send(imageRequest(t, "/api/v1/admin/venues/"+created.ID+"/images", admin, []byte("just some text")))
	if res.code != http.StatusBadRequest {
		t.Errorf("text upload = %d, want 400", res.code)
	}
	res = s.send(imageRequest(t, "/api/v1/admin/venues/"+created.ID+"/images", admin, bytes.Repeat([]byte("x"), 4<<10)))
	if res.code != http.StatusRequestEntityTooLarge && res.code != http.StatusBadRequest {
		t.Errorf("oversized upload = %d, want 413 or 400", res.code)
	}

	res = s.do(http.MethodDelete, "/api/v1/admin/venues/"+created.ID+"/images?url="+url.QueryEscape(updated.Images[0]), admin, nil)
	var trimmed models.Venue
	res.decode(t, &trimmed)
	if res.code != http.StatusOK || len(trimmed.Images) != 0 {
		t.Errorf("remove image = %d %s", res.code, res.body)
	}

	if res := s.do(http.MethodDelete, "/api/v1/admin/venues/"+created.ID, admin, nil); res.code != http.StatusOK {
		t.Errorf("delete = %d", res.code)
	}
	if res := s.do(http.MethodGet, "/api/v1/venues/"+created.ID, "", nil); res.code != http.StatusNotFound {
		t.Errorf("get deleted = %d, want 404", res.code)
	}
}

func imageRequest(t *testing.T, path, token string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(imageField, "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestCategoriesAndWeddingPackage(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	admin := s.login(adminEmail)

	res := s.do(http.MethodPost, "/api/v1/admin/categories", admin, map[string]string{"name": "Mains"})
	var category models.CuisineCategory
	res.decode(t, &category)
	if res.code != http.StatusCreated {
		t.Fatalf("create category = %d %s", res.code, res.body)
	}
	res = s.do(http.MethodPost, "/api/v1/admin/dishes", admin, map[string]interface{}{"categoryId": category.ID, "name": "Kacchi", "price": 12.5, "rating": 4.8})
	if res.code != http.StatusCreated {
		t.Fatalf("create dish = %d %s", res.code, res.body)
	}
	res = s.do(http.MethodGet, "/api/v1/categories/"+category.ID+"/dishes", "", nil)
	if res.code != http.StatusOK || res.env.Meta.Count == nil || *res.env.Meta.Count != 1 {
		t.Errorf("dishes in category = %d %s", res.code, res.body)
	}
	if res := s.do(http.MethodDelete, "/api/v1/admin/categories/"+category.ID, admin, nil); res.code != http.StatusConflict {
		t.Errorf("delete used category = %d, want 409", res.code)
	}

	if res := s.do(http.MethodGet, "/api/v1/wedding-package?venueBudget=abc&studioBudget=1&foodBudget=1", "", nil); res.code != http.StatusBadRequest {
		t.Errorf("bad budget = %d, want 400", res.code)
	}
	if res := s.do(http.MethodGet, "/api/v1/wedding-package?studioBudget=1&foodBudget=1", "", nil); res.code != http.StatusBadRequest {
		t.Errorf("missing budget = %d, want 400", res.code)
	}
	res = s.do(http.MethodGet, "/api/v1/wedding-package?venueBudget=5000&studioBudget=1000&foodBudget=100&guestCount=150", "", nil)
	if res.code != http.StatusOK || !res.env.Success {
		t.Errorf("wedding package = %d %s", res.code, res.body)
	}
}

func TestCartCheckoutAndPayment(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	admin := s.login(adminEmail)
	user := s.login("couple@example.com")
	other := s.login("nosy@example.com")

	res := s.do(http.MethodPost, "/api/v1/admin/venues", admin, map[string]interface{}{"name": "Rose Hall", "location": "Dhaka", "price": 1000})
	var venue models.Venue
	res.decode(t, &venue)

	if res := s.do(http.MethodGet, "/api/v1/cart", "", nil); res.code != http.StatusUnauthorized {
		t.Errorf("anonymous cart = %d, want 401", res.code)
	}
	item := map[string]interface{}{
		"itemId": venue.ID, "itemType": "venue", "quantity": 1,
		"bookedFrom": "2027-02-14T16:00:00Z", "bookedTill": "2027-02-14T22:00:00Z",
	}
	res = s.do(http.MethodPost, "/api/v1/cart/items", user, item)
	var cart models.Cart
	res.decode(t, &cart)
	if res.code != http.StatusOK || len(cart.Items) != 1 || cart.Items[0].Price != 1000 {
		t.Fatalf("add to cart = %d %s", res.code, res.body)
	}

	res = s.do(http.MethodPost, "/api/v1/orders/checkout", user, nil)
	var order models.Order
	res.decode(t, &order)
	if res.code != http.StatusCreated || order.Status != models.OrderPending || order.TotalAmount != 1000 {
		t.Fatalf("checkout = %d %s", res.code, res.body)
	}
	if res := s.do(http.MethodGet, "/api/v1/orders/"+order.ID, other, nil); res.code != http.StatusForbidden {
		t.Errorf("other user's order = %d, want 403", res.code)
	}
	res = s.do(http.MethodGet, "/api/v1/orders", user, nil)
	if res.code != http.StatusOK || *res.env.Meta.Count != 1 {
		t.Errorf("my orders = %d %s", res.code, res.body)
	}

	start := map[string]string{"orderId": order.ID, "paymentAmount": "25_percent"}
	if res := s.do(http.MethodPost, "/api/v1/payments/start-payment", other, start); res.code != http.StatusForbidden {
		t.Errorf("start payment for other's order = %d, want 403", res.code)
	}
	if res := s.do(http.MethodPost, "/api/v1/payments/start-payment", user, map[string]string{"orderId": order.ID, "paymentAmount": "10_percent"}); res.code != http.StatusBadRequest {
		t.Errorf("invalid amount = %d, want 400", res.code)
	}
	res = s.do(http.MethodPost, "/api/v1/payments/start-payment", user, start)
	var started orders.StartPaymentResult
	res.decode(t, &started)
	if res.code != http.StatusOK || started.SessionID == "" || started.Amount != 250 {
		t.Fatalf("start payment = %d %s", res.code, res.body)
	}

	if res := s.do(http.MethodGet, "/api/v1/payments/status/"+started.SessionID, other, nil); res.code != http.StatusForbidden {
		t.Errorf("other user's status = %d, want 403", res.code)
	}

	hook := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader("checkout.session.completed "+started.SessionID))
	hook.Header.Set(StripeSignatureHeader, "forged")
	if res := s.send(hook); res.code != http.StatusBadRequest {
		t.Errorf("forged webhook = %d, want 400", res.code)
	}
	hook = httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", strings.NewReader("checkout.session.completed "+started.SessionID))
	hook.Header.Set(StripeSignatureHeader, "valid")
	res = s.send(hook)
	if res.code != http.StatusOK || strings.TrimSpace(string(res.body)) != `{"received":true}` {
		t.Errorf("webhook = %d %s", res.code, res.body)
	}

	res = s.do(http.MethodGet, "/api/v1/payments/status/"+started.SessionID, user, nil)
	var status orders.PaymentStatus
	res.decode(t, &status)
	if res.code != http.StatusOK || !status.Paid || status.PaymentStatus != models.PaymentPartial {
		t.Errorf("status = %d %s", res.code, res.body)
	}
	if status.Order == nil || status.Order.PaidAmount != 250 || status.Order.RemainingAmount != 750 {
		t.Errorf("order after payment = %+v", status.Order)
	}

	if res := s.do(http.MethodPost, "/api/v1/admin/orders/"+order.ID+"/complete", user, nil); res.code != http.StatusForbidden {
		t.Errorf("user complete = %d, want 403", res.code)
	}
	res = s.do(http.MethodPost, "/api/v1/admin/orders/"+order.ID+"/complete", admin, nil)
	res.decode(t, &order)
	if res.code != http.StatusOK || order.Status != models.OrderCompleted {
		t.Errorf("admin complete = %d %s", res.code, res.body)
	}
	if res := s.do(http.MethodGet, "/api/v1/admin/orders", admin, nil); res.code != http.StatusOK || *res.env.Meta.Count != 1 {
		t.Errorf("admin orders = %d %s", res.code, res.body)
	}
}

func TestCashAfterService(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	admin := s.login(adminEmail)
	user := s.login("couple@example.com")

	res := s.do(http.MethodPost, "/api/v1/admin/studios", admin, map[string]interface{}{"name": "Lens", "location": "Dhaka", "price": 300})
	var studio models.Studio
	res.decode(t, &studio)
	s.do(http.MethodPost, "/api/v1/cart/items", user, map[string]interface{}{
		"itemId": studio.ID, "itemType": "studio",
		"bookedFrom": "2027-02-14T16:00:00Z", "bookedTill": "2027-02-14T22:00:00Z",
	})
	res = s.do(http.MethodPost, "/api/v1/orders/checkout", user, nil)
	var order models.Order
	res.decode(t, &order)

	res = s.do(http.MethodPost, "/api/v1/payments/start-payment", user, map[string]string{"orderId": order.ID})
	var started orders.StartPaymentResult
	res.decode(t, &started)
	if res.code != http.StatusOK || started.PaymentType != models.PaymentCashAfterService || started.Order.Status != models.OrderConfirmed {
		t.Fatalf("cash payment = %d %s", res.code, res.body)
	}
	if res := s.do(http.MethodPost, "/api/v1/payments/start-payment", user, map[string]string{"orderId": order.ID}); res.code != http.StatusConflict {
		t.Errorf("second start = %d, want 409", res.code)
	}
}

func TestEmailQueueAdmin(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, nil)
	admin := s.login(adminEmail)
	user := s.login("guest@example.com")

	if res := s.do(http.MethodGet, "/api/v1/admin/email-queue/status", user, nil); res.code != http.StatusForbidden {
		t.Errorf("user queue status = %d, want 403", res.code)
	}
	res := s.do(http.MethodGet, "/api/v1/admin/email-queue/status", admin, nil)
	if res.code != http.StatusOK || !strings.Contains(string(res.env.Data), `"total":2`) {
		t.Errorf("queue status = %d %s", res.code, res.body)
	}
	res = s.do(http.MethodPost, "/api/v1/admin/email-queue/clear", admin, nil)
	var cleared map[string]int
	res.decode(t, &cleared)
	if res.code != http.StatusOK || cleared["cleared"] != 2 {
		t.Errorf("clear = %d %s", res.code, res.body)
	}
	if res := s.do(http.MethodGet, "/api/v1/admin/users", admin, nil); res.code != http.StatusOK || *res.env.Meta.Count != 2 {
		t.Errorf("admin users = %d %s", res.code, res.body)
	}
}
