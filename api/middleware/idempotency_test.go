package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/craftroots/storefront-backend/pkg/config"
	"github.com/craftroots/storefront-backend/pkg/logger"
)

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{data: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "sf:idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func idempotentHandler(t *testing.T, store *fakeIdempotencyStore, hits *int) http.Handler {
	t.Helper()
	mw := Idempotency(store, config.IdempotencyConfig{TTL: time.Hour}, logger.New(logger.Options{ServiceName: "test"}))
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"order":"ORD-AAAA1111"}}`))
	}))
}

func checkoutRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-1")
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	handler := idempotentHandler(t, store, &hits)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(`{"payment_method":"cod"}`))
	if first.Code != http.StatusCreated || hits != 1 {
		t.Fatalf("first call: %d hits=%d", first.Code, hits)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest(`{"payment_method":"cod"}`))
	if second.Code != http.StatusCreated {
		t.Fatalf("replay should mirror the stored status, got %d", second.Code)
	}
	if hits != 1 {
		t.Fatalf("handler must not run twice, ran %d times", hits)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", second.Body.String(), first.Body.String())
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	handler := idempotentHandler(t, store, &hits)

	handler.ServeHTTP(httptest.NewRecorder(), checkoutRequest(`{"payment_method":"cod"}`))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest(`{"payment_method":"razorpay"}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("reused key with new body should be 409, got %d", rec.Code)
	}
	if hits != 1 {
		t.Fatalf("handler must not run for the rejected call, ran %d times", hits)
	}
}

func TestIdempotencyRequiresHeaderOnGuardedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	handler := idempotentHandler(t, store, &hits)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest || hits != 0 {
		t.Fatalf("missing key should be 400 before the handler, got %d hits=%d", rec.Code, hits)
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	handler := idempotentHandler(t, store, &hits)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated || hits != 1 {
		t.Fatalf("unguarded route should pass straight through, got %d hits=%d", rec.Code, hits)
	}
}

func TestIdempotencyScopesByUser(t *testing.T) {
	store := newFakeIdempotencyStore()
	hits := 0
	handler := idempotentHandler(t, store, &hits)

	reqA := checkoutRequest(`{"payment_method":"cod"}`)
	reqA = reqA.WithContext(context.WithValue(reqA.Context(), ctxUserID, "user-a"))
	handler.ServeHTTP(httptest.NewRecorder(), reqA)

	reqB := checkoutRequest(`{"payment_method":"cod"}`)
	reqB = reqB.WithContext(context.WithValue(reqB.Context(), ctxUserID, "user-b"))
	handler.ServeHTTP(httptest.NewRecorder(), reqB)

	if hits != 2 {
		t.Fatalf("different users must not share idempotency records, hits=%d", hits)
	}
}
