package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/craftroots/storefront-backend/pkg/errors"
	"github.com/craftroots/storefront-backend/pkg/types"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var payload types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return payload
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, ok := payload.Data.(map[string]any)
	if !ok || data["hello"] != "world" {
		t.Fatalf("unexpected data: %#v", payload.Data)
	}
}

func TestWriteErrorClientMessageSurfaces(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for Clay Lamp").
		WithDetails(map[string]any{"requested": 3, "available": 1})
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	payload := decodeError(t, rec)
	if payload.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("wrong code: %s", payload.Error.Code)
	}
	if payload.Error.Message != "insufficient stock for Clay Lamp" {
		t.Fatalf("client error should keep its message, got %q", payload.Error.Message)
	}
	details, ok := payload.Error.Details.(map[string]any)
	if !ok || details["available"] != float64(1) {
		t.Fatalf("details lost: %#v", payload.Error.Details)
	}
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("pq: relation orders does not exist"), "load orders")
	WriteError(context.Background(), nil, rec, err)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	payload := decodeError(t, rec)
	if payload.Error.Message != "internal server error" {
		t.Fatalf("internal details leaked: %q", payload.Error.Message)
	}
	if payload.Error.Details != nil {
		t.Fatalf("internal errors carry no details: %#v", payload.Error.Details)
	}
}

func TestWriteErrorUntypedDefaultsToInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	payload := decodeError(t, rec)
	if payload.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("wrong code: %s", payload.Error.Code)
	}
}
