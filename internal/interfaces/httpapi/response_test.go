package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/predictleague/prediction-league/internal/domain/league"
	"github.com/predictleague/prediction-league/internal/domain/market"
	"github.com/predictleague/prediction-league/internal/domain/prediction"
	"github.com/predictleague/prediction-league/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_StatusTaxonomy(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantHTTP   int
		wantStatus string
	}{
		{"invalid input", fmt.Errorf("%w: bad", usecase.ErrInvalidInput), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"not found", fmt.Errorf("%w: user", usecase.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", fmt.Errorf("%w: token", usecase.ErrUnauthorized), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"dependency down", fmt.Errorf("%w: feed", usecase.ErrDependencyUnavailable), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{"already resolved", fmt.Errorf("resolve: %w", market.ErrAlreadyResolved), http.StatusConflict, "ABORTED"},
		{"market closed", fmt.Errorf("submit: %w", market.ErrClosed), http.StatusConflict, "FAILED_PRECONDITION"},
		{"duplicate prediction", fmt.Errorf("submit: %w", prediction.ErrDuplicate), http.StatusConflict, "ALREADY_EXISTS"},
		{"league name taken", fmt.Errorf("create: %w", league.ErrNameTaken), http.StatusConflict, "ALREADY_EXISTS"},
		{"already member", fmt.Errorf("join: %w", league.ErrAlreadyMember), http.StatusConflict, "ALREADY_EXISTS"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapError(context.Background(), tc.err)
			if mapped.HTTPStatus != tc.wantHTTP {
				t.Fatalf("expected http status %d, got %d", tc.wantHTTP, mapped.HTTPStatus)
			}
			if mapped.Status != tc.wantStatus {
				t.Fatalf("expected status %s, got %s", tc.wantStatus, mapped.Status)
			}
		})
	}
}
