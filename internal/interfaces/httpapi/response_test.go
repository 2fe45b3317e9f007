package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/lunch-hockey-rsvp/internal/usecase"
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

func TestMapError_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid", err: fmt.Errorf("%w: bad", usecase.ErrInvalidInput), want: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("%w: gone", usecase.ErrNotFound), want: http.StatusNotFound},
		{name: "in flight", err: usecase.ErrWriteInFlight, want: http.StatusConflict},
		{name: "precondition", err: fmt.Errorf("%w: no profile", usecase.ErrPrecondition), want: http.StatusPreconditionFailed},
		{name: "server", err: &usecase.ServerError{Action: "RSVP", Message: "locked"}, want: http.StatusBadGateway},
		{name: "protocol", err: &usecase.ProtocolError{Action: "Summary", Snippet: "<html>"}, want: http.StatusBadGateway},
		{name: "network", err: &usecase.NetworkError{Action: "Summary", StatusCode: 500}, want: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(context.Background(), tt.err)
			if got.HTTPStatus != tt.want {
				t.Fatalf("mapError(%v)=%d want=%d", tt.err, got.HTTPStatus, tt.want)
			}
		})
	}
}

func TestWriteSuccess_EscapesHTML(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"display": "<script>alert(1)</script>"})

	if strings.Contains(rec.Body.String(), "<script>") {
		t.Fatalf("expected html to be escaped, got %s", rec.Body.String())
	}
}
