package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFoundWithID("Reservation", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("empty id"), CodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("lost the race"), CodeConflict, http.StatusConflict},
		{"exhausted", Exhausted("no prizes left"), CodeExhausted, http.StatusGone},
		{"already allocated", AlreadyAllocated("held"), CodeAlreadyAllocated, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"unavailable", Unavailable("prizes"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Internal("database unreachable", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if got := err.Error(); got == "" {
		t.Error("expected non-empty message")
	}
}

func TestIsCode(t *testing.T) {
	err := Exhausted("no prizes left")

	if !IsCode(err, CodeExhausted) {
		t.Error("expected IsCode to match EXHAUSTED")
	}
	if IsCode(err, CodeConflict) {
		t.Error("expected IsCode to reject mismatched code")
	}
	if IsCode(fmt.Errorf("plain"), CodeExhausted) {
		t.Error("expected IsCode to reject plain errors")
	}
	if IsCode(nil, CodeExhausted) {
		t.Error("expected IsCode to reject nil")
	}
}

func TestAsAppError(t *testing.T) {
	original := Conflict("lost the race")
	if got := AsAppError(original); got != original {
		t.Error("expected AsAppError to return the original AppError")
	}

	wrapped := AsAppError(fmt.Errorf("plain failure"))
	if wrapped.Code != CodeInternal {
		t.Errorf("expected plain errors to map to INTERNAL_ERROR, got %s", wrapped.Code)
	}
}

func TestWithDetails(t *testing.T) {
	err := AlreadyAllocated("held").WithDetails(map[string]any{"reservation_id": "abc"})
	if err.Details["reservation_id"] != "abc" {
		t.Errorf("expected details to carry reservation_id, got %v", err.Details)
	}
}
