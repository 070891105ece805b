package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestConstructorsMapToHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Class"), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict("Class is fully booked"), CodeConflict, http.StatusConflict},
		{"duplicate booking", DuplicateBooking("already booked"), CodeDuplicateBooking, http.StatusConflict},
		{"validation", Validation("bad payload", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"unavailable", Unavailable("Redis"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestNotFoundWithIDDetails(t *testing.T) {
	err := NotFoundWithID("Booking", "abc-123")
	if err.Details["id"] != "abc-123" || err.Details["resource"] != "Booking" {
		t.Errorf("unexpected details: %v", err.Details)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("db down", cause)
	if !errors.Is(err, cause) {
		t.Error("Internal should wrap its cause")
	}
}

func TestIsCode(t *testing.T) {
	err := DuplicateBooking("already booked")
	if !IsCode(err, CodeDuplicateBooking) {
		t.Error("IsCode should match the error's own code")
	}
	if IsCode(err, CodeConflict) {
		t.Error("DuplicateBooking is not a plain Conflict")
	}
	if IsCode(errors.New("plain"), CodeInternal) {
		t.Error("plain errors carry no code")
	}
}

func TestAsAppError(t *testing.T) {
	plain := errors.New("boom")
	appErr := AsAppError(plain)
	if appErr.Code != CodeInternal {
		t.Errorf("plain errors should collapse to internal, got %q", appErr.Code)
	}

	original := Conflict("taken")
	if AsAppError(original) != original {
		t.Error("AsAppError should return the original AppError unchanged")
	}
}
