package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusUnprocessableEntity)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	unwrapped := errors.Unwrap(appErr)
	if unwrapped != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		expected int
	}{
		{"NotFound", NotFound("Reservation"), CodeNotFound, http.StatusNotFound},
		{"NotFoundWithID", NotFoundWithID("Reservation", "abc"), CodeNotFound, http.StatusNotFound},
		{"Validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"InvalidInput", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"Unauthorized", Unauthorized("no identity"), CodeUnauthorized, http.StatusUnauthorized},
		{"Forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{"Conflict", Conflict("dates taken"), CodeConflict, http.StatusConflict},
		{"InvalidState", InvalidState("not pending"), CodeInvalidState, http.StatusConflict},
		{"Internal", Internal("boom", errors.New("cause")), CodeInternal, http.StatusInternalServerError},
		{"Timeout", Timeout("too slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"Unavailable", Unavailable("accommodation service"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.expected {
				t.Errorf("expected status %d, got %d", tt.expected, tt.err.StatusCode())
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := Conflict("dates taken")

	if !IsCode(err, CodeConflict) {
		t.Error("expected IsCode to match CONFLICT")
	}
	if IsCode(err, CodeNotFound) {
		t.Error("IsCode matched the wrong code")
	}
	if IsCode(errors.New("plain"), CodeConflict) {
		t.Error("IsCode matched a non-AppError")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Reservation")
	if AsAppError(appErr) != appErr {
		t.Error("expected AsAppError to return the same AppError")
	}

	plain := errors.New("plain failure")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, converted.Code)
	}
	if converted.Err != plain {
		t.Error("expected converted error to wrap the original")
	}
}
