package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeTimeout, true},
		{ErrCodeNetwork, true},
		{ErrCodeStreamInterrupted, true},
		{ErrCodeStreamIncomplete, true},
		{ErrCodeGenerationFailed, false},
		{ErrCodeInvalidInput, false},
		{ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "msg", http.StatusBadGateway)
			if err.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tt.retryable)
			}
			if err.HTTPStatus != http.StatusBadGateway {
				t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusBadGateway)
			}
		})
	}
}

func TestAppError_Error_WithCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := New(ErrCodeNetwork, "network down", http.StatusBadGateway).WithCause(cause)

	want := "NETWORK_ERROR: network down (cause: connection reset)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_MissingField(t *testing.T) {
	err := MissingField("prompt")
	if err.Code != ErrCodeMissingField {
		t.Errorf("expected MISSING_FIELD, got %s", err.Code)
	}
	if err.Details["field"] != "prompt" {
		t.Errorf("expected field=prompt, got %v", err.Details["field"])
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.HTTPStatus)
	}
}

func TestAppError_Unauthorized_DefaultMessage(t *testing.T) {
	if got := Unauthorized("").Message; got != "Authentication required." {
		t.Errorf("expected default message, got %q", got)
	}
	if got := Unauthorized("bad token").Message; got != "bad token" {
		t.Errorf("expected custom message, got %q", got)
	}
}

func TestAppError_ToResponse(t *testing.T) {
	err := New(ErrCodeGenerationFailed, "content rejected", http.StatusBadGateway).
		WithDetail("id", "task-1")

	resp := err.ToResponse()
	if resp.Error.Code != ErrCodeGenerationFailed {
		t.Errorf("code = %s", resp.Error.Code)
	}
	if resp.Error.Message != "content rejected" {
		t.Errorf("message = %q", resp.Error.Message)
	}
	if resp.Error.Details["id"] != "task-1" {
		t.Errorf("details = %v", resp.Error.Details)
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("draw: %w", Validation("prompt: is required"))

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to unwrap")
	}
	if appErr.Code != ErrCodeInvalidInput {
		t.Errorf("code = %s", appErr.Code)
	}
	if !HasCode(wrapped, ErrCodeInvalidInput) {
		t.Error("expected HasCode to match")
	}
	if HasCode(stderrors.New("plain"), ErrCodeInvalidInput) {
		t.Error("plain error must not match")
	}
}
