package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err    *ServiceError
		code   Code
		status int
	}{
		{Validation("bad input"), CodeValidation, http.StatusBadRequest},
		{Unauthorized("no token"), CodeUnauthorized, http.StatusUnauthorized},
		{InvalidToken(nil), CodeInvalidToken, http.StatusUnauthorized},
		{Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{NotFound("gone"), CodeNotFound, http.StatusNotFound},
		{Conflict("email taken"), CodeConflict, http.StatusConflict},
		{RateLimitExceeded(10, "1s"), CodeRateLimited, http.StatusTooManyRequests},
		{Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
		}
		if tc.err.HTTPStatus != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.code, tc.status, tc.err.HTTPStatus)
		}
	}
}

func TestGetServiceErrorUnwraps(t *testing.T) {
	svcErr := NotFound("transaction not found")
	wrapped := fmt.Errorf("handler: %w", svcErr)

	got := GetServiceError(wrapped)
	if got == nil {
		t.Fatalf("expected service error, got nil")
	}
	if got.Code != CodeNotFound {
		t.Fatalf("unexpected code %s", got.Code)
	}

	if GetServiceError(stderrors.New("plain")) != nil {
		t.Fatalf("plain error should not resolve to a service error")
	}
}

func TestWithDetails(t *testing.T) {
	err := Validation("missing field").WithDetails("field", "email")
	if err.Details["field"] != "email" {
		t.Fatalf("details not recorded: %v", err.Details)
	}

	cause := stderrors.New("signature mismatch")
	tokenErr := InvalidToken(cause)
	if !stderrors.Is(tokenErr, cause) {
		t.Fatalf("cause should be reachable via errors.Is")
	}
}
