package util

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewForbidden("not yours")
	mapped := ToDomainError(original)
	if mapped.Code != "FORBIDDEN" || mapped.HTTPStatus != http.StatusForbidden {
		t.Fatalf("unexpected mapping: %+v", mapped)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection refused")
	mapped := ToDomainError(cause)
	if mapped.Code != "STORE_UNAVAILABLE" || mapped.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected mapping: %+v", mapped)
	}
	if strings.Contains(mapped.Message, "connection refused") {
		t.Fatalf("raw store error leaked into the message: %q", mapped.Message)
	}
	if !errors.Is(mapped, cause) {
		t.Fatalf("cause must stay attached for logging")
	}
}

func TestAuthFailureIsOpaque(t *testing.T) {
	err := ToDomainError(NewAuthFailure())
	for _, leak := range []string{"user", "password", "username"} {
		if strings.Contains(strings.ToLower(err.Message), leak) {
			t.Fatalf("auth failure message leaks %q: %q", leak, err.Message)
		}
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(NewDuplicateUser("alice"), "DUPLICATE_USER") {
		t.Fatalf("expected DUPLICATE_USER")
	}
	if IsCode(errors.New("plain"), "DUPLICATE_USER") {
		t.Fatalf("plain errors carry no code")
	}
}
