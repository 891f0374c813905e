package vaultfs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestCredentialErrorFormat(t *testing.T) {
	err := &CredentialError{Reason: "password cannot be empty"}
	if got := err.Error(); got != "invalid credential: password cannot be empty" {
		t.Errorf("unexpected message: %q", got)
	}
	if !IsCredentialError(err) {
		t.Error("IsCredentialError should match")
	}
	if !IsCredentialError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsCredentialError should match through wrapping")
	}
}

func TestEngineErrorCarriesNegatedErrno(t *testing.T) {
	err := newEngineError("read", "/a.txt", StatusNotFound)

	var ee *EngineError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EngineError, got %T", err)
	}
	if ee.Errno() != 2 {
		t.Errorf("errno = %d, want 2", ee.Errno())
	}
	if ee.Message != StatusText(StatusNotFound) {
		t.Errorf("message = %q", ee.Message)
	}
	if !strings.Contains(ee.Error(), "/a.txt") || !strings.Contains(ee.Error(), "errno 2") {
		t.Errorf("unexpected format: %q", ee.Error())
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should match")
	}
	if IsNotFound(newEngineError("read", "/a.txt", StatusIO)) {
		t.Error("IsNotFound should not match an IO error")
	}
}

func TestOpenErrorUnwraps(t *testing.T) {
	inner := errors.New("engine said no")
	err := &OpenError{Container: "/v.db", Message: "refused", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("OpenError should unwrap its cause")
	}
	if !IsOpenError(err) {
		t.Error("IsOpenError should match")
	}
	if IsOpenError(inner) {
		t.Error("IsOpenError should not match an arbitrary error")
	}
}

func TestMigrationErrorUnwraps(t *testing.T) {
	cause := errors.New("keychain unavailable")
	err := &MigrationError{Container: "/v.db", Message: "salt not persisted", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("MigrationError should unwrap its cause")
	}
	if !IsMigrationError(err) {
		t.Error("IsMigrationError should match")
	}
	if !strings.Contains(err.Error(), "/v.db") {
		t.Errorf("unexpected format: %q", err.Error())
	}
}

func TestRekeyError(t *testing.T) {
	err := &RekeyError{Container: "/v.db", Code: StatusAuth, Message: StatusText(StatusAuth)}
	if !IsRekeyError(err) {
		t.Error("IsRekeyError should match")
	}
	if IsRekeyError(ErrStoreClosed) {
		t.Error("IsRekeyError should not match a sentinel")
	}
}

func TestStatusText(t *testing.T) {
	known := []int{StatusOK, StatusEOF, StatusAuth, StatusNotFound, StatusIO,
		StatusBadHandle, StatusAccess, StatusExists, StatusNotDir, StatusIsDir,
		StatusInvalid, StatusNotEmpty}
	seen := make(map[string]bool)
	for _, code := range known {
		text := StatusText(code)
		if text == "unknown engine error" {
			t.Errorf("code %d has no message", code)
		}
		if seen[text] {
			t.Errorf("code %d reuses message %q", code, text)
		}
		seen[text] = true
	}
	if StatusText(-9999) != "unknown engine error" {
		t.Error("unknown code should report a generic message")
	}
}
