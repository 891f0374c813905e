package vaultfs

import (
	"errors"
	"fmt"
)

// Error types represent different categories of errors

// CredentialError reports a malformed credential, rejected before any engine
// contact.
type CredentialError struct {
	Reason string // Human-readable reason the credential is invalid
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("invalid credential: %s", e.Reason)
}

// OpenError reports that the engine could not establish a session against a
// container.
type OpenError struct {
	Container string // Container file path
	Code      int    // Engine status code, if the engine was reached
	Message   string // Human-readable error message
	Err       error  // Underlying error, if any
}

func (e *OpenError) Error() string {
	if e.Container != "" {
		return fmt.Sprintf("open error: %s: %s", e.Container, e.Message)
	}
	return fmt.Sprintf("open error: %s", e.Message)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// EngineError reports a negative engine result for an operation inside an
// open container, carrying the engine's code and message.
type EngineError struct {
	Op      string // "create", "remove", "read", "write", ...
	Path    string // Path inside the container
	Code    int    // Negative engine status code
	Message string // Human-readable error message
}

func (e *EngineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s (errno %d)", e.Op, e.Path, e.Message, e.Errno())
	}
	return fmt.Sprintf("%s: %s (errno %d)", e.Op, e.Message, e.Errno())
}

// Errno returns the POSIX errno value, the negation of the engine code.
func (e *EngineError) Errno() int {
	return -e.Code
}

// MigrationError reports a failed or aborted header-format migration. When
// the salt-externalization callback failed, the container file has not been
// touched.
type MigrationError struct {
	Container string // Container file path
	Message   string // Human-readable error message
	Err       error  // Underlying error, if any
}

func (e *MigrationError) Error() string {
	if e.Container != "" {
		return fmt.Sprintf("migration error: %s: %s", e.Container, e.Message)
	}
	return fmt.Sprintf("migration error: %s", e.Message)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// RekeyError reports a failed credential change. The store is left closed
// and unusable; the caller must reopen explicitly.
type RekeyError struct {
	Container string // Container file path
	Code      int    // Engine status code
	Message   string // Human-readable error message
}

func (e *RekeyError) Error() string {
	return fmt.Sprintf("rekey error: %s: %s", e.Container, e.Message)
}

// Common sentinel errors
var (
	// ErrStoreClosed is returned by every operation against a Store that
	// has been closed, including a Store left unusable by a failed rekey.
	ErrStoreClosed = errors.New("store is closed and unusable")

	// ErrStoreOpen is returned by Open calls while a previous Store from
	// the same Vault is still live.
	ErrStoreOpen = errors.New("a store is already open on this vault")

	// ErrCopyInProgress is returned by StartCopy when the destination path
	// already has an active copy task.
	ErrCopyInProgress = errors.New("a copy to this destination is already in progress")

	// ErrNilSource is returned by StartCopy when no source reader is given.
	ErrNilSource = errors.New("copy source cannot be nil")
)

// newEngineError translates a negative engine status into an EngineError.
func newEngineError(op, path string, code int) error {
	return &EngineError{
		Op:      op,
		Path:    path,
		Code:    code,
		Message: StatusText(code),
	}
}

// Error checking helpers

// IsCredentialError checks if an error is a credential validation error
func IsCredentialError(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}

// IsOpenError checks if an error is a container open error
func IsOpenError(err error) bool {
	var oe *OpenError
	return errors.As(err, &oe)
}

// IsEngineError checks if an error is an engine operation error
func IsEngineError(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}

// IsNotFound checks if an error is an engine error with the not-found code
func IsNotFound(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee) && ee.Code == StatusNotFound
}

// IsMigrationError checks if an error is a header migration error
func IsMigrationError(err error) bool {
	var me *MigrationError
	return errors.As(err, &me)
}

// IsRekeyError checks if an error is a credential change error
func IsRekeyError(err error) bool {
	var re *RekeyError
	return errors.As(err, &re)
}
