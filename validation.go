package vaultfs

import (
	"path"
	"strings"
)

// Input validation helpers shared by the path and I/O operations

// NormalizePath validates p and returns its cleaned absolute form. Paths
// must be non-empty, absolute, and free of NUL bytes; "." and ".." segments
// are resolved so every node has exactly one addressable name.
func NormalizePath(p string) (string, error) {
	if p == "" {
		return "", &EngineError{Op: "path", Code: StatusInvalid, Message: "path cannot be empty"}
	}
	if strings.ContainsRune(p, 0) {
		return "", &EngineError{Op: "path", Path: p, Code: StatusInvalid, Message: "path cannot contain NUL"}
	}
	if !strings.HasPrefix(p, "/") {
		return "", &EngineError{Op: "path", Path: p, Code: StatusInvalid, Message: "path must be absolute"}
	}
	return path.Clean(p), nil
}

// validateOffset checks a file offset
func validateOffset(op string, offset int64) error {
	if offset < 0 {
		return &EngineError{Op: op, Code: StatusInvalid, Message: "offset cannot be negative"}
	}
	return nil
}

// validateLength checks a read length
func validateLength(op string, length int) error {
	if length < 0 {
		return &EngineError{Op: op, Code: StatusInvalid, Message: "length cannot be negative"}
	}
	return nil
}
