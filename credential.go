package vaultfs

import (
	"encoding/hex"
	"fmt"
)

// credentialKind discriminates the Credential variant
type credentialKind uint8

const (
	credentialNone credentialKind = iota
	credentialPassword
	credentialRawKey
)

// RawKeySize is the exact length a raw key credential must have.
const RawKeySize = 32

// SaltSize is the length of the salt embedded in an encrypted container
// header.
const SaltSize = 16

// Salt is the key-derivation salt extracted from the first SaltSize bytes of
// a legacy encrypted container header. It must be persisted out of band
// before the header is migrated to the unencrypted format.
type Salt [SaltSize]byte

// Hex returns the lowercase hexadecimal encoding of the salt, the literal
// form the engine's migrate and external-salt open primitives accept.
func (s Salt) Hex() string {
	return hex.EncodeToString(s[:])
}

// Credential is the secret used to open or rekey a container: either a
// non-empty UTF-8 password or a raw key of exactly RawKeySize bytes.
// The zero value is invalid.
type Credential struct {
	kind     credentialKind
	password string
	rawKey   []byte
}

// NewPasswordCredential builds a password credential. The password is not
// validated here; Validate rejects the empty string.
func NewPasswordCredential(password string) Credential {
	return Credential{kind: credentialPassword, password: password}
}

// NewRawKeyCredential builds a raw-key credential from a copy of key.
func NewRawKeyCredential(key []byte) Credential {
	k := make([]byte, len(key))
	copy(k, key)
	return Credential{kind: credentialRawKey, rawKey: k}
}

// IsPassword reports whether the credential is the password variant.
func (c Credential) IsPassword() bool {
	return c.kind == credentialPassword
}

// Password returns the password for a password credential, or "".
func (c Credential) Password() string {
	return c.password
}

// RawKey returns the raw key for a raw-key credential, or nil.
func (c Credential) RawKey() []byte {
	return c.rawKey
}

// material returns the secret bytes regardless of variant.
func (c Credential) material() []byte {
	if c.kind == credentialPassword {
		return []byte(c.password)
	}
	return c.rawKey
}

// Validate checks the credential before any engine contact: a password must
// be non-empty, a raw key must be exactly RawKeySize bytes.
func (c Credential) Validate() error {
	switch c.kind {
	case credentialPassword:
		if c.password == "" {
			return &CredentialError{Reason: "password cannot be empty"}
		}
		return nil
	case credentialRawKey:
		if len(c.rawKey) != RawKeySize {
			return &CredentialError{
				Reason: fmt.Sprintf("raw key must be exactly %d bytes, got %d", RawKeySize, len(c.rawKey)),
			}
		}
		return nil
	default:
		return &CredentialError{Reason: "credential is unset"}
	}
}

// String never exposes the secret.
func (c Credential) String() string {
	switch c.kind {
	case credentialPassword:
		return "credential(password)"
	case credentialRawKey:
		return "credential(raw-key)"
	default:
		return "credential(unset)"
	}
}
