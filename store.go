package vaultfs

import (
	"log/slog"
	"sync"
)

// Store is an open handle to one encrypted container. A Vault has at most
// one live Store at a time; once closed — explicitly, by Vault teardown, or
// by a failed credential change — every operation returns ErrStoreClosed.
//
// A Store may be shared by concurrent callers: the engine serializes
// mutating calls internally, so only the handle state itself is guarded
// here.
type Store struct {
	vault     *Vault
	container string
	logger    *slog.Logger

	mu      sync.Mutex
	session Session
	closed  bool

	copies *copyRegistry
}

func newStore(v *Vault, container string, session Session) *Store {
	return &Store{
		vault:     v,
		container: container,
		logger:    v.logger,
		session:   session,
		copies:    newCopyRegistry(),
	}
}

// Container returns the host path of the container file this store fronts.
func (s *Store) Container() string {
	return s.container
}

// acquire returns the live session, or ErrStoreClosed. The session is used
// outside the lock; in-flight engine calls against a session being closed
// fail with the engine's bad-handle status.
func (s *Store) acquire() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.session == nil {
		return nil, ErrStoreClosed
	}
	return s.session, nil
}

// Close tears down the store's engine session. Closing an already-closed
// store is a no-op. In-flight copy tasks are not cancelled; their next
// write fails and drives them to their failed terminal state.
func (s *Store) Close() error {
	s.mu.Lock()
	session := s.session
	s.session = nil
	s.closed = true
	s.mu.Unlock()

	s.vault.release(s)

	if session == nil {
		return nil
	}
	if code := session.Close(); code != StatusOK {
		return newEngineError("close", s.container, code)
	}
	return nil
}

// markClosed severs the session without detaching from the vault, used by
// the rekey path which closes before invoking the engine's rekey primitive.
func (s *Store) markClosed() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.session
	s.session = nil
	s.closed = true
	return session
}

// adopt installs a fresh session after a successful rekey, reviving the
// same handle.
func (s *Store) adopt(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.closed = false
}

// SetCipherCompatibility adjusts the container's on-disk cipher
// compatibility tier. Pure delegation; no handle state changes.
func (s *Store) SetCipherCompatibility(version int) error {
	session, err := s.acquire()
	if err != nil {
		return err
	}
	if code := session.SetCipherCompat(version); code != StatusOK {
		return newEngineError("cipher-compat", s.container, code)
	}
	return nil
}

// Vacuum compacts the container.
func (s *Store) Vacuum() error {
	session, err := s.acquire()
	if err != nil {
		return err
	}
	if code := session.Vacuum(); code != StatusOK {
		return newEngineError("vacuum", s.container, code)
	}
	return nil
}
