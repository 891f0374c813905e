package vaultfs

import (
	"bytes"
	"io"
	"os"
)

// Open establishes a Store against the container at path, creating the
// container if it does not exist. The credential is validated before the
// engine is contacted. If the container's WAL side file has grown past the
// reclamation threshold, one open/close cycle through the same credentialed
// path runs first so the engine reclaims it; stale WAL fragments are the
// only place partial data can outlive a crash outside the container itself.
func (v *Vault) Open(container string, cred Credential) (*Store, error) {
	if err := cred.Validate(); err != nil {
		return nil, err
	}
	return v.open(container, func() (Session, int) {
		return v.engine.Open(container, cred)
	})
}

// OpenWithExternalSalt establishes a Store against a container whose header
// has been migrated to the unencrypted format, supplying the salt the
// caller persisted during migration.
func (v *Vault) OpenWithExternalSalt(container, password string, salt Salt) (*Store, error) {
	if err := NewPasswordCredential(password).Validate(); err != nil {
		return nil, err
	}
	return v.open(container, func() (Session, int) {
		return v.engine.OpenExternalSalt(container, password, salt)
	})
}

// open runs the WAL hygiene cycle and the real open through the same
// engine entry point.
func (v *Vault) open(container string, establish func() (Session, int)) (*Store, error) {
	if v.Store() != nil {
		return nil, ErrStoreOpen
	}

	if err := v.reclaimWAL(container, establish); err != nil {
		return nil, err
	}

	session, code := establish()
	if code != StatusOK {
		return nil, &OpenError{Container: container, Code: code, Message: StatusText(code)}
	}

	store := newStore(v, container, session)
	if err := v.attach(store); err != nil {
		session.Close()
		return nil, err
	}
	return store, nil
}

// reclaimWAL forces the engine to checkpoint an oversized WAL side file by
// opening and immediately closing the container once. WAL state is only
// ever mutated through the engine's own open/close; deleting the side file
// directly could desynchronize it from the container.
func (v *Vault) reclaimWAL(container string, establish func() (Session, int)) error {
	info, err := v.host.Stat(container + walSuffix)
	if err != nil || info.Size() <= v.walThreshold {
		return nil
	}

	v.logger.Info("reclaiming oversized wal side file",
		"container", container, "wal_size", info.Size())

	session, code := establish()
	if code != StatusOK {
		return &OpenError{Container: container, Code: code, Message: StatusText(code)}
	}
	session.Close()
	return nil
}

// ChangeCredential atomically transitions store from oldCred to newCred.
// The session is closed first, then the engine's rekey primitive runs
// against the quiesced container; on success the same Store handle is
// revived with a fresh session under the new credential. On any failure the
// store stays closed and unusable — there is no automatic rollback to the
// old credential — and the caller must reopen explicitly.
func (v *Vault) ChangeCredential(store *Store, oldCred, newCred Credential) error {
	if store == nil || store != v.Store() {
		return ErrStoreClosed
	}
	if err := oldCred.Validate(); err != nil {
		return err
	}
	if err := newCred.Validate(); err != nil {
		return err
	}

	session := store.markClosed()
	if session == nil {
		return ErrStoreClosed
	}
	if code := session.Close(); code != StatusOK {
		v.release(store)
		return &RekeyError{Container: store.container, Code: code,
			Message: "could not quiesce container: " + StatusText(code)}
	}

	if code := v.engine.Rekey(store.container, oldCred, newCred); code != StatusOK {
		v.release(store)
		v.logger.Warn("rekey failed, store left unusable",
			"container", store.container, "status", code)
		return &RekeyError{Container: store.container, Code: code, Message: StatusText(code)}
	}

	session, code := v.engine.Open(store.container, newCred)
	if code != StatusOK {
		v.release(store)
		return &RekeyError{Container: store.container, Code: code,
			Message: "reopen after rekey failed: " + StatusText(code)}
	}
	store.adopt(session)

	v.logger.Info("container rekeyed", "container", store.container)
	return nil
}

// SaltPersistFunc durably persists the salt extracted from an encrypted
// container header. It must complete durable persistence before returning
// nil; returning an error aborts the migration with the container
// untouched.
type SaltPersistFunc func(Salt) error

// MigrateHeaderFormat converts the container at path from the embedded-salt
// encrypted header to the externalized-salt unencrypted header.
//
// Migration is a two-phase commit: the salt is handed to persist and must
// be durable before the header is rewritten, because a crash between the
// rewrite and the salt save would make the container unrecoverable. When
// the header already carries the unencrypted magic the call is an idempotent
// no-op and persist is never invoked.
func (v *Vault) MigrateHeaderFormat(container, password string, persist SaltPersistFunc) error {
	header, err := v.readHeader(container)
	if err != nil {
		return err
	}

	if bytes.HasPrefix(header, []byte(headerMagic)) {
		return nil
	}
	if len(header) < SaltSize {
		return &MigrationError{Container: container,
			Message: "container header too short to carry a salt"}
	}

	var salt Salt
	copy(salt[:], header[:SaltSize])

	if persist == nil {
		return &MigrationError{Container: container,
			Message: "salt persistence callback is required"}
	}
	if err := persist(salt); err != nil {
		return &MigrationError{Container: container,
			Message: "salt was not persisted, container untouched", Err: err}
	}

	if code := v.engine.MigrateHeader(container, password, salt.Hex()); code != StatusOK {
		return &MigrationError{Container: container,
			Message: "engine migration failed: " + StatusText(code)}
	}

	v.logger.Info("container header migrated", "container", container)
	return nil
}

// readHeader reads the container's first headerProbeSize bytes through the
// host filesystem. Failure to read an existing container is a fatal
// configuration error surfaced as an engine-level I/O error.
func (v *Vault) readHeader(container string) ([]byte, error) {
	f, err := v.host.OpenFile(container, os.O_RDONLY, 0)
	if err != nil {
		return nil, &EngineError{Op: "header", Path: container, Code: StatusIO,
			Message: "cannot read container header: " + err.Error()}
	}
	defer f.Close()

	header := make([]byte, headerProbeSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, &EngineError{Op: "header", Path: container, Code: StatusIO,
			Message: "cannot read container header: " + err.Error()}
	}
	return header[:n], nil
}
