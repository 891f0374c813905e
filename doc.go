// Package vaultfs provides a path-addressed file and directory facade over
// an opaque encrypted blob-store engine, adding key-lifecycle management and
// safe concurrent bulk-copy orchestration.
//
// # Overview
//
// vaultfs does not implement an encrypted on-disk format or any
// cryptographic primitives. The storage engine behind the Engine interface
// owns both; this package owns everything around it that is easy to get
// wrong:
//
//   - Credential validation and the open/close lifecycle of a Store
//   - Rekeying, with the store left deliberately unusable on failure
//   - Header-format migration with a two-phase salt-externalization commit
//   - WAL side-file hygiene before opens
//   - A registry of concurrent bulk-copy tasks keyed by destination path
//
// # Basic Usage
//
//	host := osfs.New() // any absfs.FileSystem
//	vault, err := vaultfs.New(&vaultfs.Config{
//	    Host:   host,
//	    Engine: engine,
//	})
//	if err != nil {
//	    panic(err)
//	}
//
//	store, err := vault.Open("/data/vault.db", vaultfs.NewPasswordCredential("hunter2"))
//	if err != nil {
//	    panic(err)
//	}
//	defer store.Close()
//
//	store.CreateFile("/notes.txt")
//	store.Write("/notes.txt", []byte("hello"), 0)
//	data, _ := store.ReadWhole("/notes.txt")
//
// # Key Lifecycle
//
// A Store is opened with either a password or a raw 32-byte key. Credentials
// are validated before the engine is ever contacted. ChangeCredential closes
// the session, rekeys the quiesced container, and revives the same handle on
// success; on failure the store stays closed and every subsequent operation
// returns ErrStoreClosed until the caller reopens explicitly. There is no
// automatic rollback.
//
// MigrateHeaderFormat converts a container from the embedded-salt encrypted
// header to the externalized-salt unencrypted header. The extracted salt is
// handed to a caller callback that must persist it durably before the header
// is rewritten; if the callback fails, the container is untouched. A
// migrated container is reopened with OpenWithExternalSalt.
//
// # Bulk Copy
//
// StartCopy ingests an external byte source into a destination path in
// fixed-size chunks at strictly increasing offsets, off the caller's
// goroutine. Completion is delivered exactly once, on a caller-chosen
// Executor, carrying the byte count and a BLAKE3 checksum of the ingested
// content. One active task per destination path; a second StartCopy to the
// same destination fails with ErrCopyInProgress.
//
// # Concurrency
//
// One Store may be shared by concurrent callers. The engine serializes
// mutating calls internally, so the facade adds no data-path lock; the only
// critical section is the copy registry's path keying, which is never held
// across engine calls or completion callbacks. There is no cancellation and
// there are no timeouts: every operation blocks until the engine returns,
// and the way to stop in-flight ingestion is to close the Store.
package vaultfs
