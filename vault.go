package vaultfs

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/absfs/absfs"
)

// Vault is the facade over one storage engine: it opens and closes Stores,
// performs credential changes and header migrations, and keeps the WAL side
// file hygienic. File and directory operations live on the Store it hands
// out.
type Vault struct {
	host          absfs.FileSystem
	engine        Engine
	logger        *slog.Logger
	copyChunkSize int
	walThreshold  int64

	mu    sync.Mutex
	store *Store
}

// New creates a Vault from config.
func New(config *Config) (*Vault, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	chunkSize := config.CopyChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultCopyChunkSize
	}
	walThreshold := config.WALReclaimThreshold
	if walThreshold == 0 {
		walThreshold = DefaultWALReclaimThreshold
	}

	return &Vault{
		host:          config.Host,
		engine:        config.Engine,
		logger:        logger,
		copyChunkSize: chunkSize,
		walThreshold:  walThreshold,
	}, nil
}

// Store returns the vault's live store, or nil if none is open.
func (v *Vault) Store() *Store {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.store
}

// Close closes the vault's live store, if any.
func (v *Vault) Close() error {
	v.mu.Lock()
	store := v.store
	v.mu.Unlock()

	if store == nil {
		return nil
	}
	return store.Close()
}

// attach records a newly opened store, enforcing the one-live-store rule.
func (v *Vault) attach(store *Store) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.store != nil {
		return ErrStoreOpen
	}
	v.store = store
	return nil
}

// release forgets a store that has been closed.
func (v *Vault) release(store *Store) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.store == store {
		v.store = nil
	}
}
