package vaultfs

import (
	"errors"
	"log/slog"
	"time"

	"github.com/absfs/absfs"
)

const (
	// DefaultCopyChunkSize is the read granularity of a copy task.
	DefaultCopyChunkSize = 4096

	// DefaultWALReclaimThreshold is the WAL side-file size above which an
	// open forces a reclamation cycle first.
	DefaultWALReclaimThreshold = 1 << 20

	// walSuffix is appended to the container path to locate its WAL side
	// file.
	walSuffix = "-wal"

	// headerMagic is the first 16 bytes of a container whose header has
	// been migrated to the unencrypted format.
	headerMagic = "SQLite format 3\x00"

	// headerProbeSize is how much of the container head is inspected to
	// distinguish encrypted from unencrypted-header state.
	headerProbeSize = 32
)

// FileAttributes describes a file inside an open container.
type FileAttributes struct {
	// Size is the file length in bytes.
	Size uint64

	// ModifiedAt is the last modification time, with sub-second precision
	// where the engine provides it.
	ModifiedAt time.Time
}

// Config contains configuration for a Vault
type Config struct {
	// Host is the filesystem holding the container file and its side
	// files. The vault only reads it: the container header during
	// migration and the WAL size during open hygiene.
	Host absfs.FileSystem

	// Engine is the storage engine that owns the container format.
	Engine Engine

	// Logger receives operational events. Defaults to slog.Default().
	Logger *slog.Logger

	// CopyChunkSize is the read granularity of copy tasks. Defaults to
	// DefaultCopyChunkSize.
	CopyChunkSize int

	// WALReclaimThreshold is the WAL size that triggers a reclamation
	// open/close cycle. Defaults to DefaultWALReclaimThreshold.
	WALReclaimThreshold int64
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}
	if c.Host == nil {
		return errors.New("host filesystem cannot be nil")
	}
	if c.Engine == nil {
		return errors.New("engine cannot be nil")
	}
	if c.CopyChunkSize < 0 {
		return errors.New("copy chunk size cannot be negative")
	}
	if c.WALReclaimThreshold < 0 {
		return errors.New("wal reclaim threshold cannot be negative")
	}
	return nil
}
