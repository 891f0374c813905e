package vaultfs

// The storage engine is an external collaborator. It owns the encrypted
// container format entirely; this package only drives it through the
// primitives below and translates its status codes.
//
// Status codes follow the engine's convention: zero is success, negative
// values are POSIX-style errno codes (negated), and StatusEOF is a distinct
// end-of-file marker that read paths must treat as success.

const (
	// StatusOK signals success.
	StatusOK = 0

	// StatusEOF is returned by Session.Read at or past end of file. It is
	// never an error: it means zero or fewer-than-requested bytes were
	// produced.
	StatusEOF = -4096

	// StatusAuth signals a credential the engine rejected (EPERM).
	StatusAuth = -1
	// StatusNotFound signals a missing path or container (ENOENT).
	StatusNotFound = -2
	// StatusIO signals a low-level engine I/O failure (EIO).
	StatusIO = -5
	// StatusBadHandle signals an operation on a dead session (EBADF).
	StatusBadHandle = -9
	// StatusAccess signals a permission failure (EACCES).
	StatusAccess = -13
	// StatusExists signals a path that already exists (EEXIST).
	StatusExists = -17
	// StatusNotDir signals a non-directory where one was required (ENOTDIR).
	StatusNotDir = -20
	// StatusIsDir signals a directory where a file was required (EISDIR).
	StatusIsDir = -21
	// StatusInvalid signals a malformed argument (EINVAL).
	StatusInvalid = -22
	// StatusNotEmpty signals removal of a non-empty directory (ENOTEMPTY).
	StatusNotEmpty = -39
)

// StatusText returns a human-readable message for an engine status code.
func StatusText(code int) string {
	switch code {
	case StatusOK:
		return "ok"
	case StatusEOF:
		return "end of file"
	case StatusAuth:
		return "operation not permitted"
	case StatusNotFound:
		return "no such file or directory"
	case StatusIO:
		return "input/output error"
	case StatusBadHandle:
		return "bad session handle"
	case StatusAccess:
		return "permission denied"
	case StatusExists:
		return "file exists"
	case StatusNotDir:
		return "not a directory"
	case StatusIsDir:
		return "is a directory"
	case StatusInvalid:
		return "invalid argument"
	case StatusNotEmpty:
		return "directory not empty"
	default:
		return "unknown engine error"
	}
}

// EngineAttr is the engine's stat result for a path inside a container.
type EngineAttr struct {
	// Size is the byte length of the file.
	Size int64

	// ModTimeUnixNano is the modification time in nanoseconds since the
	// Unix epoch.
	ModTimeUnixNano int64
}

// Engine is the container-level contract: opening sessions against a
// container file and the two offline mutations (rekey, header migration)
// that operate on a closed container.
type Engine interface {
	// Open establishes a session against the container at path using the
	// given credential, creating the container if it does not exist.
	// Returns a live Session and StatusOK, or nil and a negative status.
	Open(container string, cred Credential) (Session, int)

	// OpenExternalSalt establishes a session against a container whose
	// header has been migrated to the unencrypted format, supplying the
	// key-derivation salt out of band.
	OpenExternalSalt(container, password string, salt Salt) (Session, int)

	// Rekey changes the container's credential from old to new. The
	// container must not have a live session.
	Rekey(container string, oldCred, newCred Credential) int

	// MigrateHeader rewrites the container header to the unencrypted
	// format. saltLiteral is the lowercase hex encoding of the 16-byte
	// salt extracted from the encrypted header.
	MigrateHeader(container, password, saltLiteral string) int
}

// Session is one open connection to a container. The engine serializes
// mutating calls internally; a Session may be shared by concurrent callers.
// All methods return an engine status code; Read and Write return a
// non-negative byte count on success.
type Session interface {
	// Close tears down the session and reclaims side files. The session
	// must not be used afterwards.
	Close() int

	// Create makes an empty file at path.
	Create(path string) int

	// Mkdir makes a directory at path.
	Mkdir(path string) int

	// Rmdir removes an empty directory.
	Rmdir(path string) int

	// Unlink removes a file.
	Unlink(path string) int

	// Access reports whether path exists.
	Access(path string) int

	// IsDir reports whether path names a directory.
	IsDir(path string) (bool, int)

	// Getattr stats path.
	Getattr(path string) (EngineAttr, int)

	// Read fills p with up to len(p) bytes starting at off. Returns the
	// count read, StatusEOF at end of file, or a negative error status.
	Read(path string, p []byte, off int64) int

	// Write stores p at off, extending the file as needed. Returns the
	// count written, which may be less than len(p).
	Write(path string, p []byte, off int64) int

	// Truncate sets the file's length.
	Truncate(path string, size int64) int

	// SetCipherCompat adjusts the container's cipher compatibility tier.
	SetCipherCompat(version int) int

	// Vacuum compacts the container.
	Vacuum() int
}
