package vaultfs

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"
	"golang.org/x/crypto/pbkdf2"
)

// verifierIterations is the PBKDF2 work factor of the reference engine's
// credential verifier. Deliberately modest; the real engine owns the real
// key derivation.
const verifierIterations = 4096

// MemEngine is an in-memory reference implementation of Engine. Container
// namespaces live in per-container memfs instances; the container file and
// its WAL side file are materialized on the host filesystem so that header
// inspection and WAL hygiene exercise the same code paths as a real engine.
//
// Credentials are checked against a PBKDF2 verifier derived from the
// container salt; the namespace content itself is not encrypted. Data
// persists for the lifetime of the engine value, across close and reopen.
type MemEngine struct {
	host absfs.FileSystem

	mu         sync.Mutex
	containers map[string]*memContainer
}

type memContainer struct {
	ns          absfs.FileSystem
	salt        Salt
	verifier    []byte
	plainHeader bool
	compat      int

	// opMu serializes mutating namespace calls, standing in for the real
	// engine's internal write serialization.
	opMu sync.Mutex
}

// NewMemEngine creates a reference engine that materializes container files
// on host.
func NewMemEngine(host absfs.FileSystem) *MemEngine {
	return &MemEngine{
		host:       host,
		containers: make(map[string]*memContainer),
	}
}

func deriveVerifier(material []byte, salt Salt) []byte {
	return pbkdf2.Key(material, salt[:], verifierIterations, 32, sha256.New)
}

// Open implements Engine. A missing container is created with a fresh salt
// and a verifier bound to cred; an existing one is opened only if cred
// matches its verifier.
func (e *MemEngine) Open(container string, cred Credential) (Session, int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.containers[container]
	if !ok {
		c, code := e.createContainer(container, cred.material())
		if code != StatusOK {
			return nil, code
		}
		return &memSession{engine: e, container: container, c: c}, StatusOK
	}

	if c.plainHeader {
		// A migrated container carries no embedded salt; the normal open
		// path cannot derive its key.
		return nil, StatusInvalid
	}
	if subtle.ConstantTimeCompare(c.verifier, deriveVerifier(cred.material(), c.salt)) != 1 {
		return nil, StatusAuth
	}
	return &memSession{engine: e, container: container, c: c}, StatusOK
}

// OpenExternalSalt implements Engine.
func (e *MemEngine) OpenExternalSalt(container, password string, salt Salt) (Session, int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.containers[container]
	if !ok {
		return nil, StatusNotFound
	}
	if !c.plainHeader {
		return nil, StatusInvalid
	}
	if subtle.ConstantTimeCompare(c.verifier, deriveVerifier([]byte(password), salt)) != 1 {
		return nil, StatusAuth
	}
	return &memSession{engine: e, container: container, c: c}, StatusOK
}

// Rekey implements Engine.
func (e *MemEngine) Rekey(container string, oldCred, newCred Credential) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.containers[container]
	if !ok {
		return StatusNotFound
	}
	if subtle.ConstantTimeCompare(c.verifier, deriveVerifier(oldCred.material(), c.salt)) != 1 {
		return StatusAuth
	}
	c.verifier = deriveVerifier(newCred.material(), c.salt)
	return StatusOK
}

// MigrateHeader implements Engine. Idempotent: a container already in the
// unencrypted-header format reports success without touching the file.
func (e *MemEngine) MigrateHeader(container, password, saltLiteral string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.containers[container]
	if !ok {
		return StatusNotFound
	}
	if c.plainHeader {
		return StatusOK
	}
	if subtle.ConstantTimeCompare(c.verifier, deriveVerifier([]byte(password), c.salt)) != 1 {
		return StatusAuth
	}

	decoded, err := hex.DecodeString(saltLiteral)
	if err != nil || len(decoded) != SaltSize {
		return StatusInvalid
	}
	var salt Salt
	copy(salt[:], decoded)
	if salt != c.salt {
		return StatusInvalid
	}

	f, err := e.host.OpenFile(container, os.O_RDWR, 0)
	if err != nil {
		return StatusIO
	}
	defer f.Close()
	if _, err := f.WriteAt([]byte(headerMagic), 0); err != nil {
		return StatusIO
	}

	c.plainHeader = true
	return StatusOK
}

// createContainer materializes a fresh container: a new namespace, a random
// salt, and a host file whose first SaltSize bytes are that salt followed
// by opaque filler, the shape of an encrypted header.
func (e *MemEngine) createContainer(container string, material []byte) (*memContainer, int) {
	ns, err := memfs.NewFS()
	if err != nil {
		return nil, StatusIO
	}

	var salt Salt
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, StatusIO
	}

	header := make([]byte, headerProbeSize)
	copy(header, salt[:])
	if _, err := rand.Read(header[SaltSize:]); err != nil {
		return nil, StatusIO
	}

	f, err := e.host.OpenFile(container, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, StatusIO
	}
	if _, err := f.Write(header); err != nil {
		f.Close()
		return nil, StatusIO
	}
	if err := f.Close(); err != nil {
		return nil, StatusIO
	}

	c := &memContainer{
		ns:       ns,
		salt:     salt,
		verifier: deriveVerifier(material, salt),
		compat:   4,
	}
	e.containers[container] = c
	return c, StatusOK
}

// memSession is one open connection to a MemEngine container.
type memSession struct {
	engine    *MemEngine
	container string
	c         *memContainer

	mu     sync.Mutex
	closed bool
}

func (s *memSession) live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Close implements Session. Closing reclaims the WAL side file, the same
// checkpoint a real engine performs on its last connection.
func (s *memSession) Close() int {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return StatusBadHandle
	}
	s.closed = true
	s.mu.Unlock()

	s.engine.host.Remove(s.container + walSuffix)
	return StatusOK
}

func (s *memSession) Create(path string) int {
	if !s.live() {
		return StatusBadHandle
	}
	s.c.opMu.Lock()
	defer s.c.opMu.Unlock()

	f, err := s.c.ns.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return mapFSError(err)
	}
	f.Close()
	return StatusOK
}

func (s *memSession) Mkdir(path string) int {
	if !s.live() {
		return StatusBadHandle
	}
	s.c.opMu.Lock()
	defer s.c.opMu.Unlock()

	if err := s.c.ns.Mkdir(path, 0755); err != nil {
		return mapFSError(err)
	}
	return StatusOK
}

func (s *memSession) Rmdir(path string) int {
	if !s.live() {
		return StatusBadHandle
	}
	s.c.opMu.Lock()
	defer s.c.opMu.Unlock()

	info, err := s.c.ns.Stat(path)
	if err != nil {
		return mapFSError(err)
	}
	if !info.IsDir() {
		return StatusNotDir
	}
	if err := s.c.ns.Remove(path); err != nil {
		return mapFSError(err)
	}
	return StatusOK
}

func (s *memSession) Unlink(path string) int {
	if !s.live() {
		return StatusBadHandle
	}
	s.c.opMu.Lock()
	defer s.c.opMu.Unlock()

	info, err := s.c.ns.Stat(path)
	if err != nil {
		return mapFSError(err)
	}
	if info.IsDir() {
		return StatusIsDir
	}
	if err := s.c.ns.Remove(path); err != nil {
		return mapFSError(err)
	}
	return StatusOK
}

func (s *memSession) Access(path string) int {
	if !s.live() {
		return StatusBadHandle
	}
	if _, err := s.c.ns.Stat(path); err != nil {
		return mapFSError(err)
	}
	return StatusOK
}

func (s *memSession) IsDir(path string) (bool, int) {
	if !s.live() {
		return false, StatusBadHandle
	}
	info, err := s.c.ns.Stat(path)
	if err != nil {
		return false, mapFSError(err)
	}
	return info.IsDir(), StatusOK
}

func (s *memSession) Getattr(path string) (EngineAttr, int) {
	if !s.live() {
		return EngineAttr{}, StatusBadHandle
	}
	info, err := s.c.ns.Stat(path)
	if err != nil {
		return EngineAttr{}, mapFSError(err)
	}
	return EngineAttr{
		Size:            info.Size(),
		ModTimeUnixNano: info.ModTime().UnixNano(),
	}, StatusOK
}

func (s *memSession) Read(path string, p []byte, off int64) int {
	if !s.live() {
		return StatusBadHandle
	}
	s.c.opMu.Lock()
	defer s.c.opMu.Unlock()

	f, err := s.c.ns.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return mapFSError(err)
	}
	defer f.Close()

	if len(p) == 0 {
		return 0
	}
	n, err := f.ReadAt(p, off)
	if n > 0 {
		return n
	}
	if err == io.EOF {
		return StatusEOF
	}
	if err != nil {
		return mapFSError(err)
	}
	return n
}

func (s *memSession) Write(path string, p []byte, off int64) int {
	if !s.live() {
		return StatusBadHandle
	}
	s.c.opMu.Lock()
	defer s.c.opMu.Unlock()

	f, err := s.c.ns.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return mapFSError(err)
	}
	defer f.Close()

	n, err := f.WriteAt(p, off)
	if err != nil && n == 0 {
		return mapFSError(err)
	}
	s.journal(p[:n])
	return n
}

func (s *memSession) Truncate(path string, size int64) int {
	if !s.live() {
		return StatusBadHandle
	}
	s.c.opMu.Lock()
	defer s.c.opMu.Unlock()

	if _, err := s.c.ns.Stat(path); err != nil {
		return mapFSError(err)
	}
	if err := s.c.ns.Truncate(path, size); err != nil {
		return mapFSError(err)
	}
	return StatusOK
}

func (s *memSession) SetCipherCompat(version int) int {
	if !s.live() {
		return StatusBadHandle
	}
	if version < 1 || version > 4 {
		return StatusInvalid
	}
	s.engine.mu.Lock()
	s.c.compat = version
	s.engine.mu.Unlock()
	return StatusOK
}

func (s *memSession) Vacuum() int {
	if !s.live() {
		return StatusBadHandle
	}
	s.engine.host.Remove(s.container + walSuffix)
	return StatusOK
}

// journal appends the written bytes to the WAL side file on the host, so
// the side file grows with write traffic the way a real engine's does.
// Best effort: journal failures never fail the write that produced them.
func (s *memSession) journal(p []byte) {
	if len(p) == 0 {
		return
	}
	f, err := s.engine.host.OpenFile(s.container+walSuffix, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return
	}
	f.Write(p)
	f.Close()
}

// mapFSError translates a host/namespace filesystem error into an engine
// status code.
func mapFSError(err error) int {
	switch {
	case err == nil:
		return StatusOK
	case os.IsNotExist(err):
		return StatusNotFound
	case os.IsExist(err):
		return StatusExists
	case os.IsPermission(err):
		return StatusAccess
	case errors.Is(err, syscall.ENOTEMPTY):
		return StatusNotEmpty
	case errors.Is(err, syscall.ENOTDIR):
		return StatusNotDir
	case errors.Is(err, syscall.EISDIR):
		return StatusIsDir
	default:
		return StatusIO
	}
}
