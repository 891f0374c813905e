package vaultfs

// Offset-addressed chunked I/O over an open Store.

// Read returns up to length bytes starting at offset. A short or empty
// result is a successful read at or past end of file, never an error; the
// engine's end-of-file status maps to however many bytes were produced.
func (s *Store) Read(p string, length int, offset int64) ([]byte, error) {
	p, err := NormalizePath(p)
	if err != nil {
		return nil, err
	}
	if err := validateLength("read", length); err != nil {
		return nil, err
	}
	if err := validateOffset("read", offset); err != nil {
		return nil, err
	}
	session, err := s.acquire()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, length)
	n := session.Read(p, buf, offset)
	switch {
	case n == StatusEOF:
		return buf[:0], nil
	case n < 0:
		return nil, newEngineError("read", p, n)
	}
	return buf[:n], nil
}

// Write stores data at offset, extending the file as needed, and returns
// the count of bytes the engine actually accepted. The count may be less
// than len(data); sequential writers must check and loop, as the copy
// tasks do.
func (s *Store) Write(p string, data []byte, offset int64) (int, error) {
	p, err := NormalizePath(p)
	if err != nil {
		return 0, err
	}
	if err := validateOffset("write", offset); err != nil {
		return 0, err
	}
	session, err := s.acquire()
	if err != nil {
		return 0, err
	}

	n := session.Write(p, data, offset)
	if n < 0 {
		return 0, newEngineError("write", p, n)
	}
	return n, nil
}

// Truncate sets the file's length to size.
func (s *Store) Truncate(p string, size int64) error {
	p, err := NormalizePath(p)
	if err != nil {
		return err
	}
	if err := validateOffset("truncate", size); err != nil {
		return err
	}
	session, err := s.acquire()
	if err != nil {
		return err
	}

	if code := session.Truncate(p, size); code != StatusOK {
		return newEngineError("truncate", p, code)
	}
	return nil
}

// ReadWhole returns the file's entire content: GetAttributes for the size,
// then one Read from offset zero. An attribute failure short-circuits
// without attempting the read.
func (s *Store) ReadWhole(p string) ([]byte, error) {
	attrs, err := s.GetAttributes(p)
	if err != nil {
		return nil, err
	}
	return s.Read(p, int(attrs.Size), 0)
}
