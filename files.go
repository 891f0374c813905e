package vaultfs

import "time"

// Path-addressed file and directory operations over an open Store.

// CreateFile makes an empty file at path.
func (s *Store) CreateFile(p string) error {
	p, err := NormalizePath(p)
	if err != nil {
		return err
	}
	session, err := s.acquire()
	if err != nil {
		return err
	}
	if code := session.Create(p); code != StatusOK {
		return newEngineError("create", p, code)
	}
	return nil
}

// CreateDirectory makes a directory at path.
func (s *Store) CreateDirectory(p string) error {
	p, err := NormalizePath(p)
	if err != nil {
		return err
	}
	session, err := s.acquire()
	if err != nil {
		return err
	}
	if code := session.Mkdir(p); code != StatusOK {
		return newEngineError("mkdir", p, code)
	}
	return nil
}

// Remove deletes the file or empty directory at path. Directory-ness is
// probed first and the matching engine primitive dispatched; there is no
// atomicity against a concurrent mutation between probe and removal, a race
// this facade accepts.
func (s *Store) Remove(p string) error {
	p, err := NormalizePath(p)
	if err != nil {
		return err
	}
	session, err := s.acquire()
	if err != nil {
		return err
	}

	isDir, code := session.IsDir(p)
	if code != StatusOK {
		return newEngineError("remove", p, code)
	}
	op := "unlink"
	if isDir {
		op = "rmdir"
		code = session.Rmdir(p)
	} else {
		code = session.Unlink(p)
	}
	if code != StatusOK {
		return newEngineError(op, p, code)
	}
	return nil
}

// Exists reports whether path exists and whether it is a directory.
// Existence checks never fail loudly: any error, including a closed store
// or an invalid path, reads as (false, false).
func (s *Store) Exists(p string) (exists, isDir bool) {
	p, err := NormalizePath(p)
	if err != nil {
		return false, false
	}
	session, err := s.acquire()
	if err != nil {
		return false, false
	}

	dir, code := session.IsDir(p)
	if code != StatusOK {
		dir = false
	}
	if code := session.Access(p); code != StatusOK {
		return false, false
	}
	return true, dir
}

// GetAttributes stats the file or directory at path.
func (s *Store) GetAttributes(p string) (FileAttributes, error) {
	p, err := NormalizePath(p)
	if err != nil {
		return FileAttributes{}, err
	}
	session, err := s.acquire()
	if err != nil {
		return FileAttributes{}, err
	}

	attr, code := session.Getattr(p)
	if code != StatusOK {
		return FileAttributes{}, newEngineError("getattr", p, code)
	}
	return FileAttributes{
		Size:       uint64(attr.Size),
		ModifiedAt: time.Unix(0, attr.ModTimeUnixNano),
	}, nil
}
