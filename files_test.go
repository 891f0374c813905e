package vaultfs

import (
	"errors"
	"testing"
	"time"
)

func TestCreateFileThenExists(t *testing.T) {
	vault, _ := newTestVault(t)
	store := openTestStore(t, vault, "hunter2")
	defer store.Close()

	if err := store.CreateFile("/a.txt"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	exists, isDir := store.Exists("/a.txt")
	if !exists || isDir {
		t.Errorf("Exists(/a.txt) = (%v, %v), want (true, false)", exists, isDir)
	}
}

func TestCreateDirectoryThenExists(t *testing.T) {
	vault, _ := newTestVault(t)
	store := openTestStore(t, vault, "hunter2")
	defer store.Close()

	if err := store.CreateDirectory("/docs"); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	exists, isDir := store.Exists("/docs")
	if !exists || !isDir {
		t.Errorf("Exists(/docs) = (%v, %v), want (true, true)", exists, isDir)
	}
}

func TestExistsNeverFailsLoudly(t *testing.T) {
	vault, _ := newTestVault(t)
	store := openTestStore(t, vault, "hunter2")
	defer store.Close()

	if exists, isDir := store.Exists("/missing"); exists || isDir {
		t.Error("missing path should read as (false, false)")
	}
	if exists, isDir := store.Exists("relative"); exists || isDir {
		t.Error("invalid path should read as (false, false)")
	}
	if exists, isDir := store.Exists(""); exists || isDir {
		t.Error("empty path should read as (false, false)")
	}
}

func TestCreateFileDuplicate(t *testing.T) {
	vault, _ := newTestVault(t)
	store := openTestStore(t, vault, "hunter2")
	defer store.Close()

	if err := store.CreateFile("/dup.txt"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	err := store.CreateFile("/dup.txt")
	if !IsEngineError(err) {
		t.Fatalf("duplicate create: expected engine error, got %v", err)
	}
}

func TestRemoveFile(t *testing.T) {
	vault, _ := newTestVault(t)
	store := openTestStore(t, vault, "hunter2")
	defer store.Close()

	if err := store.CreateFile("/gone.txt"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.Remove("/gone.txt"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if exists, _ := store.Exists("/gone.txt"); exists {
		t.Error("file should not exist after remove")
	}
}

func TestRemoveDirectory(t *testing.T) {
	vault, _ := newTestVault(t)
	store := openTestStore(t, vault, "hunter2")
	defer store.Close()

	if err := store.CreateDirectory("/tmp"); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := store.Remove("/tmp"); err != nil {
		t.Fatalf("remove directory failed: %v", err)
	}
	if exists, _ := store.Exists("/tmp"); exists {
		t.Error("directory should not exist after remove")
	}
}

func TestRemoveMissing(t *testing.T) {
	vault, _ := newTestVault(t)
	store := openTestStore(t, vault, "hunter2")
	defer store.Close()

	if err := store.Remove("/nothing-here"); !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestGetAttributes(t *testing.T) {
	vault, _ := newTestVault(t)
	store := openTestStore(t, vault, "hunter2")
	defer store.Close()

	if err := store.CreateFile("/sized.bin"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	payload := []byte("twelve bytes")
	if _, err := store.Write("/sized.bin", payload, 0); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	attrs, err := store.GetAttributes("/sized.bin")
	if err != nil {
		t.Fatalf("getattr failed: %v", err)
	}
	if attrs.Size != uint64(len(payload)) {
		t.Errorf("size = %d, want %d", attrs.Size, len(payload))
	}
	if attrs.ModifiedAt.IsZero() || time.Since(attrs.ModifiedAt) > time.Minute {
		t.Errorf("suspicious modification time %v", attrs.ModifiedAt)
	}
}

func TestGetAttributesMissing(t *testing.T) {
	vault, _ := newTestVault(t)
	store := openTestStore(t, vault, "hunter2")
	defer store.Close()

	_, err := store.GetAttributes("/nope")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	var ee *EngineError
	if !errors.As(err, &ee) || ee.Errno() != 2 {
		t.Errorf("not-found should carry errno 2, got %v", err)
	}
}

func TestPathsAreNormalized(t *testing.T) {
	vault, _ := newTestVault(t)
	store := openTestStore(t, vault, "hunter2")
	defer store.Close()

	if err := store.CreateFile("/docs/../note.txt"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if exists, _ := store.Exists("/note.txt"); !exists {
		t.Error("dot-dot segments should resolve before hitting the engine")
	}
}
