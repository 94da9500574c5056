package payroll

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cryptoutil "orbit/internal/platform/crypto"
)

func TestDiskStorageRoundTrip(t *testing.T) {
	storage := NewDiskStorage(t.TempDir(), nil)
	ctx := context.Background()

	path, err := storage.Write(ctx, "tenant-1", "stub.pdf", []byte("%PDF-payload"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "tenant-1" {
		t.Fatalf("expected tenant-scoped path, got %s", path)
	}

	data, err := storage.Read(ctx, "tenant-1", "stub.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, []byte("%PDF-payload")) {
		t.Fatal("read back different content")
	}
}

func TestDiskStorageWriteIsIdempotent(t *testing.T) {
	storage := NewDiskStorage(t.TempDir(), nil)
	ctx := context.Background()

	first, err := storage.Write(ctx, "tenant-1", "stub.pdf", []byte("%PDF-payload"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := storage.Write(ctx, "tenant-1", "stub.pdf", []byte("%PDF-payload"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("repeated write changed the path: %s vs %s", first, second)
	}
}

func TestDiskStorageEncryptsAtRest(t *testing.T) {
	key := strings.Repeat("ab", 32) // 32 bytes hex-encoded
	crypto, err := cryptoutil.New(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := t.TempDir()
	storage := NewDiskStorage(root, crypto)
	ctx := context.Background()

	plain := []byte("%PDF-secret")
	path, err := storage.Write(ctx, "tenant-1", "stub.pdf", plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, ".enc") {
		t.Fatalf("expected encrypted file suffix, got %s", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bytes.Contains(raw, plain) {
		t.Fatal("plaintext found on disk")
	}

	data, err := storage.Read(ctx, "tenant-1", "stub.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, plain) {
		t.Fatal("decrypted content differs")
	}
}

func TestDiskStorageMissingFile(t *testing.T) {
	storage := NewDiskStorage(t.TempDir(), nil)
	_, err := storage.Read(context.Background(), "tenant-1", "missing.pdf")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
