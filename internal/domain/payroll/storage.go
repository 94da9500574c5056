package payroll

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cryptoutil "orbit/internal/platform/crypto"
)

// Storage persists rendered paystub documents keyed by tenant. Write must be
// idempotent for the same tenant+fileName+content so emission retries are
// safe.
type Storage interface {
	Write(ctx context.Context, tenantID, fileName string, data []byte) (string, error)
	Read(ctx context.Context, tenantID, fileName string) ([]byte, error)
}

// DiskStorage stores paystubs under root/<tenant>/<file>, optionally
// encrypted at rest. Failures wrap ErrPersistence so callers can tell
// transient storage trouble from permanent validation errors.
type DiskStorage struct {
	Root   string
	Crypto *cryptoutil.Service
}

func NewDiskStorage(root string, crypto *cryptoutil.Service) *DiskStorage {
	return &DiskStorage{Root: root, Crypto: crypto}
}

func (s *DiskStorage) Write(_ context.Context, tenantID, fileName string, data []byte) (string, error) {
	dir := filepath.Join(s.Root, tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	payload := data
	path := filepath.Join(dir, fileName)
	if s.Crypto != nil && s.Crypto.Configured() {
		sealed, err := s.Crypto.Seal(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		payload = sealed
		path += ".enc"
	}

	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return path, nil
}

func (s *DiskStorage) Read(_ context.Context, tenantID, fileName string) ([]byte, error) {
	path := filepath.Join(s.Root, tenantID, fileName)
	if s.Crypto != nil && s.Crypto.Configured() {
		sealed, err := os.ReadFile(path + ".enc")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		plain, err := s.Crypto.Open(sealed)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return plain, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return data, nil
}
