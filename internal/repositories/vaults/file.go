package vaults

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/filex"
)

// FileRepository keeps one <owner>_passwords.dat blob per owner in the
// data directory. Saves within a process are serialized; last writer wins,
// which is acceptable under single-owner-per-vault usage, but a torn write
// never is, hence the atomic replace.
type FileRepository struct {
	dataDir string
	mu      sync.Mutex
}

// NewFileRepository creates the data directory if needed.
func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := filex.EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageIO, err)
	}
	return &FileRepository{dataDir: dataDir}, nil
}

func (r *FileRepository) path(owner string) string {
	// owners are usernames; keep the file name flat
	safe := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		default:
			return '_'
		}
	}, owner)
	return filepath.Join(r.dataDir, safe+"_passwords.dat")
}

func (r *FileRepository) Load(ctx context.Context, owner string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path(owner))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: read vault: %v", common.ErrStorageIO, err)
	}
	return data, nil
}

func (r *FileRepository) Save(ctx context.Context, owner string, blob []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := filex.WriteAtomic(r.path(owner), blob, 0o600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageIO, err)
	}
	return nil
}
