package masters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/filex"
	"github.com/akovardin/securepass/internal/models"
)

const mastersFileName = "masters.json"

// FileRepository keeps all master records in one JSON file in the data
// directory, keyed by owner. Writes go through write-temp-then-rename.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository creates the data directory if needed and returns a
// repository rooted there.
func NewFileRepository(dataDir string) (*FileRepository, error) {
	if err := filex.EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageIO, err)
	}
	return &FileRepository{path: filepath.Join(dataDir, mastersFileName)}, nil
}

func (r *FileRepository) readAll() (map[string]*models.MasterCredential, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]*models.MasterCredential{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrStorageIO, r.path, err)
	}

	records := map[string]*models.MasterCredential{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", common.ErrStorageIO, r.path, err)
	}
	return records, nil
}

func (r *FileRepository) writeAll(records map[string]*models.MasterCredential) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal master records: %w", err)
	}
	if err := filex.WriteAtomic(r.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageIO, err)
	}
	return nil
}

func (r *FileRepository) Exists(ctx context.Context, owner string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readAll()
	if err != nil {
		return false, err
	}
	_, ok := records[owner]
	return ok, nil
}

func (r *FileRepository) Save(ctx context.Context, owner string, cred *models.MasterCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readAll()
	if err != nil {
		return err
	}
	records[owner] = cred
	return r.writeAll(records)
}

func (r *FileRepository) Load(ctx context.Context, owner string) (*models.MasterCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readAll()
	if err != nil {
		return nil, err
	}
	cred, ok := records[owner]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cred, nil
}
