package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/meltforce/liftlog/internal/models"
)

// FileStore reads and writes the payload document at Path.
type FileStore struct {
	Path string
}

// Read decodes the data file. A missing file returns an error wrapping
// fs.ErrNotExist.
func (f FileStore) Read() (models.Payload, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return models.Payload{}, fmt.Errorf("reading data file: %w", err)
	}
	p, err := models.DecodePayload(data)
	if err != nil {
		return models.Payload{}, fmt.Errorf("decoding data file: %w", err)
	}
	return p, nil
}

// Write replaces the data file with data.
func (f FileStore) Write(data []byte) error {
	return WriteAtomic(f.Path, data)
}

// WriteAtomic writes data to a temp file in the target directory, syncs it
// and renames it over path. Readers see the old or the new content, never a
// partial file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
