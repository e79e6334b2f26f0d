package receipts

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store deletes uploaded receipt images from a local directory. Deletion is
// a best-effort side effect of terminal deposit transitions; callers log and
// ignore errors.
type Store struct {
	dir string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Remove deletes the receipt file for a deposit. The file name is derived
// from the stored URL, falling back to the deposit id plus the URL's
// extension. A file that is already gone is not an error.
func (s *Store) Remove(ctx context.Context, depositID uuid.UUID, receiptURL string) error {
	name := path.Base(receiptURL)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		name = depositID.String() + path.Ext(receiptURL)
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
