// Package uploads stores submitted photo files on local disk and hands back
// the public path they are served from.
package uploads

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// MaxUploadBytes is the largest accepted image file.
const MaxUploadBytes = 5 * 1024 * 1024

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes the file under a collision-safe name and returns the public
// path and the absolute file path.
func (s *Store) Save(originalName string, r io.Reader) (publicPath, filePath string, err error) {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(suffix), filepath.Ext(originalName))

	filePath = filepath.Join(s.dir, name)
	f, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxUploadBytes+1)); err != nil {
		os.Remove(filePath)
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	return "/uploads/" + name, filePath, nil
}
