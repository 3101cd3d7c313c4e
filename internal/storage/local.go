// Package storage persists uploaded photos on local disk and hands
// back the public URL path they are served under.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Store struct {
	Dir     string
	BaseURL string
}

// New prepares an upload store rooted at dir. Files are served under
// /uploads by the router.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create upload dir: %w", err)
	}
	return &Store{Dir: dir, BaseURL: "/uploads"}, nil
}

// Save writes one uploaded file under a collision-free name and returns
// its public URL path.
func (s *Store) Save(fh *multipart.FileHeader, label string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), label, filepath.Ext(fh.Filename))
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return s.BaseURL + "/" + name, nil
}

// Remove deletes a previously saved file by its public URL path.
// Used for best-effort cleanup when registration fails mid-way.
func (s *Store) Remove(publicPath string) error {
	name := strings.TrimPrefix(publicPath, s.BaseURL+"/")
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("not a stored file path: %q", publicPath)
	}
	return os.Remove(filepath.Join(s.Dir, name))
}
