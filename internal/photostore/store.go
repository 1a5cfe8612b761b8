package photostore

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes photo bytes to local disk, content-addressed by md5 so a
// re-uploaded image never duplicates the file. The rest of the system only
// ever sees the returned URL.
type Store struct {
	dir       string
	publicURL string
}

// New creates a store rooted at dir; saved photos are served under publicURL.
func New(dir, publicURL string) *Store {
	return &Store{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}
}

// Save writes the photo under <dir>/<userID>/<md5>.png and returns its
// public URL. Saving identical content twice is a no-op returning the same
// URL.
func (s *Store) Save(userID string, content []byte) (string, error) {
	userDir := filepath.Join(s.dir, userID)
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create photo dir: %w", err)
	}

	sum := md5.Sum(content)
	filename := hex.EncodeToString(sum[:]) + ".png"
	path := filepath.Join(userDir, filename)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return "", fmt.Errorf("failed to write photo: %w", err)
		}
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, userID, filename), nil
}

// Delete removes the file behind a URL previously returned by Save.
// URLs outside the store's public prefix are ignored.
func (s *Store) Delete(url string) error {
	rel, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
