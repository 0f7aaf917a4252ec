// Package storage persists profile pictures on the local filesystem or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/uiticket/ticket-system/internal/core/ports"
)

// LocalStore writes avatars under a directory served at PublicPrefix.
type LocalStore struct {
	dir          string
	publicPrefix string
	now          func() time.Time
}

var _ ports.AvatarStorage = (*LocalStore)(nil)

func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("avatar dir: %w", err)
	}
	return &LocalStore{dir: dir, publicPrefix: strings.TrimRight(publicPrefix, "/"), now: time.Now}, nil
}

// Dir is the directory avatars are written to.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) SaveAvatar(_ context.Context, userID, ext string, r io.Reader, size int64, _ string) (string, error) {
	name := objectName(userID, ext, s.now())
	full := filepath.Join(s.dir, name)

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create avatar: %w", err)
	}
	written, err := io.Copy(f, io.LimitReader(r, size+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && size >= 0 && written != size {
		err = fmt.Errorf("expected %d bytes, wrote %d", size, written)
	}
	if err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("write avatar: %w", err)
	}
	return path.Join(s.publicPrefix, name), nil
}

// objectName is <user id>-<unix nanos><ext>; ext is expected with its leading dot.
func objectName(userID, ext string, at time.Time) string {
	return fmt.Sprintf("%s-%d%s", userID, at.UnixNano(), strings.ToLower(ext))
}
