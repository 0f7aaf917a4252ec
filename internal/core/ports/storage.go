package ports

import (
	"context"
	"io"
)

// AvatarStorage keeps uploaded profile pictures and returns the path clients
// use to fetch them.
type AvatarStorage interface {
	SaveAvatar(ctx context.Context, userID, ext string, r io.Reader, size int64, contentType string) (string, error)
}
