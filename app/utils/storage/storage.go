// Package storage keeps uploaded product images. The local driver writes to
// a directory served by the router, the s3 driver to an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore saves an image and returns the public URL it can be fetched from.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ObjectName builds a collision-free object name keeping the upload's
// extension.
func ObjectName(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	return uuid.New().String() + ext, nil
}

func joinURL(base, name string) string {
	if strings.Contains(base, "://") {
		return strings.TrimRight(base, "/") + "/" + name
	}
	return path.Join("/", base, name)
}
