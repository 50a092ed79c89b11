package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/greenmandi/storefront/internal/config"
	"github.com/greenmandi/storefront/internal/imageoverride/domain"
)

// Disk stores blobs on the local filesystem and serves them under a public
// base URL. A failed write never leaves a partial object behind: content is
// written to a temp file and renamed into place.
type Disk struct {
	dir     string
	baseURL string
}

func NewDisk(cfg config.Config) (*Disk, error) {
	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Disk{
		dir:     cfg.MediaDir,
		baseURL: cfg.MediaPublicBaseURL,
	}, nil
}

func (d *Disk) Put(ctx context.Context, key, contentType string, blob io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.ContainsAny(key, "/\\") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	_ = contentType

	tmp, err := os.CreateTemp(d.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, blob); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmp.Name(), filepath.Join(d.dir, key)); err != nil {
		return "", err
	}
	return d.baseURL + "/" + key, nil
}

func (d *Disk) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(key, "/\\") {
		return fmt.Errorf("invalid object key %q", key)
	}
	err := os.Remove(filepath.Join(d.dir, key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

var _ domain.ObjectStore = (*Disk)(nil)
