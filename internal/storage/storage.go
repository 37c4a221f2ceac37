// package storage stores uploaded video files under per-user prefixes
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/desertthunder/vidhub/internal/shared"
)

// Bucket is an object store addressed by slash-separated paths.
type Bucket interface {
	Upload(ctx context.Context, objectPath string, r io.Reader) (int64, error)
	Open(ctx context.Context, objectPath string) (io.ReadCloser, error)
	Remove(ctx context.Context, objectPath string) error
	PublicURL(objectPath string) string
}

// ObjectPath returns "<userID>/<uuid>.<ext>" where ext comes from filename.
func ObjectPath(userID, filename string) string {
	name := shared.GenerateID()
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."); ext != "" {
		name += "." + ext
	}
	return path.Join(userID, name)
}

// LocalBucket keeps objects as files below a root directory.
type LocalBucket struct {
	root    string
	baseURL string
}

// NewLocalBucket creates root if needed. Objects are served from baseURL when it is set,
// otherwise PublicURL returns a file:// URL.
func NewLocalBucket(root, baseURL string) (*LocalBucket, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: storage root is required", shared.ErrInvalidConfig)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalBucket{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes r to objectPath. Existing objects are not overwritten.
func (b *LocalBucket) Upload(ctx context.Context, objectPath string, r io.Reader) (int64, error) {
	full, err := b.resolve(objectPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, fmt.Errorf("%w: %s", shared.ErrDuplicate, objectPath)
		}
		return 0, fmt.Errorf("failed to create object: %w", err)
	}

	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return 0, fmt.Errorf("failed to write object: %w", err)
	}
	return n, nil
}

// Open returns a reader for objectPath.
func (b *LocalBucket) Open(_ context.Context, objectPath string) (io.ReadCloser, error) {
	full, err := b.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRecordNotFound, objectPath)
	}
	return f, err
}

// Remove deletes objectPath. Removing a missing object is not an error.
func (b *LocalBucket) Remove(_ context.Context, objectPath string) error {
	full, err := b.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

// PublicURL returns the address under which objectPath is served.
func (b *LocalBucket) PublicURL(objectPath string) string {
	clean := path.Clean("/" + objectPath)
	if b.baseURL != "" {
		return b.baseURL + clean
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(b.root, filepath.FromSlash(clean)))}
	return u.String()
}

// resolve maps an object path to a file below root, rejecting escapes like "../x".
func (b *LocalBucket) resolve(objectPath string) (string, error) {
	if objectPath == "" || strings.Contains(objectPath, "\\") {
		return "", fmt.Errorf("%w: bad object path %q", shared.ErrInvalidArgument, objectPath)
	}
	clean := path.Clean("/" + objectPath)
	if clean == "/" || clean != "/"+strings.TrimPrefix(objectPath, "/") {
		return "", fmt.Errorf("%w: bad object path %q", shared.ErrInvalidArgument, objectPath)
	}
	return filepath.Join(b.root, filepath.FromSlash(clean)), nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
