package local

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
)

// ErrInvalidObjectPath indicates an object key that escapes the uploads root.
var ErrInvalidObjectPath = errors.New("invalid object path")

type objectDir struct {
	root      string
	publicURL string
}

func newObjectDir(root, publicURL string) (objectDir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return objectDir{}, fmt.Errorf("uploads dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return objectDir{}, fmt.Errorf("create uploads dir: %w", err)
	}
	publicURL = strings.TrimRight(strings.TrimSpace(publicURL), "/")
	if publicURL == "" {
		publicURL = "/uploads"
	}
	return objectDir{root: filepath.Clean(root), publicURL: publicURL}, nil
}

// cleanKey validates a slash-separated object key.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidObjectPath
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", ErrInvalidObjectPath
	}
	return cleaned, nil
}

// Upload writes body under the uploads root. Existing objects are not
// overwritten.
func (b *Backend) Upload(ctx context.Context, accessToken, key, _ string, body io.Reader) error {
	if _, err := b.GetUser(ctx, accessToken); err != nil {
		return err
	}
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	target := filepath.Join(b.objects.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return fmt.Errorf("close object: %w", err)
	}
	return nil
}

// PublicURL returns the URL the object is served at.
func (b *Backend) PublicURL(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return b.objects.publicURL + "/" + strings.Join(segments, "/")
}

// UploadsDir returns the directory objects are written to, for serving.
func (b *Backend) UploadsDir() string {
	return b.objects.root
}
