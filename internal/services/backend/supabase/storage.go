package supabase

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/alexisnsns/pfalexn/internal/services/backend"
)

// Upload stores body in the configured bucket under key.
func (c *Client) Upload(ctx context.Context, accessToken, key, contentType string, body io.Reader) error {
	if strings.TrimSpace(accessToken) == "" {
		return backend.ErrUnauthenticated
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.do(ctx, "supabase.Upload", request{
		method:      http.MethodPost,
		path:        "/storage/v1/object/" + c.bucket + "/" + strings.TrimLeft(key, "/"),
		token:       accessToken,
		rawBody:     body,
		contentType: contentType,
	}, nil)
}

// PublicURL returns the public object URL for key.
func (c *Client) PublicURL(key string) string {
	return c.endpoint("/storage/v1/object/public/"+c.bucket+"/"+strings.TrimLeft(key, "/"), nil)
}
