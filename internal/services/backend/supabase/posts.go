package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexisnsns/pfalexn/internal/services/backend"
)

const returnRepresentation = "return=representation"

type postRow struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	Draft     bool   `json:"draft"`
}

type postWrite struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Draft   bool   `json:"draft"`
}

func (r postRow) toPost() (backend.Post, error) {
	post := backend.Post{ID: r.ID, Title: r.Title, Content: r.Content, Draft: r.Draft}
	if r.CreatedAt != "" {
		created, err := parseTimestamp(r.CreatedAt)
		if err != nil {
			return backend.Post{}, fmt.Errorf("parse created_at %q: %w", r.CreatedAt, err)
		}
		post.CreatedAt = created
	}
	return post, nil
}

// parseTimestamp accepts PostgREST timestamptz output, which may omit the
// colon in the zone offset.
func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999Z0700", "2006-01-02T15:04:05.999999999-07", "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp")
}

func postQuery(query backend.PostQuery) url.Values {
	values := url.Values{
		"select": {"*"},
		"order":  {"created_at.desc,id.desc"},
	}
	if query.PublishedOnly {
		values.Set("draft", "eq.false")
	}
	return values
}

func idFilter(values url.Values, id int64) url.Values {
	if values == nil {
		values = url.Values{}
	}
	values.Set("id", "eq."+strconv.FormatInt(id, 10))
	return values
}

func rowsToPosts(rows []postRow) ([]backend.Post, error) {
	posts := make([]backend.Post, 0, len(rows))
	for _, row := range rows {
		post, err := row.toPost()
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func singlePost(rows []postRow) (backend.Post, error) {
	if len(rows) == 0 {
		return backend.Post{}, backend.ErrNotFound
	}
	return rows[0].toPost()
}

// ListPosts reads the posts table newest first.
func (c *Client) ListPosts(ctx context.Context, accessToken string, query backend.PostQuery) ([]backend.Post, error) {
	var rows []postRow
	if err := c.do(ctx, "supabase.ListPosts", request{
		method: http.MethodGet,
		path:   "/rest/v1/" + postsTable,
		query:  postQuery(query),
		token:  accessToken,
	}, &rows); err != nil {
		return nil, err
	}
	return rowsToPosts(rows)
}

// GetPost reads one row.
func (c *Client) GetPost(ctx context.Context, accessToken string, id int64, query backend.PostQuery) (backend.Post, error) {
	var rows []postRow
	if err := c.do(ctx, "supabase.GetPost", request{
		method: http.MethodGet,
		path:   "/rest/v1/" + postsTable,
		query:  idFilter(postQuery(query), id),
		token:  accessToken,
	}, &rows); err != nil {
		return backend.Post{}, err
	}
	return singlePost(rows)
}

// InsertPost inserts a row and returns it as stored.
func (c *Client) InsertPost(ctx context.Context, accessToken string, input backend.PostInput) (backend.Post, error) {
	if strings.TrimSpace(accessToken) == "" {
		return backend.Post{}, backend.ErrUnauthenticated
	}
	var rows []postRow
	if err := c.do(ctx, "supabase.InsertPost", request{
		method: http.MethodPost,
		path:   "/rest/v1/" + postsTable,
		token:  accessToken,
		body:   []postWrite{{Title: strings.TrimSpace(input.Title), Content: input.Content, Draft: input.Draft}},
		prefer: returnRepresentation,
	}, &rows); err != nil {
		return backend.Post{}, err
	}
	return singlePost(rows)
}

// UpdatePost replaces title, content, and draft in one PATCH.
func (c *Client) UpdatePost(ctx context.Context, accessToken string, id int64, input backend.PostInput) (backend.Post, error) {
	if strings.TrimSpace(accessToken) == "" {
		return backend.Post{}, backend.ErrUnauthenticated
	}
	var rows []postRow
	if err := c.do(ctx, "supabase.UpdatePost", request{
		method: http.MethodPatch,
		path:   "/rest/v1/" + postsTable,
		query:  idFilter(nil, id),
		token:  accessToken,
		body:   postWrite{Title: strings.TrimSpace(input.Title), Content: input.Content, Draft: input.Draft},
		prefer: returnRepresentation,
	}, &rows); err != nil {
		return backend.Post{}, err
	}
	return singlePost(rows)
}

// DeletePost deletes one row. A filter matching nothing is reported as not
// found so callers keep the post listed.
func (c *Client) DeletePost(ctx context.Context, accessToken string, id int64) error {
	if strings.TrimSpace(accessToken) == "" {
		return backend.ErrUnauthenticated
	}
	var rows []postRow
	if err := c.do(ctx, "supabase.DeletePost", request{
		method: http.MethodDelete,
		path:   "/rest/v1/" + postsTable,
		query:  idFilter(nil, id),
		token:  accessToken,
		prefer: returnRepresentation,
	}, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return backend.ErrNotFound
	}
	return nil
}
