package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexisnsns/pfalexn/internal/services/backend"
)

const postColumns = `id, title, content, draft, created_at`

// ListPosts returns posts newest first. Reads need no token.
func (b *Backend) ListPosts(ctx context.Context, _ string, query backend.PostQuery) ([]backend.Post, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	stmt := `SELECT ` + postColumns + ` FROM posts`
	if query.PublishedOnly {
		stmt += ` WHERE draft = 0`
	}
	stmt += ` ORDER BY created_at DESC, id DESC`

	rows, err := b.sqlDB.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]backend.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// GetPost returns one post.
func (b *Backend) GetPost(ctx context.Context, _ string, id int64, query backend.PostQuery) (backend.Post, error) {
	if err := b.ready(); err != nil {
		return backend.Post{}, err
	}
	stmt := `SELECT ` + postColumns + ` FROM posts WHERE id = ?`
	if query.PublishedOnly {
		stmt += ` AND draft = 0`
	}
	post, err := scanPost(b.sqlDB.QueryRowContext(ctx, stmt, id))
	if errors.Is(err, sql.ErrNoRows) {
		return backend.Post{}, backend.ErrNotFound
	}
	if err != nil {
		return backend.Post{}, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// InsertPost stores a new post stamped with the current time.
func (b *Backend) InsertPost(ctx context.Context, accessToken string, input backend.PostInput) (backend.Post, error) {
	if err := b.ready(); err != nil {
		return backend.Post{}, err
	}
	if _, err := b.GetUser(ctx, accessToken); err != nil {
		return backend.Post{}, err
	}
	post := backend.Post{
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		Draft:     input.Draft,
		CreatedAt: fromMillis(toMillis(b.now())),
	}
	res, err := b.sqlDB.ExecContext(ctx,
		`INSERT INTO posts (title, content, draft, created_at) VALUES (?, ?, ?, ?)`,
		post.Title, post.Content, boolToInt(post.Draft), toMillis(post.CreatedAt),
	)
	if err != nil {
		return backend.Post{}, fmt.Errorf("insert post: %w", err)
	}
	post.ID, err = res.LastInsertId()
	if err != nil {
		return backend.Post{}, fmt.Errorf("insert post id: %w", err)
	}
	return post, nil
}

// UpdatePost replaces title, content, and draft in one statement.
func (b *Backend) UpdatePost(ctx context.Context, accessToken string, id int64, input backend.PostInput) (backend.Post, error) {
	if err := b.ready(); err != nil {
		return backend.Post{}, err
	}
	if _, err := b.GetUser(ctx, accessToken); err != nil {
		return backend.Post{}, err
	}
	post, err := scanPost(b.sqlDB.QueryRowContext(ctx,
		`UPDATE posts SET title = ?, content = ?, draft = ? WHERE id = ? RETURNING `+postColumns,
		strings.TrimSpace(input.Title), input.Content, boolToInt(input.Draft), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return backend.Post{}, backend.ErrNotFound
	}
	if err != nil {
		return backend.Post{}, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// DeletePost removes a post.
func (b *Backend) DeletePost(ctx context.Context, accessToken string, id int64) error {
	if err := b.ready(); err != nil {
		return err
	}
	if _, err := b.GetUser(ctx, accessToken); err != nil {
		return err
	}
	res, err := b.sqlDB.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows: %w", err)
	}
	if n == 0 {
		return backend.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (backend.Post, error) {
	var post backend.Post
	var draft int64
	var createdAt int64
	if err := row.Scan(&post.ID, &post.Title, &post.Content, &draft, &createdAt); err != nil {
		return backend.Post{}, err
	}
	post.Draft = draft != 0
	post.CreatedAt = fromMillis(createdAt)
	return post, nil
}
