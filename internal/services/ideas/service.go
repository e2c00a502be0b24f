package ideas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/alexisnsns/pfalexn/internal/platform/logging"
	"github.com/alexisnsns/pfalexn/internal/services/backend"
	"go.uber.org/zap"
)

// Post is a stored post as the directory shows it.
type Post = backend.Post

// Store is the backend surface the directory needs.
type Store interface {
	backend.PostTable
	backend.ObjectStore
}

// Config wires a Service.
type Config struct {
	Store  Store
	Policy Policy
	Logger *zap.Logger
	Now    func() time.Time
}

// Service implements the post directory and composer.
type Service struct {
	store  Store
	policy Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewService builds a Service. A nil policy means AnyAuthenticated.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("ideas store is required")
	}
	s := &Service{
		store:  cfg.Store,
		policy: cfg.Policy,
		logger: logging.OrNop(cfg.Logger),
		now:    cfg.Now,
	}
	if s.policy == nil {
		s.policy = AnyAuthenticated()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// CanEdit reports whether viewer may write posts and see drafts.
func (s *Service) CanEdit(viewer Viewer) bool {
	return s.policy.Allows(viewer)
}

func (s *Service) query(viewer Viewer) backend.PostQuery {
	return backend.PostQuery{PublishedOnly: !s.CanEdit(viewer)}
}

// List returns posts newest first. Drafts are hidden unless the viewer may edit.
func (s *Service) List(ctx context.Context, viewer Viewer) ([]Post, error) {
	posts, err := s.store.ListPosts(ctx, viewer.AccessToken, s.query(viewer))
	if err != nil {
		return nil, s.remote("list posts", err)
	}
	return posts, nil
}

// Get returns one post. A draft is not found unless the viewer may edit.
func (s *Service) Get(ctx context.Context, viewer Viewer, id int64) (Post, error) {
	if id <= 0 {
		return Post{}, ErrNotFound
	}
	post, err := s.store.GetPost(ctx, viewer.AccessToken, id, s.query(viewer))
	if err != nil {
		return Post{}, s.remote("get post", err)
	}
	return post, nil
}

// Create inserts a post.
func (s *Service) Create(ctx context.Context, viewer Viewer, title, content string, draft bool) (Post, error) {
	if !s.CanEdit(viewer) {
		return Post{}, ErrUnauthorized
	}
	input, err := validInput(title, content, draft)
	if err != nil {
		return Post{}, err
	}
	post, err := s.store.InsertPost(ctx, viewer.AccessToken, input)
	if err != nil {
		return Post{}, s.remote("create post", err)
	}
	s.logger.Info("post created", zap.Int64("post_id", post.ID), zap.Bool("draft", post.Draft), zap.String("user_id", viewer.UserID))
	return post, nil
}

// Update replaces title, content, and draft in one backend call.
func (s *Service) Update(ctx context.Context, viewer Viewer, id int64, title, content string, draft bool) (Post, error) {
	if !s.CanEdit(viewer) {
		return Post{}, ErrUnauthorized
	}
	if id <= 0 {
		return Post{}, ErrNotFound
	}
	input, err := validInput(title, content, draft)
	if err != nil {
		return Post{}, err
	}
	post, err := s.store.UpdatePost(ctx, viewer.AccessToken, id, input)
	if err != nil {
		return Post{}, s.remote("update post", err)
	}
	s.logger.Info("post updated", zap.Int64("post_id", post.ID), zap.Bool("draft", post.Draft), zap.String("user_id", viewer.UserID))
	return post, nil
}

// Delete removes a post. Callers must have collected an explicit
// confirmation first.
func (s *Service) Delete(ctx context.Context, viewer Viewer, id int64) error {
	if !s.CanEdit(viewer) {
		return ErrUnauthorized
	}
	if id <= 0 {
		return ErrNotFound
	}
	if err := s.store.DeletePost(ctx, viewer.AccessToken, id); err != nil {
		return s.remote("delete post", err)
	}
	s.logger.Info("post deleted", zap.Int64("post_id", id), zap.String("user_id", viewer.UserID))
	return nil
}

// Image is an uploaded file.
type Image struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadImage stores the image under <userID>/<unix-millis>-<name> and
// returns buffer with one Markdown image reference appended.
func (s *Service) UploadImage(ctx context.Context, viewer Viewer, image Image, buffer string) (string, error) {
	if !s.CanEdit(viewer) {
		return buffer, ErrUnauthorized
	}
	name := cleanFileName(image.Name)
	if name == "" || image.Body == nil {
		return buffer, ErrInvalidInput
	}
	key := fmt.Sprintf("%s/%d-%s", viewer.UserID, s.now().UnixMilli(), name)
	if err := s.store.Upload(ctx, viewer.AccessToken, key, image.ContentType, image.Body); err != nil {
		s.logger.Warn("image upload failed", zap.String("path", key), zap.Error(err))
		if errors.Is(err, backend.ErrUnauthenticated) {
			return buffer, ErrUnauthorized
		}
		return buffer, &UploadError{Path: key, Err: err}
	}
	return AppendImage(buffer, s.store.PublicURL(key)), nil
}

// AppendImage adds one Markdown image reference after buffer, which is kept
// verbatim.
func AppendImage(buffer, url string) string {
	ref := "![image](" + url + ")"
	if buffer == "" {
		return ref
	}
	return buffer + "\n\n" + ref
}

func validInput(title, content string, draft bool) (backend.PostInput, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return backend.PostInput{}, ErrInvalidInput
	}
	return backend.PostInput{Title: title, Content: content, Draft: draft}, nil
}

func cleanFileName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// remote maps backend errors onto the directory's error set.
func (s *Service) remote(op string, err error) error {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, backend.ErrUnauthenticated):
		return ErrUnauthorized
	case errors.Is(err, context.Canceled):
		return err
	}
	s.logger.Error("backend call failed", zap.String("op", op), zap.Error(err))
	return &RemoteError{Op: op, Err: err}
}
