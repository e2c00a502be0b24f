package ideas

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the viewer may not perform the operation.
	ErrUnauthorized = errors.New("ideas: unauthorized")
	// ErrNotFound indicates the post does not exist or is hidden from the viewer.
	ErrNotFound = errors.New("ideas: post not found")
	// ErrInvalidInput indicates a missing title or content.
	ErrInvalidInput = errors.New("ideas: title and content are required")
)

// RemoteError wraps a backend failure on a post operation.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// UploadError wraps an object store rejection.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Notice returns the copy shown to a person for err. Backend details stay in
// the logs.
func Notice(err error) string {
	var uploadErr *UploadError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "You must be logged in to do that."
	case errors.Is(err, ErrNotFound):
		return "Post not found."
	case errors.Is(err, ErrInvalidInput):
		return "Title and content are required."
	case errors.As(err, &uploadErr):
		return "Image upload failed."
	default:
		return "Something went wrong. Please try again."
	}
}
