// Package weberror maps post directory failures onto typed site errors and
// renders them inside the layout.
package weberror

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/alexisnsns/pfalexn/internal/platform/logging"
	"github.com/alexisnsns/pfalexn/internal/services/ideas"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	siteerrors "github.com/alexisnsns/pfalexn/internal/services/site/platform/errors"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/pagerender"
	"github.com/alexisnsns/pfalexn/internal/services/site/templates"
)

// FromIdeas classifies err. The message is the copy a person should see.
func FromIdeas(err error) error {
	if err == nil {
		return nil
	}
	var uploadErr *ideas.UploadError
	var remoteErr *ideas.RemoteError
	kind := siteerrors.KindUnknown
	key := ""
	switch {
	case errors.Is(err, ideas.ErrUnauthorized):
		kind = siteerrors.KindUnauthorized
		key = "notice.login_required"
	case errors.Is(err, ideas.ErrNotFound):
		kind = siteerrors.KindNotFound
	case errors.Is(err, ideas.ErrInvalidInput):
		kind = siteerrors.KindInvalidInput
	case errors.As(err, &uploadErr), errors.As(err, &remoteErr):
		kind = siteerrors.KindUnavailable
	}
	return siteerrors.Error{Kind: kind, Key: key, Message: ideas.Notice(err), Err: err}
}

// Status returns the HTTP status for a post directory failure.
func Status(err error) int {
	status := siteerrors.HTTPStatus(FromIdeas(err))
	if status == http.StatusServiceUnavailable {
		return http.StatusBadGateway
	}
	return status
}

// Write renders err as a full page with its public message.
func Write(w http.ResponseWriter, r *http.Request, deps module.Dependencies, err error) {
	typed := FromIdeas(err)
	status := Status(err)
	message := typed.Error()
	if status == http.StatusInternalServerError {
		logging.OrNop(deps.Logger).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	renderErr := pagerender.Write(w, r, deps, pagerender.Page{
		Title:      http.StatusText(status),
		StatusCode: status,
		Body:       templates.ErrorMessage(message),
	})
	if renderErr != nil {
		logging.OrNop(deps.Logger).Debug("render error page", zap.Error(renderErr))
	}
}
