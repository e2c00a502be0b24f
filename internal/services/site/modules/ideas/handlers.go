package ideas

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/alexisnsns/pfalexn/internal/platform/i18n"
	"github.com/alexisnsns/pfalexn/internal/platform/markdown"
	postdir "github.com/alexisnsns/pfalexn/internal/services/ideas"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/flash"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/httpx"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/pagerender"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/weberror"
	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
	"github.com/alexisnsns/pfalexn/internal/services/site/session"
	"github.com/alexisnsns/pfalexn/internal/services/site/templates"
)

const descriptionChars = 160

type handlers struct {
	deps module.Dependencies
}

func (h handlers) handleList(w http.ResponseWriter, r *http.Request) {
	viewer := session.ViewerFromContext(r.Context())
	posts, err := h.deps.Ideas.List(r.Context(), viewer)
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}
	views := make([]templates.PostView, len(posts))
	for i, post := range posts {
		views[i] = h.postView(r, post)
	}
	h.render(w, r, pagerender.Page{
		Title: "Ideas",
		Body:  templates.IdeasPage(views, h.deps.Ideas.CanEdit(viewer)),
	})
}

func (handlers) handleSlash(w http.ResponseWriter, r *http.Request) {
	httpx.Redirect(w, r, routepath.Ideas)
}

func (h handlers) handlePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	viewer := session.ViewerFromContext(r.Context())
	post, err := h.deps.Ideas.Get(r.Context(), viewer, id)
	if errors.Is(err, postdir.ErrNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		weberror.Write(w, r, h.deps, err)
		return
	}
	description, _ := h.deps.Markdown.PlainText(post.Content, descriptionChars)
	h.render(w, r, pagerender.Page{
		Title:       post.Title,
		Description: description,
		Body:        templates.PostPage(h.postView(r, post), h.deps.Ideas.CanEdit(viewer)),
	})
}

func (h handlers) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	viewer := session.ViewerFromContext(r.Context())
	edit, err := h.deps.Ideas.BeginEdit(r.Context(), viewer, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderEdit(w, r, http.StatusOK, templates.EditForm{ID: id, Title: edit.Post.Title, Content: edit.Post.Content})
}

func (h handlers) handleEditSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, weberror.FromIdeas(postdir.ErrInvalidInput))
		return
	}
	action, err := postdir.ParseEditAction(r.PostForm.Get("action"))
	if err != nil {
		h.renderEdit(w, r, http.StatusBadRequest, templates.EditForm{
			ID: id, Title: r.PostForm.Get("title"), Content: r.PostForm.Get("content"), Error: postdir.Notice(err),
		})
		return
	}
	viewer := session.ViewerFromContext(r.Context())
	edit, err := h.deps.Ideas.SubmitEdit(r.Context(), viewer, id, action, r.PostForm.Get("title"), r.PostForm.Get("content"))
	if err != nil {
		if edit.State != postdir.Editing {
			h.fail(w, r, err)
			return
		}
		h.renderEdit(w, r, weberror.Status(err), templates.EditForm{
			ID: id, Title: edit.Post.Title, Content: edit.Post.Content, Error: postdir.Notice(err),
		})
		return
	}
	switch {
	case edit.Outcome == postdir.OutcomeCancelled:
		flash.Write(w, r, flash.Info("notice.edit_cancelled"), h.deps.Scheme)
	case edit.Post.Draft:
		flash.Write(w, r, flash.Success("notice.draft_saved"), h.deps.Scheme)
	default:
		flash.Write(w, r, flash.Success("notice.post_updated"), h.deps.Scheme)
	}
	httpx.Redirect(w, r, routepath.IdeaPath(id))
}

func (h handlers) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	viewer := session.ViewerFromContext(r.Context())
	if !h.deps.Ideas.CanEdit(viewer) {
		h.fail(w, r, postdir.ErrUnauthorized)
		return
	}
	post, err := h.deps.Ideas.Get(r.Context(), viewer, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, pagerender.Page{
		Title: "Delete " + post.Title,
		Body:  templates.DeletePage(h.postView(r, post)),
	})
}

// handleDelete removes a post only when the confirmation field is present;
// a bare POST is sent back to the confirmation page.
func (h handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("confirm") != "yes" {
		httpx.Redirect(w, r, routepath.IdeaDeletePath(id))
		return
	}
	viewer := session.ViewerFromContext(r.Context())
	if err := h.deps.Ideas.Delete(r.Context(), viewer, id); err != nil {
		h.fail(w, r, err)
		return
	}
	flash.Write(w, r, flash.Success("notice.post_deleted"), h.deps.Scheme)
	httpx.Redirect(w, r, routepath.Ideas)
}

func (handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	httpx.Redirect(w, r, routepath.Root)
}

// fail sends anonymous viewers to the login form and renders every other
// failure in place.
func (h handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, postdir.ErrUnauthorized) && !session.Authenticated(r):
		flash.Write(w, r, flash.Info("notice.login_required"), h.deps.Scheme)
		httpx.Redirect(w, r, routepath.LoginPath(r.URL.Path))
	case errors.Is(err, postdir.ErrNotFound):
		h.notFound(w, r)
	default:
		weberror.Write(w, r, h.deps, err)
	}
}

func (h handlers) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pagerender.Page{
		Title:      "Post not found",
		StatusCode: http.StatusNotFound,
		Body:       templates.PostNotFound(),
	})
}

func (h handlers) renderEdit(w http.ResponseWriter, r *http.Request, status int, form templates.EditForm) {
	h.render(w, r, pagerender.Page{
		Title:      "Edit post",
		StatusCode: status,
		Body:       templates.EditPage(form),
	})
}

func (h handlers) render(w http.ResponseWriter, r *http.Request, page pagerender.Page) {
	if err := pagerender.Write(w, r, h.deps, page); err != nil {
		h.deps.Logger.Debug("render page", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (h handlers) postView(r *http.Request, post postdir.Post) templates.PostView {
	return templates.PostView{
		ID:    post.ID,
		Title: post.Title,
		HTML:  renderContent(h.deps.Markdown, h.deps.Logger, post),
		Date:  i18n.FormatDate(post.CreatedAt, i18n.PreferredTags(r)...),
		Draft: post.Draft,
	}
}

func renderContent(md *markdown.Renderer, logger *zap.Logger, post postdir.Post) string {
	html, err := md.Render(post.Content)
	if err != nil {
		logger.Warn("render post markdown", zap.Int64("post_id", post.ID), zap.Error(err))
		return "<p>" + templ.EscapeString(post.Content) + "</p>"
	}
	return html
}

func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
