package write

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alexisnsns/pfalexn/internal/platform/timeouts"
	"github.com/alexisnsns/pfalexn/internal/services/ideas"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/flash"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/httpx"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/pagerender"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/weberror"
	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
	"github.com/alexisnsns/pfalexn/internal/services/site/session"
	"github.com/alexisnsns/pfalexn/internal/services/site/templates"
)

type handlers struct {
	deps module.Dependencies
}

func (h handlers) handleComposer(w http.ResponseWriter, r *http.Request) {
	h.renderComposer(w, r, http.StatusOK, templates.ComposerForm{})
}

func (handlers) handleSlash(w http.ResponseWriter, r *http.Request) {
	httpx.Redirect(w, r, routepath.Write)
}

func (handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	httpx.Redirect(w, r, routepath.Root)
}

// handleCreate saves the composer as a draft or a published post, then
// clears it by sending the browser to the directory.
func (h handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parse(w, r)
	if !ok {
		return
	}
	draft := r.FormValue("action") == string(ideas.ActionDraft)
	viewer := session.ViewerFromContext(r.Context())
	if _, err := h.deps.Ideas.Create(r.Context(), viewer, form.Title, form.Content, draft); err != nil {
		form.Error = h.createNotice(r, err)
		h.renderComposer(w, r, weberror.Status(err), form)
		return
	}
	key := "notice.post_published"
	if draft {
		key = "notice.draft_saved"
	}
	flash.Write(w, r, flash.Success(key), h.deps.Scheme)
	httpx.Redirect(w, r, routepath.Ideas)
}

// handleUpload stores the chosen image and shows the composer again with a
// reference to it appended to the content.
func (h handlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parse(w, r)
	if !ok {
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		form.Error = "Choose an image to upload."
		h.renderComposer(w, r, http.StatusBadRequest, form)
		return
	}
	defer file.Close()

	viewer := session.ViewerFromContext(r.Context())
	content, err := h.deps.Ideas.UploadImage(r.Context(), viewer, ideas.Image{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, form.Content)
	if err != nil {
		form.Error = ideas.Notice(err)
		h.renderComposer(w, r, weberror.Status(err), form)
		return
	}
	form.Content = content
	notice := flash.Success("notice.image_uploaded")
	h.renderComposerWithNotice(w, r, http.StatusOK, form, &notice)
}

func (h handlers) parse(w http.ResponseWriter, r *http.Request) (templates.ComposerForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, timeouts.MaxUploadBytes)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(timeouts.MaxUploadBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		form := templates.ComposerForm{Error: "Invalid form submission."}
		status := http.StatusBadRequest
		if errors.As(err, &tooLarge) {
			form.Error = "That upload is too large."
			status = http.StatusRequestEntityTooLarge
		}
		h.renderComposer(w, r, status, form)
		return templates.ComposerForm{}, false
	}
	return templates.ComposerForm{Title: r.FormValue("title"), Content: r.FormValue("content")}, true
}

// createNotice reports backend failures with the composer's own localized
// wording and every other failure with the directory's copy.
func (h handlers) createNotice(r *http.Request, err error) string {
	var remote *ideas.RemoteError
	if errors.As(err, &remote) {
		return pagerender.NoticeText(r, h.deps, flash.Notice{Kind: flash.KindError, Key: "notice.error_creating_post"})
	}
	return ideas.Notice(err)
}

func (h handlers) renderComposer(w http.ResponseWriter, r *http.Request, status int, form templates.ComposerForm) {
	h.renderComposerWithNotice(w, r, status, form, nil)
}

func (h handlers) renderComposerWithNotice(w http.ResponseWriter, r *http.Request, status int, form templates.ComposerForm, notice *flash.Notice) {
	err := pagerender.Write(w, r, h.deps, pagerender.Page{
		Title:      "Write",
		StatusCode: status,
		Body:       templates.WritePage(form),
		Notice:     notice,
	})
	if err != nil {
		h.deps.Logger.Debug("render composer", zap.Error(err))
	}
}
