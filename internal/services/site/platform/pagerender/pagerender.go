// Package pagerender wraps module content in the site layout.
package pagerender

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/alexisnsns/pfalexn/internal/platform/i18n"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/flash"
	"github.com/alexisnsns/pfalexn/internal/services/site/session"
	"github.com/alexisnsns/pfalexn/internal/services/site/templates"
)

// Page describes one full-page response.
type Page struct {
	Title       string
	Description string
	StatusCode  int
	Body        templ.Component
	// Notice is shown in place of any pending flash notice.
	Notice *flash.Notice
}

// Write renders page inside the layout. A pending flash notice is consumed
// and shown above the body.
func Write(w http.ResponseWriter, r *http.Request, deps module.Dependencies, page Page) error {
	if w == nil {
		return nil
	}
	status := page.StatusCode
	if status <= 0 {
		status = http.StatusOK
	}
	body := page.Body
	if body == nil {
		body = templ.NopComponent
	}
	layout := templates.Layout{
		Title:       page.Title,
		Description: page.Description,
		Lang:        Language(r, deps),
		Email:       session.ViewerFromContext(r.Context()).Email,
	}
	notice, ok := flash.ReadAndClear(w, r, deps.Scheme)
	if page.Notice != nil {
		notice, ok = *page.Notice, true
	}
	if ok {
		layout.Notice = &templates.Notice{Kind: string(notice.Kind), Text: NoticeText(r, deps, notice)}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return templates.Page(layout).Render(templ.WithChildren(requestContext(r), body), w)
}

// Language returns the best supported locale for r as a BCP 47 tag.
func Language(r *http.Request, deps module.Dependencies) string {
	preferred := i18n.PreferredTags(r)
	if deps.Messages == nil {
		if len(preferred) == 0 {
			return "en"
		}
		base, _ := preferred[0].Base()
		return base.String()
	}
	return deps.Messages.Match(preferred...).String()
}

// NoticeText resolves a notice to display copy in the request's language.
func NoticeText(r *http.Request, deps module.Dependencies, notice flash.Notice) string {
	if notice.Text != "" {
		return notice.Text
	}
	if deps.Messages == nil {
		return notice.Key
	}
	tag := deps.Messages.Match(i18n.PreferredTags(r)...)
	text := deps.Messages.Printer(tag).Sprintf(notice.Key)
	if strings.TrimSpace(text) == "" {
		return notice.Key
	}
	return text
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}
