package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
)

// Notice is a one-time message shown above the page content.
type Notice struct {
	Kind string
	Text string
}

// Layout describes the page shell.
type Layout struct {
	Title       string
	Description string
	Lang        string
	Notice      *Notice
	// Email is the signed-in viewer's address, empty when anonymous.
	Email string
}

// Page renders the document shell around the children in ctx.
func Page(layout Layout) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		lang := layout.Lang
		if lang == "" {
			lang = "en"
		}
		m.raw(`<!doctype html><html`)
		m.attr("lang", lang)
		m.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		m.text(layout.Title)
		m.raw(`</title>`)
		if layout.Description != "" {
			m.raw(`<meta name="description"`)
			m.attr("content", layout.Description)
			m.raw(`>`)
		}
		m.raw(`<link rel="stylesheet" href="/static/site.css"><script src="/static/site.js"></script></head><body>`)
		nav(m, layout.Email)
		m.raw(`<main>`)
		if layout.Notice != nil && layout.Notice.Text != "" {
			m.raw(`<div role="status"`)
			m.attr("class", "notice notice-"+layout.Notice.Kind)
			m.raw(`>`)
			m.text(layout.Notice.Text)
			m.raw(`</div>`)
		}
		children := templ.GetChildren(ctx)
		m.render(templ.ClearChildren(ctx), children)
		m.raw(`</main></body></html>`)
	})
}

func nav(m *markup, email string) {
	m.raw(`<nav class="site-nav"><a href="/">Main</a><a href="/Ideas">Ideas</a><span class="spacer"></span>`)
	if email == "" {
		m.raw(`</nav>`)
		return
	}
	m.raw(`<a href="/Write">Write</a><span>`)
	m.text(email)
	m.raw(`</span>`)
	logoutForm(m)
	m.raw(`</nav>`)
}

func logoutForm(m *markup) {
	m.raw(`<form method="post"`)
	m.attr("action", routepath.Logout)
	m.raw(`><button type="submit" class="link-button">Logout</button></form>`)
}

// ErrorMessage is the body of an error page.
func ErrorMessage(message string) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<p role="alert" class="notice notice-error">`)
		m.text(message)
		m.raw(`</p><p><a href="/Ideas">← Back to Ideas</a></p>`)
	})
}
