// Package templates holds the site's page components.
package templates

import (
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// markup accumulates HTML and keeps the first write error.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

// attr writes name="value" with value escaped.
func (m *markup) attr(name, value string) {
	m.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// href writes an href attribute, dropping unsafe schemes.
func (m *markup) href(url string) {
	m.attr("href", string(templ.URL(url)))
}

func (m *markup) render(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

func (m *markup) flush() {
	if m.err != nil {
		return
	}
	if rw, ok := m.w.(http.ResponseWriter); ok {
		_ = http.NewResponseController(rw).Flush()
	}
}

func component(fn func(ctx context.Context, m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		fn(ctx, m)
		return m.err
	})
}

// Raw wraps already-sanitized HTML.
func Raw(html string) templ.Component {
	return templ.Raw(html)
}
