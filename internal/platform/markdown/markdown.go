// Package markdown renders post and README Markdown to sanitized HTML.
package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"
)

// Renderer converts Markdown into HTML that is safe to embed in a page.
// Raw HTML in the source is dropped by goldmark and the output is passed
// through a UGC sanitizer so links and images cannot carry scripts.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New builds a Renderer with GitHub-flavored extensions enabled.
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: policy,
	}
}

// Render returns sanitized HTML for src.
func (r *Renderer) Render(src string) (string, error) {
	if r == nil {
		return "", fmt.Errorf("markdown renderer is nil")
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// PlainText renders src and returns its visible text with whitespace
// collapsed, truncated to at most limit runes. A limit <= 0 means no limit.
func (r *Renderer) PlainText(src string, limit int) (string, error) {
	rendered, err := r.Render(src)
	if err != nil {
		return "", err
	}
	text, err := visibleText(strings.NewReader(rendered))
	if err != nil {
		return "", err
	}
	return Truncate(text, limit), nil
}

func visibleText(r io.Reader) (string, error) {
	tokenizer := html.NewTokenizer(r)
	var b strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return "", fmt.Errorf("tokenize html: %w", err)
			}
			return strings.Join(strings.Fields(b.String()), " "), nil
		case html.TextToken:
			b.Write(tokenizer.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

// Truncate cuts s to at most limit runes. A limit <= 0 returns s unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
