package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
)

// PostView is a post prepared for display. HTML is sanitized output of the
// Markdown renderer.
type PostView struct {
	ID    int64
	Title string
	HTML  string
	Date  string
	Draft bool
}

// IdeasPage lists posts newest first.
func IdeasPage(posts []PostView, canEdit bool) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<h1>Ideas</h1>`)
		if canEdit {
			m.raw(`<p><a href="/Write">Write a new post</a></p>`)
		}
		if len(posts) == 0 {
			m.raw(`<p>No posts yet. Stay tuned!</p>`)
			return
		}
		for _, post := range posts {
			m.raw(`<article class="post"><h2><a`)
			m.href(routepath.IdeaPath(post.ID))
			m.raw(`>`)
			m.text(post.Title)
			m.raw(`</a>`)
			draftTag(m, post.Draft)
			m.raw(`</h2>`)
			postMeta(m, post)
			m.raw(`<div class="post-body">`)
			m.raw(post.HTML)
			m.raw(`</div>`)
			if canEdit {
				postActions(m, post.ID)
			}
			m.raw(`</article>`)
		}
	})
}

// PostPage shows one post.
func PostPage(post PostView, canEdit bool) templ.Component {
	return component(func(_ context.Context, m *markup) {
		backLink(m)
		m.raw(`<article class="post"><h1>`)
		m.text(post.Title)
		draftTag(m, post.Draft)
		m.raw(`</h1>`)
		postMeta(m, post)
		m.raw(`<div class="post-body">`)
		m.raw(post.HTML)
		m.raw(`</div>`)
		if canEdit {
			postActions(m, post.ID)
		}
		m.raw(`</article>`)
	})
}

// PostNotFound is shown for a missing or hidden post.
func PostNotFound() templ.Component {
	return component(func(_ context.Context, m *markup) {
		backLink(m)
		m.raw(`<p>Post not found.</p>`)
	})
}

// EditForm is the composer for an existing post.
type EditForm struct {
	ID      int64
	Title   string
	Content string
	Error   string
}

// EditPage renders the edit form.
func EditPage(form EditForm) templ.Component {
	return component(func(_ context.Context, m *markup) {
		backLink(m)
		m.raw(`<h1>Edit post</h1>`)
		formError(m, form.Error)
		m.raw(`<form class="stack" method="post"`)
		m.attr("action", routepath.IdeaEditPath(form.ID))
		m.raw(`>`)
		titleInput(m, form.Title)
		contentInput(m, form.Content)
		m.raw(`<div class="buttons">` +
			`<button type="submit" name="action" value="publish" class="primary">Publish Publicly</button>` +
			`<button type="submit" name="action" value="draft">Save Draft</button>` +
			`<button type="submit" name="action" value="cancel" formnovalidate>Cancel</button>` +
			`</div></form>`)
	})
}

// DeletePage asks for explicit confirmation before a post is removed.
func DeletePage(post PostView) templ.Component {
	return component(func(_ context.Context, m *markup) {
		backLink(m)
		m.raw(`<h1>Delete post</h1><p>Delete “`)
		m.text(post.Title)
		m.raw(`”? This cannot be undone.</p><form method="post"`)
		m.attr("action", routepath.IdeaDeletePath(post.ID))
		m.raw(`><input type="hidden" name="confirm" value="yes"><div class="buttons">` +
			`<button type="submit" class="danger">Delete</button><a`)
		m.href(routepath.IdeaPath(post.ID))
		m.raw(`>Cancel</a></div></form>`)
	})
}

// ComposerForm is the state of the new-post composer.
type ComposerForm struct {
	Title   string
	Content string
	Error   string
}

// WritePage renders the new-post composer. Uploading an image posts the
// whole form to the upload route so the draft text survives the round trip.
func WritePage(form ComposerForm) templ.Component {
	return component(func(_ context.Context, m *markup) {
		m.raw(`<h1>Write</h1>`)
		formError(m, form.Error)
		m.raw(`<form class="stack" method="post" enctype="multipart/form-data"`)
		m.attr("action", routepath.Write)
		m.raw(`>`)
		titleInput(m, form.Title)
		contentInput(m, form.Content)
		m.raw(`<div class="buttons"><input type="file" name="image" accept="image/*">`)
		m.raw(`<button type="submit" formnovalidate`)
		m.attr("formaction", routepath.WriteImage)
		m.raw(`>Upload image</button></div><div class="buttons">` +
			`<button type="submit" name="action" value="draft">Save Draft</button>` +
			`<button type="submit" name="action" value="publish" class="primary">Publish Publicly</button>` +
			`</div></form>`)
	})
}

func backLink(m *markup) {
	m.raw(`<p><a href="/Ideas">← Back to Ideas</a></p>`)
}

func draftTag(m *markup, draft bool) {
	if draft {
		m.raw(`<span class="draft-tag">[Draft]</span>`)
	}
}

func postMeta(m *markup, post PostView) {
	if post.Date == "" {
		return
	}
	m.raw(`<p class="post-meta">`)
	m.text(post.Date)
	m.raw(`</p>`)
}

func postActions(m *markup, id int64) {
	m.raw(`<div class="post-actions"><a`)
	m.href(routepath.IdeaEditPath(id))
	m.raw(`>Edit</a><a`)
	m.href(routepath.IdeaDeletePath(id))
	m.raw(`>Delete</a></div>`)
}

func formError(m *markup, msg string) {
	if msg == "" {
		return
	}
	m.raw(`<div role="alert" class="notice notice-error">`)
	m.text(msg)
	m.raw(`</div>`)
}

func titleInput(m *markup, title string) {
	m.raw(`<label>Title<input type="text" name="title" required maxlength="200"`)
	m.attr("value", title)
	m.raw(`></label>`)
}

func contentInput(m *markup, content string) {
	m.raw(`<label>Content (Markdown)<textarea name="content" required>` + "\n")
	m.text(content)
	m.raw(`</textarea></label>`)
}
