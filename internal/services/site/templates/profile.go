package templates

import (
	"context"
	"encoding/json"

	"github.com/a-h/templ"

	"github.com/alexisnsns/pfalexn/internal/services/portfolio/catalog"
)

// ProjectCard is one project on the profile page.
type ProjectCard struct {
	ID         string
	Name       string
	Commentary string
	RepoURL    string
	// Preview is shown immediately when Resolved; otherwise the card shows
	// a loading placeholder until a ReadmeUpdate arrives.
	Preview  string
	Resolved bool
}

// ReadmeUpdate carries one resolved preview to an open profile page.
type ReadmeUpdate struct {
	ID      string
	Preview string
}

// ProfilePage lists the profile copy and project cards, then streams
// README previews from updates as they resolve. The shell is flushed before
// the first update is awaited. A nil updates channel renders cards as-is.
func ProfilePage(profile catalog.Profile, cards []ProjectCard, updates <-chan ReadmeUpdate) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<header class="profile"><h1>`)
		m.text(profile.Name)
		m.raw(`</h1>`)
		if profile.Tagline != "" {
			m.raw(`<p class="tagline">`)
			m.text(profile.Tagline)
			m.raw(`</p>`)
		}
		m.raw(`<div class="profile-links">`)
		for _, link := range profile.Links {
			m.raw(`<a target="_blank" rel="noopener noreferrer"`)
			m.href(link.URL)
			m.raw(`>`)
			m.text(link.Label)
			m.raw(`</a>`)
		}
		if profile.Email != "" {
			m.raw(`<a`)
			m.href("mailto:" + profile.Email)
			m.raw(`>`)
			m.text(profile.Email)
			m.raw(`</a>`)
		}
		if profile.ResumePath != "" {
			m.raw(`<a target="_blank" rel="noopener noreferrer"`)
			m.href(profile.ResumePath)
			m.raw(`>📄 View Resume</a>`)
		}
		m.raw(`</div>`)
		if profile.Bio != "" {
			m.raw(`<p class="bio">`)
			m.text(profile.Bio)
			m.raw(`</p>`)
		}
		if profile.Highlights != "" {
			m.raw(`<p class="highlights">`)
			m.text(profile.Highlights)
			m.raw(`</p>`)
		}
		m.raw(`</header><section class="projects"><h2>Projects</h2>`)
		for _, card := range cards {
			projectCard(m, card)
		}
		m.raw(`</section>`)
		if profile.SourceRepo != "" {
			m.raw(`<footer><a target="_blank" rel="noopener noreferrer"`)
			m.href(profile.SourceRepo)
			m.raw(`>`)
			m.text(profile.Footer)
			m.raw(`</a></footer>`)
		}
		if updates == nil {
			return
		}
		m.flush()
		for update := range updates {
			readmeSlot(m, update)
			m.flush()
		}
	})
}

func projectCard(m *markup, card ProjectCard) {
	m.raw(`<article class="project"><h3><a target="_blank" rel="noopener noreferrer"`)
	m.href(card.RepoURL)
	m.raw(`>`)
	m.text(card.Name)
	m.raw(`</a></h3>`)
	if card.Commentary != "" {
		m.raw(`<p>`)
		m.text(card.Commentary)
		m.raw(`</p>`)
	}
	if card.Resolved {
		readmeBlock(m, card.ID, card.Preview)
	} else {
		readmeBlock(m, card.ID, "Loading...")
	}
	m.raw(`</article>`)
}

func readmeBlock(m *markup, id, preview string) {
	m.raw(`<pre class="readme"`)
	m.attr("id", "readme-"+id)
	m.raw(`>`)
	m.text(preview)
	m.raw(`</pre>`)
}

// readmeSlot writes a template holding the preview and a call that moves it
// into the matching card.
func readmeSlot(m *markup, update ReadmeUpdate) {
	m.raw(`<template`)
	m.attr("data-readme", update.ID)
	m.raw(`>`)
	m.text(update.Preview)
	m.raw(`</template>`)
	id, err := json.Marshal(update.ID)
	if err != nil {
		return
	}
	m.raw(`<script>pfalexnReadme(` + string(id) + `)</script>`)
}
