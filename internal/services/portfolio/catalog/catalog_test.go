package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	want := []string{"defiPendulum", "scrapernews", "russianrouleth", "pepebot", "sepoliafaucet", "zenLoop"}
	if diff := cmp.Diff(want, c.ProjectIDs()); diff != "" {
		t.Fatalf("ProjectIDs() mismatch (-want +got):\n%s", diff)
	}
	if c.Readme.PreviewChars != 500 {
		t.Fatalf("PreviewChars = %d, want 500", c.Readme.PreviewChars)
	}
	if c.Profile.ResumePath != "/resumeAlexN.pdf" {
		t.Fatalf("ResumePath = %q, want %q", c.Profile.ResumePath, "/resumeAlexN.pdf")
	}
}

func TestCandidatesDefaultOrder(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	want := []string{
		"https://raw.githubusercontent.com/alexisnsns/pepebot/main/README.md",
		"https://raw.githubusercontent.com/alexisnsns/pepebot/main/readme.md",
	}
	if diff := cmp.Diff(want, c.Candidates("pepebot")); diff != "" {
		t.Fatalf("Candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidatesOverridesMatchCaseInsensitively(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	got := c.Candidates("ZENLOOP")
	if len(got) != 4 {
		t.Fatalf("len(Candidates) = %d, want 4: %v", len(got), got)
	}
	if got[2] != "https://raw.githubusercontent.com/alexberthon/zenloop/main/README.md" {
		t.Fatalf("first override = %q", got[2])
	}
	if !strings.Contains(got[0], "/alexisnsns/ZENLOOP/main/README.md") {
		t.Fatalf("default candidate = %q", got[0])
	}
}

func TestRepoURL(t *testing.T) {
	t.Parallel()

	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	p, ok := c.Project("zenloop")
	if !ok {
		t.Fatal("expected zenloop project")
	}
	if got := c.RepoURL(p); got != "https://github.com/alexberthon/zenloop" {
		t.Fatalf("RepoURL = %q", got)
	}
	p, _ = c.Project("scrapernews")
	if got := c.RepoURL(p); got != "https://github.com/alexisnsns/scrapernews" {
		t.Fatalf("RepoURL = %q", got)
	}
	if p.Name() != "scrapernews" {
		t.Fatalf("Name() = %q, want id fallback", p.Name())
	}
}

func TestLoadRejectsInvalidCatalogs(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing owner": "readme:\n  raw_host: https://raw.example.com\n  repo_host: https://repo.example.com\n",
		"duplicate ids": "readme:\n  raw_host: https://raw.example.com\n  repo_host: https://repo.example.com\n  owner: me\nprojects:\n  - id: a\n  - id: A\n",
		"relative override": "readme:\n  raw_host: https://raw.example.com\n  repo_host: https://repo.example.com\n  owner: me\nprojects:\n  - id: a\n    readme_candidates: [\"/README.md\"]\n",
		"unknown field":     "readme:\n  raw_host: https://raw.example.com\n  repo_host: https://repo.example.com\n  owner: me\n  mirror: x\n",
		"slash in id":       "readme:\n  raw_host: https://raw.example.com\n  repo_host: https://repo.example.com\n  owner: me\nprojects:\n  - id: a/b\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := Load(strings.NewReader(raw)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "projects.yaml")
	raw := "readme:\n  raw_host: https://raw.example.com/\n  repo_host: https://repo.example.com\n  owner: me\n  branch: trunk\nprojects:\n  - id: one\n    display_name: Project One\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := c.Candidates("one")[0]; got != "https://raw.example.com/me/one/trunk/README.md" {
		t.Fatalf("candidate = %q", got)
	}
	p, _ := c.Project("one")
	if p.Name() != "Project One" {
		t.Fatalf("Name() = %q", p.Name())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file error")
	}
}
