// Package catalog loads the declarative portfolio description: the static
// profile copy and the project list with per-project README locations.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed projects.yaml
var defaultCatalog []byte

const (
	defaultBranch       = "main"
	defaultPreviewChars = 500
)

// Link is one outbound profile link.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Profile is the static biographical copy shown on the home page.
type Profile struct {
	Name       string `yaml:"name"`
	Tagline    string `yaml:"tagline"`
	Bio        string `yaml:"bio"`
	Highlights string `yaml:"highlights"`
	Email      string `yaml:"email"`
	ResumePath string `yaml:"resume_path"`
	SourceRepo string `yaml:"source_repo"`
	Footer     string `yaml:"footer"`
	Links      []Link `yaml:"links"`
}

// ReadmeSource describes where project READMEs live by default.
type ReadmeSource struct {
	RawHost      string `yaml:"raw_host"`
	RepoHost     string `yaml:"repo_host"`
	Owner        string `yaml:"owner"`
	Branch       string `yaml:"branch"`
	PreviewChars int    `yaml:"preview_chars"`
}

// Project is one declared portfolio entry.
type Project struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
	Commentary  string `yaml:"commentary"`
	RepoURL     string `yaml:"repo_url"`
	// ReadmeCandidates are probed after the default locations, in order.
	ReadmeCandidates []string `yaml:"readme_candidates"`
}

// Name returns the label shown for the project.
func (p Project) Name() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return p.ID
}

// Catalog is the validated portfolio description.
type Catalog struct {
	Profile  Profile      `yaml:"profile"`
	Readme   ReadmeSource `yaml:"readme"`
	Projects []Project    `yaml:"projects"`

	byKey map[string]int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile reads a catalog from path, or the embedded default when path is empty.
func LoadFile(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	if r == nil {
		return nil, errors.New("catalog reader is required")
	}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var c Catalog
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) normalize() error {
	c.Readme.RawHost = strings.TrimRight(strings.TrimSpace(c.Readme.RawHost), "/")
	c.Readme.RepoHost = strings.TrimRight(strings.TrimSpace(c.Readme.RepoHost), "/")
	c.Readme.Owner = strings.TrimSpace(c.Readme.Owner)
	c.Readme.Branch = strings.TrimSpace(c.Readme.Branch)
	if c.Readme.Branch == "" {
		c.Readme.Branch = defaultBranch
	}
	if c.Readme.PreviewChars <= 0 {
		c.Readme.PreviewChars = defaultPreviewChars
	}
	if c.Readme.Owner == "" {
		return errors.New("catalog readme.owner is required")
	}
	if err := validateAbsoluteURL("readme.raw_host", c.Readme.RawHost); err != nil {
		return err
	}
	if err := validateAbsoluteURL("readme.repo_host", c.Readme.RepoHost); err != nil {
		return err
	}

	c.byKey = make(map[string]int, len(c.Projects))
	for i := range c.Projects {
		p := &c.Projects[i]
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return fmt.Errorf("catalog project %d: id is required", i)
		}
		if strings.ContainsAny(p.ID, "/?#") {
			return fmt.Errorf("catalog project %q: id must be a bare repository name", p.ID)
		}
		key := strings.ToLower(p.ID)
		if prev, ok := c.byKey[key]; ok {
			return fmt.Errorf("catalog project %q duplicates %q", p.ID, c.Projects[prev].ID)
		}
		c.byKey[key] = i
		for j, candidate := range p.ReadmeCandidates {
			candidate = strings.TrimSpace(candidate)
			if err := validateAbsoluteURL(fmt.Sprintf("project %q readme_candidates[%d]", p.ID, j), candidate); err != nil {
				return err
			}
			p.ReadmeCandidates[j] = candidate
		}
		if p.RepoURL != "" {
			if err := validateAbsoluteURL(fmt.Sprintf("project %q repo_url", p.ID), p.RepoURL); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateAbsoluteURL(field string, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("catalog %s must be an absolute http(s) URL, got %q", field, raw)
	}
	return nil
}

// Project looks up a project by identifier, ignoring case.
func (c *Catalog) Project(id string) (Project, bool) {
	if c == nil {
		return Project{}, false
	}
	idx, ok := c.byKey[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Project{}, false
	}
	return c.Projects[idx], true
}

// ProjectIDs returns the declared identifiers in catalog order.
func (c *Catalog) ProjectIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.Projects))
	for _, p := range c.Projects {
		ids = append(ids, p.ID)
	}
	return ids
}

// Candidates returns the ordered README locations to probe for id: the two
// default paths under the configured owner, then the project's overrides.
// Unknown identifiers still get the defaults.
func (c *Catalog) Candidates(id string) []string {
	if c == nil {
		return nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	base := fmt.Sprintf("%s/%s/%s/%s/", c.Readme.RawHost, url.PathEscape(c.Readme.Owner), url.PathEscape(id), url.PathEscape(c.Readme.Branch))
	candidates := []string{base + "README.md", base + "readme.md"}
	if p, ok := c.Project(id); ok {
		candidates = append(candidates, p.ReadmeCandidates...)
	}
	return candidates
}

// RepoURL returns the repository link for a project.
func (c *Catalog) RepoURL(p Project) string {
	if p.RepoURL != "" {
		return p.RepoURL
	}
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", c.Readme.RepoHost, url.PathEscape(c.Readme.Owner), url.PathEscape(p.ID))
}
