// Package content loads the profile, projects and posts shown by the shell and
// the site pages.
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("content not found")

//go:embed defaults
var defaults embed.FS

type Social struct {
	Name   string `toml:"name"`
	URL    string `toml:"url"`
	NewTab bool   `toml:"new_tab"`
	Note   string `toml:"note"`
}

type Experience struct {
	Company    string   `toml:"company"`
	Role       string   `toml:"role"`
	Period     string   `toml:"period"`
	Location   string   `toml:"location"`
	Highlights []string `toml:"highlights"`
}

type Education struct {
	Degree      string   `toml:"degree"`
	Institution string   `toml:"institution"`
	Period      string   `toml:"period"`
	Highlights  []string `toml:"highlights"`
}

type Profile struct {
	Name       string       `toml:"name"`
	Title      string       `toml:"title"`
	Tagline    string       `toml:"tagline"`
	Email      string       `toml:"email"`
	Location   string       `toml:"location"`
	About      string       `toml:"about"`
	Skills     []string     `toml:"skills"`
	Socials    []Social     `toml:"socials"`
	Experience []Experience `toml:"experience"`
	Education  []Education  `toml:"education"`
}

// Entry is a post or project: front matter plus the markdown body.
type Entry struct {
	Slug        string
	Title       string
	Description string
	Date        time.Time
	Tags        []string
	Stack       []string
	Repo        string
	Body        string
}

// Paragraphs splits the body on blank lines.
func (e Entry) Paragraphs() []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(e.Body, "\r\n", "\n"), "\n\n") {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type Site struct {
	Profile  Profile
	Projects []Entry
	Posts    []Entry
}

type frontMatter struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Date        time.Time `yaml:"date"`
	Tags        []string  `yaml:"tags"`
	Stack       []string  `yaml:"stack"`
	Repo        string    `yaml:"repo"`
}

// Load reads content from dir. An empty dir uses the bundled defaults.
func Load(dir string) (*Site, error) {
	if dir == "" {
		sub, err := fs.Sub(defaults, "defaults")
		if err != nil {
			return nil, fmt.Errorf("open bundled content: %w", err)
		}
		return LoadFS(sub)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads profile.toml, projects/*.md and posts/*.md from fsys.
func LoadFS(fsys fs.FS) (*Site, error) {
	raw, err := fs.ReadFile(fsys, "profile.toml")
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var profile Profile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	profile.About = strings.TrimSpace(profile.About)

	projects, err := loadEntries(fsys, "projects")
	if err != nil {
		return nil, err
	}
	posts, err := loadEntries(fsys, "posts")
	if err != nil {
		return nil, err
	}

	return &Site{Profile: profile, Projects: projects, Posts: posts}, nil
}

func loadEntries(fsys fs.FS, dir string) ([]Entry, error) {
	matches, err := fs.Glob(fsys, dir+"/*.md")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(matches))
	for _, name := range matches {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		entry, err := parseEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		entry.Slug = strings.TrimSuffix(path.Base(name), ".md")
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

const separator = "---\n"

func parseEntry(raw []byte) (Entry, error) {
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	content := string(raw)
	if !strings.HasPrefix(content, separator) {
		return Entry{Body: content}, nil
	}
	rest := strings.TrimPrefix(content, separator)
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return Entry{}, fmt.Errorf("invalid frontmatter: missing closing separator")
	}

	var meta frontMatter
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return Entry{}, fmt.Errorf("unmarshal frontmatter: %w", err)
	}
	return Entry{
		Title:       meta.Title,
		Description: meta.Description,
		Date:        meta.Date,
		Tags:        meta.Tags,
		Stack:       meta.Stack,
		Repo:        meta.Repo,
		Body:        strings.TrimSpace(rest[idx+len("\n---\n"):]),
	}, nil
}

func (s *Site) Post(slug string) (Entry, error) {
	return find(s.Posts, slug)
}

func (s *Site) Project(slug string) (Entry, error) {
	return find(s.Projects, slug)
}

// SearchPosts filters posts whose title or description contains term.
func (s *Site) SearchPosts(term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return s.Posts
	}
	var out []Entry
	for _, p := range s.Posts {
		if strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}

func find(entries []Entry, slug string) (Entry, error) {
	for _, e := range entries {
		if e.Slug == slug {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%q: %w", slug, ErrNotFound)
}
