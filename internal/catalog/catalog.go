// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog holds the read-only portfolio content: owner profile,
// project table and theme table.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
)

//go:embed portfolio.toml
var builtinContent []byte

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNoThemes         = errors.New("catalog defines no themes")
	ErrDuplicateProject = errors.New("duplicate project id")
	ErrDuplicateTheme   = errors.New("duplicate theme name")
	ErrInvalidCategory  = errors.New("invalid project category")
)

// =============================================================================
// CONTENT TYPES
// =============================================================================

// Category partitions the project table.
type Category string

const (
	CategoryMain Category = "main"
	CategoryMini Category = "mini"
)

// Label returns the human-readable category label.
func (c Category) Label() string {
	if c == CategoryMain {
		return "Main Project"
	}
	return "Mini-Project"
}

// Owner describes the person the portfolio belongs to.
type Owner struct {
	Handle     string   `toml:"handle"`
	Name       string   `toml:"name"`
	Location   string   `toml:"location"`
	Role       string   `toml:"role"`
	ProfileURL string   `toml:"profile_url"`
	Email      string   `toml:"email"`
	LinkedIn   string   `toml:"linkedin"`
	X          string   `toml:"x"`
	Bio        string   `toml:"bio"`
	Skills     []string `toml:"skills"`
}

// Project is one entry of the project table. ID keeps its original case.
type Project struct {
	ID          string   `toml:"id"`
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Features    []string `toml:"features"`
	TechStack   []string `toml:"tech_stack"`
	RepoURL     string   `toml:"repo_url"`
	Category    Category `toml:"category"`
}

// Theme is one entry of the theme table.
type Theme struct {
	Name       string `toml:"name"`
	Background string `toml:"background"`
	Header     string `toml:"header"`
	Text       string `toml:"text"`
	Prompt     string `toml:"prompt"`
	Cursor     string `toml:"cursor"`
	Highlight  string `toml:"highlight"`
}

// CSSVar is a single custom property written to the document root.
type CSSVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CSSVars returns the theme as ordered CSS custom properties.
func (t Theme) CSSVars() []CSSVar {
	return []CSSVar{
		{Name: "--terminal-bg", Value: t.Background},
		{Name: "--terminal-header-bg", Value: t.Header},
		{Name: "--terminal-text", Value: t.Text},
		{Name: "--terminal-prompt", Value: t.Prompt},
		{Name: "--terminal-cursor", Value: t.Cursor},
		{Name: "--terminal-highlight", Value: t.Highlight},
	}
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is immutable once built and safe for concurrent use.
type Catalog struct {
	owner    Owner
	projects []Project
	themes   []Theme

	projectIndex map[string]int
	themeIndex   map[string]int
}

type document struct {
	Owner    Owner     `toml:"owner"`
	Projects []Project `toml:"projects"`
	Themes   []Theme   `toml:"themes"`
}

var (
	builtinOnce sync.Once
	builtin     *Catalog
	builtinErr  error
)

// Default returns the catalog built from the embedded portfolio content.
func Default() *Catalog {
	builtinOnce.Do(func() {
		builtin, builtinErr = Parse(builtinContent)
	})
	if builtinErr != nil {
		panic(fmt.Sprintf("catalog: embedded content is invalid: %v", builtinErr))
	}
	return builtin
}

// LoadFile builds a catalog from a TOML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from TOML content.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(doc.Owner, doc.Projects, doc.Themes)
}

// New builds a catalog from in-memory tables. Identifiers are unique
// under case folding.
func New(owner Owner, projects []Project, themes []Theme) (*Catalog, error) {
	if len(themes) == 0 {
		return nil, ErrNoThemes
	}

	c := &Catalog{
		owner:        owner,
		projects:     append([]Project(nil), projects...),
		themes:       append([]Theme(nil), themes...),
		projectIndex: make(map[string]int, len(projects)),
		themeIndex:   make(map[string]int, len(themes)),
	}

	for i, p := range c.projects {
		if p.Category != CategoryMain && p.Category != CategoryMini {
			return nil, fmt.Errorf("%w: %q for project %q", ErrInvalidCategory, p.Category, p.ID)
		}
		key := Fold(p.ID)
		if _, dup := c.projectIndex[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProject, p.ID)
		}
		c.projectIndex[key] = i
	}

	for i, t := range c.themes {
		key := Fold(t.Name)
		if _, dup := c.themeIndex[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTheme, t.Name)
		}
		c.themeIndex[key] = i
	}

	return c, nil
}

// Owner returns the owner profile.
func (c *Catalog) Owner() Owner {
	return c.owner
}

// Project looks up a project by identifier, ignoring case.
func (c *Catalog) Project(id string) (Project, bool) {
	i, ok := c.projectIndex[Fold(id)]
	if !ok {
		return Project{}, false
	}
	return c.projects[i], true
}

// ProjectIDs returns every project identifier in table order, original case.
func (c *Catalog) ProjectIDs() []string {
	ids := make([]string, len(c.projects))
	for i, p := range c.projects {
		ids[i] = p.ID
	}
	return ids
}

// ProjectsIn returns the projects of one category sorted by identifier.
func (c *Catalog) ProjectsIn(cat Category) []Project {
	var out []Project
	for _, p := range c.projects {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Theme looks up a theme by name, ignoring case.
func (c *Catalog) Theme(name string) (Theme, bool) {
	i, ok := c.themeIndex[Fold(name)]
	if !ok {
		return Theme{}, false
	}
	return c.themes[i], true
}

// ThemeNames returns every theme name in table order.
func (c *Catalog) ThemeNames() []string {
	names := make([]string, len(c.themes))
	for i, t := range c.themes {
		names[i] = t.Name
	}
	return names
}

// Fold normalizes an identifier for case-insensitive comparison.
// A Caser is stateful, so one is created per call.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
