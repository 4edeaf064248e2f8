// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/prefs"
	"github.com/jeranaias/termfolio/internal/session"
)

// DefaultThemeName is applied when no valid theme has been saved.
const DefaultThemeName = "dark"

var (
	errNoSession = errors.New("command requires a session")
	errNoCatalog = errors.New("command requires a catalog")
)

// =============================================================================
// HELP
// =============================================================================

func (r *Registry) handleHelp(ctx *Context, _ []string) (Result, error) {
	if ctx.Catalog == nil {
		return Result{}, errNoCatalog
	}
	owner := ctx.Catalog.Owner().Handle

	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, cmd := range r.order {
		if cmd.Hidden {
			continue
		}
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		desc := strings.ReplaceAll(cmd.Description, "{owner}", owner)
		if cmd.Name == "theme" {
			desc += ". Available: " + codeList(ctx.Catalog.ThemeNames())
		}
		fmt.Fprintf(&sb, "\n- %s : %s", Code(usage), desc)
	}
	return Text(sb.String()), nil
}

// =============================================================================
// PROFILE
// =============================================================================

// HandleAbout describes the portfolio owner.
func HandleAbout(ctx *Context, _ []string) (Result, error) {
	if ctx.Catalog == nil {
		return Result{}, errNoCatalog
	}
	o := ctx.Catalog.Owner()

	var sb strings.Builder
	fmt.Fprintf(&sb, "## About Me - %s\n\n", o.Handle)
	fmt.Fprintf(&sb, "Name: %s\n\n", o.Name)
	if o.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n\n", o.Location)
	}
	if o.Role != "" {
		fmt.Fprintf(&sb, "Role: %s\n\n", o.Role)
	}
	if o.Bio != "" {
		fmt.Fprintf(&sb, "%s\n\n", o.Bio)
	}
	fmt.Fprintf(&sb, "Find more on my GitHub: %s\n\n", link(o.ProfileURL))
	if o.X != "" || o.LinkedIn != "" {
		sb.WriteString("Follow me on:\n\n")
		if o.X != "" {
			fmt.Fprintf(&sb, "X: %s\n\n", o.X)
		}
		if o.LinkedIn != "" {
			fmt.Fprintf(&sb, "LinkedIn: %s\n\n", o.LinkedIn)
		}
	}
	return Text(strings.TrimRight(sb.String(), "\n")), nil
}

// HandleSkills lists the owner's technical skills.
func HandleSkills(ctx *Context, _ []string) (Result, error) {
	if ctx.Catalog == nil {
		return Result{}, errNoCatalog
	}

	var sb strings.Builder
	sb.WriteString("## Technical Skills\n")
	for _, s := range ctx.Catalog.Owner().Skills {
		fmt.Fprintf(&sb, "\n- %s", s)
	}
	return Text(sb.String()), nil
}

// HandleContact shows the owner's contact details.
func HandleContact(ctx *Context, _ []string) (Result, error) {
	if ctx.Catalog == nil {
		return Result{}, errNoCatalog
	}
	o := ctx.Catalog.Owner()

	var sb strings.Builder
	sb.WriteString("## Contact Information\n\n")
	if o.Email != "" {
		fmt.Fprintf(&sb, "Email: [%s](mailto:%s)\n\n", o.Email, o.Email)
	}
	fmt.Fprintf(&sb, "GitHub: %s\n\n", link(o.ProfileURL))
	if o.LinkedIn != "" {
		fmt.Fprintf(&sb, "LinkedIn: [%s](%s)\n\n", o.LinkedIn, o.LinkedIn)
	}
	sb.WriteString("Feel free to reach out!")
	return Text(sb.String()), nil
}

// =============================================================================
// PROJECTS
// =============================================================================

// HandleProjects lists project identifiers by category.
func HandleProjects(ctx *Context, _ []string) (Result, error) {
	if ctx.Catalog == nil {
		return Result{}, errNoCatalog
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Type %s for details.\n\n", Code("cd [projectname]"))
	writeProjectList(&sb, "Main Projects", ctx.Catalog.ProjectsIn(catalog.CategoryMain))
	sb.WriteString("\n\n---\n\n")
	writeProjectList(&sb, "Mini-Projects", ctx.Catalog.ProjectsIn(catalog.CategoryMini))
	return Text(sb.String()), nil
}

func writeProjectList(sb *strings.Builder, title string, projects []catalog.Project) {
	fmt.Fprintf(sb, "## %s\n", title)
	for _, p := range projects {
		fmt.Fprintf(sb, "\n- %s - %s", Code(p.ID), p.Name)
	}
}

// HandleCd shows the details of one project.
func HandleCd(ctx *Context, args []string) (Result, error) {
	if ctx.Catalog == nil {
		return Result{}, errNoCatalog
	}
	if len(args) == 0 {
		return Text("Usage: cd [projectname]\n\nType " + Code("projects") + "."), nil
	}

	p, ok := ctx.Catalog.Project(args[0])
	if !ok {
		return Text(fmt.Sprintf("Error: Project \"%s\" not found.\n\nType %s.", Code(args[0]), Code("projects"))), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%s)\n\n", p.Name, p.Category.Label())
	sb.WriteString(p.Description)
	if len(p.Features) > 0 {
		sb.WriteString("\n\n### Key Features:\n")
		for _, f := range p.Features {
			fmt.Fprintf(&sb, "\n- %s", f)
		}
	}
	if len(p.TechStack) > 0 {
		fmt.Fprintf(&sb, "\n\n### Tech Stack:\n\n%s", strings.Join(p.TechStack, ", "))
	}
	if p.RepoURL != "" {
		fmt.Fprintf(&sb, "\n\nGitHub: [%s](%s)", p.RepoURL, p.RepoURL)
	}
	return Text(sb.String()), nil
}

// =============================================================================
// THEME
// =============================================================================

// HandleTheme applies and persists a color theme.
func HandleTheme(ctx *Context, args []string) (Result, error) {
	if ctx.Catalog == nil {
		return Result{}, errNoCatalog
	}
	if len(args) == 0 {
		return Text("Usage: theme [themename]\n\nType " + Code("help") + " to see available themes."), nil
	}

	th, ok := ctx.Catalog.Theme(args[0])
	if !ok {
		return Text(fmt.Sprintf("Theme \"%s\" not found. Type %s.", Code(args[0]), Code("help"))), nil
	}

	if ctx.Prefs != nil {
		if err := ctx.Prefs.Set(prefs.ThemeKey, th.Name); err != nil {
			// The display still switches; only persistence is lost.
			ctx.logf("THEME | failed to persist theme=%s: %v", th.Name, err)
		}
	}
	return Result{
		Text:  fmt.Sprintf("Theme switched to %s.", th.Name),
		Theme: &th,
	}, nil
}

// StartupTheme returns the saved theme if it names a known one, otherwise
// the default theme.
func StartupTheme(cat *catalog.Catalog, store prefs.Store) catalog.Theme {
	if store != nil {
		if name, ok, err := store.Get(prefs.ThemeKey); err == nil && ok {
			if th, found := cat.Theme(name); found {
				return th
			}
		}
	}
	if th, ok := cat.Theme(DefaultThemeName); ok {
		return th
	}
	th, _ := cat.Theme(cat.ThemeNames()[0])
	return th
}

// HandleClear resets the display.
func HandleClear(_ *Context, _ []string) (Result, error) {
	return Result{Clear: true}, nil
}

// =============================================================================
// GUESSING GAME
// =============================================================================

// HandleGame starts a new guessing round.
func HandleGame(ctx *Context, _ []string) (Result, error) {
	if ctx.Session == nil {
		return Result{}, errNoSession
	}
	secret := session.GameMin + ctx.intn(session.GameMax-session.GameMin+1)
	if err := ctx.Session.StartGame(secret); err != nil {
		return Result{}, fmt.Errorf("start game: %w", err)
	}
	return Text(fmt.Sprintf("## Guessing Game\n\nI'm thinking of a number between %d and %d. Type %s.",
		session.GameMin, session.GameMax, Code("guess [number]"))), nil
}

// HandleGuess checks a guess against the active round.
func HandleGuess(ctx *Context, args []string) (Result, error) {
	if ctx.Session == nil {
		return Result{}, errNoSession
	}
	secret, playing := ctx.Session.Secret()
	if !playing {
		return Text("Start the game with " + Code("game") + " first."), nil
	}

	invalid := Text(fmt.Sprintf("Enter a valid number (%d-%d).", session.GameMin, session.GameMax))
	if len(args) == 0 {
		return invalid, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < session.GameMin || n > session.GameMax {
		return invalid, nil
	}

	switch {
	case n == secret:
		ctx.Session.EndGame()
		return Text(fmt.Sprintf("Correct! It was %d. Game over. Type %s to play again.", secret, Code("game"))), nil
	case n < secret:
		return Text("Too low!"), nil
	default:
		return Text("Too high!"), nil
	}
}

// =============================================================================
// NAVIGATION
// =============================================================================

// HandleNpm navigates to the owner profile or a project repository.
func HandleNpm(ctx *Context, args []string) (Result, error) {
	if ctx.Catalog == nil {
		return Result{}, errNoCatalog
	}
	const usage = "Usage: npm run [dev | projectname]"
	if len(args) < 1 || args[0] != "run" {
		return Text(usage), nil
	}
	if len(args) < 2 {
		return Text(usage + "\n\nType " + Code("projects") + "."), nil
	}

	target := args[1]
	var url string
	if target == "dev" {
		url = ctx.Catalog.Owner().ProfileURL
	} else {
		p, ok := ctx.Catalog.Project(target)
		if !ok {
			return Text(fmt.Sprintf("Error: Project \"%s\" not found for 'npm run'.\n\nType %s.",
				Code(target), Code("projects"))), nil
		}
		url = p.RepoURL
	}

	return Result{
		Text:     "Executing... Redirecting to " + url,
		Navigate: &Navigation{URL: url, Delay: ctx.NavigationDelay},
	}, nil
}

// =============================================================================
// MARKUP HELPERS
// =============================================================================

// Code formats s as an inline code span, the markup for command names.
func Code(s string) string {
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

func codeList(items []string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = Code(it)
	}
	return strings.Join(parts, ", ")
}

// link renders a URL with its scheme stripped as the label.
func link(url string) string {
	label := strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	return fmt.Sprintf("[%s](%s)", label, url)
}
