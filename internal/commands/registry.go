// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"sort"

	"github.com/jeranaias/termfolio/internal/catalog"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Handler executes a command. Expected user mistakes are reported in the
// Result text; a returned error means an internal fault.
type Handler func(ctx *Context, args []string) (Result, error)

// Command represents a command that can be executed.
type Command struct {
	// Name is the command name, lower case (e.g., "cd")
	Name string

	// Description is shown in help. "{owner}" is replaced by the owner handle.
	Description string

	// Usage shows argument syntax (e.g., "cd [proj]")
	Usage string

	// Args defines the expected arguments, used for completion
	Args []ArgDef

	// Handler is the function that executes the command
	Handler Handler

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Type determines completion behavior
	Type ArgType

	// Values for enum types
	Values []string

	// Repeats offers the same candidates at every later position too
	Repeats bool
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString    ArgType = iota // Free-form, no candidates
	ArgTypeEnum                     // One of Values
	ArgTypeProject                  // Project identifier
	ArgTypeTheme                    // Theme name
	ArgTypeRunTarget                // "dev" or a project identifier
)

// Candidates returns the completion candidates for the argument.
func (a ArgDef) Candidates(cat *catalog.Catalog) []string {
	switch a.Type {
	case ArgTypeEnum:
		return append([]string(nil), a.Values...)
	case ArgTypeProject:
		return cat.ProjectIDs()
	case ArgTypeTheme:
		return cat.ThemeNames()
	case ArgTypeRunTarget:
		return append([]string{"dev"}, cat.ProjectIDs()...)
	default:
		return nil
	}
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands. It is read-only once built and
// safe for concurrent use.
type Registry struct {
	commands map[string]*Command
	order    []*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]*Command)}
	r.registerBuiltins()
	return r
}

// NewRegistryWith creates a registry holding exactly cmds, in help order.
// It panics on a duplicate name, which is a programming error.
func NewRegistryWith(cmds ...*Command) *Registry {
	r := &Registry{commands: make(map[string]*Command)}
	for _, cmd := range cmds {
		r.register(cmd)
	}
	return r
}

func (r *Registry) register(cmd *Command) {
	key := catalog.Fold(cmd.Name)
	if _, dup := r.commands[key]; dup {
		panic(fmt.Sprintf("commands: duplicate command %q", cmd.Name))
	}
	r.commands[key] = cmd
	r.order = append(r.order, cmd)
}

// Lookup retrieves a command by name, ignoring case.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[catalog.Fold(name)]
	return cmd, ok
}

// Names returns every command name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, cmd := range r.order {
		names = append(names, cmd.Name)
	}
	sort.Strings(names)
	return names
}

// All returns all commands in registration (help) order.
func (r *Registry) All() []*Command {
	return append([]*Command(nil), r.order...)
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.order {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// help describes the others; it is not listed itself
	r.register(&Command{
		Name:        "help",
		Description: "Show available commands",
		Hidden:      true,
		Category:    "General",
		Handler:     r.handleHelp,
	})

	// Profile
	r.register(&Command{
		Name:        "about",
		Description: "Display information about {owner}",
		Category:    "Profile",
		Handler:     HandleAbout,
	})
	r.register(&Command{
		Name:        "skills",
		Description: "List technical skills",
		Category:    "Profile",
		Handler:     HandleSkills,
	})

	// Projects
	r.register(&Command{
		Name:        "projects",
		Description: "List available projects",
		Category:    "Projects",
		Handler:     HandleProjects,
	})
	r.register(&Command{
		Name:        "cd",
		Description: "Show details about a specific project",
		Usage:       "cd [proj]",
		Args: []ArgDef{
			{Name: "proj", Type: ArgTypeProject, Repeats: true},
		},
		Category: "Projects",
		Handler:  HandleCd,
	})

	r.register(&Command{
		Name:        "contact",
		Description: "Display contact information",
		Category:    "Profile",
		Handler:     HandleContact,
	})

	// Terminal
	r.register(&Command{
		Name:        "theme",
		Description: "Change theme",
		Usage:       "theme [theme]",
		Args: []ArgDef{
			{Name: "theme", Type: ArgTypeTheme, Repeats: true},
		},
		Category: "Terminal",
		Handler:  HandleTheme,
	})
	r.register(&Command{
		Name:        "clear",
		Description: "Clear the terminal output",
		Category:    "Terminal",
		Handler:     HandleClear,
	})

	// Game
	r.register(&Command{
		Name:        "game",
		Description: "Start a simple guessing game",
		Category:    "Game",
		Handler:     HandleGame,
	})
	r.register(&Command{
		Name:        "guess",
		Description: "Make a guess in the game",
		Usage:       "guess [num]",
		Args: []ArgDef{
			{Name: "num", Type: ArgTypeString},
		},
		Category: "Game",
		Handler:  HandleGuess,
	})

	// Navigation
	r.register(&Command{
		Name:        "npm",
		Description: "Redirect to {owner}'s GitHub profile (dev) or a project's repo",
		Usage:       "npm run [dev | proj]",
		Args: []ArgDef{
			{Name: "script", Type: ArgTypeEnum, Values: []string{"run"}},
			{Name: "target", Type: ArgTypeRunTarget},
		},
		Category: "Navigation",
		Handler:  HandleNpm,
	})
}
