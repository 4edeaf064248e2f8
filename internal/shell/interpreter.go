// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"fmt"
	"strings"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/commands"
	"github.com/jeranaias/termfolio/internal/session"
	"github.com/jeranaias/termfolio/internal/util"
)

const maxLoggedArgs = 120

// =============================================================================
// INTERPRETER
// =============================================================================

// Interpreter dispatches submitted lines against a registry for one
// session. Like its session it is not safe for concurrent use; construct
// one per interactive use.
type Interpreter struct {
	registry *commands.Registry
	ctx      *commands.Context
}

// New creates an interpreter. ctx.Session and ctx.Catalog must be set;
// a fresh session is created if ctx.Session is nil.
func New(registry *commands.Registry, ctx *commands.Context) *Interpreter {
	if ctx.Session == nil {
		ctx.Session = session.New()
	}
	return &Interpreter{registry: registry, ctx: ctx}
}

// Session returns the interpreter's session.
func (i *Interpreter) Session() *session.Session {
	return i.ctx.Session
}

// Registry returns the command registry.
func (i *Interpreter) Registry() *commands.Registry {
	return i.registry
}

// Banner returns the permanent leading line of the display.
func (i *Interpreter) Banner() string {
	return fmt.Sprintf("Welcome to %s's Terminal Portfolio. Type %s to see available commands.",
		i.ctx.Catalog.Owner().Handle, commands.Code("help"))
}

// StartupTheme returns the theme to apply before the first command.
func (i *Interpreter) StartupTheme() catalog.Theme {
	return commands.StartupTheme(i.ctx.Catalog, i.ctx.Prefs)
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Output is the interpretation of one submitted line.
type Output struct {
	// Echo is the raw submitted line, shown after the prompt
	Echo string

	// Command is the lowercased command token, empty for blank input
	Command string

	// Result is what the display should do
	Result commands.Result
}

// Submit interprets one line. Blank input yields an empty result and
// leaves history untouched. Handler errors and panics are converted to a
// generic failure result and never reach the caller.
func (i *Interpreter) Submit(line string) Output {
	out := Output{Echo: line}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return out
	}

	i.ctx.Session.Record(line)

	name := strings.ToLower(fields[0])
	out.Command = name

	cmd, ok := i.registry.Lookup(name)
	if !ok {
		out.Result = commands.Text(fmt.Sprintf("Command not found: %s. Type %s.",
			commands.Code(name), commands.Code("help")))
		return out
	}

	out.Result = i.dispatch(cmd, name, fields[1:])
	return out
}

// dispatch runs a handler inside the fault boundary.
func (i *Interpreter) dispatch(cmd *commands.Command, name string, args []string) (res commands.Result) {
	defer func() {
		if r := recover(); r != nil {
			i.logf("SHELL | panic in command=%s args=%q: %v", name, logArgs(args), r)
			res = failure(name)
		}
	}()

	res, err := cmd.Handler(i.ctx, args)
	if err != nil {
		i.logf("SHELL | command=%s args=%q failed: %v", name, logArgs(args), err)
		return failure(name)
	}
	return res
}

func failure(name string) commands.Result {
	return commands.Text("Error executing command: " + name)
}

// logArgs bounds what a visitor's arguments add to a log line.
func logArgs(args []string) string {
	return util.TruncateRunes(util.SingleLine(strings.Join(args, " ")), maxLoggedArgs)
}

func (i *Interpreter) logf(format string, args ...interface{}) {
	if i.ctx.Logger != nil {
		i.ctx.Logger.Printf(format, args...)
	}
}

// =============================================================================
// HISTORY RECALL
// =============================================================================

// RecallPrevious returns the previous history entry to show as the input.
// current is the live input, restored by RecallNext after browsing.
// ok is false when there is nothing older to show.
func (i *Interpreter) RecallPrevious(current string) (line string, ok bool) {
	return i.ctx.Session.Previous(current)
}

// RecallNext returns the next history entry, or the saved live input when
// stepping past the newest one. ok is false when already at the live input.
func (i *Interpreter) RecallNext() (line string, ok bool) {
	return i.ctx.Session.Next()
}
