// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jeranaias/termfolio/internal/commands"
)

// ListingSeparator joins multiple completion matches for display.
const ListingSeparator = "   "

// =============================================================================
// TAB COMPLETION
// =============================================================================

// Completion is the outcome of completing an input line.
type Completion struct {
	// Input is the new input line, unchanged unless exactly one candidate matched
	Input string

	// Matches are the candidates starting with the fragment being completed
	Matches []string
}

// Completed reports whether the input was replaced by a single match.
func (c Completion) Completed() bool {
	return len(c.Matches) == 1
}

// Listing returns the matches joined for display when there is more than
// one, and "" otherwise.
func (c Completion) Listing() string {
	if len(c.Matches) < 2 {
		return ""
	}
	return strings.Join(c.Matches, ListingSeparator)
}

// Complete completes the last token of input. The first token completes
// against command names; later tokens against the command's argument
// candidates. Trailing whitespace starts a new, empty token.
func (i *Interpreter) Complete(input string) Completion {
	tokens := strings.Fields(input)
	trailing := endsInSpace(input)

	var (
		candidates []string
		fragment   string
		base       []string
	)

	if len(tokens) == 0 || (len(tokens) == 1 && !trailing) {
		candidates = i.registry.Names()
		if len(tokens) == 1 {
			fragment = tokens[0]
		}
	} else {
		args := tokens[1:]
		pos := len(args)
		base = tokens
		if !trailing {
			pos = len(args) - 1
			fragment = args[pos]
			base = tokens[:len(tokens)-1]
		}
		candidates = i.argCandidates(tokens[0], pos, args[:pos])
	}

	matches := filterPrefix(candidates, fragment)
	c := Completion{Input: input, Matches: matches}
	if len(matches) == 1 {
		prefix := strings.Join(base, " ")
		if prefix != "" {
			prefix += " "
		}
		c.Input = prefix + matches[0] + " "
	}
	return c
}

// argCandidates returns the candidates for argument pos of the named
// command. Earlier enum arguments must hold one of their values.
func (i *Interpreter) argCandidates(name string, pos int, prior []string) []string {
	cmd, ok := i.registry.Lookup(strings.ToLower(name))
	if !ok {
		return nil
	}

	for j, p := range prior {
		def, ok := argAt(cmd, j)
		if ok && def.Type == commands.ArgTypeEnum && !containsFold(def.Values, p) {
			return nil
		}
	}

	def, ok := argAt(cmd, pos)
	if !ok {
		return nil
	}
	return def.Candidates(i.ctx.Catalog)
}

func argAt(cmd *commands.Command, pos int) (commands.ArgDef, bool) {
	switch {
	case pos < len(cmd.Args):
		return cmd.Args[pos], true
	case len(cmd.Args) > 0 && cmd.Args[len(cmd.Args)-1].Repeats:
		return cmd.Args[len(cmd.Args)-1], true
	default:
		return commands.ArgDef{}, false
	}
}

func filterPrefix(candidates []string, fragment string) []string {
	fragment = strings.ToLower(fragment)
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), fragment) {
			out = append(out, c)
		}
	}
	return out
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func endsInSpace(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}
