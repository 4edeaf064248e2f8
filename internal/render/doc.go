// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns command output, which is Markdown, into what the
// front ends display, and splits it into typewriter animation steps.
//
// Terminal front ends use Terminal (glamour) and ANSIFrames. The browser
// front end uses HTML (goldmark, sanitized by bluemonday) and HTMLSteps,
// which never splits a tag or character entity across steps.
package render
