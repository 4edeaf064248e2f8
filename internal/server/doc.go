// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server serves the terminal portfolio to browsers.
//
// The page is embedded and talks to the server over one WebSocket per
// tab. Each connection owns an interpreter and a session; command output
// is rendered to sanitized HTML and typed out server-side, one step per
// tick.
//
// # Endpoints
//
//   - GET /          - The terminal page
//   - GET /static/   - Page assets
//   - GET /ws        - Terminal session (WebSocket)
//   - GET /health    - Health check
//
// # Protocol
//
// Client messages are JSON objects with a "type":
//
//	{"type":"submit","line":"cd hh25v3"}
//	{"type":"recall","direction":"previous","input":"partial"}
//	{"type":"complete","input":"the"}
//
// The server answers with banner, echo, chunk, done, input, clear, theme,
// navigate and error messages. Every submission ends with done.
//
// # Usage
//
//	srv, err := server.New(server.Options{Catalog: catalog.Default()})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := srv.Start(); err != nil {
//		log.Fatal(err)
//	}
package server
