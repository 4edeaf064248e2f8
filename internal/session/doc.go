// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the mutable state of one interactive terminal use
// and tracks the live sessions of the web front end.
//
// # Key Types
//
//   - Session: history, history cursor, pending input and game secret
//   - Manager: registry of open web sessions with idle expiry
//
// # Usage
//
// Browse history the way the arrow keys do:
//
//	s := session.New()
//	s.Record("help")
//	s.Record("projects")
//	line, _ := s.Previous("half-typed") // "projects"
//	line, _ = s.Next()                  // "half-typed"
//
// Expire idle web sessions:
//
//	mgr := session.NewManager(session.DefaultConfig())
//	go mgr.Run(ctx, time.Minute)
package session
