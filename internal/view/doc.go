// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package view is the rendering dispatch layer. A Renderer owns one engine
// Adapter and the Binding it was registered with, and turns a Page plus data
// into an HTML string:
//
//	merge data -> resolve page -> cache/read -> adapter -> layout -> minify
//
// Pages come in three shapes: ByPath (a template file resolved against the
// templates directory), Raw (template source held in memory) and Precompiled
// (a Go function). Adapters switch over the shape exhaustively.
//
// The Renderer exposes a plain form (Render, RenderCallback) usable outside
// a request and two reply-bound forms (ReplyView, ReplyViewAsync) that work on
// a Response provided by the host server.
package view
