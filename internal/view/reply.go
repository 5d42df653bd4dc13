// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package view

import (
	"context"
	"net/http"
)

// Response is the per-request side of a reply-bound render, implemented by
// the host server.
type Response interface {
	Context() context.Context
	Header() http.Header
	// Locals returns the request's locals, never nil.
	Locals() Map
	// RoutePath is the registered route pattern, for example "/users/{id}".
	RoutePath() string
	// Send writes body as the response.
	Send(body string) error
	// Fail hands err to the host's error handling.
	Fail(err error)
}

// ReplyView renders page and sends it. Errors go to resp.Fail and nothing
// is written to the response by this layer.
func (r *Renderer) ReplyView(resp Response, page Page, data Map, opts *CallOptions) {
	html, err := r.render(resp.Context(), page, data, resp.Locals(), resp.RoutePath(), opts)
	if err != nil {
		resp.Fail(err)
		return
	}
	r.setContentType(resp.Header())
	if err := resp.Send(html); err != nil {
		r.b.logger.Warn("view send failed", "page", Describe(page), "error", err)
	}
}

// ReplyViewAsync renders page for a handler that sends the result itself.
// On success the default content type is applied to the response.
func (r *Renderer) ReplyViewAsync(resp Response, page Page, data Map, opts *CallOptions) (string, error) {
	html, err := r.render(resp.Context(), page, data, resp.Locals(), resp.RoutePath(), opts)
	if err != nil {
		return "", err
	}
	r.setContentType(resp.Header())
	return html, nil
}

// setContentType applies the default content type unless one is set.
func (r *Renderer) setContentType(h http.Header) {
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", r.b.ContentType())
	}
}
