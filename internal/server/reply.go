// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"viewkit/internal/view"
)

// ViewFunc is the shape of a reply-bound render decoration: it sends the
// page or fails the reply.
type ViewFunc func(rep *Reply, page view.Page, data view.Map, opts *view.CallOptions)

// ViewAsyncFunc is the shape of the awaitable render decoration: it
// returns the page for the handler to send.
type ViewAsyncFunc func(rep *Reply, page view.Page, data view.Map, opts *view.CallOptions) (string, error)

// Reply is the per-request response handle. It implements view.Response.
type Reply struct {
	app    *App
	w      http.ResponseWriter
	r      *http.Request
	status int
	sent   bool
}

var _ view.Response = (*Reply)(nil)

func newReply(app *App, w http.ResponseWriter, r *http.Request) *Reply {
	return &Reply{app: app, w: w, r: r, status: http.StatusOK}
}

// Request returns the underlying request.
func (rep *Reply) Request() *http.Request { return rep.r }

// Context returns the request context.
func (rep *Reply) Context() context.Context { return rep.r.Context() }

// Header returns the response headers.
func (rep *Reply) Header() http.Header { return rep.w.Header() }

// Locals returns the request locals. Outside of the Locals middleware an
// empty map is returned.
func (rep *Reply) Locals() view.Map {
	if m := LocalsFrom(rep.r.Context()); m != nil {
		return m
	}
	return view.Map{}
}

// RoutePath returns the matched route pattern.
func (rep *Reply) RoutePath() string { return routePath(rep.r) }

// Status sets the status code used by Send.
func (rep *Reply) Status(code int) *Reply {
	rep.status = code
	return rep
}

// Sent reports whether a response has been written.
func (rep *Reply) Sent() bool { return rep.sent }

// Send writes body with the current status. A reply is sent at most once.
func (rep *Reply) Send(body string) error {
	if rep.sent {
		return fmt.Errorf("reply already sent for %s", rep.r.URL.Path)
	}
	rep.sent = true
	rep.w.WriteHeader(rep.status)
	_, err := io.WriteString(rep.w, body)
	return err
}

// Fail hands err to the App's error handler.
func (rep *Reply) Fail(err error) {
	if rep.sent {
		return
	}
	rep.sent = true
	rep.app.errorHandler()(rep.w, rep.r, err)
}

// View calls the ViewFunc decoration registered under name.
func (rep *Reply) View(name string, page view.Page, data view.Map, opts *view.CallOptions) error {
	v, ok := rep.app.replyDecorator(name)
	if !ok {
		return fmt.Errorf("no reply decorator %q", name)
	}
	fn, ok := v.(ViewFunc)
	if !ok {
		return fmt.Errorf("reply decorator %q is %T, not a view", name, v)
	}
	fn(rep, page, data, opts)
	return nil
}

// ViewAsync calls the ViewAsyncFunc decoration registered under name.
func (rep *Reply) ViewAsync(name string, page view.Page, data view.Map, opts *view.CallOptions) (string, error) {
	v, ok := rep.app.replyDecorator(name)
	if !ok {
		return "", fmt.Errorf("no reply decorator %q", name)
	}
	fn, ok := v.(ViewAsyncFunc)
	if !ok {
		return "", fmt.Errorf("reply decorator %q is %T, not an async view", name, v)
	}
	return fn(rep, page, data, opts)
}

func routePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
