// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package server is the HTTP host the view layer plugs into: a chi router
// with a decoration registry, per-request locals and a replaceable error
// handler.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// HandlerFunc handles a request through its Reply. A returned error is
// passed to the error handler unless a response was already sent.
type HandlerFunc func(rep *Reply) error

// App is the host. Decorations are named values attached once at
// registration: instance decorations are looked up on the App, reply
// decorations are reached from each Reply.
type App struct {
	router chi.Router

	mu          sync.RWMutex
	decorations map[string]any
	replies     map[string]any
	onError     ErrorHandler
}

// New creates an App with the standard middleware chain.
func New() *App {
	r := chi.NewRouter()
	r.Use(Recoverer)
	r.Use(RequestIDs)
	r.Use(Logger)
	r.Use(SecureHeaders)
	r.Use(Locals)

	a := &App{
		router:      r,
		decorations: make(map[string]any),
		replies:     make(map[string]any),
		onError:     DefaultErrorHandler,
	}
	r.Get("/health", a.Wrap(health))
	return a
}

// Router exposes the chi router for middleware and sub-routers.
func (a *App) Router() chi.Router { return a.router }

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Get registers h for GET requests on pattern.
func (a *App) Get(pattern string, h HandlerFunc) {
	a.router.Get(pattern, a.Wrap(h))
}

// Post registers h for POST requests on pattern.
func (a *App) Post(pattern string, h HandlerFunc) {
	a.router.Post(pattern, a.Wrap(h))
}

// Wrap adapts h to net/http.
func (a *App) Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := newReply(a, w, r)
		if err := h(rep); err != nil && !rep.sent {
			rep.Fail(err)
		}
	}
}

// SetErrorHandler replaces the error handler.
func (a *App) SetErrorHandler(h ErrorHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onError = h
}

func (a *App) errorHandler() ErrorHandler {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.onError
}

// Decorate attaches v to the App under name. Names are unique.
func (a *App) Decorate(name string, v any) error {
	return a.decorate(a.decorations, "instance", name, v)
}

// DecorateReply attaches v to every Reply under name. Names are unique.
func (a *App) DecorateReply(name string, v any) error {
	return a.decorate(a.replies, "reply", name, v)
}

func (a *App) decorate(m map[string]any, kind, name string, v any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := m[name]; ok {
		return fmt.Errorf("%s decorator %q already registered", kind, name)
	}
	m[name] = v
	return nil
}

// HasDecorator reports whether an instance decoration exists.
func (a *App) HasDecorator(name string) bool {
	_, ok := a.Decorator(name)
	return ok
}

// HasReplyDecorator reports whether a reply decoration exists.
func (a *App) HasReplyDecorator(name string) bool {
	_, ok := a.replyDecorator(name)
	return ok
}

// Decorator returns an instance decoration.
func (a *App) Decorator(name string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.decorations[name]
	return v, ok
}

func (a *App) replyDecorator(name string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.replies[name]
	return v, ok
}

func health(rep *Reply) error {
	rep.Header().Set("Content-Type", "application/json")
	return rep.Send(`{"status":"ok"}`)
}
