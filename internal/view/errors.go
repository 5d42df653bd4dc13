// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package view

import (
	"errors"
	"fmt"
)

// ErrConfig is wrapped by every configuration error. Configuration errors
// abort registration; ErrLayoutConflict is the one raised per render.
var ErrConfig = errors.New("view: invalid configuration")

var (
	ErrMissingEngine     = fmt.Errorf("%w: missing engine", ErrConfig)
	ErrUnsupportedEngine = fmt.Errorf("%w: unsupported engine", ErrConfig)
	ErrTooManyEngines    = fmt.Errorf("%w: exactly one engine must be configured", ErrConfig)
	ErrLayoutUnsupported = fmt.Errorf("%w: layout is not supported by this engine", ErrConfig)
	ErrLayoutConflict    = fmt.Errorf("%w: layout defined globally and for this call", ErrConfig)
	ErrPropertyConflict  = fmt.Errorf("%w: property names conflict", ErrConfig)
	ErrCharset           = fmt.Errorf("%w: unknown charset", ErrConfig)
)

// Request-scoped errors.
var (
	ErrMissingPage      = errors.New("view: missing page")
	ErrUnknownPageShape = errors.New("view: unknown page shape")
	ErrUnsupportedPage  = errors.New("view: page shape not supported by engine")
	ErrLayoutNotFound   = errors.New("view: unable to access layout")
	ErrMissingPartial   = errors.New("view: unable to load partial")
)
