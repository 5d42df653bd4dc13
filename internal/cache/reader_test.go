// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyLoader blocks every read until release is closed and counts calls.
type spyLoader struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	body    []byte
	err     error
}

func newSpyLoader(body string, err error) *spyLoader {
	return &spyLoader{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
		body:    []byte(body),
		err:     err,
	}
}

func (s *spyLoader) ReadFile(_ context.Context, _ string) ([]byte, error) {
	s.calls.Add(1)
	s.started <- struct{}{}
	<-s.release
	return s.body, s.err
}

func (s *spyLoader) Exists(string) bool { return true }

// readConcurrently starts n reads of path and waits until the first one
// reached the loader, so the rest join it.
func readConcurrently(t *testing.T, r *Reader, spy *spyLoader, path string, n int) ([]string, []error) {
	t.Helper()
	bodies := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		bodies[0], errs[0] = r.ReadOnce(context.Background(), path)
	}()
	<-spy.started

	for i := 1; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bodies[i], errs[i] = r.ReadOnce(context.Background(), path)
		}(i)
	}
	// Let the followers reach the group before releasing the read.
	time.Sleep(50 * time.Millisecond)
	close(spy.release)
	wg.Wait()
	return bodies, errs
}

func TestReadOnceSharesInFlightRead(t *testing.T) {
	spy := newSpyLoader("<p>hi</p>", nil)
	r := NewReader(spy, nil)

	bodies, errs := readConcurrently(t, r, spy, "views/index.html", 8)

	assert.Equal(t, int32(1), spy.calls.Load())
	for i := range bodies {
		require.NoError(t, errs[i])
		assert.Equal(t, "<p>hi</p>", bodies[i])
	}
}

func TestReadOnceSharesFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	spy := newSpyLoader("", boom)
	r := NewReader(spy, nil)

	_, errs := readConcurrently(t, r, spy, "views/index.html", 5)

	assert.Equal(t, int32(1), spy.calls.Load())
	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
}

func TestReadOnceForgetsFinishedReads(t *testing.T) {
	spy := newSpyLoader("a", nil)
	close(spy.release)
	r := NewReader(spy, nil)

	for i := 0; i < 3; i++ {
		body, err := r.ReadOnce(context.Background(), "a.html")
		require.NoError(t, err)
		assert.Equal(t, "a", body)
	}
	assert.Equal(t, int32(3), spy.calls.Load())
	assert.Same(t, spy, r.Loader())
}

// ctxLoader fails reads whose context is done, like a database source.
type ctxLoader struct{}

func (ctxLoader) ReadFile(ctx context.Context, _ string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte("ok"), nil
}

func (ctxLoader) Exists(string) bool { return true }

func TestReadOnceIgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body, err := NewReader(ctxLoader{}, nil).ReadOnce(ctx, "views/index.html")
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
}

func TestReadOnceLogsThroughReaderLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := NewReader(ctxLoader{}, logger).ReadOnce(context.Background(), "views/index.html")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "template read")
	assert.Contains(t, buf.String(), "views/index.html")
}
