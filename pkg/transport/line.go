// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNotConnected is returned by Send when there is no open connection.
var ErrNotConnected = errors.New("not connected")

// MaxLineLength caps a received line. Longer lines are cut to this length
// and the rest, up to the next newline, is dropped.
const MaxLineLength = 1024

// Poster runs a function on the owner's goroutine.
type Poster interface {
	Post(fn func()) bool
}

// Handler receives connection events. Its methods are only called through
// the Poster.
type Handler interface {
	OnTransportConnected()
	OnTransportDisconnected()
	OnLineReceived(line []byte)
}

// LineTransport is a line-oriented connection to the switcher.
//
// Every Connect starts a new generation. Events from an older generation
// are discarded when they reach the Poster, so a connection that has been
// replaced or dropped can never report into the current one.
type LineTransport struct {
	dial       DialFunc
	poster     Poster
	handler    Handler
	lineEnding string
	log        zerolog.Logger

	mu     sync.Mutex
	gen    uint64
	conn   Connection
	cancel context.CancelFunc
}

// LineOption configures a LineTransport.
type LineOption func(*LineTransport)

// WithLineEnding sets the terminator appended to sent lines.
func WithLineEnding(ending string) LineOption {
	return func(t *LineTransport) {
		t.lineEnding = ending
	}
}

// WithLogger sets the transport logger.
func WithLogger(log zerolog.Logger) LineOption {
	return func(t *LineTransport) {
		t.log = log
	}
}

// NewLineTransport creates a transport. The handler is usually set later
// with SetHandler, once the session exists.
func NewLineTransport(dial DialFunc, poster Poster, opts ...LineOption) *LineTransport {
	t := &LineTransport{
		dial:       dial,
		poster:     poster,
		lineEnding: "\r\n",
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetHandler sets the event receiver. It must be called before Connect.
func (t *LineTransport) SetHandler(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// Connect starts a connection attempt in the background.
func (t *LineTransport) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handler == nil {
		return errors.New("transport has no handler")
	}
	t.closeLocked()

	t.gen++
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.run(ctx, t.gen)

	return nil
}

// Send writes one line followed by the line ending.
func (t *LineTransport) Send(line string) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}
	_, err := conn.Write([]byte(line + t.lineEnding))
	return err
}

// Disconnect closes the current connection or cancels a pending attempt.
// No events are delivered for it afterwards.
func (t *LineTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.gen++
	return t.closeLocked()
}

func (t *LineTransport) closeLocked() error {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

func (t *LineTransport) run(ctx context.Context, gen uint64) {
	conn, err := t.dial(ctx)
	if err != nil {
		t.log.Warn().Err(err).Uint64("gen", gen).Msg("dial failed")
		t.post(gen, t.handler.OnTransportDisconnected)
		return
	}

	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		conn.Close()
		return
	}
	t.conn = conn
	t.mu.Unlock()

	t.post(gen, t.handler.OnTransportConnected)

	r := bufio.NewReader(conn)
	for {
		line, err := readLine(r)
		if err != nil {
			t.log.Debug().Err(err).Uint64("gen", gen).Msg("read ended")
			break
		}
		t.post(gen, func() { t.handler.OnLineReceived(line) })
	}

	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
		if t.cancel != nil {
			t.cancel()
			t.cancel = nil
		}
	}
	t.mu.Unlock()
	conn.Close()

	t.post(gen, t.handler.OnTransportDisconnected)
}

// post delivers fn through the Poster if gen is still current when it runs.
func (t *LineTransport) post(gen uint64, fn func()) {
	t.poster.Post(func() {
		t.mu.Lock()
		current := gen == t.gen
		t.mu.Unlock()
		if current {
			fn()
		}
	})
}

// readLine returns the next line without its "\n" or "\r\n" terminator.
// A line longer than MaxLineLength is truncated rather than failing the
// read, so it still reaches the decoder as one line. A final line without
// a terminator is returned before io.EOF.
func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		frag, err := r.ReadSlice('\n')
		if room := MaxLineLength - len(line); room > 0 {
			line = append(line, frag[:min(len(frag), room)]...)
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && len(line) > 0:
			return line, nil
		case err != nil:
			return nil, err
		}
		line = bytes.TrimSuffix(line, []byte("\n"))
		return bytes.TrimSuffix(line, []byte("\r")), nil
	}
}
