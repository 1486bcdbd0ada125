// Package console manages live subscriptions to the engine's dev consoles.
//
// A Subscription fetches the current state of one console, then follows its
// push stream, keeping only the latest snapshot. Panels read that snapshot and
// never talk to the transport themselves.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lazycamel/lazycamel/internal/models"
)

var (
	// ErrRemoteUnavailable is returned when the initial fetch or the stream setup fails
	ErrRemoteUnavailable = errors.New("console: remote unavailable")

	// ErrStreamInterrupted is reported by Err when a stream ended without being cancelled
	ErrStreamInterrupted = errors.New("console: stream interrupted")

	// errSuperseded marks an activation overtaken by a later Activate or Deactivate
	errSuperseded = errors.New("console: activation superseded")
)

// State is the lifecycle state of a Subscription
type State int

const (
	StateIdle State = iota
	StateFetching
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateFetching:
		return "Fetching"
	case StateStreaming:
		return "Streaming"
	}
	return "Unknown"
}

// Option configures a Subscription
type Option func(*Subscription)

// WithOnChange registers a hook called after every snapshot replacement. It
// runs on a background goroutine and must not block.
func WithOnChange(fn func(Snapshot)) Option {
	return func(s *Subscription) {
		s.onChange = fn
	}
}

// WithLogger sets the logger used for swallowed remote failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *Subscription) {
		s.logger = logger
	}
}

// WithClock overrides the time source stamped on snapshots
func WithClock(now func() time.Time) Option {
	return func(s *Subscription) {
		s.now = now
	}
}

// Subscription owns the lifecycle of one console subscription
type Subscription struct {
	id        models.ConsoleID
	transport Transport
	onChange  func(Snapshot)
	logger    *slog.Logger
	now       func() time.Time

	mu         sync.Mutex
	state      State
	options    models.Options
	snapshot   Snapshot
	stream     Stream
	generation uint64
	lastErr    error

	// updateMu serializes SetOption so wire order matches mutation order
	updateMu sync.Mutex
}

// New creates a subscription for a console. Nothing is sent to the remote side
// until Activate is called.
func New(t Transport, id models.ConsoleID, opts models.Options, o ...Option) *Subscription {
	s := &Subscription{
		id:        id,
		transport: t,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		options:   models.Options{},
		snapshot:  emptySnapshot(),
	}
	for k, v := range opts {
		s.options.Set(k, v)
	}
	for _, fn := range o {
		fn(s)
	}
	s.logger = s.logger.With("console", string(id))
	return s
}

// ID returns the console this subscription follows
func (s *Subscription) ID() models.ConsoleID {
	return s.id
}

// Activate (re)starts the subscription: any live stream is cancelled, the
// console is fetched with the current options and a new stream is opened.
// A failure leaves the previous snapshot in place and the subscription Idle.
func (s *Subscription) Activate(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	old := s.stream
	s.stream = nil
	s.state = StateFetching
	s.lastErr = nil
	opts := s.options.Clone()
	s.mu.Unlock()

	if old != nil {
		old.Cancel()
	}

	res, err := s.transport.Fetch(ctx, s.id, opts)
	if err != nil {
		return s.failActivation(gen, fmt.Errorf("%w: fetch %s: %v", ErrRemoteUnavailable, s.id, err))
	}
	snap, err := DecodeSnapshot(res, s.now())
	if err != nil {
		return s.failActivation(gen, fmt.Errorf("%w: fetch %s: %v", ErrRemoteUnavailable, s.id, err))
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return errSuperseded
	}
	s.snapshot = snap
	opts = s.options.Clone()
	s.mu.Unlock()
	s.notify(snap)

	stream, err := s.transport.Stream(ctx, s.id, opts)
	if err != nil {
		return s.failActivation(gen, fmt.Errorf("%w: stream %s: %v", ErrRemoteUnavailable, s.id, err))
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		stream.Cancel()
		return errSuperseded
	}
	s.stream = stream
	s.state = StateStreaming
	s.mu.Unlock()

	s.logger.Debug("console stream opened")
	go s.pump(gen, stream)
	return nil
}

// IsSuperseded reports whether an Activate error only means a later
// Activate or Deactivate took over while this one was in flight.
func IsSuperseded(err error) bool {
	return errors.Is(err, errSuperseded)
}

func (s *Subscription) failActivation(gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return errSuperseded
	}
	s.state = StateIdle
	s.lastErr = err
	s.logger.Debug("console activation failed", "err", err)
	return err
}

// pump applies pushes from one stream until it ends or is superseded
func (s *Subscription) pump(gen uint64, stream Stream) {
	for res := range stream.Events() {
		snap, err := DecodeSnapshot(res, s.now())
		if err != nil {
			s.logger.Warn("dropping undecodable push", "err", err)
			continue
		}
		s.mu.Lock()
		if gen != s.generation {
			s.mu.Unlock()
			return
		}
		s.snapshot = snap
		s.mu.Unlock()
		s.notify(snap)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.stream != stream {
		return
	}
	s.stream = nil
	s.state = StateIdle
	if cause := stream.Err(); cause != nil {
		s.lastErr = fmt.Errorf("%w: %v", ErrStreamInterrupted, cause)
	} else {
		s.lastErr = ErrStreamInterrupted
	}
	s.logger.Info("console stream ended", "err", s.lastErr)
}

func (s *Subscription) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

// Deactivate cancels the live stream, if any, and tells the remote side the
// console is no longer needed. Remote failures are logged and otherwise
// ignored; the local handle is always released.
func (s *Subscription) Deactivate(ctx context.Context) {
	s.mu.Lock()
	if s.stream == nil && s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	s.generation++
	stream := s.stream
	s.stream = nil
	s.state = StateIdle
	s.mu.Unlock()

	if stream != nil {
		stream.Cancel()
	}
	if err := s.transport.Deactivate(ctx, s.id); err != nil {
		s.logger.Debug("remote deactivate failed", "err", err)
	}
}

// SetOption sets or, for a falsy value, removes an option, then pushes the
// full option set to the remote side. The live stream is not restarted.
// A failed push is logged; the local change is kept either way.
func (s *Subscription) SetOption(ctx context.Context, key string, value any) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	s.SetLocalOption(key, value)
	s.pushOptions(ctx)
}

// SetLocalOption applies an option change without contacting the remote
// side. A later PushOptions sends it.
func (s *Subscription) SetLocalOption(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options.Set(key, value)
}

// PushOptions sends the current option set to the remote side. Pushes are
// serialized and each carries the options as they are when it is sent.
func (s *Subscription) PushOptions(ctx context.Context) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()
	s.pushOptions(ctx)
}

func (s *Subscription) pushOptions(ctx context.Context) {
	opts := s.Options()
	if err := s.transport.UpdateOptions(ctx, s.id, opts); err != nil {
		s.logger.Debug("option update failed", "options", opts, "err", err)
	}
}

// Reset drops the cached snapshot and last error of an Idle subscription so
// the next mount starts from the no-data sentinel. It does nothing while a
// fetch or stream is live.
func (s *Subscription) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return
	}
	s.snapshot = emptySnapshot()
	s.lastErr = nil
}

// CurrentSnapshot returns the latest snapshot, or the empty sentinel when no
// data has arrived yet
func (s *Subscription) CurrentSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Options returns a copy of the local options
func (s *Subscription) Options() models.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options.Clone()
}

// State returns the current lifecycle state
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the last activation or stream failure, nil if none since the
// last Activate
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
