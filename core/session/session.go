// Package session tracks the lifecycle of file selections: each selection
// moves from loading to either succeeded or failed, and only the most recent
// selection may settle the visible state.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ankit-chaubey/metadata-extractor/core"
)

var (
	// ErrUnknownSelection is returned by Wait for ids the session never issued
	// or has since forgotten. Only the current and previous selections, plus
	// any still running, are remembered.
	ErrUnknownSelection = errors.New("unknown selection")
	// ErrSuperseded is returned by Wait when a newer selection replaced the
	// awaited one before it settled.
	ErrSuperseded = errors.New("selection superseded by a newer one")
)

// Status is the phase of a session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// State is an immutable snapshot of a session. Record is set only when
// Status is StatusSucceeded and Error only when it is StatusFailed.
type State struct {
	Status    Status
	Selection string
	FileName  string
	Record    *core.Record
	Error     string
}

// Resolver produces the record for a file.
type Resolver interface {
	Resolve(ctx context.Context, f core.SelectedFile) (*core.Record, error)
}

// Session runs one extraction per selection. Selecting a new file cancels the
// in-flight extraction; a result that arrives for a replaced selection is
// dropped.
type Session struct {
	ID string

	resolver Resolver
	logger   *slog.Logger

	base     context.Context
	stop     context.CancelFunc
	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	waiters  map[string]chan struct{}
	previous string
	lastUsed time.Time
}

// New returns an idle Session.
func New(resolver Resolver, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	base, stop := context.WithCancel(context.Background())
	return &Session{
		ID:       uuid.New().String(),
		resolver: resolver,
		logger:   logger,
		base:     base,
		stop:     stop,
		state:    State{Status: StatusIdle},
		waiters:  make(map[string]chan struct{}),
		lastUsed: time.Now(),
	}
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return s.state
}

// Select starts extracting f and returns the selection id.
func (s *Session) Select(f core.SelectedFile) string {
	id := uuid.New().String()
	ctx, cancel := context.WithCancel(s.base)
	done := make(chan struct{})

	s.mu.Lock()
	if s.cancel != nil {
		s.logger.Debug("cancelling in-flight selection", "session", s.ID, "selection", s.state.Selection)
		s.cancel()
	}
	s.cancel = cancel
	s.previous = s.state.Selection
	s.state = State{Status: StatusLoading, Selection: id, FileName: f.Name}
	s.waiters[id] = done
	s.lastUsed = time.Now()
	s.mu.Unlock()

	s.logger.Info("file selected", "session", s.ID, "selection", id, "file", f.Name, "mime", f.MIMEType)
	go s.run(ctx, cancel, id, f, done)
	return id
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, id string, f core.SelectedFile, done chan struct{}) {
	defer cancel()
	start := time.Now()
	rec, err := s.resolver.Resolve(ctx, f)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		close(done)
		delete(s.waiters, id)
	}()

	if s.state.Selection != id {
		s.logger.Debug("dropping stale result", "session", s.ID, "selection", id)
		return
	}
	s.cancel = nil
	if err != nil {
		s.state = State{Status: StatusFailed, Selection: id, FileName: f.Name, Error: err.Error()}
		s.logger.Warn("extraction failed", "session", s.ID, "selection", id, "file", f.Name, "err", err)
		return
	}
	s.state = State{Status: StatusSucceeded, Selection: id, FileName: f.Name, Record: rec}
	s.logger.Info("extraction finished", "session", s.ID, "selection", id, "fields", rec.Len(), "took", time.Since(start))
}

// Wait blocks until selection id settles and returns the settled state.
func (s *Session) Wait(ctx context.Context, id string) (State, error) {
	s.mu.Lock()
	done, pending := s.waiters[id]
	known := pending || (id != "" && (id == s.state.Selection || id == s.previous))
	s.mu.Unlock()

	if !known {
		return State{}, ErrUnknownSelection
	}
	if pending {
		select {
		case <-done:
		case <-ctx.Done():
			return State{}, ctx.Err()
		}
	}

	st := s.State()
	if st.Selection != id {
		return State{}, ErrSuperseded
	}
	return st, nil
}

// Close cancels any in-flight extraction.
func (s *Session) Close() {
	s.stop()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
