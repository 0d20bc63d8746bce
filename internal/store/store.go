// Package store holds the client-side state containers that mirror slices of
// backend state for a single storefront session.
//
// A Store applies a pure reducer to its data, tracks loading and error flags,
// hands the new data to a persistence adapter after every applied action and
// notifies subscribers. Requests are tagged with a monotonic sequence number
// so that a response older than the latest applied one is discarded instead
// of overwriting newer state.
package store

import (
	"context"
	"errors"
	"sync"

	"optic-storefront/internal/apiclient"

	"go.uber.org/zap"
)

// ErrStaleResponse is reported by Commit and Fail when a newer request has
// already been applied.
var ErrStaleResponse = errors.New("stale response discarded")

// Action is any message understood by a reducer
type Action any

// Reducer computes the next data from the current data and an action.
// It must not mutate its input.
type Reducer[S any] func(state S, action Action) S

// Persister writes and restores the durable snapshot of a store
type Persister[S any] interface {
	Load(ctx context.Context) (S, bool, error)
	Save(ctx context.Context, state S) error
}

// State is what subscribers observe
type State[S any] struct {
	Data      S
	IsLoading bool
	Error     string
}

// Ticket identifies one in-flight request
type Ticket struct {
	Seq uint64
}

// Store is a generic observable state container
type Store[S any] struct {
	name    string
	reduce  Reducer[S]
	persist Persister[S]
	logger  *zap.Logger

	mu        sync.Mutex
	data      S
	errMsg    string
	issued    uint64
	applied   uint64
	retired   uint64 // tickets up to here are ignored entirely, rollbacks included
	listeners map[int]func(State[S])
	nextID    int
}

// Option configures a Store
type Option[S any] func(*Store[S])

// WithPersister attaches a persistence adapter
func WithPersister[S any](p Persister[S]) Option[S] {
	return func(s *Store[S]) {
		s.persist = p
	}
}

// WithLogger sets the logger used for persistence warnings
func WithLogger[S any](logger *zap.Logger) Option[S] {
	return func(s *Store[S]) {
		s.logger = logger
	}
}

// New creates a store named name holding initial
func New[S any](name string, initial S, reduce Reducer[S], opts ...Option[S]) *Store[S] {
	s := &Store[S]{
		name:      name,
		reduce:    reduce,
		data:      initial,
		logger:    zap.NewNop(),
		listeners: make(map[int]func(State[S])),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state
func (s *Store[S]) State() State[S] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Data returns the current data without flags
func (s *Store[S]) Data() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Subscribe registers fn to be called after every transition.
// The returned function removes the subscription.
func (s *Store[S]) Subscribe(fn func(State[S])) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Hydrate replaces the data with the persisted snapshot, if one exists
func (s *Store[S]) Hydrate(ctx context.Context) (bool, error) {
	if s.persist == nil {
		return false, nil
	}
	restored, ok, err := s.persist.Load(ctx)
	if err != nil || !ok {
		return false, err
	}

	s.mu.Lock()
	s.data = restored
	state := s.stateLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, state)
	return true, nil
}

// Dispatch applies a local action immediately, outside the request protocol
func (s *Store[S]) Dispatch(ctx context.Context, action Action) {
	s.mu.Lock()
	s.applyLocked(ctx, action)
	state := s.stateLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, state)
}

// Begin starts a request: the store enters loading, the error is cleared and
// the optional optimistic action is applied.
func (s *Store[S]) Begin(ctx context.Context, optimistic Action) Ticket {
	s.mu.Lock()
	s.issued++
	ticket := Ticket{Seq: s.issued}
	s.errMsg = ""
	if optimistic != nil {
		s.applyLocked(ctx, optimistic)
	}
	state := s.stateLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, state)
	return ticket
}

// Commit applies the success action for ticket. It returns ErrStaleResponse
// without touching state when a newer request was already applied.
func (s *Store[S]) Commit(ctx context.Context, t Ticket, action Action) error {
	s.mu.Lock()
	if t.Seq < s.applied {
		s.mu.Unlock()
		s.logger.Debug("Discarding stale response",
			zap.String("store", s.name),
			zap.Uint64("seq", t.Seq),
			zap.Uint64("applied", s.applied),
		)
		return ErrStaleResponse
	}
	s.applied = t.Seq
	if action != nil {
		s.applyLocked(ctx, action)
	}
	state := s.stateLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, state)
	return nil
}

// Fail records a human-readable message for err and applies the optional
// rollback action. A rollback undoes the request's own optimistic change, so
// it is applied even when the failure is stale; only the error message and
// the loading flag are left to the newer request. Tickets retired by Force or
// Supersede are dropped without rollback.
func (s *Store[S]) Fail(ctx context.Context, t Ticket, err error, rollback Action) error {
	s.mu.Lock()
	if t.Seq <= s.retired {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	stale := t.Seq < s.applied
	if !stale {
		s.applied = t.Seq
		s.errMsg = apiclient.UserMessage(err)
	}
	if rollback != nil {
		s.applyLocked(ctx, rollback)
	}
	if stale && rollback == nil {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	state := s.stateLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, state)
	if stale {
		return ErrStaleResponse
	}
	return nil
}

// Force applies the success action for t even when a newer request was
// applied first, and retires every request started before t. Used for results
// that replace the mirror regardless of what else happened meanwhile, such as
// an emptied cart.
func (s *Store[S]) Force(ctx context.Context, t Ticket, action Action) {
	s.mu.Lock()
	if t.Seq > s.applied {
		s.applied = t.Seq
	}
	if t.Seq > s.retired {
		s.retired = t.Seq
	}
	if action != nil {
		s.applyLocked(ctx, action)
	}
	state := s.stateLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, state)
}

// Supersede applies action and retires every ticket issued so far: responses
// still in flight are discarded as stale when they arrive.
func (s *Store[S]) Supersede(ctx context.Context, action Action) {
	s.mu.Lock()
	s.issued++
	s.applied = s.issued
	s.retired = s.issued
	s.errMsg = ""
	if action != nil {
		s.applyLocked(ctx, action)
	}
	state := s.stateLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, state)
}

// applyLocked runs the reducer and the persistence adapter.
// Persistence failures never fail the action.
func (s *Store[S]) applyLocked(ctx context.Context, action Action) {
	s.data = s.reduce(s.data, action)
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(ctx, s.data); err != nil {
		s.logger.Warn("Failed to persist store snapshot",
			zap.String("store", s.name),
			zap.Error(err),
		)
	}
}

func (s *Store[S]) stateLocked() State[S] {
	return State[S]{
		Data:      s.data,
		IsLoading: s.applied < s.issued,
		Error:     s.errMsg,
	}
}

func (s *Store[S]) listenersLocked() []func(State[S]) {
	if len(s.listeners) == 0 {
		return nil
	}
	out := make([]func(State[S]), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify[S any](listeners []func(State[S]), state State[S]) {
	for _, fn := range listeners {
		fn(state)
	}
}

// Op describes one request following the store protocol
type Op[R any] struct {
	// Optimistic is applied before the call, may be nil
	Optimistic Action
	Call       func(ctx context.Context) (R, error)
	// Success builds the action applied with the result, may be nil
	Success func(R) Action
	// Rollback builds the action applied when the call fails, may be nil.
	// It must only undo this request's own optimistic change.
	Rollback func(err error) Action
	// Force applies Success even when the response is stale
	Force bool
}

// Execute runs op against st: set loading, await the call, then merge the
// result or record the error. The call's error is always returned to the
// caller so it can react; a stale outcome is dropped silently.
func Execute[S, R any](ctx context.Context, st *Store[S], op Op[R]) (R, error) {
	ticket := st.Begin(ctx, op.Optimistic)

	result, err := op.Call(ctx)
	if err != nil {
		var rollback Action
		if op.Rollback != nil {
			rollback = op.Rollback(err)
		}
		_ = st.Fail(ctx, ticket, err, rollback)
		return result, err
	}

	var action Action
	if op.Success != nil {
		action = op.Success(result)
	}
	if op.Force {
		st.Force(ctx, ticket, action)
		return result, nil
	}
	_ = st.Commit(ctx, ticket, action)
	return result, nil
}
