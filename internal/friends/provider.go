// Package friends holds the local user's relationship graph: friends, pending requests
// and blocked users. Seed (demo) records are always present in memory; only records the
// user created are written to the durable store.
package friends

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/friendgraph/internal/kv"
	"github.com/jason-s-yu/friendgraph/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	// ErrRequestNotFound is returned when accepting a request id that is not held.
	ErrRequestNotFound = errors.New("friend request not found")
	// ErrNotIncoming is returned when accepting a request the local user sent.
	ErrNotIncoming = errors.New("friend request is not addressed to the local user")
	// ErrNoProvider is returned by FromContext when no active provider is attached.
	ErrNoProvider = errors.New("friends provider is not available in this scope")
	// ErrClosed is returned by mutations after Close.
	ErrClosed = errors.New("friends provider is closed")
)

// recordOrigin tags where a record came from. Only userRecord entries are persisted.
type recordOrigin uint8

const (
	seedRecord recordOrigin = iota
	userRecord
)

type entry[T any] struct {
	origin recordOrigin
	rec    T
}

// Keys are the durable store keys for the three persisted collections.
type Keys struct {
	Friends  string
	Requests string
	Blocked  string
}

// DefaultKeys match the keys the mobile client has always written.
var DefaultKeys = Keys{
	Friends:  "friends",
	Requests: "friendRequests",
	Blocked:  "blockedUsers",
}

// Snapshot is a point-in-time copy of the provider state.
type Snapshot struct {
	Friends        []models.Friend        `json:"friends"`
	FriendRequests []models.FriendRequest `json:"friendRequests"`
	BlockedUsers   []string               `json:"blockedUsers"`
	Busy           bool                   `json:"busy"`
}

// Provider is the in-memory relationship state for one provider scope.
//
// Mutations are serialized: each one holds writeMu across its in-memory update and
// the store writes that follow, so a second mutation never works from a stale copy.
// The busy flag is advisory for the UI and does not gate anything.
type Provider struct {
	store    kv.Store
	keys     Keys
	log      logrus.FieldLogger
	clock    Clock
	rng      *rand.Rand
	newID    func() string
	onChange func(Snapshot)

	writeMu sync.Mutex

	mu       sync.RWMutex
	friends  []entry[models.Friend]
	requests []entry[models.FriendRequest]
	blocked  []string
	busy     bool
	closed   bool

	seedFriendIDs  map[string]struct{}
	seedRequestIDs map[string]struct{}

	ready chan struct{}
}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Provider) { p.log = l }
}

// WithClock sets the time source used for seed timestamps and new records.
func WithClock(c Clock) Option {
	return func(p *Provider) { p.clock = c }
}

// WithRand sets the random source for placeholder presence and mutual friend counts.
func WithRand(r *rand.Rand) Option {
	return func(p *Provider) { p.rng = r }
}

// WithIDGenerator sets the generator for new request ids. Defaults to uuid.NewString.
func WithIDGenerator(fn func() string) Option {
	return func(p *Provider) { p.newID = fn }
}

// WithKeys overrides the durable store keys.
func WithKeys(k Keys) Option {
	return func(p *Provider) { p.keys = k }
}

// WithOnChange registers a callback invoked with a fresh Snapshot after every state
// change. It runs while the writer lock is held (state locks are released), so it must
// not call back into any mutation; doing so deadlocks.
func WithOnChange(fn func(Snapshot)) Option {
	return func(p *Provider) { p.onChange = fn }
}

// New builds a provider holding the seed data and starts loading persisted records
// from store in the background. Mutations issued before the load finishes wait for it.
func New(ctx context.Context, store kv.Store, opts ...Option) *Provider {
	p := &Provider{
		store: store,
		keys:  DefaultKeys,
		log:   logrus.StandardLogger(),
		clock: systemClock{},
		newID: uuid.NewString,
		ready: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(p.clock.Now().UnixNano()))
	}

	now := p.clock.Now()
	p.seedFriendIDs = make(map[string]struct{})
	for _, f := range seedFriends(now) {
		p.friends = append(p.friends, entry[models.Friend]{origin: seedRecord, rec: f})
		p.seedFriendIDs[f.ID] = struct{}{}
	}
	p.seedRequestIDs = make(map[string]struct{})
	for _, r := range seedRequests(now) {
		p.requests = append(p.requests, entry[models.FriendRequest]{origin: seedRecord, rec: r})
		p.seedRequestIDs[r.ID] = struct{}{}
	}
	p.blocked = []string{}

	// Taken here rather than in the goroutine so no mutation can slip in ahead of load.
	p.writeMu.Lock()
	go func() {
		defer close(p.ready)
		defer p.writeMu.Unlock()
		p.load(ctx)
		p.notify()
	}()

	return p
}

// Ready is closed once the initial load has finished, whether or not it succeeded.
func (p *Provider) Ready() <-chan struct{} {
	return p.ready
}

// WaitReady blocks until the initial load has finished or ctx is done.
func (p *Provider) WaitReady(ctx context.Context) error {
	select {
	case <-p.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the provider scope. The store is not closed.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *Provider) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Busy reports whether a mutation is in progress.
func (p *Provider) Busy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.busy
}

// Friends returns a copy of the friends collection, seed records first.
func (p *Provider) Friends() []models.Friend {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return records(p.friends)
}

// FriendRequests returns a copy of the pending requests collection.
func (p *Provider) FriendRequests() []models.FriendRequest {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return records(p.requests)
}

// Snapshot returns a copy of the whole state.
func (p *Provider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

func (p *Provider) snapshotLocked() Snapshot {
	blocked := make([]string, len(p.blocked))
	copy(blocked, p.blocked)
	return Snapshot{
		Friends:        records(p.friends),
		FriendRequests: records(p.requests),
		BlockedUsers:   blocked,
		Busy:           p.busy,
	}
}

func (p *Provider) notify() {
	if p.onChange == nil {
		return
	}
	p.onChange(p.Snapshot())
}

func (p *Provider) setBusy(b bool) {
	p.mu.Lock()
	p.busy = b
	p.mu.Unlock()
	p.notify()
}

func (p *Provider) now() time.Time {
	return p.clock.Now()
}

func records[T any](entries []entry[T]) []T {
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.rec
	}
	return out
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the provider attached to ctx. It fails with ErrNoProvider when
// none is attached or the attached one has been closed.
func FromContext(ctx context.Context) (*Provider, error) {
	p, ok := ctx.Value(ctxKey{}).(*Provider)
	if !ok || p == nil {
		return nil, ErrNoProvider
	}
	if p.isClosed() {
		return nil, fmt.Errorf("%w: %w", ErrNoProvider, ErrClosed)
	}
	return p, nil
}

// MustFromContext is like FromContext but panics when no active provider is attached.
func MustFromContext(ctx context.Context) *Provider {
	p, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return p
}
