package friends

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jason-s-yu/friendgraph/internal/kv"
	"github.com/jason-s-yu/friendgraph/internal/models"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

// fakeStore wraps the memory backend with injectable failures and an optional gate
// that holds every Set until released.
type fakeStore struct {
	*kv.Memory

	mu      sync.Mutex
	failGet map[string]error
	failSet map[string]error
	sets    []string
	gate    chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		Memory:  kv.NewMemory(),
		failGet: make(map[string]error),
		failSet: make(map[string]error),
	}
}

func (s *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	err := s.failGet[key]
	s.mu.Unlock()
	if err != nil {
		return "", false, err
	}
	return s.Memory.Get(ctx, key)
}

func (s *fakeStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	err := s.failSet[key]
	gate := s.gate
	s.sets = append(s.sets, key)
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}
	return s.Memory.Set(ctx, key, value)
}

func (s *fakeStore) put(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, s.Memory.Set(context.Background(), key, value))
}

func (s *fakeStore) value(t *testing.T, key string) string {
	t.Helper()
	v, ok, err := s.Memory.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok, "expected key %q to be written", key)
	return v
}

func (s *fakeStore) setKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sets))
	copy(out, s.sets)
	return out
}

// newTestProvider builds a provider with a fixed clock, a seeded random source and
// sequential request ids, and waits for the initial load.
func newTestProvider(t *testing.T, store kv.Store, opts ...Option) (*Provider, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	n := 0
	base := []Option{
		WithLogger(logger),
		WithClock(ClockFunc(func() time.Time { return fixedNow })),
		WithRand(rand.New(rand.NewSource(1))),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("req-%d", n)
		}),
	}
	p := New(context.Background(), store, append(base, opts...)...)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.WaitReady(ctx))
	return p, hook
}

func friendIDs(fs []models.Friend) []string {
	ids := make([]string, len(fs))
	for i, f := range fs {
		ids[i] = f.ID
	}
	return ids
}

func requestIDs(rs []models.FriendRequest) []string {
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.ID
	}
	return ids
}

func TestNewStartsFromSeed(t *testing.T) {
	p, _ := newTestProvider(t, newFakeStore())

	assert.Equal(t, []string{"1", "2", "3", "4"}, friendIDs(p.Friends()))
	assert.Equal(t, []string{"1", "2"}, requestIDs(p.FriendRequests()))
	assert.Empty(t, p.BlockedUsers())
	assert.False(t, p.Busy())
	assert.Equal(t, fixedNow.Add(-2*time.Hour), p.Friends()[1].LastSeen)
}

func TestLoadMergesUserRecordsAfterSeed(t *testing.T) {
	store := newFakeStore()
	store.put(t, "friends", `[{"id":"99","name":"Zaid Omar","email":"zaid@example.com","phone":"1","isOnline":false,"lastSeen":"2026-10-01T10:00:00Z","mutualFriends":1}]`)
	store.put(t, "friendRequests", `[{"id":"r9","fromUserId":"current-user","fromUserName":"أنت","toUserId":"77","status":"pending","createdAt":"2026-10-01T10:00:00Z"}]`)
	store.put(t, "blockedUsers", `["13","14"]`)

	p, _ := newTestProvider(t, store)

	assert.Equal(t, []string{"1", "2", "3", "4", "99"}, friendIDs(p.Friends()))
	assert.Equal(t, 5, p.FriendsCount())
	assert.Equal(t, []string{"1", "2", "r9"}, requestIDs(p.FriendRequests()))
	assert.Equal(t, []string{"13", "14"}, p.BlockedUsers())
}

func TestLoadTreatsEmptySequenceLikeSeedOnly(t *testing.T) {
	store := newFakeStore()
	store.put(t, "friends", `[]`)

	p, _ := newTestProvider(t, store)
	assert.Equal(t, 4, p.FriendsCount())
}

func TestLoadFailureKeepsSeed(t *testing.T) {
	t.Run("read error", func(t *testing.T) {
		store := newFakeStore()
		store.put(t, "friends", `[{"id":"99","name":"Zaid"}]`)
		store.failGet["blockedUsers"] = errors.New("disk gone")

		p, hook := newTestProvider(t, store)
		assert.Equal(t, 4, p.FriendsCount())
		assert.Empty(t, p.BlockedUsers())

		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	})

	t.Run("parse error", func(t *testing.T) {
		store := newFakeStore()
		store.put(t, "friends", `[{"id":"99","name":"Zaid"}]`)
		store.put(t, "friendRequests", `{not json`)

		p, _ := newTestProvider(t, store)
		assert.Equal(t, []string{"1", "2", "3", "4"}, friendIDs(p.Friends()))
		assert.Equal(t, []string{"1", "2"}, requestIDs(p.FriendRequests()))
	})
}

func TestLoadDropsRecordsShadowingSeed(t *testing.T) {
	store := newFakeStore()
	store.put(t, "friends", `[{"id":"2","name":"Impostor"},{"id":"50","name":"Real"}]`)
	store.put(t, "blockedUsers", `["7","7","8"]`)

	p, _ := newTestProvider(t, store)
	assert.Equal(t, []string{"1", "2", "3", "4", "50"}, friendIDs(p.Friends()))
	assert.Equal(t, "فاطمة علي", p.Friends()[1].Name)
	assert.Equal(t, []string{"7", "8"}, p.BlockedUsers())
}

func TestSaveFriendsExcludesSeed(t *testing.T) {
	store := newFakeStore()
	p, _ := newTestProvider(t, store)

	require.NoError(t, p.SaveFriends(context.Background()))
	assert.Equal(t, "[]", store.value(t, "friends"))

	require.NoError(t, p.SaveRequests(context.Background()))
	assert.Equal(t, "[]", store.value(t, "friendRequests"))
}

func TestReadyBlocksMutationsUntilLoaded(t *testing.T) {
	store := newFakeStore()
	store.put(t, "friends", `[{"id":"99","name":"Zaid"}]`)

	logger, _ := logtest.NewNullLogger()
	p := New(context.Background(), store, WithLogger(logger))
	// Serialized behind the load: the save must include the loaded record.
	require.NoError(t, p.SaveFriends(context.Background()))
	assert.JSONEq(t, `[{"id":"99","name":"Zaid","email":"","phone":"","isOnline":false,"lastSeen":"0001-01-01T00:00:00Z","mutualFriends":0}]`, store.value(t, "friends"))
}

func TestOnChangeSeesBusyToggle(t *testing.T) {
	var mu sync.Mutex
	var busy []bool
	p, _ := newTestProvider(t, newFakeStore(), WithOnChange(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		busy = append(busy, s.Busy)
	}))

	mu.Lock()
	busy = nil
	mu.Unlock()

	require.NoError(t, p.RemoveFriend(context.Background(), "3"))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, busy)
	assert.True(t, busy[0])
	assert.False(t, busy[len(busy)-1])
}

func TestFromContext(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.Panics(t, func() { MustFromContext(context.Background()) })

	p, _ := newTestProvider(t, newFakeStore())
	ctx := NewContext(context.Background(), p)

	got, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, p, got)

	p.Close()
	_, err = FromContext(ctx)
	assert.ErrorIs(t, err, ErrNoProvider)
	assert.ErrorIs(t, err, ErrClosed)

	err = p.RemoveFriend(context.Background(), "1")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 4, p.FriendsCount())
}
