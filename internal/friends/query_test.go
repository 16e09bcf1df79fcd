package friends

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFriends(t *testing.T) {
	store := newFakeStore()
	store.put(t, "friends", `[{"id":"99","name":"Ahmed Salem","email":"salem@example.com"}]`)
	p, _ := newTestProvider(t, store)

	for _, q := range []string{"AHM", "ahm", "aHm"} {
		assert.Equal(t, []string{"1", "99"}, friendIDs(p.SearchFriends(q)), "query %q", q)
	}
	assert.Equal(t, []string{"2"}, friendIDs(p.SearchFriends("فاطمة")))
	assert.Equal(t, []string{"99"}, friendIDs(p.SearchFriends("SALEM@")))
	assert.Empty(t, p.SearchFriends("nobody-matches-this"))
	assert.Equal(t, friendIDs(p.Friends()), friendIDs(p.SearchFriends("")))
}

func TestRequestCountsPartitionByDirection(t *testing.T) {
	store := newFakeStore()
	store.put(t, "friendRequests", `[{"id":"in","fromUserId":"9","fromUserName":"Nour","toUserId":"current-user","status":"pending"}]`)
	p, _ := newTestProvider(t, store)

	ctx := context.Background()
	require.NoError(t, p.DeclineFriendRequest(ctx, "1"))
	require.NoError(t, p.DeclineFriendRequest(ctx, "2"))
	_, err := p.SendFriendRequest(ctx, "9", "")
	require.NoError(t, err)

	assert.Len(t, p.FriendRequests(), 2)
	assert.Equal(t, 1, p.PendingRequestsCount())
	assert.Equal(t, 1, p.SentRequestsCount())
}

func TestCountsIgnoreNonPending(t *testing.T) {
	store := newFakeStore()
	store.put(t, "friendRequests", `[{"id":"old","fromUserId":"9","toUserId":"current-user","status":"declined"}]`)
	p, _ := newTestProvider(t, store)

	assert.Len(t, p.FriendRequests(), 3)
	assert.Equal(t, 2, p.PendingRequestsCount())
	assert.Equal(t, 0, p.SentRequestsCount())
}

func TestBlockedUsersReturnsCopy(t *testing.T) {
	p, _ := newTestProvider(t, newFakeStore())
	require.NoError(t, p.BlockUser(context.Background(), "x"))

	got := p.BlockedUsers()
	got[0] = "mutated"
	assert.Equal(t, []string{"x"}, p.BlockedUsers())
	assert.False(t, p.IsBlocked("mutated"))
}
