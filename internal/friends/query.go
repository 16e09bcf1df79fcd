package friends

import (
	"strings"

	"github.com/jason-s-yu/friendgraph/internal/models"
)

// SearchFriends returns friends whose name or email contains query, ignoring case, in
// list order. An empty query matches every friend.
func (p *Provider) SearchFriends(query string) []models.Friend {
	q := strings.ToLower(query)

	p.mu.RLock()
	defer p.mu.RUnlock()

	out := []models.Friend{}
	for _, e := range p.friends {
		if strings.Contains(strings.ToLower(e.rec.Name), q) || strings.Contains(strings.ToLower(e.rec.Email), q) {
			out = append(out, e.rec)
		}
	}
	return out
}

// PendingRequestsCount counts pending requests addressed to the local user.
func (p *Provider) PendingRequestsCount() int {
	return p.countRequests(models.FriendRequest.Incoming)
}

// SentRequestsCount counts pending requests sent by the local user.
func (p *Provider) SentRequestsCount() int {
	return p.countRequests(models.FriendRequest.Outgoing)
}

func (p *Provider) countRequests(match func(models.FriendRequest) bool) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, e := range p.requests {
		if match(e.rec) {
			n++
		}
	}
	return n
}

// FriendsCount returns the number of friends, seed included.
func (p *Provider) FriendsCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.friends)
}

// BlockedUsers returns a copy of the blocked ids in the order they were blocked.
func (p *Provider) BlockedUsers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.blocked))
	copy(out, p.blocked)
	return out
}

// IsBlocked reports whether userID is in the blocked set.
func (p *Provider) IsBlocked(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isBlockedLocked(userID)
}
