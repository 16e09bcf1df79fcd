// internal/friends/reconcile.go
package friends

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/friendgraph/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type blob struct {
	value string
	ok    bool
}

// load merges persisted user records into the seed collections. Any read or parse
// failure is logged and leaves the state as it was (seed only). The caller holds writeMu.
func (p *Provider) load(ctx context.Context) {
	var friendsBlob, requestsBlob, blockedBlob blob

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.read(gctx, p.keys.Friends, &friendsBlob) })
	g.Go(func() error { return p.read(gctx, p.keys.Requests, &requestsBlob) })
	g.Go(func() error { return p.read(gctx, p.keys.Blocked, &blockedBlob) })
	if err := g.Wait(); err != nil {
		p.log.WithError(err).Error("Error loading friends data")
		return
	}

	var (
		userFriends  []models.Friend
		userRequests []models.FriendRequest
		blocked      []string
	)
	if err := decode(friendsBlob, &userFriends); err != nil {
		p.log.WithError(err).WithField("key", p.keys.Friends).Error("Error loading friends data")
		return
	}
	if err := decode(requestsBlob, &userRequests); err != nil {
		p.log.WithError(err).WithField("key", p.keys.Requests).Error("Error loading friends data")
		return
	}
	if err := decode(blockedBlob, &blocked); err != nil {
		p.log.WithError(err).WithField("key", p.keys.Blocked).Error("Error loading friends data")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range userFriends {
		if _, seeded := p.seedFriendIDs[f.ID]; seeded {
			p.log.WithField("friend_id", f.ID).Warn("Dropping persisted friend that shadows a seed friend")
			continue
		}
		p.friends = append(p.friends, entry[models.Friend]{origin: userRecord, rec: f})
	}
	for _, r := range userRequests {
		if _, seeded := p.seedRequestIDs[r.ID]; seeded {
			p.log.WithField("request_id", r.ID).Warn("Dropping persisted request that shadows a seed request")
			continue
		}
		p.requests = append(p.requests, entry[models.FriendRequest]{origin: userRecord, rec: r})
	}
	if blockedBlob.ok {
		p.blocked = dedupe(blocked)
		if len(p.blocked) != len(blocked) {
			p.log.WithFields(logrus.Fields{
				"stored": len(blocked),
				"unique": len(p.blocked),
			}).Warn("Collapsed duplicate blocked user ids")
		}
	}

	p.log.WithFields(logrus.Fields{
		"friends":  len(p.friends),
		"requests": len(p.requests),
		"blocked":  len(p.blocked),
	}).Debug("Friends data loaded")
}

func (p *Provider) read(ctx context.Context, key string, dst *blob) error {
	v, ok, err := p.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %q: %w", key, err)
	}
	*dst = blob{value: v, ok: ok}
	return nil
}

// decode leaves dst untouched when the key was absent.
func decode(b blob, dst any) error {
	if !b.ok {
		return nil
	}
	if err := json.Unmarshal([]byte(b.value), dst); err != nil {
		return fmt.Errorf("parse stored collection: %w", err)
	}
	return nil
}

// SaveFriends writes the user-added friends (never seed records) to the store.
func (p *Provider) SaveFriends(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.saveFriends(ctx)
}

// SaveRequests writes the user-added requests (never seed records) to the store.
func (p *Provider) SaveRequests(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.saveRequests(ctx)
}

func (p *Provider) saveFriends(ctx context.Context) error {
	p.mu.RLock()
	userFriends := userRecords(p.friends)
	p.mu.RUnlock()

	if err := p.write(ctx, p.keys.Friends, userFriends); err != nil {
		p.log.WithError(err).Error("Error saving friends data")
		return err
	}
	return nil
}

func (p *Provider) saveRequests(ctx context.Context) error {
	p.mu.RLock()
	userRequests := userRecords(p.requests)
	p.mu.RUnlock()

	if err := p.write(ctx, p.keys.Requests, userRequests); err != nil {
		p.log.WithError(err).Error("Error saving friend requests")
		return err
	}
	return nil
}

// saveBlocked writes the whole blocked list; blocked users have no seed data.
func (p *Provider) saveBlocked(ctx context.Context) error {
	p.mu.RLock()
	blocked := make([]string, len(p.blocked))
	copy(blocked, p.blocked)
	p.mu.RUnlock()

	if err := p.write(ctx, p.keys.Blocked, blocked); err != nil {
		p.log.WithError(err).Error("Error saving blocked users")
		return err
	}
	return nil
}

func (p *Provider) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}
	if err := p.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// userRecords selects records by tag. The result is never nil so it encodes as [].
func userRecords[T any](entries []entry[T]) []T {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if e.origin == userRecord {
			out = append(out, e.rec)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
