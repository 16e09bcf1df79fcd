// internal/friends/mutations.go
package friends

import (
	"context"
	"fmt"
	"strings"

	"github.com/jason-s-yu/friendgraph/internal/models"
	"github.com/sirupsen/logrus"
)

const placeholderPhone = "+218-90-000-0000"

// stage is one in-memory change followed by the store write that makes it durable.
type stage struct {
	apply   func() error // runs with mu held
	persist func(ctx context.Context) error
}

// commit runs the stages of one mutation in order. Each stage updates memory first,
// notifies listeners, then persists; the first error stops the mutation. In-memory
// changes are not rolled back when a write fails.
func (p *Provider) commit(ctx context.Context, op string, fields logrus.Fields, stages ...stage) error {
	if p.isClosed() {
		return ErrClosed
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.setBusy(true)
	defer p.setBusy(false)

	logger := p.log.WithField("op", op).WithFields(fields)
	for _, s := range stages {
		p.mu.Lock()
		err := s.apply()
		p.mu.Unlock()
		if err != nil {
			logger.WithError(err).Error("Mutation rejected")
			return err
		}
		p.notify()

		if err := s.persist(ctx); err != nil {
			logger.WithError(err).Error("Mutation not persisted")
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	logger.Debug("Mutation committed")
	return nil
}

// SendFriendRequest records a new pending request from the local user to userID.
// Duplicate requests are not detected.
func (p *Provider) SendFriendRequest(ctx context.Context, userID, message string) (models.FriendRequest, error) {
	req := models.FriendRequest{
		ID:           p.newID(),
		FromUserID:   models.LocalUserID,
		FromUserName: models.LocalUserName,
		ToUserID:     userID,
		Message:      message,
		Status:       models.RequestPending,
		CreatedAt:    p.now(),
	}

	err := p.commit(ctx, "send_friend_request", logrus.Fields{"to_user_id": userID}, stage{
		apply: func() error {
			p.requests = append(p.requests, entry[models.FriendRequest]{origin: userRecord, rec: req})
			return nil
		},
		persist: p.saveRequests,
	})
	return req, err
}

// AcceptFriendRequest turns the request into a friend and drops the request. It fails
// before changing anything with ErrRequestNotFound when requestID is not held, and with
// ErrNotIncoming when the request was not sent to the local user. If the sender is
// already a friend the existing record is kept and returned.
//
// Contact details and presence are placeholders; there is no backend to ask.
func (p *Provider) AcceptFriendRequest(ctx context.Context, requestID string) (models.Friend, error) {
	var friend models.Friend

	err := p.commit(ctx, "accept_friend_request", logrus.Fields{"request_id": requestID},
		stage{
			apply: func() error {
				req, ok := p.findRequestLocked(requestID)
				if !ok {
					return fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
				}
				if !req.Incoming() {
					return fmt.Errorf("%w: %s", ErrNotIncoming, requestID)
				}
				if existing, ok := p.findFriendLocked(req.FromUserID); ok {
					friend = existing
					return nil
				}
				friend = models.Friend{
					ID:            req.FromUserID,
					Name:          req.FromUserName,
					Avatar:        req.FromUserAvatar,
					Email:         placeholderEmail(req.FromUserName),
					Phone:         placeholderPhone,
					IsOnline:      p.rng.Float64() > 0.5,
					LastSeen:      p.now(),
					MutualFriends: p.rng.Intn(10),
				}
				p.friends = append(p.friends, entry[models.Friend]{origin: userRecord, rec: friend})
				return nil
			},
			persist: p.saveFriends,
		},
		stage{
			apply: func() error {
				p.requests = removeWhere(p.requests, func(r models.FriendRequest) bool { return r.ID == requestID })
				return nil
			},
			persist: p.saveRequests,
		},
	)
	return friend, err
}

// DeclineFriendRequest drops the request. A missing id is not an error.
func (p *Provider) DeclineFriendRequest(ctx context.Context, requestID string) error {
	return p.commit(ctx, "decline_friend_request", logrus.Fields{"request_id": requestID}, stage{
		apply: func() error {
			p.requests = removeWhere(p.requests, func(r models.FriendRequest) bool { return r.ID == requestID })
			return nil
		},
		persist: p.saveRequests,
	})
}

// RemoveFriend drops the friend. A missing id is not an error.
//
// Removing a seed friend is not durable: it is back after the next load.
func (p *Provider) RemoveFriend(ctx context.Context, friendID string) error {
	return p.commit(ctx, "remove_friend", logrus.Fields{"friend_id": friendID}, stage{
		apply: func() error {
			p.friends = removeWhere(p.friends, func(f models.Friend) bool { return f.ID == friendID })
			return nil
		},
		persist: p.saveFriends,
	})
}

// BlockUser adds userID to the blocked set and then removes it from friends. The two
// writes are independent; if the first fails the friend is left in place.
func (p *Provider) BlockUser(ctx context.Context, userID string) error {
	return p.commit(ctx, "block_user", logrus.Fields{"user_id": userID},
		stage{
			apply: func() error {
				if !p.isBlockedLocked(userID) {
					p.blocked = append(p.blocked, userID)
				}
				return nil
			},
			persist: p.saveBlocked,
		},
		stage{
			apply: func() error {
				p.friends = removeWhere(p.friends, func(f models.Friend) bool { return f.ID == userID })
				return nil
			},
			persist: p.saveFriends,
		},
	)
}

// UnblockUser removes userID from the blocked set. Friendship is not restored.
func (p *Provider) UnblockUser(ctx context.Context, userID string) error {
	return p.commit(ctx, "unblock_user", logrus.Fields{"user_id": userID}, stage{
		apply: func() error {
			kept := make([]string, 0, len(p.blocked))
			for _, id := range p.blocked {
				if id != userID {
					kept = append(kept, id)
				}
			}
			p.blocked = kept
			return nil
		},
		persist: p.saveBlocked,
	})
}

func (p *Provider) findRequestLocked(id string) (models.FriendRequest, bool) {
	for _, e := range p.requests {
		if e.rec.ID == id {
			return e.rec, true
		}
	}
	return models.FriendRequest{}, false
}

func (p *Provider) findFriendLocked(id string) (models.Friend, bool) {
	for _, e := range p.friends {
		if e.rec.ID == id {
			return e.rec, true
		}
	}
	return models.Friend{}, false
}

func (p *Provider) isBlockedLocked(userID string) bool {
	for _, id := range p.blocked {
		if id == userID {
			return true
		}
	}
	return false
}

// placeholderEmail guesses an address from a display name: lower-cased, first space
// turned into a dot.
func placeholderEmail(name string) string {
	return strings.Replace(strings.ToLower(name), " ", ".", 1) + "@example.com"
}

// removeWhere returns a new slice without the entries matching drop.
func removeWhere[T any](entries []entry[T], drop func(T) bool) []entry[T] {
	out := make([]entry[T], 0, len(entries))
	for _, e := range entries {
		if !drop(e.rec) {
			out = append(out, e)
		}
	}
	return out
}
