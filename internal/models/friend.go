package models

import "time"

// LocalUserID is the fixed identity the client always acts as.
const LocalUserID = "current-user"

// LocalUserName is the display name attached to requests sent by the local user.
const LocalUserName = "أنت"

// Friend is an accepted relationship as shown in the friends list.
type Friend struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Avatar        string    `json:"avatar,omitempty"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	IsOnline      bool      `json:"isOnline"`
	LastSeen      time.Time `json:"lastSeen"`
	MutualFriends int       `json:"mutualFriends"` // display only
}

// RequestStatus is the lifecycle state of a FriendRequest.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// FriendRequest is a relationship request between the local user and someone else.
// Only pending requests are kept; accepting or declining deletes the record.
type FriendRequest struct {
	ID             string        `json:"id"`
	FromUserID     string        `json:"fromUserId"`
	FromUserName   string        `json:"fromUserName"`
	FromUserAvatar string        `json:"fromUserAvatar,omitempty"`
	ToUserID       string        `json:"toUserId"`
	Message        string        `json:"message,omitempty"`
	Status         RequestStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// Incoming reports whether the request is pending and addressed to the local user.
func (r FriendRequest) Incoming() bool {
	return r.Status == RequestPending && r.ToUserID == LocalUserID
}

// Outgoing reports whether the request is pending and was sent by the local user.
func (r FriendRequest) Outgoing() bool {
	return r.Status == RequestPending && r.FromUserID == LocalUserID
}
