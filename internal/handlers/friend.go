// internal/handlers/friend.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/friendgraph/internal/friends"
)

// ListFriendsHandler returns the friends matching the optional "q" query parameter.
func ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	p, ok := provider(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.SearchFriends(r.URL.Query().Get("q")))
}

// ListRequestsHandler returns every held friend request, incoming and outgoing.
func ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	p, ok := provider(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.FriendRequests())
}

// ListBlockedHandler returns the blocked ids. With "userId" set it instead answers
// whether that one user is blocked: { "userId": "...", "blocked": true }.
func ListBlockedHandler(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	p, ok := provider(w, r)
	if !ok {
		return
	}
	if userID := r.URL.Query().Get("userId"); userID != "" {
		writeJSON(w, http.StatusOK, BlockedStatus{UserID: userID, Blocked: p.IsBlocked(userID)})
		return
	}
	writeJSON(w, http.StatusOK, p.BlockedUsers())
}

// BlockedStatus is the single-user answer of ListBlockedHandler.
type BlockedStatus struct {
	UserID  string `json:"userId"`
	Blocked bool   `json:"blocked"`
}

// Stats is the payload of StatsHandler.
type Stats struct {
	Friends         int  `json:"friends"`
	PendingRequests int  `json:"pendingRequests"`
	SentRequests    int  `json:"sentRequests"`
	BlockedUsers    int  `json:"blockedUsers"`
	Busy            bool `json:"busy"`
}

// StatsHandler returns the badge counters shown by the UI.
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	p, ok := provider(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Stats{
		Friends:         p.FriendsCount(),
		PendingRequests: p.PendingRequestsCount(),
		SentRequests:    p.SentRequestsCount(),
		BlockedUsers:    len(p.BlockedUsers()),
		Busy:            p.Busy(),
	})
}

// SendRequestHandler sends a friend request from the local user.
//
// Request payload: { "userId": "...", "message": "optional" }
func SendRequestHandler(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	p, ok := provider(w, r)
	if !ok {
		return
	}
	var req struct {
		UserID  string `json:"userId"`
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	fr, err := p.SendFriendRequest(r.Context(), req.UserID, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fr)
}

// AcceptRequestHandler accepts a held request.
//
// Request payload: { "requestId": "..." }
func AcceptRequestHandler(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	p, ok := provider(w, r)
	if !ok {
		return
	}
	var req struct {
		RequestID string `json:"requestId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.RequestID == "" {
		http.Error(w, "missing requestId", http.StatusBadRequest)
		return
	}

	friend, err := p.AcceptFriendRequest(r.Context(), req.RequestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friend)
}

// DeclineRequestHandler drops a request. Unknown ids succeed.
//
// Request payload: { "requestId": "..." }
func DeclineRequestHandler(w http.ResponseWriter, r *http.Request) {
	idMutation(w, r, "requestId", func(p *friends.Provider, r *http.Request, id string) error {
		return p.DeclineFriendRequest(r.Context(), id)
	})
}

// RemoveFriendHandler unfriends a user.
//
// Request payload: { "friendId": "..." }
func RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	idMutation(w, r, "friendId", func(p *friends.Provider, r *http.Request, id string) error {
		return p.RemoveFriend(r.Context(), id)
	})
}

// BlockUserHandler blocks a user and drops them from friends.
//
// Request payload: { "userId": "..." }
func BlockUserHandler(w http.ResponseWriter, r *http.Request) {
	idMutation(w, r, "userId", func(p *friends.Provider, r *http.Request, id string) error {
		return p.BlockUser(r.Context(), id)
	})
}

// UnblockUserHandler unblocks a user.
//
// Request payload: { "userId": "..." }
func UnblockUserHandler(w http.ResponseWriter, r *http.Request) {
	idMutation(w, r, "userId", func(p *friends.Provider, r *http.Request, id string) error {
		return p.UnblockUser(r.Context(), id)
	})
}

// idMutation handles the POST endpoints whose payload is a single id field and whose
// response is 204 on success.
func idMutation(w http.ResponseWriter, r *http.Request, field string, fn func(*friends.Provider, *http.Request, string) error) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	p, ok := provider(w, r)
	if !ok {
		return
	}
	var body map[string]string
	if !decodeBody(w, r, &body) {
		return
	}
	id := body[field]
	if id == "" {
		http.Error(w, "missing "+field, http.StatusBadRequest)
		return
	}

	if err := fn(p, r, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
