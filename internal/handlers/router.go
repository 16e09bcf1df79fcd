package handlers

import (
	"net/http"

	"github.com/jason-s-yu/friendgraph/internal/friends"
	"github.com/jason-s-yu/friendgraph/internal/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the friends endpoints for the local UI. Every request is scoped to p.
func NewRouter(logger *logrus.Logger, p *friends.Provider, hub *SnapshotHub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/friends", ListFriendsHandler)
	mux.HandleFunc("/friends/stats", StatsHandler)
	mux.HandleFunc("/friends/blocked", ListBlockedHandler)
	mux.HandleFunc("/friends/requests", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			SendRequestHandler(w, r)
			return
		}
		ListRequestsHandler(w, r)
	})
	mux.HandleFunc("/friends/requests/accept", AcceptRequestHandler)
	mux.HandleFunc("/friends/requests/decline", DeclineRequestHandler)
	mux.HandleFunc("/friends/remove", RemoveFriendHandler)
	mux.HandleFunc("/friends/block", BlockUserHandler)
	mux.HandleFunc("/friends/unblock", UnblockUserHandler)

	mux.Handle("/friends/ws", StateWSHandler(logger, hub))

	return middleware.LogMiddleware(logger)(middleware.WithProvider(p)(mux))
}
