// internal/middleware/provider.go

package middleware

import (
	"net/http"

	"github.com/jason-s-yu/friendgraph/internal/friends"
)

// WithProvider attaches p to every request context so handlers can resolve it with
// friends.FromContext.
func WithProvider(p *friends.Provider) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(friends.NewContext(r.Context(), p)))
		})
	}
}
