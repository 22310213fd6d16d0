package middleware

import (
	"net/http"

	"github.com/ericyum/tour-agent-backend/internal/application/loaders"
	"github.com/ericyum/tour-agent-backend/internal/domain/repositories"
)

// LoadersMiddleware attaches fresh per-request dataloaders so lookups within
// one request share a batch and a memo.
func LoadersMiddleware(repo repositories.RecordRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := loaders.WithLoaders(r.Context(), loaders.NewLoaders(repo))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
