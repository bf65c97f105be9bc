package middleware

import (
	"net/http"

	"github.com/cloo-solutions/plantrec/internal/api"
	"github.com/cloo-solutions/plantrec/internal/domain"
)

// DefaultMaxBodyBytes bounds recommendation and catalog request bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

// MaxBodyBytes rejects bodies that declare a length above limit and caps
// reads for the rest.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				api.JSON(w, http.StatusRequestEntityTooLarge, api.ErrorResponse{
					Error: "request body too large",
					Code:  domain.ErrCodeValidation,
				})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
