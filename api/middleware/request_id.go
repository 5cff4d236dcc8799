package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

const headerRequestID = "X-Request-Id"

// RequestID tags each request with an id, honoring one supplied by the edge
// proxy, and threads it through the context logger and the response.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(headerRequestID))
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(headerRequestID, id)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
