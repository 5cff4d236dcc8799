package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/farmfreshconnect/farmfresh-backend/api/responses"
	pkgAuth "github.com/farmfreshconnect/farmfresh-backend/pkg/auth"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/auth/session"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/config"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

// bearerToken strips an optional "Bearer " prefix from the Authorization header.
func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// Auth gates a route group on a valid access token whose session is still
// live in Redis. A signature-valid token whose session was revoked is
// rejected; logout takes effect immediately, not at token expiry.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deny := func(err error) {
				responses.WriteError(r.Context(), logg, w, err)
			}

			token := bearerToken(r)
			if token == "" {
				deny(pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				deny(pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				deny(pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}
			if verifier != nil {
				live, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					deny(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !live {
					deny(pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxAccessID, claims.ID)
			ctx = context.WithValue(ctx, ctxFullName, claims.FullName)
			if claims.AccountType != nil {
				ctx = context.WithValue(ctx, ctxAccountType, string(*claims.AccountType))
			}

			if logg != nil {
				fields := map[string]any{"user_id": claims.UserID.String()}
				if claims.AccountType != nil {
					fields["account_type"] = string(*claims.AccountType)
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
