package middleware

import (
	"net/http"

	"github.com/farmfreshconnect/farmfresh-backend/api/responses"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

// RequireAccountType rejects requests whose token does not carry the given
// account type. Tokens minted before profile completion carry none.
func RequireAccountType(accountType enums.AccountType, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if AccountTypeFromContext(r.Context()) != string(accountType) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "account type required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCompletedProfile rejects requests from accounts that have not yet
// chosen an account type.
func RequireCompletedProfile(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if AccountTypeFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "profile completion required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
