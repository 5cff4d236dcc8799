package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/farmfreshconnect/farmfresh-backend/api/responses"
	sessionstate "github.com/farmfreshconnect/farmfresh-backend/internal/session"
	pkgAuth "github.com/farmfreshconnect/farmfresh-backend/pkg/auth"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/config"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

type sessionStateResponse struct {
	State  sessionstate.State  `json:"state"`
	Action sessionstate.Action `json:"action"`
}

// SessionState reports the caller's onboarding state and the navigation the
// client should perform for the route it is on. The endpoint is public; an
// absent or invalid token simply resolves to the unauthenticated state.
func SessionState(cfg config.JWTConfig, resolver sessionstate.ProfileResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := sessionstate.Route(strings.TrimSpace(r.URL.Query().Get("route")))
		if route == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "route query parameter required"))
			return
		}
		redirectInFlight, _ := strconv.ParseBool(r.URL.Query().Get("redirect_in_flight"))

		snapshot := resolveSession(r, cfg, resolver, logg)
		state := snapshot.State()

		responses.WriteSuccess(w, sessionStateResponse{
			State:  state,
			Action: sessionstate.DesiredAction(state, route, redirectInFlight),
		})
	}
}

func resolveSession(r *http.Request, cfg config.JWTConfig, resolver sessionstate.ProfileResolver, logg *logger.Logger) sessionstate.Session {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return sessionstate.Session{}
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return sessionstate.Session{}
	}

	snapshot := sessionstate.Session{
		Identity: &sessionstate.Identity{
			UserID:   claims.UserID,
			FullName: claims.FullName,
		},
	}

	// The profile store is authoritative; claims may predate completion.
	profile, err := resolver.Resolve(r.Context(), claims.UserID)
	if err != nil {
		if logg != nil {
			logg.Warn(r.Context(), "session profile lookup failed: "+err.Error())
		}
		return snapshot
	}
	snapshot.AccountType = profile.AccountType
	snapshot.PhoneNumber = profile.PhoneNumber
	return snapshot
}
