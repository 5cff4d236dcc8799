package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/farmfreshconnect/farmfresh-backend/api/responses"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/config"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FarmFresh-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores before reporting ready. A nil pinger
// is treated as "not wired" and skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FarmFresh-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		for name, pinger := range pingers {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				checks[name] = "unreachable"
				err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unreachable").
					WithDetails(map[string]any{"checks": checks})
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			checks[name] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}
