package controllers

import (
	"net/http"

	"github.com/farmfreshconnect/farmfresh-backend/api/responses"
	"github.com/farmfreshconnect/farmfresh-backend/internal/checkout"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

// Checkout converts the buyer's cart into one pending order per farmer.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		buyerID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Execute(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(created) == 0 {
			responses.WriteSuccess(w, map[string]any{"orders": []any{}})
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"orders": created})
	}
}
