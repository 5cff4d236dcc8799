package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/farmfreshconnect/farmfresh-backend/api/middleware"
	"github.com/farmfreshconnect/farmfresh-backend/api/responses"
	"github.com/farmfreshconnect/farmfresh-backend/api/validators"
	"github.com/farmfreshconnect/farmfresh-backend/internal/auth"
	"github.com/farmfreshconnect/farmfresh-backend/internal/profile"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

type completeProfileRequest struct {
	AccountType string `json:"account_type" validate:"required,oneof=farmer buyer"`
	PhoneNumber string `json:"phone_number" validate:"required,min=10"`
}

func authedUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return id, nil
}

// ProfileGet returns the caller's account.
func ProfileGet(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"user": auth.UserFromModel(user)})
	}
}

// ProfileComplete records the account type and phone number chosen during
// onboarding.
func ProfileComplete(svc profile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body completeProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Complete(r.Context(), userID, profile.CompleteInput{
			AccountType: body.AccountType,
			PhoneNumber: body.PhoneNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"user": auth.UserFromModel(user)})
	}
}
