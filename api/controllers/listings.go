package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmfreshconnect/farmfresh-backend/api/middleware"
	"github.com/farmfreshconnect/farmfresh-backend/api/responses"
	"github.com/farmfreshconnect/farmfresh-backend/api/validators"
	"github.com/farmfreshconnect/farmfresh-backend/internal/listings"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

type listingRequest struct {
	ProductName string `json:"product_name" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Price       string `json:"price" validate:"required"`
	Unit        string `json:"unit" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=0"`
	Location    string `json:"location"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	PhoneNumber string `json:"phone_number"`
}

func (req listingRequest) toInput() (listings.Input, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return listings.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number")
	}
	return listings.Input{
		ProductName: validators.CleanText(req.ProductName, 120),
		Category:    validators.CleanText(req.Category, 64),
		Price:       price,
		Unit:        validators.CleanText(req.Unit, 32),
		Quantity:    req.Quantity,
		Location:    validators.CleanText(req.Location, 120),
		ImageURL:    validators.CleanText(req.ImageURL, 512),
		Description: validators.CleanText(req.Description, 2000),
		PhoneNumber: validators.CleanText(req.PhoneNumber, 32),
	}, nil
}

func listingIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id must be a uuid")
	}
	return id, nil
}

// ListingCreate publishes a new listing owned by the calling farmer.
func ListingCreate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body listingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		farmerName := middleware.FullNameFromContext(r.Context())
		listing, err := svc.Create(r.Context(), farmerID, farmerName, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"listing": listing})
	}
}

// ListingUpdate edits a listing the calling farmer owns.
func ListingUpdate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listingID, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body listingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Update(r.Context(), farmerID, listingID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"listing": listing})
	}
}

// ListingDelete removes a listing the calling farmer owns.
func ListingDelete(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listingID, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), farmerID, listingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListingGet returns a single listing.
func ListingGet(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := listingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Get(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"listing": listing})
	}
}

// ListingBrowse returns the full marketplace feed, newest first.
func ListingBrowse(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Browse(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"listings": items})
	}
}

// ListingMine returns the calling farmer's own listings.
func ListingMine(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmerID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListByFarmer(r.Context(), farmerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"listings": items})
	}
}
