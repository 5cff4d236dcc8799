package listings

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
)

// Service owns listing business rules: only the owning farmer may mutate a
// listing; browse and get are public.
type Service interface {
	Create(ctx context.Context, farmerID uuid.UUID, farmerName string, input Input) (*models.Listing, error)
	Update(ctx context.Context, farmerID, listingID uuid.UUID, input Input) (*models.Listing, error)
	Delete(ctx context.Context, farmerID, listingID uuid.UUID) error
	Get(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
	Browse(ctx context.Context) ([]models.Listing, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Listing, error)
}

// Input carries the listing form fields.
type Input struct {
	ProductName string
	Category    string
	Price       decimal.Decimal
	Unit        string
	Quantity    int
	Location    string
	ImageURL    string
	Description string
	PhoneNumber string
}

func (i Input) validate() error {
	if strings.TrimSpace(i.ProductName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(i.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if !i.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if strings.TrimSpace(i.Unit) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
	}
	if i.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	return nil
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, farmerID uuid.UUID, farmerName string, input Input) (*models.Listing, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	listing := &models.Listing{
		ID:          uuid.New(),
		FarmerID:    farmerID,
		FarmerName:  farmerName,
		ProductName: input.ProductName,
		Category:    input.Category,
		Price:       input.Price,
		Unit:        input.Unit,
		Quantity:    input.Quantity,
		Location:    input.Location,
		ImageURL:    input.ImageURL,
		Description: input.Description,
		PhoneNumber: input.PhoneNumber,
	}
	return s.repo.Create(ctx, listing)
}

func (s *service) Update(ctx context.Context, farmerID, listingID uuid.UUID, input Input) (*models.Listing, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	listing, err := s.ownedListing(ctx, farmerID, listingID)
	if err != nil {
		return nil, err
	}

	listing.ProductName = input.ProductName
	listing.Category = input.Category
	listing.Price = input.Price
	listing.Unit = input.Unit
	listing.Quantity = input.Quantity
	listing.Location = input.Location
	listing.ImageURL = input.ImageURL
	listing.Description = input.Description
	listing.PhoneNumber = input.PhoneNumber

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *service) Delete(ctx context.Context, farmerID, listingID uuid.UUID) error {
	if _, err := s.ownedListing(ctx, farmerID, listingID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, listingID)
}

func (s *service) Get(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, err
	}
	return listing, nil
}

func (s *service) Browse(ctx context.Context) ([]models.Listing, error) {
	return s.repo.List(ctx)
}

func (s *service) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Listing, error) {
	return s.repo.ListByFarmer(ctx, farmerID)
}

func (s *service) ownedListing(ctx context.Context, farmerID, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := s.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.FarmerID != farmerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another farmer")
	}
	return listing, nil
}
