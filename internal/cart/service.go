package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
)

// Service owns cart mutations. Every mutation signals the buyer's change
// feed so open observers re-aggregate.
type Service interface {
	Add(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*models.CartEntry, error)
	Remove(ctx context.Context, buyerID, entryID uuid.UUID) error
	View(ctx context.Context, buyerID uuid.UUID) (View, error)
}

type service struct {
	repo       Repository
	listings   listingSource
	notifier   *Notifier
	aggregator *Aggregator
}

func NewService(repo Repository, listings listingSource, notifier *Notifier, aggregator *Aggregator) Service {
	return &service{
		repo:       repo,
		listings:   listings,
		notifier:   notifier,
		aggregator: aggregator,
	}
}

func (s *service) Add(ctx context.Context, buyerID, productID uuid.UUID, quantity int) (*models.CartEntry, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	listing, err := s.listings.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, err
	}
	if listing.FarmerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot add your own listing to the cart")
	}

	existing, err := s.repo.FindByBuyerAndProduct(ctx, buyerID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		existing.Quantity += quantity
		if err := s.repo.UpdateQuantity(ctx, existing.ID, existing.Quantity); err != nil {
			return nil, err
		}
		s.notifier.Notify(buyerID)
		return existing, nil
	}

	entry := &models.CartEntry{
		ID:          uuid.New(),
		BuyerID:     buyerID,
		ProductID:   productID,
		ProductName: listing.ProductName,
		Price:       listing.Price,
		Unit:        listing.Unit,
		ImageURL:    listing.ImageURL,
		Quantity:    quantity,
	}
	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(buyerID)
	return created, nil
}

func (s *service) Remove(ctx context.Context, buyerID, entryID uuid.UUID) error {
	if err := s.repo.Delete(ctx, buyerID, entryID); err != nil {
		return err
	}
	s.notifier.Notify(buyerID)
	return nil
}

func (s *service) View(ctx context.Context, buyerID uuid.UUID) (View, error) {
	return s.aggregator.Snapshot(ctx, buyerID)
}
