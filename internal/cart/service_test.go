package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmfreshconnect/farmfresh-backend/internal/listings"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
)

func TestServiceAddCreatesEntryWithListingSnapshot(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	listingsRepo := listings.NewRepository(db)
	notifier := NewNotifier()
	svc := NewService(repo, listingsRepo, notifier, NewAggregator(repo, listingsRepo, notifier, nil))

	buyerID := uuid.New()
	listing := seedListing(t, db, uuid.New(), "Tomatoes", "3.99")

	entry, err := svc.Add(context.Background(), buyerID, listing.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, listing.ProductName, entry.ProductName)
	assert.Equal(t, 2, entry.Quantity)
	assert.True(t, entry.Price.Equal(listing.Price))
}

func TestServiceAddMergesExistingProduct(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	listingsRepo := listings.NewRepository(db)
	notifier := NewNotifier()
	svc := NewService(repo, listingsRepo, notifier, NewAggregator(repo, listingsRepo, notifier, nil))

	buyerID := uuid.New()
	listing := seedListing(t, db, uuid.New(), "Eggs", "5.00")

	_, err := svc.Add(context.Background(), buyerID, listing.ID, 1)
	require.NoError(t, err)
	merged, err := svc.Add(context.Background(), buyerID, listing.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, 4, merged.Quantity)

	entries, err := repo.ListByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "merge must not create a second entry")
}

func TestServiceAddRejectsOwnListing(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	listingsRepo := listings.NewRepository(db)
	notifier := NewNotifier()
	svc := NewService(repo, listingsRepo, notifier, NewAggregator(repo, listingsRepo, notifier, nil))

	farmerID := uuid.New()
	listing := seedListing(t, db, farmerID, "Carrots", "1.25")

	_, err := svc.Add(context.Background(), farmerID, listing.ID, 1)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestServiceAddUnknownListing(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	listingsRepo := listings.NewRepository(db)
	notifier := NewNotifier()
	svc := NewService(repo, listingsRepo, notifier, NewAggregator(repo, listingsRepo, notifier, nil))

	_, err := svc.Add(context.Background(), uuid.New(), uuid.New(), 1)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestServiceRemoveNotifiesObservers(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	listingsRepo := listings.NewRepository(db)
	notifier := NewNotifier()
	svc := NewService(repo, listingsRepo, notifier, NewAggregator(repo, listingsRepo, notifier, nil))

	buyerID := uuid.New()
	listing := seedListing(t, db, uuid.New(), "Tomatoes", "3.99")
	entry, err := svc.Add(context.Background(), buyerID, listing.ID, 1)
	require.NoError(t, err)

	changes, release := notifier.Subscribe(buyerID)
	defer release()

	require.NoError(t, svc.Remove(context.Background(), buyerID, entry.ID))

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("remove did not signal the change feed")
	}

	entries, err := repo.ListByBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
