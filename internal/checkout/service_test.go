package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/internal/auth"
	"github.com/farmfreshconnect/farmfresh-backend/internal/cart"
	"github.com/farmfreshconnect/farmfresh-backend/internal/listings"
	"github.com/farmfreshconnect/farmfresh-backend/internal/orders"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// The service hits the database through more than one pooled connection,
	// and go-sqlite3 gives each connection its own ":memory:" database, so use
	// a uniquely named shared in-memory database instead.
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  account_type TEXT,
  phone_number TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  farmer_id TEXT NOT NULL,
  farmer_name TEXT NOT NULL,
  product_name TEXT NOT NULL,
  category TEXT NOT NULL,
  price TEXT NOT NULL,
  unit TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  location TEXT,
  image_url TEXT,
  description TEXT,
  phone_number TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cart_entries (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  price TEXT NOT NULL,
  unit TEXT NOT NULL,
  image_url TEXT,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  buyer_name TEXT NOT NULL,
  farmer_id TEXT NOT NULL,
  total TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'Pending',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  price TEXT NOT NULL,
  unit TEXT NOT NULL,
  image_url TEXT,
  quantity INTEGER NOT NULL
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeLockStore struct {
	mu         sync.Mutex
	held       map[string]bool
	acquireErr error
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{held: map[string]bool{}}
}

func (f *fakeLockStore) AcquireCheckoutLock(ctx context.Context, buyerID string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held[buyerID] {
		return false, nil
	}
	f.held[buyerID] = true
	return true, nil
}

func (f *fakeLockStore) ReleaseCheckoutLock(ctx context.Context, buyerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.held, buyerID)
	return nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []OrderCreatedEvent
}

func (c *capturingPublisher) PublishOrderCreated(ctx context.Context, event OrderCreatedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

type failingOrdersRepo struct {
	orders.Repository
}

func (f failingOrdersRepo) WithTx(tx *gorm.DB) orders.Repository {
	return failingOrdersRepo{Repository: f.Repository.WithTx(tx)}
}

func (f failingOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	return nil, errors.New("orders table unavailable")
}

type checkoutFixture struct {
	db        *gorm.DB
	svc       Service
	locks     *fakeLockStore
	publisher *capturingPublisher
	notifier  *cart.Notifier
	buyerID   uuid.UUID
}

func newCheckoutFixture(t *testing.T, ordersRepoOverride func(orders.Repository) orders.Repository) *checkoutFixture {
	t.Helper()
	db := setupCheckoutTestDB(t)

	cartRepo := cart.NewRepository(db)
	listingsRepo := listings.NewRepository(db)
	ordersRepo := orders.NewRepository(db)
	if ordersRepoOverride != nil {
		ordersRepo = ordersRepoOverride(ordersRepo)
	}
	userRepo := auth.NewRepository(db)
	notifier := cart.NewNotifier()
	aggregator := cart.NewAggregator(cartRepo, listingsRepo, notifier, nil)
	locks := newFakeLockStore()
	publisher := &capturingPublisher{}
	logg := logger.New(logger.Options{ServiceName: "test"})

	svc, err := NewService(
		testTxRunner{db: db},
		cartRepo,
		listingsRepo,
		ordersRepo,
		aggregator,
		userRepo,
		locks,
		publisher,
		nil,
		notifier,
		logg,
	)
	require.NoError(t, err)

	buyer := &models.User{
		ID:           uuid.New(),
		Email:        "buyer@example.com",
		FullName:     "Blake Buyer",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(buyer).Error)

	return &checkoutFixture{
		db:        db,
		svc:       svc,
		locks:     locks,
		publisher: publisher,
		notifier:  notifier,
		buyerID:   buyer.ID,
	}
}

func (f *checkoutFixture) seedListing(t *testing.T, farmerID uuid.UUID, name, price string) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ID:          uuid.New(),
		FarmerID:    farmerID,
		FarmerName:  "Farmer",
		ProductName: name,
		Category:    "vegetables",
		Price:       decimal.RequireFromString(price),
		Unit:        "kg",
		Quantity:    50,
	}
	require.NoError(t, f.db.Create(listing).Error)
	return listing
}

func (f *checkoutFixture) seedEntry(t *testing.T, listing *models.Listing, qty int, at time.Time) *models.CartEntry {
	t.Helper()
	entry := &models.CartEntry{
		ID:          uuid.New(),
		BuyerID:     f.buyerID,
		ProductID:   listing.ID,
		ProductName: listing.ProductName,
		Price:       listing.Price,
		Unit:        listing.Unit,
		Quantity:    qty,
		CreatedAt:   at,
	}
	require.NoError(t, f.db.Create(entry).Error)
	return entry
}

func (f *checkoutFixture) cartCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.CartEntry{}).Where("buyer_id = ?", f.buyerID).Count(&count).Error)
	return count
}

func TestCheckoutCreatesOneOrderPerFarmer(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	farmerA := uuid.New()
	farmerB := uuid.New()

	now := time.Now().UTC()
	tomatoes := f.seedListing(t, farmerA, "Tomatoes", "3.99")
	eggs := f.seedListing(t, farmerB, "Eggs", "5.00")
	f.seedEntry(t, tomatoes, 2, now)
	f.seedEntry(t, eggs, 1, now.Add(time.Second))

	created, err := f.svc.Execute(context.Background(), f.buyerID)
	require.NoError(t, err)
	require.Len(t, created, 2)

	byFarmer := map[uuid.UUID]models.Order{}
	for _, order := range created {
		byFarmer[order.FarmerID] = order
		assert.Equal(t, enums.OrderStatusPending, order.Status)
		assert.Equal(t, "Blake Buyer", order.BuyerName)
	}
	require.Contains(t, byFarmer, farmerA)
	require.Contains(t, byFarmer, farmerB)
	assert.True(t, byFarmer[farmerA].Total.Equal(decimal.RequireFromString("7.98")),
		"farmer A total %s", byFarmer[farmerA].Total)
	assert.True(t, byFarmer[farmerB].Total.Equal(decimal.RequireFromString("5.00")),
		"farmer B total %s", byFarmer[farmerB].Total)

	require.Len(t, byFarmer[farmerA].Lines, 1)
	assert.Equal(t, tomatoes.ID, byFarmer[farmerA].Lines[0].ProductID)
	assert.Equal(t, 2, byFarmer[farmerA].Lines[0].Quantity)

	assert.EqualValues(t, 0, f.cartCount(t), "cart should be empty after checkout")

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, f.buyerID, f.publisher.events[0].BuyerID)
	assert.Len(t, f.publisher.events[0].OrderIDs, 2)
}

func TestCheckoutEmptyCartIsNoOp(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	created, err := f.svc.Execute(context.Background(), f.buyerID)
	require.NoError(t, err)
	assert.Empty(t, created)

	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount)
	assert.Empty(t, f.publisher.events)
}

func TestCheckoutSkipsOrphanedEntriesButKeepsThem(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	farmerID := uuid.New()

	now := time.Now().UTC()
	tomatoes := f.seedListing(t, farmerID, "Tomatoes", "3.99")
	f.seedEntry(t, tomatoes, 1, now)

	ghost := f.seedListing(t, farmerID, "Peaches", "2.50")
	orphan := f.seedEntry(t, ghost, 2, now.Add(time.Second))
	require.NoError(t, f.db.Delete(&models.Listing{}, "id = ?", ghost.ID).Error)

	created, err := f.svc.Execute(context.Background(), f.buyerID)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.True(t, created[0].Total.Equal(decimal.RequireFromString("3.99")))

	// The orphaned raw entry survives the checkout untouched.
	var count int64
	require.NoError(t, f.db.Model(&models.CartEntry{}).Where("id = ?", orphan.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCheckoutFailureLeavesCartUnchanged(t *testing.T) {
	f := newCheckoutFixture(t, func(repo orders.Repository) orders.Repository {
		return failingOrdersRepo{Repository: repo}
	})
	farmerID := uuid.New()

	listing := f.seedListing(t, farmerID, "Tomatoes", "3.99")
	f.seedEntry(t, listing, 2, time.Now().UTC())

	_, err := f.svc.Execute(context.Background(), f.buyerID)
	require.Error(t, err)

	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.EqualValues(t, 0, orderCount, "failed checkout must not leave partial orders")
	assert.EqualValues(t, 1, f.cartCount(t), "failed checkout must not consume the cart")
	assert.Empty(t, f.publisher.events)

	f.locks.mu.Lock()
	held := f.locks.held[f.buyerID.String()]
	f.locks.mu.Unlock()
	assert.False(t, held, "lock must be released after a failed attempt")
}

func TestCheckoutRejectedWhileInFlight(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	farmerID := uuid.New()
	listing := f.seedListing(t, farmerID, "Tomatoes", "3.99")
	f.seedEntry(t, listing, 1, time.Now().UTC())

	acquired, err := f.locks.AcquireCheckoutLock(context.Background(), f.buyerID.String(), time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = f.svc.Execute(context.Background(), f.buyerID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	assert.EqualValues(t, 1, f.cartCount(t), "rejected attempt must not touch the cart")
}

func TestCheckoutLockStoreFailure(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	f.locks.acquireErr = errors.New("redis down")

	_, err := f.svc.Execute(context.Background(), f.buyerID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}
