package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  buyer_name TEXT NOT NULL,
  farmer_id TEXT NOT NULL,
  total TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'Pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	lines := `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  price TEXT NOT NULL,
  unit TEXT NOT NULL,
  image_url TEXT,
  quantity INTEGER NOT NULL
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(lines).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, buyerID, farmerID uuid.UUID, status enums.OrderStatus, at time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		BuyerName: "Blake Buyer",
		FarmerID:  farmerID,
		Total:     decimal.RequireFromString("9.50"),
		Status:    status,
		CreatedAt: at,
		Lines: []models.OrderLine{{
			ID:          uuid.New(),
			ProductID:   uuid.New(),
			ProductName: "Tomatoes",
			Price:       decimal.RequireFromString("9.50"),
			Unit:        "kg",
			Quantity:    1,
		}},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func newOrdersService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func TestAdvanceStatusForward(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	farmerID := uuid.New()
	order := seedOrder(t, db, uuid.New(), farmerID, enums.OrderStatusPending, time.Now().UTC())

	updated, err := svc.AdvanceStatus(context.Background(), farmerID, order.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.Status)

	updated, err = svc.AdvanceStatus(context.Background(), farmerID, order.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusDelivered, stored.Status)
}

func TestAdvanceStatusNeverMovesBackwards(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	farmerID := uuid.New()
	order := seedOrder(t, db, uuid.New(), farmerID, enums.OrderStatusDelivered, time.Now().UTC())

	for _, next := range []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusShipped, enums.OrderStatusDelivered} {
		_, err := svc.AdvanceStatus(context.Background(), farmerID, order.ID, next)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	}

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, enums.OrderStatusDelivered, stored.Status)
}

func TestAdvanceStatusRejectsOtherFarmers(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	order := seedOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusPending, time.Now().UTC())

	_, err := svc.AdvanceStatus(context.Background(), uuid.New(), order.ID, enums.OrderStatusShipped)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestAdvanceStatusUnknownOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)

	_, err := svc.AdvanceStatus(context.Background(), uuid.New(), uuid.New(), enums.OrderStatusShipped)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListForFarmerNewestFirstWithLines(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	farmerID := uuid.New()

	now := time.Now().UTC()
	older := seedOrder(t, db, uuid.New(), farmerID, enums.OrderStatusPending, now.Add(-time.Hour))
	newer := seedOrder(t, db, uuid.New(), farmerID, enums.OrderStatusShipped, now)
	seedOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusPending, now)

	listed, err := svc.ListForFarmer(context.Background(), farmerID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].ID)
	assert.Equal(t, older.ID, listed[1].ID)
	require.Len(t, listed[0].Lines, 1)
	assert.Equal(t, "Tomatoes", listed[0].Lines[0].ProductName)
}

func TestListForBuyerScopedToBuyer(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newOrdersService(t, db)
	buyerID := uuid.New()

	mine := seedOrder(t, db, buyerID, uuid.New(), enums.OrderStatusPending, time.Now().UTC())
	seedOrder(t, db, uuid.New(), uuid.New(), enums.OrderStatusPending, time.Now().UTC())

	listed, err := svc.ListForBuyer(context.Background(), buyerID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)
}
