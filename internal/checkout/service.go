package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/internal/cart"
	"github.com/farmfreshconnect/farmfresh-backend/internal/listings"
	"github.com/farmfreshconnect/farmfresh-backend/internal/orders"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/metrics"
)

// DefaultLockTTL bounds how long a crashed checkout can block a buyer.
const DefaultLockTTL = 30 * time.Second

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type lockStore interface {
	AcquireCheckoutLock(ctx context.Context, buyerID string, ttl time.Duration) (bool, error)
	ReleaseCheckoutLock(ctx context.Context, buyerID string) error
}

type buyerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service executes the checkout transaction.
type Service interface {
	Execute(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
}

type service struct {
	tx           txRunner
	cartRepo     cart.Repository
	listingsRepo listings.Repository
	ordersRepo   orders.Repository
	aggregator   *cart.Aggregator
	users        buyerLoader
	locks        lockStore
	publisher    EventPublisher
	metrics      *metrics.CheckoutMetrics
	notifier     *cart.Notifier
	logg         *logger.Logger
	lockTTL      time.Duration
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	cartRepo cart.Repository,
	listingsRepo listings.Repository,
	ordersRepo orders.Repository,
	aggregator *cart.Aggregator,
	users buyerLoader,
	locks lockStore,
	publisher EventPublisher,
	checkoutMetrics *metrics.CheckoutMetrics,
	notifier *cart.Notifier,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if listingsRepo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if aggregator == nil {
		return nil, fmt.Errorf("cart aggregator required")
	}
	if users == nil {
		return nil, fmt.Errorf("buyer loader required")
	}
	if locks == nil {
		return nil, fmt.Errorf("lock store required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("cart notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &service{
		tx:           tx,
		cartRepo:     cartRepo,
		listingsRepo: listingsRepo,
		ordersRepo:   ordersRepo,
		aggregator:   aggregator,
		users:        users,
		locks:        locks,
		publisher:    publisher,
		metrics:      checkoutMetrics,
		notifier:     notifier,
		logg:         logg,
		lockTTL:      DefaultLockTTL,
	}, nil
}

// Execute turns the buyer's cart into one pending order per farmer and
// clears the converted entries, all inside a single transaction. A second
// attempt while one is in flight is rejected rather than queued.
func (s *service) Execute(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}

	acquired, err := s.locks.AcquireCheckoutLock(ctx, buyerID.String(), s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout lock unavailable")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}
	defer func() {
		if err := s.locks.ReleaseCheckoutLock(context.WithoutCancel(ctx), buyerID.String()); err != nil {
			s.logg.Warn(ctx, "failed to release checkout lock: "+err.Error())
		}
	}()

	started := time.Now()
	created, err := s.execute(ctx, buyerID)
	if err != nil {
		s.metrics.ObserveDuration("failure", time.Since(started))
		s.metrics.IncFailure()
		return nil, err
	}
	s.metrics.ObserveDuration("success", time.Since(started))
	s.metrics.IncSuccess()
	s.metrics.AddOrders(len(created))

	if len(created) > 0 {
		s.notifier.Notify(buyerID)
		s.publishOrderCreated(ctx, buyerID, created)
	}
	return created, nil
}

func (s *service) execute(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	var created []models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)
		listingsTx := s.listingsRepo.WithTx(tx)

		view, err := s.aggregator.SnapshotTx(ctx, tx, buyerID, listingsTx)
		if err != nil {
			return err
		}
		if len(view.Items) == 0 {
			return nil
		}

		buyer, err := s.users.FindByID(ctx, buyerID)
		if err != nil {
			return err
		}

		entryIDs := make([]uuid.UUID, 0, len(view.Items))
		for _, item := range view.Items {
			entryIDs = append(entryIDs, item.ID)
		}

		for _, group := range groupByFarmer(view.Items) {
			order := &models.Order{
				ID:        uuid.New(),
				BuyerID:   buyerID,
				BuyerName: buyer.FullName,
				FarmerID:  group.farmerID,
				Total:     group.total,
				Status:    enums.OrderStatusPending,
				Lines:     buildLines(group.items),
			}
			saved, err := ordersRepo.Create(ctx, order)
			if err != nil {
				return err
			}
			created = append(created, *saved)
		}

		return cartRepo.DeleteByIDs(ctx, buyerID, entryIDs)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type farmerGroup struct {
	farmerID uuid.UUID
	total    decimal.Decimal
	items    []cart.Item
}

// groupByFarmer buckets items by farmer, preserving the order in which each
// farmer first appears in the cart.
func groupByFarmer(items []cart.Item) []farmerGroup {
	index := make(map[uuid.UUID]int, len(items))
	groups := make([]farmerGroup, 0, len(items))
	for _, item := range items {
		i, ok := index[item.FarmerID]
		if !ok {
			i = len(groups)
			index[item.FarmerID] = i
			groups = append(groups, farmerGroup{farmerID: item.FarmerID, total: decimal.Zero})
		}
		groups[i].items = append(groups[i].items, item)
		groups[i].total = groups[i].total.Add(item.Subtotal())
	}
	return groups
}

func buildLines(items []cart.Item) []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderLine{
			ID:          uuid.New(),
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Unit:        item.Unit,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
		})
	}
	return lines
}

func (s *service) publishOrderCreated(ctx context.Context, buyerID uuid.UUID, created []models.Order) {
	orderIDs := make([]uuid.UUID, 0, len(created))
	for _, order := range created {
		orderIDs = append(orderIDs, order.ID)
	}
	event := OrderCreatedEvent{
		BuyerID:    buyerID,
		OrderIDs:   orderIDs,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logg.Warn(ctx, "order created event not published: "+err.Error())
	}
}
