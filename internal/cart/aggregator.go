package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

// listingSource is the read-only listing lookup the aggregator joins against.
type listingSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// Item is a cart entry enriched with the owning farmer, resolved by joining
// the referenced listing at read time. FarmerID is never cached.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	ImageURL    string          `json:"image_url"`
	Quantity    int             `json:"quantity"`
	FarmerID    uuid.UUID       `json:"farmer_id"`
}

// Subtotal is the line value of the item.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// View is a derived cart snapshot. Total is recomputed per emission, never
// persisted.
type View struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Aggregator joins raw cart entries against current listings and exposes
// both one-shot and observable reads.
type Aggregator struct {
	repo     Repository
	listings listingSource
	notifier *Notifier
	logg     *logger.Logger
}

func NewAggregator(repo Repository, listings listingSource, notifier *Notifier, logg *logger.Logger) *Aggregator {
	return &Aggregator{
		repo:     repo,
		listings: listings,
		notifier: notifier,
		logg:     logg,
	}
}

// Snapshot builds the enriched view of the buyer's cart. Entries whose
// listing no longer exists are omitted from the aggregate.
func (a *Aggregator) Snapshot(ctx context.Context, buyerID uuid.UUID) (View, error) {
	return a.snapshotWith(ctx, buyerID, a.repo, a.listings)
}

// SnapshotTx builds the same view with transaction-bound collaborators so
// checkout can read a consistent cart inside its transaction.
func (a *Aggregator) SnapshotTx(ctx context.Context, tx *gorm.DB, buyerID uuid.UUID, listings listingSource) (View, error) {
	return a.snapshotWith(ctx, buyerID, a.repo.WithTx(tx), listings)
}

func (a *Aggregator) snapshotWith(ctx context.Context, buyerID uuid.UUID, repo Repository, listings listingSource) (View, error) {
	entries, err := repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return View{}, err
	}

	view := View{
		Items: make([]Item, 0, len(entries)),
		Total: decimal.Zero,
	}
	for _, entry := range entries {
		listing, err := listings.FindByID(ctx, entry.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// The listing was deleted out from under the cart;
				// the entry is dropped from the aggregate.
				if a.logg != nil {
					a.logg.Debug(ctx, "cart entry references missing listing, omitting")
				}
				continue
			}
			return View{}, err
		}
		item := Item{
			ID:          entry.ID,
			ProductID:   entry.ProductID,
			ProductName: entry.ProductName,
			Price:       entry.Price,
			Unit:        entry.Unit,
			ImageURL:    entry.ImageURL,
			Quantity:    entry.Quantity,
			FarmerID:    listing.FarmerID,
		}
		view.Items = append(view.Items, item)
		view.Total = view.Total.Add(item.Subtotal())
	}
	return view, nil
}

// Observe emits the current view immediately and a fresh view after every
// cart mutation for the buyer. Releasing (or cancelling ctx) detaches the
// observer and stops the background work.
func (a *Aggregator) Observe(ctx context.Context, buyerID uuid.UUID) (<-chan View, func()) {
	out := make(chan View, 1)
	obsCtx, cancel := context.WithCancel(ctx)
	changes, releaseChanges := a.notifier.Subscribe(buyerID)

	release := func() {
		cancel()
		releaseChanges()
	}

	go func() {
		defer close(out)
		a.push(obsCtx, buyerID, out)
		for {
			select {
			case <-obsCtx.Done():
				return
			case <-changes:
				a.push(obsCtx, buyerID, out)
			}
		}
	}()

	return out, release
}

func (a *Aggregator) push(ctx context.Context, buyerID uuid.UUID, out chan View) {
	view, err := a.Snapshot(ctx, buyerID)
	if err != nil {
		if a.logg != nil && ctx.Err() == nil {
			a.logg.Error(ctx, "cart snapshot failed", err)
		}
		return
	}
	// Replace any undelivered view so observers always see the newest one.
	for {
		select {
		case out <- view:
			return
		default:
			select {
			case <-out:
			default:
			}
		}
	}
}
