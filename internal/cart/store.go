package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/openmerce/storefront/internal/event"
	apperrors "github.com/openmerce/storefront/pkg/errors"
)

// Product carries the display fields copied into a new line item when a
// product is first added. Price is informational only; the order backend
// recomputes totals from product ID and quantity at submission time.
type Product struct {
	ProductID string
	Name      string
	Price     int64
	ImageURL  string
}

// EventPublisher emits cart domain events. Publishing is best-effort;
// the store logs failures and carries on.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, data event.CartUpdatedData) error
	PublishCartCleared(ctx context.Context) error
}

// Store owns the session's cart. Every mutation is fully persisted to the
// durable slot before returning, so a reload always observes a consistent
// cart. Mutations are keyed by product ID; insertion order is kept only
// for display. Exactly one logical writer exists per session, the mutex
// serializes call sites sharing the store.
type Store struct {
	mu     sync.Mutex
	slot   Slot
	events EventPublisher
	logger *slog.Logger
}

// NewStore creates a cart store backed by the given slot.
func NewStore(slot Slot, events EventPublisher, logger *slog.Logger) *Store {
	return &Store{
		slot:   slot,
		events: events,
		logger: logger,
	}
}

// Load returns a snapshot of the persisted cart. A missing or corrupt
// slot value is an empty cart, never an error.
func (s *Store) Load(ctx context.Context) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slot.Load(ctx)
}

// Add puts qty units of the product into the cart. If a line with the
// same product ID exists its quantity is incremented; otherwise a new
// line is appended carrying the product's display fields.
func (s *Store) Add(ctx context.Context, p Product, qty int) (*Cart, error) {
	if p.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if qty < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}
	if p.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.slot.Load(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load cart")
	}

	if i := cart.FindItem(p.ProductID); i >= 0 {
		cart.Items[i].Quantity += qty
	} else {
		cart.Items = append(cart.Items, LineItem{
			ProductID: p.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  qty,
		})
	}

	if err := s.slot.Save(ctx, cart); err != nil {
		return nil, apperrors.Wrap(err, "save cart")
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("product_id", p.ProductID),
		slog.Int("quantity", qty),
	)

	return cart, nil
}

// UpdateQuantity adjusts the line for productID by delta. A resulting
// quantity of zero or below removes the line entirely; no zero or
// negative quantity is ever persisted.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, delta int) (*Cart, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.slot.Load(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load cart")
	}

	i := cart.FindItem(productID)
	if i < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}

	cart.Items[i].Quantity += delta
	if cart.Items[i].Quantity <= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	}

	if err := s.slot.Save(ctx, cart); err != nil {
		return nil, apperrors.Wrap(err, "save cart")
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "cart quantity updated",
		slog.String("product_id", productID),
		slog.Int("delta", delta),
	)

	return cart, nil
}

// Remove deletes the line for productID unconditionally.
func (s *Store) Remove(ctx context.Context, productID string) (*Cart, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.slot.Load(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "load cart")
	}

	i := cart.FindItem(productID)
	if i < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	if err := s.slot.Save(ctx, cart); err != nil {
		return nil, apperrors.Wrap(err, "save cart")
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("product_id", productID),
	)

	return cart, nil
}

// Clear empties the cart. Called exactly once per successful order
// placement; it persists before returning.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slot.Clear(ctx); err != nil {
		return apperrors.Wrap(err, "clear cart")
	}

	if err := s.events.PublishCartCleared(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared")
	return nil
}

// Total recomputes the cart total from the persisted state; it is never
// cached.
func (s *Store) Total(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.slot.Load(ctx)
	if err != nil {
		return 0, apperrors.Wrap(err, "load cart")
	}
	return cart.Total(), nil
}

// publishUpdated emits a cart.updated event; failures are logged, never
// propagated.
func (s *Store) publishUpdated(ctx context.Context, cart *Cart) {
	items := make([]event.CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = event.CartItemData{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data := event.CartUpdatedData{
		Items:       items,
		ItemCount:   cart.ItemCount(),
		TotalAmount: cart.Total(),
	}

	if err := s.events.PublishCartUpdated(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("error", err.Error()),
		)
	}
}
