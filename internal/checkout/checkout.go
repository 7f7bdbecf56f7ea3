package checkout

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/openmerce/storefront/internal/cart"
	"github.com/openmerce/storefront/internal/event"
	"github.com/openmerce/storefront/internal/orders"
	"github.com/openmerce/storefront/internal/session"
	apperrors "github.com/openmerce/storefront/pkg/errors"
	"github.com/openmerce/storefront/pkg/validator"
)

// State is the checkout flow's submission state. The flow always returns
// to StateIdle after an attempt, successful or not; there is no lockout
// beyond the one in-flight request.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// ShippingForm holds the free-text shipping fields. Only the address is
// validated client-side; name and phone pass through as entered.
type ShippingForm struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address" validate:"required"`
}

// OrderCreator submits an order-creation request.
type OrderCreator interface {
	Create(ctx context.Context, request orders.Request) (*orders.Order, error)
}

// EventPublisher emits the order.placed event; publishing is best-effort.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, data event.OrderPlacedData) error
}

// Flow converts the cart into a placed order. Preconditions are checked
// in a fixed sequence before any network call: session credential, then
// shipping address, then a non-empty cart. On success the cart is cleared
// exactly once and the user is navigated to the orders view; on failure
// the cart and form are left untouched so the user can retry.
type Flow struct {
	store   *cart.Store
	creator OrderCreator
	session *session.Session
	events  EventPublisher
	logger  *slog.Logger
	state   atomic.Int32
}

// NewFlow creates a checkout flow.
func NewFlow(store *cart.Store, creator OrderCreator, sess *session.Session, events EventPublisher, logger *slog.Logger) *Flow {
	return &Flow{
		store:   store,
		creator: creator,
		session: sess,
		events:  events,
		logger:  logger,
	}
}

// State returns the current submission state; views disable the submit
// trigger while it is not StateIdle.
func (f *Flow) State() State {
	return State(f.state.Load())
}

// PlaceOrder runs one submission attempt. A second call while an attempt
// is in flight is rejected without touching the network.
func (f *Flow) PlaceOrder(ctx context.Context, form ShippingForm) error {
	if !f.state.CompareAndSwap(int32(StateIdle), int32(StateValidating)) {
		return apperrors.Conflict("an order submission is already in progress")
	}
	defer f.state.Store(int32(StateIdle))

	if _, ok := f.session.Token(ctx); !ok {
		f.session.ExpireAuth(ctx)
		return apperrors.Unauthorized("login required")
	}

	if err := validator.Validate(form); err != nil {
		f.session.Notifier().Error("Address required")
		return apperrors.InvalidInput(err.Error())
	}

	snapshot, err := f.store.Load(ctx)
	if err != nil {
		f.session.Notifier().Error("Order failed")
		return apperrors.Wrap(err, "load cart")
	}
	if snapshot.IsEmpty() {
		f.session.Notifier().Error("Cart empty")
		return apperrors.InvalidInput("cart is empty")
	}

	f.state.Store(int32(StateSubmitting))

	request := buildRequest(form, snapshot)

	created, err := f.creator.Create(ctx, request)
	if err != nil {
		// Credential rejection invalidates the session; everything else
		// is a retryable failure that keeps the cart and form intact.
		f.session.Fail(ctx, err, "Order failed")
		return err
	}

	f.session.Notifier().Success("Order placed successfully")

	if err := f.store.Clear(ctx); err != nil {
		f.logger.ErrorContext(ctx, "failed to clear cart after order placement",
			slog.String("order_id", created.OrderID),
			slog.String("error", err.Error()),
		)
	}

	f.publishPlaced(ctx, created, request)

	f.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", created.OrderID),
		slog.Int("items", len(request.Items)),
	)

	f.session.Navigator().ToOrders()
	return nil
}

// buildRequest strips each cart line down to product ID and quantity; the
// client-held price, name and image never reach the wire.
func buildRequest(form ShippingForm, snapshot *cart.Cart) orders.Request {
	items := make([]orders.RequestItem, len(snapshot.Items))
	for i, item := range snapshot.Items {
		items[i] = orders.RequestItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	return orders.Request{
		CustomerName: form.Name,
		Phone:        form.Phone,
		Address:      form.Address,
		Items:        items,
	}
}

// publishPlaced emits an order.placed event; failures are logged, never
// propagated.
func (f *Flow) publishPlaced(ctx context.Context, created *orders.Order, request orders.Request) {
	items := make([]event.OrderItemData, len(request.Items))
	for i, item := range request.Items {
		items[i] = event.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	data := event.OrderPlacedData{
		OrderID:      created.OrderID,
		CustomerName: request.CustomerName,
		Items:        items,
		Total:        created.Total,
		Status:       created.Status,
	}

	if err := f.events.PublishOrderPlaced(ctx, data); err != nil {
		f.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", created.OrderID),
			slog.String("error", err.Error()),
		)
	}
}
