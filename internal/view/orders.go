package view

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/openmerce/storefront/internal/orders"
	"github.com/openmerce/storefront/internal/session"
	apperrors "github.com/openmerce/storefront/pkg/errors"
)

// OrderLister fetches the order collection visible to the current
// credential.
type OrderLister interface {
	List(ctx context.Context) ([]orders.Order, error)
}

// OrderListView displays the order history. The view only fetches while
// active; each Load is stamped with a generation so a response that
// arrives after a newer load, or after deactivation, is discarded instead
// of overwriting fresher data.
type OrderListView struct {
	lister  OrderLister
	session *session.Session
	money   *Money
	out     io.Writer

	mu      sync.Mutex
	orders  []orders.Order
	loading bool
	active  bool
	gen     uint64
}

// NewOrderListView creates an order list view writing to out.
func NewOrderListView(lister OrderLister, sess *session.Session, money *Money, out io.Writer) *OrderListView {
	return &OrderListView{
		lister:  lister,
		session: sess,
		money:   money,
		out:     out,
	}
}

// Activate marks the view visible and triggers an initial load.
func (v *OrderListView) Activate(ctx context.Context) error {
	v.mu.Lock()
	v.active = true
	v.mu.Unlock()
	return v.Load(ctx)
}

// Deactivate marks the view hidden. In-flight loads started before this
// point will discard their responses; nothing is loading from the user's
// point of view once the view is gone.
func (v *OrderListView) Deactivate() {
	v.mu.Lock()
	v.active = false
	v.loading = false
	v.gen++
	v.mu.Unlock()
}

// Load fetches the order list and applies the response unless a newer
// load has started in the meantime. The loading flag clears on every
// path, success or failure.
func (v *OrderListView) Load(ctx context.Context) error {
	v.mu.Lock()
	if !v.active {
		v.mu.Unlock()
		return nil
	}
	v.gen++
	gen := v.gen
	v.loading = true
	v.mu.Unlock()

	result, err := v.lister.List(ctx)

	v.mu.Lock()
	stale := gen != v.gen || !v.active
	// The flag stays set only while a newer load owns it; an inactive
	// view never reports loading.
	if gen == v.gen || !v.active {
		v.loading = false
	}
	if !stale && err == nil {
		v.orders = result
	}
	if !stale && err != nil && apperrors.IsAuthExpired(err) {
		v.orders = nil
	}
	v.mu.Unlock()

	if stale {
		return nil
	}
	if err != nil {
		v.session.Fail(ctx, err, "Failed to load orders")
		return err
	}
	return nil
}

// Refresh re-fetches the list; used after an administrator status change.
func (v *OrderListView) Refresh(ctx context.Context) error {
	return v.Load(ctx)
}

// Orders returns the currently displayed snapshot.
func (v *OrderListView) Orders() []orders.Order {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.orders
}

// Loading reports whether a fetch is in flight.
func (v *OrderListView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Render writes the order table. An empty collection renders a single
// placeholder row; an order without items shows a count of zero.
func (v *OrderListView) Render() error {
	v.mu.Lock()
	snapshot := v.orders
	v.mu.Unlock()

	fmt.Fprintf(v.out, "%d orders\n", len(snapshot))

	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tITEMS\tCUSTOMER\tEMAIL\tPHONE\tADDRESS\tTOTAL\tSTATUS\tDATE")

	if len(snapshot) == 0 {
		fmt.Fprintln(tw, "No orders found\t\t\t\t\t\t\t\t")
		return tw.Flush()
	}

	for i := range snapshot {
		o := &snapshot[i]
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.OrderID,
			o.ItemCount(),
			o.CustomerName,
			o.Email,
			o.Phone,
			o.Address,
			v.money.Amount(o.Total),
			o.Status,
			formatDate(o.Date),
		)
	}

	return tw.Flush()
}
