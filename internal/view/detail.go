package view

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/openmerce/storefront/internal/orders"
	"github.com/openmerce/storefront/internal/session"
	apperrors "github.com/openmerce/storefront/pkg/errors"
)

// StatusUpdater performs the administrator status mutation.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID, status string) error
}

// OrderDetailPanel shows a single order and, for administrators, drives
// status changes. The panel holds a read-only copy of the order; a status
// change goes to the backend and then asks the owning list to refresh,
// the local copy is never mutated directly.
type OrderDetailPanel struct {
	updater StatusUpdater
	session *session.Session
	money   *Money
	out     io.Writer
	refresh func(ctx context.Context) error

	order *orders.Order
	admin bool
}

// NewOrderDetailPanel creates a detail panel. refresh is called after a
// successful status change and when the panel closes, so the list view
// behind it picks up backend-side changes.
func NewOrderDetailPanel(updater StatusUpdater, sess *session.Session, money *Money, out io.Writer, refresh func(ctx context.Context) error) *OrderDetailPanel {
	return &OrderDetailPanel{
		updater: updater,
		session: sess,
		money:   money,
		out:     out,
		refresh: refresh,
	}
}

// Open shows the panel for a copy of the given order.
func (p *OrderDetailPanel) Open(o orders.Order, admin bool) {
	p.order = &o
	p.admin = admin
}

// Close dismisses the panel and refreshes the underlying list.
func (p *OrderDetailPanel) Close(ctx context.Context) error {
	p.order = nil
	p.admin = false
	if p.refresh != nil {
		return p.refresh(ctx)
	}
	return nil
}

// Order returns the displayed order, or nil when the panel is closed.
func (p *OrderDetailPanel) Order() *orders.Order {
	return p.order
}

// SetStatus submits an administrator status change for the displayed
// order. On success the list refreshes so the panel's next open shows the
// backend's view; on failure the displayed copy is untouched.
func (p *OrderDetailPanel) SetStatus(ctx context.Context, status string) error {
	if p.order == nil {
		return apperrors.InvalidInput("no order is open")
	}
	if !p.admin {
		return apperrors.Forbidden("status changes require an administrator session")
	}

	if err := p.updater.UpdateStatus(ctx, p.order.OrderID, status); err != nil {
		p.session.Fail(ctx, err, "Failed to update order status")
		return err
	}

	p.session.Notifier().Success("Order status updated")

	if p.refresh != nil {
		return p.refresh(ctx)
	}
	return nil
}

// Render writes the order details, including the per-line breakdown.
func (p *OrderDetailPanel) Render() error {
	if p.order == nil {
		return nil
	}

	o := p.order
	fmt.Fprintf(p.out, "Order %s\n", o.OrderID)
	fmt.Fprintf(p.out, "Customer: %s\n", o.CustomerName)
	if o.Email != "" {
		fmt.Fprintf(p.out, "Email: %s\n", o.Email)
	}
	if o.Phone != "" {
		fmt.Fprintf(p.out, "Phone: %s\n", o.Phone)
	}
	fmt.Fprintf(p.out, "Address: %s\n", o.Address)
	fmt.Fprintf(p.out, "Status: %s\n", o.Status)
	fmt.Fprintf(p.out, "Date: %s\n", formatDate(o.Date))

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tPRICE\tQTY")
	for _, item := range o.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", item.Name, p.money.Amount(item.Price), item.Quantity)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(p.out, "Total: %s\n", p.money.Amount(o.Total))
	return nil
}
