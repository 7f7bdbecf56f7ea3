package view

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/openmerce/storefront/internal/cart"
	"github.com/openmerce/storefront/internal/session"
)

// CartView renders the cart and forwards quantity mutations to the store.
// It holds no cart state of its own; every render reloads from the store
// so the display always reflects the persisted cart.
type CartView struct {
	store   *cart.Store
	session *session.Session
	money   *Money
	out     io.Writer
}

// NewCartView creates a cart view writing to out.
func NewCartView(store *cart.Store, sess *session.Session, money *Money, out io.Writer) *CartView {
	return &CartView{
		store:   store,
		session: sess,
		money:   money,
		out:     out,
	}
}

// Render writes the current cart as a table. An empty cart renders a
// placeholder row instead of an empty table.
func (v *CartView) Render(ctx context.Context) error {
	c, err := v.store.Load(ctx)
	if err != nil {
		v.session.Fail(ctx, err, "Failed to load cart")
		return err
	}

	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tPRICE\tQTY\tSUBTOTAL")

	if c.IsEmpty() {
		fmt.Fprintln(tw, "Your cart is empty\t\t\t")
		return tw.Flush()
	}

	for _, item := range c.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			item.Name,
			v.money.Minor(item.Price),
			item.Quantity,
			v.money.Minor(item.Price*int64(item.Quantity)),
		)
	}
	fmt.Fprintf(tw, "TOTAL\t\t%d\t%s\n", c.ItemCount(), v.money.Minor(c.Total()))

	return tw.Flush()
}

// Increment raises the quantity of a line by one.
func (v *CartView) Increment(ctx context.Context, productID string) error {
	if _, err := v.store.UpdateQuantity(ctx, productID, 1); err != nil {
		v.session.Fail(ctx, err, "Failed to update cart")
		return err
	}
	return v.Render(ctx)
}

// Decrement lowers the quantity of a line by one; reaching zero removes
// the line.
func (v *CartView) Decrement(ctx context.Context, productID string) error {
	if _, err := v.store.UpdateQuantity(ctx, productID, -1); err != nil {
		v.session.Fail(ctx, err, "Failed to update cart")
		return err
	}
	return v.Render(ctx)
}

// Remove deletes a line regardless of its quantity.
func (v *CartView) Remove(ctx context.Context, productID string) error {
	if _, err := v.store.Remove(ctx, productID); err != nil {
		v.session.Fail(ctx, err, "Failed to update cart")
		return err
	}
	return v.Render(ctx)
}
