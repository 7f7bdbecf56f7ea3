package cart

// LineItem is one product entry within the cart. Quantity is always >= 1;
// a line whose quantity drops to zero is removed, never stored.
type LineItem struct {
	ProductID string `json:"productID"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // minor currency units, display-only; the backend reprices on order creation
	ImageURL  string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Cart is the client-held, pre-submission collection of line items. Items
// keep their insertion order for display and are unique by product ID.
type Cart struct {
	Items []LineItem `json:"items"`
}

// Empty returns a cart with no items.
func Empty() *Cart {
	return &Cart{Items: []LineItem{}}
}

// Total calculates the sum of unit price times quantity over all lines
// (in minor units).
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FindItem returns the index of the line matching the given product ID,
// or -1 if not found.
func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
