package orders

import "time"

// Known order lifecycle statuses. The vocabulary is owned by the backend
// and may grow; unknown values are preserved and displayed verbatim, never
// rejected.
const (
	StatusCreated    = "created"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// KnownStatuses returns the lifecycle statuses this client knows about,
// in display order. Administrators may still submit values outside this
// list if the backend accepts them.
func KnownStatuses() []string {
	return []string{
		StatusCreated,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
	}
}

// OrderItem is one line of a backend order snapshot.
type OrderItem struct {
	ProductID string  `json:"productID"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Order is the backend-authoritative, priced, status-bearing record. The
// client holds read-only snapshots; only the backend mutates an order
// after creation.
type Order struct {
	OrderID      string      `json:"orderID"`
	Items        []OrderItem `json:"items"`
	CustomerName string      `json:"customerName"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Total        float64     `json:"total"`
	Status       string      `json:"status"`
	Date         time.Time   `json:"date"`
}

// ItemCount returns the number of lines; a snapshot without items counts
// as zero rather than failing.
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// RequestItem is one line of an order-creation request: identifier and
// quantity only.
type RequestItem struct {
	ProductID string `json:"productID" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// Request is the minimal order-creation payload. Price, name and image
// are deliberately absent; the backend is the source of truth for pricing
// and computes totals from product ID and quantity.
type Request struct {
	CustomerName string        `json:"customerName"`
	Phone        string        `json:"phone"`
	Address      string        `json:"address" validate:"required"`
	Items        []RequestItem `json:"items" validate:"required,min=1,dive"`
}
