package cart

import "context"

// Slot is the durable local key-value slot holding the serialized cart:
// one cart per client, written atomically on every mutation.
type Slot interface {
	// Load returns the persisted cart. A missing or corrupt value loads
	// as an empty cart, never an error the caller must handle.
	Load(ctx context.Context) (*Cart, error)

	// Save persists the cart in a single write; readers never observe a
	// partial state.
	Save(ctx context.Context, cart *Cart) error

	// Clear removes the persisted cart.
	Clear(ctx context.Context) error
}
