package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/openmerce/storefront/internal/cart"
)

// Slot implements cart.Slot on a single Redis key. The cart is stored as
// one JSON value so every save is a single atomic write.
type Slot struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewSlot creates a Redis-backed cart slot.
func NewSlot(client *redis.Client, key string, logger *slog.Logger) *Slot {
	return &Slot{
		client: client,
		key:    key,
		logger: logger,
	}
}

// Load returns the persisted cart. A missing key or a value that does not
// parse loads as an empty cart; corrupt data is logged and discarded
// rather than surfaced.
func (s *Slot) Load(ctx context.Context) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return cart.Empty(), nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		s.logger.WarnContext(ctx, "persisted cart is corrupt, treating as empty",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return cart.Empty(), nil
	}
	if c.Items == nil {
		c.Items = []cart.LineItem{}
	}

	return &c, nil
}

// Save persists the cart as a single SET.
func (s *Slot) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}

	return nil
}

// Clear removes the persisted cart.
func (s *Slot) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
