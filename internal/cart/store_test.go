package cart

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmerce/storefront/internal/event"
	apperrors "github.com/openmerce/storefront/pkg/errors"
)

// memorySlot is an in-memory Slot with optional error injection.
type memorySlot struct {
	cart    *Cart
	saveErr error
	loadErr error
}

func (s *memorySlot) Load(ctx context.Context) (*Cart, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.cart == nil {
		return Empty(), nil
	}
	cpy := *s.cart
	cpy.Items = append([]LineItem{}, s.cart.Items...)
	return &cpy, nil
}

func (s *memorySlot) Save(ctx context.Context, c *Cart) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.cart = c
	return nil
}

func (s *memorySlot) Clear(ctx context.Context) error {
	s.cart = nil
	return nil
}

// recordingPublisher captures emitted events.
type recordingPublisher struct {
	updated []event.CartUpdatedData
	cleared int
	err     error
}

func (p *recordingPublisher) PublishCartUpdated(ctx context.Context, data event.CartUpdatedData) error {
	if p.err != nil {
		return p.err
	}
	p.updated = append(p.updated, data)
	return nil
}

func (p *recordingPublisher) PublishCartCleared(ctx context.Context) error {
	if p.err != nil {
		return p.err
	}
	p.cleared++
	return nil
}

func newTestStore(slot Slot, pub EventPublisher) *Store {
	return NewStore(slot, pub, slog.New(slog.DiscardHandler))
}

func TestStoreAddNewLine(t *testing.T) {
	slot := &memorySlot{}
	pub := &recordingPublisher{}
	store := newTestStore(slot, pub)

	c, err := store.Add(context.Background(), Product{ProductID: "p1", Name: "Widget", Price: 1500}, 2)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, "Widget", c.Items[0].Name)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, int64(1500), c.Items[0].Price)

	require.Len(t, pub.updated, 1)
	assert.Equal(t, int64(3000), pub.updated[0].TotalAmount)
}

func TestStoreAddMergesByProductID(t *testing.T) {
	slot := &memorySlot{}
	store := newTestStore(slot, &recordingPublisher{})
	ctx := context.Background()

	_, err := store.Add(ctx, Product{ProductID: "p1", Name: "Widget", Price: 1500}, 2)
	require.NoError(t, err)

	c, err := store.Add(ctx, Product{ProductID: "p1", Name: "Widget", Price: 1500}, 3)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestStoreAddValidation(t *testing.T) {
	store := newTestStore(&memorySlot{}, &recordingPublisher{})
	ctx := context.Background()

	_, err := store.Add(ctx, Product{ProductID: "", Price: 100}, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = store.Add(ctx, Product{ProductID: "p1", Price: 100}, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = store.Add(ctx, Product{ProductID: "p1", Price: -1}, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestStoreUpdateQuantity(t *testing.T) {
	slot := &memorySlot{}
	store := newTestStore(slot, &recordingPublisher{})
	ctx := context.Background()

	_, err := store.Add(ctx, Product{ProductID: "p1", Price: 100}, 2)
	require.NoError(t, err)

	c, err := store.UpdateQuantity(ctx, "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Items[0].Quantity)

	c, err = store.UpdateQuantity(ctx, "p1", -1)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestStoreUpdateQuantityRemovesAtZero(t *testing.T) {
	slot := &memorySlot{}
	store := newTestStore(slot, &recordingPublisher{})
	ctx := context.Background()

	_, err := store.Add(ctx, Product{ProductID: "p1", Price: 100}, 2)
	require.NoError(t, err)

	c, err := store.UpdateQuantity(ctx, "p1", -2)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, persisted.IsEmpty())
}

func TestStoreUpdateQuantityBelowZeroRemoves(t *testing.T) {
	store := newTestStore(&memorySlot{}, &recordingPublisher{})
	ctx := context.Background()

	_, err := store.Add(ctx, Product{ProductID: "p1", Price: 100}, 1)
	require.NoError(t, err)

	c, err := store.UpdateQuantity(ctx, "p1", -5)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestStoreUpdateQuantityMissingLine(t *testing.T) {
	store := newTestStore(&memorySlot{}, &recordingPublisher{})

	_, err := store.UpdateQuantity(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStoreRemove(t *testing.T) {
	store := newTestStore(&memorySlot{}, &recordingPublisher{})
	ctx := context.Background()

	_, err := store.Add(ctx, Product{ProductID: "p1", Price: 100}, 4)
	require.NoError(t, err)

	c, err := store.Remove(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestStoreClearPublishesEvent(t *testing.T) {
	slot := &memorySlot{}
	pub := &recordingPublisher{}
	store := newTestStore(slot, pub)
	ctx := context.Background()

	_, err := store.Add(ctx, Product{ProductID: "p1", Price: 100}, 1)
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 1, pub.cleared)

	c, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestStoreSaveFailureSurfaces(t *testing.T) {
	slot := &memorySlot{saveErr: errors.New("disk full")}
	store := newTestStore(slot, &recordingPublisher{})

	_, err := store.Add(context.Background(), Product{ProductID: "p1", Price: 100}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save cart")
}

func TestStorePublishFailureDoesNotBlockMutation(t *testing.T) {
	slot := &memorySlot{}
	pub := &recordingPublisher{err: errors.New("broker down")}
	store := newTestStore(slot, pub)

	c, err := store.Add(context.Background(), Product{ProductID: "p1", Price: 100}, 1)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}

func TestStoreTotal(t *testing.T) {
	store := newTestStore(&memorySlot{}, &recordingPublisher{})
	ctx := context.Background()

	_, err := store.Add(ctx, Product{ProductID: "p1", Price: 1500}, 2)
	require.NoError(t, err)
	_, err = store.Add(ctx, Product{ProductID: "p2", Price: 250}, 1)
	require.NoError(t, err)

	total, err := store.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3250), total)
}
