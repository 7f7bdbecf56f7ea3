package view

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmerce/storefront/internal/orders"
	"github.com/openmerce/storefront/internal/session"
	apperrors "github.com/openmerce/storefront/pkg/errors"
)

type stubCreds struct {
	token string
}

func (s *stubCreds) Get(ctx context.Context) (string, error) {
	if s.token == "" {
		return "", apperrors.NotFound("credential", "test")
	}
	return s.token, nil
}

func (s *stubCreds) Set(ctx context.Context, token string) error { s.token = token; return nil }
func (s *stubCreds) Clear(ctx context.Context) error             { s.token = ""; return nil }

type stubNav struct {
	logins, orders int
}

func (n *stubNav) ToLogin()  { n.logins++ }
func (n *stubNav) ToOrders() { n.orders++ }

type stubNotify struct {
	successes, errs []string
}

func (n *stubNotify) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *stubNotify) Error(msg string)   { n.errs = append(n.errs, msg) }

type stubLister struct {
	mu      sync.Mutex
	results [][]orders.Order
	errs    []error
	calls   int
	block   chan struct{}
}

func (l *stubLister) List(ctx context.Context) ([]orders.Order, error) {
	l.mu.Lock()
	i := l.calls
	l.calls++
	block := l.block
	l.mu.Unlock()

	if block != nil && i == 0 {
		<-block
	}

	var err error
	if i < len(l.errs) {
		err = l.errs[i]
	}
	var result []orders.Order
	if i < len(l.results) {
		result = l.results[i]
	}
	return result, err
}

type listFixture struct {
	view   *OrderListView
	lister *stubLister
	creds  *stubCreds
	nav    *stubNav
	notify *stubNotify
	out    *bytes.Buffer
}

func newListFixture(lister *stubLister) *listFixture {
	creds := &stubCreds{token: "jwt-abc"}
	nav := &stubNav{}
	notify := &stubNotify{}
	sess := session.New(creds, nav, notify, slog.New(slog.DiscardHandler))
	out := &bytes.Buffer{}

	return &listFixture{
		view:   NewOrderListView(lister, sess, NewMoney("USD"), out),
		lister: lister,
		creds:  creds,
		nav:    nav,
		notify: notify,
		out:    out,
	}
}

func TestOrderListActivateLoads(t *testing.T) {
	lister := &stubLister{results: [][]orders.Order{{
		{OrderID: "o1", CustomerName: "Nimal", Total: 45.5, Status: orders.StatusShipped},
	}}}
	f := newListFixture(lister)

	require.NoError(t, f.view.Activate(context.Background()))

	require.Len(t, f.view.Orders(), 1)
	assert.False(t, f.view.Loading())
}

func TestOrderListInactiveDoesNotFetch(t *testing.T) {
	lister := &stubLister{}
	f := newListFixture(lister)

	require.NoError(t, f.view.Load(context.Background()))
	assert.Equal(t, 0, lister.calls)
}

func TestOrderListRenderEmpty(t *testing.T) {
	f := newListFixture(&stubLister{results: [][]orders.Order{{}}})

	require.NoError(t, f.view.Activate(context.Background()))
	require.NoError(t, f.view.Render())

	assert.Contains(t, f.out.String(), "No orders found")
}

func TestOrderListRenderRows(t *testing.T) {
	f := newListFixture(&stubLister{results: [][]orders.Order{{
		{OrderID: "o1", CustomerName: "Nimal", Total: 45.5, Status: orders.StatusShipped,
			Date: time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)},
		{OrderID: "o2", CustomerName: "Kamala", Total: 10, Status: orders.StatusCreated},
	}}})

	require.NoError(t, f.view.Activate(context.Background()))
	require.NoError(t, f.view.Render())

	output := f.out.String()
	assert.Contains(t, output, "o1")
	assert.Contains(t, output, "Mar 14, 2025")
	assert.Contains(t, output, "shipped")
	// zero date renders as a dash
	assert.Contains(t, output, "-")
	assert.NotContains(t, output, "No orders found")
}

func TestOrderListRenderNilItemsCountsZero(t *testing.T) {
	f := newListFixture(&stubLister{results: [][]orders.Order{{
		{OrderID: "o1", Items: nil, Total: 10},
	}}})

	require.NoError(t, f.view.Activate(context.Background()))
	require.NoError(t, f.view.Render())

	assert.Contains(t, f.out.String(), "o1")
}

func TestOrderListFailureClearsLoading(t *testing.T) {
	lister := &stubLister{errs: []error{apperrors.ServiceUnavailable("backend down")}}
	f := newListFixture(lister)

	err := f.view.Activate(context.Background())
	require.Error(t, err)

	assert.False(t, f.view.Loading())
	assert.Contains(t, f.notify.errs, "backend down")
	assert.Equal(t, 0, f.nav.logins)
}

func TestOrderListUnauthorizedClearsViewAndSession(t *testing.T) {
	lister := &stubLister{
		results: [][]orders.Order{{{OrderID: "o1"}}, nil},
		errs:    []error{nil, apperrors.Unauthorized("session expired")},
	}
	f := newListFixture(lister)

	require.NoError(t, f.view.Activate(context.Background()))
	require.Len(t, f.view.Orders(), 1)

	err := f.view.Refresh(context.Background())
	require.Error(t, err)

	assert.Empty(t, f.view.Orders())
	assert.Empty(t, f.creds.token)
	assert.Equal(t, 1, f.nav.logins)
}

func TestOrderListStaleResponseDiscarded(t *testing.T) {
	lister := &stubLister{
		results: [][]orders.Order{
			{{OrderID: "stale"}},
			{{OrderID: "fresh"}},
		},
		block: make(chan struct{}),
	}
	f := newListFixture(lister)

	// The first load blocks inside the lister; a newer load completes
	// before the old response arrives, which must then be discarded.
	staleDone := make(chan error, 1)
	go func() {
		staleDone <- f.view.Activate(context.Background())
	}()

	require.Eventually(t, func() bool {
		return lister.callCount() == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, f.view.Load(context.Background()))
	require.Len(t, f.view.Orders(), 1)
	assert.Equal(t, "fresh", f.view.Orders()[0].OrderID)

	close(lister.block)
	require.NoError(t, <-staleDone)

	assert.Equal(t, "fresh", f.view.Orders()[0].OrderID)
}

func TestOrderListDeactivateDiscardsInFlight(t *testing.T) {
	lister := &stubLister{
		results: [][]orders.Order{{{OrderID: "late"}}},
		block:   make(chan struct{}),
	}
	f := newListFixture(lister)

	loadDone := make(chan error, 1)
	go func() {
		loadDone <- f.view.Activate(context.Background())
	}()

	require.Eventually(t, func() bool {
		return lister.callCount() == 1
	}, time.Second, time.Millisecond)

	f.view.Deactivate()
	assert.False(t, f.view.Loading())

	close(lister.block)

	require.NoError(t, <-loadDone)
	assert.Empty(t, f.view.Orders())
	assert.False(t, f.view.Loading())
}

func TestOrderListLoadingClearsAfterDeactivatedFetchReturns(t *testing.T) {
	lister := &stubLister{
		results: [][]orders.Order{{{OrderID: "late"}}},
		block:   make(chan struct{}),
	}
	f := newListFixture(lister)

	loadDone := make(chan error, 1)
	go func() {
		loadDone <- f.view.Activate(context.Background())
	}()

	require.Eventually(t, func() bool {
		return f.view.Loading()
	}, time.Second, time.Millisecond)

	f.view.Deactivate()
	close(lister.block)
	require.NoError(t, <-loadDone)

	// nothing is in flight anymore, so the view must not report loading
	assert.False(t, f.view.Loading())
}

func (l *stubLister) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
