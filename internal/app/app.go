package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/openmerce/storefront/internal/cart"
	cartredis "github.com/openmerce/storefront/internal/cart/redis"
	"github.com/openmerce/storefront/internal/checkout"
	"github.com/openmerce/storefront/internal/config"
	"github.com/openmerce/storefront/internal/event"
	"github.com/openmerce/storefront/internal/orders"
	"github.com/openmerce/storefront/internal/session"
	sessionredis "github.com/openmerce/storefront/internal/session/redis"
	"github.com/openmerce/storefront/internal/view"
	"github.com/openmerce/storefront/pkg/httpclient"
	pkgkafka "github.com/openmerce/storefront/pkg/kafka"
)

// errQuit signals a clean exit requested from the command loop.
var errQuit = errors.New("quit")

// App wires the storefront together: durable state in Redis, the order
// backend client behind a circuit breaker, the event producer, and the
// terminal surfaces the flows render to.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	redis    *redis.Client
	producer *pkgkafka.Producer

	session  *session.Session
	store    *cart.Store
	client   *orders.Client
	checkout *checkout.Flow

	cartView   *view.CartView
	ordersView *view.OrderListView
	detail     *view.OrderDetailPanel

	in  io.Reader
	out io.Writer
}

// terminalNotifier prints transient notifications to the output stream.
type terminalNotifier struct {
	out io.Writer
}

func (n *terminalNotifier) Success(msg string) { fmt.Fprintf(n.out, "✓ %s\n", msg) }
func (n *terminalNotifier) Error(msg string)   { fmt.Fprintf(n.out, "✗ %s\n", msg) }

// terminalNavigator tracks the active screen; redirects print where the
// user landed.
type terminalNavigator struct {
	out    io.Writer
	screen string
}

func (n *terminalNavigator) ToLogin() {
	n.screen = "login"
	fmt.Fprintln(n.out, "→ login")
}

func (n *terminalNavigator) ToOrders() {
	n.screen = "orders"
	fmt.Fprintln(n.out, "→ orders")
}

// New builds the application from configuration. It verifies the Redis
// connection before returning; an unreachable broker only degrades event
// publishing and does not block startup.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) (*App, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	events := event.NewProducer(producer, uuid.NewString(), logger)

	notifier := &terminalNotifier{out: out}
	navigator := &terminalNavigator{out: out}

	creds := sessionredis.NewCredentialStore(rdb, cfg.CredentialKey, cfg.SessionTTL())
	sess := session.New(creds, navigator, notifier, logger)

	slot := cartredis.NewSlot(rdb, cfg.CartKey, logger)
	store := cart.NewStore(slot, events, logger)

	// Order placement must never repeat on its own; a failed submission
	// is retried only by an explicit user action.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout()
	httpCfg.MaxRetries = 0
	doer := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("orders-backend"),
		logger,
	)
	client := orders.NewClient(doer, cfg.OrdersAPIURL, creds, logger)

	flow := checkout.NewFlow(store, client, sess, events, logger)

	money := view.NewMoney(cfg.CurrencyCode)
	cartView := view.NewCartView(store, sess, money, out)
	ordersView := view.NewOrderListView(client, sess, money, out)
	detail := view.NewOrderDetailPanel(client, sess, money, out, ordersView.Refresh)

	return &App{
		cfg:        cfg,
		logger:     logger,
		redis:      rdb,
		producer:   producer,
		session:    sess,
		store:      store,
		client:     client,
		checkout:   flow,
		cartView:   cartView,
		ordersView: ordersView,
		detail:     detail,
		in:         in,
		out:        out,
	}, nil
}

// Run reads commands until the input closes or the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "storefront ready; type 'help' for commands")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := a.dispatch(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				a.logger.DebugContext(ctx, "command failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (a *App) dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "help":
		a.printHelp()
		return nil

	case "login":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "usage: login <token>")
			return nil
		}
		if err := a.session.Login(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "logged in")
		return nil

	case "logout":
		a.session.ExpireAuth(ctx)
		return nil

	case "add":
		if len(args) < 4 {
			fmt.Fprintln(a.out, "usage: add <productID> <name> <price-minor> <qty>")
			return nil
		}
		price, err := strconv.ParseInt(args[len(args)-2], 10, 64)
		if err != nil {
			fmt.Fprintln(a.out, "price must be an integer amount in minor units")
			return nil
		}
		qty, err := strconv.Atoi(args[len(args)-1])
		if err != nil {
			fmt.Fprintln(a.out, "quantity must be an integer")
			return nil
		}
		p := cart.Product{
			ProductID: args[0],
			Name:      strings.Join(args[1:len(args)-2], " "),
			Price:     price,
		}
		if _, err := a.store.Add(ctx, p, qty); err != nil {
			a.session.Fail(ctx, err, "Failed to update cart")
			return err
		}
		return a.cartView.Render(ctx)

	case "cart":
		return a.cartView.Render(ctx)

	case "inc":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "usage: inc <productID>")
			return nil
		}
		return a.cartView.Increment(ctx, args[0])

	case "dec":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "usage: dec <productID>")
			return nil
		}
		return a.cartView.Decrement(ctx, args[0])

	case "remove":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "usage: remove <productID>")
			return nil
		}
		return a.cartView.Remove(ctx, args[0])

	case "checkout":
		if len(args) < 3 {
			fmt.Fprintln(a.out, "usage: checkout <name> <phone> <address...>")
			return nil
		}
		form := checkout.ShippingForm{
			Name:    args[0],
			Phone:   args[1],
			Address: strings.Join(args[2:], " "),
		}
		return a.checkout.PlaceOrder(ctx, form)

	case "orders":
		if err := a.ordersView.Activate(ctx); err != nil {
			return err
		}
		return a.ordersView.Render()

	case "order":
		if len(args) < 1 {
			fmt.Fprintln(a.out, "usage: order <orderID> [admin]")
			return nil
		}
		admin := len(args) > 1 && args[1] == "admin"
		for _, o := range a.ordersView.Orders() {
			if o.OrderID == args[0] {
				a.detail.Open(o, admin)
				return a.detail.Render()
			}
		}
		fmt.Fprintln(a.out, "order not found; run 'orders' first")
		return nil

	case "status":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "usage: status <new-status>")
			return nil
		}
		if err := a.detail.SetStatus(ctx, args[0]); err != nil {
			return err
		}
		return a.ordersView.Render()

	case "close":
		if err := a.detail.Close(ctx); err != nil {
			return err
		}
		return a.ordersView.Render()

	case "quit", "exit":
		a.ordersView.Deactivate()
		return errQuit

	default:
		fmt.Fprintf(a.out, "unknown command %q; type 'help'\n", cmd)
		return nil
	}
}

func (a *App) printHelp() {
	fmt.Fprintln(a.out, `commands:
  login <token>                          store a session credential
  logout                                 clear the credential
  add <productID> <name> <price> <qty>   add a product to the cart
  cart                                   show the cart
  inc|dec|remove <productID>             adjust a cart line
  checkout <name> <phone> <address...>   place the order
  orders                                 show order history
  order <orderID> [admin]                open an order
  status <new-status>                    change the open order's status (admin)
  close                                  close the order panel
  quit                                   exit`)
}

// Shutdown releases broker and store connections.
func (a *App) Shutdown() {
	if err := a.producer.Close(); err != nil {
		a.logger.Error("failed to close kafka producer",
			slog.String("error", err.Error()),
		)
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error("failed to close redis client",
			slog.String("error", err.Error()),
		)
	}
}
