// Package session owns the single shopping session of the process: one
// catalog and one cart, mutated only through Session methods.
//
// Every method runs as one critical section. It reads the current state once,
// computes the new state and writes it back before releasing the lock, so sale
// timers and user actions never observe each other half-applied.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/product"
	"github.com/xenking/kart-pricing/internal/pricing"
)

const meterName = "github.com/xenking/kart-pricing/internal/session"

const (
	actionAdd            = "add"
	actionChangeQuantity = "change_quantity"
	actionRemove         = "remove"
	actionSale           = "sale"
)

// Options configures a Session. Zero values select defaults.
type Options struct {
	Engine        *pricing.Engine
	Now           func() time.Time
	MeterProvider metric.MeterProvider
}

func (o *Options) setDefaults() {
	if o.Engine == nil {
		o.Engine = pricing.Default
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.MeterProvider == nil {
		o.MeterProvider = noop.NewMeterProvider()
	}
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Products     []product.Product
	Lines        []cart.Line
	LastSelected string
}

// Quote is a snapshot priced at the moment it was taken.
type Quote struct {
	Snapshot
	Items   []pricing.Item
	Summary pricing.Summary
}

// Session is the owning controller for the catalog and the cart.
type Session struct {
	id string

	mu           sync.Mutex
	catalog      *product.Catalog
	cart         *cart.Cart
	lastSelected string

	engine *pricing.Engine
	now    func() time.Time

	actions metric.Int64Counter
	quotes  metric.Int64Counter
}

// New creates a session over a copy of products with an empty cart.
func New(products []product.Product, opts Options) (*Session, error) {
	opts.setDefaults()

	meter := opts.MeterProvider.Meter(meterName)
	actions, err := meter.Int64Counter("session.actions",
		metric.WithDescription("Cart and sale actions by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create actions counter")
	}
	quotes, err := meter.Int64Counter("session.quotes",
		metric.WithDescription("Cart pricing computations"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create quotes counter")
	}

	return &Session{
		id:      uuid.NewString(),
		catalog: product.NewCatalog(products),
		cart:    cart.New(),
		engine:  opts.Engine,
		now:     opts.Now,
		actions: actions,
		quotes:  quotes,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Add moves one unit of the product from stock into the cart.
func (s *Session) Add(ctx context.Context, id string) (err error) {
	defer func() { s.observe(ctx, actionAdd, id, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.catalog.Get(id)
	if !ok {
		return &ProductNotFoundError{ProductID: id}
	}
	if !product.CanAddToCart(p, 1) {
		return ErrInsufficientStock
	}

	s.catalog.Set(product.AdjustStock(p, -1))
	s.cart.Add(id, 1)
	s.lastSelected = id
	return nil
}

// ChangeQuantity moves delta units between stock and the cart line. A
// resulting quantity of zero or less removes the line and returns everything
// it held to stock.
func (s *Session) ChangeQuantity(ctx context.Context, id string, delta int) (err error) {
	defer func() { s.observe(ctx, actionChangeQuantity, id, err) }()

	if delta == 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.catalog.Get(id)
	if !ok {
		return &ProductNotFoundError{ProductID: id}
	}
	current := s.cart.Quantity(id)
	if current == 0 {
		return ErrNotInCart
	}

	next := current + delta
	switch {
	case next <= 0:
		s.catalog.Set(product.AdjustStock(p, current))
		s.cart.Remove(id)
	case delta > 0:
		if !product.CanAddToCart(p, delta) {
			return ErrInsufficientStock
		}
		s.catalog.Set(product.AdjustStock(p, -delta))
		s.cart.Set(id, next)
	default:
		s.catalog.Set(product.AdjustStock(p, -delta))
		s.cart.Set(id, next)
	}
	return nil
}

// Remove deletes the cart line and returns its quantity to stock.
func (s *Session) Remove(ctx context.Context, id string) (err error) {
	defer func() { s.observe(ctx, actionRemove, id, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.catalog.Get(id)
	if !ok {
		return &ProductNotFoundError{ProductID: id}
	}
	qty := s.cart.Remove(id)
	if qty == 0 {
		return ErrNotInCart
	}
	s.catalog.Set(product.AdjustStock(p, qty))
	return nil
}

// ApplySale merges sale fields into the product and returns the result.
func (s *Session) ApplySale(ctx context.Context, id string, u product.SaleUpdate) (_ product.Product, err error) {
	defer func() { s.observe(ctx, actionSale, id, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applySale(id, u)
}

// ApplySaleWith lets pick choose the product and change under the session
// lock. It reports false when pick found nothing to change.
func (s *Session) ApplySaleWith(ctx context.Context, pick product.SalePick) (product.Product, bool, error) {
	s.mu.Lock()
	id, u, ok := pick(s.catalog.Products(), s.lastSelected)
	if !ok {
		s.mu.Unlock()
		return product.Product{}, false, nil
	}
	p, err := s.applySale(id, u)
	s.mu.Unlock()

	s.observe(ctx, actionSale, id, err)
	if err != nil {
		return product.Product{}, false, err
	}
	return p, true, nil
}

func (s *Session) applySale(id string, u product.SaleUpdate) (product.Product, error) {
	p, ok := s.catalog.Get(id)
	if !ok {
		return product.Product{}, &ProductNotFoundError{ProductID: id}
	}
	p = product.ApplySaleStatus(p, u)
	s.catalog.Set(p)
	return p, nil
}

// Snapshot returns copies of the catalog and cart.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		Products:     s.catalog.Products(),
		Lines:        s.cart.Lines(),
		LastSelected: s.lastSelected,
	}
}

// Quote prices the current cart for today and returns it with the state it
// was computed from.
func (s *Session) Quote(ctx context.Context) Quote {
	s.mu.Lock()
	snap := s.snapshot()
	items := pricing.Resolve(snap.Lines, s.catalog)
	s.mu.Unlock()

	summary := s.engine.CartTotals(items, s.now())
	s.quotes.Add(ctx, 1)
	zctx.From(ctx).Debug("Cart priced",
		zap.String("session_id", s.id),
		zap.Int64("total", summary.Total),
		zap.Int64("points", summary.LoyaltyPoints),
		zap.String("discount", summary.DiscountLabel),
	)
	return Quote{Snapshot: snap, Items: items, Summary: summary}
}

// Summary prices the current cart for today.
func (s *Session) Summary(ctx context.Context) pricing.Summary {
	return s.Quote(ctx).Summary
}

// LastSelected returns the last product the user added, or "".
func (s *Session) LastSelected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSelected
}

func (s *Session) observe(ctx context.Context, action, id string, err error) {
	result := resultOf(err)
	s.actions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("result", result),
	))

	lg := zctx.From(ctx).With(
		zap.String("session_id", s.id),
		zap.String("action", action),
		zap.String("product_id", id),
	)
	if err != nil {
		lg.Debug("Action rejected", zap.String("result", result), zap.Error(err))
		return
	}
	lg.Debug("Action applied")
}
