package sale

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

var one = decimal.NewFromInt(1)

// Simulator runs lightning and suggested sales against a Target.
type Simulator struct {
	target Target
	cfg    Config
	clock  Clock
	onSale func(Event)

	// rand.Rand is not safe for concurrent use.
	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a Simulator for target.
func New(target Target, opts Options) *Simulator {
	opts.setDefaults()
	return &Simulator{
		target: target,
		cfg:    opts.Config,
		clock:  opts.Clock,
		onSale: opts.OnSale,
		rnd:    opts.Rand,
	}
}

// Run drives both sale loops until ctx is done. Failed steps are logged and
// the loops keep going.
func (s *Simulator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.lightningLoop(ctx, g)
	})
	g.Go(func() error {
		return s.suggestLoop(ctx)
	})
	return g.Wait()
}

func (s *Simulator) lightningLoop(ctx context.Context, g *errgroup.Group) error {
	lg := zctx.From(ctx).Named("lightning")
	delay := s.firstLightningDelay()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.clock.After(delay):
		}
		delay = s.cfg.LightningInterval

		p, ok, err := s.Lightning(ctx)
		if err != nil {
			lg.Warn("Lightning sale failed", zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		id := p.ID
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return nil
			case <-s.clock.After(s.cfg.LightningDuration):
			}
			if _, _, err := s.EndLightning(ctx, id); err != nil {
				lg.Warn("Ending lightning sale failed", zap.String("product_id", id), zap.Error(err))
			}
			return nil
		})
	}
}

func (s *Simulator) suggestLoop(ctx context.Context) error {
	lg := zctx.From(ctx).Named("suggest")
	delay := s.cfg.SuggestDelay
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.clock.After(delay):
		}
		delay = s.cfg.SuggestInterval

		if _, _, err := s.Suggest(ctx); err != nil {
			lg.Warn("Suggested sale failed", zap.Error(err))
		}
	}
}

func (s *Simulator) firstLightningDelay() time.Duration {
	if s.cfg.LightningMaxDelay <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.rnd.Int64N(int64(s.cfg.LightningMaxDelay)))
}

func (s *Simulator) pickIndex(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

// Lightning draws one random product and, when it is in stock and not already
// on a lightning sale, cuts it to the lightning price. It reports whether a
// sale started.
func (s *Simulator) Lightning(ctx context.Context) (product.Product, bool, error) {
	p, ok, err := s.target.ApplySaleWith(ctx, func(products []product.Product, _ string) (string, product.SaleUpdate, bool) {
		if len(products) == 0 {
			return "", product.SaleUpdate{}, false
		}
		lucky := products[s.pickIndex(len(products))]
		if lucky.Stock <= 0 || lucky.OnSale {
			return "", product.SaleUpdate{}, false
		}
		price := LightningPrice(lucky, s.cfg.LightningRate)
		onSale := true
		return lucky.ID, product.SaleUpdate{Price: &price, OnSale: &onSale}, true
	})
	if err != nil {
		return product.Product{}, false, errors.Wrap(err, "apply lightning sale")
	}
	if ok {
		s.emit(LightningStarted, p, percentOf(s.cfg.LightningRate))
	}
	return p, ok, nil
}

// EndLightning lifts the lightning sale from the product. An active suggested
// sale survives at its rate off the original price.
func (s *Simulator) EndLightning(ctx context.Context, id string) (product.Product, bool, error) {
	p, ok, err := s.target.ApplySaleWith(ctx, func(products []product.Product, _ string) (string, product.SaleUpdate, bool) {
		for _, p := range products {
			if p.ID != id {
				continue
			}
			if !p.OnSale {
				return "", product.SaleUpdate{}, false
			}
			price := p.OriginalPrice
			if p.SuggestSale {
				price = discount(p.OriginalPrice, s.cfg.SuggestRate)
			}
			onSale := false
			return p.ID, product.SaleUpdate{Price: &price, OnSale: &onSale}, true
		}
		return "", product.SaleUpdate{}, false
	})
	if err != nil {
		return product.Product{}, false, errors.Wrap(err, "end lightning sale")
	}
	if ok {
		s.emit(LightningEnded, p, 0)
	}
	return p, ok, nil
}

// Suggest discounts the first product that is in stock, not the last one
// selected and not already suggested.
func (s *Simulator) Suggest(ctx context.Context) (product.Product, bool, error) {
	p, ok, err := s.target.ApplySaleWith(ctx, func(products []product.Product, lastSelected string) (string, product.SaleUpdate, bool) {
		for _, p := range products {
			if p.ID == lastSelected || p.Stock <= 0 || p.SuggestSale {
				continue
			}
			price := SuggestPrice(p, s.cfg.SuggestRate)
			suggest := true
			return p.ID, product.SaleUpdate{Price: &price, SuggestSale: &suggest}, true
		}
		return "", product.SaleUpdate{}, false
	})
	if err != nil {
		return product.Product{}, false, errors.Wrap(err, "apply suggested sale")
	}
	if ok {
		s.emit(Suggested, p, percentOf(s.cfg.SuggestRate))
	}
	return p, ok, nil
}

func (s *Simulator) emit(kind EventKind, p product.Product, percent int64) {
	s.onSale(Event{Kind: kind, Product: p, Percent: percent, At: s.clock.Now()})
}

// LightningPrice is the original price reduced by rate, rounded to whole units.
func LightningPrice(p product.Product, rate decimal.Decimal) decimal.Decimal {
	return discount(p.OriginalPrice, rate)
}

// SuggestPrice is the current price reduced by rate, rounded to whole units.
// It stacks on top of a running lightning sale.
func SuggestPrice(p product.Product, rate decimal.Decimal) decimal.Decimal {
	return discount(p.Price, rate)
}

func discount(price, rate decimal.Decimal) decimal.Decimal {
	return price.Mul(one.Sub(rate)).Round(0)
}

func percentOf(rate decimal.Decimal) int64 {
	return rate.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
