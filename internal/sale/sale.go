// Package sale simulates timed promotions on the session catalog.
//
// A lightning sale cuts a random in-stock product to a fraction of its
// original price for a fixed duration. A suggested sale shaves a further
// percentage off the first in-stock product the shopper did not just pick.
// Time and randomness are injected so every step is reproducible in tests.
package sale

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

// Clock is the time source the simulator schedules against.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// Target applies sale changes atomically against a consistent catalog view.
type Target interface {
	ApplySaleWith(ctx context.Context, pick product.SalePick) (product.Product, bool, error)
}

// EventKind identifies what happened to a product's price.
type EventKind int

const (
	LightningStarted EventKind = iota + 1
	LightningEnded
	Suggested
)

func (k EventKind) String() string {
	switch k {
	case LightningStarted:
		return "lightning_started"
	case LightningEnded:
		return "lightning_ended"
	case Suggested:
		return "suggested"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes a price change with the product state after it.
type Event struct {
	Kind    EventKind
	Product product.Product
	// Percent is the advertised discount, zero for LightningEnded.
	Percent int64
	At      time.Time
}

// Message returns the shopper-facing announcement for the event.
func (e Event) Message() string {
	switch e.Kind {
	case LightningStarted:
		return fmt.Sprintf("Lightning sale! %s is %d%% off!", e.Product.Name, e.Percent)
	case LightningEnded:
		return fmt.Sprintf("Lightning sale on %s has ended.", e.Product.Name)
	case Suggested:
		return fmt.Sprintf("How about %s? Buy now for an extra %d%% off!", e.Product.Name, e.Percent)
	default:
		return ""
	}
}

// Config holds sale rates and timings.
type Config struct {
	LightningRate     decimal.Decimal
	LightningDuration time.Duration
	// LightningMaxDelay bounds the random delay before the first lightning sale.
	LightningMaxDelay time.Duration
	LightningInterval time.Duration

	SuggestRate     decimal.Decimal
	SuggestDelay    time.Duration
	SuggestInterval time.Duration
}

// DefaultConfig returns the store's sale schedule.
func DefaultConfig() Config {
	return Config{
		LightningRate:     decimal.RequireFromString("0.20"),
		LightningDuration: 30 * time.Second,
		LightningMaxDelay: 10 * time.Second,
		LightningInterval: 30 * time.Second,

		SuggestRate:     decimal.RequireFromString("0.05"),
		SuggestDelay:    60 * time.Second,
		SuggestInterval: 60 * time.Second,
	}
}

// Options configures a Simulator. Zero values select defaults.
type Options struct {
	Config Config
	Clock  Clock
	Rand   *rand.Rand
	// OnSale is called after every applied price change.
	OnSale func(Event)
}

func (o *Options) setDefaults() {
	if o.Config == (Config{}) {
		o.Config = DefaultConfig()
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.OnSale == nil {
		o.OnSale = func(Event) {}
	}
}
