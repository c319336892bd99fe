package sale

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-pricing/internal/domain/product"
	"github.com/xenking/kart-pricing/internal/session"
)

var start = time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newSession(t *testing.T, products []product.Product) *session.Session {
	t.Helper()
	s, err := session.New(products, session.Options{})
	require.NoError(t, err)
	return s
}

func find(t *testing.T, s *session.Session, id string) product.Product {
	t.Helper()
	for _, p := range s.Snapshot().Products {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("product %s not found", id)
	return product.Product{}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Event, 64)}
}

func (r *recorder) record(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	r.ch <- e
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestLightning(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t, product.DefaultCatalog())
	rec := newRecorder()
	sim := New(sess, Options{
		Clock:  clockwork.NewFakeClockAt(start),
		Rand:   rand.New(rand.NewPCG(1, 2)),
		OnSale: rec.record,
	})

	started := 0
	for i := 0; i < 50; i++ {
		_, ok, err := sim.Lightning(ctx)
		require.NoError(t, err)
		if ok {
			started++
		}
	}

	// Four products are in stock and each can start at most once.
	assert.LessOrEqual(t, started, 4)
	assert.Greater(t, started, 0)
	assert.Len(t, rec.all(), started)

	for _, p := range sess.Snapshot().Products {
		if p.ID == product.LaptopPouchID {
			assert.False(t, p.OnSale, "out of stock product must not go on sale")
			continue
		}
		if p.OnSale {
			assert.True(t, p.OriginalPrice.Mul(d("0.8")).Equal(p.Price), "%s: %s", p.ID, p.Price)
		} else {
			assert.True(t, p.OriginalPrice.Equal(p.Price))
		}
	}
	for _, e := range rec.all() {
		assert.Equal(t, LightningStarted, e.Kind)
		assert.Equal(t, int64(20), e.Percent)
		assert.Equal(t, start, e.At)
	}
}

func TestLightning_EmptyCatalog(t *testing.T) {
	sim := New(newSession(t, nil), Options{Rand: rand.New(rand.NewPCG(1, 2))})
	_, ok, err := sim.Lightning(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEndLightning(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t, product.DefaultCatalog())
	sim := New(sess, Options{Rand: rand.New(rand.NewPCG(3, 4))})

	onSale := true
	price := d("8000")
	_, err := sess.ApplySale(ctx, product.KeyboardID, product.SaleUpdate{Price: &price, OnSale: &onSale})
	require.NoError(t, err)

	p, ok, err := sim.EndLightning(ctx, product.KeyboardID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, p.OnSale)
	assert.True(t, d("10000").Equal(p.Price))

	_, ok, err = sim.EndLightning(ctx, product.KeyboardID)
	require.NoError(t, err)
	assert.False(t, ok, "no sale left to end")
}

func TestEndLightning_KeepsSuggestion(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t, product.DefaultCatalog())
	sim := New(sess, Options{Rand: rand.New(rand.NewPCG(3, 4))})

	onSale, suggest := true, true
	price := d("15200")
	_, err := sess.ApplySale(ctx, product.MouseID, product.SaleUpdate{Price: &price, OnSale: &onSale, SuggestSale: &suggest})
	require.NoError(t, err)

	p, ok, err := sim.EndLightning(ctx, product.MouseID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, p.SuggestSale)
	assert.True(t, d("19000").Equal(p.Price), p.Price.String())
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t, product.DefaultCatalog())
	rec := newRecorder()
	sim := New(sess, Options{OnSale: rec.record, Rand: rand.New(rand.NewPCG(5, 6))})

	require.NoError(t, sess.Add(ctx, product.KeyboardID))

	p, ok, err := sim.Suggest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, product.MouseID, p.ID, "last selected product is skipped")
	assert.True(t, d("19000").Equal(p.Price))
	assert.True(t, p.SuggestSale)

	p, ok, err = sim.Suggest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, product.MonitorArmID, p.ID)

	p, ok, err = sim.Suggest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, product.SpeakerID, p.ID, "out of stock pouch is skipped")

	_, ok, err = sim.Suggest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	events := rec.all()
	require.Len(t, events, 3)
	assert.Equal(t, "How about Productivity mouse? Buy now for an extra 5% off!", events[0].Message())
}

func TestSuggest_StacksOnLightning(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t, []product.Product{{
		ID: "x", Name: "Widget", Price: d("800"), OriginalPrice: d("1000"), Stock: 3, OnSale: true,
	}})
	sim := New(sess, Options{Rand: rand.New(rand.NewPCG(5, 6))})

	p, ok, err := sim.Suggest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, d("760").Equal(p.Price))
	assert.True(t, p.OnSale)
	assert.True(t, p.SuggestSale)
}

func TestSaleKeepsPriceBelowOriginal(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t, product.DefaultCatalog())
	sim := New(sess, Options{Rand: rand.New(rand.NewPCG(7, 8))})

	for i := 0; i < 20; i++ {
		_, _, err := sim.Lightning(ctx)
		require.NoError(t, err)
		_, _, err = sim.Suggest(ctx)
		require.NoError(t, err)
		for _, p := range sess.Snapshot().Products {
			if p.Discounted() {
				assert.True(t, p.Price.LessThanOrEqual(p.OriginalPrice), p.ID)
			} else {
				assert.True(t, p.Price.Equal(p.OriginalPrice), p.ID)
			}
		}
	}
}

func TestEventMessage(t *testing.T) {
	p := product.Product{Name: "Bug-free keyboard"}
	assert.Equal(t, "Lightning sale! Bug-free keyboard is 20% off!", Event{Kind: LightningStarted, Product: p, Percent: 20}.Message())
	assert.Equal(t, "Lightning sale on Bug-free keyboard has ended.", Event{Kind: LightningEnded, Product: p}.Message())
	assert.Equal(t, "lightning_started", LightningStarted.String())
}

func waitFor(t *testing.T, rec *recorder, kind EventKind) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-rec.ch:
			if e.Kind == kind {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", kind)
			return Event{}
		}
	}
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := newSession(t, []product.Product{{
		ID: "x", Name: "Widget", Price: d("1000"), OriginalPrice: d("1000"), Stock: 3,
	}})
	clock := clockwork.NewFakeClockAt(start)
	rec := newRecorder()
	cfg := DefaultConfig()
	// Suggestions are pushed out of the test window.
	cfg.SuggestDelay = time.Hour
	sim := New(sess, Options{
		Config: cfg,
		Clock:  clock,
		Rand:   rand.New(rand.NewPCG(9, 10)),
		OnSale: rec.record,
	})

	done := make(chan error, 1)
	go func() { done <- sim.Run(ctx) }()

	// First lightning delay and the suggestion delay.
	require.NoError(t, clock.BlockUntilContext(ctx, 2))
	clock.Advance(cfg.LightningMaxDelay)

	e := waitFor(t, rec, LightningStarted)
	assert.Equal(t, "x", e.Product.ID)
	assert.True(t, d("800").Equal(e.Product.Price))

	// Next lightning tick, the sale end timer and the suggestion.
	require.NoError(t, clock.BlockUntilContext(ctx, 3))
	clock.Advance(cfg.LightningDuration)

	e = waitFor(t, rec, LightningEnded)
	assert.True(t, d("1000").Equal(e.Product.Price))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}
