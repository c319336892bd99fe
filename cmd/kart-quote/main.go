// Command kart-quote prices a cart against a catalog and prints the summary.
//
//	kart-quote -cart p1=5,p5=10 -date 2024-01-02
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-pricing/internal/domain/cart"
	"github.com/xenking/kart-pricing/internal/domain/product"
	"github.com/xenking/kart-pricing/internal/pricing"
	"github.com/xenking/kart-pricing/internal/storage/seedfile"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		cartSpec string
		date     string
		seedFile string
	)

	flag.StringVar(&cartSpec, "cart", "", "cart lines as id=qty pairs, e.g. p1=5,p5=10")
	flag.StringVar(&date, "date", "", "pricing date (YYYY-MM-DD), today when empty")
	flag.StringVar(&seedFile, "seed-file", "", "catalog seed file, the default catalog when empty")
	flag.Parse()

	if err := run(os.Stdout, cartSpec, date, seedFile, time.Now()); err != nil {
		slog.Error("quote failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(w io.Writer, cartSpec, date, seedFile string, now time.Time) error {
	lines, err := parseCart(cartSpec)
	if err != nil {
		return err
	}

	today := now
	if date != "" {
		if today, err = time.Parse(dateLayout, date); err != nil {
			return errors.Wrap(err, "parse date")
		}
	}

	products := product.DefaultCatalog()
	if seedFile != "" {
		if products, err = seedfile.Load(seedFile); err != nil {
			return err
		}
	}
	catalog := product.NewCatalog(products)
	for _, l := range lines {
		if _, ok := catalog.Get(l.ProductID); !ok {
			return errors.Wrapf(product.ErrNotFound, "%s", l.ProductID)
		}
	}

	items := pricing.Resolve(lines, catalog)
	printQuote(w, items, pricing.CartTotals(items, today), today)
	return nil
}

// parseCart reads "id=qty" pairs separated by commas. Repeated ids add up.
func parseCart(input string) ([]cart.Line, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.New("cart is empty: pass -cart id=qty,...")
	}
	c := cart.New()
	for _, pair := range strings.Split(input, ",") {
		id, qty, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || id == "" {
			return nil, errors.Errorf("bad cart line %q: want id=qty", pair)
		}
		n, err := strconv.Atoi(qty)
		if err != nil || n <= 0 {
			return nil, errors.Errorf("bad quantity in %q: want a positive integer", pair)
		}
		c.Add(id, n)
	}
	return c.Lines(), nil
}

func printQuote(w io.Writer, items []pricing.Item, s pricing.Summary, today time.Time) {
	fmt.Fprintf(w, "Quote for %s (%s)\n", today.Format(dateLayout), today.Weekday())
	for _, it := range items {
		fmt.Fprintf(w, "  %-28s %4d x %s\n", it.Product.Name, it.Quantity, it.Product.Price.StringFixed(2))
	}
	for _, d := range s.ItemDiscounts {
		fmt.Fprintf(w, "  %s: %d%% off\n", d.Name, d.Percent)
	}
	if s.BulkApplied {
		fmt.Fprintln(w, "  bulk discount applied")
	}
	if s.WeekdayApplied {
		fmt.Fprintf(w, "  %s discount applied\n", today.Weekday())
	}
	fmt.Fprintf(w, "Subtotal: %s\n", s.Subtotal.StringFixed(2))
	if s.DiscountLabel != "" {
		fmt.Fprintf(w, "Discount: %s\n", s.DiscountLabel)
	}
	fmt.Fprintf(w, "Total:    %d\n", s.Total)
	fmt.Fprintf(w, "Points:   %d (%s)\n", s.LoyaltyPoints, strings.Join(s.Points.Details, ", "))
}
