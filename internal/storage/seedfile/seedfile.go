// Package seedfile reads and writes catalog seed files.
//
// A seed file is a JSON array of products. Files ending in ".gz" are
// gzip-compressed.
//
//	[{"id": "p1", "name": "Bug-free keyboard", "price": 10000, "stock": 50}]
package seedfile

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

// ErrInvalidProduct is returned for seed entries that cannot form a product.
var ErrInvalidProduct = errors.New("invalid product")

// Repository serves the catalog from a seed file. The file is read on every
// List call.
type Repository struct {
	path string
}

var _ product.Repository = (*Repository)(nil)

// NewRepository creates a Repository for the file at path.
func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// List loads the products from the seed file.
func (r *Repository) List(_ context.Context) ([]product.Product, error) {
	return Load(r.path)
}

// Load reads products from the file at path.
func Load(path string) ([]product.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open seed file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReader(f)
	if isGzip(path) {
		zr, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	products, err := Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return products, nil
}

// Save writes products to the file at path, replacing it.
func Save(path string, products []product.Product) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create seed file")
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = errors.Wrap(err, "close seed file")
		}
	}()

	if !isGzip(path) {
		return Encode(f, products)
	}

	zw := pgzip.NewWriter(f)
	if err := Encode(zw, products); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "close gzip stream")
	}
	return nil
}

func isGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// Decode parses a seed document. Entries must have an ID, a non-negative
// price and stock, and IDs must be unique. A missing originalPrice defaults to
// price.
func Decode(r io.Reader) ([]product.Product, error) {
	d := jx.Decode(r, 4096)

	var (
		products []product.Product
		seen     = make(map[string]struct{})
	)
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return errors.Wrapf(err, "product #%d", len(products))
		}
		if _, dup := seen[p.ID]; dup {
			return errors.Wrapf(ErrInvalidProduct, "duplicate id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, err
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var (
		p           product.Product
		hasOriginal bool
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "price":
			p.Price, err = decodeDecimal(d)
		case "originalPrice":
			p.OriginalPrice, err = decodeDecimal(d)
			hasOriginal = true
		case "stock":
			p.Stock, err = d.Int()
		case "onSale":
			p.OnSale, err = d.Bool()
		case "suggestSale":
			p.SuggestSale, err = d.Bool()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	}); err != nil {
		return product.Product{}, err
	}

	if !hasOriginal {
		p.OriginalPrice = p.Price
	}
	return p, validate(p)
}

func validate(p product.Product) error {
	switch {
	case p.ID == "":
		return errors.Wrap(ErrInvalidProduct, "empty id")
	case p.Stock < 0:
		return errors.Wrapf(ErrInvalidProduct, "%s: negative stock", p.ID)
	case p.Price.IsNegative() || p.OriginalPrice.IsNegative():
		return errors.Wrapf(ErrInvalidProduct, "%s: negative price", p.ID)
	case p.Price.GreaterThan(p.OriginalPrice):
		return errors.Wrapf(ErrInvalidProduct, "%s: price above original price", p.ID)
	}
	return nil
}

// decodeDecimal accepts both JSON numbers and numeric strings.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(s)
	default:
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		return decimal.NewFromString(n.String())
	}
}

// Encode writes products as a seed document.
func Encode(w io.Writer, products []product.Product) error {
	var e jx.Encoder
	e.SetIdent(2)
	e.Arr(func(e *jx.Encoder) {
		for _, p := range products {
			e.Obj(func(e *jx.Encoder) {
				e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
				e.Field("price", func(e *jx.Encoder) { e.Num(jx.Num(p.Price.String())) })
				if !p.OriginalPrice.Equal(p.Price) {
					e.Field("originalPrice", func(e *jx.Encoder) { e.Num(jx.Num(p.OriginalPrice.String())) })
				}
				e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
				if p.OnSale {
					e.Field("onSale", func(e *jx.Encoder) { e.Bool(true) })
				}
				if p.SuggestSale {
					e.Field("suggestSale", func(e *jx.Encoder) { e.Bool(true) })
				}
			})
		}
	})
	if _, err := w.Write(append(e.Bytes(), '\n')); err != nil {
		return errors.Wrap(err, "write seed document")
	}
	return nil
}
