package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-pricing/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, price, stock FROM products ORDER BY position, id`

	getProductSQL = `SELECT id, name, price, stock FROM products WHERE id = $1`

	upsertProductSQL = `INSERT INTO products (id, name, price, stock, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			price = EXCLUDED.price,
			stock = EXCLUDED.stock,
			position = EXCLUDED.position,
			updated_at = now()`
)

var _ product.Repository = (*CatalogRepository)(nil)

// CatalogRepository reads the starting catalog from PostgreSQL. Sale state is
// never stored: loaded products are at their original price.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns all products in display order.
func (r *CatalogRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, errors.Wrap(err, "scan products")
	}
	return products, nil
}

// Get returns a single product by its identifier.
func (r *CatalogRepository) Get(ctx context.Context, id string) (product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductSQL, id)
	if err != nil {
		return product.Product{}, errors.Wrapf(err, "get product %q", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, product.ErrNotFound
		}
		return product.Product{}, errors.Wrapf(err, "get product %q", id)
	}
	return p, nil
}

// Replace upserts products in one transaction, storing their slice order as
// display order. Products missing from the slice are left in place.
func (r *CatalogRepository) Replace(ctx context.Context, products []product.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i, p := range products {
			batch.Queue(upsertProductSQL, p.ID, p.Name, p.OriginalPrice, p.Stock, i)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "upsert products")
		}
		return nil
	})
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Stock); err != nil {
		return product.Product{}, err
	}
	p.Price = price
	p.OriginalPrice = price
	return p, nil
}
