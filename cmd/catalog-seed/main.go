// Command catalog-seed upserts a catalog seed file into PostgreSQL, or
// exports the stored catalog back to a seed file.
package main

import (
	"bytes"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-pricing/db"
	"github.com/xenking/kart-pricing/internal/domain/product"
	"github.com/xenking/kart-pricing/internal/storage/postgres"
	"github.com/xenking/kart-pricing/internal/storage/seedfile"
)

func main() {
	var (
		databaseURL string
		seedFile    string
		export      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedFile, "seed-file", "", "catalog seed file to import (.json or .json.gz), the embedded default when empty")
	flag.StringVar(&export, "export", "", "write the stored catalog to this file instead of importing")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedFile, export); err != nil {
		slog.Error("catalog seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, seedFile, export string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	repo := postgres.NewCatalogRepository(pool)

	if export != "" {
		return exportCatalog(ctx, repo, export)
	}
	return importCatalog(ctx, repo, seedFile)
}

func importCatalog(ctx context.Context, repo *postgres.CatalogRepository, path string) error {
	products, err := readSeed(path)
	if err != nil {
		return err
	}
	for _, p := range products {
		if p.Discounted() {
			slog.Warn("sale state is not stored, importing original price",
				slog.String("id", p.ID),
				slog.String("price", p.OriginalPrice.String()),
			)
		}
	}

	if err := repo.Replace(ctx, products); err != nil {
		return errors.Wrap(err, "upsert products")
	}
	slog.Info("catalog imported", slog.Int("products", len(products)), slog.Int("stock", product.TotalStock(products)))
	return nil
}

func readSeed(path string) ([]product.Product, error) {
	if path == "" {
		slog.Info("using embedded seed")
		products, err := seedfile.Decode(bytes.NewReader(db.Seed))
		if err != nil {
			return nil, errors.Wrap(err, "decode embedded seed")
		}
		return products, nil
	}
	slog.Info("reading seed file", slog.String("path", path))
	return seedfile.Load(path)
}

func exportCatalog(ctx context.Context, repo *postgres.CatalogRepository, path string) error {
	products, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if err := seedfile.Save(path, products); err != nil {
		return err
	}
	slog.Info("catalog exported", slog.String("path", path), slog.Int("products", len(products)))
	return nil
}
