package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/product-catalog/internal/domain/product"
	"github.com/xenking/product-catalog/internal/handler"
	"github.com/xenking/product-catalog/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		productsFile string
		concurrency  int
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file, optionally gzip-compressed (.gz)")
	flag.IntVar(&concurrency, "concurrency", 4, "number of products created in parallel")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if concurrency < 1 {
		slog.Error("concurrency must be at least 1", slog.Int("concurrency", concurrency))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, concurrency); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string, concurrency int) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	products, err := readProductsFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products")
	}
	for i, p := range products {
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "product #%d", i)
		}
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DatabaseURL: databaseURL,
		MaxConns:    int32(concurrency),
	})
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	svc := product.NewService(postgres.NewProductRepository(pool), noop.NewTracerProvider().Tracer("seed-db"))
	return seedProducts(ctx, svc, products, concurrency)
}

// creator is satisfied by *product.Service.
type creator interface {
	Create(ctx context.Context, in product.CreateInput) (*product.Product, error)
}

func seedProducts(ctx context.Context, svc creator, products []product.CreateInput, concurrency int) error {
	slog.Info("creating products", slog.Int("count", len(products)), slog.Int("concurrency", concurrency))

	var created atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, in := range products {
		g.Go(func() error {
			p, err := svc.Create(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "create product #%d", i)
			}
			created.Add(1)
			slog.Debug("created product", slog.Int64("id", p.ID), slog.Int("languages", len(in.Name)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("created products", slog.Int64("count", created.Load()))
	return nil
}

func readProductsFile(path string) ([]product.CreateInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	return readProducts(r)
}

// readProducts decodes a JSON array of {"name": {...}, "description": {...}}
// objects.
func readProducts(r io.Reader) ([]product.CreateInput, error) {
	var out []product.CreateInput
	d := jx.Decode(r, 64*1024)
	if err := d.Arr(func(d *jx.Decoder) error {
		in, err := handler.DecodeCreateInput(d)
		if err != nil {
			return errors.Wrapf(err, "product #%d", len(out))
		}
		out = append(out, in)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	return out, nil
}
