// Command catalog-ingest loads supplier catalog feeds into the products
// table. Feeds are gzip-compressed NDJSON shards; the same product may appear
// in several shards, and the first occurrence wins.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lewkins/storefront/internal/domain/product"
	"github.com/lewkins/storefront/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

type feedRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
	Stock       int             `json:"stock"`
}

func (rec feedRecord) valid() bool {
	return rec.ID != "" && rec.Name != "" && rec.Category != "" && !rec.Price.IsNegative()
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.ndjson.gz feed shards")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	shards, err := filepath.Glob(filepath.Join(dataDir, "*.ndjson.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed shards")
	}
	if len(shards) == 0 {
		return errors.Errorf("no *.ndjson.gz shards in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return ingest(ctx, shards, repository.NewProductRepository(pool))
}

// ingest streams all shards concurrently into a single writer that dedupes
// and upserts.
func ingest(ctx context.Context, shards []string, repo *repository.ProductRepository) error {
	slog.Info("ingesting shards", slog.Int("count", len(shards)))

	records := make(chan feedRecord, 1024)

	g, ctx := errgroup.WithContext(ctx)
	readers, ctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		readers.Go(streamShard(ctx, i, shard, records))
	}
	g.Go(func() error {
		defer close(records)
		return readers.Wait()
	})
	g.Go(func() error {
		return writeRecords(ctx, repo, records)
	})

	return g.Wait()
}

func streamShard(ctx context.Context, idx int, path string, out chan<- feedRecord) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var count, skipped uint64
		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
		for scanner.Scan() {
			var rec feedRecord
			if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil || !rec.valid() {
				skipped++
				continue
			}

			select {
			case out <- rec:
			case <-ctx.Done():
				return ctx.Err()
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("shard progress", slog.Int("shard", idx+1), slog.Uint64("records", count))
			}
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("shard complete",
			slog.Int("shard", idx+1),
			slog.Uint64("records", count),
			slog.Uint64("skipped", skipped),
		)
		return nil
	}
}

// writeRecords upserts records, keeping the first occurrence of each product
// ID. A bloom filter answers "definitely unseen" without a database
// round-trip; on a possible hit the database is consulted, so a false
// positive never drops a new product.
func writeRecords(ctx context.Context, repo *repository.ProductRepository, records <-chan feedRecord) error {
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var written, duplicates uint64

	for rec := range records {
		if seen.TestString(rec.ID) {
			if _, err := repo.GetByID(ctx, rec.ID); err == nil {
				duplicates++
				continue
			} else if !errors.Is(err, product.ErrNotFound) {
				return errors.Wrapf(err, "check product %s", rec.ID)
			}
		}

		err := repo.Upsert(ctx, &product.Product{
			ID:          rec.ID,
			Name:        rec.Name,
			Price:       rec.Price,
			Category:    rec.Category,
			Description: rec.Description,
			Image:       rec.Image,
			Sizes:       rec.Sizes,
			Colors:      rec.Colors,
			Stock:       rec.Stock,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", rec.ID)
		}

		seen.AddString(rec.ID)
		written++
		if written%progressEvery == 0 {
			slog.Info("write progress", slog.Uint64("written", written))
		}
	}

	slog.Info("write complete", slog.Uint64("written", written), slog.Uint64("duplicates", duplicates))
	return nil
}
