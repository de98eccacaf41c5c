package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	sundial "github.com/sundialdb/sundial-go"
	"github.com/sundialdb/sundial-go/internal/observability"
	"github.com/sundialdb/sundial-go/transport"
	"github.com/sundialdb/sundial-go/wire"
)

type options struct {
	addr    string
	table   string
	workers int
	rows    int
	batch   int
}

func main() {
	opts := parseFlags()
	log := observability.InitLogger("loadgen")

	start := time.Now()
	written, err := runLoad(context.Background(), log, opts)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Int64("rows_written", written).Msg("load run failed")
		os.Exit(1)
	}
	log.Info().
		Int64("rows_written", written).
		Dur("elapsed", elapsed).
		Float64("rows_per_second", float64(written)/elapsed.Seconds()).
		Msg("load run complete")
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.addr, "addr", "127.0.0.1:7474", "server host:port")
	flag.StringVar(&opts.table, "table", "readings", "target table")
	flag.IntVar(&opts.workers, "workers", 4, "concurrent writers, one connection each")
	flag.IntVar(&opts.rows, "rows", 10000, "total rows to write")
	flag.IntVar(&opts.batch, "batch", 100, "rows per put")
	flag.Parse()
	return opts
}

func runLoad(ctx context.Context, log zerolog.Logger, opts options) (int64, error) {
	if opts.workers <= 0 || opts.rows <= 0 || opts.batch <= 0 {
		return 0, fmt.Errorf("workers, rows, and batch must all be positive")
	}

	var written atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.workers; w++ {
		target := rowsForWorker(opts.rows, opts.workers, w)
		if target == 0 {
			continue
		}
		g.Go(func() error {
			return runWorker(gctx, log, opts, target, &written)
		})
	}
	err := g.Wait()
	return written.Load(), err
}

// rowsForWorker spreads the total across workers, front-loading the
// remainder so every row is assigned exactly once.
func rowsForWorker(total, workers, index int) int {
	base := total / workers
	if index < total%workers {
		base++
	}
	return base
}

func runWorker(ctx context.Context, log zerolog.Logger, opts options, target int, written *atomic.Int64) error {
	conn, err := transport.Dial(ctx, transport.Config{
		Addr:       opts.addr,
		ClientName: "loadgen",
		Logger:     log,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := sundial.NewClient(conn, sundial.Config{Logger: log})
	if err != nil {
		return err
	}

	series := uuid.NewString()
	at := time.Now()
	remaining := target
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := opts.batch
		if n > remaining {
			n = remaining
		}
		batch := make([]sundial.Record, 0, n)
		for i := 0; i < n; i++ {
			at = at.Add(time.Millisecond)
			batch = append(batch, sundial.Record{
				wire.Text(series),
				wire.Timestamp(at),
				wire.Double(rand.NormFloat64()),
			})
		}
		if err := client.Put(ctx, opts.table, batch, nil); err != nil {
			return fmt.Errorf("series %s: %w", series, err)
		}
		written.Add(int64(n))
		remaining -= n
	}
	log.Debug().Str("series", series).Int("rows", target).Msg("worker done")
	return nil
}
