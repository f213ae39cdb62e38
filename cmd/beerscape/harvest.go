package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	"github.com/wtfsayo/beerscape/internal/config"
	"github.com/wtfsayo/beerscape/internal/fetch"
	"github.com/wtfsayo/beerscape/internal/harvest"
	bshttp "github.com/wtfsayo/beerscape/internal/http"
	"github.com/wtfsayo/beerscape/internal/inventory"
	"github.com/wtfsayo/beerscape/internal/metrics"
	"github.com/wtfsayo/beerscape/internal/progress"
	"github.com/wtfsayo/beerscape/pkg/idpool"
)

// runHarvest probes random identifiers against the endpoint and stores
// acquired resources in the output bucket until the goal count exists.
func runHarvest(args []string) int {
	fs := flag.NewFlagSet("harvest", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	endpoint := fs.String("endpoint", "", "URL template with a %d identifier placeholder (required)")
	bucket := fs.String("bucket", "", "Output bucket URL, e.g. file:///path or s3://name (required)")
	goal := fs.Int("goal", 0, "Target count of resources, existing included")
	batchSize := fs.Int("batch", 0, "Identifiers probed per round (also the concurrency)")
	minID := fs.Uint64("min-id", 0, "Lower bound of the identifier range")
	maxID := fs.Uint64("max-id", 0, "Upper bound of the identifier range")
	ext := fs.String("ext", "", "Resource file extension")
	timeout := fs.Duration("timeout", 0, "Per-request timeout")
	pause := fs.Duration("pause", 0, "Pause between rounds")
	showProgress := fs.Bool("progress", false, "Show progress output")
	metricsAddr := fs.String("metrics-addr", "", "Expose Prometheus metrics on this address")
	seed := fs.Uint64("seed", 0, "Deterministic sampler seed (0 = random)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: beerscape harvest [options]

Probe random identifiers against the endpoint until the goal count of
resources exists in the output bucket. Resources already in the bucket
count toward the goal; failed identifiers are resampled in later rounds.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	// Resolve configuration: defaults < file < env < flags.
	cfg := config.Default()
	if *configPath != "" {
		fileCfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitConfigError
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	cfg = cfg.Merge(config.Config{
		Endpoint:    *endpoint,
		Bucket:      *bucket,
		Extension:   *ext,
		Goal:        *goal,
		MinID:       *minID,
		MaxID:       *maxID,
		BatchSize:   *batchSize,
		Timeout:     *timeout,
		Pause:       *pause,
		Progress:    *showProgress,
		MetricsAddr: *metricsAddr,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		return ExitInvalidArgs
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[beerscape] Received interrupt, shutting down...")
		cancel()
	}()

	// Open output bucket
	bkt, err := blob.OpenBucket(ctx, cfg.Bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bucket: %v\n", err)
		return ExitStorageError
	}
	defer bkt.Close()

	if err := checkBucket(ctx, bkt); err != nil {
		fmt.Fprintf(os.Stderr, "Error: bucket not accessible: %v\n", err)
		return ExitStorageError
	}

	// Scan existing resources
	fmt.Fprintln(os.Stderr, "[beerscape] Scanning existing resources...")
	inv, err := inventory.Scan(ctx, bkt, cfg.Extension)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	fmt.Fprintf(os.Stderr, "[beerscape] Found %d existing resources\n", inv.Count())

	if inv.Count() >= cfg.Goal {
		fmt.Fprintln(os.Stderr, "[beerscape] Target already reached! No more downloads needed.")
		printSummary(harvest.Summary{Existing: inv.Count()})
		return ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "[beerscape] Need to download %d more resources\n", cfg.Goal-inv.Count())

	// Build the sampler
	var poolOpts []idpool.Option
	if *seed != 0 {
		poolOpts = append(poolOpts, idpool.WithSeed(*seed))
	}
	pool, err := idpool.New(cfg.MinID, cfg.MaxID, poolOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	fetcher := fetch.New(
		bshttp.NewClient(bshttp.Options{
			Timeout:             cfg.Timeout,
			UserAgent:           cfg.UserAgent,
			MaxIdleConnsPerHost: cfg.BatchSize,
		}),
		bkt,
		fetch.Options{
			Endpoint:        cfg.Endpoint,
			Extension:       cfg.Extension,
			MaxResourceSize: cfg.MaxResourceSize,
		},
	)

	engineOpts := harvest.Options{
		Goal:      cfg.Goal,
		BatchSize: cfg.BatchSize,
		Pause:     cfg.Pause,
	}

	if cfg.Progress {
		reporter := progress.NewReporter(progress.Options{
			Goal:      cfg.Goal,
			Existing:  inv.Count(),
			BatchSize: cfg.BatchSize,
			Endpoint:  cfg.Endpoint,
		})
		reporter.Start()
		defer reporter.Stop()
		engineOpts.Progress = reporter
	}

	if cfg.MetricsAddr != "" {
		collector := metrics.NewCollector()
		collector.SetAcquired(inv.Count())
		go func() {
			if err := collector.Serve(cfg.MetricsAddr); err != nil {
				fmt.Fprintf(os.Stderr, "[beerscape] %v\n", err)
			}
		}()
		engineOpts.Metrics = collector
	}

	engine := harvest.New(pool, fetcher, inv.Count(), engineOpts)

	summary, err := engine.Run(ctx)
	if engineOpts.Progress != nil {
		engineOpts.Progress.Stop()
	}

	printSummary(summary)

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, idpool.ErrExhausted):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitExhausted
	case errors.Is(err, context.Canceled):
		return ExitGeneralError
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
}

// checkBucket verifies the bucket is reachable before any rounds run. A
// NotFound on the probe key is the expected answer from a healthy bucket.
func checkBucket(ctx context.Context, bkt *blob.Bucket) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := bkt.Attributes(ctx, ".beerscape-probe")
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return err
	}
	return nil
}

func printSummary(s harvest.Summary) {
	fmt.Println("\nDownload Summary:")
	fmt.Println("----------------")
	fmt.Printf("Previously Existing: %d\n", s.Existing)
	fmt.Printf("Newly Downloaded: %d\n", s.NewlyAcquired)
	fmt.Printf("Failed Attempts: %d\n", s.Failed)
	fmt.Printf("Total Attempts: %d\n", s.TotalAttempted)
	fmt.Printf("Final Success Rate: %.1f%%\n", s.SuccessRate)
}
