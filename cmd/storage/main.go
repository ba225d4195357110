package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/storage/internal/infrastructure/config"
	"github.com/GriffinCanCode/storage/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storage/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/storage/internal/loader"
	"github.com/GriffinCanCode/storage/internal/logging"
	"github.com/GriffinCanCode/storage/internal/paginate"
	"github.com/GriffinCanCode/storage/internal/provider"
	"github.com/GriffinCanCode/storage/internal/storage"
)

const fileProvider = "fs"

func main() {
	// Parse flags
	dir := flag.String("dir", ".", "Directory to load items from")
	name := flag.String("name", "pages", "Collection name")
	pattern := flag.String("pattern", loader.DefaultPattern, "Glob of files to load, relative to -dir")
	sortField := flag.String("sort", "key", "Item field to sort by")
	desc := flag.Bool("desc", false, "Sort descending")
	limit := flag.Int("limit", 0, "Items per page (0 uses STORAGE_PAGE_SIZE)")
	save := flag.String("save", "", "Persist items under this directory through the file provider")
	compress := flag.Bool("compress", false, "Gzip documents written with -save")
	showMetrics := flag.Bool("metrics", false, "Print gathered metrics on exit")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *save != "" {
		cfg.Provider.Root = *save
	}
	if *compress {
		cfg.Provider.Compress = true
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg, cfg.Metrics.Namespace)

	if err := run(ctx, cfg, logger, metrics, runOptions{
		dir:     *dir,
		name:    *name,
		pattern: *pattern,
		sort:    *sortField,
		desc:    *desc,
		limit:   *limit,
	}); err != nil {
		logger.Fatal("storage run failed", zap.Error(err))
	}

	if *showMetrics {
		printMetrics(reg, metrics)
	}
}

type runOptions struct {
	dir     string
	name    string
	pattern string
	sort    string
	desc    bool
	limit   int
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics, opts runOptions) error {
	registryOpts := []storage.Option{
		storage.WithConfig(cfg.Storage),
		storage.WithLogger(logger),
	}
	if cfg.Metrics.Enabled {
		registryOpts = append(registryOpts, storage.WithMetrics(metrics))
	}

	if cfg.Provider.Root != "" {
		files, err := provider.NewFile(cfg.Provider.Root, provider.WithCompression(cfg.Provider.Compress))
		if err != nil {
			return fmt.Errorf("file provider: %w", err)
		}
		breaker := resilience.New(fileProvider, resilience.Settings{
			Threshold: cfg.Provider.BreakerThreshold,
			Cooldown:  cfg.Provider.BreakerCooldown,
			IsFailure: provider.IsBackendFailure,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warn("provider circuit changed",
					zap.String("provider", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to))
			},
		})
		p := provider.Instrument(fileProvider, provider.Guard(files, breaker), metrics, logger)
		registryOpts = append(registryOpts, storage.WithProvider(fileProvider, p))
	}

	registry := storage.New(registryOpts...)

	l, err := loader.New(loader.WithPattern(opts.pattern), loader.WithLogger(logger))
	if err != nil {
		return err
	}
	items, err := l.Load(ctx, opts.dir)
	if err != nil {
		return err
	}

	store, err := registry.Create(opts.name, nil)
	if err != nil {
		return err
	}
	if err := store.AddItems(items); err != nil {
		return err
	}

	list, err := registry.ListFrom(store)
	if err != nil {
		return err
	}
	criterion := storage.ByField(opts.sort)
	if opts.desc {
		criterion = criterion.Desc()
	}
	sorted := list.SortBy(criterion, storage.ByField("key"))

	for _, page := range sorted.Paginate(paginate.Options{Limit: opts.limit}) {
		printPage(page, opts.sort)
	}

	if cfg.Provider.Root != "" {
		return persist(ctx, registry, opts.name, sorted.Items())
	}
	return nil
}

// persist writes items through the file provider via a collection bound to it
func persist(ctx context.Context, registry *storage.Registry, name string, items []*storage.Item) error {
	store, err := registry.Create("saved-"+name, &storage.Options{
		Kind:     storage.KindCollection,
		Provider: fileProvider,
	})
	if err != nil {
		return err
	}
	coll, ok := store.(*storage.Collection)
	if !ok {
		return fmt.Errorf("%s: %w", name, storage.ErrInvalidInput)
	}

	for _, item := range items {
		if err := coll.Set(ctx, item.Key, item.Clone()); err != nil {
			return err
		}
	}
	fmt.Printf("saved %d items\n", coll.Len())
	return nil
}

func printPage(page paginate.Page[*storage.Item], field string) {
	fmt.Printf("page %d/%d\n", page.Number, page.Total)
	for _, item := range page.Items {
		if field == "key" {
			fmt.Printf("  %s\n", item.Key)
			continue
		}
		fmt.Printf("  %s\t%s=%v\n", item.Key, field, item.Get(field))
	}
}

func printMetrics(reg *prometheus.Registry, metrics *monitoring.Metrics) {
	families, err := reg.Gather()
	if err != nil {
		log.Printf("Failed to gather metrics: %v", err)
		return
	}
	for _, family := range families {
		total := 0.0
		for _, m := range family.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		fmt.Printf("%s %g\n", family.GetName(), total)
	}

	snap := metrics.Snapshot()
	fmt.Printf("lookups hit=%d miss=%d provider_errors=%d\n", snap.LookupHits, snap.LookupMisses, snap.ProviderErrors)
}
