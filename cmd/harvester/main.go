package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-scrape-lcsc/catalog"
	"github.com/aluiziolira/go-scrape-lcsc/config"
	"github.com/aluiziolira/go-scrape-lcsc/export"
	"github.com/aluiziolira/go-scrape-lcsc/harvest"
	"github.com/aluiziolira/go-scrape-lcsc/models"
)

func main() {
	defaultCfg := config.DefaultConfig()

	categoryDefault := defaultCfg.CategoryRef
	if value, ok := config.EnvString("HARVESTER_CATEGORY"); ok {
		categoryDefault = value
	}
	pagesDefault := defaultCfg.MaxPages
	if value, ok, err := config.EnvInt("HARVESTER_PAGES"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid HARVESTER_PAGES: %v\n", err)
		os.Exit(1)
	} else if ok {
		pagesDefault = value
	}
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("HARVESTER_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("HARVESTER_METRICS_ADDR"); ok {
		metricsDefault = value
	}

	categoryRef := flag.String("category", categoryDefault, "Category page URL or numeric category ID")
	maxPages := flag.Int("pages", pagesDefault, "Maximum pages per category (0 = all)")
	pageSize := flag.Int("page-size", defaultCfg.PageSize, "Records requested per page")
	delayMs := flag.Int("delay", int(defaultCfg.Delay/time.Millisecond), "Delay between requests (milliseconds)")
	timeoutMs := flag.Int("timeout", int(defaultCfg.Timeout/time.Millisecond), "Per-request timeout (milliseconds)")
	maxFailures := flag.Int("max-failures", defaultCfg.MaxConsecutiveFailures, "Consecutive page failures before aborting a category")
	descriptions := flag.Bool("descriptions", defaultCfg.FetchDescriptions, "Fetch detail pages for missing descriptions")
	rangeStart := flag.Int("range-start", 0, "First category ID of a range harvest")
	rangeEnd := flag.Int("range-end", 0, "Last category ID of a range harvest (0 disables range mode)")
	globalDedupe := flag.Bool("global-dedupe", false, "Share one dedup scope across all categories of a range")
	outputFile := flag.String("output", outputDefault, "Output file path")
	outputFormat := flag.String("format", defaultCfg.OutputFormat, "Output format: xlsx or csv")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.CategoryRef = *categoryRef
	cfg.MaxPages = *maxPages
	cfg.PageSize = *pageSize
	cfg.Delay = time.Duration(*delayMs) * time.Millisecond
	cfg.Timeout = time.Duration(*timeoutMs) * time.Millisecond
	cfg.MaxConsecutiveFailures = *maxFailures
	cfg.FetchDescriptions = *descriptions
	cfg.RangeStart = *rangeStart
	cfg.RangeEnd = *rangeEnd
	cfg.GlobalDedupe = *globalDedupe
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.Verbose = *verbose
	cfg.MetricsAddr = *metricsAddr

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing the current iteration")
	}()

	metrics := harvest.NewMetrics()
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	client := harvest.NewClient(cfg, metrics)

	var detail *harvest.DetailFetcher
	if cfg.FetchDescriptions {
		var err error
		detail, err = harvest.NewDetailFetcher(cfg, metrics)
		if err != nil {
			slog.Error("initialising detail fetcher", slog.Any("error", err))
			os.Exit(1)
		}
	}

	start := time.Now()
	var exitCode int
	if cfg.RangeMode() {
		exitCode = runRange(ctx, cfg, client, detail, metrics)
	} else {
		exitCode = runSingle(ctx, cfg, client, detail, metrics)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	slog.Info("run finished", slog.Duration("duration", time.Since(start)))
	os.Exit(exitCode)
}

func runSingle(ctx context.Context, cfg *config.Config, client *harvest.Client, detail *harvest.DetailFetcher, metrics *harvest.Metrics) int {
	categoryID, err := catalog.ParseCategoryID(cfg.CategoryRef)
	if err != nil {
		slog.Error("resolving category", slog.Any("error", err))
		return 1
	}

	slog.Info("starting harvest",
		slog.Int("category", categoryID),
		slog.Int("pages", cfg.MaxPages),
		slog.Int("page_size", cfg.PageSize),
	)

	harvester := harvest.NewHarvester(cfg, client, metrics)
	result := harvester.Run(ctx, categoryID)

	var fallbackStats harvest.FallbackStats
	if detail != nil {
		fallbackStats = harvest.FillDescriptions(ctx, detail, result.Products, cfg.Delay, nil, metrics)
	}

	if len(result.Products) == 0 {
		slog.Warn("no records harvested", slog.String("stop_reason", string(result.StopReason)))
		return 1
	}

	outputPath, err := writeRecords(cfg, result.Products)
	if err != nil {
		slog.Error("export failed", slog.Any("error", err))
		return 1
	}

	printSummary([]*models.HarvestResult{result}, fallbackStats, outputPath)
	return 0
}

func runRange(ctx context.Context, cfg *config.Config, client *harvest.Client, detail *harvest.DetailFetcher, metrics *harvest.Metrics) int {
	discoverer := catalog.NewDiscoverer(cfg)
	categories, err := discoverer.Discover()
	if err != nil {
		slog.Error("category discovery failed", slog.Any("error", err))
		return 1
	}

	selected := catalog.FilterRange(categories, cfg.RangeStart, cfg.RangeEnd)
	slog.Info("categories discovered",
		slog.Int("total", len(categories)),
		slog.Int("in_range", len(selected)),
		slog.Int("range_start", cfg.RangeStart),
		slog.Int("range_end", cfg.RangeEnd),
	)
	if len(selected) == 0 {
		slog.Error("no categories in the requested ID range")
		return 1
	}

	workbook, err := export.NewWorkbook(cfg.OutputFile)
	if err != nil {
		slog.Error("creating workbook", slog.Any("error", err))
		return 1
	}

	var shared *harvest.Deduper
	if cfg.GlobalDedupe {
		shared = harvest.NewDeduper()
	}

	var (
		results        []*models.HarvestResult
		allProducts    []*models.Product
		fallbackTotals harvest.FallbackStats
	)

	for i, category := range selected {
		if ctx.Err() != nil {
			slog.Warn("range harvest cancelled", slog.Int("completed", i))
			break
		}

		slog.Info("harvesting category",
			slog.Int("index", i+1),
			slog.Int("of", len(selected)),
			slog.Int("category", category.ID),
			slog.String("name", category.Name),
		)

		harvester := harvest.NewHarvester(cfg, client, metrics)
		if shared != nil {
			harvester.ShareDeduper(shared)
		}
		result := harvester.Run(ctx, category.ID)

		if detail != nil {
			stats := harvest.FillDescriptions(ctx, detail, result.Products, cfg.Delay, nil, metrics)
			fallbackTotals.Attempted += stats.Attempted
			fallbackTotals.Filled += stats.Filled
		}

		if len(result.Products) == 0 {
			slog.Warn("category yielded no records, skipping sheet",
				slog.Int("category", category.ID),
				slog.String("stop_reason", string(result.StopReason)),
			)
			continue
		}

		name, err := workbook.WriteSheet(sheetBase(result.Products, category.Name), fmt.Sprintf("cat_%d", category.ID), result.Products)
		if err != nil {
			slog.Error("writing sheet", slog.Int("category", category.ID), slog.Any("error", err))
			return 1
		}
		slog.Info("sheet written", slog.String("sheet", name), slog.Int("records", len(result.Products)))

		results = append(results, result)
		allProducts = append(allProducts, result.Products...)
	}

	if workbook.Sheets() == 0 {
		slog.Warn("no records harvested in range")
		return 1
	}

	outputPath := cfg.OutputFile
	if err := workbook.Close(); err != nil {
		csvPath := csvFallbackPath(cfg.OutputFile)
		slog.Warn("workbook save failed, falling back to csv",
			slog.String("csv_path", csvPath),
			slog.Any("error", err),
		)
		if err := writeCSV(csvPath, allProducts); err != nil {
			slog.Error("csv fallback failed", slog.Any("error", err))
			return 1
		}
		outputPath = csvPath
	}

	printSummary(results, fallbackTotals, outputPath)
	return 0
}

// writeRecords pushes the record set through the configured writer.
// The xlsx format carries an automatic CSV fallback; csv writes
// directly. Returns the path that ended up written.
func writeRecords(cfg *config.Config, products []*models.Product) (string, error) {
	if cfg.OutputFormat == "csv" {
		if err := writeCSV(cfg.OutputFile, products); err != nil {
			return "", err
		}
		return cfg.OutputFile, nil
	}

	primary, err := export.NewXLSXWriter(cfg.OutputFile)
	if err != nil {
		return "", err
	}
	writer := export.NewFallbackWriter(primary, csvFallbackPath(cfg.OutputFile))

	if err := writer.Write(products); err != nil {
		return "", err
	}
	if err := writer.Validate(); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	if fell, cause := writer.FellBack(); fell {
		slog.Warn("records written via csv fallback", slog.Any("cause", cause))
		return writer.Path(), nil
	}
	return cfg.OutputFile, nil
}

func writeCSV(path string, products []*models.Product) error {
	writer, err := export.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := writer.Write(products); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Validate(); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func csvFallbackPath(path string) string {
	return strings.TrimSuffix(path, ".xlsx") + ".csv"
}

// sheetBase picks the most specific category name present on the
// records, falling back to the menu link text.
func sheetBase(products []*models.Product, fallback string) string {
	for _, p := range products {
		if p.ChildCategory != "" {
			return p.ChildCategory
		}
	}
	for _, p := range products {
		if p.Subcategory != "" {
			return p.Subcategory
		}
	}
	for _, p := range products {
		if p.Category != "" {
			return p.Category
		}
	}
	return fallback
}

func printSummary(results []*models.HarvestResult, fallback harvest.FallbackStats, outputPath string) {
	var pages, failed, accepted, rejected, duplicates, missing int
	for _, r := range results {
		pages += r.PagesFetched
		failed += r.FailedPages
		accepted += r.Accepted
		rejected += r.Rejected
		duplicates += r.Duplicates
		for _, p := range r.Products {
			if p.DescriptionMissing() {
				missing++
			}
		}
	}

	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Harvest complete")
	fmt.Printf("  Categories:      %d\n", len(results))
	fmt.Printf("  Pages fetched:   %d (%d failed)\n", pages, failed)
	fmt.Printf("  Records:         %d accepted / %d rejected / %d duplicates\n", accepted, rejected, duplicates)
	fmt.Printf("  Descriptions:    %d missing after harvest\n", missing)
	fmt.Printf("  Fallback:        %d attempted / %d filled\n", fallback.Attempted, fallback.Filled)
	for _, r := range results {
		fmt.Printf("  Category %-6d stop=%s pages=%d accepted=%d\n", r.CategoryID, r.StopReason, r.PagesFetched, r.Accepted)
	}
	fmt.Printf("  Output file:     %s\n", outputPath)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
