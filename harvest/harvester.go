package harvest

import (
	"context"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-scrape-lcsc/config"
	"github.com/aluiziolira/go-scrape-lcsc/models"
	"github.com/aluiziolira/go-scrape-lcsc/normalize"
)

// PageFetcher is the single-page listing capability the loop drives.
type PageFetcher interface {
	FetchPage(ctx context.Context, categoryID, page int) (*models.PageResult, error)
}

// Sleeper pauses between requests. Injectable so tests run without
// wall-clock waits.
type Sleeper func(ctx context.Context, d time.Duration)

// DefaultSleeper waits for d, or less if the context ends first.
func DefaultSleeper(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Harvester drives pagination for one category at a time. It owns the
// page cap, the inter-request delay, the consecutive-failure budget,
// and the termination conditions; fetching, normalization, and dedup
// are delegated.
type Harvester struct {
	cfg     *config.Config
	fetcher PageFetcher
	sleep   Sleeper
	deduper *Deduper
	metrics *Metrics
}

// NewHarvester builds a harvester with its own seen-key set.
func NewHarvester(cfg *config.Config, fetcher PageFetcher, metrics *Metrics) *Harvester {
	return &Harvester{
		cfg:     cfg,
		fetcher: fetcher,
		sleep:   DefaultSleeper,
		deduper: NewDeduper(),
		metrics: metrics,
	}
}

// SetSleeper overrides the inter-request delay implementation.
func (h *Harvester) SetSleeper(s Sleeper) {
	if s != nil {
		h.sleep = s
	}
}

// ShareDeduper replaces the seen-key set so several category runs can
// collapse duplicates into one scope.
func (h *Harvester) ShareDeduper(d *Deduper) {
	if d != nil {
		h.deduper = d
	}
}

// Run walks the category's pages in order until end of data, the page
// cap, the consecutive-failure budget, or cancellation. A zero-record
// page is the primary end-of-data signal; the API's advertised total
// page count is recorded as a cross-check only. Accumulated records
// are returned for every stop reason, including cancellation.
func (h *Harvester) Run(ctx context.Context, categoryID int) *models.HarvestResult {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.HarvestResult{
		CategoryID: categoryID,
		StartTime:  time.Now(),
	}
	consecutiveFailures := 0
	sawShortPage := false

	for page := 1; h.cfg.MaxPages == 0 || page <= h.cfg.MaxPages; page++ {
		if ctx.Err() != nil {
			result.StopReason = models.StopCancelled
			break
		}

		pageResult, err := h.fetcher.FetchPage(ctx, categoryID, page)
		result.PagesFetched++
		if err != nil {
			consecutiveFailures++
			result.FailedPages++
			h.metrics.IncPage("failed")
			slog.Error("page fetch failed",
				slog.Int("category", categoryID),
				slog.Int("page", page),
				slog.Int("consecutive_failures", consecutiveFailures),
				slog.Any("error", err),
			)
			if consecutiveFailures >= h.cfg.MaxConsecutiveFailures {
				result.StopReason = models.StopFailureThreshold
				break
			}
			h.sleep(ctx, h.cfg.Delay)
			continue
		}
		consecutiveFailures = 0
		h.metrics.IncPage("ok")

		if page == 1 && pageResult.TotalPages > 0 {
			result.TotalPagesHint = pageResult.TotalPages
			slog.Info("api advertises total pages",
				slog.Int("category", categoryID),
				slog.Int("total_pages", pageResult.TotalPages),
			)
		}

		if len(pageResult.Records) == 0 {
			result.StopReason = models.StopEndOfData
			break
		}

		newOnPage := 0
		for i := range pageResult.Records {
			product, err := normalize.Product(&pageResult.Records[i])
			if err != nil {
				result.Rejected++
				h.metrics.IncRecord("rejected")
				slog.Debug("record rejected", slog.Int("page", page), slog.Any("error", err))
				continue
			}
			if !h.deduper.Admit(product.MPN, product.LCSCCode) {
				result.Duplicates++
				h.metrics.IncRecord("duplicate")
				continue
			}
			result.Products = append(result.Products, product)
			result.Accepted++
			newOnPage++
			h.metrics.IncRecord("accepted")
		}

		if len(pageResult.Records) < h.cfg.PageSize && !sawShortPage {
			// The API sometimes under-fills a page mid-run, so a short
			// page is only a hint; an empty page confirms the tail.
			sawShortPage = true
			slog.Debug("short page",
				slog.Int("page", page),
				slog.Int("records", len(pageResult.Records)),
				slog.Int("page_size", h.cfg.PageSize),
			)
		}

		slog.Info("page harvested",
			slog.Int("category", categoryID),
			slog.Int("page", page),
			slog.Int("records", len(pageResult.Records)),
			slog.Int("new", newOnPage),
			slog.Int("accepted_total", result.Accepted),
		)

		h.sleep(ctx, h.cfg.Delay)
	}

	if result.StopReason == "" {
		if ctx.Err() != nil {
			result.StopReason = models.StopCancelled
		} else {
			result.StopReason = models.StopPageCap
		}
	}
	result.EndTime = time.Now()

	slog.Info("harvest finished",
		slog.Int("category", categoryID),
		slog.String("stop_reason", string(result.StopReason)),
		slog.Int("pages", result.PagesFetched),
		slog.Int("accepted", result.Accepted),
		slog.Int("rejected", result.Rejected),
		slog.Int("duplicates", result.Duplicates),
	)

	return result
}
