package harvest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-scrape-lcsc/config"
	"github.com/aluiziolira/go-scrape-lcsc/models"
	"github.com/aluiziolira/go-scrape-lcsc/normalize"
)

// DescriptionFetcher supplies fallback descriptions for records the
// listing API returned without one.
type DescriptionFetcher interface {
	FetchDescription(ctx context.Context, code string) (string, error)
}

// descriptionRe pulls the description window out of the flattened
// detail-page text, ending at the section that follows it.
var descriptionRe = regexp.MustCompile(`Description\s+(.+?)(?:\s+Datasheet|\s+##\s+Products\s+Specifications|\s+Type\s+Description|$)`)

// DetailFetcher fetches product detail pages and extracts their
// description text. Results are cached so a product code is fetched at
// most once per run even when it reappears across categories.
type DetailFetcher struct {
	cfg       *config.Config
	collector *colly.Collector
	cache     *lru.Cache[string, string]
	metrics   *Metrics

	mu   sync.Mutex
	body []byte

	handlersOnce sync.Once
}

// NewDetailFetcher builds a detail-page fetcher configured from cfg.
func NewDetailFetcher(cfg *config.Config, metrics *Metrics) (*DetailFetcher, error) {
	cache, err := lru.New[string, string](cfg.DescriptionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("description cache: %w", err)
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true

	return &DetailFetcher{
		cfg:       cfg,
		collector: collector,
		cache:     cache,
		metrics:   metrics,
	}, nil
}

// WithTransport swaps the underlying round tripper, used by tests.
func (df *DetailFetcher) WithTransport(rt http.RoundTripper) {
	df.collector.WithTransport(rt)
}

// FetchDescription fetches the detail page for a product code and
// extracts its description. Misses and parse failures are cached as
// empty so a broken page is not refetched.
func (df *DetailFetcher) FetchDescription(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", nil
	}
	if cached, ok := df.cache.Get(code); ok {
		return cached, nil
	}
	if ctx != nil && ctx.Err() != nil {
		return "", ctx.Err()
	}

	df.handlersOnce.Do(func() {
		df.collector.OnResponse(func(r *colly.Response) {
			df.body = r.Body
		})
	})

	// The collector is driven by one goroutine at a time; the lock
	// protects the response buffer if a caller ever parallelizes.
	df.mu.Lock()
	defer df.mu.Unlock()

	df.body = nil
	detailURL := fmt.Sprintf(df.cfg.DetailURLPattern, code)
	if err := df.collector.Visit(detailURL); err != nil {
		return "", fmt.Errorf("fetch detail %s: %w", code, err)
	}
	df.collector.Wait()

	if len(df.body) == 0 {
		df.cache.Add(code, "")
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(df.body))
	if err != nil {
		return "", fmt.Errorf("parse detail %s: %w", code, err)
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	description := ""
	if m := descriptionRe.FindStringSubmatch(text); m != nil {
		description = normalize.CleanDescription(m[1])
	}

	df.cache.Add(code, description)
	return description, nil
}

// FallbackStats counts detail-page fallback activity for one run.
type FallbackStats struct {
	Attempted int
	Filled    int
}

// FillDescriptions fetches detail-page descriptions for every record
// still missing one. Each record is attempted at most once; a failed
// lookup leaves the record absent. The page-fetch delay applies
// between lookups so the fallback does not amplify request rate.
func FillDescriptions(ctx context.Context, fetcher DescriptionFetcher, products []*models.Product, delay time.Duration, sleep Sleeper, metrics *Metrics) FallbackStats {
	var stats FallbackStats
	if fetcher == nil {
		return stats
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if sleep == nil {
		sleep = DefaultSleeper
	}

	for _, product := range products {
		if !product.DescriptionMissing() {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		stats.Attempted++
		metrics.IncFallback("attempted")

		description, err := fetcher.FetchDescription(ctx, product.LCSCCode)
		if err != nil {
			slog.Warn("description fallback failed",
				slog.String("code", product.LCSCCode),
				slog.Any("error", err),
			)
		} else if description != "" {
			product.Description = description
			stats.Filled++
			metrics.IncFallback("filled")
		}

		sleep(ctx, delay)
	}

	return stats
}
