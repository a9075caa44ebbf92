package catalog

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-lcsc/config"
)

// Category is one entry discovered on the products index page.
type Category struct {
	ID   int
	URL  string
	Name string
}

// Discoverer collects distinct category links from the products index
// page, in the order they first appear.
type Discoverer struct {
	collector *colly.Collector
	indexURL  string
}

// NewDiscoverer builds a discoverer configured from cfg.
func NewDiscoverer(cfg *config.Config) *Discoverer {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true

	return &Discoverer{
		collector: collector,
		indexURL:  cfg.IndexURL,
	}
}

// WithTransport swaps the underlying round tripper, used by tests.
func (d *Discoverer) WithTransport(rt http.RoundTripper) {
	d.collector.WithTransport(rt)
}

// Discover fetches the index page and returns the categories it links
// to. The first meaningful link text per ID wins; "View All" menu
// entries are skipped because they duplicate real category links.
func (d *Discoverer) Discover() ([]Category, error) {
	var categories []Category
	seen := make(map[int]struct{})

	d.collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		m := categoryIDRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || id <= 0 {
			return
		}

		name := strings.TrimSpace(e.Text)
		if name == "" || strings.Contains(name, "View All") {
			return
		}

		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}

		categories = append(categories, Category{
			ID:   id,
			URL:  e.Request.AbsoluteURL(href),
			Name: name,
		})
	})

	if err := d.collector.Visit(d.indexURL); err != nil {
		return nil, fmt.Errorf("fetch category index: %w", err)
	}
	d.collector.Wait()

	return categories, nil
}

// FilterRange keeps categories whose ID falls inside [start, end].
func FilterRange(categories []Category, start, end int) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.ID >= start && c.ID <= end {
			out = append(out, c)
		}
	}
	return out
}
