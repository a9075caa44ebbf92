// Package config holds the harvester configuration.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds harvester configuration. Every knob the loop consumes
// lives here so runs can be isolated and repeated in tests.
type Config struct {
	// CategoryRef is a category page URL or a bare numeric ID.
	CategoryRef string

	// ListingAPI is the product-list endpoint for paginated queries.
	ListingAPI string
	// DetailURLPattern builds a product detail URL from a product code
	// (one %s verb).
	DetailURLPattern string
	// IndexURL is the page category discovery walks for links.
	IndexURL string

	MaxPages int // 0 = all pages
	PageSize int

	Delay   time.Duration
	Timeout time.Duration

	// MaxConsecutiveFailures aborts a category after this many failed
	// page fetches in a row.
	MaxConsecutiveFailures int

	// FetchDescriptions enables the detail-page fallback for records
	// the listing API returned without a description.
	FetchDescriptions    bool
	DescriptionCacheSize int

	// RangeStart/RangeEnd select discovered categories by ID
	// (inclusive). Range mode is active when RangeEnd > 0.
	RangeStart int
	RangeEnd   int
	// GlobalDedupe shares one seen-key set across all categories of a
	// range run instead of scoping it per category.
	GlobalDedupe bool

	OutputFile   string
	OutputFormat string // xlsx or csv; xlsx degrades to csv on failure
	UserAgent    string
	Verbose      bool
	MetricsAddr  string
}

// DefaultConfig returns conservative defaults for the LCSC catalog.
func DefaultConfig() *Config {
	return &Config{
		CategoryRef:            "https://www.lcsc.com/category/874.html",
		ListingAPI:             "https://wmsc.lcsc.com/ftps/wm/product/query/list",
		DetailURLPattern:       "https://www.lcsc.com/product-detail/%s.html",
		IndexURL:               "https://www.lcsc.com/products",
		MaxPages:               0,
		PageSize:               25,
		Delay:                  time.Second,
		Timeout:                20 * time.Second,
		MaxConsecutiveFailures: 3,
		FetchDescriptions:      true,
		DescriptionCacheSize:   512,
		RangeStart:             0,
		RangeEnd:               0,
		GlobalDedupe:           false,
		OutputFile:             "output/products.xlsx",
		OutputFormat:           "xlsx",
		UserAgent:              "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		Verbose:                false,
		MetricsAddr:            "",
	}
}

// RangeMode reports whether the run harvests a category ID range
// instead of a single category.
func (c *Config) RangeMode() bool {
	return c.RangeEnd > 0
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if !c.RangeMode() && c.CategoryRef == "" {
		return fmt.Errorf("category reference cannot be empty")
	}

	if c.ListingAPI == "" {
		return fmt.Errorf("listing API URL cannot be empty")
	}
	parsedAPI, err := url.Parse(c.ListingAPI)
	if err != nil {
		return fmt.Errorf("invalid listing API URL: %w", err)
	}
	if parsedAPI.Host == "" {
		return fmt.Errorf("listing API URL must include a host")
	}
	if c.IndexURL == "" {
		return fmt.Errorf("index URL cannot be empty")
	}
	if c.DetailURLPattern == "" {
		return fmt.Errorf("detail URL pattern cannot be empty")
	}

	if c.MaxPages < 0 {
		return fmt.Errorf("max pages cannot be negative")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("max consecutive failures must be positive")
	}
	if c.FetchDescriptions && c.DescriptionCacheSize <= 0 {
		return fmt.Errorf("description cache size must be positive")
	}
	if c.RangeMode() && c.RangeStart > c.RangeEnd {
		return fmt.Errorf("range start (%d) cannot exceed range end (%d)", c.RangeStart, c.RangeEnd)
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "xlsx" && c.OutputFormat != "csv" {
		return fmt.Errorf("output format must be xlsx or csv")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}
