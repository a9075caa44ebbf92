// Package models defines data structures for the harvester.
package models

import "time"

// RawProduct is a listing entry exactly as the catalog API returned it.
// It only lives long enough to pass through normalization.
type RawProduct struct {
	MPN           string
	LCSCCode      string
	Manufacturer  string
	Description   string
	Category      string
	Subcategory   string
	ChildCategory string
	Page          int
}

// Product is a validated, cleaned listing entry. The three identity
// fields are guaranteed non-empty. An empty Description marks the value
// as absent and makes the record eligible for the detail-page fallback.
type Product struct {
	MPN           string `csv:"mpn" json:"mpn"`
	LCSCCode      string `csv:"lcsc_code" json:"lcsc_code"`
	Manufacturer  string `csv:"manufacturer" json:"manufacturer"`
	Description   string `csv:"description" json:"description"`
	Category      string `csv:"category" json:"category"`
	Subcategory   string `csv:"subcategory" json:"subcategory"`
	ChildCategory string `csv:"childcategory" json:"childcategory"`
	Page          int    `csv:"page" json:"page"`
}

// DescriptionMissing reports whether the record still needs a
// detail-page description.
func (p *Product) DescriptionMissing() bool {
	return p.Description == ""
}

// PageResult is one page worth of listing data.
type PageResult struct {
	Records    []RawProduct
	TotalPages int // as advertised by the API; 0 when unknown
}

// StopReason records why a harvest loop terminated.
type StopReason string

const (
	StopEndOfData        StopReason = "end_of_data"
	StopPageCap          StopReason = "page_cap"
	StopFailureThreshold StopReason = "failure_threshold"
	StopCancelled        StopReason = "cancelled"
)

// HarvestResult holds the overall result of one category harvest.
type HarvestResult struct {
	CategoryID     int
	Products       []*Product
	PagesFetched   int
	FailedPages    int
	Accepted       int
	Rejected       int
	Duplicates     int
	TotalPagesHint int // API totalPage from page 1; logged, never trusted
	StopReason     StopReason
	StartTime      time.Time
	EndTime        time.Time
}
