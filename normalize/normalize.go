// Package normalize validates raw listing records and cleans their
// description text.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aluiziolira/go-scrape-lcsc/models"
)

// MaxDescriptionLen caps cleaned descriptions. Longer text is cut on a
// word boundary and marked with truncationMarker.
const MaxDescriptionLen = 200

const truncationMarker = "..."

var (
	// codeRe is the shape of an LCSC product code.
	codeRe = regexp.MustCompile(`^C\d{4,}$`)

	// Listing text sometimes carries pricing and stock fragments glued
	// to the description. These match the fragments themselves, not
	// just tails, so text following them survives.
	priceRe = regexp.MustCompile(`(?i)(?:US\$|USD|\$)\s*\d[\d,.]*`)
	qtyRe   = regexp.MustCompile(`(?i)(?:qty|quantity)\s*:?\s*\d[\d,]*`)
	pcsRe   = regexp.MustCompile(`(?i)\d[\d,]*\s*pcs\b`)
	stockRe = regexp.MustCompile(`(?i)(?:\d[\d,]*\s+)?in\s+stock\s*:?\s*\d*[\d,]*`)
)

// Product validates a raw listing record and returns its cleaned form.
// The error reports which required field failed; callers count the
// rejection and move on.
func Product(raw *models.RawProduct) (*models.Product, error) {
	if raw == nil {
		return nil, fmt.Errorf("record is nil")
	}

	mpn := strings.TrimSpace(raw.MPN)
	code := strings.TrimSpace(raw.LCSCCode)
	manufacturer := strings.TrimSpace(raw.Manufacturer)

	if mpn == "" {
		return nil, fmt.Errorf("record missing mpn")
	}
	if len(mpn) < 2 {
		return nil, fmt.Errorf("mpn %q too short", mpn)
	}
	if code == "" {
		return nil, fmt.Errorf("record missing product code for %s", mpn)
	}
	if !codeRe.MatchString(code) {
		return nil, fmt.Errorf("product code %q for %s is not a C-number", code, mpn)
	}
	if manufacturer == "" {
		return nil, fmt.Errorf("record missing manufacturer for %s", mpn)
	}

	return &models.Product{
		MPN:           mpn,
		LCSCCode:      code,
		Manufacturer:  manufacturer,
		Description:   CleanDescription(raw.Description),
		Category:      strings.TrimSpace(raw.Category),
		Subcategory:   strings.TrimSpace(raw.Subcategory),
		ChildCategory: strings.TrimSpace(raw.ChildCategory),
		Page:          raw.Page,
	}, nil
}

// CleanDescription strips price and quantity fragments, collapses
// whitespace, and truncates overly long text on a word boundary. An
// empty result means the description is absent.
func CleanDescription(desc string) string {
	if desc == "" {
		return ""
	}

	desc = priceRe.ReplaceAllString(desc, " ")
	desc = qtyRe.ReplaceAllString(desc, " ")
	desc = stockRe.ReplaceAllString(desc, " ")
	desc = pcsRe.ReplaceAllString(desc, " ")

	desc = dropEmptySegments(desc)
	desc = strings.Join(strings.Fields(desc), " ")

	if len(desc) > MaxDescriptionLen {
		cut := desc[:MaxDescriptionLen]
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		desc = cut + truncationMarker
	}

	return strings.TrimSpace(desc)
}

// dropEmptySegments removes pipe-separated segments the fragment
// stripping emptied out, so "0.5A | | SOT-23" becomes "0.5A SOT-23".
func dropEmptySegments(s string) string {
	if !strings.Contains(s, "|") {
		return s
	}
	parts := strings.Split(s, "|")
	kept := parts[:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, strings.TrimSpace(part))
		}
	}
	return strings.Join(kept, " ")
}
