// Package catalog resolves and discovers LCSC category identifiers.
package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// categoryIDRe matches the numeric segment of category URLs like
// https://www.lcsc.com/category/874.html.
var categoryIDRe = regexp.MustCompile(`/category/(\d+)\.html`)

// InvalidCategoryError means no numeric category ID could be extracted
// from a category reference. It aborts a run before any fetch.
type InvalidCategoryError struct {
	Ref string
}

func (e InvalidCategoryError) Error() string {
	return fmt.Sprintf("no numeric category id in %q", e.Ref)
}

// ParseCategoryID extracts the numeric category ID from a category page
// URL or a bare integer.
func ParseCategoryID(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, InvalidCategoryError{Ref: ref}
	}

	if id, err := strconv.Atoi(ref); err == nil {
		if id <= 0 {
			return 0, InvalidCategoryError{Ref: ref}
		}
		return id, nil
	}

	if m := categoryIDRe.FindStringSubmatch(ref); m != nil {
		id, err := strconv.Atoi(m[1])
		if err == nil && id > 0 {
			return id, nil
		}
	}

	return 0, InvalidCategoryError{Ref: ref}
}
