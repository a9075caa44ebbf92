package harvest

import "strings"

// Deduper tracks composite (mpn, product code) keys for a run. One
// instance spans a whole category harvest, or all categories of a
// range run when sharing is configured.
type Deduper struct {
	seen map[string]struct{}
}

// NewDeduper returns an empty seen-key set.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// Admit registers the key and reports whether it was unseen. Keys are
// case- and whitespace-insensitive so inconsistent upstream casing does
// not leak near-duplicates.
func (d *Deduper) Admit(mpn, code string) bool {
	key := dedupKey(mpn, code)
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Len returns the number of admitted keys.
func (d *Deduper) Len() int {
	return len(d.seen)
}

func dedupKey(mpn, code string) string {
	return strings.ToUpper(strings.TrimSpace(mpn)) + "\x00" + strings.ToUpper(strings.TrimSpace(code))
}
