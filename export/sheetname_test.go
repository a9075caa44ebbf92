package export

import (
	"strings"
	"testing"
)

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback string
		expected string
	}{
		{name: "plain", raw: "Capacitors", expected: "Capacitors"},
		{name: "invalid chars", raw: "Res/Chip:1 [0402]*?", expected: "Res_Chip_1 _0402___"},
		{name: "backslash", raw: `A\B`, expected: "A_B"},
		{name: "truncated", raw: strings.Repeat("x", 40), expected: strings.Repeat("x", 31)},
		{name: "empty uses fallback", raw: "  ", fallback: "Category_308", expected: "Category_308"},
		{name: "no name at all", raw: "", fallback: "", expected: "Sheet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used := make(map[string]bool)
			if got := SanitizeSheetName(tt.raw, tt.fallback, used); got != tt.expected {
				t.Fatalf("SanitizeSheetName(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestSanitizeSheetNameCollisions(t *testing.T) {
	used := make(map[string]bool)

	first := SanitizeSheetName("Diodes", "", used)
	second := SanitizeSheetName("Diodes", "", used)
	third := SanitizeSheetName("Diodes", "", used)

	if first != "Diodes" || second != "Diodes_1" || third != "Diodes_2" {
		t.Fatalf("got %q, %q, %q", first, second, third)
	}
}

func TestSanitizeSheetNameCollisionStaysWithinLimit(t *testing.T) {
	used := make(map[string]bool)
	long := strings.Repeat("y", 40)

	SanitizeSheetName(long, "", used)
	second := SanitizeSheetName(long, "", used)

	if len(second) > maxSheetNameLen {
		t.Fatalf("suffixed name %q exceeds %d chars", second, maxSheetNameLen)
	}
	if !strings.HasSuffix(second, "_1") {
		t.Fatalf("suffixed name = %q, want _1 suffix", second)
	}
}
