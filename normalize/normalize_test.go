package normalize

import (
	"strings"
	"testing"

	"github.com/aluiziolira/go-scrape-lcsc/models"
)

func TestProductValidation(t *testing.T) {
	valid := models.RawProduct{
		MPN:          "BSS138-7-F",
		LCSCCode:     "C40912",
		Manufacturer: "DIODES",
		Description:  "N-Channel MOSFET",
		Category:     "Transistors",
		Page:         3,
	}

	tests := []struct {
		name    string
		mutate  func(*models.RawProduct)
		wantErr bool
	}{
		{
			name:    "valid record",
			mutate:  func(r *models.RawProduct) {},
			wantErr: false,
		},
		{
			name: "missing mpn",
			mutate: func(r *models.RawProduct) {
				r.MPN = ""
			},
			wantErr: true,
		},
		{
			name: "whitespace mpn",
			mutate: func(r *models.RawProduct) {
				r.MPN = "   "
			},
			wantErr: true,
		},
		{
			name: "single char mpn",
			mutate: func(r *models.RawProduct) {
				r.MPN = "X"
			},
			wantErr: true,
		},
		{
			name: "missing product code",
			mutate: func(r *models.RawProduct) {
				r.LCSCCode = ""
			},
			wantErr: true,
		},
		{
			name: "code without C prefix",
			mutate: func(r *models.RawProduct) {
				r.LCSCCode = "40912"
			},
			wantErr: true,
		},
		{
			name: "code too short",
			mutate: func(r *models.RawProduct) {
				r.LCSCCode = "C123"
			},
			wantErr: true,
		},
		{
			name: "missing manufacturer",
			mutate: func(r *models.RawProduct) {
				r.Manufacturer = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := valid
			tt.mutate(&raw)
			product, err := Product(&raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Product() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if product.MPN == "" || product.LCSCCode == "" || product.Manufacturer == "" {
					t.Fatalf("identity fields must be non-empty: %+v", product)
				}
				if product.Page != raw.Page {
					t.Fatalf("page = %d, want %d", product.Page, raw.Page)
				}
			}
		})
	}
}

func TestProductTrimsFields(t *testing.T) {
	raw := models.RawProduct{
		MPN:          "  BSS138  ",
		LCSCCode:     " C40912 ",
		Manufacturer: " onsemi ",
		Category:     " Transistors ",
	}

	product, err := Product(&raw)
	if err != nil {
		t.Fatalf("Product(): %v", err)
	}
	if product.MPN != "BSS138" || product.LCSCCode != "C40912" || product.Manufacturer != "onsemi" {
		t.Fatalf("fields not trimmed: %+v", product)
	}
	if product.Category != "Transistors" {
		t.Fatalf("category = %q, want %q", product.Category, "Transistors")
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty stays absent",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text untouched",
			input:    "30V 5A N-Channel MOSFET",
			expected: "30V 5A N-Channel MOSFET",
		},
		{
			name:     "collapses whitespace",
			input:    "30V  5A\n\tN-Channel",
			expected: "30V 5A N-Channel",
		},
		{
			name:     "strips dollar price",
			input:    "MOSFET N-CH 60V $1.23",
			expected: "MOSFET N-CH 60V",
		},
		{
			name:     "strips us dollar price and pcs",
			input:    "Diode US$0.50 5000 pcs",
			expected: "Diode",
		},
		{
			name:     "strips stock count",
			input:    "119,020 In Stock BSS138 SOT-23",
			expected: "BSS138 SOT-23",
		},
		{
			name:     "strips stock marker with colon",
			input:    "Schottky diode in stock: 1000",
			expected: "Schottky diode",
		},
		{
			name:     "price and qty markers before text",
			input:    "USD 0.01  |  qty: 1000  Low ESR capacitor",
			expected: "Low ESR capacitor",
		},
		{
			name:     "drops emptied pipe segments",
			input:    "0.5A | $0.10 | SOT-23",
			expected: "0.5A SOT-23",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanDescription(tt.input); got != tt.expected {
				t.Fatalf("CleanDescription(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanDescriptionTruncates(t *testing.T) {
	long := "USD 0.01  |  qty: 1000  " + strings.TrimSpace(strings.Repeat("capacitor ", 40))

	got := CleanDescription(long)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation marker, got %q", got)
	}
	if len(got) > MaxDescriptionLen+3 {
		t.Fatalf("length = %d, want <= %d", len(got), MaxDescriptionLen+3)
	}
	if strings.Contains(got, "USD") || strings.Contains(got, "qty") {
		t.Fatalf("price/quantity fragments survived: %q", got)
	}
	if !strings.HasPrefix(got, "capacitor") {
		t.Fatalf("expected cleaned text to start with the description, got %q", got)
	}
}
