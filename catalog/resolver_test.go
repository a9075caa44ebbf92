package catalog

import (
	"errors"
	"testing"
)

func TestParseCategoryID(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    int
		wantErr bool
	}{
		{
			name: "category url",
			ref:  "https://www.lcsc.com/category/874.html",
			want: 874,
		},
		{
			name: "category url with query",
			ref:  "https://www.lcsc.com/category/874.html?page=2",
			want: 874,
		},
		{
			name: "bare integer",
			ref:  "874",
			want: 874,
		},
		{
			name: "padded integer",
			ref:  "  874  ",
			want: 874,
		},
		{
			name:    "empty",
			ref:     "",
			wantErr: true,
		},
		{
			name:    "zero id",
			ref:     "0",
			wantErr: true,
		},
		{
			name:    "negative id",
			ref:     "-5",
			wantErr: true,
		},
		{
			name:    "url without category segment",
			ref:     "https://www.lcsc.com/products",
			wantErr: true,
		},
		{
			name:    "non numeric segment",
			ref:     "https://www.lcsc.com/category/abc.html",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategoryID(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got id %d", tt.ref, got)
				}
				var invalid InvalidCategoryError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidCategoryError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategoryID(%q): %v", tt.ref, err)
			}
			if got != tt.want {
				t.Fatalf("ParseCategoryID(%q) = %d, want %d", tt.ref, got, tt.want)
			}
		})
	}
}
