package export

import (
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-scrape-lcsc/models"
)

// FallbackWriter wraps a primary writer and degrades to CSV when the
// primary fails, replaying every buffered row so no data is lost. Only
// a failure of the CSV fallback itself surfaces as an error.
type FallbackWriter struct {
	primary  OutputWriter
	csvPath  string
	buffered []*models.Product
	csv      *CSVWriter
	cause    error
}

// NewFallbackWriter wraps primary with a CSV fallback at csvPath.
func NewFallbackWriter(primary OutputWriter, csvPath string) *FallbackWriter {
	return &FallbackWriter{
		primary: primary,
		csvPath: csvPath,
	}
}

// Write forwards products to the active sink, switching to CSV the
// first time the primary fails.
func (fw *FallbackWriter) Write(products []*models.Product) error {
	fw.buffered = append(fw.buffered, products...)

	if fw.csv != nil {
		return fw.csv.Write(products)
	}
	if err := fw.primary.Write(products); err != nil {
		return fw.degrade(err, true)
	}
	return nil
}

// Close persists whichever sink is active. A primary failure during
// its own Close still triggers the fallback.
func (fw *FallbackWriter) Close() error {
	if fw.csv != nil {
		return fw.csv.Close()
	}
	if err := fw.primary.Close(); err != nil {
		if derr := fw.degrade(err, false); derr != nil {
			return derr
		}
		return fw.csv.Close()
	}
	return nil
}

// Validate delegates to the active sink.
func (fw *FallbackWriter) Validate() error {
	if fw.csv != nil {
		return fw.csv.Validate()
	}
	return fw.primary.Validate()
}

// FellBack reports whether the CSV fallback took over, and why.
func (fw *FallbackWriter) FellBack() (bool, error) {
	return fw.csv != nil, fw.cause
}

// Path returns the file that ended up authoritative.
func (fw *FallbackWriter) Path() string {
	if fw.csv != nil {
		return fw.csvPath
	}
	return ""
}

func (fw *FallbackWriter) degrade(cause error, closePrimary bool) error {
	fw.cause = cause
	slog.Warn("primary export failed, falling back to csv",
		slog.String("csv_path", fw.csvPath),
		slog.Any("error", cause),
	)

	if closePrimary {
		if err := fw.primary.Close(); err != nil {
			slog.Debug("close failed primary writer", slog.Any("error", err))
		}
	}

	csvWriter, err := NewCSVWriter(fw.csvPath)
	if err != nil {
		return fmt.Errorf("open csv fallback: %w", err)
	}
	fw.csv = csvWriter

	if len(fw.buffered) > 0 {
		if err := fw.csv.Write(fw.buffered); err != nil {
			return fmt.Errorf("replay rows to csv fallback: %w", err)
		}
	}
	return nil
}
