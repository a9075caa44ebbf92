package export

import (
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/aluiziolira/go-scrape-lcsc/models"
)

const defaultSheet = "Sheet1"

// XLSXWriter accumulates rows in memory and writes a single-sheet xlsx
// workbook on Close.
type XLSXWriter struct {
	path    string
	file    *excelize.File
	mu      sync.Mutex
	nextRow int
	written int
}

// NewXLSXWriter initialises an xlsx writer and writes the header row.
func NewXLSXWriter(filename string) (*XLSXWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	w := &XLSXWriter{
		path:    filename,
		file:    f,
		nextRow: 1,
	}
	if err := writeSheetRow(f, defaultSheet, w.nextRow, Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write xlsx header: %w", err)
	}
	w.nextRow++

	return w, nil
}

// Write appends products to the in-memory workbook.
func (xw *XLSXWriter) Write(products []*models.Product) error {
	xw.mu.Lock()
	defer xw.mu.Unlock()

	for _, product := range products {
		if err := writeSheetRow(xw.file, defaultSheet, xw.nextRow, row(product)); err != nil {
			return fmt.Errorf("write xlsx record: %w", err)
		}
		xw.nextRow++
		xw.written++
	}
	return nil
}

// Close saves the workbook to disk and releases it.
func (xw *XLSXWriter) Close() error {
	xw.mu.Lock()
	defer xw.mu.Unlock()

	if err := xw.file.SaveAs(xw.path); err != nil {
		xw.file.Close()
		return fmt.Errorf("save xlsx file: %w", err)
	}
	return xw.file.Close()
}

// Validate ensures at least one record was written.
func (xw *XLSXWriter) Validate() error {
	xw.mu.Lock()
	defer xw.mu.Unlock()

	if xw.written == 0 {
		return fmt.Errorf("xlsx output has no records")
	}
	return nil
}

// Workbook writes one sheet per category for range harvests.
type Workbook struct {
	path   string
	file   *excelize.File
	used   map[string]bool
	sheets int
}

// NewWorkbook starts an empty multi-sheet workbook.
func NewWorkbook(filename string) (*Workbook, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	return &Workbook{
		path: filename,
		file: excelize.NewFile(),
		used: make(map[string]bool),
	}, nil
}

// WriteSheet adds a sheet holding the given products. The raw name is
// sanitized for xlsx rules and deduplicated against earlier sheets;
// the name actually used is returned.
func (wb *Workbook) WriteSheet(rawName, fallback string, products []*models.Product) (string, error) {
	name := SanitizeSheetName(rawName, fallback, wb.used)

	if _, err := wb.file.NewSheet(name); err != nil {
		return "", fmt.Errorf("create sheet %q: %w", name, err)
	}
	if err := writeSheetRow(wb.file, name, 1, Header); err != nil {
		return "", fmt.Errorf("write sheet %q header: %w", name, err)
	}
	for i, product := range products {
		if err := writeSheetRow(wb.file, name, i+2, row(product)); err != nil {
			return "", fmt.Errorf("write sheet %q record: %w", name, err)
		}
	}

	wb.sheets++
	return name, nil
}

// Sheets returns the number of sheets written so far.
func (wb *Workbook) Sheets() int {
	return wb.sheets
}

// Close drops the unused default sheet, saves the workbook, and
// releases it. Closing a workbook with no written sheets is an error.
func (wb *Workbook) Close() error {
	if wb.sheets == 0 {
		wb.file.Close()
		return fmt.Errorf("workbook has no sheets")
	}
	if !wb.used[defaultSheet] {
		if err := wb.file.DeleteSheet(defaultSheet); err != nil {
			wb.file.Close()
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}
	if err := wb.file.SaveAs(wb.path); err != nil {
		wb.file.Close()
		return fmt.Errorf("save workbook: %w", err)
	}
	return wb.file.Close()
}

func writeSheetRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
