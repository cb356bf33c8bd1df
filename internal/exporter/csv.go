// Package exporter writes combined mortality tables to CSV for downstream
// consumers.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"mortrend/internal/dataset"
)

// Writer exports tables in the canonical long-form layout:
// category, pop_size, year, value, type.
type Writer struct {
	// BOMPrefix adds a UTF-8 BOM so Excel opens the file cleanly.
	BOMPrefix bool
}

// NewWriter returns a CSV writer.
func NewWriter(bomPrefix bool) *Writer {
	return &Writer{BOMPrefix: bomPrefix}
}

// WriteTable writes the table to path, creating parent directories as needed.
// Records are written in table order; callers wanting canonical order combine
// first.
func (w *Writer) WriteTable(path string, table dataset.Table) error {
	slog.Info("writing combined table",
		slog.String("path", path),
		slog.Int("records", len(table)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	if w.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(file)
	if err := cw.Write([]string{"category", "pop_size", "year", "value", "type"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range table {
		row := []string{
			r.Category,
			r.PopSize.String(),
			strconv.Itoa(r.Year),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			r.Provenance.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
