// Package loader reads the wide-format mortality workbook into the dataset
// input boundary. It only extracts strings; numeric normalization belongs to
// the core.
package loader

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"mortrend/internal/dataset"
)

// Year columns are detected by header label; anything outside this range is
// treated as a non-year column.
const (
	minYearColumn = 1900
	maxYearColumn = 2100
)

// ReadWorkbook opens an .xlsx file and returns the wide table plus the
// ordered year columns found in the header. When sheet is empty the first
// sheet in the workbook is used. The header row is located by scanning for a
// row that names the category and population-size columns and carries at
// least one numeric year label, the same shape the published table uses.
func ReadWorkbook(path, sheet string) (dataset.WideTable, []int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataset.WideTable{}, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataset.WideTable{}, nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataset.WideTable{}, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	headerIdx, columns := findHeader(rows)
	if headerIdx < 0 {
		return dataset.WideTable{}, nil, fmt.Errorf("no header row with category, pop_size and year columns in sheet %q", sheet)
	}

	slog.Info("located wide table header",
		slog.String("sheet", sheet),
		slog.Int("header_row", headerIdx),
		slog.Int("year_columns", len(columns.years)),
	)

	wide := dataset.WideTable{}
	for _, row := range rows[headerIdx+1:] {
		category := cellAt(row, columns.category)
		popSize := cellAt(row, columns.popSize)
		if category == "" && popSize == "" {
			continue
		}

		cells := make(map[int]string, len(columns.years))
		for year, col := range columns.yearIndex {
			if raw := cellAt(row, col); raw != "" {
				cells[year] = raw
			}
		}
		wide.Rows = append(wide.Rows, dataset.WideRow{
			Category: category,
			PopSize:  popSize,
			Cells:    cells,
		})
	}

	return wide, columns.years, nil
}

// headerColumns maps the logical columns found in a header row.
type headerColumns struct {
	category  int
	popSize   int
	years     []int
	yearIndex map[int]int
}

// findHeader scans for the first row naming a category column, a
// population-size column and at least one year column.
func findHeader(rows [][]string) (int, headerColumns) {
	for i, row := range rows {
		cols := headerColumns{category: -1, popSize: -1, yearIndex: make(map[int]int)}
		for j, cell := range row {
			label := strings.ToLower(strings.TrimSpace(cell))
			switch {
			case label == "category" || strings.HasPrefix(label, "category"):
				if cols.category < 0 {
					cols.category = j
				}
			case strings.Contains(label, "pop"):
				if cols.popSize < 0 {
					cols.popSize = j
				}
			default:
				if year, err := strconv.Atoi(label); err == nil && year >= minYearColumn && year <= maxYearColumn {
					if _, dup := cols.yearIndex[year]; !dup {
						cols.years = append(cols.years, year)
						cols.yearIndex[year] = j
					}
				}
			}
		}
		if cols.category >= 0 && cols.popSize >= 0 && len(cols.years) > 0 {
			return i, cols
		}
	}
	return -1, headerColumns{}
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
