package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"inequalitymap/internal"
)

// Format is the encoding of a tabular payload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// tableParser turns csv or xlsx bytes into a Table
type tableParser struct {
	format Format
	logger *internal.Logger
}

func (p tableParser) parse(r io.Reader) (*Table, error) {
	switch p.format {
	case FormatCSV:
		return p.parseCSV(r)
	case FormatXLSX:
		return p.parseXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", p.format)
	}
}

// parseCSV reads CSV data into structured format
func (p tableParser) parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	p.logger.Debug("[DataReader] CSV read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV data must have a header row")
	}

	return p.processRows(rows), nil
}

// parseXLSX reads the first sheet of a workbook into structured format
func (p tableParser) parseXLSX(r io.Reader) (*Table, error) {
	readStart := time.Now()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel data: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	p.logger.Debug("[DataReader] sheet %s read in %.2fms (%d rows)", sheets[0], float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("Excel sheet must have a header row")
	}

	return p.processRows(rows), nil
}

// processRows converts raw string rows into a Table
func (p tableParser) processRows(rows [][]string) *Table {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		// spreadsheet exports sometimes lead with a UTF-8 BOM
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	dataRows := make([]RawRow, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		rowData := make(RawRow, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	p.logger.Debug("[DataReader] %s data processed (%d columns, %d rows)",
		strings.ToUpper(string(p.format)), len(headers), len(dataRows))

	return &Table{
		Headers: headers,
		Rows:    dataRows,
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
