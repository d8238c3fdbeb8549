package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"inequalitymap/domain/ownership"
	"inequalitymap/internal/errors"
)

// maxReportedRejects caps how many reject reasons are kept for logging
const maxReportedRejects = 10

// DecodeReport summarises row-level rejections
type DecodeReport struct {
	Total    int
	Accepted int
	Rejected int
	Reasons  []string
}

func (r *DecodeReport) reject(line int, format string, args ...interface{}) {
	r.Rejected++
	if len(r.Reasons) < maxReportedRejects {
		r.Reasons = append(r.Reasons, fmt.Sprintf("row %d: ", line)+fmt.Sprintf(format, args...))
	}
}

// Decode types a raw table into the ownership dataset. A missing required
// column fails the whole table. Rows with an empty state code, a
// non-integer year, a non-numeric metric cell, or a repeated
// (state_code, year) pair are rejected and counted, never coerced.
// Empty metric cells are kept as missing values.
func Decode(table *Table) (ownership.Dataset, DecodeReport, error) {
	report := DecodeReport{Total: len(table.Rows)}

	var missing []string
	for _, col := range ownership.RequiredColumns {
		if !table.HasColumn(string(col)) {
			missing = append(missing, string(col))
		}
	}
	if len(missing) > 0 {
		return nil, report, errors.SchemaMismatch("dataset is missing columns: " + strings.Join(missing, ", "))
	}

	type key struct {
		state string
		year  int
	}
	seen := make(map[key]struct{}, len(table.Rows))
	ds := make(ownership.Dataset, 0, len(table.Rows))

rows:
	for i, raw := range table.Rows {
		line := i + 2 // header is line 1

		state := strings.ToUpper(raw[string(ownership.ColumnStateCode)])
		if state == "" {
			report.reject(line, "empty state_code")
			continue
		}

		year, err := parseYear(raw[string(ownership.ColumnYear)])
		if err != nil {
			report.reject(line, "%v", err)
			continue
		}

		row := ownership.Row{
			StateCode:   state,
			RegionLabel: raw[string(ownership.ColumnRegionLabel)],
			Year:        year,
		}
		for _, col := range ownership.MetricColumns {
			v, err := parseMetric(raw[string(col)])
			if err != nil {
				report.reject(line, "%s: %v", col, err)
				continue rows
			}
			if err := row.SetValue(col, v); err != nil {
				return nil, report, err
			}
		}

		k := key{state: state, year: year}
		if _, dup := seen[k]; dup {
			report.reject(line, "duplicate observation for %s in %d", state, year)
			continue
		}
		seen[k] = struct{}{}

		ds = append(ds, row)
	}

	report.Accepted = len(ds)
	return ds, report, nil
}

func parseYear(s string) (int, error) {
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	// spreadsheet exports occasionally render integers as "1978.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("year %q is not an integer", s)
	}
	return int(f), nil
}

func parseMetric(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", "na", "n/a", "nan", "null":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return v, nil
}
