// Package ownership holds the homeownership dataset model and the pure
// derivations the dashboard is built from: metric registry, global ranges,
// year filtering and projection into map-ready points.
package ownership

import (
	"math"
	"strings"

	"inequalitymap/internal/errors"
)

// Column identifies a column of the published dataset.
type Column string

const (
	ColumnStateCode   Column = "state_code"
	ColumnRegionLabel Column = "region_c"
	ColumnYear        Column = "year"

	ColumnRateTotal    Column = "ownership_rate_total"
	ColumnRateTop10    Column = "ownership_rate_top_10"
	ColumnRateBottom40 Column = "ownership_rate_bottom_40"
	ColumnRateBottom10 Column = "ownership_rate_bottom_10"
	ColumnRatio90to40  Column = "ownership_ratio_90_40"
	ColumnRatio90to10  Column = "ownership_ratio_90_10"
)

// MetricColumns lists the six numeric columns in dataset order.
var MetricColumns = []Column{
	ColumnRateTotal,
	ColumnRateTop10,
	ColumnRateBottom40,
	ColumnRateBottom10,
	ColumnRatio90to40,
	ColumnRatio90to10,
}

// RequiredColumns is every column a source must provide.
var RequiredColumns = append([]Column{ColumnStateCode, ColumnRegionLabel, ColumnYear}, MetricColumns...)

// IsMetric reports whether c names one of the numeric columns.
func (c Column) IsMetric() bool {
	for _, m := range MetricColumns {
		if m == c {
			return true
		}
	}
	return false
}

// Row is one (state, year) observation. Missing metric values are NaN.
type Row struct {
	StateCode   string
	RegionLabel string
	Year        int

	RateTotal    float64
	RateTop10    float64
	RateBottom40 float64
	RateBottom10 float64
	Ratio90to40  float64
	Ratio90to10  float64
}

// Value returns the metric stored under col.
func (r Row) Value(col Column) (float64, error) {
	switch col {
	case ColumnRateTotal:
		return r.RateTotal, nil
	case ColumnRateTop10:
		return r.RateTop10, nil
	case ColumnRateBottom40:
		return r.RateBottom40, nil
	case ColumnRateBottom10:
		return r.RateBottom10, nil
	case ColumnRatio90to40:
		return r.Ratio90to40, nil
	case ColumnRatio90to10:
		return r.Ratio90to10, nil
	}
	return math.NaN(), errors.SchemaMismatch("column " + string(col) + " is not a numeric metric")
}

// SetValue stores v under col.
func (r *Row) SetValue(col Column, v float64) error {
	switch col {
	case ColumnRateTotal:
		r.RateTotal = v
	case ColumnRateTop10:
		r.RateTop10 = v
	case ColumnRateBottom40:
		r.RateBottom40 = v
	case ColumnRateBottom10:
		r.RateBottom10 = v
	case ColumnRatio90to40:
		r.Ratio90to40 = v
	case ColumnRatio90to10:
		r.Ratio90to10 = v
	default:
		return errors.SchemaMismatch("column " + string(col) + " is not a numeric metric")
	}
	return nil
}

// StateName returns the state name embedded in the region label.
// Labels look like "[06] California"; the name follows the last ']'.
// A label without a marker is returned trimmed.
func (r Row) StateName() string {
	label := r.RegionLabel
	if i := strings.LastIndex(label, "]"); i >= 0 {
		label = label[i+1:]
	}
	return strings.TrimSpace(label)
}

// Dataset is an ordered, read-only collection of rows.
type Dataset []Row

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d) }

// Empty reports whether the dataset has no rows.
func (d Dataset) Empty() bool { return len(d) == 0 }

// Years returns the sorted distinct years present.
func (d Dataset) Years() []int {
	return distinctYears(d)
}
