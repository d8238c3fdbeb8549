package ownership

import (
	"math"

	"github.com/montanaflynn/stats"

	"inequalitymap/internal/errors"
)

// Range is the observed span of one metric over the full dataset.
// Count is the number of non-missing values; when it is zero Min and Max
// are zero and carry no meaning.
type Range struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return r.Count > 0 && v >= r.Min && v <= r.Max
}

// ComputeRanges scans every row once per column and returns the min and max
// of the non-missing values. The result is diagnostic: map color bounds come
// from Family.Bounds, never from here.
func ComputeRanges(ds Dataset, cols []Column) (map[Column]Range, error) {
	ranges := make(map[Column]Range, len(cols))
	for _, col := range cols {
		if !col.IsMetric() {
			return nil, errors.SchemaMismatch("cannot compute range of non-numeric column " + string(col))
		}

		values := make(stats.Float64Data, 0, len(ds))
		for _, row := range ds {
			v, err := row.Value(col)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(v) {
				continue
			}
			values = append(values, v)
		}

		if len(values) == 0 {
			ranges[col] = Range{}
			continue
		}

		min, err := stats.Min(values)
		if err != nil {
			return nil, errors.Wrapf(err, "min of %s", col)
		}
		max, err := stats.Max(values)
		if err != nil {
			return nil, errors.Wrapf(err, "max of %s", col)
		}
		ranges[col] = Range{Min: min, Max: max, Count: len(values)}
	}
	return ranges, nil
}
