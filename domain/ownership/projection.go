package ownership

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// DefaultPrecision is the number of decimals map values are rounded to.
const DefaultPrecision = 2

// Point is the minimal tuple the map renderer needs for one state.
// Missing points carry Value 0 and are left uncolored.
type Point struct {
	StateCode string  `json:"state_code"`
	Label     string  `json:"label"`
	State     string  `json:"state"`
	Value     float64 `json:"value"`
	Missing   bool    `json:"missing,omitempty"`
}

// Project maps rows onto (location, label, value) points for col, rounding
// half away from zero to precision decimals. Output order follows input
// order and rows is left untouched.
func Project(rows Dataset, col Column, precision int) ([]Point, error) {
	if precision < 0 {
		precision = 0
	}

	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		v, err := row.Value(col)
		if err != nil {
			return nil, err
		}

		p := Point{
			StateCode: row.StateCode,
			Label:     row.RegionLabel,
			State:     row.StateName(),
		}
		if math.IsNaN(v) {
			p.Missing = true
		} else {
			p.Value = scalar.Round(v, precision)
		}
		points = append(points, p)
	}
	return points, nil
}
