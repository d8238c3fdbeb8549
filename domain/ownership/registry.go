package ownership

import (
	"inequalitymap/internal/errors"
)

// Metric is one selectable (label, column) pair.
type Metric struct {
	Label  string `json:"label"`
	Column Column `json:"column"`
}

// Bounds is a fixed color-scale range.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Family is a fixed, ordered registry of metrics shown on one panel,
// together with the display bounds and palette that panel always uses.
type Family struct {
	Key          string
	Title        string
	Prompt       string
	Metrics      []Metric
	Bounds       Bounds
	ColorScale   string
	// ReverseScale flips the palette so higher values render darker.
	// plotly's Blues runs dark to light, its Reds light to dark.
	ReverseScale bool
}

// Rates are absolute homeownership rates (fractions in [0,1]).
var Rates = Family{
	Key:    "rates",
	Title:  "Ownership Rates Visualization",
	Prompt: "Select Variable",
	Metrics: []Metric{
		{Label: "Ownership Rate (Total)", Column: ColumnRateTotal},
		{Label: "Ownership Rate (Top 10%)", Column: ColumnRateTop10},
		{Label: "Ownership Rate (Bottom 40%)", Column: ColumnRateBottom40},
		{Label: "Ownership Rate (Bottom 10%)", Column: ColumnRateBottom10},
	},
	Bounds:       Bounds{Min: 0.3, Max: 1},
	ColorScale:   "Blues",
	ReverseScale: true,
}

// Ratios compare ownership rates between a high and a low income group.
var Ratios = Family{
	Key:    "ratios",
	Title:  "Ownership Ratios Visualization",
	Prompt: "Select Ownership Ratio",
	Metrics: []Metric{
		{Label: "Ownership Ratio (90/40)", Column: ColumnRatio90to40},
		{Label: "Ownership Ratio (90/10)", Column: ColumnRatio90to10},
	},
	Bounds:     Bounds{Min: 1, Max: 3},
	ColorScale: "Reds",
}

// Families lists the panels in page order.
var Families = []Family{Rates, Ratios}

// FamilyByKey returns the family registered under key.
func FamilyByKey(key string) (Family, bool) {
	for _, f := range Families {
		if f.Key == key {
			return f, true
		}
	}
	return Family{}, false
}

// Labels returns the metric labels in registry order.
func (f Family) Labels() []string {
	labels := make([]string, len(f.Metrics))
	for i, m := range f.Metrics {
		labels[i] = m.Label
	}
	return labels
}

// Default is the first registered metric.
func (f Family) Default() Metric {
	return f.Metrics[0]
}

// Lookup finds the metric with the given label.
func (f Family) Lookup(label string) (Metric, bool) {
	for _, m := range f.Metrics {
		if m.Label == label {
			return m, true
		}
	}
	return Metric{}, false
}

// Resolve is Lookup returning an UNKNOWN_REGISTRY_KEY error.
func (f Family) Resolve(label string) (Metric, error) {
	if m, ok := f.Lookup(label); ok {
		return m, nil
	}
	return Metric{}, errors.UnknownRegistryKey(f.Key, label)
}

// MustLookup panics on an unknown label. Callers only pass labels taken
// from Labels, so a miss is a programming error.
func (f Family) MustLookup(label string) Metric {
	m, err := f.Resolve(label)
	if err != nil {
		panic(err)
	}
	return m
}
