package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"inequalitymap/domain/ownership"
	"inequalitymap/internal/dataset"
	"inequalitymap/internal/errors"
)

// NoDataWarning is shown in place of a map when the selected year has no rows
const NoDataWarning = "No data available for the selected year."

// DataIntro opens the data page
const DataIntro = "This dashboard provides an interactive exploration of inequality metrics across the United States. " +
	"The graphs below highlight different aspects of wealth distribution, such as homeownership rates and inequality ratios. " +
	"Each graph is accompanied by an explanatory section to help you understand its significance and interpret the data effectively."

var explanations = map[string]string{
	ownership.Rates.Key: "The **%s** graph shows the proportion of homeownership across different states in the US. " +
		"A higher value indicates a greater percentage of residents who own homes. This metric helps to identify regions " +
		"with high or low homeownership, often linked to economic conditions, housing affordability, and income levels. " +
		"For instance, states with higher ownership rates might reflect strong housing markets or more equitable wealth distribution.",
	ownership.Ratios.Key: "The **%s** graph illustrates inequality in homeownership distribution between different economic groups. " +
		"A higher ratio indicates a larger disparity between the wealthiest and less affluent segments of the population. " +
		"For example, a ratio of 2 means the top group owns twice as much as the lower group. Understanding these ratios helps " +
		"to analyze wealth concentration and the effectiveness of policies aimed at reducing economic inequality.",
}

// PanelState is the selection for one panel. Zero values mean the
// family's first metric and the first eligible year.
type PanelState struct {
	Label string
	Year  int
}

// DataState is every selection on the data page
type DataState struct {
	Rates  PanelState
	Ratios PanelState
}

// Option is one entry of a metric dropdown
type Option struct {
	Label    string
	Selected bool
}

// Choropleth is the figure description handed to the browser map renderer
type Choropleth struct {
	Title        string     `json:"title"`
	Locations    []string   `json:"locations"`
	Z            []*float64 `json:"z"`
	Text         []string   `json:"text"`
	ZMin         float64    `json:"zmin"`
	ZMax         float64    `json:"zmax"`
	ColorScale   string     `json:"colorscale"`
	ReverseScale bool       `json:"reversescale"`
	LocationMode string     `json:"locationmode"`
	Scope        string     `json:"scope"`
	ColorBar     string     `json:"colorbar"`
}

// PanelView is one fully evaluated map panel
type PanelView struct {
	Family      string
	Heading     string
	Prompt      string
	Options     []Option
	Metric      ownership.Metric
	Years       []int
	Year        int
	YearMin     int
	YearMax     int
	Title       string
	Warning     string
	Chart       *Choropleth
	Points      []ownership.Point
	Observed    ownership.Range
	Explanation string
}

// DataPageView is the evaluated data page
type DataPageView struct {
	Intro    string
	Panels   []PanelView
	Source   string
	LoadedAt time.Time
}

// RenderDataPage evaluates the data page for state. It only reads snap and
// returns the same view for the same inputs, so it may be called on every
// request. Labels must come from the registry; ParsePanelState checks them.
func RenderDataPage(snap *dataset.Snapshot, state DataState, precision int) (DataPageView, error) {
	rates, err := RenderPanel(snap, ownership.Rates, state.Rates, precision)
	if err != nil {
		return DataPageView{}, err
	}
	ratios, err := RenderPanel(snap, ownership.Ratios, state.Ratios, precision)
	if err != nil {
		return DataPageView{}, err
	}
	return DataPageView{
		Intro:    DataIntro,
		Panels:   []PanelView{rates, ratios},
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt,
	}, nil
}

// RenderPanel evaluates one panel: year filter, registry lookup, projection
// and a choropleth pinned to the family's fixed bounds
func RenderPanel(snap *dataset.Snapshot, family ownership.Family, state PanelState, precision int) (PanelView, error) {
	metric := family.Default()
	if state.Label != "" {
		metric = family.MustLookup(state.Label)
	}

	year := state.Year
	if year == 0 && len(snap.Years) > 0 {
		year = snap.Years[0]
	}

	view := PanelView{
		Family:      family.Key,
		Heading:     family.Title,
		Prompt:      family.Prompt,
		Options:     options(family, metric),
		Metric:      metric,
		Years:       snap.Years,
		Year:        year,
		Title:       fmt.Sprintf("%s by State in %d", metric.Label, year),
		Observed:    snap.Ranges[metric.Column],
		Explanation: fmt.Sprintf(explanations[family.Key], metric.Label),
	}
	if len(snap.Years) > 0 {
		view.YearMin = snap.Years[0]
		view.YearMax = snap.Years[len(snap.Years)-1]
	}

	rows := ownership.FilterByYear(snap.Dataset, year)
	if rows.Empty() {
		view.Warning = NoDataWarning
		return view, nil
	}

	points, err := ownership.Project(rows, metric.Column, precision)
	if err != nil {
		return PanelView{}, errors.Wrapf(err, "failed to project %s", metric.Column)
	}
	view.Points = points
	view.Chart = choropleth(view.Title, metric, family, points)
	return view, nil
}

func options(family ownership.Family, selected ownership.Metric) []Option {
	opts := make([]Option, len(family.Metrics))
	for i, m := range family.Metrics {
		opts[i] = Option{Label: m.Label, Selected: m == selected}
	}
	return opts
}

func choropleth(title string, metric ownership.Metric, family ownership.Family, points []ownership.Point) *Choropleth {
	c := &Choropleth{
		Title:        title,
		Locations:    make([]string, len(points)),
		Z:            make([]*float64, len(points)),
		Text:         make([]string, len(points)),
		ZMin:         family.Bounds.Min,
		ZMax:         family.Bounds.Max,
		ColorScale:   family.ColorScale,
		ReverseScale: family.ReverseScale,
		LocationMode: "USA-states",
		Scope:        "usa",
		ColorBar:     string(metric.Column),
	}
	for i, p := range points {
		c.Locations[i] = p.StateCode
		c.Text[i] = p.Label
		if !p.Missing {
			v := p.Value
			c.Z[i] = &v
		}
	}
	return c
}

// DataService binds the renderer to the process-wide dataset cache
type DataService struct {
	cache     *dataset.Cache
	precision int
}

// NewDataService creates a data service rounding to precision decimals
func NewDataService(cache *dataset.Cache, precision int) *DataService {
	return &DataService{cache: cache, precision: precision}
}

// Snapshot returns the cached dataset snapshot, loading it if needed
func (s *DataService) Snapshot(ctx context.Context) (*dataset.Snapshot, error) {
	return s.cache.GetOrLoad(ctx)
}

// Status reports the cache state
func (s *DataService) Status() dataset.Status {
	return s.cache.Status()
}

// Page evaluates the data page for state
func (s *DataService) Page(ctx context.Context, state DataState) (DataPageView, error) {
	snap, err := s.cache.GetOrLoad(ctx)
	if err != nil {
		return DataPageView{}, err
	}
	return RenderDataPage(snap, state, s.precision)
}

// Panel evaluates a single panel of the data page
func (s *DataService) Panel(ctx context.Context, family ownership.Family, state PanelState) (PanelView, error) {
	snap, err := s.cache.GetOrLoad(ctx)
	if err != nil {
		return PanelView{}, err
	}
	return RenderPanel(snap, family, state, s.precision)
}

// ParsePanelState validates raw query values for family. Only registry
// labels and positive integer years are accepted.
func ParsePanelState(family ownership.Family, label, year string) (PanelState, error) {
	var state PanelState
	if label != "" {
		if _, ok := family.Lookup(label); !ok {
			return PanelState{}, errors.InvalidInput(fmt.Sprintf("unknown %s metric %q", family.Key, label))
		}
		state.Label = label
	}
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return PanelState{}, errors.InvalidInput(fmt.Sprintf("year %q is not an integer", year))
		}
		// zero means "default year" internally, so it cannot come from a link
		if y <= 0 {
			return PanelState{}, errors.InvalidInput(fmt.Sprintf("year %d is not a valid year", y))
		}
		state.Year = y
	}
	return state, nil
}
