package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inequalitymap/domain/ownership"
	"inequalitymap/internal/dataset"
	"inequalitymap/internal/errors"
)

func testSnapshot(t *testing.T) *dataset.Snapshot {
	t.Helper()
	ds := ownership.Dataset{
		{StateCode: "CA", RegionLabel: "[06] California", Year: 1978, RateTotal: 0.55, RateTop10: 0.4567, Ratio90to40: 4.2, Ratio90to10: 5.1},
		{StateCode: "TX", RegionLabel: "[48] Texas", Year: 1978, RateTotal: 0.61, RateTop10: 0.82, Ratio90to40: 1.2, Ratio90to10: 1.9},
		{StateCode: "CA", RegionLabel: "[06] California", Year: 1985, RateTotal: 0.57, RateTop10: 0.8, Ratio90to40: 1.5, Ratio90to10: 2.2},
		{StateCode: "CA", RegionLabel: "[06] California", Year: 2023, RateTotal: 0.54, RateTop10: 0.79, Ratio90to40: 1.7, Ratio90to10: 2.5},
	}
	snap, err := dataset.BuildSnapshot(ds, "test", time.Unix(1700000000, 0))
	require.NoError(t, err)
	return snap
}

func TestRenderPanel_TopTenIn1978(t *testing.T) {
	snap := testSnapshot(t)

	panel, err := RenderPanel(snap, ownership.Rates, PanelState{Label: "Ownership Rate (Top 10%)", Year: 1978}, 2)
	require.NoError(t, err)

	assert.Equal(t, ownership.ColumnRateTop10, panel.Metric.Column)
	assert.Equal(t, "Ownership Rate (Top 10%) by State in 1978", panel.Title)
	assert.Empty(t, panel.Warning)
	require.Len(t, panel.Points, 2)
	assert.Equal(t, "CA", panel.Points[0].StateCode)
	assert.Equal(t, 0.46, panel.Points[0].Value)

	require.NotNil(t, panel.Chart)
	assert.Equal(t, []string{"CA", "TX"}, panel.Chart.Locations)
	assert.Equal(t, []string{"[06] California", "[48] Texas"}, panel.Chart.Text)
	assert.Equal(t, 0.46, *panel.Chart.Z[0])
	assert.Equal(t, "Blues", panel.Chart.ColorScale)
	assert.True(t, panel.Chart.ReverseScale, "Blues must be flipped so high rates render dark")
	assert.Equal(t, 0.3, panel.Chart.ZMin)
	assert.Equal(t, 1.0, panel.Chart.ZMax)
	assert.Equal(t, "USA-states", panel.Chart.LocationMode)

	selected := 0
	for _, o := range panel.Options {
		if o.Selected {
			selected++
			assert.Equal(t, "Ownership Rate (Top 10%)", o.Label)
		}
	}
	assert.Equal(t, 1, selected)
	assert.True(t, strings.Contains(panel.Explanation, "**Ownership Rate (Top 10%)**"))
}

func TestRenderPanel_RatioBoundsAreFixed(t *testing.T) {
	snap := testSnapshot(t)

	// observed 90/40 values span 1.2..4.2, the map must still use 1..3
	for _, label := range ownership.Ratios.Labels() {
		for _, year := range snap.Years {
			panel, err := RenderPanel(snap, ownership.Ratios, PanelState{Label: label, Year: year}, 2)
			require.NoError(t, err)
			require.NotNil(t, panel.Chart)
			assert.Equal(t, 1.0, panel.Chart.ZMin)
			assert.Equal(t, 3.0, panel.Chart.ZMax)
			assert.Equal(t, "Reds", panel.Chart.ColorScale)
			assert.False(t, panel.Chart.ReverseScale, "Reds already renders high ratios dark")
		}
	}

	panel, err := RenderPanel(snap, ownership.Ratios, PanelState{Label: "Ownership Ratio (90/40)"}, 2)
	require.NoError(t, err)
	assert.Equal(t, ownership.Range{Min: 1.2, Max: 4.2, Count: 4}, panel.Observed)
}

func TestRenderPanel_EmptyYearShowsWarning(t *testing.T) {
	snap := testSnapshot(t)

	page, err := RenderDataPage(snap, DataState{
		Rates:  PanelState{Year: 2000},
		Ratios: PanelState{Year: 1985},
	}, 2)
	require.NoError(t, err)
	require.Len(t, page.Panels, 2)

	rates := page.Panels[0]
	assert.Equal(t, NoDataWarning, rates.Warning)
	assert.Nil(t, rates.Chart)
	assert.Empty(t, rates.Points)

	ratios := page.Panels[1]
	assert.Empty(t, ratios.Warning, "the other panel is unaffected")
	assert.NotNil(t, ratios.Chart)
}

func TestRenderDataPage_DefaultsAndDeterminism(t *testing.T) {
	snap := testSnapshot(t)

	first, err := RenderDataPage(snap, DataState{}, 2)
	require.NoError(t, err)
	second, err := RenderDataPage(snap, DataState{}, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	rates := first.Panels[0]
	assert.Equal(t, ownership.Rates.Default(), rates.Metric)
	assert.Equal(t, 1978, rates.Year)
	assert.Equal(t, []int{1978, 1985, 2023}, rates.Years)
	assert.Equal(t, 1978, rates.YearMin)
	assert.Equal(t, 2023, rates.YearMax)
	assert.Equal(t, "test", first.Source)

	assert.Equal(t, 0.55, snap.Dataset[0].RateTotal, "snapshot untouched")
}

func TestRenderPanel_UnknownLabelPanics(t *testing.T) {
	snap := testSnapshot(t)
	assert.Panics(t, func() {
		_, _ = RenderPanel(snap, ownership.Rates, PanelState{Label: "Ownership Ratio (90/40)"}, 2)
	})
}

func TestParsePanelState(t *testing.T) {
	tests := []struct {
		name    string
		family  ownership.Family
		label   string
		year    string
		want    PanelState
		wantErr bool
	}{
		{name: "defaults", family: ownership.Rates},
		{name: "label and year", family: ownership.Ratios, label: "Ownership Ratio (90/10)", year: "1990",
			want: PanelState{Label: "Ownership Ratio (90/10)", Year: 1990}},
		{name: "label from other family", family: ownership.Rates, label: "Ownership Ratio (90/10)", wantErr: true},
		{name: "non integer year", family: ownership.Rates, year: "19x0", wantErr: true},
		{name: "zero year", family: ownership.Ratios, year: "0", wantErr: true},
		{name: "negative year", family: ownership.Rates, year: "-1980", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePanelState(tt.family, tt.label, tt.year)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown("The **Ownership Rate (Total)** graph"))
	assert.Contains(t, out, "<strong>Ownership Rate (Total)</strong>")
}
