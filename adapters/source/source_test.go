package source

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"inequalitymap/domain/ownership"
	"inequalitymap/internal"
	"inequalitymap/internal/config"
	"inequalitymap/internal/errors"
)

const header = "state_code,region_c,year,ownership_rate_total,ownership_rate_top_10,ownership_rate_bottom_40,ownership_rate_bottom_10,ownership_ratio_90_40,ownership_ratio_90_10"

const sampleCSV = header + `
CA,[06] California,1978,0.55,0.4567,0.41,0.30,1.83,2.90
TX,[48] Texas,1978,0.61,0.82,0.50,0.42,1.64,1.95
CA,[06] California,1980,0.56,0.80,,0.31,1.80,2.58
`

func TestDecode_Valid(t *testing.T) {
	table, err := tableParser{format: FormatCSV, logger: internal.NewNopLogger()}.parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	ds, report, err := Decode(table)
	require.NoError(t, err)
	assert.Equal(t, DecodeReport{Total: 3, Accepted: 3}, report)
	require.Len(t, ds, 3)

	assert.Equal(t, ownership.Row{
		StateCode: "CA", RegionLabel: "[06] California", Year: 1978,
		RateTotal: 0.55, RateTop10: 0.4567, RateBottom40: 0.41, RateBottom10: 0.30,
		Ratio90to40: 1.83, Ratio90to10: 2.90,
	}, ds[0])
	assert.True(t, math.IsNaN(ds[2].RateBottom40), "empty cell is a missing value")
}

func TestDecode_RejectsBadRows(t *testing.T) {
	csv := header + `
CA,[06] California,1978,0.55,0.45,0.41,0.30,1.83,2.90
,[00] Nowhere,1978,0.55,0.45,0.41,0.30,1.83,2.90
TX,[48] Texas,19x8,0.61,0.82,0.50,0.42,1.64,1.95
NY,[36] New York,1980,high,0.82,0.50,0.42,1.64,1.95
CA,[06] California,1978,0.99,0.45,0.41,0.30,1.83,2.90
wa,[53] Washington,1980.0,0.61,0.82,0.50,0.42,1.64,1.95
`
	table, err := tableParser{format: FormatCSV, logger: internal.NewNopLogger()}.parse(strings.NewReader(csv))
	require.NoError(t, err)

	ds, report, err := Decode(table)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 4, report.Rejected)
	assert.Len(t, report.Reasons, 4)
	assert.Contains(t, report.Reasons[3], "duplicate observation for CA in 1978")

	require.Len(t, ds, 2)
	assert.Equal(t, 0.55, ds[0].RateTotal, "first observation wins")
	assert.Equal(t, "WA", ds[1].StateCode)
	assert.Equal(t, 1980, ds[1].Year)
}

func TestDecode_MissingColumn(t *testing.T) {
	table := &Table{Headers: []string{"state_code", "year", "ownership_rate_total"}}
	_, _, err := Decode(table)
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaMismatch, errors.GetCode(err))
	assert.Contains(t, err.Error(), "region_c")
}

func TestHTTPReader(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, "\ufeff"+sampleCSV)
	}))
	defer srv.Close()

	src := NewSource(NewHTTPReader(srv.URL+"/pub?output=csv", time.Second, internal.NewNopLogger()), internal.NewNopLogger())
	assert.Equal(t, srv.URL+"/pub", src.Describe())

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds, 3)
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPReader_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPReader(srv.URL, time.Second, internal.NewNopLogger()).ReadTable(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeFetchFailed, errors.GetCode(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewHTTPReader(srv.URL, 0, internal.NewNopLogger()).ReadTable(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.CodeFetchFailed, errors.GetCode(err))
}

func TestSource_SchemaMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "state_code,year\nCA,1978\n")
	}))
	defer srv.Close()

	_, err := NewSource(NewHTTPReader(srv.URL, time.Second, internal.NewNopLogger()), internal.NewNopLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaMismatch, errors.GetCode(err))
}

func TestSource_LoadDropsRejectedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleCSV+"NY,[36] New York,nineteen,0.5,0.6,0.4,0.3,1.5,2.0\n")
	}))
	defer srv.Close()

	logger := internal.NewLogger(internal.LogLevelTrace)
	ds, err := NewSource(NewHTTPReader(srv.URL, time.Second, logger), logger).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds, 3)
	for _, row := range ds {
		assert.NotEqual(t, "NY", row.StateCode)
	}
}

func TestFileReader_CSVAndXLSX(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "ownership.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))

	xlsxPath := filepath.Join(dir, "ownership.xlsx")
	f := excelize.NewFile()
	for i, line := range strings.Split(strings.TrimSpace(sampleCSV), "\n") {
		cells := strings.Split(line, ",")
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	for _, path := range []string{csvPath, xlsxPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			src := FromConfig(config.DataConfig{File: path, URL: "http://unused"}, internal.NewNopLogger())
			assert.Equal(t, path, src.Describe())

			ds, err := src.Load(context.Background())
			require.NoError(t, err)
			require.Len(t, ds, 3)
			assert.Equal(t, "TX", ds[1].StateCode)
			assert.Equal(t, 0.4567, ds[0].RateTop10)
		})
	}
}

func TestFileReader_Missing(t *testing.T) {
	_, err := NewFileReader(filepath.Join(t.TempDir(), "nope.csv"), internal.NewNopLogger()).ReadTable(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeFetchFailed, errors.GetCode(err))
}

func TestFormatFromURL(t *testing.T) {
	assert.Equal(t, FormatCSV, formatFromURL(config.DefaultDataURL))
	assert.Equal(t, FormatXLSX, formatFromURL("https://example.com/pub?gid=1&output=xlsx"))
	assert.Equal(t, FormatXLSX, formatFromURL("https://example.com/data/ownership.XLSX"))
}
