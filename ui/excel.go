package ui

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"inequalitymap/ui/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handlePanelExport downloads the projected panel as a workbook
func (s *Server) handlePanelExport(c *gin.Context) {
	panel, err := s.panelFromRequest(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	buf, err := writePanelWorkbook(panel)
	if err != nil {
		s.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("%s_%d.xlsx", panel.Family, panel.Year)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// writePanelWorkbook lays out one sheet: a header row, then one row per
// state. Missing values stay blank.
func writePanelWorkbook(panel services.PanelView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("%s %d", panel.Family, panel.Year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"State", "State Code", "Region", panel.Metric.Label}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range panel.Points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{p.State, p.StateCode, p.Label}
		if !p.Missing {
			row = append(row, p.Value)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}
