package ui

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dashviz/internal/errors"
	"dashviz/internal/export"
	"dashviz/ui/middleware"
)

// Download names
const (
	exportCSVName      = "filtered_data.csv"
	exportExcelName    = "filtered_data.xlsx"
	exportWorkbookName = "dashboard_data.xlsx"
	exportBundleName   = "dashboard_export.zip"

	originalSheet = "Original"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// handleSummary returns the summary report of the working table as json
// (default), text or html
func (s *Server) handleSummary(c *gin.Context) {
	summary := middleware.Session(c).Summary()

	switch format(c, "json") {
	case "json":
		body, err := summary.JSON()
		if err != nil {
			s.respondError(c, errors.Wrap(err, "failed to encode summary"))
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	case "text":
		c.String(http.StatusOK, summary.FormatText())
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", summary.RenderHTML())
	default:
		s.respondError(c, errors.InvalidInput("format must be json, text or html"))
	}
}

// handleExport downloads the working table as csv, xlsx, a workbook with
// the original data alongside, or a zip bundle with report and charts
func (s *Server) handleExport(c *gin.Context) {
	sess := middleware.Session(c)
	working := sess.Working()

	var (
		body        []byte
		name        string
		contentType string
		err         error
	)
	switch c.Param("format") {
	case "csv":
		body, err = export.CSV(working)
		name, contentType = exportCSVName, "text/csv; charset=utf-8"
	case "xlsx":
		body, err = export.Excel(working)
		name, contentType = exportExcelName, contentTypeXLSX
	case "workbook":
		body, err = export.Workbook([]export.Sheet{
			{Name: export.DataSheet, Table: working},
			{Name: originalSheet, Table: sess.Base()},
		})
		name, contentType = exportWorkbookName, contentTypeXLSX
	case "zip":
		var buf bytes.Buffer
		err = export.Bundle(&buf, working, sess.Figures())
		body, name, contentType = buf.Bytes(), exportBundleName, "application/zip"
	default:
		s.respondError(c, errors.InvalidInput("export format must be csv, xlsx, workbook or zip"))
		return
	}
	if err != nil {
		s.respondError(c, errors.Wrapf(err, "failed to export %s", c.Param("format")))
		return
	}

	s.logger.Info("[Export] session %s: %s (%d bytes)", sess.ID, name, len(body))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, body)
}
