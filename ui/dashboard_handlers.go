package ui

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"dashviz/domain/chart"
	"dashviz/internal/charts"
	"dashviz/internal/dataset"
	"dashviz/internal/errors"
	"dashviz/internal/export"
	"dashviz/internal/session"
	"dashviz/ui/middleware"
)

const dashboardTitle = "Interactive Data Dashboard"

// handleApplyFilters replaces the session filters
func (s *Server) handleApplyFilters(c *gin.Context) {
	var specs map[string]dataset.FilterSpec
	if !s.bindJSON(c, &specs) {
		return
	}
	filters, err := dataset.ParseFilterSet(specs)
	if err != nil {
		s.respondError(c, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}

	sess := middleware.Session(c)
	sess.ApplyFilters(filters)
	c.JSON(http.StatusOK, sess.State())
}

// handleResetFilters restores the uploaded table
func (s *Server) handleResetFilters(c *gin.Context) {
	sess := middleware.Session(c)
	sess.ResetFilters()
	c.JSON(http.StatusOK, sess.State())
}

type aggregateRequest struct {
	GroupBy  string `json:"group_by" binding:"required"`
	Target   string `json:"target" binding:"required"`
	Function string `json:"function" binding:"required"`
}

// handleAggregate aggregates the working table
func (s *Server) handleAggregate(c *gin.Context) {
	var req aggregateRequest
	if !s.bindJSON(c, &req) {
		return
	}
	fn, err := dataset.ParseAggFunc(req.Function)
	if err != nil {
		s.respondError(c, err)
		return
	}

	sess := middleware.Session(c)
	result, err := sess.Aggregate(dataset.AggregationSpec{GroupBy: req.GroupBy, Target: req.Target, Function: fn})
	if err != nil {
		s.respondError(c, errors.Wrap(err, "aggregation failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": sess.State(),
		"rows":    result.Records(-1),
	})
}

// handleClearAggregation drops the aggregation, keeping the filters
func (s *Server) handleClearAggregation(c *gin.Context) {
	sess := middleware.Session(c)
	sess.ClearAggregation()
	c.JSON(http.StatusOK, sess.State())
}

// handleListCharts returns every chart configuration and the layout
func (s *Server) handleListCharts(c *gin.Context) {
	state := middleware.Session(c).State()
	c.JSON(http.StatusOK, gin.H{
		"charts": state.Charts,
		"layout": state.Layout,
		"kinds":  chart.Kinds(),
	})
}

// handleGetChart returns one chart configuration
func (s *Server) handleGetChart(c *gin.Context) {
	spec, err := middleware.Session(c).Chart(c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart.ToConfig(spec))
}

// handleSetChart stores a chart configuration
func (s *Server) handleSetChart(c *gin.Context) {
	var cfg chart.Config
	if !s.bindJSON(c, &cfg) {
		return
	}
	if cfg.Type == "" {
		s.respondError(c, errors.ValidationError("chart type is required"))
		return
	}

	sess := middleware.Session(c)
	spec := cfg.Spec()
	if err := sess.SetChart(c.Param("name"), spec); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart.ToConfig(spec))
}

// handleRemoveChart drops a chart from the dashboard
func (s *Server) handleRemoveChart(c *gin.Context) {
	if err := middleware.Session(c).RemoveChart(c.Param("name")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleAutoConfigure fills unset chart fields from the working table
func (s *Server) handleAutoConfigure(c *gin.Context) {
	sess := middleware.Session(c)
	sess.AutoConfigure()
	c.JSON(http.StatusOK, sess.State().Charts)
}

// handleSetLayout changes the column count and chart order
func (s *Server) handleSetLayout(c *gin.Context) {
	var layout session.Layout
	if !s.bindJSON(c, &layout) {
		return
	}
	sess := middleware.Session(c)
	if err := sess.SetLayout(layout); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Layout())
}

// handleRenderChart renders one chart as html (default) or json
func (s *Server) handleRenderChart(c *gin.Context) {
	fig, err := middleware.Session(c).Figure(c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.writeFigure(c, fig)
}

// handleHeatmap renders the correlation heatmap of the working table
func (s *Server) handleHeatmap(c *gin.Context) {
	s.writeFigure(c, middleware.Session(c).Heatmap())
}

// handleHistogram renders the distribution of one column
func (s *Server) handleHistogram(c *gin.Context) {
	bins, err := queryInt(c, "bins", 0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.writeFigure(c, middleware.Session(c).Histogram(c.Param("column"), bins))
}

func (s *Server) writeFigure(c *gin.Context, fig charts.Figure) {
	switch format(c, "html") {
	case "html":
		body, err := export.ChartHTML(fig)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", body)
	case "json":
		body, err := export.ChartJSON(fig)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	default:
		s.respondError(c, errors.InvalidInput("format must be html or json"))
	}
}

// handleDashboard renders every chart into one page, in layout order.
// heatmap=true appends the correlation heatmap.
func (s *Server) handleDashboard(c *gin.Context) {
	sess := middleware.Session(c)
	named := sess.Figures()
	figures := make([]charts.Figure, 0, len(named)+1)
	for _, nf := range named {
		figures = append(figures, nf.Figure)
	}
	if c.Query("heatmap") == "true" {
		figures = append(figures, sess.Heatmap())
	}

	title := dashboardTitle
	if sess.Dataset != nil {
		title = dashboardTitle + ": " + sess.Dataset.GetDisplayName()
	}

	var buf bytes.Buffer
	if err := charts.RenderPage(&buf, title, figures); err != nil {
		s.respondError(c, errors.Wrap(err, "failed to render dashboard"))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
