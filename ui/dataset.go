package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainDataset "dashviz/domain/dataset"
	"dashviz/internal/dataset"
	"dashviz/internal/errors"
	"dashviz/ui/middleware"
)

const defaultPreviewRows = 10

// handleFileUpload loads an uploaded CSV or Excel file into a new session
func (s *Server) handleFileUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("dataset")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.respondError(c, s.tooLarge())
			return
		}
		s.logger.Debug("[handleFileUpload] no file uploaded: %v", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "No file uploaded",
			"code":  errors.CodeInvalidInput,
		})
		return
	}
	defer file.Close()

	if header.Size > s.config.Upload.MaxUploadBytes() {
		s.respondError(c, s.tooLarge())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to read upload"))
		return
	}

	sess, _, err := s.sessions.Create(header.Filename, data)
	if err != nil {
		s.respondError(c, errors.Wrapf(err, "failed to load %s", header.Filename))
		return
	}

	c.JSON(http.StatusCreated, sess.State())
}

func (s *Server) tooLarge() error {
	return errors.PayloadTooLarge(fmt.Sprintf("File exceeds the %dMB limit", s.config.Upload.MaxSizeMB))
}

// handleListSessions lists open sessions, oldest first
func (s *Server) handleListSessions(c *gin.Context) {
	list := s.sessions.List()
	states := make([]gin.H, 0, len(list))
	for _, sess := range list {
		state := sess.State()
		states = append(states, gin.H{
			"id":         state.ID,
			"dataset":    state.Dataset,
			"created_at": state.CreatedAt,
			"rows":       state.Rows,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": states})
}

// Overview is the headline numbers of the working table
type Overview struct {
	Rows           int `json:"rows"`
	Columns        int `json:"columns"`
	MissingValues  int `json:"missing_values"`
	NumericColumns int `json:"numeric_columns"`
}

func overview(t *domainDataset.Table) Overview {
	o := Overview{
		Rows:           t.Len(),
		Columns:        t.Width(),
		NumericColumns: len(t.ColumnsOfType(domainDataset.TypeNumeric)),
	}
	for _, col := range t.Columns() {
		o.MissingValues += col.MissingCount()
	}
	return o
}

// handleOverview returns the session configuration and table overview
func (s *Server) handleOverview(c *gin.Context) {
	sess := middleware.Session(c)
	c.JSON(http.StatusOK, gin.H{
		"session":  sess.State(),
		"overview": overview(sess.Working()),
	})
}

// handleDeleteSession closes a session
func (s *Server) handleDeleteSession(c *gin.Context) {
	sess := middleware.Session(c)
	if err := s.sessions.Delete(sess.ID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleDataPreview returns the first rows of the working table;
// limit=-1 returns every row
func (s *Server) handleDataPreview(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultPreviewRows)
	if err != nil {
		s.respondError(c, err)
		return
	}

	t := middleware.Session(c).Working()
	types := make(map[string]domainDataset.ColumnType, t.Width())
	for _, col := range t.Columns() {
		types[col.Name()] = col.Type()
	}
	c.JSON(http.StatusOK, gin.H{
		"columns":    t.ColumnNames(),
		"types":      types,
		"rows":       t.Records(limit),
		"total_rows": t.Len(),
	})
}

// handleColumns describes the columns of the working table
func (s *Server) handleColumns(c *gin.Context) {
	t := middleware.Session(c).Working()
	c.JSON(http.StatusOK, gin.H{"columns": dataset.DescribeColumns(t)})
}

// handleFilterOptions lists the choices a filter form offers. They come
// from the base table so that narrowing a filter can be undone.
func (s *Server) handleFilterOptions(c *gin.Context) {
	sess := middleware.Session(c)
	c.JSON(http.StatusOK, gin.H{
		"filters": dataset.FilterOptions(sess.Base()),
		"active":  sess.State().Filters,
	})
}
