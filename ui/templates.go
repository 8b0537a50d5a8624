package ui

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
)

// renderTemplate executes a template into a buffer first so that errors
// never leave a half-written page
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("[renderTemplate] %s: %v", templateName, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

type indexSession struct {
	ID      string
	Name    string
	Rows    int
	Columns int
}

// handleIndex serves the upload page with the open sessions
func (s *Server) handleIndex(c *gin.Context) {
	list := s.sessions.List()
	sessions := make([]indexSession, 0, len(list))
	for _, sess := range list {
		name := "dataset"
		if sess.Dataset != nil {
			name = sess.Dataset.GetDisplayName()
		}
		working := sess.Working()
		sessions = append(sessions, indexSession{
			ID:      sess.ID.String(),
			Name:    name,
			Rows:    working.Len(),
			Columns: working.Width(),
		})
	}

	s.renderTemplate(c, "index.html", gin.H{
		"Title":       dashboardTitle,
		"MaxUploadMB": s.config.Upload.MaxSizeMB,
		"Sessions":    sessions,
	})
}
