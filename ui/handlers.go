package ui

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dashviz/internal/errors"
)

// respondError writes err as JSON with the status its code maps to.
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[%s %s] %v", c.Request.Method, c.FullPath(), err)
	} else {
		s.logger.Debug("[%s %s] %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

// bindJSON decodes the request body into v, reporting bad input as 400.
func (s *Server) bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.respondError(c, errors.PayloadTooLarge("request body too large"))
			return false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body: " + err.Error(),
			"code":  errors.CodeInvalidInput,
		})
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidInput(key + " must be an integer")
	}
	return n, nil
}

// format returns the lower-cased ?format= value or def.
func format(c *gin.Context, def string) string {
	if f := strings.ToLower(strings.TrimSpace(c.Query("format"))); f != "" {
		return f
	}
	return def
}
