package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dashviz/domain/core"
	"dashviz/internal"
	"dashviz/internal/errors"
	"dashviz/internal/session"
)

// SessionKey is the gin context key holding the resolved *session.Session
const SessionKey = "session"

// LoadSession resolves the :id path parameter into a dashboard session and
// aborts with 404 when it does not exist.
func LoadSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseID(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
				"code":  errors.CodeInvalidInput,
			})
			return
		}

		s, err := manager.Get(id)
		if err != nil {
			internal.DefaultLogger.Debug("[LoadSession] %v", err)
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "Session not found",
				"code":  errors.CodeNotFound,
			})
			return
		}

		c.Set(SessionKey, s)
		c.Next()
	}
}

// Session returns the session stored by LoadSession.
func Session(c *gin.Context) *session.Session {
	return c.MustGet(SessionKey).(*session.Session)
}

// LimitBody caps request bodies at maxBytes.
func LimitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
