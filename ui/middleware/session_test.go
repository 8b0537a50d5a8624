package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashviz/domain/core"
	"dashviz/internal/session"
	"dashviz/internal/testkit"
)

func newRouter(manager *session.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/sessions/:id", LoadSession(manager), func(c *gin.Context) {
		c.String(http.StatusOK, Session(c).ID.String())
	})
	return r
}

func TestLoadSession(t *testing.T) {
	manager := session.NewManager(nil, session.DefaultColumns)
	s := manager.Open(testkit.SampleTable(), nil)
	r := newRouter(manager)

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"known session", s.ID.String(), http.StatusOK},
		{"unknown session", core.NewID().String(), http.StatusNotFound},
		{"malformed id", "not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/sessions/"+tt.id, nil)
			r.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, s.ID.String(), w.Body.String())
			}
		})
	}
}
