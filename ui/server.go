package ui

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dashviz/internal"
	"dashviz/internal/config"
	"dashviz/internal/session"
	"dashviz/ui/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the dashboard web server
type Server struct {
	router    *gin.Engine
	sessions  *session.Manager
	config    *config.Config
	templates *template.Template
	logger    *internal.Logger
}

// NewServer creates a server over the given session manager
func NewServer(cfg *config.Config, sessions *session.Manager) (*Server, error) {
	gin.SetMode(cfg.Server.GinMode)

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		sessions:  sessions,
		config:    cfg,
		templates: templates,
		logger:    internal.DefaultLogger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	if gin.Mode() != gin.TestMode {
		s.router.Use(gin.Logger())
	}
	s.router.Use(gin.Recovery())
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.Len()})
	})

	api := s.router.Group("/api")
	api.GET("/sessions", s.handleListSessions)
	// Multipart overhead on top of the file limit
	api.POST("/sessions", middleware.LimitBody(s.config.Upload.MaxUploadBytes()+1<<20), s.handleFileUpload)

	sess := api.Group("/sessions/:id", middleware.LoadSession(s.sessions))
	{
		sess.GET("", s.handleOverview)
		sess.DELETE("", s.handleDeleteSession)
		sess.GET("/data", s.handleDataPreview)
		sess.GET("/columns", s.handleColumns)
		sess.GET("/filter-options", s.handleFilterOptions)

		sess.PUT("/filters", s.handleApplyFilters)
		sess.DELETE("/filters", s.handleResetFilters)
		sess.POST("/aggregate", s.handleAggregate)
		sess.DELETE("/aggregate", s.handleClearAggregation)

		sess.GET("/charts", s.handleListCharts)
		sess.POST("/charts/auto", s.handleAutoConfigure)
		sess.GET("/charts/:name", s.handleGetChart)
		sess.PUT("/charts/:name", s.handleSetChart)
		sess.DELETE("/charts/:name", s.handleRemoveChart)
		sess.GET("/charts/:name/render", s.handleRenderChart)
		sess.PUT("/layout", s.handleSetLayout)

		sess.GET("/heatmap", s.handleHeatmap)
		sess.GET("/histogram/:column", s.handleHistogram)
		sess.GET("/dashboard", s.handleDashboard)

		sess.GET("/summary", s.handleSummary)
		sess.GET("/export/:format", s.handleExport)
	}
}

// Start runs the server until ctx is cancelled, closing idle sessions
// in the background.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.runJanitor(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[Server] Starting dashboard on http://localhost%s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("[Server] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// runJanitor periodically closes sessions idle for longer than configured.
func (s *Server) runJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sessions.CleanupExpired(s.config.Session.IdleTimeout())
		}
	}
}
