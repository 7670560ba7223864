// Package server serves the card grid and the earthquake map to a browser.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arcanaland/feedview/internal/feed"
	"github.com/arcanaland/feedview/internal/geomap"
)

// Options are the feed endpoints and the initial map view
type Options struct {
	CardsURL    string
	QuakesURL   string
	TileURL     string
	Attribution string
	Center      geomap.LatLng
	Zoom        int

	// MaxSessions caps the card sessions kept in memory; the least recently
	// seen one is dropped to make room. Zero means DefaultMaxSessions.
	MaxSessions int
	// SessionTTL forgets sessions idle for longer. Zero means DefaultSessionTTL.
	SessionTTL time.Duration
}

// Server owns the per-browser card sessions
type Server struct {
	opts     Options
	feed     feed.JSONFetcher
	logger   *zap.Logger
	sessions *sessionStore
}

// New creates a server that fetches through f
func New(opts Options, f feed.JSONFetcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		opts:     opts,
		feed:     f,
		logger:   logger,
		sessions: newSessionStore(opts.MaxSessions, opts.SessionTTL),
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		MaxAge:          12 * time.Hour,
	}))
	r.SetHTMLTemplate(pages)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", nil)
	})

	r.GET("/cards", s.cardsPage)
	r.POST("/cards/select/:id", s.selectCard)
	r.GET("/quakes", s.quakesPage)

	api := r.Group("/api")
	{
		api.GET("/cards", s.cardsAPI)
		api.GET("/quakes", s.quakesAPI)
	}

	return r
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server closed")
	return nil
}

// requestLogger logs every completed request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", c.ClientIP()),
		)
	}
}
