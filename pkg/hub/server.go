package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Veraticus/cliphub/pkg/engine"
	"github.com/Veraticus/cliphub/pkg/history"
	"github.com/Veraticus/cliphub/pkg/registry"
)

// Server exposes the hub over HTTP: the WebSocket device channel and
// the REST control surface.
type Server struct {
	hub      *Hub
	engine   *engine.Engine
	poller   *engine.Poller
	registry *registry.Registry
	history  *history.Store
	logger   *slog.Logger
	version  string
	uptime   time.Time

	httpServer *http.Server
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	Hub      *Hub
	Engine   *engine.Engine
	Poller   *engine.Poller
	Registry *registry.Registry
	History  *history.Store
	Logger   *slog.Logger
	Addr     string
	Version  string
}

// NewServer creates the HTTP server and its routes.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.Hub == nil {
		return nil, fmt.Errorf("hub is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("sync engine is required")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		hub:      cfg.Hub,
		engine:   cfg.Engine,
		poller:   cfg.Poller,
		registry: cfg.Registry,
		history:  cfg.History,
		logger:   logger.With("component", "api"),
		version:  cfg.Version,
		uptime:   time.Now(),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:    []string{"Content-Type"},
	}))

	router.GET("/ws", func(c *gin.Context) {
		s.hub.HandleWebSocket(c.Writer, c.Request)
	})

	api := router.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/clipboard", s.handleGetClipboard)
		api.POST("/clipboard", s.handleSetClipboard)
		api.POST("/resync", s.handleResync)
		api.GET("/history", s.handleHistory)
		api.DELETE("/history", s.handleClearHistory)
		api.POST("/history/:index/use", s.handleUseHistory)
		api.GET("/devices", s.handleDevices)
		api.GET("/settings", s.handleGetSettings)
		api.PATCH("/settings", s.handleUpdateSettings)
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down, closing device channels first
// so clients see a clean going-away status.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.CloseAll()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// statusResponse is the GET /api/status body.
type statusResponse struct {
	Version       string        `json:"version"`
	Uptime        string        `json:"uptime"`
	AutoSync      bool          `json:"auto_sync"`
	Devices       int           `json:"devices"`
	AutoSyncCount int           `json:"auto_sync_devices"`
	Connected     int           `json:"connected"`
	Stats         *engine.Stats `json:"stats"`
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Version:       s.version,
		Uptime:        time.Since(s.uptime).Round(time.Second).String(),
		AutoSync:      s.engine.AutoSyncEnabled(),
		Devices:       s.registry.Count(),
		AutoSyncCount: s.registry.AutoSyncCount(),
		Connected:     s.hub.ConnectedCount(),
		Stats:         s.engine.Stats(),
	})
}

func (s *Server) handleGetClipboard(c *gin.Context) {
	content, fp, at := s.engine.Current()
	c.JSON(http.StatusOK, gin.H{
		"content":     content,
		"fingerprint": fp.String(),
		"timestamp":   at,
	})
}

type setClipboardRequest struct {
	Content string `json:"content" binding:"required"`
}

func (s *Server) handleSetClipboard(c *gin.Context) {
	var req setClipboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	result := s.engine.Ingest(engine.NewUpdate(req.Content, engine.SourceAPI))
	c.JSON(resultStatusCode(result), gin.H{
		"status": result.Status.String(),
		"reason": result.Reason,
	})
}

type resyncRequest struct {
	Exclude string `json:"exclude"`
}

func (s *Server) handleResync(c *gin.Context) {
	var req resyncRequest
	_ = c.ShouldBindJSON(&req) // body optional

	targets := s.engine.Rebroadcast(req.Exclude)
	c.JSON(http.StatusOK, gin.H{"targets": targets})
}

func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": s.history.List()})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	s.history.Clear()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUseHistory(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}

	item, err := s.history.Use(index)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history item not found"})
		return
	}

	// Replaying history is an explicit user action: it bypasses rate
	// limiting and commands the OS clipboard like a remote update.
	update := engine.NewUpdate(item.Content, engine.SourceHistory)
	update.Forced = true
	result := s.engine.Ingest(update)

	c.JSON(resultStatusCode(result), gin.H{
		"status": result.Status.String(),
		"reason": result.Reason,
		"item":   item,
	})
}

func (s *Server) handleDevices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"devices": s.registry.List()})
}

// settingsResponse is the GET /api/settings body.
type settingsResponse struct {
	AutoSync          bool  `json:"auto_sync"`
	PollingIntervalMS int64 `json:"polling_interval_ms"`
}

func (s *Server) handleGetSettings(c *gin.Context) {
	resp := settingsResponse{
		AutoSync: s.engine.AutoSyncEnabled(),
	}
	if s.poller != nil {
		resp.PollingIntervalMS = s.poller.Interval().Milliseconds()
	}
	c.JSON(http.StatusOK, resp)
}

type updateSettingsRequest struct {
	AutoSync          *bool  `json:"auto_sync"`
	PollingIntervalMS *int64 `json:"polling_interval_ms"`
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed settings"})
		return
	}

	if req.AutoSync != nil {
		s.engine.SetAutoSync(*req.AutoSync)
	}

	if req.PollingIntervalMS != nil {
		if s.poller == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "local polling is disabled"})
			return
		}
		interval := time.Duration(*req.PollingIntervalMS) * time.Millisecond
		if err := s.poller.SetInterval(interval); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	s.handleGetSettings(c)
}

// resultStatusCode maps an ingest outcome to an HTTP status. Rejection
// is the caller's fault; everything else succeeded or was a no-op.
func resultStatusCode(result engine.Result) int {
	switch result.Status {
	case engine.StatusRejected:
		return http.StatusUnprocessableEntity
	case engine.StatusAccepted, engine.StatusQueued, engine.StatusIgnored:
		return http.StatusOK
	default:
		return http.StatusOK
	}
}
