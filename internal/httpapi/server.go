// internal/httpapi/server.go
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/openavctl/lexibridge/internal/driver"
)

// Server is the entity-glue boundary: it exposes the cached state and
// routes UI actions onto the driver. It never talks to the socket
// itself.
type Server struct {
	drv *driver.Driver
	log *zap.Logger
}

func New(drv *driver.Driver, log *zap.Logger) *Server {
	return &Server{drv: drv, log: log}
}

// Router builds the gin handler tree.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api/v1")
	{
		api.GET("/status", s.getStatus)
		api.GET("/sources", s.getSources)

		api.POST("/power/on", s.command(s.drv.PowerOn))
		api.POST("/power/off", s.command(s.drv.PowerOff))

		api.POST("/volume/up", s.command(s.drv.VolumeUp))
		api.POST("/volume/down", s.command(s.drv.VolumeDown))
		api.PUT("/volume", s.setVolume)

		api.POST("/mute/on", s.command(s.drv.MuteOn))
		api.POST("/mute/off", s.command(s.drv.MuteOff))
		api.POST("/mute/toggle", s.command(s.drv.MuteToggle))

		api.POST("/source", s.selectSource)
	}

	return r
}

// shutdownGrace bounds how long in-flight requests may run after the
// context is cancelled.
const shutdownGrace = 5 * time.Second

// Run serves until the context is cancelled, then drains in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("http api listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("http api shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type statusResponse struct {
	Power              string  `json:"power"`
	VolumeLevel        float64 `json:"volume_level"`
	Volume             int     `json:"volume"`
	Muted              bool    `json:"muted"`
	Source             string  `json:"source,omitempty"`
	AudioFormat        string  `json:"audio_format,omitempty"`
	DecodeMode         string  `json:"decode_mode,omitempty"`
	SampleRate         string  `json:"sample_rate,omitempty"`
	DirectMode         bool    `json:"direct_mode"`
	Ready              bool    `json:"ready"`
	SecondsSinceUpdate float64 `json:"seconds_since_update"`
}

func (s *Server) getStatus(c *gin.Context) {
	snap := s.drv.Snapshot()
	c.JSON(http.StatusOK, statusResponse{
		Power:              string(snap.Power),
		VolumeLevel:        snap.VolumeLevel(),
		Volume:             snap.Volume,
		Muted:              snap.Muted,
		Source:             snap.Source,
		AudioFormat:        snap.AudioFormat,
		DecodeMode:         snap.DecodeMode,
		SampleRate:         snap.SampleRate,
		DirectMode:         snap.DirectMode,
		Ready:              snap.Ready,
		SecondsSinceUpdate: snap.SecondsSinceUpdate(time.Now()),
	})
}

func (s *Server) getSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": s.drv.Sources()})
}

// command adapts a driver operation into a handler. Device refusal is
// the upstream's fault, hence 502.
func (s *Server) command(op func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := op(); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type volumeRequest struct {
	Level float64 `json:"level"`
}

func (s *Server) setVolume(c *gin.Context) {
	var req volumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"level\": 0..1}"})
		return
	}

	err := s.drv.SetVolume(req.Level)
	switch {
	case errors.Is(err, driver.ErrVolumeOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusNoContent)
	}
}

type sourceRequest struct {
	Name string `json:"name"`
}

func (s *Server) selectSource(c *gin.Context) {
	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"name\": \"...\"}"})
		return
	}

	err := s.drv.SelectInput(req.Name)
	switch {
	case errors.Is(err, driver.ErrUnknownInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusNoContent)
	}
}
