// Package server exposes the dashboard API, the realtime socket and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/technews-autopilot/internal/activity"
	"github.com/orgball2608/technews-autopilot/internal/queue"
	"github.com/orgball2608/technews-autopilot/internal/realtime"
	engagementrepo "github.com/orgball2608/technews-autopilot/internal/repositories/engagement"
	"github.com/orgball2608/technews-autopilot/internal/repositories/post"
	queuerepo "github.com/orgball2608/technews-autopilot/internal/repositories/queue"
	"github.com/orgball2608/technews-autopilot/internal/repositories/target"
	"github.com/orgball2608/technews-autopilot/internal/settings"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	Config      *config.Config
	Logger      logger.Logger
	Hub         *realtime.Hub
	Recorder    activity.Recorder
	Posts       post.Repository
	QueueItems  queuerepo.Repository
	Queue       queue.Queue
	Engagements engagementrepo.Repository
	Targets     target.Repository
	Settings    *settings.Settings
}

type Server struct {
	engine      *gin.Engine
	addr        string
	hub         *realtime.Hub
	recorder    activity.Recorder
	posts       post.Repository
	queueItems  queuerepo.Repository
	queue       queue.Queue
	engagements engagementrepo.Repository
	targets     target.Repository
	settings    *settings.Settings
	logger      logger.Logger
}

func New(opts Opts) *Server {
	if opts.Config.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:      gin.New(),
		addr:        fmt.Sprintf(":%d", opts.Config.App.Port),
		hub:         opts.Hub,
		recorder:    opts.Recorder,
		posts:       opts.Posts,
		queueItems:  opts.QueueItems,
		queue:       opts.Queue,
		engagements: opts.Engagements,
		targets:     opts.Targets,
		settings:    opts.Settings,
		logger:      opts.Logger.WithComponent("HTTPServer"),
	}
	s.engine.Use(gin.Recovery(), s.logRequests())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.GET("/ws", func(c *gin.Context) { s.hub.ServeWS(c.Writer, c.Request) })

	api := s.engine.Group("/api")
	api.GET("/activity", s.listActivity)
	api.GET("/posts/recent", s.listRecentPosts)

	api.GET("/queue", s.listQueue)
	api.POST("/queue/:id/requeue", s.requeue)

	api.GET("/engagement/history", s.listEngagement)
	api.POST("/engagement/inbound", s.recordInboundComment)

	api.GET("/analytics/report/:days", s.report)

	api.POST("/emergency-stop", s.activateEmergencyStop)
	api.DELETE("/emergency-stop", s.deactivateEmergencyStop)

	api.GET("/settings", s.getSettings)
	api.PUT("/settings/auto-engagement", s.setAutoEngagement)
	api.PUT("/settings/twitter-account-type", s.setTwitterAccountType)

	api.GET("/targets/:platform/:type", s.listTargets)
	api.POST("/targets", s.createTarget)
	api.DELETE("/targets/:id", s.deactivateTarget)
}

// Handler is the full router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.FullPath() == "/healthz" || c.FullPath() == "/metrics" {
			return
		}
		s.logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).String())
	}
}

func register(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}
			s.logger.Info("Starting server", "addr", srv.Addr)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.logger.Error("Server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(register),
)
