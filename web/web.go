// Package web provides the HTTP server for the kaban API: routing,
// middleware, controllers and background job scheduling.
package web

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"kaban/config"
	"kaban/logger"
	"kaban/web/controller"
	"kaban/web/job"
	"kaban/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

// Server is the kaban web server with its controllers and scheduled jobs.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	auth   *controller.AuthController
	board  *controller.BoardController
	column *controller.ColumnController
	card   *controller.CardController
	server *controller.ServerController

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new web server instance with a cancellable context.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

// initRouter initializes Gin, registers middleware and controllers and
// returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	engine.Use(func(c *gin.Context) {
		service.CountRequest()
		c.Next()
	})

	api := engine.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "ok",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		})

		s.auth = controller.NewAuthController(api)
		s.board = controller.NewBoardController(api)
		s.column = controller.NewColumnController(api)
		s.card = controller.NewCardController(api)
		s.server = controller.NewServerController(api)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return engine, nil
}

// startTask schedules the background jobs.
func (s *Server) startTask() {
	// Flush the sqlite WAL back into the main database file once a day.
	s.cron.AddJob("@daily", job.NewCheckpointJob())
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	s.startTask()

	addr := fmt.Sprintf("%v:%v", config.GetListen(), config.GetPort())
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler: engine,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("serve failed:", err)
		}
	}()

	logger.Infof("%v %v listening on %v", config.GetName(), config.GetVersion(), addr)
	return nil
}

// Stop gracefully shuts down the server, its jobs and the listener.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}

	var err error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(ctx)
	}
	if s.listener != nil {
		// Shutdown already closed it; ignore the double close.
		_ = s.listener.Close()
	}
	return err
}

// GetCtx returns the server's context.
func (s *Server) GetCtx() context.Context {
	return s.ctx
}

// GetCron returns the server's cron scheduler.
func (s *Server) GetCron() *cron.Cron {
	return s.cron
}
