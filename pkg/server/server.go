package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/helmcode/logtriage/pkg/model"
	"github.com/helmcode/logtriage/pkg/pipeline"
)

// Runner is the slice of the pipeline the HTTP API drives.
type Runner interface {
	Run(ctx context.Context, files []model.LogFile, selected *model.SolutionCandidate, sendNotifications bool) *pipeline.Result
	ClassifyOnly(ctx context.Context, files []model.LogFile) *pipeline.Result
	RunWithSelectedSolution(ctx context.Context, files []model.LogFile, selected *model.SolutionCandidate, sendNotifications bool) *pipeline.Result
}

// Server exposes pipeline runs over HTTP.
type Server struct {
	addr      string
	runner    Runner
	provider  string
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

func NewServer(addr string, runner Runner, provider string) *Server {
	if addr == "" {
		addr = "0.0.0.0:8080"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:     addr,
		runner:   runner,
		provider: provider,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.POST("/api/classify", s.handleClassify)
	r.POST("/api/run", s.handleRun)
	r.POST("/api/notify", s.handleNotify)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// runs make several sequential model calls
		WriteTimeout: 10 * time.Minute,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

type runRequest struct {
	LogFiles          []model.LogFile          `json:"log_files"`
	SelectedSolution  *model.SolutionCandidate `json:"selected_solution"`
	SendNotifications bool                     `json:"send_notifications"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"uptime":   time.Since(s.startTime).String(),
		"provider": s.provider,
	})
}

func (s *Server) handleClassify(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	c.JSON(http.StatusOK, s.runner.ClassifyOnly(c.Request.Context(), req.LogFiles))
}

func (s *Server) handleRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	c.JSON(http.StatusOK, s.runner.Run(c.Request.Context(), req.LogFiles, req.SelectedSolution, req.SendNotifications))
}

func (s *Server) handleNotify(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.SelectedSolution == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "selected_solution is required"})
		return
	}
	c.JSON(http.StatusOK, s.runner.RunWithSelectedSolution(c.Request.Context(), req.LogFiles, req.SelectedSolution, true))
}
