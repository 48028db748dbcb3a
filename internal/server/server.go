// Package server exposes the orchestration flows over HTTP and streams
// run events over WebSocket.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/maestro-sh/maestro/internal/flows"
	"github.com/maestro-sh/maestro/internal/pipeline"
	"github.com/maestro-sh/maestro/pkg/models"
)

// Options configures the server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	// OverlayPath, when set, is watched for routing-table changes.
	OverlayPath string
	// DefaultPrefs apply to runs that don't specify preferences.
	DefaultPrefs models.RoutePreferences
	// SEOMinimumScore gates the content flow's optimizer.
	SEOMinimumScore int
}

// Server routes API requests to the flows. The router can be swapped
// between runs (overlay reload); a run in flight keeps the router it
// started with.
type Server struct {
	opts    Options
	source  *Source
	rec     flows.Recorder
	engine  *gin.Engine
	httpSrv *http.Server
	up      websocket.Upgrader

	mu   sync.Mutex
	runs map[string]*run
}

// run tracks one started flow. Its event stream has exactly one consumer;
// the first WebSocket attach claims it.
type run struct {
	id      string
	flow    string
	started time.Time

	events   <-chan pipeline.Event
	claimed  bool
	finished chan struct{}

	mu      sync.Mutex
	done    bool
	success bool
	errText string
	result  any
}

// New creates the server. rec may be nil.
func New(opts Options, source *Source, rec flows.Recorder) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	corsConfig.AllowWebSockets = true
	engine.Use(cors.New(corsConfig))

	s := &Server{
		opts:   opts,
		source: source,
		rec:    rec,
		engine: engine,
		up: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		runs: make(map[string]*run),
	}

	engine.GET("/api/health", s.handleHealth)
	engine.GET("/api/models", s.handleModels)
	engine.POST("/api/runs", s.handleStartRun)
	engine.GET("/api/runs/:id", s.handleRunStatus)
	engine.GET("/api/runs/:id/ws", s.handleRunStream)

	s.httpSrv = &http.Server{
		Addr:         opts.Addr,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming responses
	}
	return s
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled. When an overlay path is configured
// it also watches that file and swaps the routing table for subsequent
// runs.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if s.opts.OverlayPath != "" {
		g.Go(func() error {
			return WatchOverlay(ctx, s.opts.OverlayPath, s.source)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleModels lists the catalog and the per-task routing table with
// availability markers.
func (s *Server) handleModels(c *gin.Context) {
	rt := s.source.Current()

	type modelInfo struct {
		models.ModelDescriptor
		Available bool `json:"available"`
	}
	var catalog []modelInfo
	for _, d := range rt.Registry().All() {
		catalog = append(catalog, modelInfo{ModelDescriptor: d, Available: rt.Availability().Available(d.ID)})
	}

	tasks := make(map[string]any)
	for _, task := range rt.Tasks().TaskNames() {
		mapping := rt.Tasks().Resolve(task)
		entry := gin.H{
			"primary":   mapping.Primary,
			"fallbacks": mapping.Fallbacks,
		}
		if d, err := rt.SelectModel(task, models.RoutePreferences{}); err == nil {
			entry["selected"] = d.ID
		} else {
			entry["selected_error"] = err.Error()
		}
		tasks[task] = entry
	}

	c.JSON(http.StatusOK, gin.H{"models": catalog, "tasks": tasks})
}

type startRunRequest struct {
	Flow        string `json:"flow" binding:"required"`
	Input       string `json:"input" binding:"required"`
	PreferCost  *bool  `json:"prefer_cost"`
	PreferSpeed *bool  `json:"prefer_speed"`
}

func (s *Server) handleStartRun(c *gin.Context) {
	var req startRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs := s.opts.DefaultPrefs
	if req.PreferCost != nil {
		prefs.PreferCost = *req.PreferCost
	}
	if req.PreferSpeed != nil {
		prefs.PreferSpeed = *req.PreferSpeed
	}

	rt := s.source.Current()
	r := &run{
		id:       uuid.NewString(),
		flow:     req.Flow,
		started:  time.Now(),
		finished: make(chan struct{}),
	}

	switch req.Flow {
	case "app":
		flow := flows.NewAppGeneration(rt, s.rec, prefs)
		events, results := flow.Run(context.Background(), req.Input)
		r.events = events
		go func() {
			res := <-results
			r.finish(res.Success, res.Err, res)
		}()
	case "content":
		flow := flows.NewContentPipeline(rt, s.rec, prefs, s.opts.SEOMinimumScore)
		events, results := flow.Run(context.Background(), req.Input)
		r.events = events
		go func() {
			res := <-results
			r.finish(res.Success, res.Err, res)
		}()
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown flow %q", req.Flow)})
		return
	}

	s.mu.Lock()
	s.runs[r.id] = r
	s.mu.Unlock()

	c.JSON(http.StatusAccepted, gin.H{"run_id": r.id, "flow": r.flow})
}

func (r *run) finish(success bool, err error, result any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = true
	r.success = success
	if err != nil {
		r.errText = err.Error()
	}
	r.result = result
	close(r.finished)
}

func (s *Server) lookupRun(id string) *run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

func (s *Server) handleRunStatus(c *gin.Context) {
	r := s.lookupRun(c.Param("id"))
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	resp := gin.H{
		"run_id":     r.id,
		"flow":       r.flow,
		"started_at": r.started,
		"done":       r.done,
	}
	if r.done {
		resp["success"] = r.success
		if r.errText != "" {
			resp["error"] = r.errText
		}
		resp["result"] = r.result
	}
	c.JSON(http.StatusOK, resp)
}

// handleRunStream upgrades to WebSocket and streams the run's events as
// JSON. A run's stream can be claimed once.
func (s *Server) handleRunStream(c *gin.Context) {
	r := s.lookupRun(c.Param("id"))
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	s.mu.Lock()
	if r.claimed {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "run stream already claimed"})
		return
	}
	r.claimed = true
	s.mu.Unlock()

	conn, err := s.up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for ev := range r.events {
		if err := conn.WriteJSON(ev); err != nil {
			// Client went away; keep draining so the run finishes.
			for range r.events {
			}
			return
		}
	}

	// The event stream closes just before the result lands; wait for it
	// so the final frame carries the outcome.
	<-r.finished

	r.mu.Lock()
	final := gin.H{"kind": "run_finished", "success": r.success, "error": r.errText}
	r.mu.Unlock()
	conn.WriteJSON(final)
}
