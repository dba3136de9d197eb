// Package server exposes a knowledge store over HTTP: conversation turns,
// teaching, the stored entries and session transcripts.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/jeanpaul/learnbot/internal/config"
	"github.com/jeanpaul/learnbot/internal/engine"
	"github.com/jeanpaul/learnbot/internal/health"
	"github.com/jeanpaul/learnbot/internal/knowledge"
	"github.com/jeanpaul/learnbot/internal/logging"
	"github.com/jeanpaul/learnbot/internal/storage"
)

// SessionHeader carries the conversation session between requests.
const SessionHeader = "X-Session-Id"

// maxSessions bounds how many conversations the server keeps.
const maxSessions = 1000

type Server struct {
	cfg     config.ServerConfig
	store   *knowledge.Store
	backend storage.Backend
	opts    engine.Options

	router *gin.Engine
	server *http.Server

	mu       sync.Mutex
	sessions map[string]*engine.Engine
	order    []string
}

func New(cfg config.ServerConfig, store *knowledge.Store, backend storage.Backend, opts engine.Options) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		backend:  backend,
		opts:     opts,
		sessions: make(map[string]*engine.Engine),
	}
}

// Setup builds the router and the http.Server.
func (s *Server) Setup() {
	if s.cfg.Mode != "" {
		gin.SetMode(s.cfg.Mode)
	}

	s.router = gin.New()
	s.router.Use(logging.GinLogrusLogger())
	s.router.Use(gin.Recovery())
	if s.cfg.Metrics {
		RegisterMetrics()
		s.router.Use(prometheusMiddleware())
		knowledgeEntries.WithLabelValues(s.store.Key()).Set(float64(s.store.Len()))
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler: s.router,
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	if s.cfg.Metrics {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/turns", s.handleTurn)
		v1.POST("/teach", s.handleTeach)
		v1.GET("/entries", s.handleEntries)
		v1.GET("/transcript", s.handleTranscript)
	}
}

// Handler is the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Addr() string { return s.server.Addr }

func (s *Server) Start() error {
	log.WithField("addr", s.server.Addr).Info("starting server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	log.Info("stopping server")
	return s.server.Shutdown(ctx)
}

// session returns the engine for the request's session, creating one when
// the header is missing or unknown.
func (s *Server) session(c *gin.Context) (string, *engine.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(c.GetHeader(SessionHeader))
	if eng, ok := s.sessions[id]; ok && id != "" {
		c.Header(SessionHeader, id)
		return id, eng
	}

	eng := engine.New(s.store, s.opts)
	if id == "" {
		id = eng.Transcript().ID()
	}
	if len(s.order) >= maxSessions {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.sessions, oldest)
	}
	s.sessions[id] = eng
	s.order = append(s.order, id)
	activeSessions.Set(float64(len(s.sessions)))

	c.Header(SessionHeader, id)
	return id, eng
}

func (s *Server) lookupSession(c *gin.Context) (string, *engine.Engine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(c.GetHeader(SessionHeader))
	eng, ok := s.sessions[id]
	return id, eng, ok && id != ""
}

type turnRequest struct {
	Text string `json:"text"`
}

type teachRequest struct {
	Answer string `json:"answer"`
}

type outcomeResponse struct {
	SessionID string             `json:"session_id"`
	Kind      engine.OutcomeKind `json:"kind"`
	Text      string             `json:"text,omitempty"`
	Question  string             `json:"question,omitempty"`
	Score     *float64           `json:"score,omitempty"`
	Warning   string             `json:"warning,omitempty"`
}

func toResponse(id string, out engine.Outcome) outcomeResponse {
	r := outcomeResponse{
		SessionID: id,
		Kind:      out.Kind,
		Text:      out.Text,
		Question:  out.Question,
	}
	if out.Match != nil {
		score := out.Match.Score
		r.Score = &score
	}
	if out.Warning != nil {
		r.Warning = out.Warning.Error()
	}
	return r
}

func (s *Server) handleTurn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	id, eng := s.session(c)
	out := eng.Submit(c.Request.Context(), req.Text)
	if s.cfg.Metrics {
		observeOutcome(s.store.Key(), out, s.store.Len())
	}
	c.JSON(http.StatusOK, toResponse(id, out))
}

func (s *Server) handleTeach(c *gin.Context) {
	var req teachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	id, eng, ok := s.lookupSession(c)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": engine.ErrNothingToTeach.Error()})
		return
	}
	c.Header(SessionHeader, id)

	out, err := eng.Teach(c.Request.Context(), req.Answer)
	if err != nil {
		if errors.Is(err, engine.ErrNothingToTeach) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if s.cfg.Metrics {
		observeOutcome(s.store.Key(), out, s.store.Len())
	}
	c.JSON(http.StatusOK, toResponse(id, out))
}

func (s *Server) handleEntries(c *gin.Context) {
	entries := s.store.Entries()
	c.JSON(http.StatusOK, gin.H{
		"store":   s.store.Key(),
		"count":   len(entries),
		"entries": entries,
	})
}

func (s *Server) handleTranscript(c *gin.Context) {
	id, eng, ok := s.lookupSession(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	tr := eng.Transcript()
	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(tr.Markdown(s.store.Key())))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": id,
		"started":    tr.Started(),
		"turns":      tr.Turns(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	st := health.Check(c.Request.Context(), s.backend, s.store.Key())
	code := http.StatusOK
	status := "ok"
	if !st.OK() {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}
	c.JSON(code, gin.H{
		"status":  status,
		"store":   s.store.Key(),
		"entries": s.store.Len(),
		"backend": st,
	})
}
