// Package httpapi serves read-only pyramid statistics over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pyramid-bot/internal/pyramid"
	"pyramid-bot/internal/score"
	"pyramid-bot/internal/version"
)

// Server exposes the score store and the engine's channel state.
type Server struct {
	store  score.Store
	engine *pyramid.Engine
}

func New(store score.Store, engine *pyramid.Engine) *Server {
	return &Server{store: store, engine: engine}
}

// Handler builds the gin router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.health)
	api := r.Group("/api")
	api.GET("/scores/:kind", s.topScores)
	api.GET("/scores/:kind/users/:user", s.userScore)
	api.GET("/users/:user", s.user)
	api.GET("/channels", s.channels)
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}

func (s *Server) topScores(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	n := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
			return
		}
		n = v
	}

	top, err := s.store.TopScores(c.Request.Context(), kind, n)
	if err != nil {
		s.fail(c, err)
		return
	}
	if top == nil {
		top = []score.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind.String(), "scores": top})
}

func (s *Server) userScore(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	user := score.NormalizeUser(c.Param("user"))
	v, err := s.store.Score(c.Request.Context(), user, kind)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "kind": kind.String(), "value": v})
}

func (s *Server) user(c *gin.Context) {
	rec, err := s.store.Get(c.Request.Context(), c.Param("user"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type channelView struct {
	Channel string          `json:"channel"`
	State   pyramid.State   `json:"state"`
	Modes   map[string]bool `json:"modes"`
}

func (s *Server) channels(c *gin.Context) {
	out := []channelView{}
	for _, ch := range s.engine.Channels() {
		st, modes, ok := s.engine.View(ch)
		if !ok {
			continue
		}
		out = append(out, channelView{Channel: ch, State: st, Modes: modes})
	}
	c.JSON(http.StatusOK, gin.H{"channels": out})
}

func parseKind(c *gin.Context) (score.Kind, bool) {
	kind, err := score.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown score type, must be one of: success, failed, blocked, stolen"})
		return 0, false
	}
	return kind, true
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, score.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	log.Printf("[ERR] Stats API %s: %v", c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("[INFO] Shutting down stats server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	log.Printf("[INFO] Stats server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
