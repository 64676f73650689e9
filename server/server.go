// Package server exposes the state of a running trainer over http
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zeu5/subgoal-rl/explore"
	"github.com/zeu5/subgoal-rl/grid"
	"github.com/zeu5/subgoal-rl/rl"
)

// Source is what the server reads from, usually a *rl.Trainer
type Source interface {
	View() *rl.View
	Graph() *explore.Graph
	Stop()
}

var _ Source = &rl.Trainer{}

type Server struct {
	Addr   string
	ctx    context.Context
	source Source
	engine *gin.Engine
	server *http.Server
}

func NewServer(ctx context.Context, addr string, source Source) *Server {
	s := &Server{
		Addr:   addr,
		ctx:    ctx,
		source: source,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/status", s.handleStatus)
	r.GET("/best", s.handleBest)
	r.GET("/visits", s.handleVisits)
	r.GET("/qvalues/:cell", s.handleQValues)
	r.GET("/graph", s.handleGraph)
	r.GET("/subgoals", s.handleSubgoals)
	r.GET("/map", s.handleMap)
	r.POST("/stop", s.handleStop)
	s.engine = r
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler returns the routes, for serving them elsewhere
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves in the background until the context is cancelled
func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("server stopped: %s\n", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}()
}

func (s *Server) handleStatus(c *gin.Context) {
	v := s.source.View()
	c.JSON(http.StatusOK, gin.H{
		"run_id":   v.RunID,
		"learner":  v.Learner,
		"active":   v.Active,
		"episode":  v.Episode,
		"epsilon":  v.Epsilon,
		"rows":     v.Rows,
		"cols":     v.Cols,
		"start":    v.Start,
		"goal":     v.Goal,
		"lengths":  v.Lengths,
		"subgoals": len(v.Subgoals),
	})
}

func (s *Server) handleBest(c *gin.Context) {
	v := s.source.View()
	c.JSON(http.StatusOK, gin.H{
		"best": v.Best,
		"path": v.BestPath(v.Rows * v.Cols),
	})
}

func (s *Server) handleVisits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"visits": s.source.View().Visits})
}

func (s *Server) handleQValues(c *gin.Context) {
	cell, err := grid.ParseCoord(c.Param("cell"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	values, ok := s.source.View().QValues[cell]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such cell"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cell": cell, "qvalues": values})
}

func (s *Server) handleGraph(c *gin.Context) {
	snapshot, err := s.source.Graph().Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"nodes":       snapshot.Len(),
		"edges":       s.source.Graph().Edges(),
		"betweenness": snapshot.Betweenness(),
	})
}

func (s *Server) handleSubgoals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"subgoals": s.source.View().Subgoals})
}

func (s *Server) handleMap(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"map": s.source.View().PartialMap})
}

func (s *Server) handleStop(c *gin.Context) {
	s.source.Stop()
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
