// Copyright (c) 2026 AdaptLearn Ltd. All Rights Reserved.
// This is licensed software from AdaptLearn Ltd, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/adaptlearn/focus-engine/pkg/common"
	"github.com/adaptlearn/focus-engine/pkg/content"
	"github.com/adaptlearn/focus-engine/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HTTPServer hosts the session API and the per-session WebSocket endpoint.
type HTTPServer struct {
	server  *http.Server
	port    int
	manager *session.Manager
}

// NewHTTPServer creates a new API server instance.
func NewHTTPServer(port int, manager *session.Manager) *HTTPServer {
	return &HTTPServer{
		port:    port,
		manager: manager,
	}
}

// Setup configures routing.
func (s *HTTPServer) Setup() error {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/v1")
	v1.POST("/sessions", s.handleCreateSession)
	v1.GET("/sessions/:id", s.handleGetSession)
	v1.DELETE("/sessions/:id", s.handleDeleteSession)
	v1.GET("/sessions/:id/ws", s.handleSessionSocket)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: router,
	}

	return nil
}

// Start begins serving API requests.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		logrus.Infof("http server listening on port %d", s.port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("http server failed: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the API server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down http server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("http server stopped")
	return nil
}

type createSessionRequest struct {
	DocumentID   string `json:"document_id" binding:"required"`
	InitialFocus int    `json:"initial_focus"`
}

type sessionResponse struct {
	SessionID  string         `json:"session_id"`
	DocumentID string         `json:"document_id"`
	Content    *content.State `json:"content"`
}

func (s *HTTPServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": s.manager.Count(),
	})
}

// handleCreateSession creates a viewing session and runs the initial content
// selection. Fetch failures are the caller's to retry; no half-created
// session is left behind.
func (s *HTTPServer) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.InitialFocus < 0 || req.InitialFocus > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "initial_focus must be in [0,100]"})
		return
	}

	scope := common.NewScope(c.Request.Context(), "session.create")
	defer scope.Finish()
	scope.TraceTag("document_id", req.DocumentID)
	scope.SetAttributes("initial_focus", req.InitialFocus)

	sess, st, err := s.manager.Create(scope.Ctx, req.DocumentID, req.InitialFocus)
	if err != nil {
		scope.TraceError(err)
		var fetchErr *content.FetchError
		if errors.As(err, &fetchErr) {
			scope.Log.Warnf("initial content fetch failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "content source unavailable"})
			return
		}
		scope.Log.Errorf("session creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{
		SessionID:  sess.ID(),
		DocumentID: sess.DocumentID(),
		Content:    st,
	})
}

func (s *HTTPServer) handleGetSession(c *gin.Context) {
	sess, ok := s.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	st, ok := sess.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no content selected"})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		SessionID:  sess.ID(),
		DocumentID: sess.DocumentID(),
		Content:    &st,
	})
}

func (s *HTTPServer) handleDeleteSession(c *gin.Context) {
	if !s.manager.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleSessionSocket upgrades to a WebSocket carrying the inbound sample
// stream and the outbound attention/suggestion/content notifications.
func (s *HTTPServer) handleSessionSocket(c *gin.Context) {
	sess, ok := s.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	serveSessionSocket(c.Writer, c.Request, sess)
}
