package server

import (
	"net/http"

	authdomain "github.com/evalworks/vendoreval/internal/auth/domain"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Name string `json:"name"`
}

type sessionResponse struct {
	UserName  string `json:"user_name"`
	IsAdmin   bool   `json:"is_admin"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("name", "invalid_request", "body must be json with a name field"))
		return
	}

	result, err := s.auth.Login(c.Request.Context(), authdomain.LoginRequest{Name: req.Name})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.Session.ExpiresAt)
	c.JSON(http.StatusOK, sessionView(result.Session))
}

func (s *Server) handleLogout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		_ = s.auth.Logout(c.Request.Context(), token)
	}
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMe(c *gin.Context) {
	sess := s.currentSession(c)
	if sess == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

func sessionView(sess *authdomain.Session) sessionResponse {
	return sessionResponse{
		UserName:  sess.UserName,
		IsAdmin:   sess.IsAdmin,
		ExpiresAt: sess.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
