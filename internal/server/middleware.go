package server

import (
	authdomain "github.com/evalworks/vendoreval/internal/auth/domain"
	"github.com/evalworks/vendoreval/internal/authz"
	"github.com/evalworks/vendoreval/internal/userctx"
	"github.com/gin-gonic/gin"
)

const sessionContextKey = "auth.session"

// RequireSession authenticates the request from the session cookie and
// stamps the user identity into the request context.
func (s *Server) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, err := s.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		c.Set(sessionContextKey, sess)
		ctx := userctx.WithUser(c.Request.Context(), sess.UserName)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin gates a route on one ledger capability. It assumes
// RequireSession already ran.
func (s *Server) RequireAdmin(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := s.currentSession(c)
		if sess == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authz.Authorize(sess.UserName, authz.ObjectLedger, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) currentSession(c *gin.Context) *authdomain.Session {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, ok := value.(*authdomain.Session)
	if !ok {
		return nil
	}
	return sess
}
