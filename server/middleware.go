package server

import (
	"errors"
	"log/slog"
	"time"

	"trusttracker/auth"
	"trusttracker/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// requestID propagates a client supplied id or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(ctxRequestID),
		}
		if len(c.Errors) > 0 {
			log.Error("request", append(attrs, "errors", c.Errors.String())...)
			return
		}
		log.Info("request", attrs...)
	}
}

// loadSession decodes the session cookie and resolves the signed-in user.
func (s *Server) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := &sessionState{}
		if raw, err := c.Cookie(sessionCookie); err == nil && raw != "" {
			decoded, err := s.sessions.Decode(raw)
			if err != nil {
				s.log.Debug("discarding session cookie", "err", err)
				st.dirty = true
			} else {
				st.Session = decoded
			}
		}
		c.Set(ctxSession, st)

		if st.UserID != 0 {
			u, err := s.store.UserByID(c.Request.Context(), st.UserID)
			switch {
			case err == nil:
				c.Set(ctxUser, u)
			case errors.Is(err, store.ErrNotFound):
				// account deleted while signed in
				st.setUser(0)
			default:
				s.fail(c, "load session user", err)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func (s *Server) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) != nil {
			c.Next()
			return
		}
		s.flash(c, auth.FlashInfo, "Please log in to access this page.")
		s.redirect(c, loginURL(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// requireAdmin must run after requireLogin.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := currentUser(c); u != nil && u.IsAdmin {
			c.Next()
			return
		}
		s.flash(c, auth.FlashError, "Administrator access required.")
		s.redirect(c, "/")
		c.Abort()
	}
}
