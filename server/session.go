package server

import (
	"net/http"
	"net/url"
	"strings"

	"trusttracker/auth"
	"trusttracker/models"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "trusttracker_session"
	ctxSession    = "trusttracker.session"
	ctxUser       = "trusttracker.user"
	ctxRequestID  = "trusttracker.request_id"
)

// sessionState is the request-scoped view of the session cookie.
type sessionState struct {
	auth.Session
	dirty bool
}

func (st *sessionState) flash(category, message string) {
	st.Flashes = append(st.Flashes, auth.Flash{Category: category, Message: message})
	st.dirty = true
}

func (st *sessionState) popFlashes() []auth.Flash {
	if len(st.Flashes) == 0 {
		return nil
	}
	f := st.Flashes
	st.Flashes = nil
	st.dirty = true
	return f
}

func (st *sessionState) setUser(id uint) {
	st.UserID = id
	st.dirty = true
}

func sessionFrom(c *gin.Context) *sessionState {
	if v, ok := c.Get(ctxSession); ok {
		if st, ok := v.(*sessionState); ok {
			return st
		}
	}
	st := &sessionState{}
	c.Set(ctxSession, st)
	return st
}

// currentUser returns the signed-in user, or nil for anonymous requests.
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func (s *Server) flash(c *gin.Context, category, message string) {
	sessionFrom(c).flash(category, message)
}

// saveSession writes the cookie when the session changed. It must run
// before the response body.
func (s *Server) saveSession(c *gin.Context) {
	st := sessionFrom(c)
	if !st.dirty {
		return
	}
	st.dirty = false
	c.SetSameSite(http.SameSiteLaxMode)
	if st.Empty() {
		c.SetCookie(sessionCookie, "", -1, "/", "", s.cfg.Session.Secure, true)
		return
	}
	raw, err := s.sessions.Encode(st.Session)
	if err != nil {
		s.log.Error("encode session", "err", err)
		return
	}
	c.SetCookie(sessionCookie, raw, int(s.sessions.TTL().Seconds()), "/", "", s.cfg.Session.Secure, true)
}

func (s *Server) redirect(c *gin.Context, location string) {
	s.saveSession(c)
	c.Redirect(http.StatusFound, location)
}

// render executes page inside the layout with the current user and pending flashes.
func (s *Server) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = currentUser(c)
	data["Flashes"] = sessionFrom(c).popFlashes()
	s.saveSession(c)
	c.HTML(status, page, data)
}

// fail logs err and answers with a bare 500.
func (s *Server) fail(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	s.log.Error(msg, "err", err, "path", c.Request.URL.Path, "request_id", c.GetString(ctxRequestID))
	s.saveSession(c)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

// safeNext only allows local absolute paths as post-login targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func loginURL(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}
