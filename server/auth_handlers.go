package server

import (
	"errors"
	"fmt"
	"net/http"

	"trusttracker/auth"
	"trusttracker/store"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func (s *Server) loginPageHandler(c *gin.Context) {
	if currentUser(c) != nil {
		s.redirect(c, safeNext(c.Query("next")))
		return
	}
	next := c.Query("next")
	if safeNext(next) == "/" {
		next = ""
	}
	s.render(c, http.StatusOK, "login.html", gin.H{"Next": next, "Username": ""})
}

func (s *Server) loginHandler(c *gin.Context) {
	next := c.Query("next")
	var f loginForm
	if err := c.ShouldBindWith(&f, binding.Form); err != nil {
		s.flash(c, auth.FlashError, "Username and password are required.")
		s.redirect(c, loginURL(next))
		return
	}

	user, err := s.auth.Login(c.Request.Context(), f.Username, f.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrMasterNotInitialized):
		s.log.Warn("master login attempted before provisioning", "username", f.Username)
		s.flash(c, auth.FlashError, "Master account is not initialized. Run the migrate command to provision it.")
		s.redirect(c, loginURL(next))
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.log.Info("login failed", "username", f.Username, "client_ip", c.ClientIP())
		s.flash(c, auth.FlashError, "Invalid username or password")
		s.redirect(c, loginURL(next))
		return
	default:
		s.fail(c, "login", err)
		return
	}

	sessionFrom(c).setUser(user.ID)
	s.log.Info("login succeeded", "user_id", user.ID, "username", user.Username)
	s.flash(c, auth.FlashSuccess, "Logged in successfully.")
	s.redirect(c, safeNext(next))
}

func (s *Server) logoutHandler(c *gin.Context) {
	st := sessionFrom(c)
	if u := currentUser(c); u != nil {
		s.log.Info("logout", "user_id", u.ID, "username", u.Username)
	}
	st.setUser(0)
	s.flash(c, auth.FlashSuccess, "You have been logged out.")
	s.redirect(c, "/login")
}

func (s *Server) registerPageHandler(c *gin.Context) {
	s.render(c, http.StatusOK, "register.html", gin.H{"Form": registerForm{}})
}

func (s *Server) registerHandler(c *gin.Context) {
	var f registerForm
	if err := c.ShouldBindWith(&f, binding.Form); err != nil {
		s.flash(c, auth.FlashError, f.problem(err).Message)
		s.redirect(c, "/register")
		return
	}
	u, err := auth.NewUser(f.Username, f.Password, f.IsAdmin)
	if err != nil {
		s.flash(c, auth.FlashError, "Invalid registration: "+err.Error())
		s.redirect(c, "/register")
		return
	}
	if err := s.store.CreateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			s.flash(c, auth.FlashError, "Username already exists.")
			s.redirect(c, "/register")
			return
		}
		s.fail(c, "register user", err)
		return
	}
	s.log.Info("user registered", "user_id", u.ID, "username", u.Username, "is_admin", u.IsAdmin, "by", currentUser(c).Username)
	s.flash(c, auth.FlashSuccess, fmt.Sprintf("User %s registered successfully!", u.Username))
	s.redirect(c, "/users")
}

func (s *Server) listUsersHandler(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		s.fail(c, "list users", err)
		return
	}
	s.render(c, http.StatusOK, "users.html", gin.H{"Users": users})
}

func (s *Server) deleteUserHandler(c *gin.Context) {
	ctx := c.Request.Context()
	me := currentUser(c)
	id, ok := parseID(c.Param("id"))
	if !ok {
		s.flash(c, auth.FlashError, "User not found.")
		s.redirect(c, "/users")
		return
	}
	if id == me.ID {
		s.flash(c, auth.FlashError, "You cannot delete your own account.")
		s.redirect(c, "/users")
		return
	}
	target, err := s.store.UserByID(ctx, id)
	if err == nil {
		err = s.store.DeleteUser(ctx, id)
	}
	if errors.Is(err, store.ErrNotFound) {
		s.flash(c, auth.FlashError, "User not found.")
		s.redirect(c, "/users")
		return
	}
	if err != nil {
		s.fail(c, "delete user", err)
		return
	}
	s.log.Info("user deleted", "user_id", id, "username", target.Username, "by", me.Username)
	s.flash(c, auth.FlashSuccess, fmt.Sprintf("User %s deleted.", target.Username))
	s.redirect(c, "/users")
}
