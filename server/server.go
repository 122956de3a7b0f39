// Package server wires the HTTP routes, middleware and handlers.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"trusttracker/auth"
	"trusttracker/config"
	"trusttracker/store"
	"trusttracker/web"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg      *config.Config
	store    *store.Store
	auth     *auth.Authenticator
	sessions *auth.SessionCodec
	log      *slog.Logger
	engine   *gin.Engine
}

// New builds the gin engine. The caller picks the gin mode beforehand.
func New(cfg *config.Config, st *store.Store, views *web.Renderer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	registerValidators()

	master := auth.MasterCredentials{
		Username: cfg.Master.Username,
		Password: cfg.Master.Password,
		Override: cfg.Master.Override,
	}
	s := &Server{
		cfg:   cfg,
		store: st,
		auth: auth.NewAuthenticator(st, master, func(err error) bool {
			return errors.Is(err, store.ErrNotFound)
		}),
		sessions: auth.NewSessionCodec(cfg.Session.SecretKey, cfg.Session.TTL),
		log:      log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(log))
	r.HTMLRender = views
	s.engine = r
	s.setupRoutes(r)
	return s
}

func (s *Server) setupRoutes(r *gin.Engine) {
	r.StaticFS("/static", web.Static())
	r.GET("/healthz", s.healthHandler)

	pages := r.Group("")
	pages.Use(s.loadSession())
	pages.GET("/login", s.loginPageHandler)
	pages.POST("/login", s.loginHandler)
	pages.GET("/logout", s.logoutHandler)

	authGroup := pages.Group("")
	authGroup.Use(s.requireLogin())
	authGroup.GET("/", s.indexHandler)
	authGroup.GET("/trust/:id", s.trustDetailHandler)
	authGroup.GET("/trust/add", s.addTrustPageHandler)
	authGroup.POST("/trust/add", s.addTrustHandler)
	authGroup.GET("/trusts/new", s.addTrustPageHandler)
	authGroup.POST("/trusts/new", s.addTrustHandler)
	authGroup.GET("/transactions", s.listTransactionsHandler)
	authGroup.GET("/transaction/add", s.addTransactionPageHandler)
	authGroup.POST("/transaction/add", s.addTransactionHandler)
	authGroup.GET("/meetings", s.listMeetingsHandler)
	authGroup.GET("/meeting/add", s.addMeetingPageHandler)
	authGroup.POST("/meeting/add", s.addMeetingHandler)

	adminGroup := authGroup.Group("")
	adminGroup.Use(s.requireAdmin())
	adminGroup.GET("/register", s.registerPageHandler)
	adminGroup.POST("/register", s.registerHandler)
	adminGroup.GET("/users", s.listUsersHandler)
	adminGroup.POST("/users/delete/:id", s.deleteUserHandler)
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
