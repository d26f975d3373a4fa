// Package web serves the terminal portfolio over HTTP: the shell as HTMX
// fragments, Pong over a websocket, the content pages, the contact form and
// the admin dashboard.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/Zachkp/zach-term/internal/config"
	"github.com/Zachkp/zach-term/internal/content"
	"github.com/Zachkp/zach-term/internal/shell"
	"github.com/Zachkp/zach-term/internal/store"
)

//go:embed templates static
var assets embed.FS

type Options struct {
	Config *config.Config
	Site   *content.Site
	Store  *store.Store
	Logger hclog.Logger
	// Mailer delivers contact messages; SMTP from Config when nil.
	Mailer Mailer
	// StageStep overrides the staged reveal interval, for tests.
	StageStep time.Duration
}

type Server struct {
	cfg      *config.Config
	site     *content.Site
	store    *store.Store
	log      hclog.Logger
	mailer   Mailer
	sessions *sessions
	admin    *adminAuth
	engine   *gin.Engine
}

func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Site == nil || opts.Store == nil {
		return nil, errors.New("web: config, site and store are required")
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	cfg := opts.Config

	s := &Server{
		cfg:    cfg,
		site:   opts.Site,
		store:  opts.Store,
		log:    opts.Logger,
		mailer: opts.Mailer,
	}
	if s.mailer == nil {
		s.mailer = newSMTPMailer(cfg.SMTP, s.log.Named("mail"))
	}

	admin, err := newAdminAuth(cfg.Admin, s.log.Named("admin"))
	if err != nil {
		return nil, err
	}
	s.admin = admin

	stageStep := opts.StageStep
	s.sessions = newSessions(cfg.MaxSessions, cfg.SessionTTL, func() shell.Options {
		return shell.Options{
			Site:      s.site,
			Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
			IdleAfter: cfg.IdleAfter,
			StageStep: stageStep,
		}
	}, s.log.Named("sessions"))

	if err := s.setupRouter(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setupRouter() error {
	gin.SetMode(s.cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		r.Use(gin.Logger())
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(assets, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(assets, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}
	r.StaticFS("/static", http.FS(static))

	r.Use(s.visitorTracking())

	r.GET("/", s.index)
	term := r.Group("/terminal", s.requireTerminal())
	{
		term.POST("/exec", s.exec)
		term.GET("/entries/:id", s.entry)
		term.POST("/key", s.key)
		term.GET("/hint", s.hint)
		term.POST("/activity", s.activity)
		term.GET("/idle", s.idle)
	}
	r.GET("/terminal/pong/:id", s.pong)

	r.GET("/blog", s.blogIndex)
	r.GET("/blog/:slug", s.blogPost)
	r.GET("/projects/:id", s.project)
	r.GET("/resume.pdf", s.resume)
	r.GET("/contact", s.contactForm)
	r.POST("/contact", s.contact)
	r.GET("/privacy", s.privacy)
	s.setupAdminRoutes(r)

	r.NoRoute(s.notFound)

	s.engine = r
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// every terminal session.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.purgeLoop(ctx)

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr, "site", s.cfg.SiteURL)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.sessions.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.sessions.close()
	s.log.Info("server stopped")
	return err
}

// purgeLoop removes analytics older than the retention period, at start and daily.
func (s *Server) purgeLoop(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		if _, err := s.store.PurgeOlderThan(ctx, time.Now().Add(-store.Retention)); err != nil && ctx.Err() == nil {
			s.log.Error("privacy cleanup failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.html", gin.H{
		"title": "Not found",
		"path":  c.Request.URL.Path,
	})
}
