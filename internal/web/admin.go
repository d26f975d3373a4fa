package web

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/Zachkp/zach-term/internal/config"
	"github.com/Zachkp/zach-term/internal/store"
)

const adminCookie = "admin_token"

type adminAuth struct {
	token string
	creds config.Admin
	log   hclog.Logger
}

func newAdminAuth(creds config.Admin, log hclog.Logger) (*adminAuth, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate admin token: %w", err)
	}
	a := &adminAuth{token: hex.EncodeToString(b), creds: creds, log: log}

	log.Info("admin access available", "path", "/admin/login")
	if gin.Mode() == gin.DebugMode {
		log.Debug("admin token (dev only)", "token", a.token)
		if creds.Defaulted {
			log.Warn("using default admin credentials, set ADMIN_USERNAME and ADMIN_PASSWORD")
		}
	}
	return a, nil
}

func (a *adminAuth) valid(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(a.creds.Username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(a.creds.Password))
	return u&p == 1
}

func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

var untrackedPrefixes = []string{"/static/", "/terminal/", "/admin/", "/favicon", "/privacy", "/resume.pdf"}

// visitorTracking records page views with hashed IPs. Requests carrying
// DNT: 1 are never recorded.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range untrackedPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		visit := store.Visit{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent"), Path: path}
		go func() {
			if err := s.store.RecordVisit(context.Background(), visit); err != nil {
				s.log.Error("error recording visitor", "error", err)
			}
		}()
		c.Next()
	}
}

// HostStats is the process and machine summary on the dashboard.
type HostStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	ProcessRSS    string  `json:"process_rss"`
	Sessions      int     `json:"sessions"`
}

func (s *Server) hostStats() HostStats {
	hs := HostStats{Sessions: s.sessions.len()}
	if usages, err := cpu.Percent(0, false); err == nil && len(usages) > 0 {
		hs.CPUPercent = usages[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		hs.MemoryPercent = vm.UsedPercent
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil {
			hs.ProcessRSS = humanize.Bytes(info.RSS)
		}
	}
	return hs
}

type dashboard struct {
	*store.Stats
	Host HostStats `json:"host"`
}

func (s *Server) dashboardData(ctx context.Context) (*dashboard, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dashboard{Stats: stats, Host: s.hostStats()}, nil
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		who := s.store.Hash(c.ClientIP())
		if !s.admin.valid(c.PostForm("username"), c.PostForm("password")) {
			s.admin.log.Warn("failed admin login", "from", who)
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}
		c.SetCookie(adminCookie, s.admin.token, 3600*24, "/admin", "", false, true)
		s.admin.log.Info("admin login", "from", who)
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		s.admin.log.Info("admin logout", "from", s.store.Hash(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin", s.admin.middleware())

	admin.GET("/dashboard", func(c *gin.Context) {
		d, err := s.dashboardData(c.Request.Context())
		if err != nil {
			s.log.Error("error loading admin stats", "error", err)
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"title": "Error",
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"title": "Dashboard",
			"stats": d,
		})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		d, err := s.dashboardData(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, d)
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		d, err := s.dashboardData(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		name := fmt.Sprintf("zach-term-stats-%s.json", time.Now().UTC().Format(time.DateOnly))
		c.Header("Content-Disposition", "attachment; filename="+name)
		s.admin.log.Info("stats exported", "by", s.store.Hash(c.ClientIP()))
		c.JSON(http.StatusOK, d)
	})

	admin.DELETE("/visitors/:id", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visitor id"})
			return
		}
		if err := s.store.DeleteVisitor(c.Request.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
				return
			}
			s.log.Error("error deleting visitor", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete visitor"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "visitor deleted"})
	})

	admin.POST("/privacy/purge", func(c *gin.Context) {
		n, err := s.store.PurgeOlderThan(c.Request.Context(), time.Now().Add(-store.Retention))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "privacy cleanup complete", "removed": n})
	})
}
