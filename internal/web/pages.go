package web

import (
	"errors"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-term/internal/content"
	"github.com/Zachkp/zach-term/internal/store"
)

func (s *Server) blogIndex(c *gin.Context) {
	posts := s.site.Posts
	if q := c.Query("q"); q != "" {
		posts = s.site.SearchPosts(q)
	}
	c.HTML(http.StatusOK, "blog.html", gin.H{
		"title": "Blog",
		"posts": posts,
		"query": c.Query("q"),
	})
}

func (s *Server) blogPost(c *gin.Context) {
	post, err := s.site.Post(c.Param("slug"))
	if err != nil {
		s.contentError(c, err)
		return
	}
	c.HTML(http.StatusOK, "article.html", gin.H{
		"title": post.Title,
		"entry": post,
		"back":  "/blog",
	})
}

func (s *Server) project(c *gin.Context) {
	p, err := s.site.Project(c.Param("id"))
	if err != nil {
		s.contentError(c, err)
		return
	}
	c.HTML(http.StatusOK, "article.html", gin.H{
		"title": p.Title,
		"entry": p,
		"back":  "/",
	})
}

func (s *Server) resume(c *gin.Context) {
	info, err := content.ResumeInfo(s.cfg.ResumePath)
	if err != nil {
		s.contentError(c, err)
		return
	}
	c.Header("X-Resume-Pages", humanize.Comma(int64(info.Pages)))
	c.Header("Content-Disposition", `inline; filename="resume.pdf"`)
	c.File(info.Path)
}

func (s *Server) contentError(c *gin.Context, err error) {
	if errors.Is(err, content.ErrNotFound) {
		s.notFound(c)
		return
	}
	s.log.Error("content error", "path", c.Request.URL.Path, "error", err)
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"title": "Error",
		"error": "Something went wrong loading this page.",
	})
}

func (s *Server) privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":         "Privacy Policy",
		"retentionDays": int(store.Retention.Hours() / 24),
	})
}
