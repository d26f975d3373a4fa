package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/Zachkp/zach-term/internal/config"
)

var errInvalidMessage = errors.New("invalid contact message")

const maxMessageLen = 5000

// Message is a contact form submission.
type Message struct {
	Name  string
	Email string
	Body  string
}

// Validate trims the fields and rejects incomplete or header-breaking input.
func (m *Message) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Body = strings.TrimSpace(m.Body)
	switch {
	case m.Name == "" || m.Email == "" || m.Body == "":
		return fmt.Errorf("%w: name, email and message are required", errInvalidMessage)
	case strings.ContainsAny(m.Name+m.Email, "\r\n"):
		return fmt.Errorf("%w: line breaks in header fields", errInvalidMessage)
	case len(m.Body) > maxMessageLen:
		return fmt.Errorf("%w: message too long", errInvalidMessage)
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return fmt.Errorf("%w: %v", errInvalidMessage, err)
	}
	return nil
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpMailer struct {
	cfg  config.SMTP
	send sendFunc
	log  hclog.Logger
}

func newSMTPMailer(cfg config.SMTP, log hclog.Logger) *smtpMailer {
	return &smtpMailer{cfg: cfg, send: smtp.SendMail, log: log}
}

func (s *smtpMailer) Send(ctx context.Context, m Message) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("Portfolio Contact: %s", m.Name)
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from the zach-term contact form
`, m.Name, m.Email, m.Body)

	msg := []byte("To: " + s.cfg.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + s.cfg.User + "\r\n" +
		"Reply-To: " + m.Email + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	if err := s.send(s.cfg.Addr(), auth, s.cfg.User, []string{s.cfg.To}, msg); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	s.log.Info("contact email sent", "from", m.Email)
	return nil
}

func (s *Server) contactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"title": "Contact Me",
		"email": s.site.Profile.Email,
	})
}

// contact handles the HTMX form post and answers with a result fragment.
func (s *Server) contact(c *gin.Context) {
	m := Message{
		Name:  c.PostForm("fullName"),
		Email: c.PostForm("email"),
		Body:  c.PostForm("message"),
	}
	if err := m.Validate(); err != nil {
		c.HTML(http.StatusOK, "contact-result", gin.H{
			"error": "Please fill in your name, a valid email and a message.",
		})
		return
	}

	if err := s.mailer.Send(c.Request.Context(), m); err != nil {
		if errors.Is(err, config.ErrSMTPNotConfigured) {
			s.log.Warn("contact form used without SMTP credentials")
		} else {
			s.log.Error("error sending email", "error", err)
		}
		c.HTML(http.StatusOK, "contact-result", gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}

	c.HTML(http.StatusOK, "contact-result", gin.H{
		"success": "Thank you for your message! I'll get back to you soon.",
	})
}
