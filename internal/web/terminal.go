package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/zach-term/internal/shell"
)

// SessionHeader carries the terminal session ID on every HTMX request.
const SessionHeader = "X-Terminal-Session"

const terminalKey = "terminal"

type entryView struct {
	shell.Entry
	SessionID string
}

type promptView struct {
	Value    string
	Disabled bool
	OOB      bool
	Suffix   string
	Hint     string
}

func newPrompt(value string, disabled bool) promptView {
	p := promptView{Value: value, Disabled: disabled, OOB: true}
	p.Suffix, p.Hint = shell.GhostHint(value)
	return p
}

func (s *Server) requireTerminal() gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := s.sessions.get(c.GetHeader(SessionHeader))
		if !ok {
			c.Header("HX-Retarget", "#history")
			c.Header("HX-Reswap", "beforeend")
			c.HTML(http.StatusGone, "expired.html", nil)
			c.Abort()
			return
		}
		c.Set(terminalKey, t)
		c.Next()
	}
}

func terminalFrom(c *gin.Context) *terminal {
	return c.MustGet(terminalKey).(*terminal)
}

func (s *Server) index(c *gin.Context) {
	t := s.sessions.create()
	if cmd, ok := shell.QueryCommand(c.Query("run")); ok {
		if _, err := s.execute(c.Request.Context(), t, cmd); err != nil {
			s.log.Warn("auto-run failed", "command", cmd, "error", err)
		}
	}

	var entries []entryView
	for _, e := range t.shell.History() {
		entries = append(entries, entryView{Entry: e, SessionID: t.id})
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":     s.site.Profile.Name,
		"sessionID": t.id,
		"entries":   entries,
		"prompt":    promptView{},
	})
}

// execute runs one command and records it for the dashboard.
func (s *Server) execute(ctx context.Context, t *terminal, raw string) (shell.Result, error) {
	res, err := t.shell.Execute(raw)
	if err != nil {
		return res, err
	}
	s.log.Debug("command", "session", t.id, "command", res.Command, "outcome", res.Outcome)

	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.store.RecordCommand(ctx, t.id, res.Command, string(res.Outcome)); err != nil {
			s.log.Error("error recording command", "error", err)
		}
		for _, label := range res.Unlocked {
			if err := s.store.RecordAchievement(ctx, t.id, label); err != nil {
				s.log.Error("error recording achievement", "error", err)
			}
		}
	}()
	return res, nil
}

func (s *Server) exec(c *gin.Context) {
	t := terminalFrom(c)
	res, err := s.execute(c.Request.Context(), t, c.PostForm("command"))
	switch {
	case errors.Is(err, shell.ErrAppActive):
		c.Status(http.StatusConflict)
		return
	case err != nil:
		c.HTML(http.StatusGone, "expired.html", nil)
		return
	}

	t.mu.Lock()
	t.editor.Submitted(res.NextInput)
	t.mu.Unlock()

	s.applyEffects(c, res.Effects)

	data := gin.H{"prompt": newPrompt(res.NextInput, t.shell.ActiveApp() != shell.AppNone)}
	if res.SkipAppend {
		c.Header("HX-Retarget", "#history")
		c.Header("HX-Reswap", "innerHTML")
	} else if e, ok := t.shell.Entry(res.EntryID); ok {
		data["entry"] = entryView{Entry: e, SessionID: t.id}
	}
	c.HTML(http.StatusOK, "exec.html", data)
}

// entry re-renders one entry; pending entries poll this until they settle.
func (s *Server) entry(c *gin.Context) {
	t := terminalFrom(c)
	e, ok := t.shell.Entry(c.Param("id"))
	if !ok {
		c.String(http.StatusOK, "")
		return
	}
	if !e.Pending {
		s.applyEffects(c, t.shell.TakeEffects())
	}
	c.HTML(http.StatusOK, "entry", entryView{Entry: e, SessionID: t.id})
}

// applyEffects turns shell effects into HTMX response headers.
func (s *Server) applyEffects(c *gin.Context, effects []shell.Effect) {
	for _, eff := range effects {
		switch eff.Kind {
		case shell.EffectNavigate:
			c.Header("HX-Redirect", eff.Href)
		case shell.EffectOpenTab:
			trigger, err := json.Marshal(gin.H{"open-tab": gin.H{"href": eff.Href}})
			if err != nil {
				s.log.Error("encode trigger", "error", err)
				continue
			}
			c.Header("HX-Trigger", string(trigger))
		}
	}
}

// Keys understood by the key endpoint, as sent by the browser.
const (
	keyTab   = "Tab"
	keyUp    = "ArrowUp"
	keyDown  = "ArrowDown"
	keyEsc   = "Escape"
	keyCtrlC = "ctrl+c"
	keyCtrlL = "ctrl+l"
)

func (s *Server) key(c *gin.Context) {
	t := terminalFrom(c)
	input := c.PostForm("input")
	cleared := false

	t.mu.Lock()
	if t.editor.Input != input {
		t.editor.Set(input)
	}
	switch c.PostForm("key") {
	case keyTab:
		t.editor.Tab()
	case keyUp:
		t.editor.Up(t.shell.Commands())
	case keyDown:
		t.editor.Down(t.shell.Commands())
	case keyEsc, keyCtrlC:
		t.editor.Reset()
	case keyCtrlL:
		t.shell.ClearHistory()
		cleared = true
	default:
		t.mu.Unlock()
		c.Status(http.StatusBadRequest)
		return
	}
	value := t.editor.Input
	t.mu.Unlock()

	t.shell.Touch()
	c.HTML(http.StatusOK, "key.html", gin.H{
		"cleared": cleared,
		"prompt":  newPrompt(value, false),
	})
}

func (s *Server) hint(c *gin.Context) {
	p := newPrompt(c.Query("command"), false)
	p.OOB = false
	c.HTML(http.StatusOK, "ghost", p)
}

func (s *Server) activity(c *gin.Context) {
	terminalFrom(c).shell.Touch()
	c.Status(http.StatusNoContent)
}

func (s *Server) idle(c *gin.Context) {
	c.HTML(http.StatusOK, "idle", terminalFrom(c).shell.IdleLine())
}
