// Package tui runs the portfolio shell in a local terminal with Bubble Tea.
package tui

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zachkp/zach-term/internal/content"
	"github.com/Zachkp/zach-term/internal/pong"
	"github.com/Zachkp/zach-term/internal/shell"
)

// Terminals never report key releases, so a held direction counts as
// released once no repeat has arrived for this long.
const keyRelease = 150 * time.Millisecond

type Options struct {
	Site *content.Site
	// SiteURL prefixes links that the web terminal would open in a browser.
	SiteURL   string
	IdleAfter time.Duration
	StageStep time.Duration
	Now       func() time.Time
	Rand      *rand.Rand
}

// eventMsg carries a shell event raised by a timer or the game.
type eventMsg shell.Event

// frameMsg drives one Pong frame.
type frameMsg time.Time

type Model struct {
	sess    *shell.Session
	events  chan shell.Event
	siteURL string
	now     func() time.Time

	keys     keyMap
	gameKeys gameKeys
	help     help.Model
	input    textinput.Model
	view     viewport.Model
	editor   shell.LineEditor

	width  int
	height int
	idle   string
	status string

	held      map[pong.Key]time.Time
	lastFrame time.Time
	snap      pong.Snapshot
	ticking   bool
}

func New(opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	events := make(chan shell.Event, 64)
	sess := shell.NewSession(shell.Options{
		Site:      opts.Site,
		Now:       opts.Now,
		Rand:      opts.Rand,
		IdleAfter: opts.IdleAfter,
		StageStep: opts.StageStep,
		Notify: func(ev shell.Event) {
			select {
			case events <- ev:
			default:
			}
		},
	})

	in := textinput.New()
	in.Prompt = ""
	in.Focus()

	m := &Model{
		sess:     sess,
		events:   events,
		siteURL:  strings.TrimRight(opts.SiteURL, "/"),
		now:      opts.Now,
		keys:     defaultKeys(),
		gameKeys: defaultGameKeys(),
		help:     help.New(),
		input:    in,
		view:     viewport.New(80, 20),
		width:    80,
		height:   24,
		held:     map[pong.Key]time.Time{},
	}
	m.refresh()
	return m
}

// Session exposes the shell behind the model.
func (m *Model) Session() *shell.Session {
	return m.sess
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.events))
}

func waitForEvent(events <-chan shell.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-events)
	}
}

func frameCmd() tea.Cmd {
	return tea.Tick(pong.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
		m.refresh()
		return m, nil

	case eventMsg:
		m.handleEvent(shell.Event(msg))
		return m, waitForEvent(m.events)

	case frameMsg:
		return m, m.frame(m.now())

	case tea.KeyMsg:
		if m.sess.ActiveApp() == shell.AppPong {
			return m, m.gameKey(msg)
		}
		return m.promptKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleEvent(ev shell.Event) {
	switch ev.Kind {
	case shell.EventEffect:
		m.applyEffects(m.sess.TakeEffects())
	case shell.EventGameExit:
		m.stopGame()
	}
	m.refresh()
}

func (m *Model) promptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v := m.input.Value(); m.editor.Input != v {
		m.editor.Set(v)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.Complete):
		m.editor.Tab()
	case key.Matches(msg, m.keys.Prev):
		m.editor.Up(m.sess.Commands())
	case key.Matches(msg, m.keys.Next):
		m.editor.Down(m.sess.Commands())
	case key.Matches(msg, m.keys.Reset):
		m.editor.Reset()
	case key.Matches(msg, m.keys.Cancel):
		if m.editor.Input == "" {
			return m, tea.Quit
		}
		m.editor.Reset()
	case key.Matches(msg, m.keys.Clear):
		m.sess.ClearHistory()
		m.refresh()
	case key.Matches(msg, m.keys.PageUp):
		m.view.SetYOffset(m.view.YOffset - m.view.Height/2)
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.view.SetYOffset(m.view.YOffset + m.view.Height/2)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.editor.Set(m.input.Value())
		m.sess.Touch()
		m.idle = ""
		return m, cmd
	}

	m.setInput(m.editor.Input)
	m.sess.Touch()
	return m, nil
}

func (m *Model) submit() tea.Cmd {
	res, err := m.sess.Execute(m.input.Value())
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.status = ""
	m.editor.Submitted(res.NextInput)
	m.setInput(res.NextInput)
	m.applyEffects(res.Effects)
	m.refresh()

	if m.sess.ActiveApp() == shell.AppPong && !m.ticking {
		return m.startGame()
	}
	return nil
}

func (m *Model) setInput(v string) {
	m.input.SetValue(v)
	m.input.CursorEnd()
}

func (m *Model) applyEffects(effects []shell.Effect) {
	for _, eff := range effects {
		verb := "open"
		if eff.Kind == shell.EffectNavigate {
			verb = "continue at"
		}
		m.status = verb + " " + m.siteURL + eff.Href
	}
}

// refresh re-renders the history into the viewport and pins it to the bottom.
func (m *Model) refresh() {
	_, gameEntry, playing := m.sess.Game()
	var blocks []string
	for _, e := range m.sess.History() {
		court := ""
		if playing && e.ID == gameEntry {
			court = renderCourt(m.snap, m.width, m.view.Height-courtChrome(e))
		}
		blocks = append(blocks, renderEntry(e, court))
	}
	m.idle = m.sess.IdleLine()
	m.view.SetContent(strings.Join(blocks, "\n\n"))
	m.view.GotoBottom()
}

// layout gives the viewport whatever the prompt, idle, status and help
// lines leave.
func (m *Model) layout() {
	m.view.Width = m.width
	m.view.Height = max(m.height-4, 1)
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.view.View())
	b.WriteByte('\n')
	if m.idle != "" {
		b.WriteString(ghostStyle.Render(m.idle))
	}
	b.WriteByte('\n')

	if m.sess.ActiveApp() == shell.AppPong {
		b.WriteString(ghostStyle.Render(Prompt + " (pong running)"))
	} else {
		b.WriteString(promptStyle.Render(Prompt) + " " + m.input.View())
		if suffix, hint := shell.GhostHint(m.input.Value()); suffix != "" {
			b.WriteString(ghostStyle.Render(suffix + "  → " + hint))
		}
	}
	b.WriteByte('\n')

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	if m.sess.ActiveApp() == shell.AppPong {
		b.WriteString(m.help.View(m.gameKeys))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

// Run starts the interactive shell and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) error {
	m := New(opts)
	defer m.sess.Close()

	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, progOpts...)
	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}
