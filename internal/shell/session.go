// Package shell resolves commands typed into the portfolio terminal and keeps
// the per-visitor session state: history, achievements, staged output timers,
// the idle hint and the running minigame.
package shell

import (
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/zach-term/internal/content"
	"github.com/Zachkp/zach-term/internal/pong"
)

var (
	ErrClosed    = errors.New("shell session closed")
	ErrAppActive = errors.New("shell input suspended while an app is running")
)

// WelcomeID is the ID of the entry seeded into every new session.
const WelcomeID = "welcome"

const (
	defaultIdleAfter = 20 * time.Second
	defaultStageStep = 50 * time.Millisecond
)

var (
	sudoPattern     = regexp.MustCompile(`^sudo(\s|$)`)
	helpHelpPattern = regexp.MustCompile(`^help\s+help$`)
)

// App is a full-screen program that takes over input.
type App string

const (
	AppNone App = ""
	AppPong App = "pong"
)

// Entry is one submitted command and what it printed.
type Entry struct {
	ID      string
	Command string
	Output  *Output
	Pending bool
}

// ShowPrompt reports whether the prompt line is echoed above the output.
func (e Entry) ShowPrompt() bool {
	return e.ID != WelcomeID
}

type Outcome string

const (
	OutcomeCommand   Outcome = "command"
	OutcomeEmpty     Outcome = "empty"
	OutcomeSudo      Outcome = "sudo"
	OutcomeSuggested Outcome = "suggested"
	OutcomeUnknown   Outcome = "unknown"
)

type EffectKind string

const (
	// EffectNavigate replaces the current page.
	EffectNavigate EffectKind = "navigate"
	// EffectOpenTab opens a new tab and keeps the terminal.
	EffectOpenTab EffectKind = "open-tab"
)

type Effect struct {
	Kind EffectKind
	Href string
}

// Result is what Execute did with one line of input.
type Result struct {
	EntryID    string
	Command    string
	Outcome    Outcome
	Output     *Output
	NextInput  string
	SkipAppend bool
	Effects    []Effect
	Unlocked   []string
}

type EventKind string

const (
	EventPatched  EventKind = "patched"
	EventCleared  EventKind = "cleared"
	EventIdle     EventKind = "idle"
	EventEffect   EventKind = "effect"
	EventGameExit EventKind = "game-exit"
)

// Event reports a change made outside Execute, from a timer or the game.
type Event struct {
	Kind    EventKind
	EntryID string
}

type Options struct {
	Site      *content.Site
	Now       func() time.Time
	Rand      *rand.Rand
	NewID     func() string
	IdleAfter time.Duration
	StageStep time.Duration
	// Notify is called without the session lock held.
	Notify func(Event)
}

// Session is one visitor's terminal. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	site      *content.Site
	now       func() time.Time
	rng       *rand.Rand
	newID     func() string
	idleAfter time.Duration
	stageStep time.Duration
	notify    func(Event)

	history   []Entry
	track     tracker
	activeApp App
	game      *pong.Runner
	gameEntry string
	idleLine  string
	effects   []Effect

	// timers maps each pending callback to the entry it patches ("" for idle).
	timers    map[*time.Timer]string
	idleTimer *time.Timer
	closed    bool
}

// NewSession starts a session with the welcome entry and the idle timer armed.
func NewSession(opts Options) *Session {
	s := &Session{
		site:      opts.Site,
		now:       opts.Now,
		rng:       opts.Rand,
		newID:     opts.NewID,
		idleAfter: opts.IdleAfter,
		stageStep: opts.StageStep,
		notify:    opts.Notify,
		timers:    make(map[*time.Timer]string),
	}
	if s.site == nil {
		s.site = &content.Site{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.idleAfter <= 0 {
		s.idleAfter = defaultIdleAfter
	}
	if s.stageStep <= 0 {
		s.stageStep = defaultStageStep
	}

	s.mu.Lock()
	s.history = []Entry{{ID: WelcomeID, Command: "welcome", Output: s.welcome("Pick your route:")}}
	s.armIdleLocked()
	s.mu.Unlock()
	return s
}

// Execute runs one line of input.
func (s *Session) Execute(raw string) (Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result{}, ErrClosed
	}
	if s.activeApp != AppNone {
		s.mu.Unlock()
		return Result{}, ErrAppActive
	}

	s.idleLine = ""
	s.armIdleLocked()

	c := &call{raw: raw, clean: normalize(raw), id: s.newID(), now: s.now()}
	c.effective = c.clean

	var res Result
	if sudoPattern.MatchString(c.clean) {
		res = s.sudo()
		res.Outcome = OutcomeSudo
	} else {
		helpHelp := helpHelpPattern.MatchString(c.clean)
		if helpHelp {
			c.effective = "help"
		}
		if c.effective == "help" {
			s.track.helpCount++
		}
		unlocked := s.track.observe(c.effective, c.now)

		switch h, ok := registry[c.effective]; {
		case helpHelp && !s.track.manpageShown:
			s.track.manpageShown = true
			res = s.manpage()
		case ok:
			res = h(s, c)
		default:
			res = s.unknown(c)
		}
		if res.Outcome == "" {
			res.Outcome = OutcomeCommand
			if c.effective == "" {
				res.Outcome = OutcomeEmpty
			}
		}
		res.Unlocked = unlocked
		res.Output = res.Output.WithBanners(unlocked...)
	}
	res.Command = c.effective

	if !res.SkipAppend {
		pending := s.hasTimersLocked(c.id)
		s.history = append(s.snapshotLocked(), Entry{ID: c.id, Command: raw, Output: res.Output, Pending: pending})
		res.EntryID = c.id
	}
	s.mu.Unlock()
	return res, nil
}

// History returns a copy of the entries in insertion order.
func (s *Session) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Entry looks up one history entry.
func (s *Session) Entry(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.history {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Commands lists what the visitor typed, oldest first, for Up/Down recall.
func (s *Session) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.history {
		if e.ID != WelcomeID && e.Command != "" {
			out = append(out, e.Command)
		}
	}
	return out
}

// ClearHistory empties the history, as Ctrl+L does.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

func (s *Session) Achievements() Achievements {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track.unlocked
}

// ActiveApp reports which app, if any, owns the keyboard.
func (s *Session) ActiveApp() App {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeApp
}

// Game returns the running Pong game and the entry it belongs to.
func (s *Session) Game() (*pong.Runner, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game, s.gameEntry, s.game != nil
}

// Touch records keyboard activity: it hides the idle hint and re-arms the timer.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.idleLine = ""
	s.armIdleLocked()
}

// IdleLine is the hint shown after a quiet period, or "".
func (s *Session) IdleLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeApp != AppNone {
		return ""
	}
	return s.idleLine
}

// TakeEffects drains effects queued by timers.
func (s *Session) TakeEffects() []Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.effects
	s.effects = nil
	return out
}

// Close cancels every pending timer and stops the game. Later calls do nothing.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for t := range s.timers {
		t.Stop()
	}
	s.timers = map[*time.Timer]string{}
	s.idleTimer = nil
	game := s.game
	s.mu.Unlock()

	if game != nil {
		game.Exit()
	}
}

// PendingTimers counts scheduled callbacks that have not run yet.
func (s *Session) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Session) snapshotLocked() []Entry {
	return append([]Entry(nil), s.history...)
}

// patchLocked replaces the output of entry id, keeping its banners.
func (s *Session) patchLocked(id string, out *Output, pending bool) bool {
	next := s.snapshotLocked()
	for i := range next {
		if next[i].ID != id {
			continue
		}
		if old := next[i].Output; old != nil && out != nil {
			out = out.WithBanners(old.Banners...)
		}
		next[i].Output = out
		next[i].Pending = pending
		s.history = next
		return true
	}
	return false
}

// scheduleLocked runs fn after d with the lock held, unless the session has
// been closed first. fn returns the events to publish once the lock is released.
func (s *Session) scheduleLocked(d time.Duration, entryID string, fn func() []Event) *time.Timer {
	if s.closed {
		return nil
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		if _, live := s.timers[t]; !live || s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.timers, t)
		events := fn()
		s.mu.Unlock()
		s.publish(events)
	})
	s.timers[t] = entryID
	return t
}

func (s *Session) hasTimersLocked(entryID string) bool {
	for _, owner := range s.timers {
		if owner == entryID {
			return true
		}
	}
	return false
}

func (s *Session) publish(events []Event) {
	if s.notify == nil {
		return
	}
	for _, e := range events {
		s.notify(e)
	}
}

func (s *Session) armIdleLocked() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		delete(s.timers, s.idleTimer)
		s.idleTimer = nil
	}
	if s.activeApp != AppNone {
		return
	}
	s.idleTimer = s.scheduleLocked(s.idleAfter, "", func() []Event {
		s.idleTimer = nil
		if s.activeApp != AppNone || s.idleLine != "" {
			return nil
		}
		s.idleLine = idleLines[s.rng.Intn(len(idleLines))]
		return []Event{{Kind: EventIdle}}
	})
}

// stageLocked reveals final in steps on entry id: "fetching…", "rendering…",
// "done." and then the content itself, one step per stageStep. Each step
// schedules the next so patches land in order. then, if set, runs with the
// final patch.
func (s *Session) stageLocked(id string, final *Output, then func() []Event) *Output {
	progress := []string{"fetching…", "rendering…", "done."}

	var step func(n int) []Event
	step = func(n int) []Event {
		if n > len(progress) {
			done := &Output{Kind: final.Kind, Lines: append([]Line{textLine(ToneGreen, "done.")}, final.Lines...)}
			if !s.patchLocked(id, done, false) {
				return nil
			}
			events := []Event{{Kind: EventPatched, EntryID: id}}
			if then != nil {
				events = append(events, then()...)
			}
			return events
		}
		if !s.patchLocked(id, stageOutput(progress[:n]), true) {
			return nil
		}
		s.scheduleLocked(s.stageStep, id, func() []Event { return step(n + 1) })
		return []Event{{Kind: EventPatched, EntryID: id}}
	}
	s.scheduleLocked(s.stageStep, id, func() []Event { return step(2) })
	return stageOutput(progress[:1])
}

func stageOutput(steps []string) *Output {
	out := &Output{Kind: KindLines}
	for _, step := range steps {
		out.Lines = append(out.Lines, textLine(ToneOverlay, step))
	}
	return out
}

// startGameLocked hands the keyboard to a new Pong match bound to entry id.
func (s *Session) startGameLocked(id string) {
	s.activeApp = AppPong
	s.gameEntry = id
	s.idleLine = ""
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		delete(s.timers, s.idleTimer)
		s.idleTimer = nil
	}
	engine := pong.NewEngine(rand.New(rand.NewSource(s.rng.Int63())))
	s.game = pong.NewRunner(engine, func() { s.exitGame(id) })
}

func (s *Session) exitGame(id string) {
	s.mu.Lock()
	if s.closed || s.gameEntry != id {
		s.mu.Unlock()
		return
	}
	s.activeApp = AppNone
	s.game = nil
	s.gameEntry = ""
	patched := s.patchLocked(id, lines(textLine(ToneSubtext, "exited pong")), false)
	s.armIdleLocked()
	s.mu.Unlock()

	events := []Event{{Kind: EventGameExit, EntryID: id}}
	if patched {
		events = append(events, Event{Kind: EventPatched, EntryID: id})
	}
	s.publish(events)
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
