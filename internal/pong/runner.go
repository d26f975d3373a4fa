package pong

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned when a second frame loop is started on one Runner.
var ErrAlreadyRunning = errors.New("pong: frame loop already running")

// FrameInterval is the target refresh period of the frame loop.
const FrameInterval = time.Second / 60

// Key is a logical game control.
type Key string

const (
	KeyUp      Key = "up"
	KeyDown    Key = "down"
	KeyPause   Key = "pause"
	KeyRestart Key = "restart"
	KeyExit    Key = "exit"
)

// ParseKey maps a browser or terminal key name to a control.
func ParseKey(name string) (Key, bool) {
	switch strings.ToLower(name) {
	case "w", "arrowup", "up":
		return KeyUp, true
	case "s", "arrowdown", "down":
		return KeyDown, true
	case "p", " ", "space":
		return KeyPause, true
	case "r":
		return KeyRestart, true
	case "escape", "esc", "q":
		return KeyExit, true
	}
	return "", false
}

// Runner drives one Engine from keyboard events and a frame clock.
// All methods are safe for concurrent use.
type Runner struct {
	mu      sync.Mutex
	engine  *Engine
	up      bool
	down    bool
	running bool

	onExit   func()
	exitOnce sync.Once
	done     chan struct{}

	now func() time.Time
}

// NewRunner wraps engine. onExit is invoked exactly once, by the first Exit call.
func NewRunner(engine *Engine, onExit func()) *Runner {
	if engine == nil {
		engine = NewEngine(nil)
	}
	return &Runner{
		engine: engine,
		onExit: onExit,
		done:   make(chan struct{}),
		now:    time.Now,
	}
}

// KeyDown handles a key press. Exit, pause and restart act immediately;
// movement keys stay held until KeyUp.
func (r *Runner) KeyDown(k Key) {
	if k == KeyExit {
		r.Exit()
		return
	}
	if r.Exited() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	switch k {
	case KeyPause:
		r.engine.TogglePause()
	case KeyRestart:
		r.engine.Restart()
	case KeyUp:
		r.up = true
	case KeyDown:
		r.down = true
	}
}

// KeyUp releases a movement key.
func (r *Runner) KeyUp(k Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch k {
	case KeyUp:
		r.up = false
	case KeyDown:
		r.down = false
	}
}

// Tick polls the held keys, steps the engine by dt seconds and returns the new state.
func (r *Runner) Tick(dt float64) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine.SetInput(r.up, r.down)
	r.engine.Step(dt)
	return r.engine.Snapshot()
}

// Snapshot returns the current state without stepping.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Snapshot()
}

// Run steps and renders the match every interval until ctx is cancelled or the
// game exits. frame receives each new state.
func (r *Runner) Run(ctx context.Context, interval time.Duration, frame func(Snapshot)) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()

	if interval <= 0 {
		interval = FrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := r.now()
	frame(r.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.done:
			return nil
		case <-ticker.C:
			now := r.now()
			dt := now.Sub(last).Seconds()
			last = now
			frame(r.Tick(dt))
		}
	}
}

// Exit leaves the game. Only the first call has any effect.
func (r *Runner) Exit() {
	r.exitOnce.Do(func() {
		close(r.done)
		if r.onExit != nil {
			r.onExit()
		}
	})
}

// Exited reports whether Exit has been called.
func (r *Runner) Exited() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Done is closed when the game exits.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}
