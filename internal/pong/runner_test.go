package pong

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := map[string]Key{
		"w": KeyUp, "ArrowUp": KeyUp, "s": KeyDown, "ArrowDown": KeyDown,
		"p": KeyPause, " ": KeyPause, "r": KeyRestart, "Escape": KeyExit, "Q": KeyExit,
	}
	for name, want := range tests {
		got, ok := ParseKey(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := ParseKey("x")
	assert.False(t, ok)
}

func TestRunnerExitRunsCallbackOnce(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner(newTestEngine(), func() { calls.Add(1) })

	r.KeyDown(KeyExit)
	r.Exit()
	r.KeyDown(KeyExit)

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, r.Exited())
}

func TestRunnerHeldKeysMovePaddle(t *testing.T) {
	r := NewRunner(newTestEngine(), nil)
	start := r.Snapshot().PlayerY

	r.KeyDown(KeyUp)
	moved := r.Tick(frame)
	assert.Less(t, moved.PlayerY, start)

	r.KeyUp(KeyUp)
	still := r.Tick(frame)
	assert.Equal(t, moved.PlayerY, still.PlayerY)
}

func TestRunnerPauseAndRestart(t *testing.T) {
	r := NewRunner(newTestEngine(), nil)

	r.KeyDown(KeyPause)
	assert.Equal(t, StatusPaused, r.Snapshot().Status)

	r.KeyDown(KeyRestart)
	assert.Equal(t, StatusPlaying, r.Snapshot().Status)
}

func TestRunnerRunStopsOnExit(t *testing.T) {
	r := NewRunner(newTestEngine(), nil)
	frames := make(chan Snapshot, 64)

	errc := make(chan error, 1)
	go func() {
		errc <- r.Run(context.Background(), time.Millisecond, func(s Snapshot) {
			select {
			case frames <- s:
			default:
			}
		})
	}()

	<-frames
	r.Exit()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("frame loop did not stop after exit")
	}
}

func TestRunnerRejectsSecondLoop(t *testing.T) {
	r := NewRunner(newTestEngine(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		var once atomic.Bool
		errc <- r.Run(ctx, time.Millisecond, func(Snapshot) {
			if once.CompareAndSwap(false, true) {
				close(started)
			}
		})
	}()
	<-started

	assert.ErrorIs(t, r.Run(ctx, time.Millisecond, func(Snapshot) {}), ErrAlreadyRunning)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestRenderDrawList(t *testing.T) {
	var list DrawList
	Render(newTestEngine().Snapshot(), &list)

	require.Len(t, list.Ops, 5)
	assert.Equal(t, "fill", list.Ops[0].Kind)
	assert.Equal(t, "dash", list.Ops[1].Kind)
	assert.Equal(t, "rect", list.Ops[2].Kind)
	assert.Equal(t, "rect", list.Ops[3].Kind)
	assert.Equal(t, "circle", list.Ops[4].Kind)
	assert.Equal(t, ColorBall, list.Ops[4].Color)
}

func TestRenderGrid(t *testing.T) {
	g := NewGrid(72, 18)
	Render(newTestEngine().Snapshot(), g)

	out := g.String()
	rows := strings.Split(out, "\n")
	require.Len(t, rows, 18)
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "┊")
}
