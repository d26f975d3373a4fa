package pong

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 1.0 / 60

func newTestEngine() *Engine {
	return NewEngine(rand.New(rand.NewSource(7)))
}

func TestNewEngineStartsCentered(t *testing.T) {
	e := newTestEngine()
	s := e.Snapshot()

	assert.Equal(t, Score{}, s.Score)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, (Height-PaddleHeight)/2, s.PlayerY)
	assert.Equal(t, (Height-PaddleHeight)/2, s.CPUY)
	assert.Equal(t, Width/2, s.BallX)
	assert.Equal(t, Height/2, s.BallY)
	assert.InDelta(t, ServeSpeed, abs(s.BallVX), 1e-9)
	assert.GreaterOrEqual(t, abs(s.BallVY), 140.0)
	assert.Less(t, abs(s.BallVY), 280.0)
}

func TestStepReflectsOffWalls(t *testing.T) {
	tests := []struct {
		name   string
		y, vy  float64
		wantY  float64
		wantVY float64
	}{
		{name: "top", y: 7, vy: -200, wantY: BallRadius, wantVY: 200},
		{name: "bottom", y: Height - 7, vy: 200, wantY: Height - BallRadius, wantVY: -200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			e.ballX, e.ballY = Width/2, tt.y
			e.ballVX, e.ballVY = 0, tt.vy

			e.Step(frame)

			assert.Equal(t, tt.wantY, e.ballY)
			assert.Equal(t, tt.wantVY, e.ballVY)
		})
	}
}

func TestStepClampsPlayerPaddle(t *testing.T) {
	e := newTestEngine()
	e.ballVX, e.ballVY = 0, 0
	e.SetInput(true, false)
	for i := 0; i < 120; i++ {
		e.Step(frame)
	}
	assert.Equal(t, 0.0, e.playerY)

	e.SetInput(false, true)
	for i := 0; i < 240; i++ {
		e.Step(frame)
	}
	assert.Equal(t, Height-PaddleHeight, e.playerY)
}

func TestCPUPursuesBallAtReducedSpeed(t *testing.T) {
	e := newTestEngine()
	e.ballX, e.ballY = Width/2, Height-BallRadius-1
	e.ballVX, e.ballVY = 0, 0
	start := e.cpuY

	e.Step(0.02)

	assert.InDelta(t, start+PaddleSpeed*cpuSpeedFactor*0.02, e.cpuY, 1e-9)
}

func TestPlayerPaddleReturnsBall(t *testing.T) {
	e := newTestEngine()
	e.playerY = 100
	e.ballX, e.ballY = 34, 135
	e.ballVX, e.ballVY = -420, 0

	e.Step(0.01)

	assert.Equal(t, PaddleInset+PaddleWidth+BallRadius, e.ballX)
	assert.InDelta(t, 420*playerAccelX, e.ballVX, 1e-9)
	assert.InDelta(t, 0, e.ballVY, 1e-9)
}

func TestPaddleHitAddsSpin(t *testing.T) {
	e := newTestEngine()
	e.playerY = 100
	e.ballX, e.ballY = 34, 100+PaddleHeight/2+PaddleHeight/4
	e.ballVX, e.ballVY = -420, 0

	e.Step(0.01)

	assert.InDelta(t, 0.5*playerSpin*accelY, e.ballVY, 1e-9)
}

func TestBallPassesMissedPaddle(t *testing.T) {
	e := newTestEngine()
	e.playerY = 0
	e.ballX, e.ballY = 34, 300
	e.ballVX, e.ballVY = -420, 0

	e.Step(0.01)

	assert.Less(t, e.ballVX, 0.0)
}

func TestScoringServesTowardConcedingSide(t *testing.T) {
	e := newTestEngine()
	e.playerY = 0
	e.ballX, e.ballY = -10, 300
	e.ballVX, e.ballVY = -420, 0

	e.Step(frame)

	s := e.Snapshot()
	assert.Equal(t, Score{CPU: 1}, s.Score)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, Width/2, s.BallX)
	assert.Less(t, s.BallVX, 0.0)
}

func TestGameOverFreezesMatch(t *testing.T) {
	e := newTestEngine()
	e.score.Player = WinningScore - 1
	e.cpuY = 0
	e.ballX, e.ballY = Width+10, 300
	e.ballVX, e.ballVY = 420, 0

	e.Step(frame)
	over := e.Snapshot()
	require.Equal(t, StatusGameOver, over.Status)
	assert.Equal(t, WinningScore, over.Score.Player)
	assert.Equal(t, "You", over.Winner())

	e.SetInput(true, false)
	for i := 0; i < 10; i++ {
		e.Step(frame)
	}
	assert.Equal(t, over, e.Snapshot())

	e.TogglePause()
	assert.Equal(t, StatusGameOver, e.Status())
}

func TestRestartResetsScore(t *testing.T) {
	e := newTestEngine()
	e.score = Score{Player: 3, CPU: WinningScore}
	e.running = false

	e.Restart()

	s := e.Snapshot()
	assert.Equal(t, Score{}, s.Score)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, Width/2, s.BallX)
}

func TestPauseStopsStepping(t *testing.T) {
	e := newTestEngine()
	e.TogglePause()
	require.Equal(t, StatusPaused, e.Status())

	before := e.Snapshot()
	e.Step(frame)
	assert.Equal(t, before, e.Snapshot())

	e.TogglePause()
	assert.Equal(t, StatusPlaying, e.Status())
}

func TestStepCapsLargeFrames(t *testing.T) {
	e := newTestEngine()
	e.ballX, e.ballY = Width/2, Height/2
	e.ballVX, e.ballVY = 100, 0

	e.Step(5)

	assert.InDelta(t, Width/2+100*MaxStep, e.ballX, 1e-9)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
