// Package pong implements the court physics and rendering of the Pong easter egg.
package pong

import (
	"math"
	"math/rand"
)

// Status is the phase of a match.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusPaused   Status = "paused"
	StatusGameOver Status = "gameover"
)

// Court and physics constants, in logical pixels and seconds.
const (
	Width        = 720.0
	Height       = 360.0
	PaddleWidth  = 10.0
	PaddleHeight = 70.0
	PaddleInset  = 18.0
	PaddleSpeed  = 360.0
	BallRadius   = 6.0
	ServeSpeed   = 420.0
	WinningScore = 7

	// MaxStep caps a single frame so a backgrounded tab does not teleport the ball.
	MaxStep = 0.033

	cpuSpeedFactor = 0.9
	playerSpin     = 140.0
	cpuSpin        = 110.0
	playerAccelX   = 1.03
	cpuAccelX      = 1.02
	accelY         = 1.01
)

// Score is the running score of a match.
type Score struct {
	Player int `json:"player"`
	CPU    int `json:"cpu"`
}

// Snapshot is a read-only copy of the match state.
type Snapshot struct {
	PlayerY float64 `json:"playerY"`
	CPUY    float64 `json:"cpuY"`
	BallX   float64 `json:"ballX"`
	BallY   float64 `json:"ballY"`
	BallVX  float64 `json:"ballVX"`
	BallVY  float64 `json:"ballVY"`
	Score   Score   `json:"score"`
	Status  Status  `json:"status"`
}

// Winner reports who won a finished match.
func (s Snapshot) Winner() string {
	if s.Status != StatusGameOver {
		return ""
	}
	if s.Score.Player > s.Score.CPU {
		return "You"
	}
	return "CPU"
}

// Engine holds the state of one match. It is not safe for concurrent use;
// Runner serializes access to it.
type Engine struct {
	rng *rand.Rand

	running bool
	paused  bool

	up, down bool

	playerY, cpuY  float64
	ballX, ballY   float64
	ballVX, ballVY float64
	score          Score
}

// NewEngine returns a match in the playing state with the ball served in a
// random direction.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	e := &Engine{rng: rng, running: true}
	e.resetRound(e.randomDir())
	return e
}

// SetInput sets the held state of the movement keys.
func (e *Engine) SetInput(up, down bool) {
	e.up = up
	e.down = down
}

// TogglePause flips between playing and paused. It does nothing once the match is over.
func (e *Engine) TogglePause() {
	if !e.running {
		return
	}
	e.paused = !e.paused
}

// Restart resets the score and serves a new match.
func (e *Engine) Restart() {
	e.score = Score{}
	e.paused = false
	e.running = true
	e.resetRound(e.randomDir())
}

// Status returns the current phase.
func (e *Engine) Status() Status {
	switch {
	case !e.running:
		return StatusGameOver
	case e.paused:
		return StatusPaused
	default:
		return StatusPlaying
	}
}

// Snapshot copies the current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		PlayerY: e.playerY,
		CPUY:    e.cpuY,
		BallX:   e.ballX,
		BallY:   e.ballY,
		BallVX:  e.ballVX,
		BallVY:  e.ballVY,
		Score:   e.score,
		Status:  e.Status(),
	}
}

// Step advances the match by dt seconds.
func (e *Engine) Step(dt float64) {
	if !e.running || e.paused {
		return
	}
	if dt > MaxStep {
		dt = MaxStep
	}
	if dt <= 0 {
		return
	}

	if e.up {
		e.playerY -= PaddleSpeed * dt
	}
	if e.down {
		e.playerY += PaddleSpeed * dt
	}
	e.playerY = clampPaddle(e.playerY)

	target := e.ballY - PaddleHeight/2
	maxMove := PaddleSpeed * cpuSpeedFactor * dt
	delta := target - e.cpuY
	if math.Abs(delta) <= maxMove {
		e.cpuY = target
	} else {
		e.cpuY += math.Copysign(maxMove, delta)
	}
	e.cpuY = clampPaddle(e.cpuY)

	e.ballX += e.ballVX * dt
	e.ballY += e.ballVY * dt

	if e.ballY-BallRadius <= 0 {
		e.ballY = BallRadius
		e.ballVY = -e.ballVY
	} else if e.ballY+BallRadius >= Height {
		e.ballY = Height - BallRadius
		e.ballVY = -e.ballVY
	}

	e.collide()

	switch {
	case e.ballX+BallRadius < 0:
		e.score.CPU++
		if e.score.CPU >= WinningScore {
			e.running = false
			return
		}
		e.resetRound(-1)
	case e.ballX-BallRadius > Width:
		e.score.Player++
		if e.score.Player >= WinningScore {
			e.running = false
			return
		}
		e.resetRound(1)
	}
}

func (e *Engine) collide() {
	ballTop := e.ballY - BallRadius
	ballBottom := e.ballY + BallRadius

	leftX := PaddleInset
	if e.ballVX < 0 && e.ballX-BallRadius <= leftX+PaddleWidth {
		if ballBottom >= e.playerY && ballTop <= e.playerY+PaddleHeight {
			e.ballX = leftX + PaddleWidth + BallRadius
			e.bounce(e.playerY, playerSpin, playerAccelX)
		}
	}

	rightX := Width - PaddleInset - PaddleWidth
	if e.ballVX > 0 && e.ballX+BallRadius >= rightX {
		if ballBottom >= e.cpuY && ballTop <= e.cpuY+PaddleHeight {
			e.ballX = rightX - BallRadius
			e.bounce(e.cpuY, cpuSpin, cpuAccelX)
		}
	}
}

func (e *Engine) bounce(paddleY, spin, accelX float64) {
	e.ballVX = -e.ballVX
	hit := (e.ballY - (paddleY + PaddleHeight/2)) / (PaddleHeight / 2)
	hit = math.Max(-1, math.Min(1, hit))
	e.ballVY += hit * spin
	e.ballVX *= accelX
	e.ballVY *= accelY
}

// resetRound centers both paddles and serves toward dir (-1 left, 1 right),
// which is always the side that just conceded.
func (e *Engine) resetRound(dir float64) {
	e.playerY = (Height - PaddleHeight) / 2
	e.cpuY = (Height - PaddleHeight) / 2
	e.ballX = Width / 2
	e.ballY = Height / 2
	e.ballVX = ServeSpeed * dir
	vy := 140 + e.rng.Float64()*140
	if e.rng.Float64() > 0.5 {
		e.ballVY = vy
	} else {
		e.ballVY = -vy
	}
}

func (e *Engine) randomDir() float64 {
	if e.rng.Float64() > 0.5 {
		return 1
	}
	return -1
}

func clampPaddle(y float64) float64 {
	return math.Max(0, math.Min(Height-PaddleHeight, y))
}
