package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zachkp/zach-term/internal/pong"
)

func (m *Model) startGame() tea.Cmd {
	runner, _, ok := m.sess.Game()
	if !ok {
		return nil
	}
	m.ticking = true
	m.lastFrame = m.now()
	m.snap = runner.Snapshot()
	m.input.Blur()
	m.refresh()
	return frameCmd()
}

func (m *Model) stopGame() {
	m.ticking = false
	clear(m.held)
	m.input.Focus()
}

// frame releases stale keys, steps the match and schedules the next frame.
func (m *Model) frame(now time.Time) tea.Cmd {
	runner, _, ok := m.sess.Game()
	if !ok {
		if m.ticking {
			m.stopGame()
			m.refresh()
		}
		return nil
	}

	for k, pressed := range m.held {
		if now.Sub(pressed) >= keyRelease {
			runner.KeyUp(k)
			delete(m.held, k)
		}
	}
	dt := now.Sub(m.lastFrame).Seconds()
	m.lastFrame = now
	m.snap = runner.Tick(dt)
	m.refresh()
	return frameCmd()
}

func (m *Model) gameKey(msg tea.KeyMsg) tea.Cmd {
	runner, _, ok := m.sess.Game()
	if !ok {
		return nil
	}
	name := msg.String()
	if name == "ctrl+c" {
		name = "esc"
	}
	k, ok := pong.ParseKey(name)
	if !ok {
		return nil
	}

	runner.KeyDown(k)
	switch k {
	case pong.KeyUp, pong.KeyDown:
		m.held[k] = m.now()
	case pong.KeyExit:
		m.stopGame()
		m.refresh()
	default:
		m.snap = runner.Snapshot()
		m.refresh()
	}
	return nil
}
