package web

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Zachkp/zach-term/internal/pong"
)

const (
	writeWait = 2 * time.Second
	readLimit = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// keyMessage is sent by the browser on keydown and keyup.
type keyMessage struct {
	Type string `json:"type"` // "down" or "up"
	Key  string `json:"key"`
}

type frameMessage struct {
	Type   string     `json:"type"` // "frame" or "exit"
	Ops    []pong.Op  `json:"ops,omitempty"`
	Score  pong.Score `json:"score"`
	Status string     `json:"status,omitempty"`
	Winner string     `json:"winner,omitempty"`
	Entry  string     `json:"entry,omitempty"`
}

// gameConn serializes writes to one websocket.
type gameConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (g *gameConn) write(msg frameMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return g.conn.WriteJSON(msg)
}

// pong streams the session's running game: key events in, draw lists out.
// The game ends when the player exits or the socket drops.
func (s *Server) pong(c *gin.Context) {
	t, ok := s.sessions.get(c.Param("id"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	runner, entryID, ok := t.shell.Game()
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(readLimit)
	gc := &gameConn{conn: conn}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			var msg keyMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			key, ok := pong.ParseKey(msg.Key)
			if !ok {
				continue
			}
			switch msg.Type {
			case "down":
				runner.KeyDown(key)
			case "up":
				runner.KeyUp(key)
			}
		}
	}()

	err = runner.Run(ctx, pong.FrameInterval, func(snap pong.Snapshot) {
		var dl pong.DrawList
		pong.Render(snap, &dl)
		msg := frameMessage{Type: "frame", Ops: dl.Ops, Score: snap.Score, Status: string(snap.Status)}
		if snap.Status == pong.StatusGameOver {
			msg.Winner = snap.Winner()
		}
		if err := gc.write(msg); err != nil {
			cancel()
		}
	})
	if errors.Is(err, pong.ErrAlreadyRunning) {
		s.log.Debug("pong already streaming", "session", t.id)
		return
	}

	// leaving the page or dropping the socket also ends the game
	runner.Exit()
	if err := gc.write(frameMessage{Type: "exit", Entry: entryID}); err != nil {
		s.log.Debug("pong exit not delivered", "session", t.id, "error", err)
	}
}
