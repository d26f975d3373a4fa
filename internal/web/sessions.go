package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Zachkp/zach-term/internal/shell"
)

// terminal is one browser tab's shell plus its prompt state.
type terminal struct {
	id    string
	shell *shell.Session

	mu     sync.Mutex
	editor shell.LineEditor
}

// sessions holds live terminals. Idle ones expire after the TTL and the least
// recently used one is dropped when the cap is reached; either way its shell
// is closed so no timer or game outlives it.
type sessions struct {
	cache *expirable.LRU[string, *terminal]
	opts  func() shell.Options
	log   hclog.Logger
}

func newSessions(size int, ttl time.Duration, opts func() shell.Options, log hclog.Logger) *sessions {
	s := &sessions{opts: opts, log: log}
	s.cache = expirable.NewLRU[string, *terminal](size, func(id string, t *terminal) {
		t.shell.Close()
		s.log.Debug("terminal closed", "session", id)
	}, ttl)
	return s
}

func (s *sessions) create() *terminal {
	t := &terminal{id: uuid.NewString(), shell: shell.NewSession(s.opts())}
	s.cache.Add(t.id, t)
	return t
}

// get returns a live terminal and pushes back its expiry.
func (s *sessions) get(id string) (*terminal, bool) {
	t, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	s.cache.Add(id, t)
	return t, true
}

func (s *sessions) len() int {
	return s.cache.Len()
}

// close evicts every terminal.
func (s *sessions) close() {
	s.cache.Purge()
}
