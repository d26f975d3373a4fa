package web

import (
	"context"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/zach-term/internal/shell"
)

func sessionHeader(t *terminal) http.Header {
	return http.Header{SessionHeader: {t.id}}
}

func (ts *testServer) exec(t *testing.T, term *terminal, command string) *httptest.ResponseRecorder {
	t.Helper()
	return ts.do(t, http.MethodPost, "/terminal/exec", url.Values{"command": {command}}, sessionHeader(term))
}

func lastEntryID(t *testing.T, term *terminal) string {
	t.Helper()
	h := term.shell.History()
	require.NotEmpty(t, h)
	return h[len(h)-1].ID
}

func TestIndexStartsSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Pick your route:")
	assert.Contains(t, body, `data-session="`)
	assert.Contains(t, body, `id="prompt-input"`)
	assert.Equal(t, 1, ts.sessions.len())

	ts.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, 2, ts.sessions.len(), "every load gets a fresh session")
}

func TestIndexRunsQueryCommand(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/?run=About", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Minnesota, USA")

	w = ts.do(t, http.MethodGet, "/?run=pong", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<canvas")
}

func TestTerminalRequiresSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/terminal/exec", url.Values{"command": {"about"}}, http.Header{SessionHeader: {"nope"}})
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Contains(t, w.Body.String(), "session expired")
	assert.Equal(t, "#history", w.Header().Get("HX-Retarget"))
}

func TestExecAppendsEntry(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.exec(t, term, "about")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="entry-`+lastEntryID(t, term)+`"`)
	assert.Contains(t, body, "Minnesota, USA")
	assert.Contains(t, body, `hx-swap-oob="true"`)
	assert.Contains(t, body, Prompt)

	require.Eventually(t, func() bool {
		stats, err := ts.store.Stats(context.Background())
		return err == nil && stats.TotalCommands == 1
	}, time.Second, 10*time.Millisecond)
}

func TestExecSuggestionPrefillsPrompt(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.exec(t, term, "pojects")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Did you mean: ")
	assert.Contains(t, w.Body.String(), `value="projects"`)
}

func TestExecResumeOpensNewTab(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.exec(t, term, "resume")
	require.Equal(t, http.StatusOK, w.Code)

	var trigger map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &trigger))
	assert.Equal(t, "/resume.pdf", trigger["open-tab"]["href"])
	assert.Empty(t, w.Header().Get("HX-Redirect"))
}

func TestExecContactCopiesBareAddress(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.exec(t, term, "contact")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `href="mailto:zachkordaspotter@gmail.com"`)
	assert.Contains(t, body, `data-copy="zachkordaspotter@gmail.com"`)
	assert.NotContains(t, body, `data-copy="mailto:`)
}

func TestCopyText(t *testing.T) {
	assert.Equal(t, "me@example.com", copyText(shell.Span{Href: "mailto:me@example.com"}))
	assert.Equal(t, "https://example.com/x", copyText(shell.Span{Href: "https://example.com/x"}))
}

func TestExecClearRetargetsHistory(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	ts.exec(t, term, "about")
	w := ts.exec(t, term, "clear")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#history", w.Header().Get("HX-Retarget"))
	assert.Equal(t, "innerHTML", w.Header().Get("HX-Reswap"))
	assert.NotContains(t, w.Body.String(), `class="entry"`)
	assert.Empty(t, term.shell.History())
}

func TestBlogRedirectsAfterReveal(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.exec(t, term, "blog")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fetching…")
	assert.Contains(t, w.Body.String(), `hx-trigger="load delay:50ms"`)
	id := lastEntryID(t, term)

	var final *httptest.ResponseRecorder
	require.Eventually(t, func() bool {
		final = ts.do(t, http.MethodGet, "/terminal/entries/"+id, nil, sessionHeader(term))
		return final.Header().Get("HX-Redirect") != ""
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "/blog", final.Header().Get("HX-Redirect"))
	assert.Contains(t, final.Body.String(), "Pong in a terminal")
	assert.NotContains(t, final.Body.String(), "hx-trigger")
}

func TestEntryMissingRendersNothing(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.do(t, http.MethodGet, "/terminal/entries/gone", nil, sessionHeader(term))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestKeyEndpoint(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()
	ts.exec(t, term, "about")
	ts.exec(t, term, "pwd")

	key := func(k, input string) *httptest.ResponseRecorder {
		return ts.do(t, http.MethodPost, "/terminal/key", url.Values{"key": {k}, "input": {input}}, sessionHeader(term))
	}

	assert.Contains(t, key("Tab", "proj").Body.String(), `value="projects"`)
	assert.Contains(t, key("ArrowUp", "dra").Body.String(), `value="pwd"`)
	assert.Contains(t, key("ArrowUp", "pwd").Body.String(), `value="about"`)
	assert.Contains(t, key("ArrowDown", "about").Body.String(), `value="pwd"`)
	assert.Contains(t, key("ArrowDown", "pwd").Body.String(), `value="dra"`)
	assert.Contains(t, key("Escape", "something").Body.String(), `value=""`)

	w := key("ctrl+l", "")
	assert.Contains(t, w.Body.String(), `<div id="history" hx-swap-oob="innerHTML"></div>`)
	assert.Empty(t, term.shell.History())

	assert.Equal(t, http.StatusBadRequest, key("F5", "").Code)
}

func TestHintEndpoint(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.do(t, http.MethodGet, "/terminal/hint?command=exp", nil, sessionHeader(term))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<span class="suffix">erience</span>`)
	assert.Contains(t, html.UnescapeString(w.Body.String()), "skills + work + impact")
	assert.NotContains(t, w.Body.String(), "hx-swap-oob")
}

func TestActivityAndIdle(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.do(t, http.MethodPost, "/terminal/activity", nil, sessionHeader(term))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/terminal/idle", nil, sessionHeader(term))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="idle"`)
}

func TestPongOverWebsocket(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.exec(t, term, "pong")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<canvas")
	assert.Contains(t, body, "achievement unlocked: procrastinator")
	assert.Contains(t, body, " disabled")
	gameEntry := lastEntryID(t, term)

	assert.Equal(t, http.StatusConflict, ts.exec(t, term, "help").Code)

	srv := httptest.NewServer(ts.Handler())
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/terminal/pong/" + term.id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first frameMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "frame", first.Type)
	assert.Len(t, first.Ops, 5)
	assert.Equal(t, "playing", first.Status)

	require.NoError(t, conn.WriteJSON(keyMessage{Type: "down", Key: "Escape"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg frameMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "exit" {
			assert.Equal(t, gameEntry, msg.Entry)
			break
		}
	}

	assert.Equal(t, shell.AppNone, term.shell.ActiveApp())
	w = ts.do(t, http.MethodGet, "/terminal/entries/"+gameEntry, nil, sessionHeader(term))
	assert.Contains(t, w.Body.String(), "exited pong")
	assert.NotContains(t, w.Body.String(), "<canvas")
}

func TestPongSocketDropSettlesEntry(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.exec(t, term, "pong")
	require.Equal(t, http.StatusOK, w.Code)
	gameEntry := lastEntryID(t, term)
	assert.Contains(t, w.Body.String(), `data-entry="`+gameEntry+`"`)

	srv := httptest.NewServer(ts.Handler())
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/terminal/pong/" + term.id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	var first frameMessage
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		return term.shell.ActiveApp() == shell.AppNone
	}, 2*time.Second, 10*time.Millisecond)

	w = ts.do(t, http.MethodGet, "/terminal/entries/"+gameEntry, nil, sessionHeader(term))
	assert.Contains(t, w.Body.String(), "exited pong")
	assert.NotContains(t, w.Body.String(), "<canvas")
	assert.Equal(t, http.StatusOK, ts.exec(t, term, "whoami").Code)
}

func TestPongWithoutGame(t *testing.T) {
	ts := newTestServer(t)
	term := ts.sessions.create()

	w := ts.do(t, http.MethodGet, "/terminal/pong/"+term.id, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(t, http.MethodGet, "/terminal/pong/unknown", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionsCloseEvicted(t *testing.T) {
	ts := newTestServer(t)
	s := newSessions(1, time.Minute, ts.sessions.opts, ts.log)

	first := s.create()
	second := s.create()

	_, ok := s.get(first.id)
	assert.False(t, ok)
	_, err := first.shell.Execute("about")
	assert.ErrorIs(t, err, shell.ErrClosed)

	s.close()
	_, err = second.shell.Execute("about")
	assert.ErrorIs(t, err, shell.ErrClosed)
}
