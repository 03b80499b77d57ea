package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/hitster/internal/deck"
	"github.com/Seednode/hitster/internal/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *backend) {
	t.Helper()

	b := newTestBackend(t)
	errs := make(chan error, 64)

	srv := httptest.NewServer(newRouter(&Config{}, b, errs))
	t.Cleanup(srv.Close)

	return srv, b
}

func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, []byte) {
	t.Helper()

	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func TestRedirects(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := get(t, noRedirect(), srv.URL+"/")
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/hitster", resp.Header.Get("Location"))

	resp, _ = get(t, noRedirect(), srv.URL+"/hitster")
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Regexp(t, regexp.MustCompile(`^/hitster/[1-9][0-9]{5}$`), resp.Header.Get("Location"))
}

func TestIndexSetsPlayerCookie(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, http.DefaultClient, srv.URL+"/hitster/123456")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "<title>Hitster</title>")

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == playerCookieName {
			found = true
			assert.Len(t, c.Value, 32)
		}
	}
	assert.True(t, found)
}

func TestAssets(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, http.DefaultClient, srv.URL+"/assets/hitster/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/javascript")
	assert.NotEmpty(t, body)

	resp, _ = get(t, http.DefaultClient, srv.URL+"/assets/hitster/app.css")
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")

	resp, _ = get(t, http.DefaultClient, srv.URL+"/assets/hitster/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndVersion(t *testing.T) {
	srv, _ := newTestServer(t)

	_, body := get(t, http.DefaultClient, srv.URL+"/healthz")
	assert.Equal(t, "Ok\n", string(body))

	_, body = get(t, http.DefaultClient, srv.URL+"/version")
	assert.Equal(t, "hitster v"+releaseVersion+"\n", string(body))

	resp, _ := get(t, http.DefaultClient, srv.URL+"/robots.txt")
	assert.Equal(t, "default-src 'self'", resp.Header.Get("Content-Security-Policy"))
}

func TestQR(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, http.DefaultClient, srv.URL+"/hitster/42/qr?genres=rock,pop")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "\x89PNG"))
}

func TestShareText(t *testing.T) {
	assert.Equal(t, "hitster:000042|pop,rock", shareText("42", deck.SeedConfig{Genres: []string{"rock", "pop"}}))
	assert.Equal(t, "hitster:123456|", shareText("123456", deck.SeedConfig{}))
}

func TestDeckListing(t *testing.T) {
	srv, b := newTestServer(t)

	resp, body := get(t, http.DefaultClient, srv.URL+"/hitster/42/deck?genres=rock,pop")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []DeckEntry
	require.NoError(t, json.Unmarshal(body, &entries))

	want := deck.Build("42", deck.SeedConfig{Genres: []string{"pop", "rock"}}, b.catalog)
	require.Len(t, entries, len(want))
	for i, e := range entries {
		assert.Equal(t, i, e.Index)
		assert.Equal(t, want[i].ID, e.ID)
	}
}

type serverMessage struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Genres  []string `json:"genres"`
	session.Snapshot
}

func dial(t *testing.T, srv *httptest.Server, code, role, player string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/hitster/" + code + "/ws?role=" + role
	header := http.Header{}
	header.Set("Cookie", playerCookieName+"="+player)

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	return conn
}

// next reads until a message matches, failing after a short wait.
func next(t *testing.T, conn *websocket.Conn, match func(serverMessage) bool) serverMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg serverMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func ofType(typ string) func(serverMessage) bool {
	return func(m serverMessage) bool { return m.Type == typ }
}

func TestSocket_GameAndDJStayAligned(t *testing.T) {
	srv, b := newTestServer(t)

	game := dial(t, srv, "111111", "game", "alice")
	hello := next(t, game, ofType("catalog"))
	assert.Equal(t, b.catalog.Genres(), hello.Genres)
	assert.False(t, next(t, game, ofType("state")).Active)

	require.NoError(t, game.WriteJSON(ClientMessage{Type: "start", Genres: []string{"Rock", "pop"}, Players: 2}))
	st := next(t, game, ofType("state"))
	require.True(t, st.Active)
	assert.Equal(t, 20, st.Total)
	assert.Equal(t, []string{"pop", "rock"}, st.Config.Genres)
	assert.Nil(t, st.Card, "the game screen card starts face down")

	dj := dial(t, srv, "111111", "dj", "alice")
	next(t, dj, ofType("catalog"))
	require.NoError(t, dj.WriteJSON(ClientMessage{Type: "start", Genres: []string{"pop", "rock"}, Players: 2}))
	st = next(t, dj, func(m serverMessage) bool { return m.Type == "state" && m.Active })
	require.NotNil(t, st.Card)
	require.NotNil(t, st.Links)

	require.NoError(t, dj.WriteJSON(ClientMessage{Type: "step", Delta: 3, Rotate: true}))
	st = next(t, game, func(m serverMessage) bool { return m.Type == "state" && m.Index == 3 })
	assert.Equal(t, 2, st.CurrentPlayer)
	assert.Nil(t, st.Card)

	require.NoError(t, game.WriteJSON(ClientMessage{Type: "reveal"}))
	st = next(t, game, func(m serverMessage) bool { return m.Type == "state" && m.Reveal })
	want := deck.Build("111111", deck.SeedConfig{Genres: []string{"pop", "rock"}}, b.catalog)[3]
	require.NotNil(t, st.Card)
	assert.Equal(t, want, *st.Card)

	require.NoError(t, dj.WriteJSON(ClientMessage{Type: "reveal"}))
	errMsg := next(t, dj, ofType("error"))
	assert.Equal(t, session.ErrNotGameRole.Error(), errMsg.Message)

	require.NoError(t, game.WriteJSON(ClientMessage{Type: "change", Index: 10}))
	st = next(t, dj, func(m serverMessage) bool { return m.Type == "state" && m.Index == 10 })
	assert.Equal(t, 2, st.CurrentPlayer)
}

func TestSocket_ResumesOnReconnect(t *testing.T) {
	srv, _ := newTestServer(t)

	first := dial(t, srv, "222222", "dj", "bob")
	require.NoError(t, first.WriteJSON(ClientMessage{Type: "start", Players: 4}))
	require.NoError(t, first.WriteJSON(ClientMessage{Type: "change", Index: 6}))
	next(t, first, func(m serverMessage) bool { return m.Type == "state" && m.Index == 6 })
	first.Close()

	again := dial(t, srv, "222222", "dj", "bob")
	st := next(t, again, ofType("state"))
	assert.True(t, st.Active)
	assert.Equal(t, 6, st.Index)
	assert.Equal(t, 4, st.PlayerCount)

	other := dial(t, srv, "333333", "dj", "bob")
	st = next(t, other, ofType("state"))
	assert.False(t, st.Active, "a session for another code is not resumed")
}

func TestSocket_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/hitster/111111/ws?role=host"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	conn := dial(t, srv, "111111", "game", "carol")
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "step", Delta: 1}))
	assert.Equal(t, session.ErrNoSession.Error(), next(t, conn, ofType("error")).Message)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "dance"}))
	assert.Contains(t, next(t, conn, ofType("error")).Message, `unknown message type "dance"`)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "start", Players: 2}))
	next(t, conn, func(m serverMessage) bool { return m.Type == "state" && m.Active })
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "start", Players: 2}))
	assert.Equal(t, session.ErrSessionActive.Error(), next(t, conn, ofType("error")).Message)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "leave"}))
	next(t, conn, func(m serverMessage) bool { return m.Type == "state" && !m.Active })
}

func TestStateFor(t *testing.T) {
	card := &deck.Build("1", deck.SeedConfig{}, newTestBackend(t).catalog)[0]

	s := session.Snapshot{Active: true, Card: card}
	s.Role = session.RoleGame
	assert.Nil(t, stateFor(s).Card)

	s.Reveal = true
	assert.NotNil(t, stateFor(s).Card)

	s.Role = session.RoleDJ
	s.Reveal = false
	assert.NotNil(t, stateFor(s).Card)
	assert.Equal(t, "state", stateFor(s).Type)
}
