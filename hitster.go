// Hitster web host
//
// Each browser view drives one session: a game screen, which shows the
// current card face down until revealed, or a DJ view, which shows the song
// to play. Views that share a code and genre selection stay on the same
// card; moving in one moves the other.
//
// Routes:
//   - $path                  → redirects to a new random 6-digit code
//   - $path/:code            → HTML client
//   - $path/:code/ws?role=   → WebSocket driving one session for that code
//   - $path/:code/qr         → PNG QR code of the code and genres
//   - $path/:code/deck       → JSON listing of the deck, for manual alignment

package main

import (
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/Seednode/hitster/internal/catalog"
	"github.com/Seednode/hitster/internal/deck"
	"github.com/Seednode/hitster/internal/session"
)

// Messages coming from clients
type ClientMessage struct {
	Type    string   `json:"type"`              // "start", "change", "step", "reveal", "leave"
	Genres  []string `json:"genres,omitempty"`  // start
	Players int      `json:"players,omitempty"` // start
	Index   int      `json:"index,omitempty"`   // change
	Delta   int      `json:"delta,omitempty"`   // step
	Rotate  bool     `json:"rotate,omitempty"`  // change / step
}

// CatalogMessage is sent once on connect so the client can offer genres.
type CatalogMessage struct {
	Type   string   `json:"type"` // "catalog"
	Code   string   `json:"code"`
	Role   string   `json:"role"`
	Genres []string `json:"genres"`
}

// StateMessage carries the session after every change, local or remote.
type StateMessage struct {
	Type string `json:"type"` // "state"
	session.Snapshot
}

type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// DeckEntry is one line of the deck listing.
type DeckEntry struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Year   int    `json:"year"`
	Genre  string `json:"genre"`
}

const (
	sendBuffer   = 8
	readLimit    = 4096
	writeTimeout = 5 * time.Second
)

// stateFor hides the face-down card from a game screen.
func stateFor(s session.Snapshot) StateMessage {
	if s.Role == session.RoleGame && !s.Reveal {
		s.Card = nil
		s.Links = nil
	}
	return StateMessage{Type: "state", Snapshot: s}
}

type Client struct {
	conn *websocket.Conn
	send chan any
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan any, sendBuffer),
		done: make(chan struct{}),
	}
}

// push queues msg without blocking. A client that cannot keep up is dropped.
func (c *Client) push(msg any) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.close()
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) writePump() {
	defer c.close()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump(ctl *session.Controller, role session.Role, code string) {
	defer c.close()

	c.conn.SetReadLimit(readLimit)

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		var err error
		switch msg.Type {
		case "start":
			cfg := deck.ParseGenres(strings.Join(msg.Genres, ","))
			if _, err = ctl.Start(role, code, cfg, msg.Players); err == nil {
				ctl.CatchUp()
			}
		case "change":
			_, err = ctl.ChangeIndex(msg.Index, msg.Rotate)
		case "step":
			_, err = ctl.Step(msg.Delta, msg.Rotate)
		case "reveal":
			_, err = ctl.ToggleReveal()
		case "leave":
			ctl.Leave()
		default:
			err = fmt.Errorf("unknown message type %q", msg.Type)
		}

		if err != nil {
			c.push(ErrorMessage{Type: "error", Message: err.Error()})
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const playerCookieName = "hitster_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id, nil
}

// WebSocket handler binding one connection to one session controller.
func serveSocket(cfg *Config, b *backend) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := deck.NormalizeCode(ps.ByName("code"))

		role, err := session.ParseRole(r.URL.Query().Get("role"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		playerID, err := getOrSetPlayerID(w, r)
		if err != nil {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		ctl, err := b.controller(playerID + ":" + string(role))
		if err != nil {
			http.Error(w, "unable to open session", http.StatusInternalServerError)
			return
		}
		defer ctl.Close()

		// The cookie, if just assigned, rides on the upgrade response.
		conn, err := upgrader.Upgrade(w, r, w.Header())
		if err != nil {
			b.log.Debug("hitster: upgrade failed", zap.Error(err))
			return
		}

		client := newClient(conn)

		if ctl.Load() && ctl.Snapshot().Code != code {
			ctl.Leave()
		}
		ctl.CatchUp()

		client.push(CatalogMessage{
			Type:   "catalog",
			Code:   code,
			Role:   string(role),
			Genres: b.catalog.Genres(),
		})

		ctl.OnChange(func(s session.Snapshot) { client.push(stateFor(s)) })
		client.push(stateFor(ctl.Snapshot()))

		logf(cfg, "HITSTER: %s joined %s as %s", realIP(r), code, role)

		go client.writePump()
		client.readPump(ctl, role, code)

		logf(cfg, "HITSTER: %s left %s", realIP(r), code)
	}
}

// shareText is what the QR code carries: enough for another device to join
// the same deck.
func shareText(code string, cfg deck.SeedConfig) string {
	return "hitster:" + deck.NormalizeCode(code) + "|" + cfg.Normalize().String()
}

// QR handler: generates a PNG QR code sharing the code and genres.
func qrHandler(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		text := shareText(ps.ByName("code"), deck.ParseGenres(r.URL.Query().Get("genres")))

		const qrSize = 320
		png, err := qrcode.Encode(text, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

func deckEntries(cards []catalog.SongCard) []DeckEntry {
	out := make([]DeckEntry, len(cards))
	for i, c := range cards {
		out[i] = DeckEntry{
			Index:  i,
			ID:     c.ID,
			Title:  c.Title,
			Artist: c.Artist,
			Year:   c.Year,
			Genre:  c.Genre,
		}
	}
	return out
}

func deckHandler(cfg *Config, b *backend, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		cards := deck.Build(ps.ByName("code"), deck.ParseGenres(r.URL.Query().Get("genres")), b.catalog)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(deckEntries(cards)); err != nil {
			errs <- err
		}
	}
}

//go:embed hitster/index.html
var indexHTML []byte

func getIndexHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		if _, err := getOrSetPlayerID(w, r); err != nil {
			cfg.logger().Warn("hitster: unable to assign player id", zap.Error(err))
		}

		_, _ = w.Write(indexHTML)
	}
}

// redirectNewGame handles GET /path by generating a new code and
// redirecting to /path/:code.
func redirectNewGame(cfg *Config, path string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		code, err := deck.GenerateCode()
		if err != nil {
			http.Error(w, "unable to generate code", http.StatusInternalServerError)
			return
		}

		logf(cfg, "HITSTER: Created code %s", code)
		http.Redirect(w, r, cfg.prefix+path+"/"+code, http.StatusTemporaryRedirect)
	}
}

func registerHitster(cfg *Config, b *backend, path string, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path))

	mux.GET(cfg.prefix+path+"/:code", getIndexHandler(cfg))

	mux.GET(cfg.prefix+path+"/:code/ws", serveSocket(cfg, b))

	mux.GET(cfg.prefix+path+"/:code/qr", qrHandler(cfg, errs))

	mux.GET(cfg.prefix+path+"/:code/deck", deckHandler(cfg, b, errs))
}
