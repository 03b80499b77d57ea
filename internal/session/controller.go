/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package session owns one context's view of a game: its role, the shared
// code, the cursor into the derived deck and the local reveal flag. It
// reacts to local actions and to sync messages from peers.
//
// Two devices that change the index at the same time each apply the
// other's update when it arrives; the last one received wins.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Seednode/hitster/internal/catalog"
	"github.com/Seednode/hitster/internal/deck"
	"github.com/Seednode/hitster/internal/syncchan"
)

var (
	ErrNoSession     = errors.New("no active session")
	ErrSessionActive = errors.New("session already active")
	ErrNotGameRole   = errors.New("reveal is only available on the game screen")
	ErrEmptyDeck     = errors.New("catalog produced an empty deck")
)

// Snapshot is a copy of the controller's state for rendering.
type Snapshot struct {
	State
	Active   bool              `json:"active"`
	OriginID string            `json:"originId"`
	Total    int               `json:"total"`
	Card     *catalog.SongCard `json:"card,omitempty"`
	Links    *catalog.Links    `json:"links,omitempty"`
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithOriginID replaces the generated origin tag.
func WithOriginID(id string) Option {
	return func(c *Controller) { c.origin = id }
}

// Controller is safe for concurrent use. Listeners and publishes run
// outside its lock.
type Controller struct {
	catalog catalog.Catalog
	slot    *Slot
	channel *syncchan.Channel
	origin  string
	log     *zap.Logger

	mu       sync.Mutex
	state    *State
	deck     []catalog.SongCard
	listener func(Snapshot)

	unsubscribe func()
}

// New returns a controller in the NoSession state, subscribed to ch when
// ch is non-nil. Call Load or Start to activate it and Close when done.
func New(cat catalog.Catalog, slot *Slot, ch *syncchan.Channel, opts ...Option) (*Controller, error) {
	c := &Controller{
		catalog:     cat,
		slot:        slot,
		channel:     ch,
		origin:      uuid.NewString(),
		log:         zap.NewNop(),
		unsubscribe: func() {},
	}
	for _, opt := range opts {
		opt(c)
	}

	if ch != nil {
		stop, err := ch.Subscribe(func(m syncchan.Message) { c.ReceiveSync(m) })
		if err != nil {
			return nil, err
		}
		c.unsubscribe = stop
	}

	return c, nil
}

// OriginID is the tag this controller stamps on outgoing messages.
func (c *Controller) OriginID() string { return c.origin }

// OnChange registers fn to be called with a snapshot after every change,
// local or remote. It replaces any previous listener.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listener = fn
}

// Close stops listening for sync messages. It does not clear the session.
func (c *Controller) Close() {
	c.unsubscribe()
}

func (c *Controller) snapshotLocked() Snapshot {
	if c.state == nil {
		return Snapshot{OriginID: c.origin}
	}

	snap := Snapshot{
		State:    *c.state,
		Active:   true,
		OriginID: c.origin,
		Total:    len(c.deck),
	}
	snap.Config = deck.SeedConfig{Genres: append([]string(nil), c.state.Config.Genres...)}

	if c.state.Index >= 0 && c.state.Index < len(c.deck) {
		card := c.deck[c.state.Index]
		links := card.Links()
		snap.Card = &card
		snap.Links = &links
	}
	return snap
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// Deck returns a copy of the derived deck, empty when no session is active.
func (c *Controller) Deck() []catalog.SongCard {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]catalog.SongCard(nil), c.deck...)
}

func (c *Controller) persistLocked() {
	if c.slot == nil || c.state == nil {
		return
	}
	if err := c.slot.Save(*c.state); err != nil {
		c.log.Warn("session: persist failed", zap.String("key", c.slot.Key()), zap.Error(err))
	}
}

// commit persists, captures the snapshot and listener, and releases the lock.
func (c *Controller) commitLocked() (Snapshot, func(Snapshot)) {
	c.persistLocked()
	snap := c.snapshotLocked()
	fn := c.listener
	c.mu.Unlock()
	return snap, fn
}

func notify(fn func(Snapshot), snap Snapshot) {
	if fn != nil {
		fn(snap)
	}
}

// Load restores the persisted session, re-deriving the deck and clamping
// the index into it. It reports false when there is nothing usable to
// restore or a session is already active.
func (c *Controller) Load() bool {
	if c.slot == nil {
		return false
	}

	st, ok := c.slot.Load()
	if !ok {
		return false
	}

	d := deck.Build(st.Code, st.Config, c.catalog)
	if len(d) == 0 {
		c.log.Warn("session: persisted session has an empty deck", zap.String("code", st.Code))
		return false
	}

	c.mu.Lock()
	if c.state != nil {
		c.mu.Unlock()
		return false
	}

	if clamped := deck.Clamp(st.Index, len(d)); clamped != st.Index {
		c.log.Debug("session: clamped restored index",
			zap.Int("index", st.Index),
			zap.Int("clamped", clamped),
		)
		st.Index = clamped
	}

	c.state = &st
	c.deck = d

	snap, fn := c.commitLocked()
	notify(fn, snap)
	return true
}

// Start activates a new session at index zero. Nothing is broadcast.
func (c *Controller) Start(role Role, code string, cfg deck.SeedConfig, players int) (Snapshot, error) {
	if !role.Valid() {
		return Snapshot{}, ErrInvalidRole
	}

	st := State{
		Role:          role,
		Code:          code,
		Config:        cfg,
		PlayerCount:   players,
		CurrentPlayer: 1,
	}.normalize()

	d := deck.Build(st.Code, st.Config, c.catalog)
	if len(d) == 0 {
		return Snapshot{}, ErrEmptyDeck
	}

	c.mu.Lock()
	if c.state != nil {
		c.mu.Unlock()
		return Snapshot{}, ErrSessionActive
	}

	c.state = &st
	c.deck = d

	snap, fn := c.commitLocked()
	notify(fn, snap)
	return snap, nil
}

// ChangeIndex moves to index, clamped into the deck, hides any reveal,
// optionally rotates the current player, persists and broadcasts.
func (c *Controller) ChangeIndex(index int, rotatePlayer bool) (Snapshot, error) {
	return c.change(func(int) int { return index }, rotatePlayer)
}

// Step moves by delta from the current index. See ChangeIndex.
func (c *Controller) Step(delta int, rotatePlayer bool) (Snapshot, error) {
	return c.change(func(cur int) int { return cur + delta }, rotatePlayer)
}

func (c *Controller) change(target func(cur int) int, rotatePlayer bool) (Snapshot, error) {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}

	st := c.state
	st.Index = deck.Clamp(target(st.Index), len(c.deck))
	st.Reveal = false
	if rotatePlayer {
		st.CurrentPlayer = st.nextPlayer()
	}

	msg := syncchan.NewMessage(c.origin, st.Code, st.Index, st.CurrentPlayer, st.Config)

	snap, fn := c.commitLocked()

	if c.channel != nil {
		if err := c.channel.Publish(msg); err != nil {
			c.log.Warn("session: publish failed", zap.Error(err))
		}
	}

	notify(fn, snap)
	return snap, nil
}

// ToggleReveal flips the reveal flag on a game screen. It is never broadcast.
func (c *Controller) ToggleReveal() (Snapshot, error) {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	if c.state.Role != RoleGame {
		c.mu.Unlock()
		return Snapshot{}, ErrNotGameRole
	}

	c.state.Reveal = !c.state.Reveal

	snap, fn := c.commitLocked()
	notify(fn, snap)
	return snap, nil
}

// ReceiveSync applies a peer's position change. Messages carrying this
// controller's own origin, or a different code or genre set, are ignored.
// It reports whether the message was applied.
func (c *Controller) ReceiveSync(m syncchan.Message) bool {
	if m.OriginID == c.origin {
		return false
	}

	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return false
	}

	st := c.state
	if deck.NormalizeCode(m.Code) != st.Code || !m.Config.Equal(st.Config) {
		c.mu.Unlock()
		c.log.Debug("session: ignoring sync for another deck",
			zap.String("code", m.Code),
			zap.String("genres", m.Config.String()),
		)
		return false
	}

	st.Index = deck.Clamp(m.Index, len(c.deck))
	st.Reveal = false
	if m.CurrentPlayer >= 1 && m.CurrentPlayer <= st.PlayerCount {
		st.CurrentPlayer = m.CurrentPlayer
	}

	snap, fn := c.commitLocked()
	notify(fn, snap)
	return true
}

// CatchUp applies the most recent persisted sync message, if it belongs
// to this session's deck.
func (c *Controller) CatchUp() bool {
	if c.channel == nil {
		return false
	}
	m, ok := c.channel.Latest()
	if !ok {
		return false
	}
	return c.ReceiveSync(m)
}

// Leave ends the session and clears its persisted state. Peers are not told.
func (c *Controller) Leave() {
	c.mu.Lock()
	c.state = nil
	c.deck = nil

	if c.slot != nil {
		if err := c.slot.Clear(); err != nil {
			c.log.Warn("session: clear failed", zap.String("key", c.slot.Key()), zap.Error(err))
		}
	}

	snap := c.snapshotLocked()
	fn := c.listener
	c.mu.Unlock()

	notify(fn, snap)
}
