/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Seednode/hitster/internal/deck"
	"github.com/Seednode/hitster/internal/store"
)

// Role is the screen a session drives. A session has exactly one.
type Role string

const (
	RoleGame Role = "game"
	RoleDJ   Role = "dj"
)

var ErrInvalidRole = errors.New("invalid role")

// ParseRole accepts "game" or "dj".
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleGame, RoleDJ:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) Valid() bool {
	return r == RoleGame || r == RoleDJ
}

const (
	MinPlayers     = 2
	MaxPlayers     = 8
	DefaultPlayers = 2

	// DefaultSlot is the store key of the session state.
	DefaultSlot = "hitster-session"
)

// SlotKey returns the session key for a holder, e.g. "hitster-session:dj".
func SlotKey(holder string) string {
	if holder == "" {
		return DefaultSlot
	}
	return DefaultSlot + ":" + holder
}

// State is the persisted view of one session.
type State struct {
	Role          Role            `json:"role"`
	Code          string          `json:"cdCode"`
	Index         int             `json:"currentIndex"`
	Reveal        bool            `json:"revealInGameScreen"`
	Config        deck.SeedConfig `json:"deckSeedConfig"`
	CurrentPlayer int             `json:"currentPlayer,omitempty"`
	PlayerCount   int             `json:"playerCount,omitempty"`
}

func clampPlayers(n int) int {
	if n == 0 {
		return DefaultPlayers
	}
	return max(MinPlayers, min(MaxPlayers, n))
}

// normalize fills defaults and canonicalizes the code and genre set. The
// index is left alone; it can only be bounded against a derived deck.
func (s State) normalize() State {
	s.Code = deck.NormalizeCode(s.Code)
	s.Config = s.Config.Normalize()
	s.PlayerCount = clampPlayers(s.PlayerCount)
	if s.CurrentPlayer < 1 || s.CurrentPlayer > s.PlayerCount {
		s.CurrentPlayer = 1
	}
	if s.Role != RoleGame {
		s.Reveal = false
	}
	return s
}

// nextPlayer rotates 1..PlayerCount.
func (s State) nextPlayer() int {
	return (s.CurrentPlayer % s.PlayerCount) + 1
}

// Slot persists a single State under one key.
type Slot struct {
	store store.Store
	key   string
	log   *zap.Logger
}

func NewSlot(st store.Store, key string, logger *zap.Logger) *Slot {
	if key == "" {
		key = DefaultSlot
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Slot{store: st, key: key, log: logger}
}

func (s *Slot) Key() string { return s.key }

// Load returns the persisted state. Missing, unreadable or corrupt state
// all report ok=false.
func (s *Slot) Load() (State, bool) {
	b, err := s.store.Get(s.key)
	if err != nil {
		s.log.Warn("session: read failed", zap.String("key", s.key), zap.Error(err))
		return State{}, false
	}
	if b == nil {
		return State{}, false
	}

	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		s.log.Debug("session: discarding corrupt state", zap.String("key", s.key), zap.Error(err))
		return State{}, false
	}
	if !st.Role.Valid() {
		s.log.Debug("session: discarding state with unknown role", zap.String("key", s.key), zap.String("role", string(st.Role)))
		return State{}, false
	}

	return st.normalize(), true
}

func (s *Slot) Save(st State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.store.Set(s.key, b)
}

func (s *Slot) Clear() error {
	return s.store.Delete(s.key)
}
