/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package syncchan

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Seednode/hitster/internal/deck"
)

// ProtocolVersion tags every message; receivers drop other versions.
const ProtocolVersion = 1

var (
	ErrMalformed       = errors.New("malformed sync message")
	ErrVersionMismatch = errors.New("sync protocol version mismatch")
)

// Message announces a position change. It is a notification, not
// authoritative state: receivers may ignore it.
type Message struct {
	Version       int             `json:"v"`
	OriginID      string          `json:"sourceId"`
	Code          string          `json:"cdCode"`
	Index         int             `json:"index"`
	CurrentPlayer int             `json:"currentPlayer,omitempty"`
	Config        deck.SeedConfig `json:"deckSeedConfig"`
	SentAt        int64           `json:"sentAt"`
}

// NewMessage returns a Message stamped with the current protocol version
// and time.
func NewMessage(origin, code string, index, currentPlayer int, cfg deck.SeedConfig) Message {
	return Message{
		Version:       ProtocolVersion,
		OriginID:      origin,
		Code:          deck.NormalizeCode(code),
		Index:         index,
		CurrentPlayer: currentPlayer,
		Config:        cfg.Normalize(),
		SentAt:        time.Now().UnixMilli(),
	}
}

// Sent returns SentAt as a time.
func (m Message) Sent() time.Time {
	return time.UnixMilli(m.SentAt)
}

// Encode marshals m as JSON.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses and validates a message.
func Decode(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m.Version != ProtocolVersion {
		return Message{}, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, m.Version, ProtocolVersion)
	}
	if m.OriginID == "" || m.Code == "" {
		return Message{}, fmt.Errorf("%w: missing origin or code", ErrMalformed)
	}
	return m, nil
}
