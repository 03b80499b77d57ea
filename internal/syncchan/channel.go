/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package syncchan broadcasts position changes between sessions sharing an
// origin. Publish writes the message to a persisted slot and posts it on a
// broadcast bus; subscribers hear from both and must tolerate duplicates.
//
// Delivery is best-effort: no ordering beyond each transport's own, no
// acknowledgement, no retry.
package syncchan

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Seednode/hitster/internal/store"
)

const (
	DefaultSlot    = "hitster-sync"
	DefaultBusName = "hitster-sync"
)

type Option func(*Channel)

// WithSlot overrides the store key the latest message is written to.
func WithSlot(key string) Option {
	return func(c *Channel) { c.slot = key }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Channel) {
		if logger != nil {
			c.log = logger
		}
	}
}

// Channel publishes over a store slot and a bus. Either may be nil, in
// which case that transport is skipped.
type Channel struct {
	store store.Store
	bus   *Bus
	slot  string
	log   *zap.Logger
}

func New(st store.Store, bus *Bus, opts ...Option) *Channel {
	c := &Channel{
		store: st,
		bus:   bus,
		slot:  DefaultSlot,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Publish sends m over both transports. A failed slot write does not stop
// the bus post; the error is returned for logging only.
func (c *Channel) Publish(m Message) error {
	b, err := Encode(m)
	if err != nil {
		return fmt.Errorf("encode sync message: %w", err)
	}

	var errs []error
	if c.store != nil {
		if err := c.store.Set(c.slot, b); err != nil {
			errs = append(errs, fmt.Errorf("write sync slot: %w", err))
		}
	}
	if c.bus != nil {
		c.bus.Post(b)
	}

	return errors.Join(errs...)
}

// Subscribe calls fn for every well-formed message from either transport.
// Malformed payloads are logged and dropped. The returned function is
// idempotent.
func (c *Channel) Subscribe(fn func(Message)) (func(), error) {
	deliver := func(transport string) func([]byte) {
		return func(b []byte) {
			m, err := Decode(b)
			if err != nil {
				c.log.Debug("sync: dropped payload",
					zap.String("transport", transport),
					zap.Error(err),
				)
				return
			}
			fn(m)
		}
	}

	var stops []func()
	if c.bus != nil {
		stops = append(stops, c.bus.Subscribe(deliver("bus")))
	}
	if c.store != nil {
		unwatch, err := c.store.Watch(c.slot, deliver("storage"))
		if err != nil {
			for _, stop := range stops {
				stop()
			}
			return nil, fmt.Errorf("watch sync slot: %w", err)
		}
		stops = append(stops, unwatch)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, stop := range stops {
				stop()
			}
		})
	}, nil
}

// Latest returns the last message persisted to the slot, if any.
func (c *Channel) Latest() (Message, bool) {
	if c.store == nil {
		return Message{}, false
	}
	b, err := c.store.Get(c.slot)
	if err != nil || b == nil {
		return Message{}, false
	}
	m, err := Decode(b)
	if err != nil {
		return Message{}, false
	}
	return m, true
}
