/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package syncchan

import (
	"sync"
)

// Bus is a named, process-wide broadcast primitive. Every subscriber,
// including the poster's own, receives each post synchronously, in
// subscription order. Handlers must not block.
type Bus struct {
	name string

	mu     sync.Mutex
	subs   map[int]func([]byte)
	order  []int
	nextID int
}

// NewBus returns a Bus that is not registered process-wide.
func NewBus(name string) *Bus {
	return &Bus{
		name: name,
		subs: make(map[int]func([]byte)),
	}
}

var (
	busesMu sync.Mutex
	buses   map[string]*Bus
)

// Acquire returns the process-wide Bus for name, creating it on first use.
// The same Bus is safe to share across every session in the process.
func Acquire(name string) *Bus {
	busesMu.Lock()
	defer busesMu.Unlock()

	if buses == nil {
		buses = make(map[string]*Bus)
	}
	if b, ok := buses[name]; ok {
		return b
	}

	b := NewBus(name)
	buses[name] = b
	return b
}

func (b *Bus) Name() string { return b.name }

// Post delivers data to every current subscriber.
func (b *Bus) Post(data []byte) {
	b.mu.Lock()
	fns := make([]func([]byte), 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(append([]byte(nil), data...))
	}
}

// Subscribe registers fn. The returned function removes it and may be
// called more than once.
func (b *Bus) Subscribe(fn func([]byte)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			delete(b.subs, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}
