/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"sync"
)

type watcher struct {
	key string
	fn  func([]byte)
}

// Memory is an in-process Store. Watchers are called synchronously from
// Set, after the store lock is released.
type Memory struct {
	mu       sync.Mutex
	values   map[string][]byte
	watchers map[int]watcher
	nextID   int
}

func NewMemory() *Memory {
	return &Memory{
		values:   make(map[string][]byte),
		watchers: make(map[int]watcher),
	}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	m.values[key] = append([]byte(nil), value...)

	var fns []func([]byte)
	for _, w := range m.watchers {
		if w.key == key {
			fns = append(fns, w.fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(append([]byte(nil), value...))
	}
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func (m *Memory) Watch(key string, fn func([]byte)) (func(), error) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = watcher{key: key, fn: fn}
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.watchers, id)
			m.mu.Unlock()
		})
	}, nil
}

var _ Store = (*Memory)(nil)
