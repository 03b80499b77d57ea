/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package store is the key-value contract session state and sync
// notifications are persisted through. Values are opaque bytes (JSON by
// convention). A store is shared by every session in the same origin.
package store

// Store persists values by key and notifies watchers of changes.
//
// Get returns (nil, nil) for a missing key. Watch calls fn with the new
// value each time key is written, from any writer sharing the store; the
// returned function stops the watch and is safe to call more than once.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Watch(key string, fn func(value []byte)) (unwatch func(), err error)
}
