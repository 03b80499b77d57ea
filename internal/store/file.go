/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// File stores one file per key under a directory. Any process pointing at
// the same directory shares the store, and Watch observes writes made by
// all of them.
type File struct {
	dir string
	log *zap.Logger
	mu  sync.Mutex

	wmu       sync.Mutex
	watcher   *fsnotify.Watcher
	watchDone chan struct{}
	watches   map[uint64]fileWatch
	nextID    uint64

	// fire is held while callbacks run, so unwatch can wait for them.
	fire sync.Mutex
}

// NewFile returns a File rooted at dir, creating it if needed.
func NewFile(dir string, logger *zap.Logger) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{dir: dir, log: logger, watches: make(map[uint64]fileWatch)}, nil
}

// Dir returns the root directory.
func (f *File) Dir() string { return f.dir }

func fileName(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + ".json"
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, fileName(key))
}

func (f *File) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return readFile(f.path(key))
}

func (f *File) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return writeFile(f.path(key), value, 0o600)
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type fileWatch struct {
	name string
	key  string
	fn   func([]byte)
}

// Watch delivers the contents of key's file on every create or write,
// from a background goroutine. All watches on a File share one fsnotify
// watcher, opened on the first Watch and closed when the last one stops.
func (f *File) Watch(key string, fn func([]byte)) (func(), error) {
	f.wmu.Lock()
	if f.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			f.wmu.Unlock()
			return nil, err
		}
		if err := w.Add(f.dir); err != nil {
			_ = w.Close()
			f.wmu.Unlock()
			return nil, err
		}

		f.watcher = w
		f.watchDone = make(chan struct{})
		go f.dispatch(w, f.watchDone)
	}

	id := f.nextID
	f.nextID++
	f.watches[id] = fileWatch{name: fileName(key), key: key, fn: fn}
	f.wmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { f.unwatch(id) })
	}, nil
}

// Watchers returns the number of live watches.
func (f *File) Watchers() int {
	f.wmu.Lock()
	defer f.wmu.Unlock()

	return len(f.watches)
}

func (f *File) unwatch(id uint64) {
	f.wmu.Lock()
	delete(f.watches, id)

	var (
		w    *fsnotify.Watcher
		done chan struct{}
	)
	if len(f.watches) == 0 && f.watcher != nil {
		w, done = f.watcher, f.watchDone
		f.watcher, f.watchDone = nil, nil
	}
	f.wmu.Unlock()

	if w != nil {
		_ = w.Close()
		<-done
		return
	}

	// Wait out a delivery that may have picked up fn before it was removed.
	f.fire.Lock()
	f.fire.Unlock()
}

func (f *File) dispatch(w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create | fsnotify.Write) {
				continue
			}
			f.deliver(ev.Name)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.log.Warn("store: watcher error", zap.String("dir", f.dir), zap.Error(err))
		}
	}
}

func (f *File) deliver(path string) {
	name := filepath.Base(path)

	f.fire.Lock()
	defer f.fire.Unlock()

	f.wmu.Lock()
	var targets []fileWatch
	for _, w := range f.watches {
		if w.name == name {
			targets = append(targets, w)
		}
	}
	f.wmu.Unlock()

	if len(targets) == 0 {
		return
	}

	b, err := readFile(path)
	if err != nil {
		f.log.Debug("store: read after event failed", zap.String("key", targets[0].key), zap.Error(err))
		return
	}
	if b == nil {
		return
	}

	for _, w := range targets {
		w.fn(append([]byte(nil), b...))
	}
}

// readFile reads the file at path; a missing file is not an error.
func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// writeFile writes bytes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmpFile, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := tmpFile.Name()

	defer func() { _ = os.Remove(tmp) }()

	if _, err := tmpFile.Write(b); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

var _ Store = (*File)(nil)
