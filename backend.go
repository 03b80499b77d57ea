/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Seednode/hitster/internal/catalog"
	"github.com/Seednode/hitster/internal/session"
	"github.com/Seednode/hitster/internal/store"
	"github.com/Seednode/hitster/internal/syncchan"
)

// backend is what every session in this process shares: one catalog, one
// storage origin and one broadcast bus.
type backend struct {
	catalog catalog.Catalog
	store   store.Store
	bus     *syncchan.Bus
	log     *zap.Logger
}

func newBackend(cfg *Config) (*backend, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	st, err := store.NewFile(cfg.storageDir, cfg.logger())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	logf(cfg, "STORE: Sharing sessions through %s", st.Dir())

	return &backend{
		catalog: cat,
		store:   st,
		bus:     syncchan.Acquire(syncchan.DefaultBusName),
		log:     cfg.logger(),
	}, nil
}

// controller returns a new controller persisting under holder's slot.
func (b *backend) controller(holder string) (*session.Controller, error) {
	slot := session.NewSlot(b.store, session.SlotKey(holder), b.log)
	ch := syncchan.New(b.store, b.bus, syncchan.WithLogger(b.log))

	return session.New(b.catalog, slot, ch, session.WithLogger(b.log))
}

func loadCatalog(cfg *Config) (catalog.Catalog, error) {
	cat := catalog.Builtin()

	if cfg.catalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.catalogPath)
		if len(loaded) == 0 {
			if err == nil {
				err = errors.New("no songs")
			}
			return nil, fmt.Errorf("load catalog %s: %w", cfg.catalogPath, err)
		}
		if err != nil {
			cfg.logger().Warn("catalog: skipped invalid entries",
				zap.String("path", cfg.catalogPath),
				zap.Error(err),
			)
		}
		cat = loaded
	}

	if cfg.decade != 0 {
		cat = cat.InDecade(cfg.decade)
		if len(cat) == 0 {
			return nil, fmt.Errorf("catalog has no songs from the %ds", cfg.decade)
		}
	}

	logf(cfg, "CATALOG: %d songs across %d genres", len(cat), len(cat.Genres()))

	return cat, nil
}
