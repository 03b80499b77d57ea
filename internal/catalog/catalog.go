/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package catalog holds the song cards a deck is derived from.
package catalog

import (
	"slices"
)

// Genre is a categorical tag such as "pop" or "r&b".
type Genre = string

// SongCard is immutable once it leaves this package.
type SongCard struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Year       int    `json:"year"`
	Genre      Genre  `json:"genre"`
	TrackID    string `json:"trackId,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Source     string `json:"source"`
}

// Links are the two player deep links emitted for a card.
type Links struct {
	App string `json:"app"`
	Web string `json:"web"`
}

// Links returns the app and web deep links for the card's track.
func (c SongCard) Links() Links {
	id := c.TrackID
	if id == "" {
		id = c.ID
	}
	return Links{
		App: "spotify://track/" + id,
		Web: "https://open.spotify.com/track/" + id,
	}
}

// Catalog is an ordered list of cards with unique IDs. Order matters: the
// shuffle permutes the catalog as given, so every device must hold the same
// catalog in the same order.
type Catalog []SongCard

// Genres returns the sorted, unique genre tags present in c.
func (c Catalog) Genres() []Genre {
	seen := make(map[Genre]bool, len(c))
	out := make([]Genre, 0)
	for _, card := range c {
		if seen[card.Genre] {
			continue
		}
		seen[card.Genre] = true
		out = append(out, card.Genre)
	}
	slices.Sort(out)
	return out
}

// WithGenres returns the cards whose genre is in genres, preserving order.
func (c Catalog) WithGenres(genres []Genre) Catalog {
	out := make(Catalog, 0, len(c))
	for _, card := range c {
		if slices.Contains(genres, card.Genre) {
			out = append(out, card)
		}
	}
	return out
}

// DecadeRange returns the inclusive year range for a decade such as 1980.
// A zero decade means no filter and reports ok=false.
func DecadeRange(decade int) (from, to int, ok bool) {
	if decade == 0 {
		return 0, 0, false
	}
	return decade, decade + 9, true
}

// InDecade returns the cards released in the given decade, preserving order.
// A zero decade returns c unchanged.
func (c Catalog) InDecade(decade int) Catalog {
	from, to, ok := DecadeRange(decade)
	if !ok {
		return c
	}

	out := make(Catalog, 0, len(c))
	for _, card := range c {
		if card.Year >= from && card.Year <= to {
			out = append(out, card)
		}
	}
	return out
}
