/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package deck derives the shared, deterministic card sequence from a code
// and a genre selection. Only the index into a deck is ever exchanged
// between devices, so Build must return the same order everywhere.
package deck

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/Seednode/hitster/internal/catalog"
	"github.com/Seednode/hitster/internal/rng"
)

const (
	// CodeLength is the number of digits in a normalized code.
	CodeLength = 6

	// MinPlayable is the smallest filtered deck used as-is; anything
	// thinner falls back to the whole catalog.
	MinPlayable = 12
)

// NormalizeCode strips non-digits, truncates to six characters and
// left-pads with zeros.
func NormalizeCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == CodeLength {
			break
		}
	}

	digits := b.String()
	return strings.Repeat("0", CodeLength-len(digits)) + digits
}

// GenerateCode returns a random code in 100000..999999.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%d", 100000+n.Int64()), nil
}

// SeedConfig selects which genres a deck is drawn from. Only the set
// matters; use Normalize before comparing or persisting.
type SeedConfig struct {
	Genres []catalog.Genre `json:"genres"`
}

// Normalize returns a copy with genres de-duplicated and sorted.
func (c SeedConfig) Normalize() SeedConfig {
	genres := make([]catalog.Genre, 0, len(c.Genres))
	for _, g := range c.Genres {
		if g == "" || slices.Contains(genres, g) {
			continue
		}
		genres = append(genres, g)
	}
	slices.Sort(genres)
	return SeedConfig{Genres: genres}
}

// Equal reports whether both configs select the same genre set.
func (c SeedConfig) Equal(other SeedConfig) bool {
	return slices.Equal(c.Normalize().Genres, other.Normalize().Genres)
}

// String joins the normalized genres with commas.
func (c SeedConfig) String() string {
	return strings.Join(c.Normalize().Genres, ",")
}

// ParseGenres splits a comma separated list into a normalized config.
func ParseGenres(list string) SeedConfig {
	var genres []catalog.Genre
	for _, g := range strings.Split(list, ",") {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			genres = append(genres, g)
		}
	}
	return SeedConfig{Genres: genres}.Normalize()
}

// Seed returns the seed string for a code and config:
// "<normalized code>|<sorted genres joined by commas>". An empty genre
// selection stands for every genre in the catalog.
func Seed(code string, cfg SeedConfig, cat catalog.Catalog) string {
	return NormalizeCode(code) + "|" + strings.Join(effectiveGenres(cfg, cat), ",")
}

func effectiveGenres(cfg SeedConfig, cat catalog.Catalog) []catalog.Genre {
	genres := cfg.Normalize().Genres
	if len(genres) == 0 {
		return cat.Genres()
	}
	return genres
}

// Build derives the ordered deck for code and cfg from cat.
func Build(code string, cfg SeedConfig, cat catalog.Catalog) []catalog.SongCard {
	genres := effectiveGenres(cfg, cat)

	source := cat.WithGenres(genres)
	if len(source) < MinPlayable {
		source = cat
	}

	return rng.ShuffleString([]catalog.SongCard(source), Seed(code, cfg, cat))
}

// Clamp bounds index to [0, length-1]. An empty deck clamps to 0.
func Clamp(index, length int) int {
	return max(0, min(length-1, index))
}
