/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	ErrMissingID    = errors.New("missing id")
	ErrMissingTitle = errors.New("missing title")
	ErrMissingGenre = errors.New("missing genre")
	ErrInvalidYear  = errors.New("invalid year")
	ErrDuplicateID  = errors.New("duplicate id")
)

const (
	minYear = 1900
	maxYear = 2100
)

// RawTrack is the loosely typed shape accepted from external sources.
// Year may be a number, a numeric string, or a release date ("1998-05-12").
type RawTrack struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Name       string          `json:"name"`
	Artist     string          `json:"artist"`
	Year       json.RawMessage `json:"year"`
	Released   string          `json:"releaseDate"`
	Genre      string          `json:"genre"`
	TrackID    string          `json:"trackId"`
	PreviewURL string          `json:"previewUrl"`
	ImageURL   string          `json:"imageUrl"`
	Source     string          `json:"source"`
}

// Card validates r and maps it to a SongCard.
func (r RawTrack) Card() (SongCard, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return SongCard{}, ErrMissingID
	}

	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = strings.TrimSpace(r.Name)
	}
	if title == "" {
		return SongCard{}, ErrMissingTitle
	}

	genre := strings.ToLower(strings.TrimSpace(r.Genre))
	if genre == "" {
		return SongCard{}, ErrMissingGenre
	}

	year, err := parseYear(r.Year, r.Released)
	if err != nil {
		return SongCard{}, err
	}

	source := r.Source
	if source == "" {
		source = "external"
	}

	return SongCard{
		ID:         id,
		Title:      title,
		Artist:     strings.TrimSpace(r.Artist),
		Year:       year,
		Genre:      genre,
		TrackID:    strings.TrimSpace(r.TrackID),
		PreviewURL: r.PreviewURL,
		ImageURL:   r.ImageURL,
		Source:     source,
	}, nil
}

func parseYear(raw json.RawMessage, released string) (int, error) {
	var s string

	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		s = released
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidYear, err)
		}
	default:
		s = string(raw)
	}

	s = strings.TrimSpace(s)
	if len(s) > 4 && s[4] == '-' {
		s = s[:4]
	}

	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, s)
	}
	if year < minYear || year > maxYear {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidYear, year)
	}
	return year, nil
}

// Decode reads a JSON array of raw tracks. Entries that fail validation are
// skipped; their errors are joined into the returned error alongside the
// valid cards, so callers may log and continue.
func Decode(r io.Reader) (Catalog, error) {
	var raw []RawTrack
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	out := make(Catalog, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	var errs []error

	for i, track := range raw {
		card, err := track.Card()
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if seen[card.ID] {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i, card.ID, ErrDuplicateID))
			continue
		}
		seen[card.ID] = true
		out = append(out, card)
	}

	return out, errors.Join(errs...)
}

// LoadFile decodes the catalog stored at path.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}
