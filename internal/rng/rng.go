/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package rng provides the deterministic generator every device uses to
// derive the same deck from the same code. It is not cryptographically
// secure and must not be used where secrecy matters.
//
// The bit operations here are part of the wire contract between devices:
// two implementations that differ in a single shift or constant will
// silently produce different decks for the same code.
package rng

import "unicode/utf16"

const (
	hashOffset uint32 = 2166136261
	hashPrime  uint32 = 16777619

	// fallbackSeed replaces a zero state, which would otherwise degenerate.
	fallbackSeed uint32 = 0x6d2b79f5
)

// HashString reduces s to a 32-bit seed by folding each UTF-16 code unit
// into the accumulator (xor, then multiply).
func HashString(s string) uint32 {
	h := hashOffset
	for _, unit := range utf16.Encode([]rune(s)) {
		h ^= uint32(unit)
		h *= hashPrime
	}
	return h
}

// Source is a 32-bit xorshift-family generator. The zero value is not
// usable; construct one with New or NewString.
type Source struct {
	state uint32
}

// New returns a Source seeded with seed.
func New(seed uint32) *Source {
	if seed == 0 {
		seed = fallbackSeed
	}
	return &Source{state: seed}
}

// NewString returns a Source seeded with HashString(seed).
func NewString(seed string) *Source {
	return New(HashString(seed))
}

// Uint32 advances the generator and returns the next raw output.
func (s *Source) Uint32() uint32 {
	x := s.state
	x = (x ^ (x >> 15)) * (1 | x)
	x ^= x + (x^(x>>7))*(61|x)
	s.state = x
	return x ^ (x >> 14)
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	return float64(s.Uint32()) / 4294967296
}

// Intn returns a value in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to Intn")
	}
	return int(s.Float64() * float64(n))
}

// Shuffle returns a Fisher-Yates permutation of items driven by src.
// The input slice is not modified.
func Shuffle[T any](items []T, src *Source) []T {
	out := make([]T, len(items))
	copy(out, items)

	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// ShuffleString is Shuffle seeded with HashString(seed).
func ShuffleString[T any](items []T, seed string) []T {
	return Shuffle(items, NewString(seed))
}
