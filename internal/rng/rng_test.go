package rng

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashString(t *testing.T) {
	cases := []struct {
		in   string
		want uint32
	}{
		{in: "", want: 2166136261},
		{in: "a", want: 3826002220},
		{in: "000042|pop,rock", want: 3578229021},
		{in: "123456|rock", want: 2826493011},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q", tc.in), func(t *testing.T) {
			assert.Equal(t, tc.want, HashString(tc.in))
		})
	}
}

func TestSource_GoldenSequences(t *testing.T) {
	cases := []struct {
		name string
		src  *Source
		want []uint32
	}{
		{
			name: "string seed",
			src:  NewString("000042|pop,rock"),
			want: []uint32{2894709647, 3509085897, 76810363, 3313221092},
		},
		{
			name: "zero seed uses fallback",
			src:  New(0),
			want: []uint32{1144304738, 1051167261, 324779846, 1690409980},
		},
		{
			name: "seed one",
			src:  New(1),
			want: []uint32{63, 16110961, 3781906298, 184440280},
		},
		{
			name: "max seed",
			src:  New(4294967295),
			want: []uint32{142530043, 2583996127, 2540948558, 3659663528},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := make([]uint32, len(tc.want))
			for i := range got {
				got[i] = tc.src.Uint32()
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSource_ZeroSeedMatchesFallback(t *testing.T) {
	a, b := New(0), New(fallbackSeed)
	for range 16 {
		require.Equal(t, a.Uint32(), b.Uint32())
	}
}

func TestSource_Deterministic(t *testing.T) {
	for _, seed := range []string{"", "x", "999999|funk,soul", "ünïcødé"} {
		a, b := NewString(seed), NewString(seed)
		for range 100 {
			require.Equal(t, a.Float64(), b.Float64(), "seed %q", seed)
		}
	}
}

func TestSource_Float64Range(t *testing.T) {
	src := NewString("range")
	for range 10000 {
		f := src.Float64()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
	}
}

func TestShuffle_Golden(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	assert.Equal(t, []int{4, 6, 1, 5, 8, 2, 9, 0, 7, 3}, ShuffleString(items, "123456|rock"))
	assert.Equal(t, []int{6, 5, 4, 2, 8, 7, 1, 9, 3, 0}, Shuffle(items, New(7)))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, items, "input must not be modified")
}

func TestShuffle_IsPermutation(t *testing.T) {
	for n := range 40 {
		items := make([]string, n)
		for i := range items {
			items[i] = fmt.Sprintf("card-%02d", i%7)
		}

		got := ShuffleString(items, fmt.Sprintf("seed-%d", n))
		require.Len(t, got, n)

		require.ElementsMatch(t, items, got)
	}
}

func TestShuffle_Empty(t *testing.T) {
	assert.Empty(t, ShuffleString([]int(nil), "empty"))
	assert.Equal(t, []int{1}, ShuffleString([]int{1}, "single"))
}
