package wager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlackjackValue(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		want  int
	}{
		{name: "two aces and nine", cards: hand("A", "A", "9"), want: 21},
		{name: "natural", cards: hand("A", "K"), want: 21},
		{name: "ace reduced", cards: hand("A", "9", "5"), want: 15},
		{name: "two aces", cards: hand("A", "A"), want: 12},
		{name: "faces", cards: hand("J", "Q"), want: 20},
		{name: "bust", cards: hand("10", "6", "K"), want: 26},
		{name: "hidden card ignored", cards: []Card{{Rank: "10"}, {Hidden: true}}, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BlackjackValue(tt.cards))
		})
	}
}

func TestBaccaratValue(t *testing.T) {
	assert.Equal(t, 0, BaccaratValue(hand("K", "10")))
	assert.Equal(t, 1, BaccaratValue(hand("A", "Q")))
	assert.Equal(t, 9, BaccaratValue(hand("9")))
	assert.Equal(t, 3, BaccaratValue(hand("7", "6")))
	assert.Equal(t, 5, BaccaratValue(hand("8", "8", "9")))
}

func TestDrawCardUsesSuitThenRank(t *testing.T) {
	src := &scriptedSource{ints: []int{1, 12}}
	assert.Equal(t, Card{Suit: "♥", Rank: "K", Color: "red"}, drawCard(src))
}

func TestSeedSourceIsDeterministic(t *testing.T) {
	seed, err := NewSeed()
	assert.NoError(t, err)

	a, b := NewSource(seed), NewSource(seed)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.IntN(37), b.IntN(37))
	}

	parsed, err := ParseSeed(seed.String())
	assert.NoError(t, err)
	assert.Equal(t, seed, parsed)
	assert.Len(t, seed.Hash(), 64)

	_, err = ParseSeed("abcd")
	assert.Error(t, err)
}
