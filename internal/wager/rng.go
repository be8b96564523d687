package wager

import (
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
)

// Source is the randomness a round draws from.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// Seed initializes the Source of one round.
type Seed [32]byte

// NewSeed generates a seed using crypto/rand.
func NewSeed() (Seed, error) {
	var s Seed
	if _, err := crand.Read(s[:]); err != nil {
		return Seed{}, fmt.Errorf("read random seed: %w", err)
	}
	return s, nil
}

// ParseSeed decodes the hex form produced by Seed.String.
func ParseSeed(raw string) (Seed, error) {
	var s Seed
	b, err := hex.DecodeString(raw)
	if err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if len(b) != len(s) {
		return Seed{}, fmt.Errorf("decode seed: want %d bytes, got %d", len(s), len(b))
	}
	copy(s[:], b)
	return s, nil
}

func (s Seed) String() string {
	return hex.EncodeToString(s[:])
}

// Hash is the hex SHA-256 of the seed, stored on the round's transaction.
func (s Seed) Hash() string {
	sum := sha256.Sum256(s[:])
	return hex.EncodeToString(sum[:])
}

// NewSource returns the PCG source a round plays with. The same seed always
// yields the same draws.
func NewSource(seed Seed) Source {
	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(seed[0:8]),
		binary.LittleEndian.Uint64(seed[8:16]),
	))
}
