package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Generator mints the IDs new items carry before the script backend echoes
// them back. Implementations must be safe for concurrent use.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator issues 32-character hex IDs from crypto/rand.
type RandomGenerator struct{}

var _ Generator = (*RandomGenerator)(nil)

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	var buf [16]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}
