// Package idgen produces order identifiers. Uniqueness is finally enforced by
// the store's unique index; generators only need to make collisions rare.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// Generator creates public order numbers.
type Generator interface {
	NewOrderNumber() string
}

// UUIDGenerator derives order numbers from time-ordered UUIDv7 values, so
// numbers sort by creation time.
type UUIDGenerator struct {
	Prefix string
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{Prefix: "ORD-"}
}

// NewOrderNumber returns Prefix + 48-bit millisecond timestamp + 32 random bits,
// hex encoded in upper case.
func (g *UUIDGenerator) NewOrderNumber() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	return g.Prefix + strings.ToUpper(hex[:12]+hex[24:])
}
