package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGenerator mints ULIDs with a shared monotonic entropy source, so ids
// generated in the same millisecond still sort in creation order.
type IDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewIDGenerator() *IDGenerator {
	seed := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &IDGenerator{
		entropy: ulid.Monotonic(seed, 0),
	}
}

// Generate returns a new ULID string.
func (g *IDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// Prefixed returns a new id of the form PREFIX-ULID, e.g. TXN-01J....
func (g *IDGenerator) Prefixed(prefix string) string {
	return fmt.Sprintf("%s-%s", strings.ToUpper(prefix), g.Generate())
}
