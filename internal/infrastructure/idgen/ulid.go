// Package idgen generates transaction ids.
package idgen

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates prefixed, time-ordered ULIDs. Safe for concurrent
// use.
type ULIDGenerator struct {
	prefix  string
	mu      sync.Mutex
	entropy io.Reader
}

// NewULIDGenerator creates a generator whose ids start with prefix.
func NewULIDGenerator(prefix string) *ULIDGenerator {
	return &ULIDGenerator{
		prefix:  prefix,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate returns a new id.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.prefix + ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}
