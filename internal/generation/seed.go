// Package generation builds product descriptions with a text-generation
// service, seeded from randomized template fragments.
package generation

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

var adjectives = []string{
	"premium", "high-quality", "elegant", "innovative", "versatile",
	"durable", "stylish", "modern", "classic", "exceptional",
}

var benefits = []string{
	"perfect for everyday use",
	"designed to last",
	"brings comfort to your life",
	"enhances your lifestyle",
	"exceeds expectations",
	"sets new standards",
	"delivers outstanding performance",
	"brings joy to your daily routine",
}

var features = []string{
	"carefully crafted",
	"made with premium materials",
	"thoughtfully designed",
	"precision-engineered",
	"expertly manufactured",
}

// Rand is the uniform source the seed fragments are drawn from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Seed composes the seed sentence for title from one draw per fragment list.
func Seed(r Rand, title string) string {
	adjective := adjectives[r.IntN(len(adjectives))]
	benefit := benefits[r.IntN(len(benefits))]
	feature := features[r.IntN(len(features))]
	return fmt.Sprintf("This %s %s is %s. It is %s.", adjective, title, benefit, feature)
}

// globalRand draws from the process-wide unseeded generator, which is safe
// for concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// lockedRand serializes draws from a source that is not goroutine safe.
type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
