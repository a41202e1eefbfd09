package types

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// DefaultIDLength is the length of generated container and object ids.
const DefaultIDLength = 8

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// IDGenerator produces short identifiers: the first ceil(n/2) characters
// are random from [0-9a-z], the rest are the low hex digits of the current
// Unix time, zero padded and reversed. Uniqueness is probabilistic.
type IDGenerator struct {
	Length int
	Now    func() time.Time // Defaults to time.Now.
	Intn   func(n int) int  // Defaults to math/rand/v2.IntN.
}

// New returns a fresh identifier.
func (g IDGenerator) New() string {
	length := g.Length
	if length <= 0 {
		length = DefaultIDLength
	}
	now := g.Now
	if now == nil {
		now = time.Now
	}
	intn := g.Intn
	if intn == nil {
		intn = rand.IntN
	}

	tlength := length / 2
	rlength := length - tlength

	var b strings.Builder
	b.Grow(length)
	for range rlength {
		b.WriteByte(idAlphabet[intn(len(idAlphabet))])
	}
	if tlength == 0 {
		return b.String()
	}

	stamp := strconv.FormatInt(now().Unix(), 16)
	if len(stamp) > tlength {
		stamp = stamp[len(stamp)-tlength:]
	}
	stamp = strings.Repeat("0", tlength-len(stamp)) + stamp
	for i := len(stamp) - 1; i >= 0; i-- {
		b.WriteByte(stamp[i])
	}
	return b.String()
}

// NewID returns an identifier of the given length using the default
// clock and random source.
func NewID(length int) string {
	return IDGenerator{Length: length}.New()
}
