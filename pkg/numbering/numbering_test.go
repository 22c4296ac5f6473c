package numbering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplicationNumber_Pattern(t *testing.T) {
	now := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	number := ApplicationNumber(now)

	assert.Regexp(t, ApplicationNumberPattern, number)
	assert.Contains(t, number, "_1740996000000_")
}

func TestNupcan_PatternAndUniqueness(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		n := Nupcan(now)
		assert.Regexp(t, NupcanPattern, n)
		_, dup := seen[n]
		assert.False(t, dup, "duplicate nupcan %s", n)
		seen[n] = struct{}{}
	}
}

func TestTemporaryPassword_Length(t *testing.T) {
	assert.Len(t, TemporaryPassword(), 12)
	assert.NotEqual(t, TemporaryPassword(), TemporaryPassword())
}
