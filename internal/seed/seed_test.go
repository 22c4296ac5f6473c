package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvincesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, name := range Provinces {
		assert.False(t, seen[name], name)
		seen[name] = true
	}
	assert.Len(t, Provinces, 9)
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, "Super", orDefault("  ", "Super"))
	assert.Equal(t, "Nzé", orDefault(" Nzé ", "Super"))
}
