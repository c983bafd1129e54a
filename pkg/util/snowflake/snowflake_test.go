package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIDStringIsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := GenerateIDString()
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}
