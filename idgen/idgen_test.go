package idgen

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator_Format(t *testing.T) {
	g := NewUUIDGenerator()
	n := g.NewOrderNumber()
	require.True(t, strings.HasPrefix(n, "ORD-"), n)
	assert.Len(t, n, len("ORD-")+20)
	assert.Equal(t, strings.ToUpper(n), n)
}

func TestUUIDGenerator_UniqueAndSortable(t *testing.T) {
	g := NewUUIDGenerator()
	seen := map[string]bool{}
	var ordered []string
	for i := 0; i < 50; i++ {
		n := g.NewOrderNumber()
		assert.False(t, seen[n], "duplicate %s", n)
		seen[n] = true
		ordered = append(ordered, n)
		if i%10 == 0 {
			time.Sleep(2 * time.Millisecond)
		}
	}
	first, last := ordered[0], ordered[len(ordered)-1]
	assert.True(t, sort.StringsAreSorted([]string{first[:16], last[:16]}), "timestamp prefix should not go backwards")
}
