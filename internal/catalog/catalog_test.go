package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	items := Default().Products()
	require.Len(t, items, 15)

	seen := make(map[int]bool)
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate id %d", it.ID)
		seen[it.ID] = true
		assert.NotEmpty(t, it.Name)
		assert.NotEmpty(t, it.Description)
		assert.GreaterOrEqual(t, it.Price, 0.0)
	}
}

func TestStatic_ProductsReturnsCopy(t *testing.T) {
	src := Default()
	first := src.Products()
	first[0].Name = "changed"

	assert.Equal(t, "Vintage Band T-Shirt", src.Products()[0].Name)
}
