package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/woocommerce"
)

func chain(depth int) []woocommerce.Category {
	cats := make([]woocommerce.Category, 0, depth)
	for i := 1; i <= depth; i++ {
		parent := int64(i - 1)
		cats = append(cats, woocommerce.Category{
			ID:     int64(i),
			Name:   string(rune('A' + i - 1)),
			Parent: parent,
		})
	}
	return cats
}

func TestPlanCategoriesComputesDepth(t *testing.T) {
	nodes, excluded, warnings := PlanCategories(chain(3))

	require.Empty(t, excluded)
	require.Empty(t, warnings)
	require.Len(t, nodes, 3)
	for i, node := range nodes {
		assert.Equal(t, i+1, node.Depth)
	}
}

func TestPlanCategoriesExcludesBeyondMaxDepth(t *testing.T) {
	nodes, excluded, _ := PlanCategories(chain(6))

	require.Len(t, nodes, 5)
	require.Len(t, excluded, 1)
	assert.Equal(t, int64(6), excluded[0].ID)
	assert.Equal(t, 6, excluded[0].Depth)
	assert.Equal(t, "exceeds maximum category depth", excluded[0].Reason)
}

func TestPlanCategoriesOrdersParentsFirst(t *testing.T) {
	// Deliberately shuffled source order
	cats := []woocommerce.Category{
		{ID: 3, Name: "Sneakers", Parent: 2},
		{ID: 1, Name: "Apparel", Parent: 0},
		{ID: 2, Name: "Shoes", Parent: 1},
		{ID: 4, Name: "Accessories", Parent: 0},
	}

	nodes, _, _ := PlanCategories(cats)
	require.Len(t, nodes, 4)

	position := make(map[int64]int, len(nodes))
	for i, node := range nodes {
		position[node.Category.ID] = i
	}
	assert.Less(t, position[1], position[2])
	assert.Less(t, position[2], position[3])
}

func TestPlanCategoriesUnknownParentBecomesRoot(t *testing.T) {
	cats := []woocommerce.Category{
		{ID: 5, Name: "Orphan", Parent: 999},
	}

	nodes, excluded, warnings := PlanCategories(cats)

	require.Empty(t, excluded)
	require.Len(t, nodes, 1)
	assert.Equal(t, 1, nodes[0].Depth)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "unknown parent")
}

func TestPlanCategoriesBreaksParentCycle(t *testing.T) {
	cats := []woocommerce.Category{
		{ID: 1, Name: "A", Parent: 2},
		{ID: 2, Name: "B", Parent: 1},
	}

	nodes, excluded, warnings := PlanCategories(cats)

	require.Empty(t, excluded)
	assert.Len(t, nodes, 2)
	assert.NotEmpty(t, warnings)
}
