package transform

import (
	"sort"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/woocommerce"
)

// MaxCategoryDepth is the deepest nesting level the destination accepts.
// A root category has depth 1.
const MaxCategoryDepth = 5

// CategoryNode is one source category with its computed depth
type CategoryNode struct {
	Category woocommerce.Category
	Depth    int
}

// CategoryExclusion reports a category removed from the plan before any
// API call is attempted
type CategoryExclusion struct {
	ID     int64
	Name   string
	Depth  int
	Reason string
}

// PlanCategories computes the depth of every source category by walking
// parent references to the root, excludes nodes nested beyond the maximum,
// and returns the survivors in ascending depth order so parents are always
// attempted before their children.
func PlanCategories(categories []woocommerce.Category) ([]CategoryNode, []CategoryExclusion, []migration.Warning) {
	byID := make(map[int64]*woocommerce.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	var warnings []migration.Warning
	depths := make(map[int64]int, len(categories))

	var depthOf func(id int64, seen map[int64]bool) int
	depthOf = func(id int64, seen map[int64]bool) int {
		if d, ok := depths[id]; ok {
			return d
		}
		cat, ok := byID[id]
		if !ok {
			// Parent not in the source set; the chain ends here
			return 0
		}
		if seen[id] {
			// Parent cycle; treat this node as a root so the walk terminates
			warnings = append(warnings, migration.Warnf(migration.EntityCategory, id,
				"category %q is part of a parent cycle, treating it as a root", cat.Name))
			depths[id] = 1
			return 1
		}
		seen[id] = true

		d := 1
		if cat.Parent != 0 {
			if _, known := byID[cat.Parent]; !known {
				warnings = append(warnings, migration.Warnf(migration.EntityCategory, id,
					"category %q references unknown parent %d, treating it as a root", cat.Name, cat.Parent))
			} else {
				d = depthOf(cat.Parent, seen) + 1
			}
		}
		depths[id] = d
		return d
	}

	var nodes []CategoryNode
	var excluded []CategoryExclusion
	for _, cat := range categories {
		depth := depthOf(cat.ID, make(map[int64]bool))
		if depth > MaxCategoryDepth {
			excluded = append(excluded, CategoryExclusion{
				ID:     cat.ID,
				Name:   cat.Name,
				Depth:  depth,
				Reason: "exceeds maximum category depth",
			})
			continue
		}
		nodes = append(nodes, CategoryNode{Category: cat, Depth: depth})
	}

	// Ascending depth; source order preserved within one level
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Depth < nodes[j].Depth })

	return nodes, excluded, warnings
}
