// Package feature derives structural features from graph-form operator
// trees. A feature is the sequence of operator labels on the path between
// two leaves through their lowest common ancestor; the set of such paths
// over all leaf pairs is the equation's feature set.
package feature

import (
	"github.com/BitWhispererSumedh/OperatorTree/optree"
)

// Feature pairs two leaf labels with the operator path connecting them.
// For indexing only the path is retained; corpus search is
// variable-agnostic.
type Feature struct {
	Vars [2]string
	Path []string
}

// Extract enumerates the features of a graph-form tree: one per unordered
// leaf pair {i, j} with i < j in topological order.
func Extract(g *optree.Graph) []Feature {
	root, ok := g.Root()
	if !ok {
		return nil
	}
	leaves := g.Leaves()

	features := make([]Feature, 0, len(leaves)*(len(leaves)-1)/2)
	for i := 0; i < len(leaves); i++ {
		for j := i + 1; j < len(leaves); j++ {
			pathA := g.PathFromRoot(leaves[i])
			pathB := g.PathFromRoot(leaves[j])

			merged := mergeLeafPaths(pathA, pathB)

			ops := make([]string, 0, len(merged))
			for _, id := range merged {
				ops = append(ops, g.Data(id))
			}
			features = append(features, Feature{
				Vars: [2]string{g.Data(leaves[i]), g.Data(leaves[j])},
				Path: ops,
			})
		}
	}
	return features
}

// Paths returns only the operator paths of Extract, dropping the leaf
// labels. This is the form stored in the index.
func Paths(g *optree.Graph) [][]string {
	features := Extract(g)
	paths := make([][]string, 0, len(features))
	for _, f := range features {
		paths = append(paths, f.Path)
	}
	return paths
}

// mergeLeafPaths merges two root-to-leaf paths into the leaf-to-leaf node
// path through the LCA, with both leaf endpoints removed.
//
// The merge starts from the reversed first path and scans the second: a
// node already present is removed from the running list and remembered as
// the last repeat; the first non-repeated node re-appends that remembered
// LCA before itself. The result walks up from leaf a to the LCA and back
// down to leaf b.
func mergeLeafPaths(pathA, pathB []int64) []int64 {
	full := make([]int64, len(pathA))
	for i, id := range pathA {
		full[len(pathA)-1-i] = id
	}

	var lastRepeat int64
	haveRepeat := false
	for _, id := range pathB {
		if idx := indexOf(full, id); idx >= 0 {
			lastRepeat = id
			haveRepeat = true
			full = append(full[:idx], full[idx+1:]...)
			continue
		}
		if haveRepeat {
			full = append(full, lastRepeat)
			haveRepeat = false
		}
		full = append(full, id)
	}

	if len(full) <= 2 {
		return nil
	}
	return full[1 : len(full)-1]
}

func indexOf(ids []int64, id int64) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
