// Package pathfind locates label-sequence paths in graph-form operator
// trees. Given a sequence of operator labels it returns every node that
// participates in a connected node sequence whose labels match the query,
// treating edges as undirected. Callers use the result to highlight matches
// and to verify approximate-match candidates.
package pathfind

import (
	"github.com/BitWhispererSumedh/OperatorTree/optree"
	"github.com/BitWhispererSumedh/OperatorTree/pkg/sets"
)

// Config selects the layer-filter variant.
//
// With StrictChaining false (the default) layer i+1 is computed from every
// node whose label matches labels[i], reproducing the engine's historical
// behavior. With StrictChaining true the filter only expands from nodes
// that survived layer i, which prunes candidates that cannot chain back to
// the start of the sequence.
type Config struct {
	StrictChaining bool
}

// Find returns the set of node ids participating in any path whose labels
// match the query sequence. An empty query or a first label absent from the
// tree yields an empty set.
func Find(g *optree.Graph, labels []string, cfg Config) sets.HashSet[int64] {
	result := sets.New[int64]()
	if len(labels) == 0 {
		return result
	}

	byLabel := bucketByLabel(g, labels)
	first, ok := byLabel[labels[0]]
	if !ok {
		return result
	}

	layers := buildLayers(g, labels, byLabel, first, cfg)

	for _, path := range validPaths(g, layers, 0) {
		result.Add(path...)
	}
	return result
}

// bucketByLabel indexes the tree's nodes by label, restricted to labels
// present in the query.
func bucketByLabel(g *optree.Graph, labels []string) map[string]sets.HashSet[int64] {
	wanted := sets.New(labels...)
	buckets := make(map[string]sets.HashSet[int64])
	for _, id := range g.Nodes() {
		label := g.Data(id)
		if !wanted.Contains(label) {
			continue
		}
		bucket, ok := buckets[label]
		if !ok {
			bucket = sets.New[int64]()
			buckets[label] = bucket
		}
		bucket.Add(id)
	}
	return buckets
}

// buildLayers computes layer[i]: candidate nodes for position i of the
// query. Each layer holds nodes labeled labels[i] that neighbor the
// previous layer's source set. A label missing from the tree leaves its
// layer empty and ends the layer list there, so no path matches and Find
// returns an empty set.
func buildLayers(g *optree.Graph, labels []string, byLabel map[string]sets.HashSet[int64], first sets.HashSet[int64], cfg Config) []sets.HashSet[int64] {
	layers := []sets.HashSet[int64]{first}
	for idx := 0; idx < len(labels)-1; idx++ {
		source, ok := byLabel[labels[idx]]
		if !ok {
			break
		}
		if cfg.StrictChaining {
			source = layers[idx]
		}

		next := sets.New[int64]()
		nextLabel := labels[idx+1]
		for id := range source.Iter() {
			for _, neighbor := range g.Neighbors(id) {
				if g.Data(neighbor) == nextLabel {
					next.Add(neighbor)
				}
			}
		}
		layers = append(layers, next)
	}
	return layers
}

// validPaths enumerates every node path over layers[i:] where consecutive
// nodes are neighbors. Base case: singleton paths from the last layer.
func validPaths(g *optree.Graph, layers []sets.HashSet[int64], i int) [][]int64 {
	if i == len(layers)-1 {
		paths := make([][]int64, 0, layers[i].Size())
		for id := range layers[i].Iter() {
			paths = append(paths, []int64{id})
		}
		return paths
	}

	tails := validPaths(g, layers, i+1)
	var paths [][]int64
	for id := range layers[i].Iter() {
		adjacent := sets.New(g.Neighbors(id)...)
		for _, tail := range tails {
			if len(tail) == 0 || !adjacent.Contains(tail[0]) {
				continue
			}
			path := make([]int64, 0, len(tail)+1)
			path = append(path, id)
			path = append(path, tail...)
			paths = append(paths, path)
		}
	}
	return paths
}
