package optree

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/BitWhispererSumedh/OperatorTree/glyph"
)

// Graph is the graph form of an operator tree: a directed gonum graph whose
// node ids are pre-order traversal indices and whose nodes carry the
// operator-tree value as a data label. Leaf labels are passed through the
// glyph mapper at construction.
//
// A Graph is built once per equation and never mutated afterwards; the
// standardizer operates on a copy.
type Graph struct {
	dg   *simple.DirectedGraph
	data map[int64]string
}

// NewGraph builds the graph form of the tree rooted at root. A nil root
// yields an empty graph.
func NewGraph(root *Node) *Graph {
	g := &Graph{
		dg:   simple.NewDirectedGraph(),
		data: make(map[int64]string),
	}
	if root == nil {
		return g
	}
	g.add(root, -1)
	return g
}

func (g *Graph) add(node *Node, parent int64) {
	id := int64(len(g.data))
	value := node.Value
	if node.IsLeaf() {
		value = glyph.SubString(value)
	}
	g.dg.AddNode(simple.Node(id))
	g.data[id] = value

	if parent >= 0 {
		g.dg.SetEdge(simple.Edge{F: simple.Node(parent), T: simple.Node(id)})
	}
	for _, child := range node.Children {
		g.add(child, id)
	}
}

// Order returns the number of nodes.
func (g *Graph) Order() int {
	return len(g.data)
}

// Data returns the label of the node with the given id, or the empty string
// for unknown ids.
func (g *Graph) Data(id int64) string {
	return g.data[id]
}

// Nodes returns all node ids in ascending order. For graphs built by
// NewGraph, ascending id order is pre-order.
func (g *Graph) Nodes() []int64 {
	ids := make([]int64, 0, len(g.data))
	for id := range g.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Successors returns the ids of the node's children in ascending order.
func (g *Graph) Successors(id int64) []int64 {
	return collectIDs(g.dg.From(id))
}

// Predecessors returns the ids of the node's parents in ascending order.
// For a tree this has at most one element.
func (g *Graph) Predecessors(id int64) []int64 {
	return collectIDs(g.dg.To(id))
}

// Neighbors returns successors and predecessors together; edges are treated
// as undirected for neighbor queries.
func (g *Graph) Neighbors(id int64) []int64 {
	return append(g.Successors(id), g.Predecessors(id)...)
}

// InDegree returns the number of incoming edges of the node.
func (g *Graph) InDegree(id int64) int {
	return g.dg.To(id).Len()
}

// OutDegree returns the number of outgoing edges of the node.
func (g *Graph) OutDegree(id int64) int {
	return g.dg.From(id).Len()
}

// Root returns the unique node with in-degree zero. The second return value
// is false for an empty graph.
func (g *Graph) Root() (int64, bool) {
	for _, id := range g.Nodes() {
		if g.InDegree(id) == 0 {
			return id, true
		}
	}
	return 0, false
}

// TopoSort returns the node ids in a stable topological order (ties broken
// by ascending id). Graphs built by NewGraph are trees, so an order always
// exists; should the sort ever fail, ascending id order is returned, which
// is a valid topological order for pre-order-numbered trees.
func (g *Graph) TopoSort() []int64 {
	sorted, err := topo.SortStabilized(g.dg, func(ns []graph.Node) {
		sort.Slice(ns, func(i, j int) bool { return ns[i].ID() < ns[j].ID() })
	})
	if err != nil {
		return g.Nodes()
	}
	ids := make([]int64, 0, len(sorted))
	for _, n := range sorted {
		ids = append(ids, n.ID())
	}
	return ids
}

// Leaves returns the ids of all nodes with out-degree zero in topological
// order.
func (g *Graph) Leaves() []int64 {
	leaves := make([]int64, 0, len(g.data))
	for _, id := range g.TopoSort() {
		if g.OutDegree(id) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// PathFromRoot returns the node ids on the unique path from the root down
// to the given node, both endpoints included.
func (g *Graph) PathFromRoot(id int64) []int64 {
	path := []int64{id}
	for {
		preds := g.Predecessors(path[len(path)-1])
		if len(preds) == 0 {
			break
		}
		path = append(path, preds[0])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		dg:   simple.NewDirectedGraph(),
		data: make(map[int64]string, len(g.data)),
	}
	for id, value := range g.data {
		c.dg.AddNode(simple.Node(id))
		c.data[id] = value
	}
	for _, from := range g.Nodes() {
		for _, to := range g.Successors(from) {
			c.dg.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
		}
	}
	return c
}

func collectIDs(it graph.Nodes) []int64 {
	ids := make([]int64, 0, it.Len())
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
