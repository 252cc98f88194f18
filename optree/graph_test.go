package optree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Node {
	// plus(a, times(b, c)) with pre-order ids 0..4.
	return NewNode("plus",
		NewLeaf("a"),
		NewNode("times", NewLeaf("b"), NewLeaf("c")),
	)
}

func TestNewGraph(t *testing.T) {
	g := NewGraph(sampleTree())

	t.Run("preorder ids carry the labels", func(t *testing.T) {
		require.Equal(t, 5, g.Order())
		assert.Equal(t, "plus", g.Data(0))
		assert.Equal(t, "a", g.Data(1))
		assert.Equal(t, "times", g.Data(2))
		assert.Equal(t, "b", g.Data(3))
		assert.Equal(t, "c", g.Data(4))
	})

	t.Run("edges follow parent to child", func(t *testing.T) {
		assert.Equal(t, []int64{1, 2}, g.Successors(0))
		assert.Equal(t, []int64{3, 4}, g.Successors(2))
		assert.Equal(t, []int64{0}, g.Predecessors(2))
		assert.Equal(t, []int64{1, 2}, g.Neighbors(0))
		assert.Equal(t, []int64{3, 4, 0}, g.Neighbors(2))
	})

	t.Run("root and leaves", func(t *testing.T) {
		root, ok := g.Root()
		require.True(t, ok)
		assert.Equal(t, int64(0), root)
		assert.Equal(t, []int64{1, 3, 4}, g.Leaves())
	})

	t.Run("path from root", func(t *testing.T) {
		assert.Equal(t, []int64{0, 2, 3}, g.PathFromRoot(3))
		assert.Equal(t, []int64{0, 1}, g.PathFromRoot(1))
		assert.Equal(t, []int64{0}, g.PathFromRoot(0))
	})

	t.Run("topological order", func(t *testing.T) {
		order := g.TopoSort()
		pos := make(map[int64]int, len(order))
		for i, id := range order {
			pos[id] = i
		}
		for _, from := range g.Nodes() {
			for _, to := range g.Successors(from) {
				assert.Less(t, pos[from], pos[to])
			}
		}
	})

	t.Run("leaf labels pass through the glyph mapper", func(t *testing.T) {
		italicX := string(rune(0x1D465))
		mapped := NewGraph(NewNode("plus", NewLeaf(italicX), NewLeaf("y")))
		assert.Equal(t, "x", mapped.Data(1))
		assert.Equal(t, "plus", mapped.Data(0))
	})

	t.Run("nil root yields empty graph", func(t *testing.T) {
		empty := NewGraph(nil)
		assert.Equal(t, 0, empty.Order())
		_, ok := empty.Root()
		assert.False(t, ok)
	})
}

func TestGraphClone(t *testing.T) {
	g := NewGraph(sampleTree())
	c := g.Clone()

	require.Equal(t, g.Order(), c.Order())
	for _, id := range g.Nodes() {
		assert.Equal(t, g.Data(id), c.Data(id))
		assert.Equal(t, g.Successors(id), c.Successors(id))
	}

	c.data[1] = "mutated"
	assert.Equal(t, "a", g.Data(1))
}

func TestStandardize(t *testing.T) {
	t.Run("variables renamed in topological order", func(t *testing.T) {
		// plus(x, times(x, y)) -> plus(a, times(a, b))
		g := NewGraph(NewNode("plus",
			NewLeaf("x"),
			NewNode("times", NewLeaf("x"), NewLeaf("y")),
		))
		s := Standardize(g)

		assert.Equal(t, "a", s.Data(1))
		assert.Equal(t, "a", s.Data(3))
		assert.Equal(t, "b", s.Data(4))
		assert.Equal(t, "plus", s.Data(0))
	})

	t.Run("topology preserved exactly", func(t *testing.T) {
		g := NewGraph(sampleTree())
		s := Standardize(g)

		require.Equal(t, g.Order(), s.Order())
		assert.Equal(t, g.Nodes(), s.Nodes())
		for _, id := range g.Nodes() {
			assert.Equal(t, g.Successors(id), s.Successors(id))
			assert.Equal(t, g.Predecessors(id), s.Predecessors(id))
		}
	})

	t.Run("constants and long names untouched", func(t *testing.T) {
		g := NewGraph(NewNode("times", NewLeaf("π"), NewLeaf("sin"), NewLeaf("q")))
		s := Standardize(g)

		assert.Equal(t, "π", s.Data(1))
		assert.Equal(t, "sin", s.Data(2))
		assert.Equal(t, "a", s.Data(3))
	})

	t.Run("input graph unchanged", func(t *testing.T) {
		g := NewGraph(NewNode("plus", NewLeaf("x"), NewLeaf("y")))
		_ = Standardize(g)
		assert.Equal(t, "x", g.Data(1))
		assert.Equal(t, "y", g.Data(2))
	})
}

func TestIsVariable(t *testing.T) {
	assert.True(t, IsVariable("x"))
	assert.True(t, IsVariable("λ"))
	assert.False(t, IsVariable("π"))
	assert.False(t, IsVariable("x1"))
	assert.False(t, IsVariable("1"))
	assert.False(t, IsVariable(""))
	assert.False(t, IsVariable("+"))
}
