package optree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// render flattens a tree into value(child,child) form for compact
// assertions.
func render(n *Node) string {
	if n.IsLeaf() {
		return n.Value
	}
	parts := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		parts = append(parts, render(child))
	}
	return n.Value + "(" + strings.Join(parts, ",") + ")"
}

func parse(t *testing.T, mathml string) *Node {
	t.Helper()
	root, err := Parse(mathml, DefaultConfig())
	require.NoError(t, err)
	return root
}

func TestParseBasicOperators(t *testing.T) {
	t.Run("plus with nested times", func(t *testing.T) {
		root := parse(t, `<apply><plus/><ci>a</ci><apply><times/><ci>b</ci><ci>c</ci></apply></apply>`)
		assert.Equal(t, "plus(a,times(b,c))", render(root))
	})

	t.Run("math and semantics wrappers are skipped", func(t *testing.T) {
		root := parse(t, `<math display="block"><semantics><annotation-xml><apply><plus/><ci>a</ci><ci>b</ci></apply></annotation-xml></semantics></math>`)
		assert.Equal(t, "plus(a,b)", render(root))
	})

	t.Run("childless unknown tag becomes leaf of its name", func(t *testing.T) {
		root := parse(t, `<apply><eq/><ci>a</ci><ci>b</ci></apply>`)
		assert.Equal(t, "eq(a,b)", render(root))
	})

	t.Run("unknown container keeps tag and children", func(t *testing.T) {
		root := parse(t, `<vector><ci>a</ci><ci>b</ci></vector>`)
		assert.Equal(t, "vector(a,b)", render(root))
	})

	t.Run("operator head children flatten into the node", func(t *testing.T) {
		root := parse(t, `<apply><apply><ci>f</ci><ci>x</ci></apply><ci>y</ci></apply>`)
		assert.Equal(t, "f(x,y)", render(root))
	})
}

func TestParseTerminals(t *testing.T) {
	t.Run("nested layers before text", func(t *testing.T) {
		root := parse(t, `<ci><mi>x</mi></ci>`)
		assert.Equal(t, "x", render(root))
	})

	t.Run("no text anywhere yields placeholder", func(t *testing.T) {
		root := parse(t, `<ci><mrow></mrow></ci>`)
		assert.Equal(t, noTextFound, render(root))
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		root := parse(t, "<ci>\n   x\n  </ci>")
		assert.Equal(t, "x", render(root))
	})
}

func TestParseErrors(t *testing.T) {
	t.Run("malformed xml", func(t *testing.T) {
		_, err := Parse(`<math><apply>`, DefaultConfig())
		assert.ErrorIs(t, err, ErrMalformedMathML)
	})

	t.Run("semantics without content annotation", func(t *testing.T) {
		_, err := Parse(`<semantics><mrow><mi>x</mi></mrow></semantics>`, DefaultConfig())
		assert.ErrorIs(t, err, ErrMissingContentML)
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := Parse(``, DefaultConfig())
		assert.ErrorIs(t, err, ErrMalformedMathML)
	})
}

func TestSubscriptCompression(t *testing.T) {
	t.Run("two identifiers glue into one leaf", func(t *testing.T) {
		root := parse(t, `<apply><csymbol>subscript</csymbol><ci>x</ci><cn>1</cn></apply>`)
		assert.Equal(t, "x_1", render(root))
	})

	t.Run("disabled flag keeps the subscript node", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CompressSubscripts = false
		root, err := Parse(`<apply><csymbol>subscript</csymbol><ci>x</ci><cn>1</cn></apply>`, cfg)
		require.NoError(t, err)
		assert.Equal(t, "subscript(x,1)", render(root))
	})

	t.Run("superscript base folds leaf subscript into its first child", func(t *testing.T) {
		root := parse(t, `<apply><csymbol>subscript</csymbol><apply><csymbol>superscript</csymbol><ci>x</ci><cn>2</cn></apply><cn>0</cn></apply>`)
		assert.Equal(t, "superscript(x_0,2)", render(root))
	})

	t.Run("superscript base drops structured subscript", func(t *testing.T) {
		root := parse(t, `<apply><csymbol>subscript</csymbol><apply><csymbol>superscript</csymbol><ci>x</ci><cn>2</cn></apply><apply><plus/><ci>i</ci><ci>j</ci></apply></apply>`)
		assert.Equal(t, "superscript(x,2)", render(root))
	})

	t.Run("leaf base flattens structured subscript by in-order traversal", func(t *testing.T) {
		root := parse(t, `<apply><csymbol>subscript</csymbol><ci>x</ci><apply><plus/><ci>i</ci><ci>j</ci></apply></apply>`)
		assert.Equal(t, "x_i_plus_j", render(root))
	})

	t.Run("structured base keeps only the base", func(t *testing.T) {
		root := parse(t, `<apply><csymbol>subscript</csymbol><apply><plus/><ci>i</ci><ci>j</ci></apply><cn>1</cn></apply>`)
		assert.Equal(t, "plus(i,j)", render(root))
	})

	t.Run("two children fall through to default construction", func(t *testing.T) {
		root := parse(t, `<apply><csymbol>subscript</csymbol><ci>x</ci></apply>`)
		assert.Equal(t, "subscript(x)", render(root))
	})
}

func TestSuperscriptCompression(t *testing.T) {
	t.Run("operator power operand regroups", func(t *testing.T) {
		root := parse(t, `<apply><apply><csymbol>superscript</csymbol><ci>f</ci><cn>2</cn></apply><ci>x</ci></apply>`)
		assert.Equal(t, "superscript(f(x),2)", render(root))
	})

	t.Run("plain power stays untouched", func(t *testing.T) {
		root := parse(t, `<apply><csymbol>superscript</csymbol><ci>x</ci><cn>2</cn></apply>`)
		assert.Equal(t, "superscript(x,2)", render(root))
	})

	t.Run("disabled flag skips the regroup", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CompressSuperscripts = false
		root, err := Parse(`<apply><apply><csymbol>superscript</csymbol><ci>f</ci><cn>2</cn></apply><ci>x</ci></apply>`, cfg)
		require.NoError(t, err)
		assert.Equal(t, "superscript(f,2,x)", render(root))
	})
}

func TestDerivativeFixup(t *testing.T) {
	t.Run("bare differential adopts operand and times collapses", func(t *testing.T) {
		root := parse(t, "<apply><times/><ci>\U0001D451</ci><ci>x</ci></apply>")
		assert.Equal(t, "d(x)", render(root))
	})

	t.Run("differential inside wider product", func(t *testing.T) {
		root := parse(t, "<apply><times/><ci>y</ci><ci>\U0001D451</ci><ci>x</ci></apply>")
		assert.Equal(t, "times(y,d(x))", render(root))
	})

	t.Run("superscripted differential adopts following sibling", func(t *testing.T) {
		root := parse(t, "<apply><times/><apply><csymbol>superscript</csymbol><ci>\U0001D451</ci><cn>2</cn></apply><ci>x</ci></apply>")
		assert.Equal(t, "superscript(d(x),2)", render(root))
	})

	t.Run("plain product untouched", func(t *testing.T) {
		root := parse(t, `<apply><times/><ci>a</ci><ci>b</ci></apply>`)
		assert.Equal(t, "times(a,b)", render(root))
	})

	t.Run("disabled flag keeps the italic differential", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FixDerivatives = false
		root, err := Parse("<apply><times/><ci>\U0001D451</ci><ci>x</ci></apply>", cfg)
		require.NoError(t, err)
		assert.Equal(t, "times(\U0001D451,x)", render(root))
	})
}

func TestNormalizeProducesTree(t *testing.T) {
	// Invariant: any non-error result is a single-rooted acyclic tree with
	// non-empty leaf values.
	inputs := []string{
		`<apply><plus/><ci>a</ci><apply><times/><ci>b</ci><ci>c</ci></apply></apply>`,
		`<apply><csymbol>subscript</csymbol><ci>x</ci><cn>1</cn></apply>`,
		"<apply><times/><ci>\U0001D451</ci><ci>x</ci></apply>",
		`<vector><ci>a</ci><ci>b</ci></vector>`,
	}
	for _, input := range inputs {
		root := parse(t, input)
		g := NewGraph(root)
		_, ok := g.Root()
		require.True(t, ok)
		assert.Equal(t, root.Size(), g.Order())
		root.Walk(func(n *Node) {
			if n.IsLeaf() {
				assert.NotEmpty(t, n.Value)
			}
		})
	}
}
