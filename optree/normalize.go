package optree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

var (
	// ErrMalformedMathML reports a MathML subtree that cannot be parsed or
	// normalized. Callers skip the offending equation and continue.
	ErrMalformedMathML = errors.New("malformed mathml")

	// ErrMissingContentML reports a semantics element without an annotation
	// or annotation-xml child. The content markup is required; the equation
	// is skipped like any other malformed one.
	ErrMissingContentML = errors.New("semantics element has no content annotation")
)

// Operator labels the compression passes dispatch on.
const (
	opSubscript   = "subscript"
	opSuperscript = "superscript"
	opTimes       = "times"
)

// U+1D451, the mathematical italic small d that content markup uses for
// differentials. The derivative fixup rewrites it to ASCII d.
const mathItalicD = "\U0001D451"

// Inserted when a terminal element chain carries no text at all.
const noTextFound = "no text found"

// Tag classification. Terminal is checked before operator, so of the
// operator set only apply ever reaches the operator rules; the others
// resolve as terminals regardless of child count.
var (
	skipTags     = map[string]struct{}{"math": {}, "semantics": {}, "annotation": {}, "annotation-xml": {}}
	terminalTags = map[string]struct{}{"ci": {}, "cn": {}, "cs": {}, "csymbol": {}}
	operatorTags = map[string]struct{}{"apply": {}, "ci": {}, "cn": {}, "cs": {}, "csymbol": {}}

	// Tags whose normalized values may be glued into a single subscripted leaf.
	compressableTags = map[string]struct{}{"ci": {}, "cn": {}, "cs": {}}
)

// Config toggles the compression passes applied during normalization.
// The zero value disables all of them; use DefaultConfig for the standard
// pipeline behavior.
type Config struct {
	CompressSubscripts   bool
	CompressSuperscripts bool
	FixDerivatives       bool
}

// DefaultConfig enables every compression pass.
func DefaultConfig() Config {
	return Config{
		CompressSubscripts:   true,
		CompressSuperscripts: true,
		FixDerivatives:       true,
	}
}

// Parse parses a MathML string and normalizes it into an operator tree.
// A string that does not parse as XML yields ErrMalformedMathML.
func Parse(mathml string, cfg Config) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(mathml); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMathML, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: document has no root element", ErrMalformedMathML)
	}
	return Normalize(root, cfg)
}

// Normalize converts a MathML element into an operator tree. The returned
// tree is freshly allocated and shares no state with the input element or
// with any intermediate node.
func Normalize(el *etree.Element, cfg Config) (*Node, error) {
	n := &normalizer{cfg: cfg}
	return n.node(el, cfg)
}

// normalizer carries the top-level configuration. The compression passes
// re-derive the current element with individual passes disabled; those
// overrides apply to the current element only, while child recursion always
// reverts to the top-level configuration.
type normalizer struct {
	cfg Config
}

// node dispatches on the element tag. Rule order matters: skip, terminal,
// operator, childless, unknown-with-children; first match wins.
func (n *normalizer) node(el *etree.Element, local Config) (*Node, error) {
	tag := el.Tag
	children := el.ChildElements()

	if _, ok := skipTags[tag]; ok {
		// semantics splits presentation and content markup; descend into
		// the content annotation.
		if tag == "semantics" {
			for _, child := range children {
				if child.Tag == "annotation" || child.Tag == "annotation-xml" {
					return n.node(child, n.cfg)
				}
			}
			return nil, ErrMissingContentML
		}
		if len(children) == 0 {
			return nil, fmt.Errorf("%w: %s element has no children", ErrMalformedMathML, tag)
		}
		return n.node(children[0], n.cfg)
	}

	if _, ok := terminalTags[tag]; ok {
		return n.terminal(el), nil
	}

	if _, ok := operatorTags[tag]; ok {
		return n.operator(el, local)
	}

	// A childless element stands for itself: <times/>, <plus/>, <eq/>, ...
	if len(children) == 0 {
		return NewLeaf(tag), nil
	}

	// Unrecognized container: keep the tag as the value and normalize the
	// children underneath it.
	kids := make([]*Node, 0, len(children))
	for _, child := range children {
		k, err := n.node(child, n.cfg)
		if err != nil {
			return nil, err
		}
		kids = append(kids, k)
	}
	return NewNode(tag, kids...), nil
}

// terminal extracts the innermost non-empty text by descending the
// first-child chain. Elements that never yield text produce the
// "no text found" placeholder so leaf values stay non-empty.
func (n *normalizer) terminal(el *etree.Element) *Node {
	value := strings.TrimSpace(el.Text())
	for value == "" {
		kids := el.ChildElements()
		if len(kids) == 0 {
			value = noTextFound
			break
		}
		el = kids[0]
		value = strings.TrimSpace(el.Text())
	}
	return NewLeaf(value)
}

// operator builds a node for an apply element: the normalized first child
// supplies the value, its children flatten in, and the remaining children
// become operands. Compression passes intercept subscript, superscript and
// times nodes before the default construction.
func (n *normalizer) operator(el *etree.Element, local Config) (*Node, error) {
	children := el.ChildElements()
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: %s element has no children", ErrMalformedMathML, el.Tag)
	}

	head, err := n.node(children[0], n.cfg)
	if err != nil {
		return nil, err
	}
	value := head.Value

	if local.CompressSubscripts && value == opSubscript && len(children) == 3 {
		node, ok, err := n.compressSubscript(el, head)
		if err != nil {
			return nil, err
		}
		if ok {
			return node, nil
		}
	}

	if local.CompressSuperscripts && value == opSuperscript {
		node, ok, err := n.compressSuperscript(el, local)
		if err != nil {
			return nil, err
		}
		if ok {
			return node, nil
		}
	}

	if local.FixDerivatives && value == opTimes {
		return n.fixDerivatives(el, local)
	}

	kids := make([]*Node, 0, len(head.Children)+len(children)-1)
	kids = append(kids, head.Children...)
	for _, child := range children[1:] {
		k, err := n.node(child, n.cfg)
		if err != nil {
			return nil, err
		}
		kids = append(kids, k)
	}
	return NewNode(strings.TrimSpace(value), kids...), nil
}

// compressSubscript collapses a three-child subscript application into a
// single leaf or promotes the base node. Rules are tried in order; the
// first applicable one wins. The second return value reports whether a rule
// fired; otherwise the caller falls through to the default construction.
//
// All results are fresh nodes: node1 and node2 are normalized here and not
// shared with any other rule invocation.
func (n *normalizer) compressSubscript(el *etree.Element, head *Node) (*Node, bool, error) {
	children := el.ChildElements()
	tag1, tag2 := children[1].Tag, children[2].Tag

	node0 := head
	node1, err := n.node(children[1], n.cfg)
	if err != nil {
		return nil, false, err
	}
	node2, err := n.node(children[2], n.cfg)
	if err != nil {
		return nil, false, err
	}

	comp1 := isCompressable(tag1)
	comp2 := isCompressable(tag2)

	switch {
	// (a) two plain identifiers glue into one leaf: x_1
	case comp1 && comp2:
		return NewLeaf(node1.Value + "_" + node2.Value), true, nil

	// (b) subscripted superscript with leaf subscript: fold the subscript
	// into the superscript's base.
	case node0.Value == opSubscript && node1.Value == opSuperscript &&
		node2.IsLeaf() && len(node1.Children) > 0 && node1.Children[0].IsLeaf():
		node1.Children[0].Value += "_" + node2.Value
		return node1, true, nil

	// (c) subscripted superscript with a structured subscript: drop it.
	case node0.Value == opSubscript && node1.Value == opSuperscript && !node2.IsLeaf():
		return node1, true, nil

	// (d) leaf base with a structured subscript: flatten the subscript
	// subtree into the base label by in-order traversal.
	case node0.Value == opSubscript && node1.IsLeaf() && comp1 && !comp2:
		node1.Value += "_" + inorderLabel(node2)
		return node1, true, nil

	// (e) leaf base, nothing to glue: keep the base.
	case node0.Value == opSubscript && node1.IsLeaf():
		return node1, true, nil

	// (f), (g) structured base: the subscript is dropped either way.
	case !comp1 && comp2:
		return node1, true, nil
	case !comp1 && !comp2:
		return node1, true, nil
	}

	return nil, false, nil
}

func isCompressable(tag string) bool {
	_, ok := compressableTags[tag]
	return ok
}

// inorderLabel renders a subtree as a single underscore-joined label:
// leaf -> value, one child -> child_value, two children ->
// left_value_right. Deeper fan-out extends the same left-to-right scheme.
func inorderLabel(node *Node) string {
	if node.IsLeaf() {
		return strings.TrimSpace(node.Value)
	}
	s := inorderLabel(node.Children[0]) + "_" + node.Value
	for _, child := range node.Children[1:] {
		s += "_" + inorderLabel(child)
	}
	return s
}

// compressSuperscript re-derives the element with superscript compression
// disabled. When that form has exactly three leaf children
// [operator, power, operand], the operator adopts the operand and the node
// becomes superscript(operator(operand), power).
func (n *normalizer) compressSuperscript(el *etree.Element, local Config) (*Node, bool, error) {
	recfg := local
	recfg.CompressSuperscripts = false
	test, err := n.operator(el, recfg)
	if err != nil {
		return nil, false, err
	}

	if len(test.Children) != 3 {
		return nil, false, nil
	}
	for _, child := range test.Children {
		if !child.IsLeaf() {
			return nil, false, nil
		}
	}

	operator, power, operand := test.Children[0], test.Children[1], test.Children[2]
	operator.Children = []*Node{operand}
	return NewNode(opSuperscript, operator, power), true, nil
}

// fixDerivatives re-derives the times element without the fixup, then runs
// two left-to-right sweeps over its children: a bare 𝑑 leaf adopts the
// operand that follows it, and a 𝑑 leaf inside a superscript adopts the
// superscript's following sibling. Every surviving 𝑑 is rewritten to ASCII
// d. A times left with a single child collapses into that child.
func (n *normalizer) fixDerivatives(el *etree.Element, local Config) (*Node, error) {
	recfg := local
	recfg.FixDerivatives = false
	l0, err := n.operator(el, recfg)
	if err != nil {
		return nil, err
	}

	kids := l0.Children
	removed := make(map[int]bool)
	for i, kid := range kids {
		if i+1 < len(kids) && kid.Value == mathItalicD && kid.IsLeaf() {
			kid.Children = append(kid.Children, kids[i+1])
			removed[i+1] = true
		}
	}
	swept := sweepDerivativeChildren(kids, removed)

	removed = make(map[int]bool)
	for i, kid := range swept {
		if kid.Value != opSuperscript {
			continue
		}
		for _, sub := range kid.Children {
			if sub.Value == mathItalicD && sub.IsLeaf() {
				sub.Value = "d"
				if i+1 < len(swept) {
					sub.Children = []*Node{swept[i+1]}
					removed[i+1] = true
				}
			}
		}
	}
	final := sweepDerivativeChildren(swept, removed)

	if len(final) == 1 {
		return NewNode(final[0].Value, final[0].Children...), nil
	}
	return NewNode(opTimes, final...), nil
}

// sweepDerivativeChildren drops the children marked for removal and
// rewrites surviving italic-d values to ASCII.
func sweepDerivativeChildren(kids []*Node, removed map[int]bool) []*Node {
	out := make([]*Node, 0, len(kids))
	for i, kid := range kids {
		if removed[i] {
			continue
		}
		if kid.Value == mathItalicD {
			kid.Value = "d"
		}
		out = append(out, kid)
	}
	return out
}
