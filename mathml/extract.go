// Package mathml extracts block equations from HTML articles. Each
// extracted equation is the pretty-printed MathML subtree paired with its
// LaTeX alttext; downstream the string is parsed again by the normalizer,
// so extraction never hands out live DOM state.
package mathml

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
)

// Equation is one block equation lifted out of an article.
type Equation struct {
	// MathML is the balanced, indented serialization of the math subtree
	// with noise attributes removed. It is the basis of equation identity.
	MathML string

	// AltText is the LaTeX source from the math element's alttext
	// attribute, empty when absent.
	AltText string
}

// Attributes stripped from every descendant of a math element before
// serialization.
var strippedAttrs = []string{"id", "xref", "type", "cd", "encoding"}

// U+2062, the invisible times operator; it carries no structure and is
// dropped from text content during extraction.
const invisibleTimes = "\u2062"

// ExtractFile reads an HTML file and extracts its block equations. An
// unreadable file is surfaced as an error; the caller aborts that file and
// continues with the rest of the corpus.
func ExtractFile(path string) ([]Equation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}
	defer f.Close()

	eqs, err := Extract(f)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return eqs, nil
}

// Extract returns every block equation in the document, in document order.
// Inline math (display="inline" or no display attribute) is skipped.
func Extract(r io.Reader) ([]Equation, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var eqs []Equation
	var serr error
	walk(doc, func(n *html.Node) {
		if serr != nil || n.Type != html.ElementNode || n.Data != "math" {
			return
		}
		if attrVal(n, "display") != "block" {
			return
		}

		el := toElement(n)
		for _, child := range el.ChildElements() {
			stripAttributes(child)
		}

		s, err := serialize(el)
		if err != nil {
			serr = fmt.Errorf("serialize math element: %w", err)
			return
		}
		eqs = append(eqs, Equation{MathML: s, AltText: attrVal(n, "alttext")})
	})
	if serr != nil {
		return nil, serr
	}
	return eqs, nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// toElement converts an html.Node subtree into a detached etree element,
// dropping invisible operators and whitespace-only text.
func toElement(n *html.Node) *etree.Element {
	el := etree.NewElement(n.Data)
	for _, a := range n.Attr {
		el.CreateAttr(a.Key, a.Val)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			el.AddChild(toElement(c))
		case html.TextNode:
			text := strings.ReplaceAll(c.Data, invisibleTimes, "")
			if strings.TrimSpace(text) != "" {
				el.CreateText(text)
			}
		}
	}
	return el
}

// stripAttributes removes the noise attributes from el and all elements
// beneath it.
func stripAttributes(el *etree.Element) {
	for _, key := range strippedAttrs {
		el.RemoveAttr(key)
	}
	for _, child := range el.ChildElements() {
		stripAttributes(child)
	}
}

func serialize(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el)
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}
