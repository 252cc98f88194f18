package search

import (
	"github.com/BitWhispererSumedh/OperatorTree/optree"
)

// Renderer displays an equation's operator tree with matched features
// highlighted. Rendering is an external collaborator; the engine only
// prepares the (tree, title, features) triple.
type Renderer interface {
	Render(tree *optree.Graph, title string, features [][]string) error
}
