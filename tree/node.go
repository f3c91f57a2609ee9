package tree

import (
	"github.com/mbruna/dendra/feature"
)

/*
Node is a node of a classification tree. A node is either terminal,
predicting a class with no children, or internal: it splits samples
with its criterion, routing the ones that satisfy it to the left child
and the rest to the right child.
*/
type Node struct {
	// An ID to identify the node
	ID string
	// The ID for the parent of the node in the tree
	ParentID string
	// IDs of the left and right children. Both empty on terminal nodes.
	LeftID  string
	RightID string
	// The predicate samples are routed by: satisfied goes left. Nil on
	// terminal nodes.
	Split feature.Criterion
	// Leaf marks the node as terminal.
	Leaf bool
	// The class predicted for samples reaching a terminal node.
	Class int
}
