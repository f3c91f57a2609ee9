package queue

import (
	"fmt"

	"github.com/mbruna/dendra/tree"
)

// Task represents a tree.Node pending expansion
// on a growing tree.
type Task struct {
	// The node to be expanded
	Node *tree.Node
	// The indexes of the training-table rows that reached the node,
	// i.e. the rows satisfying the splits on the path from the root.
	Rows []int
	// The depth of the node, 0 for the root.
	Depth int
}

// ID returns a string that identifies the
// task, the ID of its Node.
func (t *Task) ID() string {
	return t.Node.ID
}

func (t *Task) String() string {
	return fmt.Sprintf("{Task %s}", t.Node.ID)
}
