package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/mbruna/dendra/dataset"
	"github.com/mbruna/dendra/feature"
)

// Tree represents a fitted binary classification tree. It is composed
// of a NodeStore where all its nodes are kept, the id for the root node
// of the tree and the features its splits are expressed over. Once
// grown, a tree is only ever read.
type Tree struct {
	NodeStore
	RootID   string
	Features []feature.Feature
}

// PredictionError represents an error related with predictions
type PredictionError string

/*
ErrMalformedTree is the error returned by the Predict method of a tree
when traversing it reaches a node that is neither terminal nor has both
of its children available on the node store. A correctly grown tree
never produces it: every internal node's split leaves two non-empty
children.
*/
const ErrMalformedTree = PredictionError("malformed tree: internal node without both children")

func (pe PredictionError) Error() string {
	return string(pe)
}

// New takes the ID for the root Node, a NodeStore and the features the
// tree splits on and returns a tree composed of the nodes in the
// NodeStore reachable from the node with the given root ID.
func New(rootID string, nodeStore NodeStore, features []feature.Feature) *Tree {
	return &Tree{nodeStore, rootID, features}
}

// Predict takes a sample and returns the class the tree predicts for
// it, or an error if the prediction could not be made. The tree is
// traversed from the root: at a terminal node the node's class is
// returned; at an internal node the sample is evaluated against the
// node's split and traversal continues into the left child if it
// satisfies it, the right child otherwise.
func (t *Tree) Predict(ctx context.Context, s feature.Sample) (int, error) {
	if t == nil {
		return 0, fmt.Errorf("nil tree cannot predict samples")
	}
	n, err := t.Get(ctx, t.RootID)
	if err != nil {
		return 0, fmt.Errorf("predicting sample: retrieving node %v: %v", t.RootID, err)
	}
	if n == nil {
		return 0, fmt.Errorf("predicting sample: root node %v not found", t.RootID)
	}
	for !n.Leaf {
		if n.Split == nil || n.LeftID == "" || n.RightID == "" {
			return 0, ErrMalformedTree
		}
		ok, err := n.Split.SatisfiedBy(ctx, s)
		if err != nil {
			return 0, err
		}
		childID := n.RightID
		if ok {
			childID = n.LeftID
		}
		n, err = t.Get(ctx, childID)
		if err != nil {
			return 0, fmt.Errorf("predicting sample: retrieving node %v: %v", childID, err)
		}
		if n == nil {
			return 0, ErrMalformedTree
		}
	}
	return n.Class, nil
}

/*
PredictTable takes a dataset.Table and returns one predicted class per
row, aligned positionally with the table's rows, or an error if any row
cannot be predicted.
*/
func (t *Tree) PredictTable(ctx context.Context, tbl *dataset.Table) ([]int, error) {
	predicted := make([]int, tbl.Count())
	for i := 0; i < tbl.Count(); i++ {
		c, err := t.Predict(ctx, tbl.Row(i))
		if err != nil {
			return nil, fmt.Errorf("predicting row %d: %v", i, err)
		}
		predicted[i] = c
	}
	return predicted, nil
}

/*
Test takes a dataset.Table and a matching label vector and returns the
prediction accuracy of the tree over the table, or an error if a
prediction could not be made.
*/
func (t *Tree) Test(ctx context.Context, tbl *dataset.Table, labels []int) (float64, error) {
	if tbl.Count() != len(labels) {
		return 0.0, fmt.Errorf("testing tree: %d rows for %d labels", tbl.Count(), len(labels))
	}
	predicted, err := t.PredictTable(ctx, tbl)
	if err != nil {
		return 0.0, err
	}
	var hits float64
	for i, p := range predicted {
		if p == labels[i] {
			hits += 1.0
		}
	}
	return hits / float64(len(labels)), nil
}

// Traverse takes a context, a bottomup boolean and an
// error-returning function that takes a context and a node
// as parameters, and goes through the tree running the
// function with the context and every traversed node.
// Traverse will call the function with a parent node before
// calling it for its children if bottomup is false, and
// call it after its children if bottomup is true.
// If the given context times out or is cancelled, the context
// error is returned. If a node cannot be retrieved from the
// tree's node store, the obtained error is returned. If the
// call to the function returns an error, the traversing is
// aborted and the error is returned. Otherwise, when the
// traversing is over, nil is returned.
func (t *Tree) Traverse(ctx context.Context, bottomup bool, f func(context.Context, *Node) error) error {
	n, err := t.NodeStore.Get(ctx, t.RootID)
	if err != nil {
		return err
	}
	return t.traverse(ctx, n, bottomup, f)
}

func (t *Tree) traverse(ctx context.Context, n *Node, bottomup bool, f func(context.Context, *Node) error) error {
	err := ctx.Err()
	if err != nil {
		return err
	}
	if !bottomup {
		if err = f(ctx, n); err != nil {
			return err
		}
	}
	for _, childID := range []string{n.LeftID, n.RightID} {
		if childID == "" {
			continue
		}
		child, err := t.NodeStore.Get(ctx, childID)
		if err != nil {
			return err
		}
		if err = t.traverse(ctx, child, bottomup, f); err != nil {
			return err
		}
	}
	if bottomup {
		if err = f(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) String() string {
	return t.subtreeString(t.RootID)
}

func (t *Tree) subtreeString(nodeID string) string {
	n, err := t.NodeStore.Get(context.TODO(), nodeID)
	if err != nil {
		return fmt.Sprintf("ERROR: %s\n", err.Error())
	}
	result := fmt.Sprintf("[%s]\n", nodeID)
	if n.Leaf {
		result = fmt.Sprintf("%s{ class %d }\n \n", result, n.Class)
		return result
	}
	result = fmt.Sprintf("%s{ %v }\n|\n", result, n.Split)
	childIDs := []string{n.LeftID, n.RightID}
	for i, childID := range childIDs {
		for j, line := range strings.Split(t.subtreeString(childID), "\n") {
			if len(line) > 0 {
				if j == 0 {
					result = fmt.Sprintf("%s|__%s\n", result, line)
				} else {
					if i == len(childIDs)-1 {
						result = fmt.Sprintf("%s   %s\n", result, line)
					} else {
						result = fmt.Sprintf("%s|  %s\n", result, line)
					}
				}
			}
		}
	}
	return result
}
