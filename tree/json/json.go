/*
Package json provides encoding of tree nodes and whole trees as JSON,
for persisting fitted trees and for node stores with external backends.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mbruna/dendra/feature"
	"github.com/mbruna/dendra/tree"
)

/*
NodeEncodeDecoder is an interface for objects
that allow encoding nodes into slices of
bytes and decoding them back to nodes.
*/
type NodeEncodeDecoder interface {

	//Encode receives a *tree.Node
	//and returns a slice of bytes with the node
	//encoded or an error if the encoding could not
	//be performed for some reason.
	Encode(*tree.Node) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a *tree.Node decoded from the
	//slice of bytes or an error if the decoding
	//could not be performed for some reason.
	Decode([]byte) (*tree.Node, error)
}

type nodeEncodeDecoder struct {
	features []feature.Feature
}

type jsonNode struct {
	ID       string         `json:"id"`
	ParentID string         `json:"pId,omitempty"`
	LeftID   string         `json:"l,omitempty"`
	RightID  string         `json:"r,omitempty"`
	Split    *jsonCriterion `json:"split,omitempty"`
	Leaf     bool           `json:"leaf,omitempty"`
	Class    int            `json:"class,omitempty"`
}

type jsonCriterion struct {
	Feature    string   `json:"f"`
	Threshold  *float64 `json:"t,omitempty"`
	Categories []string `json:"in,omitempty"`
}

/*
NewNodeEncodeDecoder takes the features a tree's splits are expressed
over and returns a NodeEncodeDecoder that resolves split criteria
against them when decoding.
*/
func NewNodeEncodeDecoder(features []feature.Feature) NodeEncodeDecoder {
	return &nodeEncodeDecoder{features}
}

func (ned *nodeEncodeDecoder) Encode(n *tree.Node) ([]byte, error) {
	jn := &jsonNode{
		ID:       n.ID,
		ParentID: n.ParentID,
		LeftID:   n.LeftID,
		RightID:  n.RightID,
		Leaf:     n.Leaf,
		Class:    n.Class,
	}
	if n.Split != nil {
		jc, err := encodeCriterion(n.Split)
		if err != nil {
			return nil, err
		}
		jn.Split = jc
	}
	return json.Marshal(jn)
}

func (ned *nodeEncodeDecoder) Decode(data []byte) (*tree.Node, error) {
	jn := &jsonNode{}
	err := json.Unmarshal(data, jn)
	if err != nil {
		return nil, err
	}
	n := &tree.Node{
		ID:       jn.ID,
		ParentID: jn.ParentID,
		LeftID:   jn.LeftID,
		RightID:  jn.RightID,
		Leaf:     jn.Leaf,
		Class:    jn.Class,
	}
	if jn.Split != nil {
		n.Split, err = ned.decodeCriterion(jn.Split)
		if err != nil {
			return nil, fmt.Errorf("unmarshalling node %v: %v", n.ID, err)
		}
	}
	return n, nil
}

func encodeCriterion(c feature.Criterion) (*jsonCriterion, error) {
	switch c := c.(type) {
	case feature.ThresholdCriterion:
		t := c.Threshold()
		return &jsonCriterion{Feature: c.Feature().Name(), Threshold: &t}, nil
	case feature.CategorySetCriterion:
		return &jsonCriterion{Feature: c.Feature().Name(), Categories: c.Categories()}, nil
	}
	return nil, fmt.Errorf("cannot encode criterion of type %T", c)
}

func (ned *nodeEncodeDecoder) decodeCriterion(jc *jsonCriterion) (feature.Criterion, error) {
	var nf feature.Feature
	for _, f := range ned.features {
		if f.Name() == jc.Feature {
			nf = f
			break
		}
	}
	if nf == nil {
		return nil, fmt.Errorf("unknown feature %v", jc.Feature)
	}
	if jc.Threshold != nil {
		rf, ok := nf.(*feature.RealFeature)
		if !ok {
			return nil, fmt.Errorf("feature %v is not real but its criterion has a threshold", jc.Feature)
		}
		return feature.NewThresholdCriterion(rf, *jc.Threshold), nil
	}
	cf, ok := nf.(*feature.CategoricalFeature)
	if !ok {
		return nil, fmt.Errorf("feature %v is not categorical but its criterion has a category set", jc.Feature)
	}
	return feature.NewCategorySetCriterion(cf, jc.Categories), nil
}

type jsonTree struct {
	RootID string            `json:"rootID"`
	Nodes  []json.RawMessage `json:"nodes"`
}

/*
WriteTree takes a context.Context, a pointer to a tree.Tree, a
NodeEncodeDecoder and an io.Writer and serializes the given tree as JSON
onto the io.Writer.
A tree is serialized as a JSON object with the following fields:
  - "rootID": a string with the ID of the node at the root of the tree
  - "nodes": an array containing the nodes that can be traversed on the
    tree, serialized by the given NodeEncodeDecoder.

An error is returned if the tree cannot be traversed, serialized or
written onto the io.Writer.
*/
func WriteTree(ctx context.Context, t *tree.Tree, ned NodeEncodeDecoder, w io.Writer) error {
	jt := &jsonTree{RootID: t.RootID}
	err := t.Traverse(ctx, false, func(ctx context.Context, n *tree.Node) error {
		data, err := ned.Encode(n)
		if err != nil {
			return err
		}
		jt.Nodes = append(jt.Nodes, json.RawMessage(data))
		return nil
	})
	if err != nil {
		return fmt.Errorf("serializing tree: %v", err)
	}
	enc := json.NewEncoder(w)
	return enc.Encode(jt)
}

/*
ReadTree takes a context.Context, a NodeEncodeDecoder, a slice of
features, a tree.NodeStore and an io.Reader, unmarshals a tree written
by WriteTree from the io.Reader, stores its nodes on the given node
store and returns the tree, or an error if the JSON cannot be read or
any node cannot be decoded or stored.
*/
func ReadTree(ctx context.Context, ned NodeEncodeDecoder, features []feature.Feature, ns tree.NodeStore, r io.Reader) (*tree.Tree, error) {
	jt := &jsonTree{}
	dec := json.NewDecoder(r)
	if err := dec.Decode(jt); err != nil {
		return nil, fmt.Errorf("parsing tree json: %v", err)
	}
	if jt.RootID == "" {
		return nil, fmt.Errorf("parsing tree json: missing root node ID")
	}
	for _, data := range jt.Nodes {
		n, err := ned.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("parsing tree json: %v", err)
		}
		if err := ns.Store(ctx, n); err != nil {
			return nil, fmt.Errorf("storing decoded node %v: %v", n.ID, err)
		}
	}
	return tree.New(jt.RootID, ns, features), nil
}
