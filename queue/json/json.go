/*
Package json provides encoding of queue tasks as JSON, so that queues
with external backends can store them.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mbruna/dendra/queue"
	"github.com/mbruna/dendra/tree"
)

/*
TaskEncodeDecoder is an interface for objects
that allow encoding tasks as slices of bytes and decoding
them back to tasks. It is used to serialize tasks into a
representation to store on external queue backends.
*/
type TaskEncodeDecoder interface {

	//Encode receives a *queue.Task
	//and returns a slice of bytes with the task encoded or an
	//error if the encoding could not be performed for
	//some reason.
	Encode(context.Context, *queue.Task) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a *queue.Task decoded from the slice of bytes
	//or an error if the decoding could not be performed
	//for some reason.
	Decode(context.Context, []byte) (*queue.Task, error)
}

type jsonEncodeDecoder struct {
	ns tree.NodeStore
}

type jsonTask struct {
	NodeID string `json:"id"`
	Rows   []int  `json:"rows"`
	Depth  int    `json:"depth"`
}

/*
New takes a tree.NodeStore and returns a TaskEncodeDecoder that encodes
tasks by node ID and resolves the node against the store when decoding.
Workers sharing a queue must share the node store and the training set;
tasks only carry row indexes into the latter.
*/
func New(ns tree.NodeStore) TaskEncodeDecoder {
	return &jsonEncodeDecoder{ns}
}

func (jed *jsonEncodeDecoder) Encode(ctx context.Context, t *queue.Task) ([]byte, error) {
	return json.Marshal(&jsonTask{NodeID: t.ID(), Rows: t.Rows, Depth: t.Depth})
}

func (jed *jsonEncodeDecoder) Decode(ctx context.Context, data []byte) (*queue.Task, error) {
	jt := &jsonTask{}
	err := json.Unmarshal(data, jt)
	if err != nil {
		return nil, fmt.Errorf("decoding task from json: %v", err)
	}
	t := &queue.Task{Rows: jt.Rows, Depth: jt.Depth}
	t.Node, err = jed.ns.Get(ctx, jt.NodeID)
	if err != nil {
		return nil, fmt.Errorf("decoding json task: getting task node: %v", err)
	}
	if t.Node == nil {
		return nil, fmt.Errorf("decoding json task: could not get node %q from node store", jt.NodeID)
	}
	return t, nil
}
