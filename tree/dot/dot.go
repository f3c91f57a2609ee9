/*
Package dot renders fitted trees with graphviz for visual inspection:
internal nodes are labelled with their split criterion and leaves with
their predicted class.
*/
package dot

import (
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/mbruna/dendra/tree"
)

var formats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"dot": graphviz.XDOT,
	"jpg": graphviz.JPG,
}

/*
RenderFile takes a context.Context, a tree, a format string (png, svg,
dot or jpg) and a file path and renders the tree to the file in the
given format, or returns an error if the format is unknown or the tree
cannot be drawn or rendered.
*/
func RenderFile(ctx context.Context, t *tree.Tree, format, path string) error {
	gformat, ok := formats[format]
	if !ok {
		return fmt.Errorf("rendering tree: unknown format %q", format)
	}
	gv, graph, err := Draw(ctx, t)
	if err != nil {
		return fmt.Errorf("rendering tree: %v", err)
	}
	defer func() {
		graph.Close()
		gv.Close()
	}()
	if err := gv.RenderFilename(graph, gformat, path); err != nil {
		return fmt.Errorf("rendering tree to %s: %v", path, err)
	}
	return nil
}

/*
Draw takes a context.Context and a tree and returns a graphviz instance
and graph with one graph node per tree node and one edge per
parent-child link, or an error if the tree cannot be traversed.
*/
func Draw(ctx context.Context, t *tree.Tree) (*graphviz.Graphviz, *cgraph.Graph, error) {
	gv := graphviz.New()
	graph, err := gv.Graph()
	if err != nil {
		return nil, nil, err
	}
	if err := drawSubtree(ctx, graph, t, t.RootID, nil); err != nil {
		graph.Close()
		gv.Close()
		return nil, nil, err
	}
	return gv, graph, nil
}

func drawSubtree(ctx context.Context, g *cgraph.Graph, t *tree.Tree, nodeID string, parent *cgraph.Node) error {
	n, err := t.Get(ctx, nodeID)
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("drawing tree: node %q not found", nodeID)
	}
	current, err := g.CreateNode(nodeID)
	if err != nil {
		return err
	}
	if parent != nil {
		if _, err := g.CreateEdge("", parent, current); err != nil {
			return err
		}
	}
	if n.Leaf {
		current.Set("label", fmt.Sprintf("class %d", n.Class))
		current.Set("shape", "box")
		return nil
	}
	current.Set("label", fmt.Sprintf("%v", n.Split))
	if err := drawSubtree(ctx, g, t, n.LeftID, current); err != nil {
		return err
	}
	return drawSubtree(ctx, g, t, n.RightID, current)
}
