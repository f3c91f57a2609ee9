package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mbruna/dendra/dataset"
	"github.com/mbruna/dendra/dataset/csv"
	"github.com/mbruna/dendra/dataset/mongodataset"
	"github.com/mbruna/dendra/dataset/npy"
	"github.com/mbruna/dendra/dataset/sqldataset"
	"github.com/mbruna/dendra/dataset/sqldataset/pgadapter"
	"github.com/mbruna/dendra/dataset/sqldataset/sqlite3adapter"
	"github.com/mbruna/dendra/feature"
	featureyaml "github.com/mbruna/dendra/feature/yaml"
	"github.com/mbruna/dendra/tree"
	treejson "github.com/mbruna/dendra/tree/json"
	mgo "gopkg.in/mgo.v2"
)

// loadFeatures parses the YAML metadata file and drops the label column
// from the result if it was declared there too.
func loadFeatures(metadataInput, label string) ([]feature.Feature, error) {
	features, err := featureyaml.ReadFeaturesFromFile(metadataInput)
	if err != nil {
		return nil, err
	}
	if label == "" {
		return features, nil
	}
	kept := features[:0]
	for _, f := range features {
		if f.Name() != label {
			kept = append(kept, f)
		}
	}
	return kept, nil
}

/*
readInput loads a sample table and its label vector from the given
input, dispatching on its form: a postgresql:// or mongodb:// URL, a
path to an SQLite3 (.db) file, a path to a NumPy (.npy) matrix (with
labels read from labelsInput), a path to a CSV file, or STDIN
interpreted as CSV when the input is empty. An empty label means the
input carries no labels.
*/
func readInput(ctx context.Context, input, labelsInput, sqlTable string, maxDBConns int, features []feature.Feature, label string) (*dataset.Table, []int, error) {
	switch {
	case strings.HasPrefix(input, "postgresql://"):
		db, err := pgadapter.Open(input, maxDBConns)
		if err != nil {
			return nil, nil, err
		}
		defer db.Close()
		return sqldataset.ReadTable(ctx, db, sqlTable, features, label)
	case strings.HasSuffix(input, ".db"):
		db, err := sqlite3adapter.Open(input, maxDBConns)
		if err != nil {
			return nil, nil, err
		}
		defer db.Close()
		return sqldataset.ReadTable(ctx, db, sqlTable, features, label)
	case strings.HasPrefix(input, "mongodb://"):
		session, err := mgo.Dial(input)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to mongodb: %v", err)
		}
		defer session.Close()
		return mongodataset.ReadTable(ctx, session, features, label)
	case strings.HasSuffix(input, ".npy"):
		tbl, err := npy.ReadTable(input)
		if err != nil {
			return nil, nil, err
		}
		var labels []int
		if labelsInput != "" {
			labels, err = npy.ReadLabels(labelsInput)
			if err != nil {
				return nil, nil, err
			}
		}
		return tbl, labels, nil
	}
	return csv.ReadTableFromFilePath(input, features, label)
}

func loadTree(path string, features []feature.Feature) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tree at %s: %v", path, err)
	}
	defer f.Close()
	ns := tree.NewMemoryNodeStore()
	ned := treejson.NewNodeEncodeDecoder(features)
	t, err := treejson.ReadTree(context.Background(), ned, features, ns, f)
	if err != nil {
		return nil, fmt.Errorf("parsing tree at %s: %v", path, err)
	}
	return t, nil
}

func outputTree(ctx context.Context, path string, t *tree.Tree) error {
	var f *os.File
	if path == "" {
		f = os.Stdout
	} else {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("creating tree output file %s: %v", path, err)
		}
		defer f.Close()
	}
	ned := treejson.NewNodeEncodeDecoder(t.Features)
	if err := treejson.WriteTree(ctx, t, ned, f); err != nil {
		return fmt.Errorf("writing tree: %v", err)
	}
	return nil
}
