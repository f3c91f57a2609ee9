/*
Package mongodataset reads sample tables and label vectors from a
MongoDB collection.
*/
package mongodataset

import (
	"context"
	"fmt"

	"github.com/mbruna/dendra/dataset"
	"github.com/mbruna/dendra/feature"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

const samplesCollectionName = "samples"

/*
ReadTable takes a context.Context, a MongoDB session, a slice of
features and the name of the label field, and returns a dataset.Table
with one column per feature and the binary label vector read from the
samples collection on the session's default database, or an error if
the collection cannot be iterated or a document's value does not fit
its feature.

Real feature fields are expected to hold numbers, categorical ones
strings and the label field integers. An empty label name means the
documents carry no labels, in which case a nil label vector is
returned.
*/
func ReadTable(ctx context.Context, session *mgo.Session, features []feature.Feature, label string) (*dataset.Table, []int, error) {
	tbl := dataset.New(features)
	var labels []int
	iter := session.DB("").C(samplesCollectionName).Find(nil).Iter()
	defer iter.Close()
	var doc bson.M
	for iter.Next(&doc) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		values := make([]interface{}, len(features))
		for i, f := range features {
			v, ok := doc[f.Name()]
			if !ok {
				return nil, nil, fmt.Errorf("sample %v has no value for feature %s", doc["_id"], f.Name())
			}
			values[i] = normalize(v)
		}
		if err := tbl.Append(values); err != nil {
			return nil, nil, fmt.Errorf("appending sample %v: %v", doc["_id"], err)
		}
		if label != "" {
			y, ok := intValue(doc[label])
			if !ok {
				return nil, nil, fmt.Errorf("sample %v has no integer label %s", doc["_id"], label)
			}
			labels = append(labels, y)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading samples from mongodb: %v", err)
	}
	return tbl, labels, nil
}

// normalize widens the numeric types bson decodes into to float64, the
// representation real features expect.
func normalize(v interface{}) interface{} {
	switch v := v.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	}
	return v
}

func intValue(v interface{}) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if float64(int(v)) == v {
			return int(v), true
		}
	}
	return 0, false
}
