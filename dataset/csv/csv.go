/*
Package csv reads sample tables and their label vectors from CSV
streams.
*/
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mbruna/dendra/dataset"
	"github.com/mbruna/dendra/feature"
)

/*
ReadTable takes an io.Reader for a CSV stream, a slice of features and
the name of the label column and returns a dataset.Table with one column
per feature, the binary label vector, and an error if the stream cannot
be parsed.

The header or first row of the CSV content is expected to contain the
names of the given features, in any order, plus the label column. The
returned table's columns follow the given feature order, not the header
order, so downstream consumers can index it positionally. The rest of
the rows should consist of valid values for all features: parseable
float64 for real features, a known category for categorical ones, and
0 or 1 for the label. An empty label name means the stream carries no
labels, in which case a nil label vector is returned.
*/
func ReadTable(reader io.Reader, features []feature.Feature, label string) (*dataset.Table, []int, error) {
	featuresByName := make(map[string]feature.Feature)
	for _, f := range features {
		featuresByName[f.Name()] = f
	}
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %v", err)
	}
	columnFeatures, labelColumn, err := parseHeader(header, featuresByName, label)
	if err != nil {
		return nil, nil, err
	}
	// columns[i] holds the header position of features[i].
	columns := make([]int, len(features))
	for i, f := range features {
		columns[i] = -1
		for j, cf := range columnFeatures {
			if cf == f {
				columns[i] = j
			}
		}
		if columns[i] < 0 {
			return nil, nil, fmt.Errorf("parsing header: feature %s not present", f.Name())
		}
	}
	tbl := dataset.New(features)
	var labels []int
	values := make([]interface{}, len(features))
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading body: %v", err)
		}
		parsed, y, err := parseRow(row, columnFeatures, labelColumn)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing line %d: %v", l, err)
		}
		for i, j := range columns {
			values[i] = parsed[j]
		}
		if err = tbl.Append(values); err != nil {
			return nil, nil, fmt.Errorf("parsing line %d: %v", l, err)
		}
		if labelColumn >= 0 {
			labels = append(labels, y)
		}
	}
	return tbl, labels, nil
}

/*
ReadTableFromFilePath takes a filepath string, a slice of features and a
label column name, opens the file the filepath points to (STDIN if it is
empty) and uses ReadTable to parse a dataset.Table and label vector from
it.
*/
func ReadTableFromFilePath(filepath string, features []feature.Feature, label string) (*dataset.Table, []int, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, nil, fmt.Errorf("reading samples: %v", err)
		}
		defer f.Close()
	}
	tbl, labels, err := ReadTable(f, features, label)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return tbl, labels, err
}

func parseHeader(header []string, features map[string]feature.Feature, label string) ([]feature.Feature, int, error) {
	columnFeatures := make([]feature.Feature, len(header))
	labelColumn := -1
	for i, name := range header {
		if label != "" && name == label {
			labelColumn = i
			continue
		}
		f, ok := features[name]
		if !ok {
			return nil, 0, fmt.Errorf("parsing header: reference to unknown feature %s", name)
		}
		columnFeatures[i] = f
	}
	if label != "" && labelColumn < 0 {
		return nil, 0, fmt.Errorf("parsing header: label column %s not present", label)
	}
	return columnFeatures, labelColumn, nil
}

// parseRow converts a CSV row to typed values aligned with the header
// positions, leaving the label position nil.
func parseRow(row []string, columnFeatures []feature.Feature, labelColumn int) ([]interface{}, int, error) {
	if len(row) != len(columnFeatures) {
		return nil, 0, fmt.Errorf("row has %d values for %d columns", len(row), len(columnFeatures))
	}
	values := make([]interface{}, len(row))
	var label int
	for i, v := range row {
		if i == labelColumn {
			y, err := strconv.Atoi(v)
			if err != nil {
				return nil, 0, fmt.Errorf("converting label %q to int: %v", v, err)
			}
			label = y
			continue
		}
		switch columnFeatures[i].(type) {
		case *feature.RealFeature:
			fv, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, 0, fmt.Errorf("converting %s to float64: %v", v, err)
			}
			values[i] = fv
		default:
			values[i] = v
		}
	}
	return values, label, nil
}
