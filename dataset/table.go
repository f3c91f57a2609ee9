/*
Package dataset provides the rectangular, per-column typed sample
storage decision trees are grown from and evaluated against.
*/
package dataset

import (
	"context"
	"fmt"

	"github.com/mbruna/dendra/feature"
)

/*
Table is a rectangular sample matrix whose columns are independently
typed by a feature: real columns hold float64 values, categorical
columns hold strings. Rows are appended while loading and the table is
treated as immutable afterwards; tree growing only ever takes row-index
views of it.
*/
type Table struct {
	features []feature.Feature
	realCols [][]float64
	catCols  [][]string
	count    int
}

/*
New takes a slice of features and returns an empty Table with one column
per feature.
*/
func New(features []feature.Feature) *Table {
	t := &Table{
		features: features,
		realCols: make([][]float64, len(features)),
		catCols:  make([][]string, len(features)),
	}
	return t
}

/*
FromRows takes a slice of features and a slice of rows and returns a
Table with all the rows appended, or an error if any row is rejected.
*/
func FromRows(features []feature.Feature, rows [][]interface{}) (*Table, error) {
	t := New(features)
	for i, row := range rows {
		if err := t.Append(row); err != nil {
			return nil, fmt.Errorf("appending row %d: %v", i, err)
		}
	}
	return t, nil
}

/*
Append takes a row of values, one per feature in column order, validates
each value against its feature and appends the row to the table. It
returns an error if the row width does not match the feature count or a
value is invalid for its column's feature.
*/
func (t *Table) Append(values []interface{}) error {
	if len(values) != len(t.features) {
		return fmt.Errorf("row has %d values for %d features", len(values), len(t.features))
	}
	for i, f := range t.features {
		if ok, err := f.Valid(values[i]); !ok {
			return fmt.Errorf("column %d: %v", i, err)
		}
	}
	for i, f := range t.features {
		switch f.(type) {
		case *feature.RealFeature:
			t.realCols[i] = append(t.realCols[i], values[i].(float64))
		case *feature.CategoricalFeature:
			t.catCols[i] = append(t.catCols[i], values[i].(string))
		}
	}
	t.count++
	return nil
}

/*
Count returns the number of rows in the table.
*/
func (t *Table) Count() int {
	return t.count
}

/*
Features returns the features typing the table's columns, in column
order.
*/
func (t *Table) Features() []feature.Feature {
	return t.features
}

/*
RealValues takes a column index and a slice of row indexes and returns
the float64 values of that column for those rows, in row order. The
column must be typed by a RealFeature.
*/
func (t *Table) RealValues(col int, rows []int) []float64 {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = t.realCols[col][r]
	}
	return values
}

/*
CategoricalValues takes a column index and a slice of row indexes and
returns the string values of that column for those rows, in row order.
The column must be typed by a CategoricalFeature.
*/
func (t *Table) CategoricalValues(col int, rows []int) []string {
	values := make([]string, len(rows))
	for i, r := range rows {
		values[i] = t.catCols[col][r]
	}
	return values
}

/*
Row takes a row index and returns a feature.Sample view of that row.
*/
func (t *Table) Row(i int) feature.Sample {
	return &rowSample{t, i}
}

type rowSample struct {
	table *Table
	row   int
}

/*
ValueFor returns the value the sample's row holds for the given feature,
or an error if the feature does not type any of the table's columns.
*/
func (rs *rowSample) ValueFor(ctx context.Context, f feature.Feature) (interface{}, error) {
	for i, tf := range rs.table.features {
		if tf.Name() != f.Name() {
			continue
		}
		switch tf.(type) {
		case *feature.RealFeature:
			return rs.table.realCols[i][rs.row], nil
		case *feature.CategoricalFeature:
			return rs.table.catCols[i][rs.row], nil
		}
	}
	return nil, fmt.Errorf("sample has no value for feature %s", f.Name())
}
