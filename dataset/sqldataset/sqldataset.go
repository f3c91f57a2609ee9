/*
Package sqldataset reads sample tables and label vectors from SQL
databases through database/sql. Connection helpers for concrete engines
live in the sqlite3adapter and pgadapter subpackages.
*/
package sqldataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mbruna/dendra/dataset"
	"github.com/mbruna/dendra/feature"
)

/*
ReadTable takes a context.Context, an open database handle, the name of
the table holding the samples, a slice of features and the name of the
label column, and returns a dataset.Table with one column per feature
and the binary label vector, or an error if the table cannot be queried
or a value does not fit its column's feature.

Real feature columns are scanned as float64, categorical ones as
strings, the label column as an integer. An empty label name means the
table carries no labels, in which case a nil label vector is returned.
*/
func ReadTable(ctx context.Context, db *sql.DB, table string, features []feature.Feature, label string) (*dataset.Table, []int, error) {
	columns := make([]string, 0, len(features)+1)
	for _, f := range features {
		columns = append(columns, f.Name())
	}
	if label != "" {
		columns = append(columns, label)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("querying samples from %s: %v", table, err)
	}
	defer rows.Close()

	tbl := dataset.New(features)
	var labels []int
	for rows.Next() {
		dest := make([]interface{}, 0, len(columns))
		for _, f := range features {
			switch f.(type) {
			case *feature.RealFeature:
				dest = append(dest, new(float64))
			default:
				dest = append(dest, new(string))
			}
		}
		var y int
		if label != "" {
			dest = append(dest, &y)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("scanning sample row: %v", err)
		}
		values := make([]interface{}, len(features))
		for i := range features {
			switch v := dest[i].(type) {
			case *float64:
				values[i] = *v
			case *string:
				values[i] = *v
			}
		}
		if err := tbl.Append(values); err != nil {
			return nil, nil, fmt.Errorf("appending sample row: %v", err)
		}
		if label != "" {
			labels = append(labels, y)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading samples from %s: %v", table, err)
	}
	return tbl, labels, nil
}
