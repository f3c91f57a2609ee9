/*
Package npy reads sample tables and label vectors from NumPy .npy
files, for interoperating with Python-produced data.
*/
package npy

import (
	"fmt"
	"os"

	"github.com/mbruna/dendra/dataset"
	"github.com/mbruna/dendra/feature"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

/*
ReadTable takes the path of a .npy file holding a 2D float64 matrix and
returns a dataset.Table with its rows, all columns typed as real
features named x0, x1... in column order, or an error if the file
cannot be read.
*/
func ReadTable(path string) (*dataset.Table, error) {
	m, err := readDense(path)
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	features := make([]feature.Feature, cols)
	for j := range features {
		features[j] = feature.NewRealFeature(fmt.Sprintf("x%d", j))
	}
	tbl := dataset.New(features)
	values := make([]interface{}, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			values[j] = m.At(i, j)
		}
		if err := tbl.Append(values); err != nil {
			return nil, fmt.Errorf("reading %s: %v", path, err)
		}
	}
	return tbl, nil
}

/*
ReadLabels takes the path of a .npy file holding a float64 vector (or
single-column matrix) of binary labels and returns the labels as ints,
or an error if the file cannot be read or a value is not integral.
*/
func ReadLabels(path string) ([]int, error) {
	m, err := readDense(path)
	if err != nil {
		return nil, err
	}
	rows, cols := m.Dims()
	at := func(i int) float64 { return m.At(i, 0) }
	n := rows
	if cols != 1 {
		if rows != 1 {
			return nil, fmt.Errorf("reading labels from %s: expected a vector, got %dx%d", path, rows, cols)
		}
		at = func(i int) float64 { return m.At(0, i) }
		n = cols
	}
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		v := at(i)
		labels[i] = int(v)
		if float64(labels[i]) != v {
			return nil, fmt.Errorf("reading labels from %s: value %v at row %d is not an integer", path, v, i)
		}
	}
	return labels, nil
}

func readDense(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening npy file %s: %v", path, err)
	}
	defer f.Close()
	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading npy file %s: %v", path, err)
	}
	m := &mat.Dense{}
	if err := r.Read(m); err != nil {
		return nil, fmt.Errorf("reading npy file %s: %v", path, err)
	}
	return m, nil
}
