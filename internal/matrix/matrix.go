// Package matrix is a small row-major table of float64 values with
// named rows and columns. Counts, PCA coordinates, centroids, distances
// and RCDs all travel through the pipeline as a Matrix.
package matrix

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ccdmb/catastrophy/internal/npz"
	"github.com/pkg/errors"
)

// Matrix is an immutable table. Row labels are positional and need not be
// unique, column names are unique and can be looked up by name.
type Matrix struct {
	// rows are the sample (or class) labels, one per row of data
	rows []string

	// columns are the feature names, one per column of data
	columns []string

	// data holds len(rows) * len(columns) values, row major
	data []float64

	// index from a column name to its position
	index map[string]int
}

// New creates a Matrix from row labels, column names and row-major data.
// The data slice is copied.
func New(rows, columns []string, data []float64) (*Matrix, error) {
	if len(data) != len(rows)*len(columns) {
		return nil, fmt.Errorf(
			"matrix: %d values do not fit %d rows and %d columns",
			len(data), len(rows), len(columns),
		)
	}

	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, seen := index[c]; seen {
			return nil, fmt.Errorf("matrix: duplicate column name %q", c)
		}
		index[c] = i
	}

	return &Matrix{
		rows:    append([]string{}, rows...),
		columns: append([]string{}, columns...),
		data:    append([]float64{}, data...),
		index:   index,
	}, nil
}

// FromRows creates a Matrix from a slice of rows, each the same length as columns.
func FromRows(rows, columns []string, values [][]float64) (*Matrix, error) {
	if len(values) != len(rows) {
		return nil, fmt.Errorf("matrix: %d row labels for %d rows", len(rows), len(values))
	}

	data := make([]float64, 0, len(rows)*len(columns))
	for i, v := range values {
		if len(v) != len(columns) {
			return nil, fmt.Errorf(
				"matrix: row %d (%s) has %d values, expected %d",
				i, rows[i], len(v), len(columns),
			)
		}
		data = append(data, v...)
	}

	return New(rows, columns, data)
}

// FromRow creates a single row Matrix.
func FromRow(row string, columns []string, values []float64) (*Matrix, error) {
	return New([]string{row}, columns, values)
}

// Concat stacks matrices by rows. Every matrix must have exactly the same
// columns, in the same order. Concatenating nothing gives an empty Matrix.
func Concat(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return New(nil, nil, nil)
	}

	columns := ms[0].columns
	var rows []string
	var data []float64
	for i, m := range ms {
		if !sameStrings(columns, m.columns) {
			return nil, fmt.Errorf("matrix: columns of matrix %d differ from the first matrix", i)
		}
		rows = append(rows, m.rows...)
		data = append(data, m.data...)
	}

	return New(rows, columns, data)
}

// Rows returns a copy of the row labels.
func (m *Matrix) Rows() []string {
	return append([]string{}, m.rows...)
}

// Columns returns a copy of the column names.
func (m *Matrix) Columns() []string {
	return append([]string{}, m.columns...)
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (r, c int) {
	return len(m.rows), len(m.columns)
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*len(m.columns)+j]
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	c := len(m.columns)
	return append([]float64{}, m.data[i*c:(i+1)*c]...)
}

// Data returns a copy of the row-major values.
func (m *Matrix) Data() []float64 {
	return append([]float64{}, m.data...)
}

// ColumnIndex returns the position of the named column.
func (m *Matrix) ColumnIndex(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// Column returns a copy of the values in the named column.
func (m *Matrix) Column(name string) ([]float64, error) {
	j, ok := m.index[name]
	if !ok {
		return nil, fmt.Errorf("matrix: no column named %q", name)
	}

	col := make([]float64, len(m.rows))
	for i := range m.rows {
		col[i] = m.At(i, j)
	}
	return col, nil
}

// Equal reports whether both matrices have the same rows, columns and values.
// Values are compared exactly.
func (m *Matrix) Equal(o *Matrix) bool {
	if !sameStrings(m.rows, o.rows) || !sameStrings(m.columns, o.columns) {
		return false
	}
	for i, v := range m.data {
		if o.data[i] != v {
			return false
		}
	}
	return true
}

// WriteTSV writes a header line naming the columns and one line per row.
// rowsColname heads the column of row labels, eg "# label".
func (m *Matrix) WriteTSV(w io.Writer, rowsColname string) error {
	bw := bufio.NewWriter(w)

	header := append([]string{rowsColname}, m.columns...)
	if _, err := bw.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return err
	}

	fields := make([]string, len(m.columns)+1)
	for i, row := range m.rows {
		fields[0] = row
		for j := range m.columns {
			fields[j+1] = strconv.FormatFloat(m.At(i, j), 'f', -1, 64)
		}
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Pack adds the matrix to an archive as "<prefix>rows", "<prefix>columns"
// and "<prefix>arr".
func (m *Matrix) Pack(a *npz.Archive, prefix string) error {
	if err := a.PutStrings(prefix+"rows", npz.LabelWidth, m.rows); err != nil {
		return errors.Wrapf(err, "packing %srows", prefix)
	}
	if err := a.PutStrings(prefix+"columns", npz.LabelWidth, m.columns); err != nil {
		return errors.Wrapf(err, "packing %scolumns", prefix)
	}
	return a.PutFloat64(prefix+"arr", []int{len(m.rows), len(m.columns)}, m.data)
}

// Unpack reads a matrix stored with Pack under the same prefix.
func Unpack(a *npz.Archive, prefix string) (*Matrix, error) {
	rows, err := a.Strings(prefix + "rows")
	if err != nil {
		return nil, err
	}

	columns, err := a.Strings(prefix + "columns")
	if err != nil {
		return nil, err
	}

	data, shape, err := a.Float64(prefix + "arr")
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 || shape[0] != len(rows) || shape[1] != len(columns) {
		return nil, fmt.Errorf("matrix: %sarr has shape %v, expected [%d %d]", prefix, shape, len(rows), len(columns))
	}

	return New(rows, columns, data)
}

// Write stores the matrix alone in a new container.
func (m *Matrix) Write(w io.Writer, prefix string) error {
	a := npz.New()
	if err := m.Pack(a, prefix); err != nil {
		return err
	}
	return a.Write(w)
}

// Read loads a matrix written by Write.
func Read(r io.ReaderAt, size int64, prefix string) (*Matrix, error) {
	a, err := npz.Read(r, size)
	if err != nil {
		return nil, err
	}
	return Unpack(a, prefix)
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
