package matrix

import (
	"bytes"
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	type args struct {
		rows    []string
		columns []string
		data    []float64
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			"fits",
			args{[]string{"a", "b"}, []string{"x", "y", "z"}, []float64{1, 2, 3, 4, 5, 6}},
			false,
		},
		{
			"too few values",
			args{[]string{"a", "b"}, []string{"x", "y", "z"}, []float64{1, 2, 3}},
			true,
		},
		{
			"duplicate column",
			args{[]string{"a"}, []string{"x", "x"}, []float64{1, 2}},
			true,
		},
		{
			"empty",
			args{nil, nil, nil},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.args.rows, tt.args.columns, tt.args.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatrix_Access(t *testing.T) {
	m, err := FromRows(
		[]string{"a", "b"},
		[]string{"x", "y", "z"},
		[][]float64{{1, 2, 3}, {4, 5, 6}},
	)
	if err != nil {
		t.Fatal(err)
	}

	if r, c := m.Dims(); r != 2 || c != 3 {
		t.Errorf("Dims() = %d, %d, want 2, 3", r, c)
	}
	if got := m.At(1, 2); got != 6 {
		t.Errorf("At(1, 2) = %v, want 6", got)
	}
	if got := m.Row(1); !reflect.DeepEqual(got, []float64{4, 5, 6}) {
		t.Errorf("Row(1) = %v, want [4 5 6]", got)
	}

	col, err := m.Column("y")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(col, []float64{2, 5}) {
		t.Errorf("Column(y) = %v, want [2 5]", col)
	}
	if _, err := m.Column("w"); err == nil {
		t.Error("Column(w) expected an error for a missing column")
	}

	// returned slices must not alias the matrix
	row := m.Row(0)
	row[0] = 100
	if m.At(0, 0) != 1 {
		t.Error("Row() returned a slice that aliases the matrix")
	}
}

func TestConcat(t *testing.T) {
	a, _ := FromRow("a", []string{"x", "y"}, []float64{1, 2})
	b, _ := FromRow("b", []string{"x", "y"}, []float64{3, 4})
	c, _ := FromRow("c", []string{"y", "x"}, []float64{3, 4})

	got, err := Concat(a, b)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := New([]string{"a", "b"}, []string{"x", "y"}, []float64{1, 2, 3, 4})
	if !got.Equal(want) {
		t.Errorf("Concat() = %v, want %v", got, want)
	}

	if _, err := Concat(a, c); err == nil {
		t.Error("Concat() expected an error for differently ordered columns")
	}
}

func TestMatrix_WriteTSV(t *testing.T) {
	m, _ := FromRows(
		[]string{"s1", "s2"},
		[]string{"AA1", "GH5"},
		[][]float64{{2, 0}, {0.5, -1.25}},
	)

	var buf bytes.Buffer
	if err := m.WriteTSV(&buf, "# label"); err != nil {
		t.Fatal(err)
	}

	want := "# label\tAA1\tGH5\ns1\t2\t0\ns2\t0.5\t-1.25\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteTSV() = %q, want %q", got, want)
	}
}

func TestMatrix_WriteRead(t *testing.T) {
	m, _ := FromRows(
		[]string{"s1", "s2"},
		[]string{"pc01", "pc02", "pc03"},
		[][]float64{{1.5, 2, -3}, {0, 1e-9, 42}},
	)

	var buf bytes.Buffer
	if err := m.Write(&buf, "pca_"); err != nil {
		t.Fatal(err)
	}

	got, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "pca_")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(m) {
		t.Errorf("Read() = %v, want %v", got, m)
	}

	if _, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "other_"); err == nil {
		t.Error("Read() expected an error for a missing prefix")
	}
}
