package pca

import (
	"bytes"
	"math"
	"reflect"
	"testing"

	"github.com/ccdmb/catastrophy/internal/matrix"
	"github.com/ccdmb/catastrophy/internal/npz"
)

func TestModel_Transform(t *testing.T) {
	model, err := New([]float64{1, 2}, []float64{1, 0, 0.5, 0.5}, 2)
	if err != nil {
		t.Fatal(err)
	}

	counts, _ := matrix.FromRows(
		[]string{"a", "b"},
		[]string{"AA1", "GH5"},
		[][]float64{{3, 6}, {1, 2}},
	)

	got, err := model.Transform(counts)
	if err != nil {
		t.Fatal(err)
	}

	want, _ := matrix.FromRows(
		[]string{"a", "b"},
		[]string{"pc01", "pc02"},
		[][]float64{{2, 3}, {0, 0}},
	)
	if !got.Equal(want) {
		t.Errorf("Transform() = %v, want %v", got.Data(), want.Data())
	}
}

func TestModel_TransformErrors(t *testing.T) {
	model, _ := New([]float64{1, 2}, []float64{1, 0}, 1)

	wrong, _ := matrix.FromRow("a", []string{"AA1", "GH5", "GT2"}, []float64{1, 2, 3})
	if _, err := model.Transform(wrong); err == nil {
		t.Error("Transform() expected an error for the wrong number of features")
	}

	empty, _ := matrix.New(nil, []string{"AA1", "GH5"}, nil)
	got, err := model.Transform(empty)
	if err != nil {
		t.Fatal(err)
	}
	if r, c := got.Dims(); r != 0 || c != 1 {
		t.Errorf("Transform() of no rows has dims %d, %d", r, c)
	}
}

func TestModel_Columns(t *testing.T) {
	model, _ := New([]float64{0}, make([]float64, 12), 12)

	got := model.Columns()
	if got[0] != "pc01" || got[9] != "pc10" || got[11] != "pc12" {
		t.Errorf("Columns() = %v", got)
	}
}

func TestFit(t *testing.T) {
	counts, _ := matrix.FromRows(
		[]string{"a", "b", "c"},
		[]string{"AA1", "GH5"},
		[][]float64{{0, 0}, {1, 1}, {5, 5}},
	)

	model, err := Fit(counts, 1)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(model.Mean, []float64{2, 2}) {
		t.Errorf("Mean = %v, want [2 2]", model.Mean)
	}

	// the sample furthest from the mean decides the sign
	half := 1 / math.Sqrt2
	for j := 0; j < 2; j++ {
		if got := model.Components.At(0, j); math.Abs(got-half) > 1e-9 {
			t.Errorf("Components[0, %d] = %v, want %v", j, got, half)
		}
	}

	projected, err := model.Transform(counts)
	if err != nil {
		t.Fatal(err)
	}
	pc01, _ := projected.Column("pc01")
	for i, want := range []float64{-2 * math.Sqrt2, -math.Sqrt2, 3 * math.Sqrt2} {
		if math.Abs(pc01[i]-want) > 1e-9 {
			t.Errorf("pc01[%d] = %v, want %v", i, pc01[i], want)
		}
	}
}

func TestFit_errors(t *testing.T) {
	counts, _ := matrix.FromRows(
		[]string{"a", "b", "c"},
		[]string{"AA1", "GH5"},
		[][]float64{{0, 0}, {1, 1}, {5, 5}},
	)

	for _, k := range []int{0, 3} {
		if _, err := Fit(counts, k); err == nil {
			t.Errorf("Fit(%d) expected an error", k)
		}
	}
}

func TestModel_PackUnpack(t *testing.T) {
	model, _ := New([]float64{0.1, 0.2, 0.3}, []float64{1, 2, 3, 4, 5, 6}, 2)

	a := npz.New()
	if err := model.Pack(a, "pca_model_"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := a.Write(&buf); err != nil {
		t.Fatal(err)
	}
	read, err := npz.ReadBytes(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}

	got, err := Unpack(read, "pca_model_")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Mean, model.Mean) {
		t.Errorf("Mean = %v, want %v", got.Mean, model.Mean)
	}
	if !reflect.DeepEqual(got.Components.RawMatrix().Data, model.Components.RawMatrix().Data) {
		t.Errorf("Components = %v, want %v", got.Components.RawMatrix().Data, model.Components.RawMatrix().Data)
	}
}
