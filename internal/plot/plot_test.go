package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ccdmb/catastrophy/internal/matrix"
	"github.com/ccdmb/catastrophy/internal/model"
)

func testData(t *testing.T) (*model.PCAWithLabels, *model.PCAWithLabels) {
	t.Helper()

	pcs := []string{"pc01", "pc02"}
	training, err := matrix.FromRows([]string{"g1", "g2", "g3"}, pcs, [][]float64{{1, 2}, {-1, 0.5}, {0, -3}})
	if err != nil {
		t.Fatal(err)
	}
	pred, err := matrix.FromRow("new", pcs, []float64{0.5, 0.5})
	if err != nil {
		t.Fatal(err)
	}

	return &model.PCAWithLabels{
			PCA: training,
			Classes: []model.NomenclatureClass{
				{Label: "g1", Classes: [3]string{"saprotroph", "saprotroph", "saprotroph 1"}},
				{Label: "g2", Classes: [3]string{"biotroph", "biotroph", "biotroph 1"}},
				{Label: "g3", Classes: [3]string{"saprotroph", "mesotroph", "mesotroph 1"}},
			},
		}, &model.PCAWithLabels{
			PCA: pred,
		}
}

func TestPCA(t *testing.T) {
	training, predictions := testData(t)

	filename := filepath.Join(t.TempDir(), "pca.png")
	if err := PCA(training, predictions, "nomenclature2", filename); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(got, []byte("\x89PNG")) {
		t.Error("PCA() didn't write a PNG")
	}
}

func TestNew(t *testing.T) {
	training, predictions := testData(t)

	tests := []struct {
		name         string
		nomenclature string
		predictions  *model.PCAWithLabels
		wantErr      bool
	}{
		{"with predictions", "nomenclature1", predictions, false},
		{"training only", "nomenclature3", nil, false},
		{"unknown nomenclature", "nomenclature4", predictions, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(training, tt.predictions, tt.nomenclature)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_oneComponent(t *testing.T) {
	pca, _ := matrix.FromRow("g1", []string{"pc01"}, []float64{1})

	if _, err := New(&model.PCAWithLabels{PCA: pca}, nil, "nomenclature1"); err == nil {
		t.Error("New() expected an error with one component")
	}
}
