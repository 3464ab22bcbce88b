// Package model bundles everything needed to classify a proteome: the
// HMM vocabulary of a dbCAN release, the PCA projection, the class
// centroids of each nomenclature and the training data they came from.
package model

import (
	"fmt"
	"io"
	"sort"

	"github.com/ccdmb/catastrophy/internal/centroid"
	"github.com/ccdmb/catastrophy/internal/matrix"
	"github.com/ccdmb/catastrophy/internal/npz"
	"github.com/ccdmb/catastrophy/internal/pca"
	"github.com/pkg/errors"
)

// DefaultComponents is the number of principal components of a trained model.
const DefaultComponents = 16

// Model is read only once built. Predict doesn't change it.
type Model struct {
	HMMLengths *HMMLengths
	PCA        *pca.Model

	// Centroids has the class centroids of each of Nomenclatures, in order
	Centroids [3]*centroid.Centroids

	TrainingData *PCAWithLabels
}

// ColumnError is returned when counts don't have the model's columns.
type ColumnError struct {
	Got, Want []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf(
		"counts have %d columns that don't match the %d HMMs of the model, "+
			"the columns must be the model's HMM names in sorted order",
		len(e.Got), len(e.Want),
	)
}

// New checks that the parts of a model fit together.
func New(lengths *HMMLengths, p *pca.Model, centroids [3]*centroid.Centroids, training *PCAWithLabels) (*Model, error) {
	if p.NFeatures() != lengths.Size() {
		return nil, fmt.Errorf("the PCA model has %d features but there are %d HMMs", p.NFeatures(), lengths.Size())
	}

	pcs := p.Columns()
	for i, c := range centroids {
		if c == nil {
			return nil, fmt.Errorf("missing centroids for %s", Nomenclatures[i])
		}
		if !sameStrings(c.Matrix().Columns(), pcs) {
			return nil, fmt.Errorf("the %s centroids don't have the PCA model's %d dimensions", Nomenclatures[i], len(pcs))
		}
	}

	if training == nil || training.PCA == nil {
		return nil, fmt.Errorf("missing training data")
	}

	return &Model{
		HMMLengths:   lengths,
		PCA:          p,
		Centroids:    centroids,
		TrainingData: training,
	}, nil
}

// Predict projects counts into PCA space and scores each sample against
// the classes of every nomenclature. The columns of counts must be the
// model's HMM names, sorted.
func (m *Model) Predict(counts *matrix.Matrix) (*PCAWithLabels, error) {
	if want := m.HMMLengths.Names(); !sameStrings(counts.Columns(), want) {
		return nil, &ColumnError{Got: counts.Columns(), Want: want}
	}

	projected, err := m.PCA.Transform(counts)
	if err != nil {
		return nil, err
	}

	var results []RCDResult
	for i, c := range m.Centroids {
		rcd, err := c.RCD(projected)
		if err != nil {
			return nil, errors.Wrapf(err, "scoring %s", Nomenclatures[i])
		}
		results = append(results, RCDFromMatrix(rcd, Nomenclatures[i])...)
	}

	return &PCAWithLabels{PCA: projected, RCD: results}, nil
}

// Fit trains a model from counts of training genomes and their known
// classes. nomenclatures, if not nil, lists the expected classes of each
// nomenclature, and every class must be represented by the training data.
func Fit(
	counts *matrix.Matrix,
	classes []NomenclatureClass,
	nomenclatures map[string][]string,
	lengths *HMMLengths,
	nComponents int,
) (*Model, error) {
	if want := lengths.Names(); !sameStrings(counts.Columns(), want) {
		return nil, &ColumnError{Got: counts.Columns(), Want: want}
	}

	known := make(map[string]NomenclatureClass, len(classes))
	for _, c := range classes {
		if _, dup := known[c.Label]; dup {
			return nil, fmt.Errorf("the label %s is classified more than once", c.Label)
		}
		known[c.Label] = c
	}

	// classes in the order of the counts
	ordered := make([]NomenclatureClass, 0, len(classes))
	for _, label := range counts.Rows() {
		c, ok := known[label]
		if !ok {
			return nil, fmt.Errorf("no classes were given for the training genome %s", label)
		}
		ordered = append(ordered, c)
	}

	for i, n := range Nomenclatures {
		if nomenclatures == nil {
			break
		}
		want, ok := nomenclatures[n]
		if !ok {
			return nil, fmt.Errorf("no classes were given for %s", n)
		}
		if err := sameSet(n, classesOf(ordered, i), want); err != nil {
			return nil, err
		}
	}

	p, err := pca.Fit(counts, nComponents)
	if err != nil {
		return nil, errors.Wrap(err, "fitting the PCA")
	}
	projected, err := p.Transform(counts)
	if err != nil {
		return nil, err
	}

	var centroids [3]*centroid.Centroids
	var results []RCDResult
	for i, n := range Nomenclatures {
		if centroids[i], err = centroid.Fit(projected, classesOf(ordered, i)); err != nil {
			return nil, errors.Wrapf(err, "finding the %s centroids", n)
		}

		rcd, err := centroids[i].RCD(projected)
		if err != nil {
			return nil, err
		}
		results = append(results, RCDFromMatrix(rcd, n)...)
	}

	training := &PCAWithLabels{PCA: projected, RCD: results, Classes: ordered}
	return New(lengths, p, centroids, training)
}

// Pack adds every part of the model to an archive, each key beginning with prefix.
func (m *Model) Pack(a *npz.Archive, prefix string) error {
	if err := m.HMMLengths.Pack(a, prefix+"hmm_lengths_"); err != nil {
		return errors.Wrap(err, "packing HMM lengths")
	}
	if err := m.PCA.Pack(a, prefix+"pca_model_"); err != nil {
		return errors.Wrap(err, "packing the PCA model")
	}
	for i, c := range m.Centroids {
		if err := c.Pack(a, fmt.Sprintf("%sn%d_centroids_", prefix, i+1)); err != nil {
			return errors.Wrapf(err, "packing the %s centroids", Nomenclatures[i])
		}
	}
	if err := m.TrainingData.Pack(a, prefix+"training_data_"); err != nil {
		return errors.Wrap(err, "packing the training data")
	}
	return nil
}

// Unpack reads a model stored with Pack.
func Unpack(a *npz.Archive, prefix string) (*Model, error) {
	lengths, err := UnpackHMMLengths(a, prefix+"hmm_lengths_")
	if err != nil {
		return nil, errors.Wrap(err, "reading HMM lengths")
	}

	p, err := pca.Unpack(a, prefix+"pca_model_")
	if err != nil {
		return nil, errors.Wrap(err, "reading the PCA model")
	}

	var centroids [3]*centroid.Centroids
	for i := range centroids {
		if centroids[i], err = centroid.Unpack(a, fmt.Sprintf("%sn%d_centroids_", prefix, i+1)); err != nil {
			return nil, errors.Wrapf(err, "reading the %s centroids", Nomenclatures[i])
		}
	}

	training, err := UnpackPCAWithLabels(a, prefix+"training_data_")
	if err != nil {
		return nil, errors.Wrap(err, "reading the training data")
	}

	return New(lengths, p, centroids, training)
}

// Write writes the model as a new archive.
func (m *Model) Write(w io.Writer, prefix string) error {
	a := npz.New()
	if err := m.Pack(a, prefix); err != nil {
		return err
	}
	return a.Write(w)
}

// WriteFile writes the model to a file.
func (m *Model) WriteFile(filename, prefix string) error {
	a := npz.New()
	if err := m.Pack(a, prefix); err != nil {
		return err
	}
	return a.WriteFile(filename)
}

// Read reads a model from an archive of size bytes.
func Read(r io.ReaderAt, size int64, prefix string) (*Model, error) {
	a, err := npz.Read(r, size)
	if err != nil {
		return nil, err
	}
	return Unpack(a, prefix)
}

// ReadFile reads a model from a file.
func ReadFile(filename, prefix string) (*Model, error) {
	a, err := npz.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	m, err := Unpack(a, prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read the model %s", filename)
	}
	return m, nil
}

func classesOf(classes []NomenclatureClass, i int) []string {
	out := make([]string, len(classes))
	for j, c := range classes {
		out[j] = c.Classes[i]
	}
	return out
}

// sameSet checks that the classes seen are exactly those expected
func sameSet(nomenclature string, seen, want []string) error {
	set := func(s []string) []string {
		m := make(map[string]bool)
		var out []string
		for _, v := range s {
			if !m[v] {
				m[v] = true
				out = append(out, v)
			}
		}
		sort.Strings(out)
		return out
	}

	if got, exp := set(seen), set(want); !sameStrings(got, exp) {
		return fmt.Errorf("the %s classes of the training data %v differ from the expected classes %v", nomenclature, got, exp)
	}
	return nil
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
