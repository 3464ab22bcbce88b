// Package pca projects CAZyme counts onto the principal components of a
// trained model.
package pca

import (
	"fmt"
	"math"

	"github.com/ccdmb/catastrophy/internal/matrix"
	"github.com/ccdmb/catastrophy/internal/npz"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Model is a linear map from count space to PCA space:
// x -> (x - Mean) * Componentsᵀ
type Model struct {
	// Mean of each feature in the training data
	Mean []float64

	// Components has one row per component and one column per feature
	Components *mat.Dense
}

// New creates a Model from the feature means and row-major components.
func New(mean []float64, components []float64, nComponents int) (*Model, error) {
	if nComponents < 1 || len(mean) == 0 {
		return nil, fmt.Errorf("pca: a model needs at least one component and one feature")
	}
	if len(components) != nComponents*len(mean) {
		return nil, fmt.Errorf(
			"pca: %d component values do not fit %d components of %d features",
			len(components), nComponents, len(mean),
		)
	}

	return &Model{
		Mean:       append([]float64{}, mean...),
		Components: mat.NewDense(nComponents, len(mean), append([]float64{}, components...)),
	}, nil
}

// NComponents is the number of dimensions of the PCA space.
func (p *Model) NComponents() int {
	r, _ := p.Components.Dims()
	return r
}

// NFeatures is the number of count columns the model expects.
func (p *Model) NFeatures() int {
	return len(p.Mean)
}

// Columns names the PCA dimensions pc01, pc02, ...
func (p *Model) Columns() []string {
	columns := make([]string, p.NComponents())
	for i := range columns {
		columns[i] = fmt.Sprintf("pc%02d", i+1)
	}
	return columns
}

// Transform projects each row of counts into PCA space. Rows keep their labels.
func (p *Model) Transform(counts *matrix.Matrix) (*matrix.Matrix, error) {
	r, c := counts.Dims()
	if c != p.NFeatures() {
		return nil, fmt.Errorf("pca: counts have %d columns but the model expects %d", c, p.NFeatures())
	}
	if r == 0 {
		return matrix.New(nil, p.Columns(), nil)
	}

	centred := mat.NewDense(r, c, counts.Data())
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			centred.Set(i, j, centred.At(i, j)-p.Mean[j])
		}
	}

	var projected mat.Dense
	projected.Mul(centred, p.Components.T())

	return matrix.New(counts.Rows(), p.Columns(), projected.RawMatrix().Data)
}

// Fit finds the first k principal components of counts.
//
// The data are mean centred and decomposed with a thin SVD. The sign of
// each component is chosen so that the largest absolute value in the
// matching left singular vector is positive, which keeps fits reproducible.
func Fit(counts *matrix.Matrix, k int) (*Model, error) {
	n, p := counts.Dims()
	if n == 0 || p == 0 {
		return nil, fmt.Errorf("pca: cannot fit an empty matrix")
	}
	if k < 1 || k > n || k > p {
		return nil, fmt.Errorf("pca: cannot fit %d components to %d samples of %d features", k, n, p)
	}

	x := mat.NewDense(n, p, counts.Data())
	mean := make([]float64, p)
	for j := range mean {
		mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
		for i := 0; i < n; i++ {
			x.Set(i, j, x.At(i, j)-mean[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, errors.New("pca: SVD factorization failed")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	components := mat.NewDense(k, p, nil)
	for i := 0; i < k; i++ {
		sign := 1.0
		best := -1.0
		for row := 0; row < n; row++ {
			if a := math.Abs(u.At(row, i)); a > best {
				best = a
				if u.At(row, i) < 0 {
					sign = -1
				} else {
					sign = 1
				}
			}
		}

		for j := 0; j < p; j++ {
			components.Set(i, j, sign*v.At(j, i))
		}
	}

	return &Model{Mean: mean, Components: components}, nil
}

// Pack adds the model to an archive as "<prefix>mean" and "<prefix>components".
func (p *Model) Pack(a *npz.Archive, prefix string) error {
	if err := a.PutFloat64(prefix+"mean", []int{p.NFeatures()}, p.Mean); err != nil {
		return err
	}

	r, c := p.Components.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, p.Components.RawRowView(i)...)
	}
	return a.PutFloat64(prefix+"components", []int{r, c}, data)
}

// Unpack reads a model stored with Pack.
func Unpack(a *npz.Archive, prefix string) (*Model, error) {
	mean, _, err := a.Float64(prefix + "mean")
	if err != nil {
		return nil, err
	}

	components, shape, err := a.Float64(prefix + "components")
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 || shape[1] != len(mean) {
		return nil, fmt.Errorf("pca: components of shape %v do not match %d features", shape, len(mean))
	}

	return New(mean, components, shape[0])
}
