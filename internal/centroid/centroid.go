// Package centroid scores points in PCA space by their distance to the
// mean position of each trophic class.
package centroid

import (
	"fmt"
	"sort"

	"github.com/ccdmb/catastrophy/internal/matrix"
	"github.com/ccdmb/catastrophy/internal/npz"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Centroids holds one centroid per class of a nomenclature. Rows of the
// underlying Matrix are the class names, sorted, and columns are the PCA
// dimensions.
type Centroids struct {
	m *matrix.Matrix
}

// New wraps a Matrix of centroids. Class names must be unique.
func New(m *matrix.Matrix) (*Centroids, error) {
	seen := make(map[string]bool)
	for _, class := range m.Rows() {
		if seen[class] {
			return nil, fmt.Errorf("centroid: class %q has more than one centroid", class)
		}
		seen[class] = true
	}
	return &Centroids{m: m}, nil
}

// Fit averages the points of each class. classes gives the class of
// each row of points.
func Fit(points *matrix.Matrix, classes []string) (*Centroids, error) {
	n, d := points.Dims()
	if len(classes) != n {
		return nil, fmt.Errorf("centroid: %d classes given for %d points", len(classes), n)
	}

	members := make(map[string][]int)
	for i, class := range classes {
		members[class] = append(members[class], i)
	}

	names := make([]string, 0, len(members))
	for class := range members {
		names = append(names, class)
	}
	sort.Strings(names)

	data := make([]float64, 0, len(names)*d)
	col := make([]float64, 0, n)
	for _, class := range names {
		for j := 0; j < d; j++ {
			col = col[:0]
			for _, i := range members[class] {
				col = append(col, points.At(i, j))
			}
			data = append(data, stat.Mean(col, nil))
		}
	}

	m, err := matrix.New(names, points.Columns(), data)
	if err != nil {
		return nil, err
	}
	return &Centroids{m: m}, nil
}

// Matrix returns the centroids as a Matrix.
func (c *Centroids) Matrix() *matrix.Matrix {
	return c.m
}

// Classes returns the class names in row order.
func (c *Centroids) Classes() []string {
	return c.m.Rows()
}

// Distances returns the Euclidean distance from each point (row) to each
// centroid (column). The points must use the same dimensions as the centroids.
func (c *Centroids) Distances(points *matrix.Matrix) (*matrix.Matrix, error) {
	if !equal(points.Columns(), c.m.Columns()) {
		return nil, fmt.Errorf(
			"centroid: points have dimensions %v but the centroids have %v",
			points.Columns(), c.m.Columns(),
		)
	}

	n, _ := points.Dims()
	k, _ := c.m.Dims()

	centroids := make([][]float64, k)
	for j := range centroids {
		centroids[j] = c.m.Row(j)
	}

	data := make([]float64, 0, n*k)
	for i := 0; i < n; i++ {
		point := points.Row(i)
		for _, centroid := range centroids {
			data = append(data, floats.Distance(point, centroid, 2))
		}
	}

	return matrix.New(points.Rows(), c.Classes(), data)
}

// RCD returns the relative centroid distance of each point to each class.
func (c *Centroids) RCD(points *matrix.Matrix) (*matrix.Matrix, error) {
	dists, err := c.Distances(points)
	if err != nil {
		return nil, err
	}
	return RCD(dists)
}

// RCD scales each row of distances to 1 - (d - min) / (max - min), so the
// nearest class scores 1 and the furthest 0. Scores are relative to the
// other classes of the same row only.
//
// When every distance in a row is the same, every class scores 1.
func RCD(distances *matrix.Matrix) (*matrix.Matrix, error) {
	n, k := distances.Dims()

	data := make([]float64, 0, n*k)
	for i := 0; i < n; i++ {
		row := distances.Row(i)
		if len(row) == 0 {
			continue
		}

		lo, hi := floats.Min(row), floats.Max(row)
		for _, d := range row {
			if hi == lo {
				data = append(data, 1)
				continue
			}
			data = append(data, 1-(d-lo)/(hi-lo))
		}
	}

	return matrix.New(distances.Rows(), distances.Columns(), data)
}

// Pack adds the centroids to an archive under prefix.
func (c *Centroids) Pack(a *npz.Archive, prefix string) error {
	return c.m.Pack(a, prefix)
}

// Unpack reads centroids stored with Pack.
func Unpack(a *npz.Archive, prefix string) (*Centroids, error) {
	m, err := matrix.Unpack(a, prefix)
	if err != nil {
		return nil, err
	}
	return New(m)
}

func equal(a, b []string) bool {
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
