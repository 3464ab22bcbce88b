package model

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/ccdmb/catastrophy/internal/matrix"
	"github.com/ccdmb/catastrophy/internal/npz"
)

// RCDResult is the relative centroid distance of one sample to one class.
type RCDResult struct {
	Label        string
	Nomenclature string
	Class        string
	Value        float64
}

// RCDFromMatrix flattens an RCD matrix, rows of samples and columns of
// classes, into results in row-major order.
func RCDFromMatrix(m *matrix.Matrix, nomenclature string) []RCDResult {
	rows, columns := m.Rows(), m.Columns()

	results := make([]RCDResult, 0, len(rows)*len(columns))
	for i, label := range rows {
		for j, class := range columns {
			results = append(results, RCDResult{
				Label:        label,
				Nomenclature: nomenclature,
				Class:        class,
				Value:        m.At(i, j),
			})
		}
	}
	return results
}

// WriteRCDTSV writes results sorted by nomenclature, label, descending value
// and then class, so the best class of each sample comes first.
func WriteRCDTSV(w io.Writer, results []RCDResult) error {
	sorted := append([]RCDResult{}, results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Nomenclature != b.Nomenclature {
			return a.Nomenclature < b.Nomenclature
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.Class < b.Class
	})

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "# label\tnomenclature\tclass\tvalue"); err != nil {
		return err
	}
	for _, r := range sorted {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%f\n", r.Label, r.Nomenclature, r.Class, r.Value); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// packRCD stores results as three string arrays and a float array.
func packRCD(a *npz.Archive, prefix string, results []RCDResult) error {
	labels := make([]string, len(results))
	noms := make([]string, len(results))
	classes := make([]string, len(results))
	values := make([]float64, len(results))
	for i, r := range results {
		labels[i], noms[i], classes[i], values[i] = r.Label, r.Nomenclature, r.Class, r.Value
	}

	if err := a.PutStrings(prefix+"labels", npz.LabelWidth, labels); err != nil {
		return err
	}
	if err := a.PutStrings(prefix+"nomenclatures", npz.LabelWidth, noms); err != nil {
		return err
	}
	if err := a.PutStrings(prefix+"classes", npz.LabelWidth, classes); err != nil {
		return err
	}
	return a.PutFloat64(prefix+"values", []int{len(values)}, values)
}

func unpackRCD(a *npz.Archive, prefix string) ([]RCDResult, error) {
	labels, err := a.Strings(prefix + "labels")
	if err != nil {
		return nil, err
	}
	noms, err := a.Strings(prefix + "nomenclatures")
	if err != nil {
		return nil, err
	}
	classes, err := a.Strings(prefix + "classes")
	if err != nil {
		return nil, err
	}
	values, _, err := a.Float64(prefix + "values")
	if err != nil {
		return nil, err
	}

	n := len(labels)
	if len(noms) != n || len(classes) != n || len(values) != n {
		return nil, fmt.Errorf("%s arrays have different lengths", prefix)
	}

	results := make([]RCDResult, n)
	for i := range results {
		results[i] = RCDResult{Label: labels[i], Nomenclature: noms[i], Class: classes[i], Value: values[i]}
	}
	return results, nil
}
