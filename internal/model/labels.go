package model

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ccdmb/catastrophy/internal/matrix"
	"github.com/ccdmb/catastrophy/internal/npz"
)

// DefaultThreshold is the RCD at or above which a class is reported as ancillary.
const DefaultThreshold = 0.8

// PCAWithLabels pairs samples' PCA coordinates with their RCDs and, for
// training data, their known classes.
type PCAWithLabels struct {
	PCA *matrix.Matrix
	RCD []RCDResult

	// Classes is nil for predictions
	Classes []NomenclatureClass
}

// Concat joins results, in order. Classes are kept if any part has them.
func Concat(parts ...*PCAWithLabels) (*PCAWithLabels, error) {
	pcas := make([]*matrix.Matrix, 0, len(parts))
	out := &PCAWithLabels{}
	for _, p := range parts {
		pcas = append(pcas, p.PCA)
		out.RCD = append(out.RCD, p.RCD...)
		if p.Classes != nil {
			out.Classes = append(out.Classes, p.Classes...)
		}
	}

	pca, err := matrix.Concat(pcas...)
	if err != nil {
		return nil, err
	}
	out.PCA = pca
	return out, nil
}

// WriteTSV writes one row per sample: its label, known classes if any,
// the best class under each nomenclature, the classes with an RCD of at
// least threshold, and the PCA coordinates.
func (p *PCAWithLabels) WriteTSV(w io.Writer, threshold float64) error {
	type key struct{ nomenclature, label string }

	best := make(map[key]RCDResult)
	ancillary := make(map[key][]string)
	for _, r := range p.RCD {
		k := key{r.Nomenclature, r.Label}
		if r.Value >= threshold {
			ancillary[k] = append(ancillary[k], r.Class)
		}
		if b, ok := best[k]; !ok || r.Value > b.Value {
			best[k] = r
		}
	}

	var known map[string]NomenclatureClass
	columns := []string{"label"}
	if p.Classes != nil {
		known = make(map[string]NomenclatureClass, len(p.Classes))
		for _, c := range p.Classes {
			known[c.Label] = c
		}
		columns = append(columns, "genome")
		columns = append(columns, Nomenclatures...)
	}
	for _, n := range Nomenclatures {
		columns = append(columns, n+"_pred")
	}
	for _, n := range Nomenclatures {
		columns = append(columns, n+"_ancillary")
	}
	columns = append(columns, p.PCA.Columns()...)

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("# " + strings.Join(columns, "\t") + "\n"); err != nil {
		return err
	}

	for i, label := range p.PCA.Rows() {
		row := []string{label}

		if known != nil {
			if c, ok := known[label]; ok {
				row = append(row, c.Genome, c.Classes[0], c.Classes[1], c.Classes[2])
			} else {
				row = append(row, ".", ".", ".", ".")
			}
		}

		for _, n := range Nomenclatures {
			b, ok := best[key{n, label}]
			if !ok {
				return fmt.Errorf("no %s RCD values for %s", n, label)
			}
			row = append(row, b.Class)
		}
		for _, n := range Nomenclatures {
			row = append(row, strings.Join(ancillary[key{n, label}], ","))
		}
		for _, v := range p.PCA.Row(i) {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}

		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Pack stores the results as "<prefix>rcd_*", "<prefix>pca_*" and,
// when there are classes, "<prefix>classes_*".
func (p *PCAWithLabels) Pack(a *npz.Archive, prefix string) error {
	if err := packRCD(a, prefix+"rcd_", p.RCD); err != nil {
		return err
	}
	if err := p.PCA.Pack(a, prefix+"pca_"); err != nil {
		return err
	}
	if p.Classes != nil {
		return packClasses(a, prefix+"classes_", p.Classes)
	}
	return nil
}

// UnpackPCAWithLabels reads results stored with Pack.
func UnpackPCAWithLabels(a *npz.Archive, prefix string) (*PCAWithLabels, error) {
	rcd, err := unpackRCD(a, prefix+"rcd_")
	if err != nil {
		return nil, err
	}
	pca, err := matrix.Unpack(a, prefix+"pca_")
	if err != nil {
		return nil, err
	}

	p := &PCAWithLabels{PCA: pca, RCD: rcd}
	classes, ok, err := unpackClasses(a, prefix+"classes_")
	if err != nil {
		return nil, err
	}
	if ok {
		p.Classes = classes
	}
	return p, nil
}
