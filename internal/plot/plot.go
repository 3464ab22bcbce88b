// Package plot draws the training genomes and new predictions on the
// first two principal components.
package plot

import (
	"fmt"
	"sort"

	"github.com/ccdmb/catastrophy/internal/model"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Size is the width and height of saved plots.
var Size = 6 * vg.Inch

// PCA saves a scatter plot of pc01 against pc02 to filename, its format
// taken from the extension. Training genomes are coloured by their class
// under nomenclature. Predictions are drawn as labelled crosses.
func PCA(training, predictions *model.PCAWithLabels, nomenclature, filename string) error {
	p, err := New(training, predictions, nomenclature)
	if err != nil {
		return err
	}
	if err := p.Save(Size, Size, filename); err != nil {
		return errors.Wrapf(err, "failed to save the plot to %s", filename)
	}
	return nil
}

// New builds the plot saved by PCA.
func New(training, predictions *model.PCAWithLabels, nomenclature string) (*plot.Plot, error) {
	if _, ok := (model.NomenclatureClass{}).Class(nomenclature); !ok {
		return nil, fmt.Errorf("unknown nomenclature %s", nomenclature)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("CAZyme PCA, %s classes", nomenclature)
	p.X.Label.Text = "pc01"
	p.Y.Label.Text = "pc02"
	p.Legend.Top = true

	labels := make(map[string]string, len(training.Classes))
	for _, c := range training.Classes {
		labels[c.Label], _ = c.Class(nomenclature)
	}

	groups := make(map[string]plotter.XYs)
	xys, err := points(training)
	if err != nil {
		return nil, err
	}
	for i, label := range training.PCA.Rows() {
		class, ok := labels[label]
		if !ok {
			class = "unknown"
		}
		groups[class] = append(groups[class], xys[i])
	}

	classes := make([]string, 0, len(groups))
	for c := range groups {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	for i, class := range classes {
		s, err := plotter.NewScatter(groups[class])
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(s)
		p.Legend.Add(class, s)
	}

	if predictions == nil {
		return p, nil
	}

	pred, err := points(predictions)
	if err != nil {
		return nil, err
	}
	if len(pred) == 0 {
		return p, nil
	}

	s, err := plotter.NewScatter(pred)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Shape = draw.CrossGlyph{}
	s.GlyphStyle.Radius = vg.Points(5)
	p.Add(s)
	p.Legend.Add("predicted", s)

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: pred, Labels: predictions.PCA.Rows()})
	if err != nil {
		return nil, err
	}
	p.Add(names)

	return p, nil
}

// points returns the first two components of every sample
func points(p *model.PCAWithLabels) (plotter.XYs, error) {
	x, err := p.PCA.Column("pc01")
	if err != nil {
		return nil, err
	}
	y, err := p.PCA.Column("pc02")
	if err != nil {
		return nil, errors.Wrap(err, "at least two principal components are needed to plot")
	}

	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i].X = x[i]
		xys[i].Y = y[i]
	}
	return xys, nil
}
