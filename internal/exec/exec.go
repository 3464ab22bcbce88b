// Package exec runs CATAStrophy end to end: classifying search results,
// searching proteomes first, or training a new model.
package exec

import (
	"io"
	"os"

	"github.com/ccdmb/catastrophy/internal/count"
	"github.com/ccdmb/catastrophy/internal/hmmer"
	"github.com/ccdmb/catastrophy/internal/model"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Outputs are where Predict writes its results. RCD is required, PCA and
// Counts are written when not nil.
type Outputs struct {
	// the relative centroid distance of every label and class
	RCD io.Writer

	// training data and predictions in PCA space with their best classes
	PCA io.Writer

	// CAZyme counts of each label
	Counts io.Writer

	// the RCD at or above which a class is ancillary in PCA
	Threshold float64
}

// Predict classifies the search results of each input, in the given
// format, with m. It writes to out and returns the predictions.
func Predict(inputs, labels []string, format hmmer.FileType, m *model.Model, out Outputs) (*model.PCAWithLabels, error) {
	if len(inputs) != len(labels) {
		return nil, &LabelError{Inputs: len(inputs), Labels: len(labels)}
	}

	sources := make([]count.Matches, len(inputs))
	for i, path := range inputs {
		r, err := open(path)
		if err != nil {
			return nil, err
		}
		defer r.Close()

		sources[i] = hmmer.NewScanner(r, path, format, m.HMMLengths)
	}

	counts, err := count.CountMulti(sources, labels, m.HMMLengths.Names())
	if err != nil {
		return nil, err
	}

	if out.Counts != nil {
		if err := counts.WriteTSV(out.Counts, "# label"); err != nil {
			return nil, errors.Wrap(err, "failed to write counts")
		}
	}

	predictions, err := m.Predict(counts)
	if err != nil {
		return nil, err
	}

	if err := model.WriteRCDTSV(out.RCD, predictions.RCD); err != nil {
		return nil, errors.Wrap(err, "failed to write classifications")
	}

	if out.PCA != nil {
		all, err := model.Concat(m.TrainingData, predictions)
		if err != nil {
			return nil, err
		}
		if err := all.WriteTSV(out.PCA, out.Threshold); err != nil {
			return nil, errors.Wrap(err, "failed to write PCA coordinates")
		}
	}

	log.WithField("inputs", len(inputs)).Debug("classified")
	return predictions, nil
}

// open opens a file for reading, "-" being stdin
func open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	return f, nil
}
