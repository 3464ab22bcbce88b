package exec

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ccdmb/catastrophy/internal/dbcan"
	"github.com/ccdmb/catastrophy/internal/fasta"
	"github.com/ccdmb/catastrophy/internal/hmmer"
	"github.com/ccdmb/catastrophy/internal/model"
	"github.com/ccdmb/catastrophy/internal/plot"
	"github.com/ccdmb/catastrophy/internal/search"
)

// PipelineConfig are the settings of a Pipeline run.
type PipelineConfig struct {
	// proteome FASTA files and their labels
	Inputs []string
	Labels []string

	// where every output is written
	OutDir string

	// an HMMER database of dbCAN. Downloaded for Version if empty
	HMMs    string
	Version string

	// the HMMER executables
	HMMScan  string
	HMMPress string

	// the most hmmscan processes at once
	NCPU int

	// fix common problems in the proteomes
	Correct bool

	// hide the progress bar
	Quiet bool

	Model     *model.Model
	Threshold float64

	// plot the PCA with the classes of this nomenclature, if set
	Plot string

	// used to download dbCAN. http.DefaultClient if nil
	Client *http.Client
}

// Pipeline checks the proteomes, searches them for CAZymes with hmmscan and
// classifies them. The classifications, PCA and counts are written to
// classifications.tsv, pca.tsv and counts.tsv in OutDir.
func Pipeline(ctx context.Context, c PipelineConfig) (*model.PCAWithLabels, error) {
	if len(c.Inputs) != len(c.Labels) {
		return nil, &LabelError{Inputs: len(c.Inputs), Labels: len(c.Labels)}
	}

	logger := log.WithField("run", uuid.New().String())

	searchDir := filepath.Join(c.OutDir, "search")
	for _, dir := range []string{c.OutDir, filepath.Join(c.OutDir, "sanitised"), searchDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", dir)
		}
	}

	logger.Info("checking FASTA files")
	proteomes, err := sanitise(c.Inputs, c.Labels, c.OutDir, c.Correct)
	if err != nil {
		return nil, err
	}

	hmms := c.HMMs
	if hmms == "" {
		logger.WithField("version", c.Version).Info("downloading dbCAN")
		if hmms, err = dbcan.Fetch(ctx, c.Client, c.Version, filepath.Join(c.OutDir, "downloads")); err != nil {
			return nil, err
		}
	}

	logger.WithField("db", hmms).Info("pressing dbCAN HMMER database")
	if err := search.Press(ctx, c.HMMPress, hmms); err != nil {
		return nil, err
	}

	logger.Info("running hmmscan on proteomes")
	domtabs, err := scanAll(ctx, logger, c, hmms, proteomes, searchDir)
	if err != nil {
		return nil, err
	}

	logger.Info("classifying proteomes")
	predictions, err := predictFiles(domtabs, c.Labels, c.Model, c.OutDir, c.Threshold)
	if err != nil {
		return nil, err
	}

	if c.Plot != "" {
		filename := filepath.Join(c.OutDir, "pca.png")
		if err := plot.PCA(c.Model.TrainingData, predictions, c.Plot, filename); err != nil {
			return nil, err
		}
	}

	logger.Info("finished")
	return predictions, nil
}

// sanitise checks and rewrites every proteome to the sanitised dir of
// outdir. Bad residues in all the files are reported together.
func sanitise(inputs, labels []string, outdir string, correct bool) ([]string, error) {
	var bad *fasta.Error
	out := make([]string, len(inputs))

	for i, path := range inputs {
		f, err := open(path)
		if err != nil {
			return nil, err
		}
		seqs, err := fasta.Sanitise(f, path, correct)
		f.Close()

		var ferr *fasta.Error
		if errors.As(err, &ferr) {
			if bad == nil {
				bad = &fasta.Error{}
			}
			bad.Join(ferr)
			continue
		} else if err != nil {
			return nil, err
		}

		out[i] = filepath.Join(outdir, "sanitised", labels[i]+".fasta")
		w, err := os.Create(out[i])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", out[i])
		}
		if err := fasta.Write(w, seqs); err != nil {
			w.Close()
			return nil, errors.Wrapf(err, "failed to write %s", out[i])
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}

	if bad != nil {
		return nil, bad
	}
	return out, nil
}

// scanAll runs hmmscan on each proteome, at most c.NCPU at a time, and
// returns the domain tables in the same order
func scanAll(ctx context.Context, logger *log.Entry, c PipelineConfig, hmms string, proteomes []string, dir string) ([]string, error) {
	ncpu := c.NCPU
	if ncpu < 1 {
		ncpu = runtime.NumCPU()
	}

	var bar *pb.ProgressBar
	if !c.Quiet {
		bar = pb.Full.Start(len(proteomes))
		defer bar.Finish()
	}

	domtabs := make([]string, len(proteomes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ncpu)

	for i, proteome := range proteomes {
		i, proteome := i, proteome
		base := filepath.Join(dir, c.Labels[i])
		domtabs[i] = base + "_domtab.tsv"

		g.Go(func() error {
			cached, err := search.Scan(ctx, c.HMMScan, hmms, proteome, domtabs[i], base+"_hmmer.txt")
			if err != nil {
				return errors.Wrapf(err, "failed to search %s", c.Inputs[i])
			}

			logger.WithFields(log.Fields{"input": c.Inputs[i], "cached": cached}).Debug("searched")
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return domtabs, nil
}

// predictFiles classifies the domain tables into the standard output files of outdir
func predictFiles(domtabs, labels []string, m *model.Model, outdir string, threshold float64) (*model.PCAWithLabels, error) {
	files := make([]*os.File, 0, 3)
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	create := func(name string) (*os.File, error) {
		f, err := os.Create(filepath.Join(outdir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", name)
		}
		files = append(files, f)
		return f, nil
	}

	rcd, err := create("classifications.tsv")
	if err != nil {
		return nil, err
	}
	pca, err := create("pca.tsv")
	if err != nil {
		return nil, err
	}
	counts, err := create("counts.tsv")
	if err != nil {
		return nil, err
	}

	predictions, err := Predict(domtabs, labels, hmmer.Domtab, m, Outputs{
		RCD:       rcd,
		PCA:       pca,
		Counts:    counts,
		Threshold: threshold,
	})
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if err := f.Close(); err != nil {
			return nil, err
		}
	}
	files = nil
	return predictions, nil
}
