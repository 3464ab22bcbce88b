package cmd

import (
	"io"
	"os"

	"github.com/ccdmb/catastrophy/config"
	"github.com/ccdmb/catastrophy/internal/exec"
	"github.com/ccdmb/catastrophy/internal/model"
	"github.com/ccdmb/catastrophy/internal/plot"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/cliutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// predictCmd is for classifying proteomes from their CAZyme search results
var predictCmd = &cobra.Command{
	Use:                        "predict [flags] infile ...",
	Short:                      "Classify proteomes from their dbCAN or HMMER search results",
	Args:                       minArgs(1),
	RunE:                       predictExec,
	SuggestionsMinimumDistance: 2,
	Example:                    "  catastrophy predict -f hmmer_domtab -o classes.tsv -p pca.tsv *_domtab.tsv",
	Long: `Classify proteomes from the results of searching them against dbCAN.

Each input file holds the results of one proteome, either a dbCAN table
(hmmscan-parser.sh output), an HMMER3 text report or an HMMER3 domain table.
"-" reads from stdin. The search must have used the dbCAN version of the model.

The relative centroid distance (RCD) of each proteome to each trophic class is
written to --outfile. The best class has an RCD of 1 and the furthest an RCD of 0.`,
	Aliases: []string{"classify"},
}

// predictExec reads the inputs, classifies them and writes the results
func predictExec(cmd *cobra.Command, args []string) error {
	c, err := config.New()
	if err != nil {
		return &usageError{err}
	}

	labels, err := resolveLabels(cmd, args, false)
	if err != nil {
		return err
	}

	m, err := loadModel(c)
	if err != nil {
		return err
	}

	outfile, _ := cmd.Flags().GetString("outfile")
	pcaFile, _ := cmd.Flags().GetString("pca")
	countsFile, _ := cmd.Flags().GetString("counts")

	var files []*os.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	create := func(path string) (io.Writer, error) {
		if path == "" {
			return nil, nil
		}
		if path == "-" {
			return os.Stdout, nil
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", path)
		}
		files = append(files, f)
		return f, nil
	}

	out := exec.Outputs{Threshold: c.Threshold}
	if out.RCD, err = create(outfile); err != nil {
		return err
	}
	if out.RCD == nil {
		out.RCD = os.Stdout
	}
	if out.PCA, err = create(pcaFile); err != nil {
		return err
	}
	if out.Counts, err = create(countsFile); err != nil {
		return err
	}

	predictions, err := exec.Predict(args, labels, c.FileType, m, out)
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := f.Close(); err != nil {
			return err
		}
	}
	files = nil

	if c.Plot != "" {
		plotFile, _ := cmd.Flags().GetString("plot-file")
		return plot.PCA(m.TrainingData, predictions, c.Plot, plotFile)
	}
	return nil
}

// resolveLabels names each input from --label and --label-map
func resolveLabels(cmd *cobra.Command, inputs []string, trimExt bool) ([]string, error) {
	labels, _ := cmd.Flags().GetStringSlice("label")
	labelMap, _ := cmd.Flags().GetString("label-map")

	var rename map[string]string
	if labelMap != "" {
		var err error
		if rename, err = cliutil.ReadKVs(labelMap, false); err != nil {
			return nil, errors.Wrapf(err, "failed to read the label map %s", labelMap)
		}
	}

	return exec.Labels(inputs, labels, rename, trimExt)
}

// loadModel reads the model chosen by the settings
func loadModel(c *config.Config) (*model.Model, error) {
	path, err := c.ModelPath()
	if err != nil {
		return nil, &usageError{err}
	}

	log.WithField("model", path).Debug("reading model")
	return model.ReadFile(path, "")
}

// addLabelFlags adds the flags read by resolveLabels
func addLabelFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("label", "l", nil, "labels of the inputs, in order. Defaults to the file names")
	cmd.Flags().String("label-map", "", "a two column tab separated file renaming labels")
}

// addModelFlags adds the flags choosing and applying a model
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model-version", "m", string(config.Latest), "the dbCAN version of the model to use")
	cmd.Flags().String("model-dir", "", "a directory of models named model_<version>.npz")
	cmd.Flags().String("model-file", "", "a model file, used instead of --model-version")
	cmd.Flags().Float64("threshold", model.DefaultThreshold, "the RCD at or above which a class is ancillary in the PCA output")
	cmd.Flags().String("plot", "", "plot the PCA by the classes of this nomenclature, e.g. nomenclature1")
}

func init() {
	predictCmd.Flags().StringP("format", "f", "hmmer_text", "the format of the inputs: dbcan, hmmer_text or hmmer_domtab")
	predictCmd.Flags().StringP("outfile", "o", "-", "where to write the classifications")
	predictCmd.Flags().StringP("pca", "p", "", "where to write the PCA coordinates of the training data and inputs")
	predictCmd.Flags().StringP("counts", "c", "", "where to write the CAZyme counts of the inputs")
	predictCmd.Flags().String("plot-file", "pca.png", "where to save the plot when --plot is set")
	addLabelFlags(predictCmd)
	addModelFlags(predictCmd)

	RootCmd.AddCommand(predictCmd)
}
