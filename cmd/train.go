package cmd

import (
	"github.com/ccdmb/catastrophy/config"
	"github.com/ccdmb/catastrophy/internal/exec"
	"github.com/ccdmb/catastrophy/internal/model"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// trainCmd is for fitting a new model from classified genomes
var trainCmd = &cobra.Command{
	Use:                        "train [flags] infile ...",
	Short:                      "Train a new model from the search results of classified genomes",
	Args:                       minArgs(1),
	RunE:                       trainExec,
	SuggestionsMinimumDistance: 2,
	Example:                    "  catastrophy train -f hmmer_domtab --hmms dbCAN-HMMdb-V10.txt --classes classes.tsv -o model_v10.npz *.tsv",
	Long: `Train a model for a new dbCAN release.

Each input holds the search results of one training genome, labelled by its
file name without the extension unless --label is given. --classes is a tab
separated table with the columns label, genome, nomenclature1, nomenclature2
and nomenclature3 giving the known classes of every label.`,
}

func trainExec(cmd *cobra.Command, args []string) error {
	c, err := config.New()
	if err != nil {
		return &usageError{err}
	}

	labels, err := resolveLabels(cmd, args, true)
	if err != nil {
		return err
	}

	classes, _ := cmd.Flags().GetString("classes")
	nomenclatures, _ := cmd.Flags().GetString("nomenclatures")
	hmms, _ := cmd.Flags().GetString("hmms")
	components, _ := cmd.Flags().GetInt("components")
	outfile, _ := cmd.Flags().GetString("outfile")

	if hmms == "" || classes == "" {
		return &usageError{errors.New("--hmms and --classes are required")}
	}

	m, err := exec.Train(exec.TrainConfig{
		Inputs:        args,
		Labels:        labels,
		Format:        c.FileType,
		HMMs:          hmms,
		Classes:       classes,
		Nomenclatures: nomenclatures,
		Components:    components,
	})
	if err != nil {
		return err
	}

	if err := m.WriteFile(outfile, ""); err != nil {
		return err
	}
	log.WithField("model", outfile).Info("wrote model")
	return nil
}

func init() {
	trainCmd.Flags().StringP("format", "f", "hmmer_text", "the format of the inputs: dbcan, hmmer_text or hmmer_domtab")
	trainCmd.Flags().String("hmms", "", "the dbCAN HMMER database the genomes were searched with")
	trainCmd.Flags().String("classes", "", "a table of the known classes of each genome")
	trainCmd.Flags().StringP("nomenclatures", "n", "", "a JSON file of the classes in each nomenclature")
	trainCmd.Flags().StringP("outfile", "o", "model.npz", "where to write the model")
	trainCmd.Flags().Int("components", model.DefaultComponents, "the number of principal components to keep")
	addLabelFlags(trainCmd)

	RootCmd.AddCommand(trainCmd)
}
