package cmd

import (
	"github.com/ccdmb/catastrophy/config"
	"github.com/ccdmb/catastrophy/internal/exec"
	"github.com/spf13/cobra"
)

// pipelineCmd searches proteomes for CAZymes and classifies them
var pipelineCmd = &cobra.Command{
	Use:                        "pipeline [flags] proteome.fasta ...",
	Short:                      "Search proteomes for CAZymes with HMMER and classify them",
	Args:                       minArgs(1),
	RunE:                       pipelineExec,
	SuggestionsMinimumDistance: 2,
	Example:                    "  catastrophy pipeline --outdir results --ncpu 4 proteomes/*.fasta",
	Long: `Run CATAStrophy from protein FASTA files.

1. Check the proteomes only hold valid amino acids (--correct fixes common issues)
2. Download the dbCAN release of the model, unless --hmms is given
3. Press the HMMER database with hmmpress
4. Search each proteome with hmmscan. Finished searches are reused
5. Classify the proteomes

classifications.tsv, pca.tsv and counts.tsv are written to --outdir.
hmmscan and hmmpress from HMMER3 must be installed.`,
}

func pipelineExec(cmd *cobra.Command, args []string) error {
	c, err := config.New()
	if err != nil {
		return &usageError{err}
	}

	labels, err := resolveLabels(cmd, args, true)
	if err != nil {
		return err
	}

	m, err := loadModel(c)
	if err != nil {
		return err
	}

	_, err = exec.Pipeline(cmd.Context(), exec.PipelineConfig{
		Inputs:    args,
		Labels:    labels,
		OutDir:    c.Pipeline.OutDir,
		HMMs:      c.Pipeline.HMMs,
		Version:   string(c.ModelVersion),
		HMMScan:   c.Pipeline.HMMScan,
		HMMPress:  c.Pipeline.HMMPress,
		NCPU:      c.Pipeline.NCPU,
		Correct:   c.Pipeline.Correct,
		Quiet:     c.Quiet,
		Model:     m,
		Threshold: c.Threshold,
		Plot:      c.Plot,
	})
	return err
}

func init() {
	pipelineCmd.Flags().StringP("outdir", "o", "catastrophy_results", "the directory to write results to")
	pipelineCmd.Flags().String("hmms", "", "a dbCAN HMMER database matching the model version, downloaded if not given")
	pipelineCmd.Flags().String("hmmscan-path", "hmmscan", "where to look for hmmscan")
	pipelineCmd.Flags().String("hmmpress-path", "hmmpress", "where to look for hmmpress")
	pipelineCmd.Flags().Int("ncpu", 0, "the most hmmscan searches to run at once, all CPUs if 0")
	pipelineCmd.Flags().BoolP("correct", "c", false, "remove trailing stops and gaps, upper case and replace ambiguous residues with X")
	addLabelFlags(pipelineCmd)
	addModelFlags(pipelineCmd)

	RootCmd.AddCommand(pipelineCmd)
}
