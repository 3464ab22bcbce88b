// Package cmd is for command line interactions with the catastrophy application
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/ccdmb/catastrophy/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "catastrophy",
	Short: "Predict the trophic lifestyle of fungi from their CAZymes",
	Long: `CATAStrophy classifies plant pathogenic fungi into trophic classes using
counts of their carbohydrate-active enzymes (CAZymes). CAZymes are found by
searching proteomes with the HMMs of a dbCAN release.

"catastrophy predict" classifies existing search results, "catastrophy pipeline"
runs the searches first and "catastrophy train" builds a new model.`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and runs it.
// It returns the exit code of the program. This is called by main.main().
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := RootCmd.ExecuteContext(ctx)
	if err != nil {
		log.Error(err)
	}
	if ctx.Err() != nil {
		return exitKeyboard
	}
	return exitCode(err)
}

// setup binds the flags of the command being run and applies logging settings
func setup(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	settings, _ := cmd.Flags().GetString("settings")
	if err := config.Setup(settings); err != nil {
		return &usageError{err}
	}

	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if viper.GetBool("quiet") {
		log.SetLevel(log.WarnLevel)
	}
	return nil
}

func init() {
	RootCmd.PersistentFlags().StringP("settings", "s", "", "a YAML file of settings, overridden by flags")
	RootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log warnings and errors")

	RootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err}
	})
}
