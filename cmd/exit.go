package cmd

import (
	"context"
	"io/fs"

	"github.com/ccdmb/catastrophy/internal/count"
	"github.com/ccdmb/catastrophy/internal/dbcan"
	"github.com/ccdmb/catastrophy/internal/exec"
	"github.com/ccdmb/catastrophy/internal/fasta"
	"github.com/ccdmb/catastrophy/internal/hmmer"
	"github.com/ccdmb/catastrophy/internal/model"
	"github.com/ccdmb/catastrophy/internal/search"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// exit codes, loosely following sysexits.h
const (
	exitValid       = 0
	exitUnknown     = 1
	exitCLI         = 64
	exitInputFormat = 65
	exitInputNotFnd = 66
	exitSysErr      = 71
	exitCantCreate  = 73
	exitIOErr       = 74
	exitKeyboard    = 130
)

// usageError is a problem with the command line
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

// minArgs is cobra.MinimumNArgs as a usage error
func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

// exitCode maps an error to the exit code of the program
func exitCode(err error) int {
	var (
		usage    *usageError
		labels   *exec.LabelError
		parse    *hmmer.ParseError
		hmms     *count.HMMError
		badFasta *fasta.Error
		columns  *model.ColumnError
		http     *dbcan.HTTPError
		tool     *search.ExecError
	)

	switch {
	case err == nil:
		return exitValid
	case errors.Is(err, context.Canceled):
		return exitKeyboard
	case errors.As(err, &usage), errors.As(err, &labels):
		return exitCLI
	case errors.As(err, &parse), errors.As(err, &hmms), errors.As(err, &badFasta), errors.As(err, &columns):
		return exitInputFormat
	case errors.As(err, &http):
		return exitIOErr
	case errors.As(err, &tool):
		return exitSysErr
	case errors.Is(err, fs.ErrNotExist):
		return exitInputNotFnd
	case errors.Is(err, fs.ErrPermission):
		return exitCantCreate
	default:
		return exitUnknown
	}
}
