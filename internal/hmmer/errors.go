package hmmer

import (
	"fmt"
	"strings"
)

// ParseError is returned when search output can't be read.
//
// A line-level failure sets Line. A failure of the whole file leaves Line
// at zero and sets Guess to the format the file appears to be in, if any.
type ParseError struct {
	// Source names the input, usually a filename
	Source string

	// Line is the 1-based line of the failure, zero if not known
	Line int

	// Guess is the detected format of a file that didn't parse as expected
	Guess FileType

	// Msg describes the failure
	Msg string
}

// Error formats the error with as much context as it has.
func (e *ParseError) Error() string {
	var b strings.Builder

	b.WriteString("failed to parse ")
	if e.Source != "" {
		b.WriteString(e.Source)
	} else {
		b.WriteString("input")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)

	return b.String()
}

// LineError is the message of a single malformed line, before it is
// placed in a file with a ParseError.
type LineError struct {
	Msg string
}

func (e *LineError) Error() string {
	return e.Msg
}

func wrongColumns(found, expected int) *LineError {
	return &LineError{fmt.Sprintf("wrong number of columns: found %d, expected %d", found, expected)}
}

func illegalValue(val, column, expected string) *LineError {
	return &LineError{fmt.Sprintf("illegal value %q in column %s, expected %s", val, column, expected)}
}

// formatMismatch is the message of a file that doesn't look like the
// format it was read as
func formatMismatch(declared, guess FileType) string {
	if guess == Unknown {
		return fmt.Sprintf(
			"couldn't parse file as %s format, and it doesn't appear to be in any of the supported formats "+
				"(dbcan, hmmer_text or hmmer_domtab)", declared,
		)
	}
	return fmt.Sprintf(
		"couldn't parse file as %s format, based on the contents it appears to be in %s format",
		declared, guess,
	)
}
