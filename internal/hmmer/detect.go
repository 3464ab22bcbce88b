package hmmer

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

var (
	textFirstLine   = regexp.MustCompile(`^# hmmscan ::`)
	domtabFirstLine = regexp.MustCompile(`^#\s+--- full sequence ---.*$`)
	dbcanFirstLine  = regexp.MustCompile(`^` + strings.Join([]string{
		`\S+`, `[0-9]+`, `\S+`, `[0-9]+`,
		`([0-9]*[.])?[0-9]+([eE][-+]?\d+)?`,
		`[0-9]+`, `[0-9]+`, `[0-9]+`, `[0-9]+`,
		`([0-9]*[.])?[0-9]+([eE][-+]?\d+)?`,
	}, "\t"))
)

// DetectFormat guesses the format of a file from its first non-blank line.
func DetectFormat(line string) FileType {
	line = strings.TrimSpace(line)
	switch {
	case textFirstLine.MatchString(line):
		return Text
	case domtabFirstLine.MatchString(line):
		return Domtab
	case dbcanFirstLine.MatchString(line):
		return DBCAN
	default:
		return Unknown
	}
}

// newLineScanner returns a line scanner that tolerates long description columns
func newLineScanner(r io.Reader) *bufio.Scanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return lines
}
