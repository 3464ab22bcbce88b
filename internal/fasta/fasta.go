// Package fasta checks and cleans protein FASTA files before they are searched.
package fasta

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// valid protein residues, plus X for unknown and * for stop
const residues = "ACDEFGHIKLMNPQRSTVWYX*"

// Error collects every problem found in one or more FASTA files.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return "invalid FASTA input:\n" + strings.Join(e.Messages, "\n")
}

// Join adds the messages of other to e.
func (e *Error) Join(other *Error) {
	e.Messages = append(e.Messages, other.Messages...)
}

// Sanitise reads protein sequences and checks that they only hold valid
// residues. With correct, a trailing stop is removed, residues are upper
// cased, gaps are removed and the ambiguous residues B, Z, J, U and O are
// replaced with X before checking.
//
// Every sequence with bad residues is reported in one *Error. An input
// without sequences is also an *Error.
func Sanitise(r io.Reader, source string, correct bool) ([]*linear.Seq, error) {
	reader := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.Protein))

	var seqs []*linear.Seq
	var messages []string
	for {
		s, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &Error{Messages: []string{fmt.Sprintf("%s is not FASTA formatted: %v", source, err)}}
		}

		seq, ok := s.(*linear.Seq)
		if !ok {
			return nil, fmt.Errorf("failed to read FASTA %s: unexpected sequence type %T", source, s)
		}

		letters := string(alphabet.LettersToBytes(seq.Seq))
		if correct {
			letters = clean(letters)
			seq.Seq = alphabet.BytesToLetters([]byte(letters))
		}

		if bad := invalid(letters); bad != "" {
			messages = append(messages, fmt.Sprintf("bad characters in %s, sequence %s: '%s'", source, seq.Name(), bad))
			continue
		}
		seqs = append(seqs, seq)
	}

	if len(messages) > 0 {
		return nil, &Error{Messages: messages}
	}
	if len(seqs) == 0 {
		return nil, &Error{Messages: []string{fmt.Sprintf("%s appears to be empty or is not FASTA formatted", source)}}
	}
	return seqs, nil
}

// Write writes sequences as FASTA with 60 residues per line.
func Write(w io.Writer, seqs []*linear.Seq) error {
	writer := fasta.NewWriter(w, 60)
	for _, s := range seqs {
		if _, err := writer.Write(s); err != nil {
			return err
		}
	}
	return nil
}

// clean applies the corrections of Sanitise to one sequence
func clean(s string) string {
	s = strings.ToUpper(strings.TrimRight(s, "*"))

	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '.', ' ', '\t', '\r', '\n':
			return -1
		case 'B', 'Z', 'J', 'U', 'O':
			return 'X'
		}
		return r
	}, s)
}

// invalid returns the distinct invalid characters of s, sorted
func invalid(s string) string {
	seen := make(map[rune]bool)
	for _, r := range s {
		if !strings.ContainsRune(residues, r) && !strings.ContainsRune(residues, toUpper(r)) {
			seen[r] = true
		}
	}

	bad := make([]string, 0, len(seen))
	for r := range seen {
		bad = append(bad, string(r))
	}
	sort.Strings(bad)
	return strings.Join(bad, "")
}

func toUpper(r rune) rune {
	if 'a' <= r && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
