package hmmer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Scanner reads Matches from search output one at a time. It is forward
// only: once Next returns false the Scanner is spent.
//
//	s := hmmer.NewScanner(f, "genome.domtab", hmmer.Domtab, lengths)
//	for s.Next() {
//		m := s.Match()
//	}
//	if err := s.Err(); err != nil {
//	}
type Scanner struct {
	source  string
	format  FileType
	lengths Lengths

	lines  *bufio.Scanner
	lineNo int

	// the format guessed from the first informative line, for error hints
	guess    FileType
	guessed  bool
	nonBlank bool

	// matches ready to be returned by Next
	pending []Match
	current Match

	// candidates of the HMMER query being read
	query      string
	candidates []Match

	// state of the plain text reader
	hit       string
	inDomains bool

	// number of dbCAN rows or HMMER queries seen
	records int
	yielded int

	eof bool
	err error
}

// NewScanner creates a Scanner over r. source names r in errors and
// warnings. lengths is required for the HMMER formats and ignored for dbCAN.
func NewScanner(r io.Reader, source string, format FileType, lengths Lengths) *Scanner {
	s := &Scanner{
		source:  source,
		format:  format,
		lengths: lengths,
		lines:   newLineScanner(r),
	}

	switch {
	case format != DBCAN && format != Text && format != Domtab:
		s.err = fmt.Errorf("cannot scan %s: unsupported format %s", source, format)
	case format != DBCAN && lengths == nil:
		s.err = fmt.Errorf("cannot scan %s: HMM lengths are required for %s input", source, format)
	}

	return s
}

// Next advances to the next Match. It returns false at the end of the
// input or on the first error.
func (s *Scanner) Next() bool {
	for len(s.pending) == 0 {
		if s.eof || s.err != nil {
			return false
		}

		switch s.format {
		case DBCAN:
			s.readDBCAN()
		case Domtab:
			s.readDomtab()
		case Text:
			s.readText()
		}
	}

	s.current = s.pending[0]
	s.pending = s.pending[1:]
	s.yielded++
	return true
}

// Match returns the Match read by the last call to Next.
func (s *Scanner) Match() Match {
	return s.current
}

// Err returns the first error encountered.
func (s *Scanner) Err() error {
	return s.err
}

// ReadAll drains the scanner into a slice.
func (s *Scanner) ReadAll() ([]Match, error) {
	var ms []Match
	for s.Next() {
		ms = append(ms, s.Match())
	}
	return ms, s.Err()
}

// readLine returns the next line, trimmed. ok is false at the end of input.
func (s *Scanner) readLine() (line string, ok bool) {
	if !s.lines.Scan() {
		if err := s.lines.Err(); err != nil {
			s.err = &ParseError{Source: s.source, Line: s.lineNo + 1, Msg: err.Error()}
		}
		return "", false
	}

	s.lineNo++
	line = strings.TrimSpace(s.lines.Text())

	if line != "" {
		s.nonBlank = true
	}
	if !s.guessed && line != "" {
		if f := DetectFormat(line); f != Unknown || !strings.HasPrefix(line, "#") {
			s.guess = f
			s.guessed = true
		}
	}

	return line, true
}

// fail records a malformed line. If the file doesn't look like the format
// it is read as, a file level error with the guessed format is recorded instead.
func (s *Scanner) fail(err error) {
	if s.guess != s.format {
		s.failFile()
		return
	}
	s.err = &ParseError{Source: s.source, Line: s.lineNo, Msg: err.Error()}
}

// failFile records that the file as a whole isn't in the expected format
func (s *Scanner) failFile() {
	s.err = &ParseError{Source: s.source, Guess: s.guess, Msg: formatMismatch(s.format, s.guess)}
}

// finish is called at the end of the input
func (s *Scanner) finish() {
	s.eof = true

	if s.format != DBCAN && s.records == 0 {
		if !s.nonBlank {
			s.err = &ParseError{Source: s.source, Msg: "the input does not contain any non-empty lines"}
			return
		}
		if s.guess != s.format {
			s.failFile()
			return
		}
	}

	if s.yielded+len(s.pending) == 0 {
		entry := log.WithFields(log.Fields{"source": s.source, "format": s.format.String()})
		entry.Warn("zero CAZymes detected, this will result in poor predictions")
		if s.format == DBCAN {
			entry.Warn("double check that the correct file format was specified")
		} else {
			entry.Warn("double check the file format, for HMMER output try the alternate format (hmmer_text or hmmer_domtab)")
		}
	}
}

// candidate builds an HMMER Match from raw 1-based, inclusive coordinates.
// ok is false for zero length alignments.
func (s *Scanner) candidate(hmm, seqid string, evalue float64, hmmFrom, hmmTo, aliFrom, aliTo int) (m Match, ok bool) {
	hmm = SplitHMM(hmm)
	hmmLen, known := s.lengths.Len(hmm)
	if !known {
		s.err = &ParseError{
			Source: s.source,
			Line:   s.lineNo,
			Msg: fmt.Sprintf(
				"the CAZyme family %s doesn't exist in this version of dbCAN, "+
					"the file appears to be searched against a different version than specified", hmm,
			),
		}
		return Match{}, false
	}

	m = Match{
		HMM:     hmm,
		HMMLen:  hmmLen,
		SeqID:   seqid,
		EValue:  evalue,
		HMMFrom: hmmFrom - 1,
		HMMTo:   hmmTo,
		AliFrom: aliFrom - 1,
		AliTo:   aliTo,
	}
	if m.AliLen() <= 0 {
		return Match{}, false
	}
	m.Coverage = float64(m.HMMTo-m.HMMFrom) / float64(hmmLen)

	return m, true
}

// flushQuery resolves the overlapping candidates of the current query
// and queues the significant ones
func (s *Scanner) flushQuery() {
	for _, m := range distinct(s.candidates, overlapThreshold) {
		if significant(m) {
			s.pending = append(s.pending, m)
		}
	}
	s.candidates = nil
}
