// Package hmmer parses CAZyme domain searches into Matches.
//
// Three inputs are understood: the pre-filtered dbCAN tab separated table,
// the HMMER3 plain text report of hmmscan and the HMMER3 domain table
// written with --domtblout. HMMER results are reduced to one significant,
// non-overlapping domain per region of each query sequence. dbCAN tables
// have already been reduced and pass through as they are.
package hmmer

import (
	"fmt"
	"regexp"
	"strings"
)

// Match is a single domain hit of an HMM against a protein sequence.
// Coordinates follow a 0-based, end exclusive convention.
type Match struct {
	// HMM is the family name with any .hmm suffix removed
	HMM string

	// HMMLen is the length of the HMM
	HMMLen int

	// SeqID is the id of the protein sequence
	SeqID string

	// QueryLen is the protein length. Only dbCAN tables carry it
	QueryLen int

	// EValue of the domain hit
	EValue float64

	// HMMFrom and HMMTo are the aligned range of the HMM
	HMMFrom, HMMTo int

	// AliFrom and AliTo are the aligned range of the protein
	AliFrom, AliTo int

	// Coverage is the fraction of the HMM covered by the alignment
	Coverage float64
}

// AliLen is the length of the alignment on the protein.
func (m Match) AliLen() int {
	return m.AliTo - m.AliFrom
}

// FileType is one of the supported search output formats.
type FileType int

const (
	// Unknown is the zero FileType, used when a format can't be recognized
	Unknown FileType = iota

	// DBCAN is the dbCAN tab separated table
	DBCAN

	// Text is the HMMER3 plain text report
	Text

	// Domtab is the HMMER3 domain table
	Domtab
)

var fileTypeNames = map[FileType]string{
	Unknown: "unknown",
	DBCAN:   "dbcan",
	Text:    "hmmer_text",
	Domtab:  "hmmer_domtab",
}

// String returns the name used for the format on the command line.
func (f FileType) String() string {
	if name, ok := fileTypeNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FileType(%d)", int(f))
}

// ParseFileType turns a format name back into a FileType.
func ParseFileType(s string) (FileType, error) {
	for f, name := range fileTypeNames {
		if f != Unknown && name == strings.ToLower(strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return Unknown, fmt.Errorf("unknown input format %q, expected one of dbcan, hmmer_text or hmmer_domtab", s)
}

var hmmSuffix = regexp.MustCompile(`\.p?hmm$`)

// SplitHMM removes a trailing .hmm or .phmm from an HMM name.
func SplitHMM(name string) string {
	return hmmSuffix.ReplaceAllString(name, "")
}

// Lengths looks up the length of an HMM. HMMER output does not include
// it, so the HMMER formats need one to compute coverage.
type Lengths interface {
	Len(hmm string) (int, bool)
}

// LengthMap is a Lengths backed by a map.
type LengthMap map[string]int

// Len returns the length of hmm.
func (l LengthMap) Len(hmm string) (int, bool) {
	n, ok := l[hmm]
	return n, ok
}
