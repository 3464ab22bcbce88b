// Package count turns the Matches of a proteome into CAZyme family counts.
package count

import (
	"fmt"
	"strings"

	"github.com/ccdmb/catastrophy/internal/hmmer"
	"github.com/ccdmb/catastrophy/internal/matrix"
	log "github.com/sirupsen/logrus"
)

// Matches is a single pass sequence of Matches, like an hmmer.Scanner.
type Matches interface {
	Next() bool
	Match() hmmer.Match
	Err() error
}

// HMMError lists every family that was found but isn't a known column.
// It usually means that the search used a different dbCAN version than the model.
type HMMError struct {
	HMMs []string
}

func (e *HMMError) Error() string {
	return fmt.Sprintf(
		"encountered %d CAZyme families that are not in the model, "+
			"the search may have used a different version of dbCAN: %s",
		len(e.HMMs), strings.Join(e.HMMs, ", "),
	)
}

// Count returns, for each of columns, the number of distinct sequences
// with a Match to that family.
func Count(ms Matches, columns []string) ([]int, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}

	seqs := make([]map[string]struct{}, len(columns))
	var unknown []string
	seen := make(map[string]bool)

	for ms.Next() {
		m := ms.Match()

		i, ok := index[m.HMM]
		if !ok {
			if !seen[m.HMM] {
				seen[m.HMM] = true
				unknown = append(unknown, m.HMM)
			}
			continue
		}

		if seqs[i] == nil {
			seqs[i] = make(map[string]struct{})
		}
		seqs[i][m.SeqID] = struct{}{}
	}
	if err := ms.Err(); err != nil {
		return nil, err
	}

	if len(unknown) > 0 {
		return nil, &HMMError{HMMs: unknown}
	}

	counts := make([]int, len(columns))
	for i, s := range seqs {
		counts[i] = len(s)
	}
	return counts, nil
}

// CountMulti counts several proteomes into a Matrix with one row per label,
// in the order given, and columns in exactly the order given.
//
// A row of all zeros is logged as a warning since it is most likely bad input.
func CountMulti(sources []Matches, labels, columns []string) (*matrix.Matrix, error) {
	if len(sources) != len(labels) {
		return nil, fmt.Errorf("got %d inputs but %d labels", len(sources), len(labels))
	}

	data := make([]float64, 0, len(sources)*len(columns))
	for i, ms := range sources {
		counts, err := Count(ms, columns)
		if err != nil {
			return nil, err
		}

		total := 0
		for _, c := range counts {
			data = append(data, float64(c))
			total += c
		}

		if total == 0 {
			log.WithField("label", labels[i]).Warn("no CAZymes were counted, this will result in poor predictions")
		}
	}

	return matrix.New(labels, columns, data)
}
