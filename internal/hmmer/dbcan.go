package hmmer

import (
	"strconv"
	"strings"
)

// dbcanColumns are the columns of a dbCAN table, in order
var dbcanColumns = []string{
	"hmm", "hmm_len", "seqid", "query_len", "evalue",
	"hmm_from", "hmm_to", "ali_from", "ali_to", "coverage",
}

// readDBCAN queues the next row of a dbCAN table
func (s *Scanner) readDBCAN() {
	for {
		line, ok := s.readLine()
		if !ok {
			if s.err == nil {
				s.finish()
			}
			return
		}

		// comments and blank lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		s.records++
		m, err := parseDBCANLine(line)
		if err != nil {
			s.fail(err)
			return
		}

		s.pending = append(s.pending, m)
		return
	}
}

// parseDBCANLine parses a single, trimmed row of a dbCAN table
func parseDBCANLine(line string) (m Match, err error) {
	cols := strings.Split(line, "\t")
	if len(cols) != len(dbcanColumns) {
		return Match{}, wrongColumns(len(cols), len(dbcanColumns))
	}

	p := fieldParser{cols: cols, names: dbcanColumns}
	m = Match{
		HMM:      SplitHMM(cols[0]),
		HMMLen:   p.int(1),
		SeqID:    cols[2],
		QueryLen: p.int(3),
		EValue:   p.float(4),
		HMMFrom:  p.int(5),
		HMMTo:    p.int(6),
		AliFrom:  p.int(7),
		AliTo:    p.int(8),
		Coverage: p.float(9),
	}
	if p.err != nil {
		return Match{}, p.err
	}
	return m, nil
}

// fieldParser converts columns of a line, keeping the first failure
type fieldParser struct {
	cols  []string
	names []string
	err   error
}

func (p *fieldParser) name(i int) string {
	if i < len(p.names) && p.names[i] != "" {
		return p.names[i]
	}
	return strconv.Itoa(i + 1)
}

func (p *fieldParser) int(i int) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.cols[i])
	if err != nil {
		p.err = illegalValue(p.cols[i], p.name(i), "an integer")
	}
	return v
}

func (p *fieldParser) float(i int) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.cols[i], 64)
	if err != nil {
		p.err = illegalValue(p.cols[i], p.name(i), "a float")
	}
	return v
}
