package hmmer

import "strings"

// the domain table has 22 fixed columns before a free text description
const domtabMinColumns = 22

// names of the columns that are read, for error messages
var domtabNames = []string{
	0:  "target name",
	3:  "query name",
	12: "i-Evalue",
	15: "hmm from",
	16: "hmm to",
	17: "ali from",
	18: "ali to",
}

// readDomtab reads rows of an hmmscan --domtblout table until a query
// is complete. Rows of a query are consecutive.
func (s *Scanner) readDomtab() {
	for {
		line, ok := s.readLine()
		if !ok {
			if s.err == nil {
				s.flushQuery()
				s.finish()
			}
			return
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Fields(line)
		if len(cols) < domtabMinColumns {
			s.fail(wrongColumns(len(cols), domtabMinColumns))
			return
		}

		p := fieldParser{cols: cols, names: domtabNames}
		evalue := p.float(12)
		hmmFrom, hmmTo := p.int(15), p.int(16)
		aliFrom, aliTo := p.int(17), p.int(18)
		if p.err != nil {
			s.fail(p.err)
			return
		}

		query := cols[3]
		newQuery := s.records == 0 || query != s.query
		if newQuery {
			s.flushQuery()
			s.query = query
			s.records++
		}

		m, ok := s.candidate(cols[0], query, evalue, hmmFrom, hmmTo, aliFrom, aliTo)
		if s.err != nil {
			return
		}
		if ok {
			s.candidates = append(s.candidates, m)
		}

		if newQuery && len(s.pending) > 0 {
			return
		}
	}
}
