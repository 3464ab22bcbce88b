package hmmer

import "strings"

// the domain rows of a hit are at least this wide:
// # ! score bias c-Evalue i-Evalue hmmfrom hmmto .. alifrom alito
const textDomainColumns = 11

var textNames = []string{
	5:  "i-Evalue",
	6:  "hmmfrom",
	7:  "hmm to",
	9:  "alifrom",
	10: "ali to",
}

// readText reads an hmmscan plain text report until a query is complete.
//
// Each query starts with a "Query:" line and ends with "//". Hits within it
// start with ">>" and are followed by a table of domains, whose rows have
// "!" or "?" in the second column. The alignments that follow the table
// are skipped.
func (s *Scanner) readText() {
	for {
		line, ok := s.readLine()
		if !ok {
			if s.err == nil {
				s.flushQuery()
				s.finish()
			}
			return
		}

		switch {
		case line == "":
			continue

		case strings.HasPrefix(line, "Query:"):
			s.flushQuery()
			fields := strings.Fields(line)
			if len(fields) < 2 {
				s.fail(wrongColumns(len(fields), 2))
				return
			}
			s.query = fields[1]
			s.hit = ""
			s.inDomains = false
			s.records++

		case line == "//":
			s.flushQuery()
			s.query = ""
			s.inDomains = false
			if len(s.pending) > 0 {
				return
			}

		case strings.HasPrefix(line, ">>"):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				s.fail(wrongColumns(len(fields), 2))
				return
			}
			s.hit = fields[1]
			s.inDomains = true

		case strings.HasPrefix(line, "Alignments for each domain"),
			strings.HasPrefix(line, "Internal pipeline statistics"):
			s.inDomains = false

		case s.inDomains && s.query != "":
			fields := strings.Fields(line)
			if len(fields) < textDomainColumns || (fields[1] != "!" && fields[1] != "?") {
				continue
			}

			p := fieldParser{cols: fields, names: textNames}
			evalue := p.float(5)
			hmmFrom, hmmTo := p.int(6), p.int(7)
			aliFrom, aliTo := p.int(9), p.int(10)
			if p.err != nil {
				s.fail(p.err)
				return
			}

			m, ok := s.candidate(s.hit, s.query, evalue, hmmFrom, hmmTo, aliFrom, aliTo)
			if s.err != nil {
				return
			}
			if ok {
				s.candidates = append(s.candidates, m)
			}
		}
	}
}
