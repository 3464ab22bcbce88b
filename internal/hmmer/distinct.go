package hmmer

import "sort"

// overlapThreshold is the fraction of either alignment that, when shared,
// makes two hits the same domain
const overlapThreshold = 0.5

// distinct reduces the hits of one query to one hit per region.
//
// Hits are swept left to right by (AliFrom, AliTo). A hit overlapping the
// current winner by more than threshold of either alignment replaces the
// winner only if its e-value is strictly lower, so ties keep the earlier hit.
// Otherwise the winner is kept and the hit starts a new region.
func distinct(ms []Match, threshold float64) []Match {
	if len(ms) == 0 {
		return nil
	}

	sorted := append([]Match{}, ms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].AliFrom != sorted[j].AliFrom {
			return sorted[i].AliFrom < sorted[j].AliFrom
		}
		return sorted[i].AliTo < sorted[j].AliTo
	})

	var winners []Match
	winner := sorted[0]
	for _, m := range sorted[1:] {
		dist := float64(winner.AliTo - m.AliFrom)
		winnerFrac := dist / float64(winner.AliLen())
		matchFrac := dist / float64(m.AliLen())

		if dist > 0 && (winnerFrac > threshold || matchFrac > threshold) {
			if m.EValue < winner.EValue {
				winner = m
			}
			continue
		}

		winners = append(winners, winner)
		winner = m
	}

	return append(winners, winner)
}

// significant reports whether a hit passes the dbCAN coverage and e-value
// thresholds: more than 30% of the HMM covered, and an e-value below 1e-5
// for alignments longer than 80 residues or below 1e-3 for shorter ones.
func significant(m Match) bool {
	if m.Coverage <= 0.3 {
		return false
	}

	if m.AliLen() > 80 {
		return m.EValue < 1e-5
	}
	return m.EValue < 1e-3
}
