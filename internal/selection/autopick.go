package selection

import (
	"sleeve/internal/providers"
	"sleeve/internal/textutil"
)

// Policy holds the thresholds for unattended candidate selection.
type Policy struct {
	// Threshold is the minimum title similarity, in [0, 1], for an
	// unattended pick.
	Threshold float64

	// YearTolerance is the maximum distance between the query year and a
	// candidate year before the candidate is rejected. Unknown years on
	// either side never reject; negative tolerances count as zero.
	YearTolerance int
}

// Score is a candidate annotated with its similarity to the query title.
type Score struct {
	Candidate  providers.Candidate
	Similarity float64
}

// AutoPick returns the image URL of the best candidate when it clears the
// policy, along with the winning score. A single candidate that survives the
// year check is picked regardless of similarity. Ties keep the earliest
// candidate: later candidates must score strictly higher to displace it.
func (p Policy) AutoPick(query providers.Query, candidates []providers.Candidate) (string, Score, bool) {
	if len(candidates) == 0 {
		return "", Score{}, false
	}

	eligible := make([]Score, 0, len(candidates))
	for _, cand := range candidates {
		if p.rejectedByYear(query.Year, cand.Year) {
			continue
		}
		eligible = append(eligible, Score{
			Candidate:  cand,
			Similarity: textutil.TitleSimilarity(query.Album, cand.Title),
		})
	}
	if len(eligible) == 0 {
		return "", Score{}, false
	}

	if len(candidates) == 1 {
		only := eligible[0]
		return only.Candidate.ImageURL, only, true
	}

	best := eligible[0]
	for _, scored := range eligible[1:] {
		if scored.Similarity > best.Similarity {
			best = scored
		}
	}
	if best.Similarity < p.Threshold {
		return "", best, false
	}
	return best.Candidate.ImageURL, best, true
}

func (p Policy) rejectedByYear(queryYear, candidateYear int) bool {
	if queryYear == 0 || candidateYear == 0 {
		return false
	}
	tolerance := p.YearTolerance
	if tolerance < 0 {
		tolerance = 0
	}
	diff := queryYear - candidateYear
	if diff < 0 {
		diff = -diff
	}
	return diff > tolerance
}
