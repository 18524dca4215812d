package aggregate

import "sleeve/internal/providers"

// SoftYearFilter keeps candidates whose year is unknown or within tolerance
// of the wanted year. A tolerance of zero means exact match only; negative
// tolerances are treated as zero.
func SoftYearFilter(candidates []providers.Candidate, wantYear, tolerance int) []providers.Candidate {
	if wantYear == 0 {
		return candidates
	}
	if tolerance < 0 {
		tolerance = 0
	}
	kept := make([]providers.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Year == 0 || absInt(cand.Year-wantYear) <= tolerance {
			kept = append(kept, cand)
		}
	}
	return kept
}

// DedupByImage removes candidates that share an image URL with an earlier
// candidate, preserving order. Candidates without an image URL are dropped;
// there is nothing to download for them.
func DedupByImage(candidates []providers.Candidate) []providers.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	kept := make([]providers.Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if cand.ImageURL == "" {
			continue
		}
		if _, dup := seen[cand.ImageURL]; dup {
			continue
		}
		seen[cand.ImageURL] = struct{}{}
		kept = append(kept, cand)
	}
	return kept
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
