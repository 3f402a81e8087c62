package gait

import "slices"

// FindLocalMinima returns, in ascending order, every index i with
// window <= i < len(s)-window where s[i] is defined and strictly below every
// other defined sample in [i-window, i+window]. Undefined neighbours are
// ignored; they neither qualify nor block.
//
// The scan needs window samples of look-ahead, so it runs over a fully
// buffered series.
func FindLocalMinima(s Series, window int) []int {
	if window < 1 {
		return nil
	}
	var minima []int
	for i := window; i < len(s)-window; i++ {
		v, ok := s[i].Get()
		if !ok {
			continue
		}
		if isStrictMinimum(s, i, v, window) {
			minima = append(minima, i)
		}
	}
	return minima
}

func isStrictMinimum(s Series, i int, v float64, window int) bool {
	for j := i - window; j <= i+window; j++ {
		if j == i {
			continue
		}
		if w, ok := s[j].Get(); ok && !(v < w) {
			return false
		}
	}
	return true
}

// StrikeCandidate is a detected minimum before classification.
type StrikeCandidate struct {
	Frame int
	Side  Side
}

// MergeStrikes interleaves per-side minima into chronological order. At equal
// frames left candidates stay ahead of right ones.
func MergeStrikes(left, right []int) []StrikeCandidate {
	out := make([]StrikeCandidate, 0, len(left)+len(right))
	for _, f := range left {
		out = append(out, StrikeCandidate{Frame: f, Side: Left})
	}
	for _, f := range right {
		out = append(out, StrikeCandidate{Frame: f, Side: Right})
	}
	slices.SortStableFunc(out, func(a, b StrikeCandidate) int {
		return a.Frame - b.Frame
	})
	return out
}
