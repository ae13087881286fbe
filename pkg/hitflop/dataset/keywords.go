package dataset

import (
	"fmt"
	"strconv"

	"github.com/cognicore/hitflop/pkg/hitflop/internalerr"
)

// Keyword comparison slider bounds.
const (
	MinTopN     = 10
	MaxTopN     = 50
	DefaultTopN = 20
	TopNStep    = 5
)

// CompareKeywords takes the first topN comparison rows and splits them into
// hit and flop keyword lists, skipping empty keywords on each side.
func CompareKeywords(rows []KeywordComparison, topN int) (hit, flop []Keyword) {
	if topN < 0 {
		topN = 0
	}
	if topN < len(rows) {
		rows = rows[:topN]
	}
	for _, r := range rows {
		if r.HitKeyword != "" {
			hit = append(hit, Keyword{Keyword: r.HitKeyword, Score: r.HitScore})
		}
		if r.FlopKeyword != "" {
			flop = append(flop, Keyword{Keyword: r.FlopKeyword, Score: r.FlopScore})
		}
	}
	return hit, flop
}

// ParseTopN reads a top_n parameter. Empty means DefaultTopN; values outside
// [MinTopN, MaxTopN] or off the TopNStep grid are rejected.
func ParseTopN(s string) (int, error) {
	if s == "" {
		return DefaultTopN, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < MinTopN || n > MaxTopN || (n-MinTopN)%TopNStep != 0 {
		return 0, fmt.Errorf("top_n %q: want %d..%d in steps of %d: %w", s, MinTopN, MaxTopN, TopNStep, internalerr.ErrInvalidInput)
	}
	return n, nil
}
