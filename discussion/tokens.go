package discussion

import (
	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// tokenCounter estimates token counts for the history budget. It prefers
// a real BPE encoding and falls back to a bytes/4 heuristic when the
// encoding cannot be loaded (for example, offline environments).
type tokenCounter struct {
	enc *tiktoken.Tiktoken
}

func newTokenCounter(logger *zap.Logger) *tokenCounter {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		if logger != nil {
			logger.Warn("token encoding unavailable, using heuristic estimate", zap.Error(err))
		}
		return &tokenCounter{}
	}
	return &tokenCounter{enc: enc}
}

// Count returns the estimated token count of s.
func (t *tokenCounter) Count(s string) int {
	if t.enc != nil {
		return len(t.enc.Encode(s, nil, nil))
	}
	n := len(s) / 4
	if n == 0 && len(s) > 0 {
		n = 1
	}
	return n
}

// truncateToBudget drops the oldest entries until the remaining ones fit
// within budget tokens. A budget <= 0 disables truncation.
func (t *tokenCounter) truncateToBudget(entries []string, budget int) []string {
	if budget <= 0 {
		return entries
	}
	total := 0
	start := len(entries)
	for i := len(entries) - 1; i >= 0; i-- {
		cost := t.Count(entries[i])
		// The most recent entry is always kept, even over budget.
		if total+cost > budget && start < len(entries) {
			break
		}
		total += cost
		start = i
	}
	return entries[start:]
}
