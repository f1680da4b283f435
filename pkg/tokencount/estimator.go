// Package tokencount provides cheap token estimation for context budgeting.
// The heuristic (~4 characters per token for BPE-based models) is not
// billing-accurate; it exists to decide when history must be summarized.
package tokencount

import "fmt"

// MessageOverhead approximates the per-message cost of role and formatting
// metadata on the wire.
const MessageOverhead = 4

// Estimate returns the estimated token count of text. The +1 floor applies to
// every input, so non-empty text always estimates to at least one token.
func Estimate(text string) int {
	return len(text)/4 + 1
}

// Message is the minimal role/content pair needed for estimation.
type Message struct {
	Role    string
	Content string
}

// EstimateMessages sums the content estimate of every message plus a fixed
// per-message overhead.
func EstimateMessages(messages []Message) int {
	total := 0
	for _, msg := range messages {
		total += Estimate(msg.Content)
		total += MessageOverhead
	}
	return total
}

// Format renders a token count for display, e.g. "842" or "1.2K".
func Format(count int) string {
	if count < 1000 {
		return fmt.Sprintf("%d", count)
	}
	return fmt.Sprintf("%.1fK", float64(count)/1000)
}
