package gov

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Memo markers. The memo field of a zero-value self-payment is the only
// on-chain signal; everything below parses or produces that grammar.
const (
	creationMarker    = "Proposal Creation:"
	feeProposalMarker = "Gov Fee - Proposal:"
	voteMarker        = "Gov Fee - Vote:"

	// Memo titles are capped; the full title lives in the metadata cache.
	memoTitleLimit = 100
)

const (
	defaultDeadline   = 4 * 24 * time.Hour
	upcomingThreshold = 7 * 24 * time.Hour
)

var (
	voteRe  = regexp.MustCompile(`Gov Fee - Vote:\s*(FOR|AGAINST)\s*#(\d+)`)
	titleRe = regexp.MustCompile(`(?:Gov Fee - Proposal:|Proposal Creation:)\s*(.+)`)
)

// BuildProposalMemo produces the creation memo, truncating the title on a
// rune boundary so the memo stays valid UTF-8.
func BuildProposalMemo(title string) string {
	if len(title) > memoTitleLimit {
		cut := memoTitleLimit
		for cut > 0 && !utf8.RuneStart(title[cut]) {
			cut--
		}
		title = title[:cut]
	}
	return feeProposalMarker + " " + title
}

// BuildVoteMemo produces the vote memo, e.g. "Gov Fee - Vote: FOR #3".
func BuildVoteMemo(proposalID string, choice VoteChoice) string {
	side := "FOR"
	if choice == VoteAgainst {
		side = "AGAINST"
	}
	return fmt.Sprintf("%s %s #%s", voteMarker, side, proposalID)
}

// ParseVoteMemo extracts the choice and proposal id from a vote memo.
func ParseVoteMemo(memo string) (VoteChoice, string, bool) {
	m := voteRe.FindStringSubmatch(memo)
	if m == nil {
		return "", "", false
	}
	choice := VoteFor
	if m[1] == "AGAINST" {
		choice = VoteAgainst
	}
	return choice, m[2], true
}

// IsVoteMemo reports whether the memo carries a vote marker.
func IsVoteMemo(memo string) bool {
	return voteRe.MatchString(memo)
}

// IsCreationMemo reports whether the memo marks a proposal creation. A memo
// that also matches the vote pattern is a vote, never a creation.
func IsCreationMemo(memo string) bool {
	if IsVoteMemo(memo) {
		return false
	}
	return strings.Contains(memo, creationMarker) || strings.Contains(memo, feeProposalMarker)
}

// IsGovernanceMemo reports whether the memo carries any governance marker.
func IsGovernanceMemo(memo string) bool {
	return strings.Contains(memo, creationMarker) ||
		strings.Contains(memo, feeProposalMarker) ||
		strings.Contains(memo, voteMarker)
}

// ExtractTitle recovers a best-effort title from a truncated creation memo.
func ExtractTitle(memo string) string {
	if m := titleRe.FindStringSubmatch(memo); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(memo)
}
