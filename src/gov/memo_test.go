package gov

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProposalMemo(t *testing.T) {
	memo := BuildProposalMemo("Fund the community pool")
	assert.Equal(t, "Gov Fee - Proposal: Fund the community pool", memo)
	assert.True(t, IsCreationMemo(memo))
	assert.False(t, IsVoteMemo(memo))
}

func TestBuildProposalMemoTruncatesTitle(t *testing.T) {
	long := strings.Repeat("x", 300)
	memo := BuildProposalMemo(long)
	assert.Equal(t, "Gov Fee - Proposal: "+strings.Repeat("x", 100), memo)
}

func TestBuildProposalMemoTruncatesOnRuneBoundary(t *testing.T) {
	// A two-byte rune straddling the cap must be dropped whole, never split.
	title := strings.Repeat("x", 99) + "é" + strings.Repeat("y", 50)
	memo := BuildProposalMemo(title)
	assert.True(t, utf8.ValidString(memo))
	assert.Equal(t, "Gov Fee - Proposal: "+strings.Repeat("x", 99), memo)

	// A multi-byte rune ending exactly at the cap survives.
	title = strings.Repeat("x", 98) + "é" + strings.Repeat("y", 50)
	memo = BuildProposalMemo(title)
	assert.True(t, utf8.ValidString(memo))
	assert.Equal(t, "Gov Fee - Proposal: "+strings.Repeat("x", 98)+"é", memo)
}

func TestBuildVoteMemo(t *testing.T) {
	assert.Equal(t, "Gov Fee - Vote: FOR #3", BuildVoteMemo("3", VoteFor))
	assert.Equal(t, "Gov Fee - Vote: AGAINST #12", BuildVoteMemo("12", VoteAgainst))
}

func TestParseVoteMemo(t *testing.T) {
	choice, id, ok := ParseVoteMemo("Gov Fee - Vote: FOR #3")
	require.True(t, ok)
	assert.Equal(t, VoteFor, choice)
	assert.Equal(t, "3", id)

	choice, id, ok = ParseVoteMemo("Gov Fee - Vote: AGAINST #12")
	require.True(t, ok)
	assert.Equal(t, VoteAgainst, choice)
	assert.Equal(t, "12", id)

	_, _, ok = ParseVoteMemo("Gov Fee - Proposal: budget")
	assert.False(t, ok)

	_, _, ok = ParseVoteMemo("regular payment memo")
	assert.False(t, ok)
}

func TestVoteMemoIsNeverCreation(t *testing.T) {
	// The vote marker wins even when a creation marker also appears.
	memo := "Proposal Creation: Gov Fee - Vote: FOR #1"
	assert.True(t, IsVoteMemo(memo))
	assert.False(t, IsCreationMemo(memo))
	assert.True(t, IsGovernanceMemo(memo))
}

func TestIsGovernanceMemo(t *testing.T) {
	assert.True(t, IsGovernanceMemo("Proposal Creation: something"))
	assert.True(t, IsGovernanceMemo("Gov Fee - Proposal: something"))
	assert.True(t, IsGovernanceMemo("Gov Fee - Vote: FOR #1"))
	assert.False(t, IsGovernanceMemo("rent payment"))
	assert.False(t, IsGovernanceMemo(""))
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Fund the pool", ExtractTitle("Gov Fee - Proposal: Fund the pool"))
	assert.Equal(t, "Legacy title", ExtractTitle("Proposal Creation: Legacy title"))
	assert.Equal(t, "no marker at all", ExtractTitle("  no marker at all "))
}
