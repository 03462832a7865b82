package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stake-plus/govboard/src/api/types"
)

func TestAnnounceable(t *testing.T) {
	lastCheck := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &Announcer{lastCheck: lastCheck, seen: map[string]bool{"0xseen": true}}

	// A proposal discovered by reconciliation carries a chain timestamp far
	// in the past; the fresh row must still be announced.
	fresh := types.CachedProposal{
		TxHash:    "0xnew",
		CreatedAt: lastCheck.Add(-30 * 24 * time.Hour),
		UpdatedAt: lastCheck.Add(time.Minute),
	}
	assert.True(t, a.announceable(fresh))

	stale := fresh
	stale.UpdatedAt = lastCheck.Add(-time.Minute)
	assert.False(t, a.announceable(stale))

	dup := fresh
	dup.TxHash = "0xseen"
	assert.False(t, a.announceable(dup))

	noHash := fresh
	noHash.TxHash = ""
	assert.False(t, a.announceable(noHash))
}
