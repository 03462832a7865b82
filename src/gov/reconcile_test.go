package gov

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/govboard/src/indexer"
)

const testAddr = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func noMeta(string) *ProposalMeta { return nil }

func TestBuildSnapshotFromHistory(t *testing.T) {
	now := fixedNow()
	base := now.Add(-48 * time.Hour)

	txs := []indexer.Transaction{
		{Hash: "tx1", Sender: testAddr, Memo: "Gov Fee - Proposal: Fund the pool", Timestamp: base},
		{Hash: "tx2", Sender: testAddr, Memo: "Gov Fee - Proposal: Upgrade runtime", Timestamp: base.Add(time.Hour)},
		{Hash: "tx3", Sender: testAddr, Memo: "Gov Fee - Vote: FOR #1", Timestamp: base.Add(2 * time.Hour)},
		{Hash: "tx4", Sender: "5other", Memo: "Gov Fee - Vote: AGAINST #1", Timestamp: base.Add(3 * time.Hour)},
		{Hash: "tx5", Sender: "5other", Memo: "Gov Fee - Vote: FOR #2", Timestamp: base.Add(4 * time.Hour)},
		{Hash: "tx6", Sender: testAddr, Memo: "rent payment", Timestamp: base.Add(5 * time.Hour)},
	}

	snap := BuildSnapshot(testAddr, txs, noMeta, now)

	require.Len(t, snap.Proposals, 2)
	assert.Equal(t, "1", snap.Proposals[0].ID)
	assert.Equal(t, "Fund the pool", snap.Proposals[0].Title)
	assert.Equal(t, Tally{For: 1, Against: 1}, snap.Proposals[0].Tally)
	assert.Equal(t, "2", snap.Proposals[1].ID)
	assert.Equal(t, "Upgrade runtime", snap.Proposals[1].Title)
	assert.Equal(t, Tally{For: 1, Against: 0}, snap.Proposals[1].Tally)

	// Only the account's own vote lands in the vote map.
	assert.Equal(t, map[string]VoteChoice{"1": VoteFor}, snap.Votes)

	// Two creations plus three votes; the plain payment is ignored.
	assert.Len(t, snap.Transactions, 5)
}

func TestBuildSnapshotVoteMarkerBeatsCreation(t *testing.T) {
	txs := []indexer.Transaction{
		{Hash: "tx1", Sender: testAddr, Memo: "Gov Fee - Proposal: Real proposal", Timestamp: fixedNow()},
		{Hash: "tx2", Sender: testAddr, Memo: "Proposal Creation: Gov Fee - Vote: FOR #1", Timestamp: fixedNow()},
	}

	snap := BuildSnapshot(testAddr, txs, noMeta, fixedNow())

	require.Len(t, snap.Proposals, 1)
	assert.Equal(t, "Real proposal", snap.Proposals[0].Title)
	assert.Equal(t, Tally{For: 1}, snap.Proposals[0].Tally)
	assert.Equal(t, VoteFor, snap.Votes["1"])
}

func TestBuildSnapshotOnlyOwnCreationsCount(t *testing.T) {
	txs := []indexer.Transaction{
		{Hash: "tx1", Sender: "5someoneelse", Memo: "Gov Fee - Proposal: Not mine", Timestamp: fixedNow()},
	}

	snap := BuildSnapshot(testAddr, txs, noMeta, fixedNow())

	// A foreign creation still trips the recovered-proposal path, but is
	// never classified as an owned creation.
	require.Len(t, snap.Proposals, 1)
	assert.True(t, snap.Proposals[0].Recovered)
}

func TestBuildSnapshotMetadataWinsOverMemo(t *testing.T) {
	now := fixedNow()
	deadline := now.Add(72 * time.Hour)
	meta := func(hash string) *ProposalMeta {
		if hash != "tx1" {
			return nil
		}
		return &ProposalMeta{
			TxHash:      "tx1",
			Title:       "Full untruncated title",
			Description: "Long description",
			Deadline:    deadline,
		}
	}

	txs := []indexer.Transaction{
		{Hash: "tx1", Sender: testAddr, Memo: "Gov Fee - Proposal: Full untrunc", Timestamp: now.Add(-time.Hour)},
	}

	snap := BuildSnapshot(testAddr, txs, meta, now)

	require.Len(t, snap.Proposals, 1)
	assert.Equal(t, "Full untruncated title", snap.Proposals[0].Title)
	assert.Equal(t, "Long description", snap.Proposals[0].Description)
	assert.Equal(t, deadline, snap.Proposals[0].Deadline)
	assert.Equal(t, StatusActive, snap.Proposals[0].Status)
}

func TestBuildSnapshotFallbackDeadlineWithoutMetadata(t *testing.T) {
	now := fixedNow()
	created := now.Add(-time.Hour)
	txs := []indexer.Transaction{
		{Hash: "tx1", Sender: testAddr, Memo: "Gov Fee - Proposal: No meta", Timestamp: created},
	}

	snap := BuildSnapshot(testAddr, txs, noMeta, now)

	require.Len(t, snap.Proposals, 1)
	assert.Equal(t, created.Add(4*24*time.Hour), snap.Proposals[0].Deadline)
}

func TestBuildSnapshotEmptyHistory(t *testing.T) {
	snap := BuildSnapshot(testAddr, nil, noMeta, fixedNow())
	assert.Empty(t, snap.Proposals)
	assert.Empty(t, snap.Votes)
	assert.Empty(t, snap.Transactions)
}

func TestStatusForDeadline(t *testing.T) {
	now := fixedNow()
	assert.Equal(t, StatusCompleted, StatusForDeadline(now.Add(-time.Minute), now))
	assert.Equal(t, StatusCompleted, StatusForDeadline(now, now))
	assert.Equal(t, StatusActive, StatusForDeadline(now.Add(24*time.Hour), now))
	assert.Equal(t, StatusUpcoming, StatusForDeadline(now.Add(8*24*time.Hour), now))
}

// --- Reconcile with a dead indexer ---

type failingHistory struct{}

func (failingHistory) AccountTransactions(ctx context.Context, address string, limit int) ([]indexer.Transaction, error) {
	return nil, errors.New("connection refused")
}

type stubNodeReader struct {
	exists bool
	called bool
}

func (n *stubNodeReader) AccountExists(ctx context.Context, address string) (bool, error) {
	n.called = true
	return n.exists, nil
}

func TestReconcileIndexerDownDegradesToEmpty(t *testing.T) {
	node := &stubNodeReader{exists: true}
	store := newMemStore()
	r := NewReconciler(failingHistory{}, node, store, nil)

	snap, err := r.Reconcile(context.Background(), testAddr)
	require.NoError(t, err)
	assert.Empty(t, snap.Proposals)
	assert.True(t, node.called)

	// The degraded pass never overwrites cached state.
	assert.Zero(t, store.replaceCalls)
}

type fixedHistory struct {
	txs []indexer.Transaction
}

func (h fixedHistory) AccountTransactions(ctx context.Context, address string, limit int) ([]indexer.Transaction, error) {
	return h.txs, nil
}

func TestReconcilePersistsSnapshot(t *testing.T) {
	store := newMemStore()
	r := NewReconciler(fixedHistory{txs: []indexer.Transaction{
		{Hash: "tx1", Sender: testAddr, Memo: "Gov Fee - Proposal: Persisted", Timestamp: fixedNow().Add(-time.Hour)},
	}}, nil, store, nil)
	r.now = fixedNow

	snap, err := r.Reconcile(context.Background(), testAddr)
	require.NoError(t, err)
	require.Len(t, snap.Proposals, 1)
	assert.Equal(t, 1, store.replaceCalls)

	loaded, err := store.LoadSnapshot(context.Background(), testAddr)
	require.NoError(t, err)
	require.Len(t, loaded.Proposals, 1)
	assert.Equal(t, "Persisted", loaded.Proposals[0].Title)
}
