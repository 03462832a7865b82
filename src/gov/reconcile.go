package gov

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/stake-plus/govboard/src/indexer"
)

// History lists an account's recent transactions from the indexing service.
type History interface {
	AccountTransactions(ctx context.Context, address string, limit int) ([]indexer.Transaction, error)
}

// NodeReader is the minimal node access reconciliation needs when the
// indexer is unavailable.
type NodeReader interface {
	AccountExists(ctx context.Context, address string) (bool, error)
}

// Store is the local read-through cache for reconciled state, optimistic
// updates and the creation-time metadata records.
type Store interface {
	Meta(ctx context.Context, txHash string) (*ProposalMeta, error)
	SaveMeta(ctx context.Context, meta ProposalMeta) error

	ReplaceSnapshot(ctx context.Context, address string, snap Snapshot) error
	LoadSnapshot(ctx context.Context, address string) (Snapshot, error)

	AppendProposal(ctx context.Context, address string, p Proposal) error
	ProposalByID(ctx context.Context, address, id string) (*Proposal, error)
	ProposalCount(ctx context.Context, address string) (int, error)
	BumpTally(ctx context.Context, address, id string, choice VoteChoice) error
	VoteChoiceFor(ctx context.Context, address, id string) (VoteChoice, bool, error)
	SaveVote(ctx context.Context, address, id string, choice VoteChoice, txHash string) error
	AppendTransaction(ctx context.Context, address string, tx Transaction) error

	Clear(ctx context.Context, address string) error
}

// Publisher announces reconciliation results, e.g. onto a redis stream.
type Publisher interface {
	SnapshotReconciled(ctx context.Context, address string, proposals int)
}

// Reconciler rebuilds the proposal/vote model from an account's historical
// transactions. The chain is the source of truth: every pass fully
// re-derives the model and overwrites any optimistic local state.
type Reconciler struct {
	history   History
	node      NodeReader
	store     Store
	publisher Publisher
	now       func() time.Time
}

func NewReconciler(history History, node NodeReader, store Store, publisher Publisher) *Reconciler {
	return &Reconciler{
		history:   history,
		node:      node,
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// Reconcile fetches the account's recent history and rebuilds its snapshot.
// Indexer failures degrade to an empty snapshot rather than an error; they
// are retried only on the next externally triggered reload.
func (r *Reconciler) Reconcile(ctx context.Context, address string) (Snapshot, error) {
	txs, err := r.history.AccountTransactions(ctx, address, indexer.DefaultWindow)
	if err != nil {
		log.Printf("reconcile %s: indexer unavailable: %v", address, err)
		if r.node != nil {
			if ok, nerr := r.node.AccountExists(ctx, address); nerr != nil {
				log.Printf("reconcile %s: node fallback failed: %v", address, nerr)
			} else if !ok {
				log.Printf("reconcile %s: account not found on chain", address)
			}
		}
		return Snapshot{Votes: map[string]VoteChoice{}}, nil
	}

	snap := BuildSnapshot(address, txs, r.metaLookup(ctx), r.now().UTC())

	if err := r.store.ReplaceSnapshot(ctx, address, snap); err != nil {
		log.Printf("reconcile %s: persist snapshot: %v", address, err)
	}
	if r.publisher != nil {
		r.publisher.SnapshotReconciled(ctx, address, len(snap.Proposals))
	}
	return snap, nil
}

// MetaLookup resolves a creation transaction hash to its cached metadata,
// or nil when no record exists.
type MetaLookup func(txHash string) *ProposalMeta

func (r *Reconciler) metaLookup(ctx context.Context) MetaLookup {
	return func(txHash string) *ProposalMeta {
		m, err := r.store.Meta(ctx, txHash)
		if err != nil {
			log.Printf("reconcile: metadata lookup for %s: %v", txHash, err)
			return nil
		}
		return m
	}
}

// BuildSnapshot classifies raw transactions into proposals, tallies and the
// account's own vote map. Proposal ids are positional: 1-based over creation
// transactions in the order the indexer returned them.
func BuildSnapshot(address string, txs []indexer.Transaction, meta MetaLookup, now time.Time) Snapshot {
	snap := Snapshot{Votes: make(map[string]VoteChoice)}

	// Creation pass. A memo matching the vote pattern is never a creation.
	for _, tx := range txs {
		if tx.Sender != address || !IsCreationMemo(tx.Memo) {
			continue
		}
		id := strconv.Itoa(len(snap.Proposals) + 1)
		p := Proposal{
			ID:        id,
			Creator:   tx.Sender,
			TxHash:    tx.Hash,
			CreatedAt: tx.Timestamp,
		}
		if m := meta(tx.Hash); m != nil {
			p.Title = m.Title
			p.Description = m.Description
			p.Deadline = m.Deadline
		} else {
			p.Title = ExtractTitle(tx.Memo)
			p.Deadline = tx.Timestamp.Add(defaultDeadline)
		}
		p.Status = StatusForDeadline(p.Deadline, now)
		snap.Proposals = append(snap.Proposals, p)
		snap.Transactions = append(snap.Transactions, Transaction{
			Hash:       tx.Hash,
			Kind:       TxKindCreate,
			ProposalID: id,
			Timestamp:  tx.Timestamp,
		})
	}

	// No creations but something governance-tagged exists: synthesize a
	// single recovered proposal so the user is not shown a blank state.
	if len(snap.Proposals) == 0 {
		for _, tx := range txs {
			if !IsGovernanceMemo(tx.Memo) {
				continue
			}
			p := Proposal{
				ID:        "1",
				Title:     "Recovered proposal",
				Creator:   tx.Sender,
				TxHash:    tx.Hash,
				CreatedAt: tx.Timestamp,
				Deadline:  tx.Timestamp.Add(defaultDeadline),
				Recovered: true,
			}
			if IsCreationMemo(tx.Memo) {
				p.Title = ExtractTitle(tx.Memo)
			}
			p.Status = StatusForDeadline(p.Deadline, now)
			snap.Proposals = append(snap.Proposals, p)
			break
		}
	}

	index := make(map[string]int, len(snap.Proposals))
	for i, p := range snap.Proposals {
		index[p.ID] = i
	}

	// Vote pass: count tallies and record the caller's own choices.
	for _, tx := range txs {
		choice, id, ok := ParseVoteMemo(tx.Memo)
		if !ok {
			continue
		}
		if i, found := index[id]; found {
			if choice == VoteFor {
				snap.Proposals[i].Tally.For++
			} else {
				snap.Proposals[i].Tally.Against++
			}
		}
		if tx.Sender == address {
			snap.Votes[id] = choice
		}
		snap.Transactions = append(snap.Transactions, Transaction{
			Hash:       tx.Hash,
			Kind:       TxKindVote,
			ProposalID: id,
			Timestamp:  tx.Timestamp,
		})
	}

	return snap
}
