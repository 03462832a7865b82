package data

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/stake-plus/govboard/src/api/types"
	"github.com/stake-plus/govboard/src/gov"
	"github.com/stake-plus/govboard/src/wallet"
)

// Store is the MySQL-backed local cache. It implements gov.Store and
// wallet.ConnectionStore.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- metadata cache ---

func (s *Store) Meta(ctx context.Context, txHash string) (*gov.ProposalMeta, error) {
	var row types.ProposalMeta
	err := s.db.WithContext(ctx).First(&row, "tx_hash = ?", txHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &gov.ProposalMeta{
		TxHash:      row.TxHash,
		Title:       row.Title,
		Description: row.Description,
		Deadline:    row.Deadline,
		Creator:     row.Creator,
		CreatedAt:   row.CreatedAt,
	}, nil
}

func (s *Store) SaveMeta(ctx context.Context, meta gov.ProposalMeta) error {
	return s.db.WithContext(ctx).Save(&types.ProposalMeta{
		TxHash:      meta.TxHash,
		Title:       meta.Title,
		Description: meta.Description,
		Deadline:    meta.Deadline,
		Creator:     meta.Creator,
		CreatedAt:   meta.CreatedAt,
	}).Error
}

// --- reconciliation cache ---

// ReplaceSnapshot swaps the account's cached rows for the freshly derived
// snapshot. Chain-derived state always overrides optimistic local rows.
func (s *Store) ReplaceSnapshot(ctx context.Context, address string, snap gov.Snapshot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&types.CachedProposal{}, &types.VoteRecord{}, &types.TxRecord{}} {
			if err := tx.Where("address = ?", address).Delete(model).Error; err != nil {
				return err
			}
		}

		for _, p := range snap.Proposals {
			if err := tx.Create(proposalRow(address, p)).Error; err != nil {
				return err
			}
		}
		for propID, choice := range snap.Votes {
			if err := tx.Create(&types.VoteRecord{
				Address:   address,
				PropID:    propID,
				Choice:    string(choice),
				CreatedAt: time.Now(),
			}).Error; err != nil {
				return err
			}
		}
		for _, rec := range snap.Transactions {
			if err := tx.Create(&types.TxRecord{
				Address:   address,
				Hash:      rec.Hash,
				Kind:      rec.Kind,
				PropID:    rec.ProposalID,
				Timestamp: rec.Timestamp,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) LoadSnapshot(ctx context.Context, address string) (gov.Snapshot, error) {
	snap := gov.Snapshot{Votes: make(map[string]gov.VoteChoice)}

	var rows []types.CachedProposal
	if err := s.db.WithContext(ctx).Where("address = ?", address).Order("id ASC").Find(&rows).Error; err != nil {
		return snap, err
	}
	for _, row := range rows {
		snap.Proposals = append(snap.Proposals, proposalFromRow(row))
	}

	var votes []types.VoteRecord
	if err := s.db.WithContext(ctx).Where("address = ?", address).Find(&votes).Error; err != nil {
		return snap, err
	}
	for _, v := range votes {
		snap.Votes[v.PropID] = gov.VoteChoice(v.Choice)
	}

	var txs []types.TxRecord
	if err := s.db.WithContext(ctx).Where("address = ?", address).Order("timestamp DESC").Find(&txs).Error; err != nil {
		return snap, err
	}
	for _, t := range txs {
		snap.Transactions = append(snap.Transactions, gov.Transaction{
			Hash:       t.Hash,
			Kind:       t.Kind,
			ProposalID: t.PropID,
			Timestamp:  t.Timestamp,
		})
	}

	// Cached rows are insert-ordered; make sure positional ids stay sorted
	// even after optimistic appends.
	sort.SliceStable(snap.Proposals, func(i, j int) bool {
		a, _ := strconv.Atoi(snap.Proposals[i].ID)
		b, _ := strconv.Atoi(snap.Proposals[j].ID)
		return a < b
	})

	return snap, nil
}

// --- optimistic updates ---

func (s *Store) AppendProposal(ctx context.Context, address string, p gov.Proposal) error {
	return s.db.WithContext(ctx).Create(proposalRow(address, p)).Error
}

func (s *Store) ProposalByID(ctx context.Context, address, id string) (*gov.Proposal, error) {
	var row types.CachedProposal
	err := s.db.WithContext(ctx).First(&row, "address = ? AND prop_id = ?", address, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := proposalFromRow(row)
	return &p, nil
}

func (s *Store) ProposalCount(ctx context.Context, address string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&types.CachedProposal{}).Where("address = ?", address).Count(&count).Error
	return int(count), err
}

func (s *Store) BumpTally(ctx context.Context, address, id string, choice gov.VoteChoice) error {
	column := "votes_for"
	if choice == gov.VoteAgainst {
		column = "votes_against"
	}
	return s.db.WithContext(ctx).Model(&types.CachedProposal{}).
		Where("address = ? AND prop_id = ?", address, id).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

func (s *Store) VoteChoiceFor(ctx context.Context, address, id string) (gov.VoteChoice, bool, error) {
	var row types.VoteRecord
	err := s.db.WithContext(ctx).First(&row, "address = ? AND prop_id = ?", address, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return gov.VoteChoice(row.Choice), true, nil
}

func (s *Store) SaveVote(ctx context.Context, address, id string, choice gov.VoteChoice, txHash string) error {
	return s.db.WithContext(ctx).Save(&types.VoteRecord{
		Address:   address,
		PropID:    id,
		Choice:    string(choice),
		TxHash:    txHash,
		CreatedAt: time.Now(),
	}).Error
}

func (s *Store) AppendTransaction(ctx context.Context, address string, rec gov.Transaction) error {
	return s.db.WithContext(ctx).Create(&types.TxRecord{
		Address:   address,
		Hash:      rec.Hash,
		Kind:      rec.Kind,
		PropID:    rec.ProposalID,
		Timestamp: rec.Timestamp,
	}).Error
}

// Clear wipes every locally persisted row for the account: connection
// record, cached proposals, vote map, transaction list and metadata.
func (s *Store) Clear(ctx context.Context, address string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&types.Connection{}, &types.CachedProposal{}, &types.VoteRecord{}, &types.TxRecord{}} {
			if err := tx.Where("address = ?", address).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Where("creator = ?", address).Delete(&types.ProposalMeta{}).Error
	})
}

// --- wallet connections ---

func (s *Store) SaveConnection(ctx context.Context, rec wallet.Connection) error {
	return s.db.WithContext(ctx).Save(&types.Connection{
		Address:     rec.Address,
		Method:      rec.Method,
		ConnectedAt: rec.ConnectedAt,
		LastSeen:    rec.LastSeen,
	}).Error
}

func (s *Store) Connection(ctx context.Context, address string) (*wallet.Connection, error) {
	var row types.Connection
	err := s.db.WithContext(ctx).First(&row, "address = ?", address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet.Connection{
		Address:     row.Address,
		Method:      row.Method,
		ConnectedAt: row.ConnectedAt,
		LastSeen:    row.LastSeen,
	}, nil
}

func (s *Store) DeleteConnection(ctx context.Context, address string) error {
	return s.db.WithContext(ctx).Where("address = ?", address).Delete(&types.Connection{}).Error
}

func (s *Store) ActiveConnections(ctx context.Context) ([]wallet.Connection, error) {
	var rows []types.Connection
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	conns := make([]wallet.Connection, 0, len(rows))
	for _, row := range rows {
		conns = append(conns, wallet.Connection{
			Address:     row.Address,
			Method:      row.Method,
			ConnectedAt: row.ConnectedAt,
			LastSeen:    row.LastSeen,
		})
	}
	return conns, nil
}

func proposalRow(address string, p gov.Proposal) *types.CachedProposal {
	return &types.CachedProposal{
		Address:      address,
		PropID:       p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Deadline:     p.Deadline,
		Status:       p.Status,
		VotesFor:     p.Tally.For,
		VotesAgainst: p.Tally.Against,
		Creator:      p.Creator,
		TxHash:       p.TxHash,
		Recovered:    p.Recovered,
		CreatedAt:    p.CreatedAt,
	}
}

func proposalFromRow(row types.CachedProposal) gov.Proposal {
	return gov.Proposal{
		ID:          row.PropID,
		Title:       row.Title,
		Description: row.Description,
		Deadline:    row.Deadline,
		Status:      row.Status,
		Tally:       gov.Tally{For: row.VotesFor, Against: row.VotesAgainst},
		Creator:     row.Creator,
		TxHash:      row.TxHash,
		CreatedAt:   row.CreatedAt,
		Recovered:   row.Recovered,
	}
}
