package types

import "time"

// Wallet connection records
type Connection struct {
	Address     string `gorm:"primaryKey;size:128"`
	Method      string `gorm:"size:32"`
	ConnectedAt time.Time
	LastSeen    time.Time
}

// Reconciled proposals, cached per connected account. Fully re-derived from
// the chain on every reconciliation pass; optimistic rows are overwritten by
// the next pass.
type CachedProposal struct {
	ID           uint64 `gorm:"primaryKey"`
	Address      string `gorm:"uniqueIndex:idx_addr_prop;size:128;not null"`
	PropID       string `gorm:"uniqueIndex:idx_addr_prop;size:16;not null"`
	Title        string `gorm:"size:255"`
	Description  string `gorm:"type:text"`
	Deadline     time.Time
	Status       string `gorm:"size:16"`
	VotesFor     uint32 `gorm:"default:0"`
	VotesAgainst uint32 `gorm:"default:0"`
	Creator      string `gorm:"size:128"`
	TxHash       string `gorm:"size:128"`
	Recovered    bool   `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Per-account vote map
type VoteRecord struct {
	Address   string `gorm:"primaryKey;size:128"`
	PropID    string `gorm:"primaryKey;size:16"`
	Choice    string `gorm:"size:8;not null"`
	TxHash    string `gorm:"size:128"`
	CreatedAt time.Time
}

// Observed governance transactions, display convenience only
type TxRecord struct {
	Address   string `gorm:"primaryKey;size:128"`
	Hash      string `gorm:"primaryKey;size:128"`
	Kind      string `gorm:"size:8"`
	PropID    string `gorm:"size:16"`
	Timestamp time.Time
}

// Creation-time metadata, keyed by the creation transaction hash. The
// on-chain memo truncates the title and drops the description; this record
// restores them on reload.
type ProposalMeta struct {
	TxHash      string `gorm:"primaryKey;size:128"`
	Title       string `gorm:"size:255"`
	Description string `gorm:"type:text"`
	Deadline    time.Time
	Creator     string `gorm:"index;size:128"`
	CreatedAt   time.Time
}
