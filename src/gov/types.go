package gov

import "time"

// Proposal status derived from the deadline at read time.
const (
	StatusUpcoming  = "upcoming"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// VoteChoice is the side of a vote.
type VoteChoice string

const (
	VoteFor     VoteChoice = "for"
	VoteAgainst VoteChoice = "against"
)

// Transaction kinds observed on chain.
const (
	TxKindCreate = "create"
	TxKindVote   = "vote"
)

// Tally holds per-proposal vote counters.
type Tally struct {
	For     uint32 `json:"for"`
	Against uint32 `json:"against"`
}

// Proposal is the reconstructed governance proposal. The ID is positional
// (1-based over creation transactions in indexer order) and therefore not
// stable across reloads; the metadata cache keyed by TxHash is what survives.
type Proposal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	Status      string    `json:"status"`
	Tally       Tally     `json:"tally"`
	Creator     string    `json:"creator"`
	TxHash      string    `json:"txHash"`
	CreatedAt   time.Time `json:"createdAt"`
	Recovered   bool      `json:"recovered,omitempty"`
}

// Transaction is an observation of a governance-tagged chain transaction,
// cached only as a display convenience.
type Transaction struct {
	Hash       string    `json:"hash"`
	Kind       string    `json:"kind"`
	ProposalID string    `json:"proposalId"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProposalMeta is the locally cached metadata record written at creation
// time, since the on-chain memo truncates title and drops the description.
type ProposalMeta struct {
	TxHash      string    `json:"txHash"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	Creator     string    `json:"creator"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Snapshot is the result of one reconciliation pass for an account.
type Snapshot struct {
	Proposals    []Proposal            `json:"proposals"`
	Votes        map[string]VoteChoice `json:"votes"`
	Transactions []Transaction         `json:"transactions"`
}

// StatusForDeadline derives the proposal status from its deadline: past
// deadlines are completed, deadlines more than seven days out are upcoming,
// everything in between is active.
func StatusForDeadline(deadline, now time.Time) string {
	if !deadline.After(now) {
		return StatusCompleted
	}
	if deadline.Sub(now) > upcomingThreshold {
		return StatusUpcoming
	}
	return StatusActive
}
