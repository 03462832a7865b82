package gov

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// TxParams are the suggested parameters a wallet needs to build and sign a
// transaction.
type TxParams struct {
	GenesisHash   string `json:"genesisHash"`
	SpecVersion   uint32 `json:"specVersion"`
	TxVersion     uint32 `json:"txVersion"`
	BestBlock     uint64 `json:"bestBlock"`
	BestBlockHash string `json:"bestBlockHash"`
}

// Node is the chain node access the submission flow needs.
type Node interface {
	NodeReader
	Balance(ctx context.Context, address string) (uint64, error)
	SuggestedParams(ctx context.Context) (TxParams, error)
	SubmitRaw(ctx context.Context, signedHex string) (string, error)
	WaitForConfirmation(ctx context.Context, txHash string, rounds int) error
}

// SigningRequest is handed to the wallet for signing. Governance actions are
// zero-value self-payments carrying the memo.
type SigningRequest struct {
	Address   string   `json:"address"`
	Recipient string   `json:"recipient"`
	Amount    uint64   `json:"amount"`
	Memo      string   `json:"memo"`
	Params    TxParams `json:"params"`
}

// Signer asks the connected wallet to sign a transaction and returns the
// signed bytes hex-encoded.
type Signer interface {
	Sign(ctx context.Context, req SigningRequest) (string, error)
}

// CreateInput is the untruncated proposal content supplied at creation time.
type CreateInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
}

// ServiceConfig carries the fixed action costs and the confirmation bound.
type ServiceConfig struct {
	CreateCost    uint64
	VoteCost      uint64
	ConfirmRounds int
	ConfirmWait   time.Duration
}

// Service implements the submission flows: create proposal and cast vote.
// Preconditions are checked before any wallet interaction; submissions
// optimistically update the local cache and never block on confirmation.
type Service struct {
	node   Node
	signer Signer
	store  Store
	cfg    ServiceConfig
	now    func() time.Time
}

func NewService(node Node, signer Signer, store Store, cfg ServiceConfig) *Service {
	if cfg.CreateCost == 0 {
		cfg.CreateCost = 1_000_000_000
	}
	if cfg.VoteCost == 0 {
		cfg.VoteCost = 100_000_000
	}
	if cfg.ConfirmRounds == 0 {
		cfg.ConfirmRounds = 8
	}
	if cfg.ConfirmWait == 0 {
		cfg.ConfirmWait = 2 * time.Minute
	}
	return &Service{node: node, signer: signer, store: store, cfg: cfg, now: time.Now}
}

// CreateProposal validates the input, asks the wallet to sign the creation
// transaction, submits it and optimistically appends the proposal. The full
// title and description are stored in the metadata cache keyed by the new
// transaction hash so reconciliation can repopulate them on reload.
func (s *Service) CreateProposal(ctx context.Context, address string, in CreateInput) (Proposal, error) {
	if address == "" {
		return Proposal{}, ErrNotConnected
	}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" {
		return Proposal{}, fmt.Errorf("%w: title", ErrMissingField)
	}
	if description == "" {
		return Proposal{}, fmt.Errorf("%w: description", ErrMissingField)
	}
	now := s.now().UTC()
	if !in.Deadline.After(now) {
		return Proposal{}, ErrDeadlineNotFuture
	}

	balance, err := s.node.Balance(ctx, address)
	if err != nil {
		return Proposal{}, fmt.Errorf("fetch balance: %w", err)
	}
	if balance < s.cfg.CreateCost {
		return Proposal{}, ErrInsufficientBalance
	}

	params, err := s.node.SuggestedParams(ctx)
	if err != nil {
		return Proposal{}, fmt.Errorf("fetch transaction params: %w", err)
	}

	signed, err := s.signer.Sign(ctx, SigningRequest{
		Address:   address,
		Recipient: address,
		Amount:    0,
		Memo:      BuildProposalMemo(title),
		Params:    params,
	})
	if err != nil {
		return Proposal{}, ClassifySigningError(err)
	}

	hash, err := s.node.SubmitRaw(ctx, signed)
	if err != nil {
		return Proposal{}, fmt.Errorf("submit transaction: %w", err)
	}

	count, err := s.store.ProposalCount(ctx, address)
	if err != nil {
		log.Printf("create %s: proposal count: %v", address, err)
	}
	deadline := in.Deadline.UTC()
	p := Proposal{
		ID:          strconv.Itoa(count + 1),
		Title:       title,
		Description: description,
		Deadline:    deadline,
		Status:      StatusForDeadline(deadline, now),
		Creator:     address,
		TxHash:      hash,
		CreatedAt:   now,
	}
	if err := s.store.AppendProposal(ctx, address, p); err != nil {
		log.Printf("create %s: cache proposal: %v", address, err)
	}
	if err := s.store.SaveMeta(ctx, ProposalMeta{
		TxHash:      hash,
		Title:       title,
		Description: description,
		Deadline:    deadline,
		Creator:     address,
		CreatedAt:   now,
	}); err != nil {
		log.Printf("create %s: store metadata: %v", address, err)
	}
	if err := s.store.AppendTransaction(ctx, address, Transaction{
		Hash:       hash,
		Kind:       TxKindCreate,
		ProposalID: p.ID,
		Timestamp:  now,
	}); err != nil {
		log.Printf("create %s: record transaction: %v", address, err)
	}

	s.confirmAsync(hash)
	return p, nil
}

// CastVote validates the vote, asks the wallet to sign the vote transaction,
// submits it and optimistically bumps the tally and the caller's vote map.
func (s *Service) CastVote(ctx context.Context, address, proposalID string, choice VoteChoice) (Transaction, error) {
	if address == "" {
		return Transaction{}, ErrNotConnected
	}
	p, err := s.store.ProposalByID(ctx, address, proposalID)
	if err != nil {
		return Transaction{}, fmt.Errorf("look up proposal %s: %w", proposalID, err)
	}
	if p == nil {
		return Transaction{}, ErrProposalNotFound
	}
	if _, voted, err := s.store.VoteChoiceFor(ctx, address, proposalID); err != nil {
		return Transaction{}, fmt.Errorf("look up vote: %w", err)
	} else if voted {
		return Transaction{}, ErrAlreadyVoted
	}

	balance, err := s.node.Balance(ctx, address)
	if err != nil {
		return Transaction{}, fmt.Errorf("fetch balance: %w", err)
	}
	if balance < s.cfg.VoteCost {
		return Transaction{}, ErrInsufficientBalance
	}

	params, err := s.node.SuggestedParams(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("fetch transaction params: %w", err)
	}

	signed, err := s.signer.Sign(ctx, SigningRequest{
		Address:   address,
		Recipient: address,
		Amount:    0,
		Memo:      BuildVoteMemo(proposalID, choice),
		Params:    params,
	})
	if err != nil {
		return Transaction{}, ClassifySigningError(err)
	}

	hash, err := s.node.SubmitRaw(ctx, signed)
	if err != nil {
		return Transaction{}, fmt.Errorf("submit transaction: %w", err)
	}

	if err := s.store.BumpTally(ctx, address, proposalID, choice); err != nil {
		log.Printf("vote %s: bump tally: %v", address, err)
	}
	if err := s.store.SaveVote(ctx, address, proposalID, choice, hash); err != nil {
		log.Printf("vote %s: record vote: %v", address, err)
	}
	rec := Transaction{
		Hash:       hash,
		Kind:       TxKindVote,
		ProposalID: proposalID,
		Timestamp:  s.now().UTC(),
	}
	if err := s.store.AppendTransaction(ctx, address, rec); err != nil {
		log.Printf("vote %s: record transaction: %v", address, err)
	}

	s.confirmAsync(hash)
	return rec, nil
}

// confirmAsync waits for confirmation with a bounded window. The transaction
// was already accepted for broadcast, so a missed confirmation is logged but
// never surfaced as a failure of the operation.
func (s *Service) confirmAsync(txHash string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ConfirmWait)
		defer cancel()
		if err := s.node.WaitForConfirmation(ctx, txHash, s.cfg.ConfirmRounds); err != nil {
			log.Printf("tx %s: not confirmed within %d rounds: %v", txHash, s.cfg.ConfirmRounds, err)
			return
		}
		log.Printf("tx %s: confirmed", txHash)
	}()
}
