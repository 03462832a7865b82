package gov

import (
	"context"
	"errors"
	"strings"
)

// Precondition errors are raised before any wallet or chain interaction.
var (
	ErrNotConnected        = errors.New("wallet not connected")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrMissingField        = errors.New("missing required field")
	ErrDeadlineNotFuture   = errors.New("deadline must be in the future")
	ErrAlreadyVoted        = errors.New("already voted on this proposal")
	ErrProposalNotFound    = errors.New("proposal not found")
)

// Submission errors surfaced from the signing step.
var (
	ErrUserRejected   = errors.New("signing request rejected by wallet")
	ErrSigningTimeout = errors.New("signing request timed out")
)

// IsPrecondition reports whether err is one of the client-side precondition
// failures that never reached the wallet.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNotConnected) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrDeadlineNotFuture) ||
		errors.Is(err, ErrAlreadyVoted) ||
		errors.Is(err, ErrProposalNotFound)
}

// ClassifySigningError maps wallet errors onto user-facing sentinels by
// inspecting the error text; unrecognized errors propagate unchanged.
func ClassifySigningError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUserRejected) || errors.Is(err, ErrSigningTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrSigningTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "reject"), strings.Contains(msg, "cancel"), strings.Contains(msg, "denied"):
		return ErrUserRejected
	case strings.Contains(msg, "timed out"), strings.Contains(msg, "timeout"):
		return ErrSigningTimeout
	}
	return err
}
