package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stake-plus/govboard/src/gov"
)

const (
	signReqPrefix  = "signreq:"
	signRespPrefix = "signresp:"
	signQueueKey   = "signq:"

	rejectedPrefix = "REJECTED:"

	// signDeadlineMargin keeps the blocking wait short of the request
	// deadline so the timeout error is still deliverable to the caller.
	signDeadlineMargin = 2 * time.Second
)

// RemoteSigner brokers signing requests to the connected wallet through
// redis. Sign parks the request under a UUID and blocks until the wallet
// posts back the signed bytes (or a rejection), or the context expires. A
// stalled wallet simply leaves the request pending until the TTL runs out.
type RemoteSigner struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRemoteSigner(rdb *redis.Client, ttl time.Duration) *RemoteSigner {
	if ttl == 0 {
		ttl = 2 * time.Minute
	}
	return &RemoteSigner{rdb: rdb, ttl: ttl}
}

// Sign implements gov.Signer.
func (s *RemoteSigner) Sign(ctx context.Context, req gov.SigningRequest) (string, error) {
	wait := s.ttl
	if dl, ok := ctx.Deadline(); ok {
		rem := time.Until(dl) - signDeadlineMargin
		if rem <= 0 {
			return "", gov.ErrSigningTimeout
		}
		if rem < wait {
			wait = rem
		}
	}

	id := uuid.NewString()

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode signing request: %w", err)
	}
	if err := s.rdb.Set(ctx, signReqPrefix+id, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("park signing request: %w", err)
	}
	if err := s.rdb.LPush(ctx, signQueueKey+req.Address, id).Err(); err != nil {
		return "", fmt.Errorf("queue signing request: %w", err)
	}
	s.rdb.Expire(ctx, signQueueKey+req.Address, s.ttl)

	res, err := s.rdb.BLPop(ctx, wait, signRespPrefix+id).Result()
	s.rdb.Del(context.WithoutCancel(ctx), signReqPrefix+id)
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) {
			return "", gov.ErrSigningTimeout
		}
		return "", fmt.Errorf("await signature: %w", err)
	}

	val := res[1]
	if strings.HasPrefix(val, rejectedPrefix) {
		reason := strings.TrimPrefix(val, rejectedPrefix)
		if reason == "" {
			return "", gov.ErrUserRejected
		}
		return "", fmt.Errorf("%w: %s", gov.ErrUserRejected, reason)
	}
	return val, nil
}

// NextRequest pops the oldest pending request id for the address and returns
// it with its payload, or ("", nil, nil) when nothing is pending.
func (s *RemoteSigner) NextRequest(ctx context.Context, address string) (string, *gov.SigningRequest, error) {
	id, err := s.rdb.RPop(ctx, signQueueKey+address).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	payload, err := s.rdb.Get(ctx, signReqPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		// Request expired before the wallet picked it up.
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	var req gov.SigningRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", nil, fmt.Errorf("decode signing request: %w", err)
	}
	return id, &req, nil
}

// Resolve posts the wallet's signed bytes back to the waiting Sign call.
func (s *RemoteSigner) Resolve(ctx context.Context, id, signedHex string) error {
	if err := s.rdb.LPush(ctx, signRespPrefix+id, signedHex).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, signRespPrefix+id, s.ttl).Err()
}

// Reject posts a wallet rejection back to the waiting Sign call.
func (s *RemoteSigner) Reject(ctx context.Context, id, reason string) error {
	if err := s.rdb.LPush(ctx, signRespPrefix+id, rejectedPrefix+reason).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, signRespPrefix+id, s.ttl).Err()
}
