package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stake-plus/govboard/src/webclient"
)

// DefaultWindow is the transaction-history page size used by reconciliation.
const DefaultWindow = 100

// Transaction is a raw transfer as returned by the indexing service. The
// memo is the decoded remark attached to the transfer.
type Transaction struct {
	Hash      string    `json:"hash"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Amount    uint64    `json:"amount"`
	Memo      string    `json:"memo"`
	Timestamp time.Time `json:"timestamp"`
	Block     uint64    `json:"block"`
}

// Client is a read-only client for the transaction indexer HTTP API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	attempts   int
}

// NewClient creates an indexer client for the given endpoint.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: webclient.NewDefault(0),
		attempts:   3,
	}
}

type txEnvelope struct {
	Hash      string `json:"hash"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Memo      string `json:"memo"`
	Timestamp int64  `json:"timestamp"`
	Block     uint64 `json:"block"`
}

type accountTxResponse struct {
	Transactions []txEnvelope `json:"transactions"`
}

// AccountTransactions lists the account's most recent transactions, newest
// window first, bounded by limit.
func (c *Client) AccountTransactions(ctx context.Context, address string, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > DefaultWindow {
		limit = DefaultWindow
	}

	u := fmt.Sprintf("%s/v1/accounts/%s/transactions?limit=%d", c.endpoint, url.PathEscape(address), limit)

	status, body, err := webclient.DoWithRetry(ctx, c.attempts, time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		return resp.StatusCode, b, err
	})
	if err != nil {
		return nil, fmt.Errorf("indexer request: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("indexer returned status %d: %s", status, strings.TrimSpace(string(body)))
	}

	var out accountTxResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parse indexer response: %w", err)
	}

	txs := make([]Transaction, 0, len(out.Transactions))
	for _, e := range out.Transactions {
		amount, _ := strconv.ParseUint(e.Amount, 10, 64)
		txs = append(txs, Transaction{
			Hash:      e.Hash,
			Sender:    e.Sender,
			Recipient: e.Recipient,
			Amount:    amount,
			Memo:      e.Memo,
			Timestamp: time.Unix(e.Timestamp, 0).UTC(),
			Block:     e.Block,
		})
	}
	return txs, nil
}
