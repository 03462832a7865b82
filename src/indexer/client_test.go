package indexer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountTransactions(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transactions":[
			{"hash":"0xabc","sender":"5Grw","recipient":"5Grw","amount":"0","memo":"Gov Fee - Proposal: Fund the pool","timestamp":1717243200,"block":42},
			{"hash":"0xdef","sender":"5Other","recipient":"5Other","amount":"1500","memo":"","timestamp":1717246800,"block":43}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	txs, err := c.AccountTransactions(context.Background(), "5Grw", 50)
	require.NoError(t, err)

	assert.Equal(t, "/v1/accounts/5Grw/transactions", gotPath)
	assert.Equal(t, "limit=50", gotQuery)

	require.Len(t, txs, 2)
	assert.Equal(t, "0xabc", txs[0].Hash)
	assert.Equal(t, "Gov Fee - Proposal: Fund the pool", txs[0].Memo)
	assert.Equal(t, uint64(0), txs[0].Amount)
	assert.Equal(t, time.Unix(1717243200, 0).UTC(), txs[0].Timestamp)
	assert.Equal(t, uint64(1500), txs[1].Amount)
	assert.Equal(t, uint64(43), txs[1].Block)
}

func TestAccountTransactionsClampsLimit(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"transactions":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	_, err := c.AccountTransactions(context.Background(), "5Grw", 0)
	require.NoError(t, err)
	assert.Equal(t, "limit=100", gotQuery)

	_, err = c.AccountTransactions(context.Background(), "5Grw", 500)
	require.NoError(t, err)
	assert.Equal(t, "limit=100", gotQuery)
}

func TestAccountTransactionsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index lagging", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.attempts = 1

	_, err := c.AccountTransactions(context.Background(), "5Grw", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
