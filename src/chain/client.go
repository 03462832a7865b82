package chain

import (
	"context"
	"fmt"
	"strings"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	gtypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"golang.org/x/crypto/blake2b"

	"github.com/stake-plus/govboard/src/gov"
)

// Client wraps the substrate RPC node API with the handful of calls the
// dashboard needs: balance, suggested params, raw submission and a bounded
// confirmation wait. It implements gov.Node.
type Client struct {
	api         *gsrpc.SubstrateAPI
	meta        *gtypes.Metadata
	genesisHash gtypes.Hash
}

// NewClient connects to the node RPC endpoint and caches chain metadata.
func NewClient(url string) (*Client, error) {
	api, err := gsrpc.NewSubstrateAPI(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	genesis, err := api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return nil, fmt.Errorf("failed to get genesis hash: %w", err)
	}

	return &Client{api: api, meta: meta, genesisHash: genesis}, nil
}

// Close closes the connection. gsrpc needs no explicit close.
func (c *Client) Close() error {
	return nil
}

// Balance returns the account's free balance in base units.
func (c *Client) Balance(ctx context.Context, address string) (uint64, error) {
	pub, err := DecodeAddress(address)
	if err != nil {
		return 0, err
	}

	key, err := gtypes.CreateStorageKey(c.meta, "System", "Account", pub)
	if err != nil {
		return 0, fmt.Errorf("build storage key: %w", err)
	}

	var info gtypes.AccountInfo
	ok, err := c.api.RPC.State.GetStorageLatest(key, &info)
	if err != nil {
		return 0, fmt.Errorf("query account: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return info.Data.Free.Uint64(), nil
}

// AccountExists probes the raw System.Account storage entry. Used as the
// degraded check when the indexer is unavailable.
func (c *Client) AccountExists(ctx context.Context, address string) (bool, error) {
	pub, err := DecodeAddress(address)
	if err != nil {
		return false, err
	}

	key := gtypes.NewStorageKey(accountStorageKey(pub))
	raw, err := c.api.RPC.State.GetStorageRawLatest(key)
	if err != nil {
		return false, fmt.Errorf("query account storage: %w", err)
	}
	return raw != nil && len(*raw) > 0, nil
}

// SuggestedParams returns what a wallet needs to build a transaction.
func (c *Client) SuggestedParams(ctx context.Context) (gov.TxParams, error) {
	rv, err := c.api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return gov.TxParams{}, fmt.Errorf("get runtime version: %w", err)
	}

	head, err := c.api.RPC.Chain.GetHeaderLatest()
	if err != nil {
		return gov.TxParams{}, fmt.Errorf("get header: %w", err)
	}

	blockHash, err := c.api.RPC.Chain.GetBlockHashLatest()
	if err != nil {
		return gov.TxParams{}, fmt.Errorf("get block hash: %w", err)
	}

	return gov.TxParams{
		GenesisHash:   c.genesisHash.Hex(),
		SpecVersion:   uint32(rv.SpecVersion),
		TxVersion:     uint32(rv.TransactionVersion),
		BestBlock:     uint64(head.Number),
		BestBlockHash: blockHash.Hex(),
	}, nil
}

// SubmitRaw broadcasts a wallet-signed extrinsic (hex-encoded) and returns
// its hash.
func (c *Client) SubmitRaw(ctx context.Context, signedHex string) (string, error) {
	var ext gtypes.Extrinsic
	if err := codec.DecodeFromHex(signedHex, &ext); err != nil {
		return "", fmt.Errorf("decode signed transaction: %w", err)
	}

	hash, err := c.api.RPC.Author.SubmitExtrinsic(ext)
	if err != nil {
		return "", fmt.Errorf("submit extrinsic: %w", err)
	}
	return hash.Hex(), nil
}

// WaitForConfirmation scans up to rounds new blocks for the transaction.
// Returns an error when the bound is exhausted without seeing it.
func (c *Client) WaitForConfirmation(ctx context.Context, txHash string, rounds int) error {
	sub, err := c.api.RPC.Chain.SubscribeNewHeads()
	if err != nil {
		return fmt.Errorf("subscribe new heads: %w", err)
	}
	defer sub.Unsubscribe()

	want := strings.ToLower(txHash)
	for seen := 0; seen < rounds; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return err
		case head := <-sub.Chan():
			seen++
			blockHash, err := c.api.RPC.Chain.GetBlockHash(uint64(head.Number))
			if err != nil {
				continue
			}
			block, err := c.api.RPC.Chain.GetBlock(blockHash)
			if err != nil {
				continue
			}
			for _, ext := range block.Block.Extrinsics {
				enc, err := codec.Encode(ext)
				if err != nil {
					continue
				}
				sum := blake2b.Sum256(enc)
				if codec.HexEncodeToString(sum[:]) == want {
					return nil
				}
			}
		}
	}
	return fmt.Errorf("transaction %s not seen within %d blocks", txHash, rounds)
}
