package chain

import (
	"context"
	"log"
	"strings"

	"github.com/itering/substrate-api-rpc/client"
	"github.com/itering/substrate-api-rpc/expand"
)

// MemoFunc receives the signer address (hex public key) and the decoded memo
// of every governance-tagged remark seen in fresh blocks.
type MemoFunc func(address, memo string)

// StartMemoWatcher subscribes to new heads and decodes remarks from each
// block, handing governance memos to the callback. Best-effort: connection
// or decode failures are logged and the watcher exits; it is restarted on
// the next service start.
func StartMemoWatcher(ctx context.Context, rpcURL string, isGovernance func(string) bool, fn MemoFunc) {
	api, err := client.ConnectSub(rpcURL)
	if err != nil {
		log.Printf("memo watcher connect: %v", err)
		return
	}

	sub, err := api.RPC.Chain.SubscribeNewHeads()
	if err != nil {
		log.Printf("memo watcher head sub: %v", err)
		return
	}

	go func() {
		for {
			select {
			case head := <-sub.Chan():
				hash := head.Hash()
				block, err := api.RPC.Chain.GetBlock(hash)
				if err != nil {
					continue
				}

				for _, ext := range block.Block.Extrinsics {
					remarkBytes, err := expand.DecodeRemark(ext.Method.Args)
					if err != nil || len(remarkBytes) == 0 {
						continue
					}
					memo := strings.TrimSpace(string(remarkBytes))
					if !isGovernance(memo) {
						continue
					}

					signer := ext.Signature.Signer.AsID
					fn(signer.ToHexString(), memo)
				}

			case <-ctx.Done():
				sub.Unsubscribe()
				return
			}
		}
	}()
}
