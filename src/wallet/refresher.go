package wallet

import (
	"context"
	"log"
	"time"
)

// BalanceSource fetches an account's current balance from the node.
type BalanceSource interface {
	Balance(ctx context.Context, address string) (uint64, error)
}

// BalanceCache stores balances for display.
type BalanceCache interface {
	SetBalance(ctx context.Context, address string, balance uint64) error
}

// RunBalanceRefresher refreshes the balance of every connected account on a
// fixed timer. Best-effort: failures are logged and retried next tick.
func RunBalanceRefresher(ctx context.Context, node BalanceSource, store ConnectionStore, cache BalanceCache, interval time.Duration) {
	if interval == 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("balance refresher stopping")
			return
		case <-ticker.C:
			conns, err := store.ActiveConnections(ctx)
			if err != nil {
				log.Printf("balance refresher: list connections: %v", err)
				continue
			}
			for _, conn := range conns {
				balance, err := node.Balance(ctx, conn.Address)
				if err != nil {
					log.Printf("balance refresher: %s: %v", conn.Address, err)
					continue
				}
				if err := cache.SetBalance(ctx, conn.Address, balance); err != nil {
					log.Printf("balance refresher: cache %s: %v", conn.Address, err)
				}
			}
		}
	}
}
