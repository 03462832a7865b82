// File: src/api/api.go

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stake-plus/govboard/src/api/config"
	"github.com/stake-plus/govboard/src/api/data"
	"github.com/stake-plus/govboard/src/api/webserver"
	"github.com/stake-plus/govboard/src/chain"
	"github.com/stake-plus/govboard/src/gov"
	"github.com/stake-plus/govboard/src/indexer"
	"github.com/stake-plus/govboard/src/notify"
	"github.com/stake-plus/govboard/src/wallet"
)

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	rdb := data.MustRedis(cfg.RedisURL)

	store := data.NewStore(db)
	cache := data.NewCache(rdb)

	node, err := chain.NewClient(cfg.NodeRPCURL)
	if err != nil {
		log.Fatalf("node rpc: %v", err)
	}
	defer node.Close()

	idx := indexer.NewClient(cfg.IndexerURL)

	sessions := wallet.NewManager(store)
	signer := wallet.NewRemoteSigner(rdb, 2*time.Minute)

	reconciler := gov.NewReconciler(idx, node, store, cache)
	service := gov.NewService(node, signer, store, gov.ServiceConfig{
		CreateCost:    cfg.CreateCost,
		VoteCost:      cfg.VoteCost,
		ConfirmRounds: cfg.ConfirmRounds,
	})

	ctx, cancel := context.WithCancel(context.Background())

	// Refresh connected balances on a fixed timer.
	go wallet.RunBalanceRefresher(ctx, node, store, cache, time.Duration(cfg.BalancePoll)*time.Second)

	// Periodic full reconciliation for every connected account.
	go runReconcileLoop(ctx, reconciler, store, time.Duration(cfg.ReconcileInterval)*time.Second)

	// Watch fresh blocks for governance memos: publish them and refresh the
	// affected account without waiting for the next periodic pass.
	chain.StartMemoWatcher(ctx, cfg.NodeRPCURL, gov.IsGovernanceMemo, func(addrHex, memo string) {
		cache.MemoSeen(ctx, addrHex, memo)
		for _, addr := range candidateAddresses(addrHex, cfg.SS58Prefix) {
			conn, err := store.Connection(ctx, addr)
			if err != nil || conn == nil {
				continue
			}
			go func(a string) {
				rctx, rcancel := context.WithTimeout(ctx, time.Minute)
				defer rcancel()
				if _, err := reconciler.Reconcile(rctx, a); err != nil {
					log.Printf("reconcile on memo %s: %v", a, err)
				}
			}(addr)
			break
		}
	})

	if cfg.DiscordToken != "" && cfg.DiscordChannel != "" {
		announcer, err := notify.NewAnnouncer(db, cfg.DiscordToken, cfg.DiscordChannel)
		if err != nil {
			log.Printf("discord announcer disabled: %v", err)
		} else {
			go announcer.Start(ctx)
		}
	}

	router := webserver.New(webserver.Deps{
		Cfg:        cfg,
		Rdb:        rdb,
		Store:      store,
		Cache:      cache,
		Sessions:   sessions,
		Signer:     signer,
		Service:    service,
		Reconciler: reconciler,
		Node:       node,
	})

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("GovBoard API listening on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}

// runReconcileLoop rebuilds every connected account's snapshot on a fixed
// interval. Reloads triggered by connect and window focus come through the
// API; this loop is the timer-driven leg.
func runReconcileLoop(ctx context.Context, reconciler *gov.Reconciler, store *data.Store, interval time.Duration) {
	if interval == 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reconcile loop stopping")
			return
		case <-ticker.C:
			conns, err := store.ActiveConnections(ctx)
			if err != nil {
				log.Printf("reconcile loop: list connections: %v", err)
				continue
			}
			for _, conn := range conns {
				rctx, rcancel := context.WithTimeout(ctx, time.Minute)
				if _, err := reconciler.Reconcile(rctx, conn.Address); err != nil {
					log.Printf("reconcile loop: %s: %v", conn.Address, err)
				}
				rcancel()
			}
		}
	}
}

// candidateAddresses maps a watcher-reported hex public key to the address
// forms a connection may have been recorded under.
func candidateAddresses(addrHex string, prefix uint16) []string {
	out := []string{addrHex}
	pub, err := chain.DecodeAddress(addrHex)
	if err != nil {
		return out
	}
	if ss58, err := chain.EncodeAddress(pub, prefix); err == nil {
		out = append(out, ss58)
	}
	return out
}
