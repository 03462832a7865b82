package webserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/govboard/src/api/data"
	"github.com/stake-plus/govboard/src/gov"
	"github.com/stake-plus/govboard/src/wallet"
)

type Profile struct {
	store    gov.Store
	cache    *data.Cache
	node     gov.Node
	sessions *wallet.Manager
}

func NewProfile(store gov.Store, cache *data.Cache, node gov.Node, sessions *wallet.Manager) Profile {
	return Profile{store: store, cache: cache, node: node, sessions: sessions}
}

// Show returns the connected account's balance, own votes and transaction
// history. The balance comes from the 10s refresher cache when warm, from
// the node otherwise.
func (p Profile) Show(c *gin.Context) {
	addr := c.GetString("addr")

	balance, ok, err := p.cache.Balance(c, addr)
	if err != nil {
		log.Printf("profile %s: balance cache: %v", addr, err)
	}
	if !ok {
		balance, err = p.node.Balance(c.Request.Context(), addr)
		if err != nil {
			log.Printf("profile %s: node balance: %v", addr, err)
		} else if cerr := p.cache.SetBalance(c, addr, balance); cerr != nil {
			log.Printf("profile %s: warm balance cache: %v", addr, cerr)
		}
	}

	snap, err := p.store.LoadSnapshot(c, addr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	conn, err := p.sessions.Reconnect(c, addr)
	if err != nil {
		log.Printf("profile %s: touch session: %v", addr, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"address":      addr,
		"balance":      balance,
		"votes":        snap.Votes,
		"transactions": snap.Transactions,
		"connection":   conn,
	})
}
