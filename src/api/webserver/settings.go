package webserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/govboard/src/api/data"
	"github.com/stake-plus/govboard/src/gov"
)

type Settings struct {
	store gov.Store
	cache *data.Cache
}

func NewSettings(store gov.Store, cache *data.Cache) Settings {
	return Settings{store: store, cache: cache}
}

// ClearCache wipes everything this service persists for the account:
// connection record, cached proposals, vote map, transaction list, metadata
// and redis keys. The next connect fully re-derives state from the chain.
func (s Settings) ClearCache(c *gin.Context) {
	addr := c.GetString("addr")
	if err := s.store.Clear(c, addr); err != nil {
		log.Printf("clear cache %s: %v", addr, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to clear cache"})
		return
	}
	s.cache.ClearAccount(c, addr)
	c.Status(http.StatusNoContent)
}
