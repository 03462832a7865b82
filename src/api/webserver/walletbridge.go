package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/govboard/src/wallet"
)

// WalletBridge exposes the signing-request queue to the wallet side: the
// wallet polls for the next pending request, signs it and posts the result
// back, which unblocks the waiting submission flow.
type WalletBridge struct {
	signer *wallet.RemoteSigner
}

func NewWalletBridge(signer *wallet.RemoteSigner) WalletBridge {
	return WalletBridge{signer: signer}
}

func (w WalletBridge) Next(c *gin.Context) {
	addr := c.GetString("addr")
	id, req, err := w.signer.NextRequest(c, addr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if req == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "request": req})
}

func (w WalletBridge) Complete(c *gin.Context) {
	var req struct {
		Signed   string `json:"signed"`
		Rejected bool   `json:"rejected"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	id := c.Param("id")
	var err error
	if req.Rejected {
		err = w.signer.Reject(c, id, req.Reason)
	} else {
		if req.Signed == "" {
			c.JSON(http.StatusBadRequest, gin.H{"err": "signed bytes required"})
			return
		}
		err = w.signer.Resolve(c, id, req.Signed)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}
