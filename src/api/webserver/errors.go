package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/govboard/src/gov"
)

// respondGovError maps domain errors onto HTTP statuses. Precondition
// failures never reached the wallet and are the caller's to fix.
func respondGovError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gov.ErrProposalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": err.Error()})
	case errors.Is(err, gov.ErrAlreadyVoted):
		c.JSON(http.StatusConflict, gin.H{"err": err.Error()})
	case gov.IsPrecondition(err):
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
	case errors.Is(err, gov.ErrUserRejected):
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
	case errors.Is(err, gov.ErrSigningTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"err": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"err": err.Error()})
	}
}
