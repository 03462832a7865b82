package webserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/govboard/src/gov"
)

type Votes struct {
	service *gov.Service
	store   gov.Store
}

func NewVotes(service *gov.Service, store gov.Store) Votes {
	return Votes{service: service, store: store}
}

func (v Votes) Cast(c *gin.Context) {
	var req struct {
		Choice string `json:"choice" binding:"required,oneof=for against"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	addr := c.GetString("addr")
	ctx, cancel := context.WithTimeout(c.Request.Context(), submissionTimeout)
	defer cancel()
	rec, err := v.service.CastVote(ctx, addr, c.Param("id"), gov.VoteChoice(req.Choice))
	if err != nil {
		respondGovError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (v Votes) Summary(c *gin.Context) {
	addr := c.GetString("addr")
	prop, err := v.store.ProposalByID(c, addr, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if prop == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
		return
	}
	c.JSON(http.StatusOK, prop.Tally)
}
