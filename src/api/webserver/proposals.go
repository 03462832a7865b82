package webserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"github.com/stake-plus/govboard/src/gov"
)

type Proposals struct {
	service    *gov.Service
	store      gov.Store
	reconciler *gov.Reconciler
	sanitizer  *bluemonday.Policy
}

func NewProposals(service *gov.Service, store gov.Store, reconciler *gov.Reconciler) Proposals {
	// Strict sanitizer for proposal content; titles and descriptions end up
	// rendered in the dashboard.
	sanitizer := bluemonday.StrictPolicy()
	return Proposals{service: service, store: store, reconciler: reconciler, sanitizer: sanitizer}
}

func (p Proposals) List(c *gin.Context) {
	addr := c.GetString("addr")

	if c.Query("refresh") == "1" {
		snap, err := p.reconciler.Reconcile(c.Request.Context(), addr)
		if err != nil {
			log.Printf("reconcile %s: %v", addr, err)
		} else {
			c.JSON(http.StatusOK, snap)
			return
		}
	}

	snap, err := p.store.LoadSnapshot(c, addr)
	if err != nil {
		log.Printf("load snapshot %s: %v", addr, err)
		c.JSON(http.StatusOK, gov.Snapshot{Votes: map[string]gov.VoteChoice{}})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (p Proposals) Get(c *gin.Context) {
	addr := c.GetString("addr")
	prop, err := p.store.ProposalByID(c, addr, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if prop == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
		return
	}
	c.JSON(http.StatusOK, prop)
}

func (p Proposals) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title"       binding:"required"`
		Description string `json:"description" binding:"required"`
		Deadline    int64  `json:"deadline"    binding:"required"` // unix seconds
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	addr := c.GetString("addr")
	ctx, cancel := context.WithTimeout(c.Request.Context(), submissionTimeout)
	defer cancel()
	prop, err := p.service.CreateProposal(ctx, addr, gov.CreateInput{
		Title:       p.sanitizer.Sanitize(req.Title),
		Description: p.sanitizer.Sanitize(req.Description),
		Deadline:    time.Unix(req.Deadline, 0).UTC(),
	})
	if err != nil {
		respondGovError(c, err)
		return
	}
	c.JSON(http.StatusCreated, prop)
}
