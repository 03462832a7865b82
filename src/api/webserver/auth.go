package webserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stake-plus/govboard/src/api/data"
	"github.com/stake-plus/govboard/src/chain"
	"github.com/stake-plus/govboard/src/gov"
	"github.com/stake-plus/govboard/src/wallet"
)

type Auth struct {
	rdb        *redis.Client
	jwtSecret  []byte
	sessions   *wallet.Manager
	reconciler *gov.Reconciler
}

func NewAuth(rdb *redis.Client, secret []byte, sessions *wallet.Manager, reconciler *gov.Reconciler) Auth {
	return Auth{rdb: rdb, jwtSecret: secret, sessions: sessions, reconciler: reconciler}
}

func randomHex32() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}

func (a Auth) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required,min=32,max=128"`
		Method  string `json:"method"  binding:"required,oneof=walletconnect extension"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if !chain.IsValidAddress(req.Address) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid address format"})
		return
	}

	log.Printf("Auth challenge for %s from IP %s using %s", req.Address, c.ClientIP(), req.Method)

	// Extensions expect raw hex data for signRaw; wallet-connect is fine
	// with a UUID.
	var nonce string
	var err error
	switch req.Method {
	case "extension":
		nonce, err = randomHex32()
	default:
		nonce = uuid.NewString()
	}
	if err != nil {
		log.Printf("Failed to create nonce: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to create challenge"})
		return
	}

	if err := data.SetNonce(c, a.rdb, req.Address, nonce); err != nil {
		log.Printf("Failed to set nonce for %s: %v", req.Address, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

func (a Auth) Verify(c *gin.Context) {
	var req struct {
		Address   string `json:"address"   binding:"required"`
		Method    string `json:"method"    binding:"required,oneof=walletconnect extension"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if !chain.IsValidAddress(req.Address) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid address format"})
		return
	}

	nonce, err := data.GetNonce(c, a.rdb, req.Address)
	if err != nil {
		log.Printf("Failed to get nonce for %s: %v", req.Address, err)
		c.JSON(http.StatusUnauthorized, gin.H{"err": "challenge expired or not found"})
		return
	}

	if err := verifySignature(req.Address, req.Signature, nonce); err != nil {
		log.Printf("Signature verification failed for %s: %v", req.Address, err)
		c.JSON(http.StatusUnauthorized, gin.H{"err": "bad signature"})
		return
	}
	data.DelNonce(c, a.rdb, req.Address)

	if _, err := a.sessions.Connect(c, req.Address, req.Method); err != nil {
		log.Printf("Failed to record connection for %s: %v", req.Address, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to record connection"})
		return
	}

	// Rebuild the proposal model for the fresh connection; errors degrade
	// to the cached state.
	go func(addr string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := a.reconciler.Reconcile(ctx, addr); err != nil {
			log.Printf("reconcile on connect %s: %v", addr, err)
		}
	}(req.Address)

	token, err := issueJWT(req.Address, a.jwtSecret)
	if err != nil {
		log.Printf("Failed to issue JWT for %s: %v", req.Address, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	log.Printf("Successfully authenticated %s", req.Address)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (a Auth) Disconnect(c *gin.Context) {
	addr := c.GetString("addr")
	if err := a.sessions.Disconnect(c, addr); err != nil {
		log.Printf("Failed to disconnect %s: %v", addr, err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to disconnect"})
		return
	}
	c.Status(http.StatusNoContent)
}
