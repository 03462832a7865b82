package webserver

import (
	"encoding/hex"
	"fmt"
	"time"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/golang-jwt/jwt/v5"

	"github.com/stake-plus/govboard/src/chain"
)

func strip0x(s string) string {
	if len(s) > 1 && s[:2] == "0x" {
		return s[2:]
	}
	return s
}

// verifySignature checks an sr25519 signature over the challenge nonce.
func verifySignature(addr, sigHex, nonce string) error {
	pubKeyBytes, err := chain.DecodeAddress(addr)
	if err != nil {
		return err
	}

	sigBytes, err := hex.DecodeString(strip0x(sigHex))
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(sigBytes) != 64 {
		return fmt.Errorf("invalid signature length: %d", len(sigBytes))
	}

	var pkRaw [32]byte
	copy(pkRaw[:], pubKeyBytes)
	var sigRaw [64]byte
	copy(sigRaw[:], sigBytes)

	var pk schnorrkel.PublicKey
	if err = pk.Decode(pkRaw); err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}

	var sig schnorrkel.Signature
	if err = sig.Decode(sigRaw); err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	ctx := schnorrkel.NewSigningContext([]byte("substrate"), []byte(nonce))
	valid, err := pk.Verify(&sig, ctx)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("signature verification failed")
	}
	return nil
}

func issueJWT(addr string, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"addr": addr,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(secret)
}
