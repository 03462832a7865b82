package webserver

import (
	"encoding/hex"
	"testing"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeypair(t *testing.T) (addr string, sign func(msg string) string) {
	t.Helper()

	var seed [32]byte
	copy(seed[:], []byte("govboard-test-seed-000000000000"))
	msk, err := schnorrkel.NewMiniSecretKeyFromRaw(seed)
	require.NoError(t, err)

	sk := msk.ExpandEd25519()
	pub := msk.Public().Encode()
	addr = "0x" + hex.EncodeToString(pub[:])

	sign = func(msg string) string {
		ctx := schnorrkel.NewSigningContext([]byte("substrate"), []byte(msg))
		sig, err := sk.Sign(ctx)
		require.NoError(t, err)
		raw := sig.Encode()
		return hex.EncodeToString(raw[:])
	}
	return addr, sign
}

func TestVerifySignature(t *testing.T) {
	addr, sign := testKeypair(t)
	nonce := "d1b2a59fbea7e20077af9f91b27e95e716affa36d0f9b7a19edf092cfba"

	assert.NoError(t, verifySignature(addr, sign(nonce), nonce))
	assert.NoError(t, verifySignature(addr, "0x"+sign(nonce), nonce))
}

func TestVerifySignatureWrongNonce(t *testing.T) {
	addr, sign := testKeypair(t)

	err := verifySignature(addr, sign("nonce-a"), "nonce-b")
	assert.Error(t, err)
}

func TestVerifySignatureMalformed(t *testing.T) {
	addr, _ := testKeypair(t)

	assert.Error(t, verifySignature(addr, "zzzz", "nonce"))
	assert.Error(t, verifySignature(addr, "abcd", "nonce"))
	assert.Error(t, verifySignature("not-an-address", "abcd", "nonce"))
}
