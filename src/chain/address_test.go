package chain

import (
	"encoding/hex"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known development key (Alice) on the generic substrate prefix.
const (
	alicePubHex  = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
	aliceAddr    = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	genericSS58  = uint16(42)
	polkadotSS58 = uint16(0)
)

func TestDecodeAddressSS58(t *testing.T) {
	pub, err := DecodeAddress(aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, alicePubHex, hex.EncodeToString(pub))
}

func TestDecodeAddressHex(t *testing.T) {
	pub, err := DecodeAddress("0x" + alicePubHex)
	require.NoError(t, err)
	assert.Equal(t, alicePubHex, hex.EncodeToString(pub))
}

func TestEncodeAddressRoundTrip(t *testing.T) {
	pub, err := hex.DecodeString(alicePubHex)
	require.NoError(t, err)

	addr, err := EncodeAddress(pub, genericSS58)
	require.NoError(t, err)
	assert.Equal(t, aliceAddr, addr)

	// A different network prefix yields a different address over the same
	// key, and both decode back to the same public key.
	dotAddr, err := EncodeAddress(pub, polkadotSS58)
	require.NoError(t, err)
	assert.NotEqual(t, addr, dotAddr)

	back, err := DecodeAddress(dotAddr)
	require.NoError(t, err)
	assert.Equal(t, pub, back)
}

func TestEncodeAddressWidePrefix(t *testing.T) {
	pub, err := hex.DecodeString(alicePubHex)
	require.NoError(t, err)

	// Prefixes of 64 and above use the two-byte swizzled form.
	for _, tc := range []struct {
		prefix uint16
		want   []byte
	}{
		{prefix: 69, want: []byte{0x51, 0x40}},
		{prefix: 2206, want: []byte{0x67, 0x88}},
	} {
		addr, err := EncodeAddress(pub, tc.prefix)
		require.NoError(t, err)

		raw, err := base58.Decode(addr)
		require.NoError(t, err)
		require.Len(t, raw, 36, "prefix %d", tc.prefix)
		assert.Equal(t, tc.want, raw[:2], "prefix %d", tc.prefix)

		back, err := DecodeAddress(addr)
		require.NoError(t, err)
		assert.Equal(t, pub, back)
	}
}

func TestDecodeAddressRejectsGarbage(t *testing.T) {
	for _, bad := range []string{
		"",
		"not-base58-0OIl",
		"0x1234",
		"0xzz3593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d",
		"5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQZ", // corrupted checksum
	} {
		_, err := DecodeAddress(bad)
		assert.Error(t, err, "address %q", bad)
	}
}

func TestIsValidAddress(t *testing.T) {
	assert.True(t, IsValidAddress(aliceAddr))
	assert.True(t, IsValidAddress("0x"+alicePubHex))
	assert.False(t, IsValidAddress("nonsense"))
}
