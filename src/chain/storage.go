package chain

import (
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"
)

// twox128 is the Substrate TwoX-128 hasher used for pallet/item prefixes.
func twox128(data []byte) []byte {
	h1 := xxhash.NewS64(0)
	h1.Write(data)
	h2 := xxhash.NewS64(1)
	h2.Write(data)
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[0:], h1.Sum64())
	binary.LittleEndian.PutUint64(out[8:], h2.Sum64())
	return out
}

// blake2b128Concat is the blake2_128_concat hasher used for map keys.
func blake2b128Concat(data []byte) []byte {
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	return append(h.Sum(nil), data...)
}

// accountStorageKey builds the raw System.Account storage key for a public
// key, used for the account-existence probe when the indexer is down.
func accountStorageKey(pub []byte) []byte {
	key := append(twox128([]byte("System")), twox128([]byte("Account"))...)
	return append(key, blake2b128Concat(pub)...)
}
