package chain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// DecodeAddress converts an SS58-formatted address (or 0x-prefixed hex) to
// the raw 32-byte public key, verifying the SS58 checksum.
func DecodeAddress(addr string) ([]byte, error) {
	if strings.HasPrefix(addr, "0x") {
		raw, err := hex.DecodeString(addr[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid hex address: %w", err)
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("invalid public key length: %d", len(raw))
		}
		return raw, nil
	}

	raw, err := base58.Decode(addr)
	if err != nil || len(raw) < 35 {
		return nil, fmt.Errorf("invalid ss58 address")
	}

	// 1-byte prefix (network), 32-byte key, 2-byte checksum.
	body := raw[:len(raw)-2]
	checksum := raw[len(raw)-2:]

	input := append([]byte("SS58PRE"), body...)
	h, err := blake2b.New(64, nil)
	if err != nil {
		return nil, err
	}
	h.Write(input)
	sum := h.Sum(nil)
	if sum[0] != checksum[0] || sum[1] != checksum[1] {
		return nil, fmt.Errorf("ss58 checksum mismatch")
	}

	return body[len(body)-32:], nil
}

// EncodeAddress converts a raw 32-byte public key to SS58 with the given
// network prefix.
func EncodeAddress(pub []byte, prefix uint16) (string, error) {
	if len(pub) != 32 {
		return "", fmt.Errorf("invalid public key length: %d", len(pub))
	}

	payload := make([]byte, 0, 36)
	if prefix < 64 {
		payload = append(payload, byte(prefix))
	} else {
		// Two-byte form: upper six bits of the low byte first, then the
		// remaining bits swizzled per the SS58 registry layout.
		payload = append(payload,
			byte(((prefix&0xFC)>>2)|0x40),
			byte((prefix>>8)|((prefix&0x03)<<6)))
	}
	payload = append(payload, pub...)

	input := append([]byte("SS58PRE"), payload...)
	h, err := blake2b.New(64, nil)
	if err != nil {
		return "", err
	}
	h.Write(input)
	sum := h.Sum(nil)

	payload = append(payload, sum[0:2]...)
	return base58.Encode(payload), nil
}

// IsValidAddress reports whether addr parses as SS58 or 32-byte hex.
func IsValidAddress(addr string) bool {
	_, err := DecodeAddress(addr)
	return err == nil
}
