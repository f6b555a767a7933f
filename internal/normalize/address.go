package normalize

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress lowercases and trims s. Empty input is "absent".
// Values shaped like an Ethereum address are canonicalized through
// go-ethereum's common package first, since every wallet address this
// protocol carries is Ethereum-style hex; anything else falls back to
// the plain lowercase-trim rule so non-Ethereum identifiers aren't
// rejected outright.
func NormalizeAddress(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}
	if common.IsHexAddress(trimmed) {
		return strings.ToLower(common.HexToAddress(trimmed).Hex()), true
	}
	return strings.ToLower(trimmed), true
}

// AddressesEqual reports whether a and b normalize to the same address.
func AddressesEqual(a, b string) bool {
	na, aok := NormalizeAddress(a)
	nb, bok := NormalizeAddress(b)
	return aok && bok && na == nb
}
