package core

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"lukechampine.com/blake3"
)

// --- Hashing ---

func Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Seed derives a pair of 64-bit RNG seeds from the given parts.
// Same parts, same seeds, on every node.
func Seed(parts ...interface{}) (uint64, uint64) {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = fmt.Sprint(p)
	}
	h := blake3.Sum256([]byte(strings.Join(strs, "-")))
	return binary.BigEndian.Uint64(h[:8]), binary.BigEndian.Uint64(h[8:16])
}
