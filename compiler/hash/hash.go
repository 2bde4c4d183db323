package hash

import (
	"crypto/sha256"

	"github.com/chazu/prose/compiler"
)

// HashTree computes the SHA-256 content hash of a syntax tree.
//
// The hash is computed over a deterministic serialization that leaves out
// source positions. Two programs that differ only in layout, indentation or
// comments produce the same hash.
func HashTree(node compiler.Node) [32]byte {
	return sha256.Sum256(Serialize(node))
}
