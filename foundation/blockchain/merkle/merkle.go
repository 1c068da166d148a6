// Package merkle folds a sequence of transaction hashes into a single root
// hash. It does not support inclusion proofs: nothing downstream ever walks
// the tree, only its root, so the implementation here is the fold itself
// and nothing more.
package merkle

import "github.com/jrmckee/powchain/foundation/blockchain/signature"

// Hashable is anything that can contribute a leaf hash to the tree.
type Hashable interface {
	Hash() string
}

// Root computes the Merkle root over leaves in order.
//
//  1. An empty sequence roots to H("").
//  2. Each leaf contributes its content hash.
//  3. While more than one hash remains, an odd count duplicates the last
//     hash, then pairs are folded with H(left || right) on their hex text.
func Root[T Hashable](leaves []T) string {
	if len(leaves) == 0 {
		return signature.Hash([]byte(""))
	}

	level := make([]string, len(leaves))
	for i, leaf := range leaves {
		level[i] = leaf.Hash()
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}

		next := make([]string, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, signature.Hash([]byte(level[i]+level[i+1])))
		}
		level = next
	}

	return level[0]
}
