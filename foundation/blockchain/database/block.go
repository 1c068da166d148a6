package database

import (
	"fmt"
	"time"

	"github.com/jrmckee/powchain/foundation/blockchain/merkle"
	"github.com/jrmckee/powchain/foundation/blockchain/signature"
)

// BlockHeader carries everything that needs to be hashed to produce a
// block's identity. Transactions are hashed separately into MerkleRoot so a
// header alone is enough to verify the chain's shape.
type BlockHeader struct {
	Index        uint64    `json:"index"`
	Timestamp    time.Time `json:"timestamp"`
	PreviousHash string    `json:"previous_hash"`
	MerkleRoot   string    `json:"merkle_root"`
	Nonce        uint64    `json:"nonce"`
	Difficulty   int       `json:"difficulty"`
}

// hashInput concatenates the header fields in a fixed textual form. Mining
// only varies Nonce, so recomputing this on every attempt is the whole of
// the proof-of-work search.
func (h BlockHeader) hashInput() string {
	return fmt.Sprintf("%d|%d|%s|%s|%d|%d",
		h.Index, h.Timestamp.UnixNano(), h.PreviousHash, h.MerkleRoot, h.Nonce, h.Difficulty)
}

// Block is a group of transactions batched together, its header, and the
// header's hash. The last transaction of a mined (non-genesis) block is
// always the miner reward transaction with sender "system".
type Block struct {
	Header       BlockHeader   `json:"header"`
	Hash         string        `json:"hash"`
	Transactions []Transaction `json:"transactions"`
}

// Genesis returns the genesis block: index 0, all-zero previous hash, no
// transactions, and the given difficulty (NewChain always passes 1). There
// is nothing before it to chain against, so its hash is the zero hash rather
// than a mined value.
func Genesis(difficulty int) Block {
	header := BlockHeader{
		Index:        0,
		Timestamp:    time.Unix(0, 0).UTC(),
		PreviousHash: signature.ZeroHash,
		MerkleRoot:   merkle.Root[Transaction](nil),
		Nonce:        0,
		Difficulty:   difficulty,
	}
	return Block{
		Header:       header,
		Hash:         signature.ZeroHash,
		Transactions: []Transaction{},
	}
}

// NewBlock assembles an unmined block referencing previousHash as its
// predecessor. The header's Merkle root is computed here, at construction,
// and never changes afterwards.
func NewBlock(index uint64, previousHash string, difficulty int, transactions []Transaction) Block {
	return Block{
		Header: BlockHeader{
			Index:        index,
			Timestamp:    time.Now().UTC(),
			PreviousHash: previousHash,
			MerkleRoot:   merkle.Root(transactions),
			Nonce:        0,
			Difficulty:   difficulty,
		},
		Transactions: transactions,
	}
}

// EventHandler is called with progress/lifecycle messages during mining. A
// closure keeps Mine decoupled from whatever the caller uses for logging.
type EventHandler func(v string, args ...any)

// Mine performs the bounded brute-force proof-of-work search: starting from
// nonce 0, it recomputes the header hash and increments the nonce until the
// hex hash begins with Difficulty zero characters. The header's timestamp is
// stamped once at construction and is never re-stamped during mining, which
// keeps the search space fixed per nonce.
func (b *Block) Mine(ev EventHandler) {
	safeEv := func(v string, args ...any) {
		if ev != nil {
			ev(v, args...)
		}
	}

	safeEv("database: mine: started: index[%d] difficulty[%d]", b.Header.Index, b.Header.Difficulty)
	defer safeEv("database: mine: completed: index[%d]", b.Header.Index)

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			safeEv("database: mine: running: attempts[%d]", attempts)
		}

		hash := signature.Hash([]byte(b.Header.hashInput()))
		if hasZeroPrefix(hash, b.Header.Difficulty) {
			b.Hash = hash
			safeEv("database: mine: solved: hash[%s] attempts[%d]", hash, attempts)
			return
		}
		b.Header.Nonce++
	}
}

// IsValid recomputes H(header) and checks both equality with the stored
// hash and the zero-prefix proof-of-work condition. A block with index 0 is
// the unmined genesis block and is valid only if its hash is the zero hash.
func (b Block) IsValid() bool {
	if b.Header.Index == 0 {
		return b.Hash == signature.ZeroHash
	}
	recomputed := signature.Hash([]byte(b.Header.hashInput()))
	return recomputed == b.Hash && hasZeroPrefix(b.Hash, b.Header.Difficulty)
}

func hasZeroPrefix(hexHash string, difficulty int) bool {
	if difficulty < 0 || difficulty > len(hexHash) {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if hexHash[i] != '0' {
			return false
		}
	}
	return true
}
