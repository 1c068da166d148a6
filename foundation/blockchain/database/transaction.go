package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrmckee/powchain/foundation/blockchain/signature"
	"github.com/jrmckee/powchain/foundation/blockchain/wallet"
)

// TxType identifies what a Transaction does.
type TxType string

// The three transaction shapes the core understands.
const (
	TxTransfer       TxType = "Transfer"
	TxContractDeploy TxType = "ContractDeploy"
	TxContractCall   TxType = "ContractCall"
)

// Transaction is a typed record with id, parties, amount, payload,
// timestamp and an optional signature + public key. Once constructed, every
// field but Signature/PublicKey is immutable for hashing purposes.
type Transaction struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Amount    uint64    `json:"amount"`
	Data      HexBytes  `json:"data,omitempty"`
	TxType    TxType    `json:"tx_type"`
	Timestamp time.Time `json:"timestamp"`
	Signature HexBytes  `json:"signature,omitempty"`
	PublicKey HexBytes  `json:"public_key,omitempty"`
}

// canonicalTx is the field set hashed to produce the content hash. Struct
// field order is fixed, so json.Marshal is deterministic for a fixed input.
type canonicalTx struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	TxType    TxType `json:"tx_type"`
	Timestamp int64  `json:"timestamp"`
	Data      string `json:"data"`
}

// NewTransfer constructs a Transfer transaction with a fresh id and
// timestamp.
func NewTransfer(sender, recipient string, amount uint64) Transaction {
	return newTransaction(sender, recipient, amount, TxTransfer, nil)
}

// NewContractDeploy constructs a ContractDeploy transaction carrying
// bytecode as its payload.
func NewContractDeploy(sender string, bytecode []byte) Transaction {
	return newTransaction(sender, "", 0, TxContractDeploy, bytecode)
}

// NewContractCall constructs a ContractCall transaction targeting
// contractAddr with callData as its payload.
func NewContractCall(sender, contractAddr string, callData []byte) Transaction {
	return newTransaction(sender, contractAddr, 0, TxContractCall, callData)
}

func newTransaction(sender, recipient string, amount uint64, txType TxType, data []byte) Transaction {
	return Transaction{
		ID:        uuid.New().String(),
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Data:      data,
		TxType:    txType,
		Timestamp: time.Now().UTC(),
	}
}

// IsSystem reports whether this is a coinbase/reward transaction.
func (tx Transaction) IsSystem() bool {
	return tx.Sender == wallet.SystemAddress
}

// Hash returns the content hash: SHA-256 over the canonical serialization
// of {id, sender, recipient, amount, tx_type, timestamp, data}. This is the
// hash the Merkle tree folds over.
func (tx Transaction) Hash() string {
	payload := canonicalTx{
		ID:        tx.ID,
		Sender:    tx.Sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
		TxType:    tx.TxType,
		Timestamp: tx.Timestamp.UnixNano(),
		Data:      signature.ToHex(tx.Data),
	}

	// json.Marshal on a struct with no maps/interfaces never fails.
	data, _ := json.Marshal(payload)
	return signature.Hash(data)
}

// signableDigest is the SHA-256 over id || sender || recipient || amount ||
// timestamp. data and tx_type are deliberately excluded: two transactions
// differing only in payload and type sign identically.
func (tx Transaction) signableDigest() []byte {
	s := fmt.Sprintf("%s%s%s%d%d", tx.ID, tx.Sender, tx.Recipient, tx.Amount, tx.Timestamp.UnixNano())
	sum := signature.HashBytes([]byte(s))
	return sum[:]
}

// Sign computes the signable digest and stores the Ed25519 signature and
// the signer's public key on the transaction.
func (tx *Transaction) Sign(w *wallet.Wallet) error {
	sig, err := w.Sign(tx.signableDigest())
	if err != nil {
		return err
	}
	tx.Signature = sig
	tx.PublicKey = HexBytes(w.PublicKey())
	return nil
}

// Verify reports whether the transaction is admissible from a signature
// standpoint: system transactions always pass; everything else must carry
// a signature and public key that verify over the signable digest.
func (tx Transaction) Verify() error {
	if tx.IsSystem() {
		return nil
	}

	if len(tx.Signature) == 0 || len(tx.PublicKey) == 0 {
		return fmt.Errorf("%w: missing signature or public key", ErrInvalidSignature)
	}

	if !signature.Verify([]byte(tx.PublicKey), tx.signableDigest(), tx.Signature) {
		return fmt.Errorf("%w: signature does not verify", ErrInvalidSignature)
	}

	return nil
}
