package network

import (
	"encoding/json"

	"github.com/jrmckee/powchain/foundation/blockchain/database"
)

// The envelopes below form a tagged-union wire format: a single JSON object
// naming which variant it carries. ChainRequest carries no payload, so its
// wire form is the literal `{"ChainRequest": null}` — it is encoded/decoded
// by key presence, not by a non-nil pointer, so a conformant peer's
// null-valued request round-trips correctly.
type txEnvelope struct {
	NewTransaction *database.Transaction `json:"NewTransaction,omitempty"`
}

type newBlockEnvelope struct {
	NewBlock *database.Block `json:"NewBlock"`
}

type chainRequestEnvelope struct {
	ChainRequest json.RawMessage `json:"ChainRequest"`
}

type chainResponseEnvelope struct {
	ChainResponse []database.Block `json:"ChainResponse"`
}

func marshalTransaction(tx database.Transaction) ([]byte, error) {
	return json.Marshal(txEnvelope{NewTransaction: &tx})
}

func marshalBlock(b database.Block) ([]byte, error) {
	return json.Marshal(newBlockEnvelope{NewBlock: &b})
}

func chainRequestPayload() []byte {
	data, _ := json.Marshal(chainRequestEnvelope{ChainRequest: json.RawMessage("null")})
	return data
}

func marshalChainResponse(blocks []database.Block) ([]byte, error) {
	return json.Marshal(chainResponseEnvelope{ChainResponse: blocks})
}

// DecodeTransactionEnvelope parses a message received on TopicTransactions.
func DecodeTransactionEnvelope(data []byte) (database.Transaction, error) {
	var env txEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return database.Transaction{}, err
	}
	if env.NewTransaction == nil {
		return database.Transaction{}, database.ErrSerialization
	}
	return *env.NewTransaction, nil
}

// DecodeBlockEnvelope parses a message received on TopicBlocks into an
// Event. Variants are distinguished by which key is present in the JSON
// object, not by the key's value being non-nil — ChainRequest's value is
// always `null` on the wire.
func DecodeBlockEnvelope(data []byte) (Event, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Event{}, err
	}

	if v, ok := raw["NewBlock"]; ok {
		var b database.Block
		if err := json.Unmarshal(v, &b); err != nil {
			return Event{}, err
		}
		return Event{NewBlock: &b}, nil
	}

	if _, ok := raw["ChainRequest"]; ok {
		return Event{ChainRequest: new(PeerID)}, nil
	}

	if v, ok := raw["ChainResponse"]; ok {
		var blocks []database.Block
		if err := json.Unmarshal(v, &blocks); err != nil {
			return Event{}, err
		}
		return Event{ChainResponse: blocks}, nil
	}

	return Event{}, database.ErrSerialization
}
