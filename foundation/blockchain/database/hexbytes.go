package database

import (
	"encoding/json"

	"github.com/jrmckee/powchain/foundation/blockchain/signature"
)

// HexBytes marshals to/from the hex-encoded string the wire format expects
// for signature, public-key and payload fields, instead of encoding/json's
// default base64-for-[]byte behavior.
type HexBytes []byte

// MarshalJSON implements json.Marshaler.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(signature.ToHex(h))
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b, err := signature.FromHex(s)
	if err != nil {
		return err
	}
	*h = b
	return nil
}
