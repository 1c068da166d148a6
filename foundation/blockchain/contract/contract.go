// Package contract bridges the world state to the virtual machine: it
// derives a fresh contract address on deploy, and on call clones a
// contract's storage, runs the VM against the clone, and commits the result
// back only on success.
package contract

import (
	"fmt"
	"time"

	"github.com/jrmckee/powchain/foundation/blockchain/database"
	"github.com/jrmckee/powchain/foundation/blockchain/signature"
	"github.com/jrmckee/powchain/foundation/blockchain/vm"
)

// CallResult is what a successful Call returns to its caller.
type CallResult struct {
	StackTop  int64
	HasTop    bool
	Logs      []int64
	StepsUsed int
}

// Deploy inserts a new contract owned by sender into state, returning its
// derived address. The address is "0xc" followed by 39 hex characters of
// SHA-256(sender || bytecode || nanoseconds_since_epoch).
func Deploy(state *database.WorldState, sender string, bytecode []byte) string {
	seed := append([]byte(sender), bytecode...)
	seed = append(seed, []byte(fmt.Sprintf("%d", time.Now().UnixNano()))...)
	sum := signature.Hash(seed)
	address := "0xc" + sum[:39]

	state.DeployContract(address, bytecode, sender)
	return address
}

// Call looks up the contract at address, executes its bytecode against a
// clone of its storage, and commits the clone back to state only if
// execution succeeds. callData is accepted for interface symmetry but is
// not currently exposed to the VM — there is no instruction that reads it.
func Call(state *database.WorldState, address string, callData []byte) (CallResult, error) {
	c, err := state.Contract(address)
	if err != nil {
		return CallResult{}, err
	}

	machine := vm.New(c.Bytecode, c.Storage)
	result, err := machine.Run()
	if err != nil {
		return CallResult{}, err
	}

	if err := state.SetContractStorage(address, result.Storage); err != nil {
		return CallResult{}, err
	}

	top, hasTop := result.StackTop()
	return CallResult{
		StackTop:  top,
		HasTop:    hasTop,
		Logs:      result.Logs,
		StepsUsed: result.StepsUsed,
	}, nil
}
