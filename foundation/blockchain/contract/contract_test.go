package contract_test

import (
	"strings"
	"testing"

	"github.com/jrmckee/powchain/foundation/blockchain/contract"
	"github.com/jrmckee/powchain/foundation/blockchain/database"
	"github.com/jrmckee/powchain/foundation/blockchain/vm"
)

func TestDeploy(t *testing.T) {
	ws := database.NewWorldState()
	bytecode := []byte{byte(vm.OpHalt)}

	address := contract.Deploy(ws, "alice", bytecode)
	if !strings.HasPrefix(address, "0xc") {
		t.Fatalf("address = %s, want 0xc prefix", address)
	}

	c, err := ws.Contract(address)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	if c.Owner != "alice" {
		t.Fatalf("Owner = %s, want alice", c.Owner)
	}
}

func TestCall_RoundTrip(t *testing.T) {
	ws := database.NewWorldState()
	bytecode, err := vm.Assemble(`
		PUSH 0
		PUSH 42
		STORE
		PUSH 0
		LOAD
		DUP
		LOG
		HALT
	`)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	address := contract.Deploy(ws, "alice", bytecode)

	result, err := contract.Call(ws, address, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !result.HasTop || result.StackTop != 42 {
		t.Fatalf("StackTop = %d (hasTop=%v), want 42", result.StackTop, result.HasTop)
	}
	if len(result.Logs) != 1 || result.Logs[0] != 42 {
		t.Fatalf("Logs = %v, want [42]", result.Logs)
	}

	c, err := ws.Contract(address)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	if c.Storage[0] != 42 {
		t.Fatalf("Storage[0] = %d, want 42", c.Storage[0])
	}
}

func TestCall_FailureLeavesStateUnchanged(t *testing.T) {
	ws := database.NewWorldState()
	bytecode, err := vm.Assemble(`
		PUSH 0
		PUSH 1
		STORE
		PUSH 1
		PUSH 0
		DIV
		HALT
	`)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	address := contract.Deploy(ws, "alice", bytecode)

	if _, err := contract.Call(ws, address, nil); err == nil {
		t.Fatalf("Call succeeded despite a division by zero")
	}

	c, err := ws.Contract(address)
	if err != nil {
		t.Fatalf("Contract: %v", err)
	}
	if len(c.Storage) != 0 {
		t.Fatalf("storage mutated despite a failed call: %v", c.Storage)
	}
}

func TestCall_MissingContract(t *testing.T) {
	ws := database.NewWorldState()
	if _, err := contract.Call(ws, "0xcmissing", nil); err != database.ErrContractNotFound {
		t.Fatalf("error = %v, want ErrContractNotFound", err)
	}
}
