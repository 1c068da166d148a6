package state_test

import (
	"errors"
	"testing"

	"github.com/jrmckee/powchain/foundation/blockchain/database"
	"github.com/jrmckee/powchain/foundation/blockchain/state"
	"github.com/jrmckee/powchain/foundation/blockchain/wallet"
)

func newTestState(t *testing.T) *state.State {
	t.Helper()
	return state.New(state.Config{Difficulty: 1, MiningReward: 50, MempoolCap: 100})
}

func TestState_FreshChain(t *testing.T) {
	st := newTestState(t)
	if st.Height() != 1 {
		t.Fatalf("Height() = %d, want 1", st.Height())
	}
	if st.Chain()[0].Header.Index != 0 {
		t.Fatalf("chain()[0].index = %d, want 0", st.Chain()[0].Header.Index)
	}
}

func TestState_MineWithEmptyMempool(t *testing.T) {
	st := newTestState(t)
	if _, err := st.MinePending("miner"); err != nil {
		t.Fatalf("MinePending: %v", err)
	}

	if st.Height() != 2 {
		t.Fatalf("Height() = %d, want 2", st.Height())
	}
	last := st.Chain()[st.Height()-1]
	if len(last.Transactions) != 1 {
		t.Fatalf("last block has %d transactions, want 1 (reward only)", len(last.Transactions))
	}
	if st.Balance("miner") != 50 {
		t.Fatalf("Balance(miner) = %d, want 50", st.Balance("miner"))
	}
}

func TestState_SignedTransfer(t *testing.T) {
	st := newTestState(t)
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("wallet.New: %v", err)
	}
	st.Credit(w.Address(), 1000)

	tx := database.NewTransfer(w.Address(), "bob", 100)
	if err := tx.Sign(w); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := st.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	if _, err := st.MinePending("miner"); err != nil {
		t.Fatalf("MinePending: %v", err)
	}

	if st.Balance("bob") != 100 {
		t.Fatalf("Balance(bob) = %d, want 100", st.Balance("bob"))
	}
	if st.Balance(w.Address()) != 900 {
		t.Fatalf("Balance(sender) = %d, want 900", st.Balance(w.Address()))
	}
	if st.Balance("miner") != 50 {
		t.Fatalf("Balance(miner) = %d, want 50", st.Balance("miner"))
	}
}

func TestState_InsufficientBalance(t *testing.T) {
	st := newTestState(t)
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("wallet.New: %v", err)
	}

	tx := database.NewTransfer(w.Address(), "bob", 100)
	if err := tx.Sign(w); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	err = st.AddTransaction(tx)
	var insufficient *database.InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("AddTransaction error = %v, want *InsufficientBalanceError", err)
	}
}

func TestState_ReplaceChain(t *testing.T) {
	st := newTestState(t)
	if _, err := st.MinePending("miner-a"); err != nil {
		t.Fatalf("MinePending: %v", err)
	}

	fork := state.New(state.Config{Difficulty: 1, MiningReward: 50, MempoolCap: 100})
	if _, err := fork.MinePending("miner-b"); err != nil {
		t.Fatalf("fork MinePending: %v", err)
	}
	if _, err := fork.MinePending("miner-b"); err != nil {
		t.Fatalf("fork MinePending: %v", err)
	}

	if err := st.ReplaceChain(fork.Chain()); err != nil {
		t.Fatalf("ReplaceChain: %v", err)
	}
	if st.Height() != fork.Height() {
		t.Fatalf("Height() = %d, want %d", st.Height(), fork.Height())
	}
	if st.Balance("miner-b") != fork.Balance("miner-b") {
		t.Fatalf("Balance(miner-b) = %d, want %d", st.Balance("miner-b"), fork.Balance("miner-b"))
	}
	if st.Balance("miner-a") != 0 {
		t.Fatalf("Balance(miner-a) after replace = %d, want 0 (rebuilt from scratch)", st.Balance("miner-a"))
	}
}

func TestState_ReplaceChain_RejectsShorter(t *testing.T) {
	st := newTestState(t)
	if _, err := st.MinePending("miner"); err != nil {
		t.Fatalf("MinePending: %v", err)
	}
	if _, err := st.MinePending("miner"); err != nil {
		t.Fatalf("MinePending: %v", err)
	}

	shorter := []database.Block{st.Chain()[0]}
	if err := st.ReplaceChain(shorter); !errors.Is(err, database.ErrInvalidChain) {
		t.Fatalf("ReplaceChain error = %v, want ErrInvalidChain", err)
	}
}
