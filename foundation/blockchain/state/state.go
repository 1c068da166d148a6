// Package state is the core API for the blockchain and implements all the
// business rules and processing: transaction admission, mining, validation
// and replay.
package state

import (
	"sync"

	"github.com/jrmckee/powchain/foundation/blockchain/database"
	"github.com/jrmckee/powchain/foundation/blockchain/mempool"
	"github.com/jrmckee/powchain/foundation/blockchain/wallet"
)

// EventHandler defines a function that is called when events occur during
// mining or replay. For logging purposes and foundation use, this function
// was built to decouple items between production logging and development.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the blockchain.
type Config struct {
	Difficulty   int
	MiningReward uint64
	MempoolCap   int
	EvHandler    EventHandler
}

// State manages the blockchain: chain, mempool and world state, all guarded
// by a single lock.
type State struct {
	mu sync.Mutex

	difficulty   int
	miningReward uint64
	evHandler    EventHandler

	chain   *database.Chain
	mempool *mempool.Mempool
	world   *database.WorldState
}

// New constructs a fresh blockchain: genesis block, empty mempool, empty
// world state.
func New(cfg Config) *State {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	return &State{
		difficulty:   cfg.Difficulty,
		miningReward: cfg.MiningReward,
		evHandler:    ev,
		chain:        database.NewChain(cfg.Difficulty),
		mempool:      mempool.NewWithCapacity(cfg.MempoolCap),
		world:        database.NewWorldState(),
	}
}

// Height returns the number of blocks in the chain, genesis included.
func (s *State) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.Height()
}

// Chain returns a copy of the current chain's blocks.
func (s *State) Chain() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.Blocks()
}

// Balance returns address's current balance.
func (s *State) Balance(address string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Balance(address)
}

// Credit adds amount to address's balance directly, bypassing a
// transaction. Used to seed accounts in tests and local bootstrapping.
func (s *State) Credit(address string, amount uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world.Credit(address, amount)
}

// Contract returns a copy of the contract deployed at address.
func (s *State) Contract(address string) (database.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Contract(address)
}

// World exposes the underlying world state for the contract executor, which
// needs to deploy and mutate contracts outside of MinePending's replay
// path.
func (s *State) World() *database.WorldState {
	return s.world
}

// Lock and Unlock expose the state's single mutex so callers that need to
// combine a core operation with a contract-executor call (deploy, call)
// under one critical section.
func (s *State) Lock()   { s.mu.Lock() }
func (s *State) Unlock() { s.mu.Unlock() }

// =============================================================================

// AddTransaction admits tx into the mempool. Non-system senders must verify
// and, for transfers, must carry a sufficient balance.
func (s *State) AddTransaction(tx database.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !tx.IsSystem() {
		if err := tx.Verify(); err != nil {
			return err
		}
		if tx.TxType == database.TxTransfer && s.world.Balance(tx.Sender) < tx.Amount {
			return &database.InsufficientBalanceError{
				Account:  tx.Sender,
				Balance:  s.world.Balance(tx.Sender),
				Required: tx.Amount,
			}
		}
	}

	return s.mempool.Add(tx)
}

// MinePending drains the mempool, appends a system reward transaction for
// minerAddress, applies transfers to world state, assembles a new block and
// mines it.
func (s *State) MinePending(minerAddress string) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reward := database.NewTransfer(wallet.SystemAddress, minerAddress, s.miningReward)

	txs := s.mempool.Drain()
	txs = append(txs, reward)

	for _, tx := range txs {
		switch tx.TxType {
		case database.TxTransfer:
			if tx.IsSystem() {
				s.world.Credit(tx.Recipient, tx.Amount)
				continue
			}
			if err := s.world.Transfer(tx.Sender, tx.Recipient, tx.Amount); err != nil {
				s.evHandler("state: mine_pending: skipped: tx[%s] err[%s]", tx.ID, err)
			}
		case database.TxContractDeploy, database.TxContractCall:
			// Applied through the contract executor at submission time, not
			// replayed here.
		}
	}

	latest := s.chain.Latest()
	block := database.NewBlock(uint64(s.chain.Height()), latest.Hash, s.difficulty, txs)
	block.Mine(database.EventHandler(s.evHandler))

	s.chain.Append(block)
	return block, nil
}

// IsChainValid reports whether the current chain is internally consistent.
func (s *State) IsChainValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.IsValid()
}

// ReplaceChain adopts newBlocks if strictly longer and valid end-to-end,
// rebuilding world state from scratch by replaying only Transfer
// transactions. Contract state is not replayed and is therefore lost on
// chain replacement — a deliberate tradeoff, not an oversight: replaying
// deploys/calls would mean re-executing arbitrary bytecode and re-deriving
// historical addresses during every chain swap.
func (s *State) ReplaceChain(newBlocks []database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.chain.Replace(newBlocks); err != nil {
		return err
	}

	world := database.NewWorldState()
	for _, b := range newBlocks {
		for _, tx := range b.Transactions {
			if tx.TxType != database.TxTransfer {
				continue
			}
			if tx.IsSystem() {
				world.Credit(tx.Recipient, tx.Amount)
				continue
			}
			if err := world.Transfer(tx.Sender, tx.Recipient, tx.Amount); err != nil {
				s.evHandler("state: replace_chain: skipped: tx[%s] err[%s]", tx.ID, err)
			}
		}
	}

	s.world = world
	s.evHandler("state: replace_chain: adopted chain of height %d", len(newBlocks))
	return nil
}

// MempoolLen returns the number of pending transactions.
func (s *State) MempoolLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mempool.Len()
}
