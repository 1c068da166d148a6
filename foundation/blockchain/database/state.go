package database

import (
	"sync"
)

// Account is the balance/nonce record the world state keeps per address.
type Account struct {
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// Contract is a deployed contract's bytecode, owner and persistent
// key/value storage.
type Contract struct {
	Bytecode []byte           `json:"bytecode"`
	Storage  map[uint64]int64 `json:"storage"`
	Owner    string           `json:"owner"`
}

// WorldState is the in-memory account-and-contract snapshot derived by
// replaying a chain. It is never persisted to disk: it is rebuilt wholesale
// whenever the chain is replaced.
type WorldState struct {
	mu        sync.RWMutex
	accounts  map[string]Account
	contracts map[string]*Contract
}

// NewWorldState returns an empty world state.
func NewWorldState() *WorldState {
	return &WorldState{
		accounts:  make(map[string]Account),
		contracts: make(map[string]*Contract),
	}
}

// Balance returns address's balance, 0 if the account has never been
// credited.
func (s *WorldState) Balance(address string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[address].Balance
}

// Nonce returns address's nonce.
func (s *WorldState) Nonce(address string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[address].Nonce
}

// Credit adds amount to address's balance, creating the account if absent.
func (s *WorldState) Credit(address string, amount uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[address]
	acct.Balance += amount
	s.accounts[address] = acct
}

// Debit checks and subtracts amount from sender's balance, incrementing its
// nonce on success. Balances never go negative: a debit that would
// underflow is rejected instead.
func (s *WorldState) Debit(sender string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.accounts[sender]
	if acct.Balance < amount {
		return &InsufficientBalanceError{Account: sender, Balance: acct.Balance, Required: amount}
	}

	acct.Balance -= amount
	acct.Nonce++
	s.accounts[sender] = acct
	return nil
}

// Transfer debits sender and credits recipient atomically with respect to
// other WorldState callers.
func (s *WorldState) Transfer(sender, recipient string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.accounts[sender]
	if acct.Balance < amount {
		return &InsufficientBalanceError{Account: sender, Balance: acct.Balance, Required: amount}
	}
	acct.Balance -= amount
	acct.Nonce++
	s.accounts[sender] = acct

	recipientAcct := s.accounts[recipient]
	recipientAcct.Balance += amount
	s.accounts[recipient] = recipientAcct
	return nil
}

// Contract returns a copy of the contract deployed at address, or
// ErrContractNotFound.
func (s *WorldState) Contract(address string) (Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[address]
	if !ok {
		return Contract{}, ErrContractNotFound
	}

	storage := make(map[uint64]int64, len(c.Storage))
	for k, v := range c.Storage {
		storage[k] = v
	}
	return Contract{Bytecode: append([]byte(nil), c.Bytecode...), Storage: storage, Owner: c.Owner}, nil
}

// DeployContract inserts a freshly deployed contract into the world state.
func (s *WorldState) DeployContract(address string, bytecode []byte, owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[address] = &Contract{
		Bytecode: bytecode,
		Storage:  make(map[uint64]int64),
		Owner:    owner,
	}
}

// SetContractStorage overwrites a deployed contract's storage after a
// successful call.
func (s *WorldState) SetContractStorage(address string, storage map[uint64]int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[address]
	if !ok {
		return ErrContractNotFound
	}
	c.Storage = storage
	return nil
}
