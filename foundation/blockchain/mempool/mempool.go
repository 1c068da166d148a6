// Package mempool buffers accepted, not-yet-mined transactions. It
// deduplicates by transaction id and enforces a configurable capacity.
package mempool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jrmckee/powchain/foundation/blockchain/database"
)

// ErrMempoolFull is returned when a mempool at capacity is asked to accept
// another transaction.
var ErrMempoolFull = errors.New("mempool: full")

// DefaultCapacity is used when NewWithCapacity is given a non-positive
// value.
const DefaultCapacity = 5000

// Mempool is a FIFO buffer of pending transactions, keyed by id for
// dedup/removal.
type Mempool struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	byID     map[string]database.Transaction
}

// New returns a mempool with the default capacity.
func New() *Mempool {
	return NewWithCapacity(DefaultCapacity)
}

// NewWithCapacity returns a mempool capped at capacity transactions.
func NewWithCapacity(capacity int) *Mempool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Mempool{
		capacity: capacity,
		byID:     make(map[string]database.Transaction),
	}
}

// Add appends tx to the mempool. It rejects a transaction whose id is
// already present with database.ErrDuplicateTransaction, and rejects any
// addition once the mempool is at capacity with ErrMempoolFull.
func (m *Mempool) Add(tx database.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[tx.ID]; exists {
		return fmt.Errorf("%w: id %s", database.ErrDuplicateTransaction, tx.ID)
	}
	if len(m.order) >= m.capacity {
		return ErrMempoolFull
	}

	m.byID[tx.ID] = tx
	m.order = append(m.order, tx.ID)
	return nil
}

// Len returns the number of pending transactions.
func (m *Mempool) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Transactions returns the pending transactions in arrival order, without
// removing them.
func (m *Mempool) Transactions() []database.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]database.Transaction, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// Drain removes and returns every pending transaction in arrival order,
// leaving the mempool empty. This is what mine_pending calls to gather the
// transactions a new block will carry.
func (m *Mempool) Drain() []database.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]database.Transaction, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	m.order = nil
	m.byID = make(map[string]database.Transaction)
	return out
}
