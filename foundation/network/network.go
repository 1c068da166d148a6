// Package network is the core's one contract with the gossip transport: a
// Transport interface the real peer-discovery/pub-sub implementation
// satisfies, plus the command/event plumbing and rate limiting that sits in
// front of it.
package network

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jrmckee/powchain/foundation/blockchain/database"
)

// Topic names used on the wire.
const (
	TopicTransactions = "blockchain-transactions"
	TopicBlocks       = "blockchain-blocks"
)

// PeerID identifies a remote node to the transport.
type PeerID string

// Transport is the black box the core talks to for outbound traffic: it
// broadcasts a message on a topic. It has no delivery method; whoever
// receives inbound messages decodes them and hands them to Node.Deliver. The
// concrete peer-discovery and pub-sub implementation lives outside this
// package — Node only depends on this interface.
type Transport interface {
	Broadcast(topic string, payload []byte) error
}

// Command is something the application asks the network layer to do.
type Command struct {
	BroadcastTransaction *database.Transaction
	BroadcastBlock       *database.Block
	RequestChain         bool
}

// Event is something the network layer reports to the application.
type Event struct {
	NewTransaction   *database.Transaction
	NewBlock         *database.Block
	ChainRequest     *PeerID
	ChainResponse    []database.Block
	PeerConnected    *PeerID
	PeerDisconnected *PeerID
}

// Handler reacts to events delivered off the network. It is the seam Node
// calls into; cmd/node wires it to the State orchestration layer.
type Handler interface {
	AddTransaction(tx database.Transaction) error
	RequestChain()
	CurrentChain() []database.Block
	ReplaceChain(blocks []database.Block) error
}

// Node owns a Transport and applies per-peer rate limiting and peer
// bookkeeping, translating wire events into calls against a Handler.
type Node struct {
	transport Transport
	handler   Handler
	log       *zap.SugaredLogger

	limitersMu sync.Mutex
	limiters   map[PeerID]*rate.Limiter

	peersMu sync.Mutex
	peers   map[PeerID]struct{}
}

// NewNode constructs a Node bound to transport and handler.
func NewNode(transport Transport, handler Handler, log *zap.SugaredLogger) *Node {
	return &Node{
		transport: transport,
		handler:   handler,
		log:       log,
		limiters:  make(map[PeerID]*rate.Limiter),
		peers:     make(map[PeerID]struct{}),
	}
}

// Do executes a command against the transport.
func (n *Node) Do(cmd Command) error {
	switch {
	case cmd.BroadcastTransaction != nil:
		data, err := marshalTransaction(*cmd.BroadcastTransaction)
		if err != nil {
			return err
		}
		return n.transport.Broadcast(TopicTransactions, data)

	case cmd.BroadcastBlock != nil:
		data, err := marshalBlock(*cmd.BroadcastBlock)
		if err != nil {
			return err
		}
		return n.transport.Broadcast(TopicBlocks, data)

	case cmd.RequestChain:
		return n.transport.Broadcast(TopicBlocks, chainRequestPayload())
	}

	return nil
}

// Deliver applies the event-handling policy: new transactions and blocks
// get admitted or trigger a sync request, chain responses get an adoption
// attempt, and peer events update the peer set. Core errors are caught and
// logged, never propagated: a bad gossip message must not crash the node.
func (n *Node) Deliver(peer PeerID, ev Event) {
	if !n.allow(peer) {
		n.log.Warnw("network: peer rate limited", "peer", peer)
		return
	}

	switch {
	case ev.NewTransaction != nil:
		if err := n.handler.AddTransaction(*ev.NewTransaction); err != nil {
			n.log.Debugw("network: add_transaction rejected", "err", err)
		}

	case ev.NewBlock != nil:
		// Simplified sync: do not adopt the single block, ask for the full
		// chain instead.
		n.handler.RequestChain()

	case ev.ChainRequest != nil:
		data, err := marshalChainResponse(n.handler.CurrentChain())
		if err != nil {
			n.log.Debugw("network: chain_request: failed to marshal response", "err", err)
			return
		}
		if err := n.transport.Broadcast(TopicBlocks, data); err != nil {
			n.log.Debugw("network: chain_request: broadcast failed", "err", err)
		}

	case ev.ChainResponse != nil:
		if err := n.handler.ReplaceChain(ev.ChainResponse); err != nil {
			n.log.Debugw("network: replace_chain rejected", "err", err)
		}

	case ev.PeerConnected != nil:
		n.peersMu.Lock()
		n.peers[*ev.PeerConnected] = struct{}{}
		n.peersMu.Unlock()

	case ev.PeerDisconnected != nil:
		n.peersMu.Lock()
		delete(n.peers, *ev.PeerDisconnected)
		n.limitersMu.Lock()
		delete(n.limiters, *ev.PeerDisconnected)
		n.limitersMu.Unlock()
		n.peersMu.Unlock()
	}
}

// PeerCount returns the number of currently connected peers, protected by
// its own lock independent of the blockchain's.
func (n *Node) PeerCount() int {
	n.peersMu.Lock()
	defer n.peersMu.Unlock()
	return len(n.peers)
}

func (n *Node) allow(peer PeerID) bool {
	n.limitersMu.Lock()
	defer n.limitersMu.Unlock()

	lim, ok := n.limiters[peer]
	if !ok {
		lim = rate.NewLimiter(10, 20)
		n.limiters[peer] = lim
	}
	return lim.Allow()
}
