package network

import "sync"

// LocalTransport is a trivial in-process Transport: broadcasts fan out
// directly to every subscriber registered in the same process. It exists
// for single-node operation and tests; the real peer-discovery and
// pub-sub transport is an external collaborator.
type LocalTransport struct {
	mu          sync.Mutex
	subscribers map[string][]func([]byte)
}

// NewLocalTransport returns an empty LocalTransport.
func NewLocalTransport() *LocalTransport {
	return &LocalTransport{subscribers: make(map[string][]func([]byte))}
}

// Subscribe registers fn to be called with every payload broadcast on
// topic.
func (t *LocalTransport) Subscribe(topic string, fn func(payload []byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers[topic] = append(t.subscribers[topic], fn)
}

// Broadcast fans payload out to every subscriber of topic.
func (t *LocalTransport) Broadcast(topic string, payload []byte) error {
	t.mu.Lock()
	subs := append([]func([]byte){}, t.subscribers[topic]...)
	t.mu.Unlock()

	for _, fn := range subs {
		fn(payload)
	}
	return nil
}
