package transport

import (
	"fmt"
	"sync"
	"time"
)

type channelKey struct {
	src uint64
	dst uint64
}

// nextSequence advances the per-channel delivery counter. Fresh counters are
// seeded from the wall clock so a restarted sender never reuses a sequence
// already delivered on the channel; the caller holds the endpoint lock.
func nextSequence(sequences map[channelKey]uint64, key channelKey) uint64 {
	seq, ok := sequences[key]
	if !ok {
		seq = uint64(time.Now().UnixNano())
	}
	seq++
	sequences[key] = seq
	return seq
}

// LocalEndpoint routes envelopes between transports registered in the same
// process. Delivery is synchronous and FIFO per (src, dst) channel, with the
// endpoint assigning the delivery sequence, which makes it a faithful stand-in
// for the external network in tests and single-process demos.
type LocalEndpoint struct {
	mu         sync.Mutex
	transports map[uint64]*Transport
	sequences  map[channelKey]uint64
}

func NewLocalEndpoint() *LocalEndpoint {
	return &LocalEndpoint{
		transports: make(map[uint64]*Transport),
		sequences:  make(map[channelKey]uint64),
	}
}

// Register attaches a transport and wires the endpoint as its sender
func (e *LocalEndpoint) Register(t *Transport) {
	e.mu.Lock()
	e.transports[t.ChainID()] = t
	e.mu.Unlock()
	t.SetEndpoint(e)
}

// Send delivers the envelope to the destination transport in-process
func (e *LocalEndpoint) Send(env *Envelope) error {
	e.mu.Lock()
	dst, ok := e.transports[env.DstChain]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("no transport registered for chain %d", env.DstChain)
	}
	key := channelKey{src: env.SrcChain, dst: env.DstChain}
	env.Sequence = nextSequence(e.sequences, key)
	e.mu.Unlock()

	return dst.Receive(env.SrcChain, env.SrcPath, env.Sequence, env.Payload)
}
