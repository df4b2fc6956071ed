package transport

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/TangibleTNFT/tangible-foundation-contracts/jsonx"
	"github.com/TangibleTNFT/tangible-foundation-contracts/logx"
)

// DeliverPath is the HTTP route peers post envelopes to
const DeliverPath = "/v1/deliver"

// HTTPEndpoint delivers envelopes to peer nodes over HTTP. Each (src, dst)
// channel gets its own monotonically increasing delivery sequence; posting
// is synchronous but the sender does not wait for the remote application
// outcome beyond transport acceptance.
type HTTPEndpoint struct {
	mu        sync.Mutex
	peerURLs  map[uint64]string
	sequences map[channelKey]uint64
	client    *http.Client
	transport *Transport
}

func NewHTTPEndpoint(t *Transport, peerURLs map[uint64]string) *HTTPEndpoint {
	urls := make(map[uint64]string, len(peerURLs))
	for chain, url := range peerURLs {
		urls[chain] = url
	}
	e := &HTTPEndpoint{
		peerURLs:  urls,
		sequences: make(map[channelKey]uint64),
		client:    &http.Client{Timeout: 15 * time.Second},
		transport: t,
	}
	t.SetEndpoint(e)
	return e
}

// Send posts the envelope to the destination peer
func (e *HTTPEndpoint) Send(env *Envelope) error {
	e.mu.Lock()
	url, ok := e.peerURLs[env.DstChain]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("no peer URL configured for chain %d", env.DstChain)
	}
	key := channelKey{src: env.SrcChain, dst: env.DstChain}
	env.Sequence = nextSequence(e.sequences, key)
	e.mu.Unlock()

	body, err := jsonx.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	resp, err := e.client.Post(url+DeliverPath, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to deliver to chain %d: %w", env.DstChain, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("peer for chain %d rejected delivery: %s", env.DstChain, resp.Status)
	}
	return nil
}

// Handler returns the HTTP handler that accepts envelopes from peers
func (e *HTTPEndpoint) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(DeliverPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var env Envelope
		if err := jsonx.NewDecoder(r.Body).Decode(&env); err != nil {
			http.Error(w, "invalid envelope", http.StatusBadRequest)
			return
		}
		if err := e.transport.Receive(env.SrcChain, env.SrcPath, env.Sequence, env.Payload); err != nil {
			logx.Warn("TRANSPORT", fmt.Sprintf("Rejected inbound delivery from chain %d: %v", env.SrcChain, err))
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
