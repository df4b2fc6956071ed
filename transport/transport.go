package transport

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
	"github.com/TangibleTNFT/tangible-foundation-contracts/events"
	"github.com/TangibleTNFT/tangible-foundation-contracts/logx"
	"github.com/TangibleTNFT/tangible-foundation-contracts/store"
	"github.com/TangibleTNFT/tangible-foundation-contracts/types"
	"github.com/TangibleTNFT/tangible-foundation-contracts/wire"
)

// DefaultPayloadLimit caps outbound payloads unless a per-destination limit
// is configured.
const DefaultPayloadLimit = 10_000

// Adapter params layout: 2-byte version tag then a 32-byte gas value; the
// gas field ends at this offset.
const adapterParamsGasOffset = 34

// MessageHandler applies an authenticated inbound payload to the local ledger
type MessageHandler interface {
	HandleMessage(srcChain uint64, payload []byte) error
}

// Endpoint hands an outbound envelope to the delivery network. Delivery is
// fire and forget: once accepted the message cannot be withdrawn.
type Endpoint interface {
	Send(env *Envelope) error
}

// Envelope is the transport frame around a packet
type Envelope struct {
	SrcChain uint64 `json:"src_chain"`
	DstChain uint64 `json:"dst_chain"`
	SrcPath  []byte `json:"src_path"`
	Sequence uint64 `json:"sequence"` // delivery sequence, assigned per channel
	Payload  []byte `json:"payload"`
}

// Transport authenticates inbound deliveries against configured trusted
// peers, enforces outbound payload and gas policy, and isolates handler
// failures into retryable PendingFailure records so one bad message never
// blocks the channel.
type Transport struct {
	mu                  sync.RWMutex
	chainID             uint64
	localAddr           []byte
	peerAddrs           map[uint64][]byte
	payloadLimits       map[uint64]int
	minDstGas           map[uint64]uint64
	customAdapterParams bool

	handler  MessageHandler
	endpoint Endpoint
	failures store.FailureStore
	bus      *events.EventBus
}

func NewTransport(chainID uint64, localAddr []byte, failures store.FailureStore, bus *events.EventBus) *Transport {
	return &Transport{
		chainID:       chainID,
		localAddr:     append([]byte(nil), localAddr...),
		peerAddrs:     make(map[uint64][]byte),
		payloadLimits: make(map[uint64]int),
		minDstGas:     make(map[uint64]uint64),
		failures:      failures,
		bus:           bus,
	}
}

// SetHandler wires the inbound message handler; done once at node assembly
func (t *Transport) SetHandler(h MessageHandler) {
	t.handler = h
}

// SetEndpoint wires the outbound delivery endpoint; done once at node assembly
func (t *Transport) SetEndpoint(e Endpoint) {
	t.endpoint = e
}

// ChainID returns the local chain identifier
func (t *Transport) ChainID() uint64 {
	return t.chainID
}

// LocalAddr returns the local ledger instance address
func (t *Transport) LocalAddr() []byte {
	return append([]byte(nil), t.localAddr...)
}

// SetTrustedPeer registers the remote ledger address for a chain; the
// trusted source path is derived from it
func (t *Transport) SetTrustedPeer(chainID uint64, remoteAddr []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peerAddrs[chainID] = append([]byte(nil), remoteAddr...)
}

// TrustedPath returns the expected inbound source path for a remote chain:
// remote ledger address followed by the local one
func (t *Transport) TrustedPath(chainID uint64) ([]byte, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	remote, ok := t.peerAddrs[chainID]
	if !ok {
		return nil, false
	}
	return wire.Path(remote, t.localAddr), true
}

// SetPayloadLimit overrides the payload size ceiling for a destination chain
func (t *Transport) SetPayloadLimit(chainID uint64, limit int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.payloadLimits[chainID] = limit
}

// SetMinDstGas sets the gas floor enforced on custom adapter params
func (t *Transport) SetMinDstGas(chainID uint64, minGas uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.minDstGas[chainID] = minGas
}

// UseCustomAdapterParams toggles gas-floor validation of adapter params
func (t *Transport) UseCustomAdapterParams(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.customAdapterParams = enabled
}

// ValidateSend checks outbound policy (trusted destination, payload size,
// gas floor) without sending, so callers can enforce it before any state
// change of their own
func (t *Transport) ValidateSend(dstChain uint64, payload, adapterParams []byte) error {
	t.mu.RLock()
	_, ok := t.peerAddrs[dstChain]
	limit, hasLimit := t.payloadLimits[dstChain]
	custom := t.customAdapterParams
	t.mu.RUnlock()

	if !ok {
		return errors.NewError(errors.ErrCodeUntrustedDestination, errors.ErrMsgUntrustedDestination)
	}
	if !hasLimit {
		limit = DefaultPayloadLimit
	}
	if len(payload) > limit {
		return errors.NewError(errors.ErrCodePayloadTooLarge,
			fmt.Sprintf("%s: %d > %d bytes", errors.ErrMsgPayloadTooLarge, len(payload), limit))
	}
	if custom {
		if err := t.checkGasLimit(dstChain, adapterParams); err != nil {
			return err
		}
	} else if len(adapterParams) != 0 {
		return fmt.Errorf("adapter params must be empty unless custom params are enabled")
	}
	return nil
}

// Send validates policy and hands the payload to the endpoint
func (t *Transport) Send(dstChain uint64, payload, adapterParams []byte) error {
	if err := t.ValidateSend(dstChain, payload, adapterParams); err != nil {
		return err
	}

	t.mu.RLock()
	remote := t.peerAddrs[dstChain]
	t.mu.RUnlock()

	env := &Envelope{
		SrcChain: t.chainID,
		DstChain: dstChain,
		// from the destination's perspective the source path is our address
		// followed by theirs
		SrcPath: wire.Path(t.localAddr, remote),
		Payload: payload,
	}
	return t.endpoint.Send(env)
}

// checkGasLimit reads the destination gas from the adapter params block and
// compares it against the configured floor
func (t *Transport) checkGasLimit(dstChain uint64, adapterParams []byte) error {
	if len(adapterParams) < adapterParamsGasOffset {
		return errors.NewError(errors.ErrCodeInsufficientGasLimit,
			fmt.Sprintf("adapter params too short: %d < %d bytes", len(adapterParams), adapterParamsGasOffset))
	}
	t.mu.RLock()
	floor, ok := t.minDstGas[dstChain]
	t.mu.RUnlock()
	if !ok || floor == 0 {
		return errors.NewError(errors.ErrCodeInsufficientGasLimit, "min destination gas not configured")
	}
	gas := new(uint256.Int).SetBytes(adapterParams[2:adapterParamsGasOffset])
	if gas.CmpUint64(floor) < 0 {
		return errors.NewError(errors.ErrCodeInsufficientGasLimit,
			fmt.Sprintf("%s: %s < %d", errors.ErrMsgInsufficientGasLimit, gas.Dec(), floor))
	}
	return nil
}

// Receive authenticates an inbound delivery and applies it non-blockingly:
// a failing application is parked as a PendingFailure instead of surfacing,
// keeping the channel open for subsequent deliveries.
func (t *Transport) Receive(srcChain uint64, srcPath []byte, deliverySeq uint64, payload []byte) error {
	trusted, ok := t.TrustedPath(srcChain)
	if !ok || !wire.PathEqual(trusted, srcPath) {
		return errors.NewError(errors.ErrCodeUnauthorizedSource,
			fmt.Sprintf("%s: chain %d path %s", errors.ErrMsgUnauthorizedSource, srcChain, hex.EncodeToString(srcPath)))
	}

	if err := t.apply(srcChain, payload); err != nil {
		key := types.NewFailureKey(srcChain, srcPath, deliverySeq)
		fingerprint := sha3.Sum256(payload)
		if storeErr := t.failures.Put(key, fingerprint); storeErr != nil {
			return storeErr
		}
		if t.bus != nil {
			t.bus.Publish(events.NewMessageApplicationFailed(key, payload, err.Error()))
		}
		logx.Warn("TRANSPORT", fmt.Sprintf("Inbound message application failed, stored for retry | key=%s | reason=%v", key, err))
		return nil
	}
	return nil
}

// Retry re-executes a previously failed inbound application. The supplied
// payload must match the stored fingerprint exactly. A second failure is not
// re-caught: the retry caller asked for it and gets the error.
func (t *Transport) Retry(srcChain uint64, srcPath []byte, deliverySeq uint64, payload []byte) error {
	key := types.NewFailureKey(srcChain, srcPath, deliverySeq)
	stored, ok, err := t.failures.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewError(errors.ErrCodeNoStoredFailedMessage, errors.ErrMsgNoStoredFailedMessage)
	}
	if sha3.Sum256(payload) != stored {
		return errors.NewError(errors.ErrCodePayloadFingerprintMismatch, errors.ErrMsgPayloadFingerprintMismatch)
	}
	if err := t.failures.Delete(key); err != nil {
		return err
	}

	if err := t.apply(srcChain, payload); err != nil {
		return err
	}

	if t.bus != nil {
		t.bus.Publish(events.NewRetrySucceeded(key))
	}
	logx.Info("TRANSPORT", fmt.Sprintf("Retry succeeded | key=%s", key))
	return nil
}

// apply invokes the handler in an isolated call, converting panics to errors
func (t *Transport) apply(srcChain uint64, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("message handler panicked: %v", r)
		}
	}()
	if t.handler == nil {
		return fmt.Errorf("no message handler wired")
	}
	return t.handler.HandleMessage(srcChain, payload)
}
