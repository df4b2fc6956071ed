package events

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/TangibleTNFT/tangible-foundation-contracts/types"
)

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventIndexUpdated             EventType = "IndexUpdated"
	EventRebaseEnabled            EventType = "RebaseEnabled"
	EventRebaseDisabled           EventType = "RebaseDisabled"
	EventBalanceChanged           EventType = "BalanceChanged"
	EventSendInitiated            EventType = "SendInitiated"
	EventReceiveCompleted         EventType = "ReceiveCompleted"
	EventMessageApplicationFailed EventType = "MessageApplicationFailed"
	EventRetrySucceeded           EventType = "RetrySucceeded"
)

// LedgerEvent represents any observable event emitted by the ledger stack
type LedgerEvent interface {
	Type() EventType
	Timestamp() time.Time
}

// IndexUpdated event when the rebase index changes
type IndexUpdated struct {
	updater   string
	newIndex  *uint256.Int
	timestamp time.Time
}

func NewIndexUpdated(updater string, newIndex *uint256.Int) *IndexUpdated {
	return &IndexUpdated{
		updater:   updater,
		newIndex:  newIndex.Clone(),
		timestamp: time.Now(),
	}
}

func (e *IndexUpdated) Type() EventType { return EventIndexUpdated }
func (e *IndexUpdated) Timestamp() time.Time { return e.timestamp }
func (e *IndexUpdated) Updater() string { return e.updater }
func (e *IndexUpdated) NewIndex() *uint256.Int { return e.newIndex }

// RebaseToggled event when an account opts out of (or back into) rebasing
type RebaseToggled struct {
	account   string
	enabled   bool
	timestamp time.Time
}

func NewRebaseToggled(account string, enabled bool) *RebaseToggled {
	return &RebaseToggled{
		account:   account,
		enabled:   enabled,
		timestamp: time.Now(),
	}
}

func (e *RebaseToggled) Type() EventType {
	if e.enabled {
		return EventRebaseEnabled
	}
	return EventRebaseDisabled
}
func (e *RebaseToggled) Timestamp() time.Time { return e.timestamp }
func (e *RebaseToggled) Account() string { return e.account }
func (e *RebaseToggled) Enabled() bool { return e.enabled }

// BalanceChanged event on every mint, burn or transfer; the amount is always
// in token units regardless of which representation moved
type BalanceChanged struct {
	from      string
	to        string
	amount    *uint256.Int
	timestamp time.Time
}

func NewBalanceChanged(from, to string, amount *uint256.Int) *BalanceChanged {
	return &BalanceChanged{
		from:      from,
		to:        to,
		amount:    amount.Clone(),
		timestamp: time.Now(),
	}
}

func (e *BalanceChanged) Type() EventType { return EventBalanceChanged }
func (e *BalanceChanged) Timestamp() time.Time { return e.timestamp }
func (e *BalanceChanged) From() string { return e.from }
func (e *BalanceChanged) To() string { return e.to }
func (e *BalanceChanged) Amount() *uint256.Int { return e.amount }

// SendInitiated event when an outbound cross-chain transfer is debited
type SendInitiated struct {
	dstChain    uint64
	from        string
	destination []byte
	amount      *uint256.Int
	timestamp   time.Time
}

func NewSendInitiated(dstChain uint64, from string, destination []byte, amount *uint256.Int) *SendInitiated {
	return &SendInitiated{
		dstChain:    dstChain,
		from:        from,
		destination: append([]byte(nil), destination...),
		amount:      amount.Clone(),
		timestamp:   time.Now(),
	}
}

func (e *SendInitiated) Type() EventType { return EventSendInitiated }
func (e *SendInitiated) Timestamp() time.Time { return e.timestamp }
func (e *SendInitiated) DstChain() uint64 { return e.dstChain }
func (e *SendInitiated) From() string { return e.from }
func (e *SendInitiated) Destination() []byte { return e.destination }
func (e *SendInitiated) Amount() *uint256.Int { return e.amount }

// ReceiveCompleted event when an inbound cross-chain transfer is credited
type ReceiveCompleted struct {
	srcChain  uint64
	to        string
	amount    *uint256.Int
	timestamp time.Time
}

func NewReceiveCompleted(srcChain uint64, to string, amount *uint256.Int) *ReceiveCompleted {
	return &ReceiveCompleted{
		srcChain:  srcChain,
		to:        to,
		amount:    amount.Clone(),
		timestamp: time.Now(),
	}
}

func (e *ReceiveCompleted) Type() EventType { return EventReceiveCompleted }
func (e *ReceiveCompleted) Timestamp() time.Time { return e.timestamp }
func (e *ReceiveCompleted) SrcChain() uint64 { return e.srcChain }
func (e *ReceiveCompleted) To() string { return e.to }
func (e *ReceiveCompleted) Amount() *uint256.Int { return e.amount }

// MessageApplicationFailed event when an inbound payload could not be applied
// and was parked for retry
type MessageApplicationFailed struct {
	key       types.FailureKey
	payload   []byte
	reason    string
	timestamp time.Time
}

func NewMessageApplicationFailed(key types.FailureKey, payload []byte, reason string) *MessageApplicationFailed {
	return &MessageApplicationFailed{
		key:       key,
		payload:   append([]byte(nil), payload...),
		reason:    reason,
		timestamp: time.Now(),
	}
}

func (e *MessageApplicationFailed) Type() EventType { return EventMessageApplicationFailed }
func (e *MessageApplicationFailed) Timestamp() time.Time { return e.timestamp }
func (e *MessageApplicationFailed) Key() types.FailureKey { return e.key }
func (e *MessageApplicationFailed) Payload() []byte { return e.payload }
func (e *MessageApplicationFailed) Reason() string { return e.reason }

// RetrySucceeded event when a parked payload was re-applied successfully
type RetrySucceeded struct {
	key       types.FailureKey
	timestamp time.Time
}

func NewRetrySucceeded(key types.FailureKey) *RetrySucceeded {
	return &RetrySucceeded{
		key:       key,
		timestamp: time.Now(),
	}
}

func (e *RetrySucceeded) Type() EventType { return EventRetrySucceeded }
func (e *RetrySucceeded) Timestamp() time.Time { return e.timestamp }
func (e *RetrySucceeded) Key() types.FailureKey { return e.key }
