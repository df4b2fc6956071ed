// Package bridge moves elastic balances between chains. Exactly one ledger
// instance is the main chain and keeps canonical custody of every bridged
// token; all other instances mint and burn representations. Messages carry
// shares, not tokens, so a transfer in flight is unaffected by index moves.
package bridge

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
	"github.com/TangibleTNFT/tangible-foundation-contracts/events"
	"github.com/TangibleTNFT/tangible-foundation-contracts/ledger"
	"github.com/TangibleTNFT/tangible-foundation-contracts/logx"
	"github.com/TangibleTNFT/tangible-foundation-contracts/rebase"
	"github.com/TangibleTNFT/tangible-foundation-contracts/transport"
	"github.com/TangibleTNFT/tangible-foundation-contracts/wire"
)

// CreditNotifier is the best-effort callback to a receiving account after an
// inbound credit. It is attempted once and any failure is swallowed; the
// credit itself is never rolled back.
type CreditNotifier interface {
	NotifyCredit(account string, amount *uint256.Int) error
}

// Bridge wires the share ledger, the index synchronizer and the message
// transport into the cross-chain transfer flow.
type Bridge struct {
	ledger    *ledger.Ledger
	sync      *rebase.Synchronizer
	transport *transport.Transport
	bus       *events.EventBus
	notifier  CreditNotifier

	isMain  bool
	custody string
}

// NewBridge builds the bridge and registers it as the transport's inbound
// handler. The main-chain designation is derived here, once, from the local
// chain id and never changes afterward.
func NewBridge(l *ledger.Ledger, sync *rebase.Synchronizer, t *transport.Transport, mainChainID uint64, custody string, bus *events.EventBus, notifier CreditNotifier) *Bridge {
	b := &Bridge{
		ledger:    l,
		sync:      sync,
		transport: t,
		bus:       bus,
		notifier:  notifier,
		isMain:    t.ChainID() == mainChainID,
		custody:   custody,
	}
	t.SetHandler(b)
	return b
}

// IsMain reports whether this instance holds canonical custody
func (b *Bridge) IsMain() bool {
	return b.isMain
}

// Debit removes amount from the sender: into bridge custody on the main
// chain, burned on a secondary chain. Callers other than the owner spend an
// allowance. Returns the share count actually debited.
func (b *Bridge) Debit(caller, from string, amount *uint256.Int) (*uint256.Int, error) {
	shares, err := b.ledger.TransferableShares(amount, from)
	if err != nil {
		return nil, err
	}
	if caller != "" && caller != from {
		if err := b.ledger.Base().SpendAllowance(from, caller, amount); err != nil {
			return nil, err
		}
	}

	to := ""
	if b.isMain {
		to = b.custody
	}
	if err := b.ledger.ApplyUpdate(from, to, amount); err != nil {
		return nil, err
	}
	return shares, nil
}

// Credit converts shares to tokens at the local index and hands them to the
// recipient: out of custody on the main chain, minted on a secondary chain.
// Returns the token amount credited.
func (b *Bridge) Credit(to string, shares *uint256.Int) (*uint256.Int, error) {
	amount, err := ledger.ToTokens(shares, b.ledger.Index())
	if err != nil {
		return nil, err
	}

	from := ""
	if b.isMain {
		from = b.custody
	}
	if err := b.ledger.ApplyUpdate(from, to, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// Send debits the sender and ships a transfer packet carrying the debited
// shares, the local index and the current sequence number. Opted-out
// balances do not participate in the shared index and cannot be bridged.
func (b *Bridge) Send(caller, from string, dstChain uint64, toAddr []byte, amount *uint256.Int, adapterParams []byte) error {
	optedOut, err := b.ledger.IsOptedOut(from)
	if err != nil {
		return err
	}
	if optedOut {
		return errors.NewError(errors.ErrCodeOptedOutBridgeRejection, errors.ErrMsgOptedOutBridgeRejection)
	}

	// encode with the shares the debit will remove and clear every
	// precondition (balance, allowance, transport policy) up front; the
	// endpoint hand-off runs before the debit so a failed delivery leaves
	// balances untouched, and the pre-checks keep the debit from failing
	// after the message is already in flight
	shares, err := b.ledger.TransferableShares(amount, from)
	if err != nil {
		return err
	}
	if caller != "" && caller != from {
		allowance, err := b.ledger.Base().Allowance(from, caller)
		if err != nil {
			return err
		}
		if allowance.Cmp(amount) < 0 {
			return errors.NewError(errors.ErrCodeInsufficientAllowance, errors.ErrMsgInsufficientAllowance)
		}
	}
	payload, err := wire.EncodeTransferPacket(&wire.TransferPacket{
		To:             toAddr,
		Shares:         shares,
		RebaseIndex:    b.ledger.Index(),
		SequenceNumber: b.currentSequence(),
	})
	if err != nil {
		return err
	}
	if err := b.transport.Send(dstChain, payload, adapterParams); err != nil {
		return err
	}

	if _, err := b.Debit(caller, from, amount); err != nil {
		return err
	}

	if b.bus != nil {
		b.bus.Publish(events.NewSendInitiated(dstChain, from, toAddr, amount))
	}
	logx.Info("BRIDGE", fmt.Sprintf("Sent %s tokens (%s shares) to chain %d", amount.Dec(), shares.Dec(), dstChain))
	return nil
}

// ReceiveAck applies an inbound transfer. Secondary chains adopt the
// embedded index through the nonce-gated synchronizer before crediting; the
// main chain is the source of truth for the index and never accepts updates.
func (b *Bridge) ReceiveAck(srcChain uint64, payload []byte) error {
	tag, err := wire.PacketType(payload)
	if err != nil {
		return err
	}

	switch tag {
	case wire.PacketTypeTransfer:
		pkt, err := wire.DecodeTransferPacket(payload)
		if err != nil {
			return err
		}
		if !b.isMain && b.sync != nil {
			if err := b.sync.SyncIndex(pkt.RebaseIndex, pkt.SequenceNumber); err != nil {
				return err
			}
		}
		to := string(pkt.To)
		amount, err := b.Credit(to, pkt.Shares)
		if err != nil {
			return err
		}
		b.completeReceive(srcChain, to, amount)
		return nil

	case wire.PacketTypeBase:
		pkt, err := wire.DecodeBasePacket(payload)
		if err != nil {
			return err
		}
		to := string(pkt.To)
		from := ""
		if b.isMain {
			from = b.custody
		}
		if err := b.ledger.ApplyUpdate(from, to, pkt.Amount); err != nil {
			return err
		}
		b.completeReceive(srcChain, to, pkt.Amount)
		return nil

	default:
		return errors.NewError(errors.ErrCodeUnknownPacketType, errors.ErrMsgUnknownPacketType)
	}
}

// HandleMessage implements transport.MessageHandler
func (b *Bridge) HandleMessage(srcChain uint64, payload []byte) error {
	return b.ReceiveAck(srcChain, payload)
}

func (b *Bridge) completeReceive(srcChain uint64, to string, amount *uint256.Int) {
	if b.bus != nil {
		b.bus.Publish(events.NewReceiveCompleted(srcChain, to, amount))
	}
	if b.notifier != nil {
		// attempted once; the credit stands whatever happens here
		if err := b.notifier.NotifyCredit(to, amount); err != nil {
			logx.Warn("BRIDGE", fmt.Sprintf("Credit notification to %s failed: %v", to, err))
		}
	}
	logx.Info("BRIDGE", fmt.Sprintf("Credited %s tokens to %s from chain %d", amount.Dec(), to, srcChain))
}

func (b *Bridge) currentSequence() uint64 {
	if b.sync != nil {
		return b.sync.CurrentSequenceNumber()
	}
	return b.ledger.SequenceNumber()
}
