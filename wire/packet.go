package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
)

// Packet type tags on the wire
const (
	PacketTypeBase     byte = 0 // plain amount transfer, no rebase fields
	PacketTypeTransfer byte = 1 // rebase-aware transfer carrying shares + index + sequence
)

const (
	wordSize    = 32 // uint256 big-endian width
	seqSize     = 8
	addrLenSize = 2
)

// TransferPacket is the rebase-aware cross-chain transfer message:
// shares are index-independent, the embedded index and sequence number let
// the receiving chain synchronize before crediting.
type TransferPacket struct {
	To             []byte
	Shares         *uint256.Int
	RebaseIndex    *uint256.Int
	SequenceNumber uint64
}

// BasePacket is the non-rebasing transfer variant
type BasePacket struct {
	To     []byte
	Amount *uint256.Int
}

// EncodeTransferPacket renders a transfer packet as
// (tag, addrLen, addr, shares, index, seq) with big-endian fixed-width fields
func EncodeTransferPacket(p *TransferPacket) ([]byte, error) {
	if len(p.To) == 0 || len(p.To) > 0xffff {
		return nil, fmt.Errorf("invalid destination address length %d", len(p.To))
	}
	out := make([]byte, 0, 1+addrLenSize+len(p.To)+2*wordSize+seqSize)
	out = append(out, PacketTypeTransfer)
	out = binary.BigEndian.AppendUint16(out, uint16(len(p.To)))
	out = append(out, p.To...)
	shares := p.Shares.Bytes32()
	out = append(out, shares[:]...)
	index := p.RebaseIndex.Bytes32()
	out = append(out, index[:]...)
	out = binary.BigEndian.AppendUint64(out, p.SequenceNumber)
	return out, nil
}

// DecodeTransferPacket parses a payload that must carry the transfer tag
func DecodeTransferPacket(payload []byte) (*TransferPacket, error) {
	body, err := checkTag(payload, PacketTypeTransfer)
	if err != nil {
		return nil, err
	}
	to, rest, err := readAddress(body)
	if err != nil {
		return nil, err
	}
	if len(rest) != 2*wordSize+seqSize {
		return nil, fmt.Errorf("transfer packet has %d trailing bytes, want %d", len(rest), 2*wordSize+seqSize)
	}
	return &TransferPacket{
		To:             to,
		Shares:         new(uint256.Int).SetBytes(rest[:wordSize]),
		RebaseIndex:    new(uint256.Int).SetBytes(rest[wordSize : 2*wordSize]),
		SequenceNumber: binary.BigEndian.Uint64(rest[2*wordSize:]),
	}, nil
}

// EncodeBasePacket renders a base packet as (tag, addrLen, addr, amount)
func EncodeBasePacket(p *BasePacket) ([]byte, error) {
	if len(p.To) == 0 || len(p.To) > 0xffff {
		return nil, fmt.Errorf("invalid destination address length %d", len(p.To))
	}
	out := make([]byte, 0, 1+addrLenSize+len(p.To)+wordSize)
	out = append(out, PacketTypeBase)
	out = binary.BigEndian.AppendUint16(out, uint16(len(p.To)))
	out = append(out, p.To...)
	amount := p.Amount.Bytes32()
	out = append(out, amount[:]...)
	return out, nil
}

// DecodeBasePacket parses a payload that must carry the base tag
func DecodeBasePacket(payload []byte) (*BasePacket, error) {
	body, err := checkTag(payload, PacketTypeBase)
	if err != nil {
		return nil, err
	}
	to, rest, err := readAddress(body)
	if err != nil {
		return nil, err
	}
	if len(rest) != wordSize {
		return nil, fmt.Errorf("base packet has %d trailing bytes, want %d", len(rest), wordSize)
	}
	return &BasePacket{
		To:     to,
		Amount: new(uint256.Int).SetBytes(rest),
	}, nil
}

// PacketType returns the tag of a payload without decoding it
func PacketType(payload []byte) (byte, error) {
	if len(payload) == 0 {
		return 0, errors.NewError(errors.ErrCodeUnknownPacketType, errors.ErrMsgUnknownPacketType)
	}
	return payload[0], nil
}

func checkTag(payload []byte, want byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, errors.NewError(errors.ErrCodeUnknownPacketType, errors.ErrMsgUnknownPacketType)
	}
	if payload[0] != want {
		if payload[0] != PacketTypeBase && payload[0] != PacketTypeTransfer {
			return nil, errors.NewError(errors.ErrCodeUnknownPacketType, errors.ErrMsgUnknownPacketType)
		}
		return nil, fmt.Errorf("unexpected packet type %d, want %d", payload[0], want)
	}
	return payload[1:], nil
}

func readAddress(body []byte) (addr, rest []byte, err error) {
	if len(body) < addrLenSize {
		return nil, nil, fmt.Errorf("packet truncated before address length")
	}
	n := int(binary.BigEndian.Uint16(body))
	body = body[addrLenSize:]
	if n == 0 || len(body) < n {
		return nil, nil, fmt.Errorf("packet truncated inside address (%d of %d bytes)", len(body), n)
	}
	return append([]byte(nil), body[:n]...), body[n:], nil
}
