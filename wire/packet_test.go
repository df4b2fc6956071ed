package wire

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/TangibleTNFT/tangible-foundation-contracts/errors"
)

func TestTransferPacketRoundTrip(t *testing.T) {
	in := &TransferPacket{
		To:             []byte{0xbe, 0xef, 0x01},
		Shares:         uint256.NewInt(250),
		RebaseIndex:    new(uint256.Int).Mul(uint256.NewInt(2), uint256.NewInt(1e18)),
		SequenceNumber: 5,
	}
	payload, err := EncodeTransferPacket(in)
	require.NoError(t, err)

	tag, err := PacketType(payload)
	require.NoError(t, err)
	require.Equal(t, PacketTypeTransfer, tag)

	out, err := DecodeTransferPacket(payload)
	require.NoError(t, err)
	require.Equal(t, in.To, out.To)
	require.Equal(t, in.Shares, out.Shares)
	require.Equal(t, in.RebaseIndex, out.RebaseIndex)
	require.Equal(t, in.SequenceNumber, out.SequenceNumber)
}

func TestBasePacketRoundTrip(t *testing.T) {
	in := &BasePacket{
		To:     []byte{0x01, 0x02},
		Amount: uint256.NewInt(777),
	}
	payload, err := EncodeBasePacket(in)
	require.NoError(t, err)

	out, err := DecodeBasePacket(payload)
	require.NoError(t, err)
	require.Equal(t, in.To, out.To)
	require.Equal(t, in.Amount, out.Amount)
}

func TestDecodeRejectsWrongTag(t *testing.T) {
	payload, err := EncodeBasePacket(&BasePacket{To: []byte{0x01}, Amount: uint256.NewInt(1)})
	require.NoError(t, err)

	_, err = DecodeTransferPacket(payload)
	require.Error(t, err)
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	_, err := DecodeTransferPacket([]byte{0x7f, 0x00, 0x01, 0xaa})
	require.True(t, errors.IsCode(err, errors.ErrCodeUnknownPacketType))

	_, err = PacketType(nil)
	require.True(t, errors.IsCode(err, errors.ErrCodeUnknownPacketType))
}

func TestDecodeRejectsTruncation(t *testing.T) {
	payload, err := EncodeTransferPacket(&TransferPacket{
		To:             []byte{0xaa},
		Shares:         uint256.NewInt(1),
		RebaseIndex:    uint256.NewInt(1),
		SequenceNumber: 1,
	})
	require.NoError(t, err)

	for _, n := range []int{1, 2, 3, len(payload) - 1} {
		_, err := DecodeTransferPacket(payload[:n])
		require.Error(t, err, "truncated at %d bytes", n)
	}
}

func TestEncodeRejectsEmptyAddress(t *testing.T) {
	_, err := EncodeTransferPacket(&TransferPacket{
		To:          nil,
		Shares:      uint256.NewInt(1),
		RebaseIndex: uint256.NewInt(1),
	})
	require.Error(t, err)
}

func TestPathConcatenation(t *testing.T) {
	remote := []byte{0x01, 0x02}
	local := []byte{0x03}

	p := Path(remote, local)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, p)
	require.True(t, PathEqual(p, Path(remote, local)))
	require.False(t, PathEqual(p, Path(local, remote)))
}
