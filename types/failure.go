package types

import (
	"encoding/hex"
	"fmt"
)

// FailureKey identifies one failed inbound delivery: the channel it arrived
// on plus the transport-assigned delivery sequence.
type FailureKey struct {
	SrcChain         uint64 `json:"src_chain"`
	SrcPath          string `json:"src_path"` // hex-encoded source path
	DeliverySequence uint64 `json:"delivery_sequence"`
}

// NewFailureKey builds a FailureKey from the raw source path bytes
func NewFailureKey(srcChain uint64, srcPath []byte, deliverySeq uint64) FailureKey {
	return FailureKey{
		SrcChain:         srcChain,
		SrcPath:          hex.EncodeToString(srcPath),
		DeliverySequence: deliverySeq,
	}
}

// String renders the key in a stable form usable as a db key suffix
func (k FailureKey) String() string {
	return fmt.Sprintf("%d:%s:%d", k.SrcChain, k.SrcPath, k.DeliverySequence)
}

// PendingFailure is the stored record of a failed inbound application.
// Fingerprint is the sha3-256 digest of the payload that failed.
type PendingFailure struct {
	Key         FailureKey `json:"key"`
	Fingerprint string     `json:"fingerprint"` // hex-encoded sha3-256 digest
}
