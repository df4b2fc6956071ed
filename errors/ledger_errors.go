package errors

import (
	stderrors "errors"

	"github.com/TangibleTNFT/tangible-foundation-contracts/jsonx"
)

// LedgerErrorCode represents standardized error codes for ledger and bridge operations
type LedgerErrorCode string

const (
	// General errors
	ErrCodeInternal LedgerErrorCode = "internal_error"

	// Balance and supply errors
	ErrCodeInsufficientBalance   LedgerErrorCode = "insufficient_balance"
	ErrCodeInsufficientAllowance LedgerErrorCode = "insufficient_allowance"
	ErrCodeRebaseOverflow        LedgerErrorCode = "rebase_overflow"
	ErrCodeInvalidAmount         LedgerErrorCode = "invalid_amount"
	ErrCodeZeroRebaseIndex       LedgerErrorCode = "zero_rebase_index"

	// Rebase control errors
	ErrCodeInvalidRebaseIndexMutator LedgerErrorCode = "invalid_rebase_index_mutator"
	ErrCodeOptedOutBridgeRejection   LedgerErrorCode = "opted_out_bridge_rejection"

	// Transport errors
	ErrCodeUnauthorizedSource   LedgerErrorCode = "unauthorized_source"
	ErrCodePayloadTooLarge      LedgerErrorCode = "payload_too_large"
	ErrCodeInsufficientGasLimit LedgerErrorCode = "insufficient_gas_limit"
	ErrCodeUnknownPacketType    LedgerErrorCode = "unknown_packet_type"
	ErrCodeUntrustedDestination LedgerErrorCode = "untrusted_destination"

	// Retry errors
	ErrCodeNoStoredFailedMessage      LedgerErrorCode = "no_stored_failed_message"
	ErrCodePayloadFingerprintMismatch LedgerErrorCode = "payload_fingerprint_mismatch"
)

// LedgerError represents a standardized ledger error
type LedgerError struct {
	Code    LedgerErrorCode `json:"code"`
	Message string          `json:"message"`
}

// Error implements the error interface
func (e *LedgerError) Error() string {
	err, _ := jsonx.Marshal(LedgerError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgInsufficientBalance        = "Amount exceeds the account balance"
	ErrMsgInsufficientAllowance      = "Amount exceeds the spender allowance"
	ErrMsgRebaseOverflow             = "Operation would overflow the elastic supply"
	ErrMsgInvalidAmount              = "Amount is invalid or zero"
	ErrMsgZeroRebaseIndex            = "Rebase index must be non-zero"
	ErrMsgInvalidRebaseIndexMutator  = "Index is synchronized cross-chain and cannot be set directly"
	ErrMsgOptedOutBridgeRejection    = "Opted-out balances cannot be bridged"
	ErrMsgUnauthorizedSource         = "Inbound source path is not trusted"
	ErrMsgPayloadTooLarge            = "Payload exceeds the destination size limit"
	ErrMsgInsufficientGasLimit       = "Destination gas limit is below the configured floor"
	ErrMsgUnknownPacketType          = "Packet type tag is not recognized"
	ErrMsgUntrustedDestination       = "No trusted path configured for destination chain"
	ErrMsgNoStoredFailedMessage      = "No failed message stored for this delivery"
	ErrMsgPayloadFingerprintMismatch = "Payload does not match the stored failure fingerprint"
)

// NewError creates a new LedgerError and returns it as error interface
func NewError(code LedgerErrorCode, message string) error {
	return &LedgerError{
		Code:    code,
		Message: message,
	}
}

// CodeOf extracts the LedgerErrorCode from err, or ErrCodeInternal for foreign errors
func CodeOf(err error) LedgerErrorCode {
	var le *LedgerError
	if stderrors.As(err, &le) {
		return le.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code
func IsCode(err error, code LedgerErrorCode) bool {
	var le *LedgerError
	return stderrors.As(err, &le) && le.Code == code
}
