package jsonrpc

// JSON-RPC Method name constants
const (
	// Account methods
	MethodAccountGetAccount = "account.getaccount"

	// Token methods
	MethodTokenGetTotalSupply = "token.gettotalsupply"
	MethodTokenTransfer       = "token.transfer"
	MethodTokenApprove        = "token.approve"
	MethodTokenGetAllowance   = "token.getallowance"
	MethodTokenMint           = "token.mint"
	MethodTokenBurn           = "token.burn"

	// Rebase methods
	MethodRebaseSetOptOut = "rebase.setoptout"
	MethodRebaseSetIndex  = "rebase.setindex"
	MethodRebaseSyncIndex = "rebase.syncindex"

	// Bridge methods
	MethodBridgeSend     = "bridge.send"
	MethodTransportRetry = "transport.retry"

	// Health methods
	MethodHealthCheck = "health.check"
)
