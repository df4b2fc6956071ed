package store

// Key prefixes namespace the shared key-value space so each store owns a
// disjoint slice of it.
const (
	PrefixAccount   = "acct:"
	PrefixBase      = "base:"
	PrefixAllowance = "allow:"
	PrefixFailure   = "fail:"

	KeyLedgerState = "state:ledger"
	KeyBaseSupply  = "state:base_supply"
)
