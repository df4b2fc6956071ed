package types

import "github.com/holiman/uint256"

// Account is the per-address share accounting record. Shares are the
// index-independent unit; OptedOut accounts hold no shares and are tracked
// as absolute balances in the base token book instead.
type Account struct {
	Address  string       `json:"address"`
	Shares   *uint256.Int `json:"shares"`
	OptedOut bool         `json:"opted_out"`
}

// NewAccount returns a fresh zero-share account for addr
func NewAccount(addr string) *Account {
	return &Account{
		Address: addr,
		Shares:  uint256.NewInt(0),
	}
}

// IsZero reports whether the record is equivalent to an absent account
func (a *Account) IsZero() bool {
	return a.Shares.IsZero() && !a.OptedOut
}
