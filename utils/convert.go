package utils

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Uint256ToString renders a uint256 as a decimal string for storage and RPC
func Uint256ToString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// Uint256FromString parses a decimal string into a uint256, nil-safe inverse
// of Uint256ToString. Invalid input yields zero.
func Uint256FromString(s string) *uint256.Int {
	if s == "" {
		return uint256.NewInt(0)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return uint256.NewInt(0)
	}
	return v
}

// ParseUint256 parses a decimal string, reporting invalid input
func ParseUint256(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}
