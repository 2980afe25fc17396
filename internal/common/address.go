package common

import (
	"fmt"
	"strings"

	gethCommon "github.com/ethereum/go-ethereum/common"
)

// ParseAddress validates a hex contract address, with or without 0x prefix.
func ParseAddress(address string) (gethCommon.Address, error) {
	address = strings.TrimSpace(address)
	if !gethCommon.IsHexAddress(address) {
		return gethCommon.Address{}, fmt.Errorf("invalid contract address %q", address)
	}
	return gethCommon.HexToAddress(address), nil
}
