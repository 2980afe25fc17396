package rpc

import (
	"math/big"

	"github.com/ethereum/go-ethereum"
	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/thirdweb-dev/logpager/internal/common"
)

func GetLogsFilterQuery(address gethCommon.Address, blockRange common.BlockRange) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(blockRange.Start),
		ToBlock:   new(big.Int).SetUint64(blockRange.End),
		Addresses: []gethCommon.Address{address},
	}
}

