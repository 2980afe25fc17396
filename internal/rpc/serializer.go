package rpc

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/thirdweb-dev/logpager/internal/common"
)

func SerializeLogs(chainId *big.Int, rawLogs []types.Log) []common.Log {
	serializedLogs := make([]common.Log, 0, len(rawLogs))
	for _, rawLog := range rawLogs {
		serializedLogs = append(serializedLogs, serializeLog(chainId, rawLog))
	}
	return serializedLogs
}

func serializeLog(chainId *big.Int, rawLog types.Log) common.Log {
	topics := make([]string, len(rawLog.Topics))
	for i, topic := range rawLog.Topics {
		topics[i] = topic.Hex()
	}
	return common.Log{
		ChainId:          chainId,
		BlockNumber:      rawLog.BlockNumber,
		BlockHash:        rawLog.BlockHash.Hex(),
		TransactionHash:  rawLog.TxHash.Hex(),
		TransactionIndex: uint64(rawLog.TxIndex),
		LogIndex:         uint64(rawLog.Index),
		Address:          rawLog.Address.Hex(),
		Data:             hexutil.Encode(rawLog.Data),
		Topics:           topics,
		Removed:          rawLog.Removed,
	}
}
