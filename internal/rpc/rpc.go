package rpc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethRpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/logpager/configs"
	"github.com/thirdweb-dev/logpager/internal/common"
)

// IRPCClient is the log source the fetch pipeline runs against.
type IRPCClient interface {
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
	GetLogs(ctx context.Context, address gethCommon.Address, blockRange common.BlockRange) ([]common.Log, error)
	GetChainID() *big.Int
	GetURL() string
	Close()
}

type Client struct {
	RPCClient *gethRpc.Client
	EthClient *ethclient.Client
	url       string
	chainID   *big.Int
	timeout   time.Duration
}

func Initialize(ctx context.Context) (IRPCClient, error) {
	rpcUrl := config.Cfg.RPC.URL
	if rpcUrl == "" {
		return nil, fmt.Errorf("RPC URL is not set, pass --rpc-url/-u or set the RPC_URL environment variable")
	}
	timeout := time.Duration(config.Cfg.RPC.Timeout) * time.Millisecond
	return InitializeWithUrl(ctx, rpcUrl, timeout)
}

func InitializeWithUrl(ctx context.Context, url string, timeout time.Duration) (*Client, error) {
	log.Debug().Str("url", url).Msg("Initializing RPC")
	rpcClient, dialErr := gethRpc.DialContext(ctx, url)
	if dialErr != nil {
		return nil, &SourceError{Kind: KindConnection, Op: "dial", Err: dialErr}
	}

	rpc := NewClient(rpcClient, url, timeout)
	if err := rpc.setChainID(ctx); err != nil {
		rpc.Close()
		return nil, err
	}
	return rpc, nil
}

// NewClient wraps an already dialed connection without probing the node.
func NewClient(rpcClient *gethRpc.Client, url string, timeout time.Duration) *Client {
	return &Client{
		RPCClient: rpcClient,
		EthClient: ethclient.NewClient(rpcClient),
		url:       url,
		timeout:   timeout,
	}
}

func (rpc *Client) GetChainID() *big.Int {
	return rpc.chainID
}

func (rpc *Client) GetURL() string {
	return rpc.url
}

func (rpc *Client) Close() {
	rpc.EthClient.Close()
}

func (rpc *Client) setChainID(ctx context.Context) error {
	ctx, cancel := rpc.withTimeout(ctx)
	defer cancel()
	chainID, err := rpc.EthClient.ChainID(ctx)
	if err != nil {
		return &SourceError{Kind: KindConnection, Op: "eth_chainId", Err: err}
	}
	rpc.chainID = chainID
	log.Debug().Str("chain_id", chainID.String()).Msg("Connected to RPC")
	return nil
}

func (rpc *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := rpc.withTimeout(ctx)
	defer cancel()
	blockNumber, err := rpc.EthClient.BlockNumber(ctx)
	if err != nil {
		return 0, &SourceError{Kind: KindConnection, Op: "eth_blockNumber", Err: err}
	}
	return blockNumber, nil
}

// GetLogs issues exactly one eth_getLogs request for the range. Errors are
// returned as *SourceError with a classified kind.
func (rpc *Client) GetLogs(ctx context.Context, address gethCommon.Address, blockRange common.BlockRange) ([]common.Log, error) {
	ctx, cancel := rpc.withTimeout(ctx)
	defer cancel()
	logs, err := rpc.EthClient.FilterLogs(ctx, GetLogsFilterQuery(address, blockRange))
	if err != nil {
		return nil, wrapError("eth_getLogs", err)
	}
	return SerializeLogs(rpc.chainID, logs), nil
}

func (rpc *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if rpc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, rpc.timeout)
}
