package cmd

import (
	"bytes"
	"context"
	"math/big"
	"net/http/httptest"
	"strings"
	"testing"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	gethRpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

type rangeLimitError struct{}

func (rangeLimitError) Error() string  { return "exceed maximum block range: 100" }
func (rangeLimitError) ErrorCode() int { return -32005 }

// nodeStub returns one log per page and rejects the page starting at
// rejectFrom.
type nodeStub struct {
	head       uint64
	rejectFrom uint64
}

func (n *nodeStub) ChainId() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(1))
}

func (n *nodeStub) BlockNumber() hexutil.Uint64 {
	return hexutil.Uint64(n.head)
}

func (n *nodeStub) GetLogs(crit map[string]interface{}) ([]*types.Log, error) {
	from, err := hexutil.DecodeUint64(crit["fromBlock"].(string))
	if err != nil {
		return nil, err
	}
	if n.rejectFrom > 0 && from == n.rejectFrom {
		return nil, rangeLimitError{}
	}
	return []*types.Log{{
		Address:     gethCommon.HexToAddress(testAddress),
		Topics:      []gethCommon.Hash{},
		BlockNumber: from,
	}}, nil
}

func startNode(t *testing.T, stub *nodeStub) string {
	t.Helper()
	server := gethRpc.NewServer()
	require.NoError(t, server.RegisterName("eth", stub))
	httpServer := httptest.NewServer(server)
	t.Cleanup(func() {
		httpServer.Close()
		server.Stop()
	})
	return httpServer.URL
}

// execute runs the root command with flags back at their defaults, so
// values set by an earlier run do not carry over.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	})
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestFetchCommand_ReportsEveryPage(t *testing.T) {
	url := startNode(t, &nodeStub{head: 349, rejectFrom: 100})

	out, errOut, err := execute(t, "--address", testAddress, "--rpc-url", url, "--parallelism", "2", "--page-width", "100")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "last_block: 349", lines[0])
	for _, line := range lines[1:] {
		assert.Contains(t, line, `"parallelism":2`)
		assert.Contains(t, line, `"page_size":100`)
	}
	assert.Contains(t, errOut, "[100, 199]")
	assert.Contains(t, errOut, "range too large")
}

func TestFetchCommand_FlagsDoNotLeakBetweenRuns(t *testing.T) {
	url := startNode(t, &nodeStub{head: 349})

	_, _, err := execute(t, "--address", testAddress, "--rpc-url", url, "--parallelism", "2", "--page-width", "100")
	require.NoError(t, err)

	out, _, err := execute(t, "--address", testAddress, "--rpc-url", url)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "last_block: 349", lines[0])
	assert.Contains(t, lines[1], `"parallelism":10`)
	assert.Contains(t, lines[1], `"page_size":10000`)
}

func TestFetchCommand_InvalidAddressIsFatal(t *testing.T) {
	url := startNode(t, &nodeStub{head: 10})

	_, _, err := execute(t, "--address", "0xnotanaddress", "--rpc-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid contract address")
}

func TestFetchCommand_UnreachableNodeIsFatal(t *testing.T) {
	closed := httptest.NewServer(nil)
	url := closed.URL
	closed.Close()

	out, _, err := execute(t, "--address", testAddress, "--rpc-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize RPC")
	assert.Empty(t, out)
}
