// internal/chains/ethereum/probe.go
package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// ProbeResult is the outcome of a direct eth_blockNumber call against an RPC endpoint.
type ProbeResult struct {
	OK          bool
	BlockNumber uint64
	Reason      string
}

// ProbeRPC asks the endpoint for its block number, bypassing the wallet provider.
// It never returns an error; failures are described in Reason.
func ProbeRPC(ctx context.Context, rawURL string) ProbeResult {
	if rawURL == "" {
		return ProbeResult{Reason: "no RPC configured"}
	}

	client, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return ProbeResult{Reason: probeReason(err)}
	}
	defer client.Close()

	var head hexutil.Uint64
	if err := client.CallContext(ctx, &head, "eth_blockNumber"); err != nil {
		return ProbeResult{Reason: probeReason(err)}
	}

	return ProbeResult{OK: true, BlockNumber: uint64(head)}
}

func probeReason(err error) string {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf("HTTP %d", httpErr.StatusCode)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "Invalid JSON response"
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if rpcErr.Error() == "" {
			return "RPC error"
		}
		return rpcErr.Error()
	}

	if err.Error() == "" {
		return "Fetch failed"
	}
	return err.Error()
}
