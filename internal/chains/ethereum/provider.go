// internal/chains/ethereum/provider.go
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Wallet provider error codes (EIP-1193 / EIP-3326 / JSON-RPC).
const (
	CodeExecutionReverted = 3
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
	CodeUnrecognizedChain = 4902
	CodeInvalidInput      = -32000
	CodeMethodNotFound    = -32601
	CodeInternal          = -32603
)

var ErrProviderMissing = errors.New("wallet provider not configured")

// Provider is the account-and-signing JSON-RPC surface of a wallet.
type Provider interface {
	Request(ctx context.Context, result interface{}, method string, params ...interface{}) error
}

// ProviderError is a structured error returned by the wallet provider.
type ProviderError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ErrorCode implements rpc.Error.
func (e *ProviderError) ErrorCode() int { return e.Code }

// ErrorData implements rpc.DataError.
func (e *ProviderError) ErrorData() interface{} { return e.Data }

var (
	_ rpc.Error     = (*ProviderError)(nil)
	_ rpc.DataError = (*ProviderError)(nil)
)

// RPCProvider reaches the wallet over JSON-RPC (HTTP or WebSocket).
type RPCProvider struct {
	client *rpc.Client
	url    string
	logger *zap.Logger
}

// NewRPCProvider dials the wallet provider. An empty URL means no wallet is available.
func NewRPCProvider(ctx context.Context, rawURL string, logger *zap.Logger) (*RPCProvider, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrProviderMissing
	}

	client, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet provider: %w", err)
	}

	logger.Info("Wallet provider connected", zap.String("url", rawURL))

	return &RPCProvider{
		client: client,
		url:    rawURL,
		logger: logger,
	}, nil
}

// Request performs a single JSON-RPC call. Structured RPC errors are converted to *ProviderError;
// transport errors are returned unchanged.
func (p *RPCProvider) Request(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	start := time.Now()
	err := p.client.CallContext(ctx, result, method, params...)

	p.logger.Debug("provider request",
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))

	return toProviderError(err)
}

// Close releases the underlying connection.
func (p *RPCProvider) Close() {
	p.client.Close()
}

func toProviderError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		pe := &ProviderError{Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
		var dataErr rpc.DataError
		if errors.As(err, &dataErr) {
			pe.Data = dataErr.ErrorData()
		}
		return pe
	}
	return err
}

// ProviderCode extracts the structured provider code, if any.
func ProviderCode(err error) (int, bool) {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode(), true
	}
	return 0, false
}

// IsTransportError reports whether err means the RPC endpoint could not be reached,
// as opposed to the endpoint answering with an error.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return true
	}

	var urlErr *url.Error
	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.As(err, &urlErr), errors.As(err, &opErr), errors.As(err, &netErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, rpc.ErrClientQuit):
		return true
	}

	// Browser-style wallets surface an unreachable upstream RPC as an internal
	// error carrying the fetch failure text.
	if code, ok := ProviderCode(err); ok && code == CodeInternal {
		msg := strings.ToLower(err.Error())
		return strings.Contains(msg, "failed to fetch") || strings.Contains(msg, "networkerror")
	}
	return false
}
