package ethereum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type codedError struct {
	code int
	msg  string
	data interface{}
}

func (e codedError) Error() string          { return e.msg }
func (e codedError) ErrorCode() int         { return e.code }
func (e codedError) ErrorData() interface{} { return e.data }

func TestNewRPCProviderMissingURL(t *testing.T) {
	_, err := NewRPCProvider(context.Background(), "  ", zap.NewNop())
	assert.ErrorIs(t, err, ErrProviderMissing)
}

func TestToProviderError(t *testing.T) {
	assert.NoError(t, toProviderError(nil))

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, toProviderError(plain))

	err := toProviderError(fmt.Errorf("call: %w", codedError{code: CodeExecutionReverted, msg: "execution reverted", data: "0x08c379a0"}))
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, CodeExecutionReverted, pe.Code)
	assert.Equal(t, "execution reverted", pe.Message)
	assert.Equal(t, "0x08c379a0", pe.Data)

	code, ok := ProviderCode(err)
	assert.True(t, ok)
	assert.Equal(t, CodeExecutionReverted, code)

	_, ok = ProviderCode(plain)
	assert.False(t, ok)
}

func TestIsTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "http status", err: rpc.HTTPError{StatusCode: 502, Status: "502 Bad Gateway"}, want: true},
		{name: "url error", err: &url.Error{Op: "Post", URL: "http://127.0.0.1:1248", Err: errors.New("connection refused")}, want: true},
		{name: "eof", err: fmt.Errorf("read: %w", io.EOF), want: true},
		{name: "client closed", err: rpc.ErrClientQuit, want: true},
		{name: "cancelled", err: context.Canceled, want: false},
		{name: "fetch failure", err: &ProviderError{Code: CodeInternal, Message: "Failed to fetch"}, want: true},
		{name: "network error", err: &ProviderError{Code: CodeInternal, Message: "NetworkError when attempting to fetch resource."}, want: true},
		{name: "internal other", err: &ProviderError{Code: CodeInternal, Message: "nonce too low"}, want: false},
		{name: "rejected", err: &ProviderError{Code: CodeUserRejected, Message: "User rejected the request."}, want: false},
		{name: "opaque", err: errors.New("boom"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransportError(tc.err))
		})
	}
}
