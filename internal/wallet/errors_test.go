package wallet

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"solarcredits-service/internal/chains/ethereum"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		msg  string
	}{
		{
			name: "user rejected",
			err:  &ethereum.ProviderError{Code: 4001, Message: "User denied transaction signature."},
			kind: KindUserRejected,
			msg:  "Transaction rejected by user",
		},
		{
			name: "revert code",
			err:  &ethereum.ProviderError{Code: 3, Message: "execution reverted", Data: "0x08c379a0"},
			kind: KindReverted,
		},
		{
			name: "insufficient funds",
			err:  &ethereum.ProviderError{Code: -32000, Message: "insufficient funds for gas * price + value: address 0x70997970 have 0 want 1"},
			kind: KindInsufficientFunds,
			msg:  "Insufficient funds for transaction + gas",
		},
		{
			name: "intrinsic gas",
			err:  &ethereum.ProviderError{Code: -32000, Message: "intrinsic gas too low: gas 100, minimum needed 21000"},
			kind: KindGasTooLow,
			msg:  "Gas limit too low",
		},
		{
			name: "nested wallet message",
			err: &ethereum.ProviderError{
				Code:    -32603,
				Message: "Internal JSON-RPC error.",
				Data:    map[string]interface{}{"code": -32000, "message": "execution reverted: not owner"},
			},
			kind: KindReverted,
		},
		{
			name: "transport",
			err:  &url.Error{Op: "Post", URL: "http://127.0.0.1:1248", Err: errors.New("connection refused")},
			kind: KindRPCUnreachable,
		},
		{
			name: "provider missing",
			err:  fmt.Errorf("dial: %w", ethereum.ErrProviderMissing),
			kind: KindProviderMissing,
		},
		{
			name: "unknown keeps provider text",
			err:  &ethereum.ProviderError{Code: -32000, Message: "nonce too low"},
			kind: KindUnknown,
			msg:  "nonce too low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			assert.Equal(t, tc.kind, got.Kind)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, got.Message)
			}
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

func TestClassifyPassesThroughWalletErrors(t *testing.T) {
	assert.Nil(t, Classify(nil))

	we := newError(KindWrongNetwork, nil)
	assert.Same(t, we, Classify(fmt.Errorf("buy: %w", we)))
	assert.Equal(t, KindWrongNetwork, KindOf(fmt.Errorf("buy: %w", we)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("other")))
}

func TestKindText(t *testing.T) {
	assert.Equal(t, "insufficient_funds", KindInsufficientFunds.String())
	assert.Equal(t, "Please switch to Arbitrum Sepolia network", KindWrongNetwork.Message())
	assert.Equal(t, "unknown", Kind(99).String())
	assert.Equal(t, "Transaction failed", Kind(99).Message())
}
