// internal/wallet/errors.go
package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/vm"

	"solarcredits-service/internal/chains/ethereum"
)

// Kind is the closed set of wallet failure categories.
type Kind int

const (
	KindUnknown Kind = iota
	KindProviderMissing
	KindNotConnected
	KindWrongNetwork
	KindInvalidAddress
	KindInvalidValue
	KindContractNotReady
	KindInsufficientTokenBalance
	KindUserRejected
	KindInsufficientFunds
	KindGasTooLow
	KindReverted
	KindRPCUnreachable
)

var kindNames = map[Kind]string{
	KindUnknown:                  "unknown",
	KindProviderMissing:          "provider_missing",
	KindNotConnected:             "not_connected",
	KindWrongNetwork:             "wrong_network",
	KindInvalidAddress:           "invalid_address",
	KindInvalidValue:             "invalid_value",
	KindContractNotReady:         "contract_not_ready",
	KindInsufficientTokenBalance: "insufficient_token_balance",
	KindUserRejected:             "user_rejected",
	KindInsufficientFunds:        "insufficient_funds",
	KindGasTooLow:                "gas_too_low",
	KindReverted:                 "reverted",
	KindRPCUnreachable:           "rpc_unreachable",
}

var kindMessages = map[Kind]string{
	KindUnknown:                  "Transaction failed",
	KindProviderMissing:          "No Web3 wallet provider available. Configure a wallet provider to connect.",
	KindNotConnected:             "Wallet not connected",
	KindWrongNetwork:             "Please switch to Arbitrum Sepolia network",
	KindInvalidAddress:           "Invalid recipient address",
	KindInvalidValue:             "Invalid transaction value",
	KindContractNotReady:         "SRC contract not deployed. Please deploy the contract first.",
	KindInsufficientTokenBalance: "Insufficient SRC balance",
	KindUserRejected:             "Transaction rejected by user",
	KindInsufficientFunds:        "Insufficient funds for transaction + gas",
	KindGasTooLow:                "Gas limit too low",
	KindReverted:                 "Transaction reverted by network",
	KindRPCUnreachable:           "RPC connection failed. Switch networks (or update the Arbitrum Sepolia RPC URL) and try again.",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// Message is the default user-facing text for the kind.
func (k Kind) Message() string {
	if s, ok := kindMessages[k]; ok {
		return s
	}
	return kindMessages[KindUnknown]
}

// Error is returned by every session operation that fails.
type Error struct {
	Kind    Kind
	Message string
	TxHash  string // set when a submitted transaction reverted
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Message: kind.Message(), Cause: cause}
}

func newErrorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a wallet error, KindUnknown for anything else.
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return KindUnknown
}

// Classify maps a provider or transport error onto a wallet Error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var we *Error
	if errors.As(err, &we) {
		return we
	}
	if errors.Is(err, ethereum.ErrProviderMissing) {
		return newError(KindProviderMissing, err)
	}

	if code, ok := ethereum.ProviderCode(err); ok {
		switch code {
		case ethereum.CodeUserRejected:
			return newError(KindUserRejected, err)
		case ethereum.CodeExecutionReverted:
			return newError(KindReverted, err)
		}

		// Node rejections surface as a plain code with the go-ethereum core error text.
		msg := strings.ToLower(rawMessage(err))
		switch {
		case strings.Contains(msg, core.ErrInsufficientFunds.Error()),
			strings.Contains(msg, "insufficient funds"):
			return newError(KindInsufficientFunds, err)
		case strings.Contains(msg, core.ErrIntrinsicGas.Error()):
			return newError(KindGasTooLow, err)
		case strings.Contains(msg, vm.ErrExecutionReverted.Error()):
			return newError(KindReverted, err)
		}
	}

	if ethereum.IsTransportError(err) {
		return newError(KindRPCUnreachable, err)
	}

	msg := rawMessage(err)
	if msg == "" {
		msg = KindUnknown.Message()
	}
	return &Error{Kind: KindUnknown, Message: msg, Cause: err}
}

// rawMessage prefers the nested message wallets put in the error data.
func rawMessage(err error) string {
	var pe *ethereum.ProviderError
	if errors.As(err, &pe) {
		if data, ok := pe.Data.(map[string]interface{}); ok {
			if nested, ok := data["message"].(string); ok && nested != "" {
				return nested
			}
		}
		return pe.Message
	}
	return err.Error()
}
