// internal/chains/ethereum/erc20.go
package ethereum

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

// Function selectors of the ERC-20 calls the service makes.
//
//	balanceOf(address)        → 0x70a08231
//	transfer(address,uint256) → 0xa9059cbb
//	approve(address,uint256)  → 0x095ea7b3
var (
	SelectorBalanceOf = [4]byte{0x70, 0xa0, 0x82, 0x31}
	SelectorTransfer  = [4]byte{0xa9, 0x05, 0x9c, 0xbb}
	SelectorApprove   = [4]byte{0x09, 0x5e, 0xa7, 0xb3}
)

const wordSize = 32

// EncodeBalanceOf builds balanceOf(owner) call data.
func EncodeBalanceOf(owner common.Address) []byte {
	data := make([]byte, 0, 4+wordSize)
	data = append(data, SelectorBalanceOf[:]...)
	return append(data, encodeAddress(owner)...)
}

// EncodeTransfer builds transfer(to, amount) call data.
func EncodeTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return encodeAddressAmount(SelectorTransfer, to, amount)
}

// EncodeApprove builds approve(spender, amount) call data.
func EncodeApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return encodeAddressAmount(SelectorApprove, spender, amount)
}

// DecodeUint256 reads a single uint256 return value. An empty result is an
// account that never touched the token and decodes to zero.
func DecodeUint256(result []byte) (*big.Int, error) {
	if len(result) == 0 {
		return new(big.Int), nil
	}
	if len(result) < wordSize {
		return nil, fmt.Errorf("short uint256 result: %d bytes", len(result))
	}
	return new(big.Int).SetBytes(result[:wordSize]), nil
}

// DecodeUint256Hex is DecodeUint256 for an eth_call hex result.
func DecodeUint256Hex(result string) (*big.Int, error) {
	if result == "" || result == "0x" {
		return new(big.Int), nil
	}
	raw, err := hexutil.Decode(result)
	if err != nil {
		return nil, fmt.Errorf("invalid call result: %w", err)
	}
	return DecodeUint256(raw)
}

func encodeAddressAmount(selector [4]byte, addr common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must be a non-negative integer")
	}
	if amount.BitLen() > 256 {
		return nil, fmt.Errorf("amount overflows uint256")
	}

	data := make([]byte, 0, 4+2*wordSize)
	data = append(data, selector[:]...)
	data = append(data, encodeAddress(addr)...)
	return append(data, math.U256Bytes(new(big.Int).Set(amount))...), nil
}

func encodeAddress(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), wordSize)
}
