// internal/chains/ethereum/network.go
package ethereum

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// NativeCurrency mirrors the nativeCurrency object of wallet_addEthereumChain.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Network is the single chain the service allows wallets to be on.
type Network struct {
	ChainID        *big.Int
	Name           string
	NativeCurrency NativeCurrency
	RPCURLs        []string
	ExplorerURL    string
	TokenAddress   common.Address
}

// AddChainParams is the wallet_addEthereumChain payload.
type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

// SwitchChainParams is the wallet_switchEthereumChain payload.
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

const (
	ArbitrumSepoliaChainID = 421614
	// SRC token deployed on Arbitrum Sepolia
	DefaultTokenAddress = "0x00DEfe6c8fE01610406Aa58538952D5b7d92c56e"
)

// ArbitrumSepolia returns the default target network.
func ArbitrumSepolia() Network {
	return Network{
		ChainID: big.NewInt(ArbitrumSepoliaChainID),
		Name:    "Arbitrum Sepolia",
		NativeCurrency: NativeCurrency{
			Name:     "Ethereum",
			Symbol:   "ETH",
			Decimals: 18,
		},
		RPCURLs:      []string{"https://arbitrum-sepolia.drpc.org"},
		ExplorerURL:  "https://sepolia.arbiscan.io/",
		TokenAddress: common.HexToAddress(DefaultTokenAddress),
	}
}

// ChainIDHex returns the chain id as a 0x-prefixed quantity ("0x66eee").
func (n Network) ChainIDHex() string {
	return hexutil.EncodeBig(n.ChainID)
}

// IsChain reports whether a provider-reported chain id is this network.
func (n Network) IsChain(chainIDHex string) bool {
	id, err := hexutil.DecodeBig(chainIDHex)
	if err != nil {
		return false
	}
	return id.Cmp(n.ChainID) == 0
}

// AddChainParams builds the payload used to register the network with a wallet.
func (n Network) AddChainParams() AddChainParams {
	return AddChainParams{
		ChainID:           n.ChainIDHex(),
		ChainName:         n.Name,
		NativeCurrency:    n.NativeCurrency,
		RPCURLs:           n.RPCURLs,
		BlockExplorerURLs: []string{n.ExplorerURL},
	}
}

// SwitchChainParams builds the payload used to select the network in a wallet.
func (n Network) SwitchChainParams() SwitchChainParams {
	return SwitchChainParams{ChainID: n.ChainIDHex()}
}

// TxURL links a transaction hash to the block explorer.
func (n Network) TxURL(txHash string) string {
	return strings.TrimRight(n.ExplorerURL, "/") + "/tx/" + txHash
}

// TokenDeployed reports whether a token contract address is configured.
func (n Network) TokenDeployed() bool {
	return n.TokenAddress != (common.Address{})
}
