package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// erc20ABI covers the three read-only calls the reporter needs.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"}
]`

// ErrEmptyResult is returned when a contract call returns no data, which is what
// nodes answer for addresses without code or without the called method.
var ErrEmptyResult = errors.New("contract call returned no data")

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
)

func erc20() abi.ABI {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
	})
	return parsedERC20ABI
}

// ethCaller is the subset of ethclient.Client used by EVMClient.
type ethCaller interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// EVMClient implements port.BlockchainClient for EVM-compatible chains.
// Each method performs exactly one RPC call bounded by rpcCallTimeout.
type EVMClient struct {
	eth            ethCaller
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
}

var _ port.BlockchainClient = (*EVMClient)(nil)

// NewEVMClient wraps an already dialed ethclient.
func NewEVMClient(ethClient *ethclient.Client, netDef entity.NetworkDefinition, rpcCallTimeout time.Duration) *EVMClient {
	return &EVMClient{eth: ethClient, netDef: netDef, rpcCallTimeout: rpcCallTimeout}
}

func (c *EVMClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.rpcCallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.rpcCallTimeout)
}

// NativeBalance returns the wallet's native balance at the latest block.
func (c *EVMClient) NativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, fmt.Errorf("invalid wallet address %q", walletAddress)
	}
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	balance, err := c.eth.BalanceAt(callCtx, common.HexToAddress(walletAddress), nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance for %s on %s: %w", walletAddress, c.netDef.Name, err)
	}
	return balance, nil
}

// TokenBalance calls balanceOf(walletAddress) on tokenAddress.
func (c *EVMClient) TokenBalance(ctx context.Context, tokenAddress string, walletAddress string) (*big.Int, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, fmt.Errorf("invalid wallet address %q", walletAddress)
	}
	out, err := c.call(ctx, tokenAddress, "balanceOf", common.HexToAddress(walletAddress))
	if err != nil {
		return nil, err
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf on %s: unexpected result type %T", tokenAddress, out[0])
	}
	return balance, nil
}

// TokenDecimals calls decimals() on tokenAddress.
func (c *EVMClient) TokenDecimals(ctx context.Context, tokenAddress string) (uint8, error) {
	out, err := c.call(ctx, tokenAddress, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals on %s: unexpected result type %T", tokenAddress, out[0])
	}
	return decimals, nil
}

// TokenSymbol calls symbol() on tokenAddress. Legacy tokens that return bytes32
// instead of string are decoded as well.
func (c *EVMClient) TokenSymbol(ctx context.Context, tokenAddress string) (string, error) {
	raw, err := c.callRaw(ctx, tokenAddress, "symbol")
	if err != nil {
		return "", err
	}
	out, err := erc20().Unpack("symbol", raw)
	if err == nil && len(out) == 1 {
		if symbol, ok := out[0].(string); ok {
			return symbol, nil
		}
	}
	if len(raw) == 32 {
		if symbol := string(bytes.TrimRight(raw, "\x00")); symbol != "" {
			return symbol, nil
		}
	}
	if err == nil {
		err = fmt.Errorf("unexpected result %x", raw)
	}
	return "", fmt.Errorf("failed to decode symbol of %s: %w", tokenAddress, err)
}

func (c *EVMClient) call(ctx context.Context, tokenAddress, method string, args ...any) ([]any, error) {
	raw, err := c.callRaw(ctx, tokenAddress, method, args...)
	if err != nil {
		return nil, err
	}
	out, err := erc20().Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result of %s: %w", method, tokenAddress, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s unpack of %s returned no values", method, tokenAddress)
	}
	return out, nil
}

func (c *EVMClient) callRaw(ctx context.Context, tokenAddress, method string, args ...any) ([]byte, error) {
	if !common.IsHexAddress(tokenAddress) {
		return nil, fmt.Errorf("invalid token address %q", tokenAddress)
	}
	data, err := erc20().Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	to := common.HexToAddress(tokenAddress)
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	raw, err := c.eth.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call %s on %s: %w", method, tokenAddress, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s on %s: %w", method, tokenAddress, ErrEmptyResult)
	}
	return raw, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.eth.Close()
}
