package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"

	"github.com/ethereum/go-ethereum/ethclient"
)

const defaultProviderConnectionTimeout = 10 * time.Second

// evmClientProvider implements port.BlockchainClientProvider. The transport is
// picked by the RPC URL scheme: http(s) for request/response, ws(s) for a
// persistent connection.
type evmClientProvider struct {
	clients           map[string]port.BlockchainClient
	mu                sync.Mutex
	logger            port.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(connectionTimeout, rpcCallTimeout time.Duration, logger port.Logger) port.BlockchainClientProvider {
	if connectionTimeout <= 0 {
		connectionTimeout = defaultProviderConnectionTimeout
	}
	return &evmClientProvider{
		clients:           make(map[string]port.BlockchainClient),
		logger:            logger,
		connectionTimeout: connectionTimeout,
		rpcCallTimeout:    rpcCallTimeout,
	}
}

// GetClient returns a cached client for netDef, dialing the primary endpoint and
// then each fallback until one connects.
func (p *evmClientProvider) GetClient(ctx context.Context, netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clientKey := netDef.Identifier
	if c, exists := p.clients[clientKey]; exists {
		return c, nil
	}

	rpcURLs := netDef.RPCURLs()
	if len(rpcURLs) == 0 {
		return nil, &entity.ConfigurationError{Field: "network.rpcURL", Reason: fmt.Sprintf("no RPC endpoint for network %s", netDef.Identifier)}
	}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		dialCtx, cancel := context.WithTimeout(ctx, p.connectionTimeout)
		ethClient, err := ethclient.DialContext(dialCtx, rpcURL)
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
			p.logger.Warn("RPC endpoint unavailable, trying next", "network", netDef.Identifier, "rpc_url", rpcURL, "error", err)
			continue
		}

		c := NewEVMClient(ethClient, netDef, p.rpcCallTimeout)
		p.clients[clientKey] = c
		p.logger.Info("Connected to RPC endpoint", "network", netDef.Identifier, "rpc_url", rpcURL)
		return c, nil
	}

	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

// Close closes every cached client.
func (p *evmClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, c := range p.clients {
		c.Close()
		delete(p.clients, key)
	}
}
