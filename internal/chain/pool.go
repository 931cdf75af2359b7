package chain

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"aequiswap/internal/config"
)

// Pool maintains one long-lived client per configured chain, dialed lazily and
// reused across requests.
type Pool struct {
	logger *zap.Logger

	mu      sync.Mutex
	configs map[string]config.ChainConfig
	clients map[string]*Client
}

// NewPool creates a pool over the configured chains.
func NewPool(chains []config.ChainConfig, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	configs := make(map[string]config.ChainConfig, len(chains))
	for _, chain := range chains {
		configs[chain.Key] = chain
	}
	return &Pool{
		logger:  logger,
		configs: configs,
		clients: make(map[string]*Client),
	}
}

// Client returns the shared client for a chain key, dialing on first use.
func (p *Pool) Client(ctx context.Context, key string) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[key]; ok {
		return client, nil
	}

	cfg, ok := p.configs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", config.ErrChainNotConfigured, key)
	}

	client, err := NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", key, err)
	}

	p.logger.Info("chain client connected", zap.String("chain", key))
	p.clients[key] = client
	return client, nil
}

// Close closes every dialed client.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, client := range p.clients {
		client.Close()
		delete(p.clients, key)
	}
}
