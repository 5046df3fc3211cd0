package route

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	solrpc "github.com/gagliardetto/solana-go/rpc"

	"mayan-swap/pkg/types"
)

// connPool lazily dials and caches read-only chain clients. Dialing is
// deferred until a request actually touches the chain, so presets can be
// constructed with partial endpoint maps.
type connPool struct {
	mu        sync.Mutex
	endpoints map[types.Chain]string
	evm       map[types.Chain]*ethclient.Client
	solana    map[types.Chain]*solrpc.Client
}

func newConnPool(endpoints map[types.Chain]string) *connPool {
	return &connPool{
		endpoints: endpoints,
		evm:       make(map[types.Chain]*ethclient.Client),
		solana:    make(map[types.Chain]*solrpc.Client),
	}
}

func (p *connPool) endpoint(chain types.Chain) (string, error) {
	ep, ok := p.endpoints[chain]
	if !ok || ep == "" {
		return "", fmt.Errorf("no RPC endpoint configured for chain %s", chain)
	}
	return ep, nil
}

func (p *connPool) evmClient(chain types.Chain) (*ethclient.Client, error) {
	if chain.Platform() != types.PlatformEVM {
		return nil, fmt.Errorf("chain %s is not an EVM chain", chain)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.evm[chain]; ok {
		return c, nil
	}

	ep, err := p.endpoint(chain)
	if err != nil {
		return nil, err
	}
	c, err := ethclient.Dial(ep)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s node: %w", chain, err)
	}
	p.evm[chain] = c
	return c, nil
}

func (p *connPool) solanaClient(chain types.Chain) (*solrpc.Client, error) {
	if chain.Platform() != types.PlatformSolana {
		return nil, fmt.Errorf("chain %s is not a Solana chain", chain)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.solana[chain]; ok {
		return c, nil
	}

	ep, err := p.endpoint(chain)
	if err != nil {
		return nil, err
	}
	c := solrpc.New(ep)
	p.solana[chain] = c
	return c, nil
}
