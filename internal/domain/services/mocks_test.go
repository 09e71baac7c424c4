package services

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-router/internal/domain/entities"
	"github.com/bimakw/dex-router/internal/infrastructure/cache"
	"github.com/bimakw/dex-router/internal/infrastructure/dex"
)

var (
	tokenA = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenB = common.HexToAddress("0x2000000000000000000000000000000000000002")
	tokenC = common.HexToAddress("0x3000000000000000000000000000000000000003")
	tokenD = common.HexToAddress("0x4000000000000000000000000000000000000004")
	weth   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	wallet = common.HexToAddress("0x0A000000000000000000000000000000000000A0")
	router = common.HexToAddress("0xE592427A0AEce92De3Edee1F18E0157C05861564")
)

func poolKey(tokenA, tokenB common.Address, fee entities.FeeTier) string {
	return cache.PoolCacheKey(0, tokenA, tokenB, fee)
}

// poolAddress derives a deterministic fake pool address.
func poolAddress(tokenA, tokenB common.Address, fee entities.FeeTier) common.Address {
	a, b := entities.SortTokens(tokenA, tokenB)
	return common.BytesToAddress(append(append(a.Bytes()[:8], b.Bytes()[:8]...), byte(fee>>8), byte(fee)))
}

// MockRegistry is a call-counting factory stub.
type MockRegistry struct {
	mu    sync.Mutex
	pools   map[string]common.Address
	fail    map[string]error
	blocked map[string]bool
	calls   map[string]int
	total   int
}

func NewMockRegistry() *MockRegistry {
	return &MockRegistry{
		pools:   make(map[string]common.Address),
		fail:    make(map[string]error),
		blocked: make(map[string]bool),
		calls:   make(map[string]int),
	}
}

func (m *MockRegistry) AddPool(tokenA, tokenB common.Address, fee entities.FeeTier) common.Address {
	addr := poolAddress(tokenA, tokenB, fee)
	m.mu.Lock()
	m.pools[poolKey(tokenA, tokenB, fee)] = addr
	m.mu.Unlock()
	return addr
}

func (m *MockRegistry) FailPool(tokenA, tokenB common.Address, fee entities.FeeTier, err error) {
	m.mu.Lock()
	m.fail[poolKey(tokenA, tokenB, fee)] = err
	m.mu.Unlock()
}

// BlockPool makes lookups of the pool hang until their context ends.
func (m *MockRegistry) BlockPool(tokenA, tokenB common.Address, fee entities.FeeTier) {
	m.mu.Lock()
	m.blocked[poolKey(tokenA, tokenB, fee)] = true
	m.mu.Unlock()
}

func (m *MockRegistry) GetPool(ctx context.Context, tokenA, tokenB common.Address, fee entities.FeeTier) (common.Address, error) {
	key := poolKey(tokenA, tokenB, fee)
	m.mu.Lock()
	m.calls[key]++
	m.total++
	blocked, err, pool := m.blocked[key], m.fail[key], m.pools[key]
	m.mu.Unlock()

	if blocked {
		<-ctx.Done()
		return common.Address{}, ctx.Err()
	}
	if err != nil {
		return common.Address{}, err
	}
	return pool, nil
}

func (m *MockRegistry) Calls(tokenA, tokenB common.Address, fee entities.FeeTier) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[poolKey(tokenA, tokenB, fee)]
}

func (m *MockRegistry) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// MockQuoter answers quotes keyed by path id.
type MockQuoter struct {
	mu      sync.Mutex
	outputs map[string]*big.Int
	errs    map[string]error
	blocked map[string]bool
	calls   int
}

func NewMockQuoter() *MockQuoter {
	return &MockQuoter{
		outputs: make(map[string]*big.Int),
		errs:    make(map[string]error),
		blocked: make(map[string]bool),
	}
}

func (m *MockQuoter) SetOutput(tokens []common.Address, fees []entities.FeeTier, out int64) {
	path, _ := entities.NewPath(tokens, fees)
	m.mu.Lock()
	m.outputs[path.ID()] = big.NewInt(out)
	m.mu.Unlock()
}

func (m *MockQuoter) SetError(tokens []common.Address, fees []entities.FeeTier, err error) {
	path, _ := entities.NewPath(tokens, fees)
	m.mu.Lock()
	m.errs[path.ID()] = err
	m.mu.Unlock()
}

// Block makes quotes of the path hang until their context ends.
func (m *MockQuoter) Block(tokens []common.Address, fees []entities.FeeTier) {
	path, _ := entities.NewPath(tokens, fees)
	m.mu.Lock()
	m.blocked[path.ID()] = true
	m.mu.Unlock()
}

func (m *MockQuoter) lookup(ctx context.Context, path entities.Path) (*dex.QuoteResult, error) {
	m.mu.Lock()
	m.calls++
	id := path.ID()
	if m.blocked[id] {
		m.mu.Unlock()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	defer m.mu.Unlock()
	if err := m.errs[id]; err != nil {
		return nil, err
	}
	out, ok := m.outputs[id]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return &dex.QuoteResult{AmountOut: out, GasEstimate: uint64(80_000 * path.Hops())}, nil
}

func (m *MockQuoter) QuoteExactInputSingle(ctx context.Context, tokenIn, tokenOut common.Address, fee entities.FeeTier, amountIn *big.Int) (*dex.QuoteResult, error) {
	path, err := entities.NewPath([]common.Address{tokenIn, tokenOut}, []entities.FeeTier{fee})
	if err != nil {
		return nil, err
	}
	return m.lookup(ctx, path)
}

func (m *MockQuoter) QuoteExactInput(ctx context.Context, encoded []byte, amountIn *big.Int) (*dex.QuoteResult, error) {
	path, err := entities.DecodePath(encoded)
	if err != nil {
		return nil, err
	}
	return m.lookup(ctx, path)
}

func (m *MockQuoter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockChain is a configurable connectivity stub.
type MockChain struct {
	timestamp   uint64
	baseFee     *big.Int
	baseFeeErr  error
	tip         *big.Int
	gasPrice    *big.Int
	gasPriceErr error
	estimate    uint64
	estimateErr error
	nonce       uint64
	estimated   []ethereum.CallMsg
}

func NewMockChain() *MockChain {
	return &MockChain{
		timestamp: 1_700_000_000,
		baseFee:   big.NewInt(10_000_000_000),
		tip:       big.NewInt(1_500_000_000),
		gasPrice:  big.NewInt(25_000_000_000),
		estimate:  100_000,
		nonce:     7,
	}
}

func (m *MockChain) BlockTimestamp(ctx context.Context) (uint64, error) { return m.timestamp, nil }

func (m *MockChain) BaseFee(ctx context.Context) (*big.Int, error) {
	if m.baseFeeErr != nil {
		return nil, m.baseFeeErr
	}
	return m.baseFee, nil
}

func (m *MockChain) SuggestGasTipCap(ctx context.Context) (*big.Int, error) { return m.tip, nil }

func (m *MockChain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if m.gasPriceErr != nil {
		return nil, m.gasPriceErr
	}
	return m.gasPrice, nil
}

func (m *MockChain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return m.nonce, nil
}

func (m *MockChain) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	m.estimated = append(m.estimated, msg)
	if m.estimateErr != nil {
		return 0, m.estimateErr
	}
	return m.estimate, nil
}

// MockTokens resolves decimals from a fixed map.
type MockTokens map[common.Address]uint8

func (m MockTokens) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	d, ok := m[token]
	if !ok {
		return 0, errors.New("decimals() reverted")
	}
	return d, nil
}

// MockERC20 stubs allowance reads.
type MockERC20 struct {
	allowance *big.Int
	err       error
	approved  *big.Int
}

func (m *MockERC20) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.allowance, nil
}

func (m *MockERC20) PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	m.approved = amount
	erc20, err := dex.ERC20ABI()
	if err != nil {
		return nil, err
	}
	return erc20.Pack("approve", spender, amount)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// engine wires the routing services over mocks.
type engine struct {
	registry   *MockRegistry
	quoter     *MockQuoter
	clock      *fakeClock
	locator    *PoolLocator
	discoverer *PathDiscoverer
	aggregator *QuoteAggregator
}

func newEngine(bases ...common.Address) *engine {
	return newTimedEngine(time.Second, bases...)
}

// newTimedEngine bounds every pool lookup and quote by callTimeout.
func newTimedEngine(callTimeout time.Duration, bases ...common.Address) *engine {
	e := &engine{
		registry: NewMockRegistry(),
		quoter:   NewMockQuoter(),
		clock:    newFakeClock(),
	}
	c := cache.NewInMemoryCache(cache.DefaultTTL, e.clock.Now)
	e.locator = NewPoolLocator(e.registry, c, PoolLocatorConfig{CallTimeout: callTimeout, MaxConcurrency: 4}, nil)
	e.discoverer = NewPathDiscoverer(e.locator, c, PathDiscovererConfig{CommonBases: bases, MaxConcurrency: 4}, nil)
	e.aggregator = NewQuoteAggregator(e.quoter, e.discoverer, MockTokens{tokenB: 6, tokenC: 18, tokenD: 18}, QuoteAggregatorConfig{CallTimeout: callTimeout, MaxConcurrency: 4}, nil)
	return e
}
