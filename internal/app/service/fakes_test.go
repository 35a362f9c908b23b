package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"balance_reporter/internal/domain/entity"
)

var errBoom = errors.New("boom")

// fakeChain serves reads from maps. Any read whose key is in fail returns that
// error. Keys: "native|wallet", "balance_of|wallet|token", "decimals|token", "symbol|token".
type fakeChain struct {
	native   map[string]*big.Int
	balances map[string]*big.Int
	decimals map[string]uint8
	symbols  map[string]string
	fail     map[string]error
	maxDelay time.Duration

	inFlightNative atomic.Int64
	peakNative     atomic.Int64
	calls          atomic.Int64
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		native:   map[string]*big.Int{},
		balances: map[string]*big.Int{},
		decimals: map[string]uint8{},
		symbols:  map[string]string{},
		fail:     map[string]error{},
	}
}

func (f *fakeChain) addToken(token, symbol string, decimals uint8) {
	f.symbols[token] = symbol
	f.decimals[token] = decimals
}

func (f *fakeChain) setBalance(wallet, token string, amount *big.Int) {
	f.balances[wallet+"|"+token] = amount
}

func (f *fakeChain) sleep(ctx context.Context) {
	if f.maxDelay <= 0 {
		return
	}
	d := time.Duration(rand.Int63n(int64(f.maxDelay)))
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (f *fakeChain) NativeBalance(ctx context.Context, wallet string) (*big.Int, error) {
	f.calls.Add(1)
	n := f.inFlightNative.Add(1)
	defer f.inFlightNative.Add(-1)
	for {
		peak := f.peakNative.Load()
		if n <= peak || f.peakNative.CompareAndSwap(peak, n) {
			break
		}
	}
	f.sleep(ctx)
	if err := f.fail["native|"+wallet]; err != nil {
		return nil, err
	}
	if v, ok := f.native[wallet]; ok {
		return v, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeChain) TokenBalance(ctx context.Context, token, wallet string) (*big.Int, error) {
	f.calls.Add(1)
	f.sleep(ctx)
	if err := f.fail["balance_of|"+wallet+"|"+token]; err != nil {
		return nil, err
	}
	if v, ok := f.balances[wallet+"|"+token]; ok {
		return v, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeChain) TokenDecimals(ctx context.Context, token string) (uint8, error) {
	f.calls.Add(1)
	f.sleep(ctx)
	if err := f.fail["decimals|"+token]; err != nil {
		return 0, err
	}
	d, ok := f.decimals[token]
	if !ok {
		return 0, fmt.Errorf("no contract at %s", token)
	}
	return d, nil
}

func (f *fakeChain) TokenSymbol(ctx context.Context, token string) (string, error) {
	f.calls.Add(1)
	f.sleep(ctx)
	if err := f.fail["symbol|"+token]; err != nil {
		return "", err
	}
	s, ok := f.symbols[token]
	if !ok {
		return "", fmt.Errorf("no contract at %s", token)
	}
	return s, nil
}

type fakeMetadata struct {
	symbols map[string]string
}

func (f *fakeMetadata) GetTokenSymbol(_ context.Context, platformID, token string) (string, error) {
	if platformID != "ethereum" {
		return "", fmt.Errorf("unknown platform %s", platformID)
	}
	s, ok := f.symbols[strings.ToLower(token)]
	if !ok {
		return "", errors.New("not found")
	}
	return s, nil
}

type staticWallets struct {
	wallets []entity.Wallet
	err     error
}

func (s staticWallets) GetWallets() ([]entity.Wallet, error) { return s.wallets, s.err }

type staticTokens struct {
	tokens []entity.TokenInfo
	err    error
}

func (s staticTokens) GetTokens() ([]entity.TokenInfo, error) { return s.tokens, s.err }

type memoryWriter struct {
	mu     sync.Mutex
	writes int
	text   string
	err    error
}

func (w *memoryWriter) WriteReport(_ context.Context, report entity.Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return &entity.ExportError{Path: w.Location(), Err: w.err}
	}
	w.writes++
	w.text = report.Text()
	return nil
}

func (w *memoryWriter) Location() string { return "memory" }

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

func wallets(addresses ...string) []entity.Wallet {
	out := make([]entity.Wallet, len(addresses))
	for i, a := range addresses {
		out[i] = entity.Wallet{Address: a}
	}
	return out
}

func tokens(addresses ...string) []entity.TokenInfo {
	out := make([]entity.TokenInfo, len(addresses))
	for i, a := range addresses {
		out[i] = entity.TokenInfo{Address: a}
	}
	return out
}

func units(whole int64, decimals uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}
