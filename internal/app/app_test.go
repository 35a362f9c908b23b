package app

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"balance_reporter/internal/infrastructure/configloader"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	wallet = "0x000000000000000000000000000000000000dEaD"
	token  = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
)

func selector(signature string) string {
	return hexutil.Encode(crypto.Keccak256([]byte(signature))[:4])
}

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func abiString(s string) []byte {
	out := word(big.NewInt(32))
	out = append(out, word(big.NewInt(int64(len(s))))...)
	return append(out, common.RightPadBytes([]byte(s), 32)...)
}

// newNode serves a wallet holding 2 ETH and 500 USD1 (6 decimals).
func newNode(t *testing.T) *httptest.Server {
	t.Helper()
	results := map[string][]byte{
		selector("balanceOf(address)"): word(big.NewInt(500_000_000)),
		selector("decimals()"):         word(big.NewInt(6)),
		selector("symbol()"):           abiString("USD1"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "eth_getBalance":
			two, _ := new(big.Int).SetString("2000000000000000000", 10)
			resp["result"] = hexutil.EncodeBig(two)
		case "eth_call":
			var call map[string]string
			_ = json.Unmarshal(req.Params[0], &call)
			input := call["input"]
			if input == "" {
				input = call["data"]
			}
			if len(input) < 10 {
				resp["error"] = map[string]any{"code": -32000, "message": "missing selector"}
			} else if out, ok := results[input[:10]]; ok {
				resp["result"] = hexutil.Encode(out)
			} else {
				resp["error"] = map[string]any{"code": -32000, "message": "execution reverted"}
			}
		default:
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewReportService_EndToEnd(t *testing.T) {
	node := newNode(t)
	dir := t.TempDir()

	inputPath := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(inputPath, []byte(`{"wallets":["`+wallet+`"],"tokens":["`+token+`"]}`), 0o644))
	reportPath := filepath.Join(dir, "out", "balances.csv")

	cfg, err := configloader.Load("", configloader.EnvMap{
		"CONFIG_PATH": writeConfig(t, dir),
		"RPC_URL":     node.URL,
		"INPUT_PATH":  inputPath,
		"REPORT_PATH": reportPath,
	})
	require.NoError(t, err)

	svc, cleanup, err := NewReportService(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	report, err := svc.GenerateReport(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Equal(t, "Address,ETH,USD1\n"+wallet+", 2.0 ETH, 500.0\n", string(got))
	assert.Equal(t, string(got), report.Text())
}

func TestNewReportService_UnknownStrategy(t *testing.T) {
	node := newNode(t)
	cfg, err := configloader.Load("", configloader.EnvMap{"CONFIG_PATH": writeConfig(t, t.TempDir()), "RPC_URL": node.URL})
	require.NoError(t, err)
	cfg.Symbols.Strategy = "oracle"

	_, _, err = NewReportService(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "oracle"))
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("network:\n  identifier: ethereum\nperformance:\n  rpcCallTimeoutSeconds: 5\n"), 0o644))
	return path
}
