package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"balance_reporter/internal/domain/entity"
	"balance_reporter/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validWallet = "0x000000000000000000000000000000000000dEaD"

type stubReportService struct {
	snapshot    *entity.BalanceSnapshot
	err         error
	generateErr error
}

func (s *stubReportService) Snapshot(context.Context) (*entity.BalanceSnapshot, error) {
	return s.snapshot, s.err
}

func (s *stubReportService) SnapshotWallet(_ context.Context, wallet string) (*entity.BalanceSnapshot, error) {
	if wallet != validWallet {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidWalletAddress, wallet)
	}
	return &entity.BalanceSnapshot{
		Records: []entity.WalletRecord{{Address: wallet, NativeAmount: "1.0", TokenBalances: map[string]string{}}},
	}, nil
}

func (s *stubReportService) Render(snapshot *entity.BalanceSnapshot) entity.Report {
	report := entity.Report{Header: append([]string{"Address", "ETH"}, snapshot.Symbols...)}
	for _, r := range snapshot.Records {
		report.Rows = append(report.Rows, []string{r.Address, r.NativeAmount + " ETH", r.TokenBalances["USD1"]})
	}
	return report
}

func (s *stubReportService) GenerateReport(ctx context.Context) (entity.Report, error) {
	if s.generateErr != nil {
		return entity.Report{}, s.generateErr
	}
	snapshot, _ := s.Snapshot(ctx)
	return s.Render(snapshot), nil
}

func newTestRouter(svc *stubReportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(NewBalanceHandler(svc, "balances.csv", logger.NewSlogAdapter()), nil)
}

func sampleSnapshot() *entity.BalanceSnapshot {
	return &entity.BalanceSnapshot{
		Records:   []entity.WalletRecord{{Address: "0xA", NativeAmount: "2.0", TokenBalances: map[string]string{"USD1": "500.0"}}},
		Symbols:   []string{"USD1"},
		SymbolMap: entity.SymbolMap{"0xT1": "USD1"},
	}
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetBalances(t *testing.T) {
	w := serve(newTestRouter(&stubReportService{snapshot: sampleSnapshot()}), http.MethodGet, "/api/v1/balances")
	require.Equal(t, http.StatusOK, w.Code)

	var body APIBalancesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Records, 1)
	assert.Equal(t, "500.0", body.Data.Records[0].TokenBalances["USD1"])
	assert.Equal(t, []string{"USD1"}, body.Data.Symbols)
	assert.Equal(t, "Balances retrieved successfully.", body.StatusMessage)
}

func TestGetBalances_PartialFailures(t *testing.T) {
	snapshot := sampleSnapshot()
	snapshot.Failures = []entity.ReadFailure{{WalletAddress: "0xA", TokenAddress: "0xT2", Operation: entity.OpDecimals, Message: "reverted"}}

	w := serve(newTestRouter(&stubReportService{snapshot: snapshot}), http.MethodGet, "/api/v1/balances")
	require.Equal(t, http.StatusOK, w.Code)

	var body APIBalancesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.ServiceErrors, 1)
	assert.Equal(t, entity.OpDecimals, body.ServiceErrors[0].Operation)
}

func TestGetBalances_ServiceError(t *testing.T) {
	w := serve(newTestRouter(&stubReportService{err: errors.New("input missing")}), http.MethodGet, "/api/v1/balances")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "input missing")
}

func TestGetReport(t *testing.T) {
	w := serve(newTestRouter(&stubReportService{snapshot: sampleSnapshot()}), http.MethodGet, "/api/v1/balances/report")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Address,ETH,USD1\n0xA, 2.0 ETH, 500.0\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
}

func TestGetWalletBalances(t *testing.T) {
	router := newTestRouter(&stubReportService{snapshot: sampleSnapshot()})

	w := serve(router, http.MethodGet, "/api/v1/balances/"+validWallet)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), validWallet)

	w = serve(router, http.MethodGet, "/api/v1/balances/0xnope")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostReport(t *testing.T) {
	w := serve(newTestRouter(&stubReportService{snapshot: sampleSnapshot()}), http.MethodPost, "/api/v1/report")
	require.Equal(t, http.StatusOK, w.Code)

	var body APIReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "balances.csv", body.Path)
	assert.Equal(t, 1, body.Rows)
	assert.Equal(t, 3, body.Columns)
}

func TestPostReport_ExportError(t *testing.T) {
	svc := &stubReportService{snapshot: sampleSnapshot(), generateErr: &entity.ExportError{Path: "balances.csv", Err: errors.New("denied")}}
	w := serve(newTestRouter(svc), http.MethodPost, "/api/v1/report")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "denied")
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(&stubReportService{snapshot: sampleSnapshot()})

	w := serve(router, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
