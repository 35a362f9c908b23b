package restapi

import (
	"errors"
	"net/http"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIBalancesResponse is the body of the snapshot endpoints.
type APIBalancesResponse struct {
	Data struct {
		Records   []entity.WalletRecord `json:"records"`
		Symbols   []string              `json:"symbols"`
		SymbolMap entity.SymbolMap      `json:"symbol_map"`
	} `json:"data"`
	ServiceErrors []entity.ReadFailure `json:"service_errors,omitempty"`
	StatusMessage string               `json:"status_message"`
}

// APIReportResponse is returned after a report was written.
type APIReportResponse struct {
	Path          string `json:"path"`
	Rows          int    `json:"rows"`
	Columns       int    `json:"columns"`
	StatusMessage string `json:"status_message"`
}

// APIErrorResponse is returned for requests that could not be served at all.
type APIErrorResponse struct {
	Error string `json:"error"`
}

// BalanceHandler serves balance snapshots and reports over HTTP.
type BalanceHandler struct {
	reportService port.ReportService
	reportPath    string
	logger        port.Logger
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(rs port.ReportService, reportPath string, logger port.Logger) *BalanceHandler {
	return &BalanceHandler{reportService: rs, reportPath: reportPath, logger: logger}
}

func newBalancesResponse(snapshot *entity.BalanceSnapshot) APIBalancesResponse {
	var response APIBalancesResponse
	response.Data.Records = snapshot.Records
	response.Data.Symbols = snapshot.Symbols
	response.Data.SymbolMap = snapshot.SymbolMap
	response.ServiceErrors = snapshot.Failures

	switch {
	case len(snapshot.Records) == 0:
		response.StatusMessage = "No wallets configured. Check the input file."
	case len(snapshot.Failures) > 0:
		response.StatusMessage = "Balances retrieved. Some reads failed and are reported as 0."
	default:
		response.StatusMessage = "Balances retrieved successfully."
	}
	return response
}

// GetBalancesHandler returns the snapshot of all configured wallets.
func (h *BalanceHandler) GetBalancesHandler(c *gin.Context) {
	snapshot, err := h.reportService.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("Snapshot failed", "error", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, newBalancesResponse(snapshot))
}

// GetWalletBalancesHandler aggregates one wallet given in the path.
func (h *BalanceHandler) GetWalletBalancesHandler(c *gin.Context) {
	snapshot, err := h.reportService.SnapshotWallet(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		if errors.Is(err, entity.ErrInvalidWalletAddress) {
			c.JSON(http.StatusBadRequest, APIErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("Wallet snapshot failed", "wallet", c.Param("walletAddress"), "error", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, newBalancesResponse(snapshot))
}

// GetReportHandler renders the report text without writing it.
func (h *BalanceHandler) GetReportHandler(c *gin.Context) {
	snapshot, err := h.reportService.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("Snapshot failed", "error", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Error: err.Error()})
		return
	}
	report := h.reportService.Render(snapshot)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(report.Text()))
}

// PostReportHandler runs the pipeline and writes the report to the configured path.
func (h *BalanceHandler) PostReportHandler(c *gin.Context) {
	report, err := h.reportService.GenerateReport(c.Request.Context())
	if err != nil {
		var exportErr *entity.ExportError
		if errors.As(err, &exportErr) {
			h.logger.Error("Report export failed", "path", exportErr.Path, "error", exportErr.Err)
		} else {
			h.logger.Error("Report generation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, APIErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, APIReportResponse{
		Path:          h.reportPath,
		Rows:          len(report.Rows),
		Columns:       len(report.Header),
		StatusMessage: "Report written.",
	})
}
