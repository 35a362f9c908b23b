package service

import (
	"context"
	"fmt"

	"balance_reporter/internal/app/port"
	"balance_reporter/internal/domain/entity"
)

const addressColumn = "Address"

// ReportExporter renders wallet records into a report table and hands it to a writer.
type ReportExporter struct {
	nativeLabel string
	writer      port.ReportWriter
	logger      port.Logger
}

// NewReportExporter creates an exporter. writer may be nil when only Build is used.
func NewReportExporter(nativeLabel string, writer port.ReportWriter, logger port.Logger) *ReportExporter {
	return &ReportExporter{nativeLabel: nativeLabel, writer: writer, logger: logger}
}

// ReportColumns groups tokens by display symbol, in configured order of first
// appearance. Tokens without a resolved symbol are labeled with their address.
func ReportColumns(tokens []entity.TokenInfo, symbols entity.SymbolMap) []entity.ReportColumn {
	index := make(map[string]int, len(tokens))
	columns := make([]entity.ReportColumn, 0, len(tokens))
	for _, token := range tokens {
		label := symbols.DisplaySymbol(token.Address)
		i, ok := index[label]
		if !ok {
			i = len(columns)
			index[label] = i
			columns = append(columns, entity.ReportColumn{Label: label})
		}
		columns[i].Tokens = append(columns[i].Tokens, token.Address)
	}
	return columns
}

// Build renders one header and one row per record. Every row has 2+len(columns)
// cells; amounts are looked up by token address and missing ones are rendered as the sentinel.
func (e *ReportExporter) Build(records []entity.WalletRecord, columns []entity.ReportColumn) entity.Report {
	header := make([]string, 0, 2+len(columns))
	header = append(header, addressColumn, e.nativeLabel)
	header = append(header, entity.ColumnLabels(columns)...)

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		native := record.NativeAmount
		if native == "" {
			native = entity.SentinelAmount
		}
		row := make([]string, 0, len(header))
		row = append(row, record.Address, fmt.Sprintf("%s %s", native, e.nativeLabel))
		for _, column := range columns {
			amount, ok := record.Amount(column)
			if !ok {
				amount = entity.SentinelAmount
			}
			row = append(row, amount)
		}
		rows = append(rows, row)
	}
	return entity.Report{Header: header, Rows: rows}
}

// Export builds the report and writes it once through the configured writer.
func (e *ReportExporter) Export(ctx context.Context, records []entity.WalletRecord, columns []entity.ReportColumn) (entity.Report, error) {
	report := e.Build(records, columns)
	if e.writer == nil {
		return report, &entity.ExportError{Path: "", Err: fmt.Errorf("no report writer configured")}
	}
	if err := e.writer.WriteReport(ctx, report); err != nil {
		return report, err
	}
	e.logger.Info("Report written", "path", e.writer.Location(), "rows", len(report.Rows), "columns", len(report.Header))
	return report, nil
}
