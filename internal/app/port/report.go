package port

import (
	"context"

	"balance_reporter/internal/domain/entity"
)

// ReportWriter persists a rendered report.
type ReportWriter interface {
	WriteReport(ctx context.Context, report entity.Report) error
	// Location describes where reports are written (e.g. a file path).
	Location() string
}

// ReportService runs the balance pipeline.
type ReportService interface {
	// Snapshot reads every configured wallet and token and resolves display symbols.
	Snapshot(ctx context.Context) (*entity.BalanceSnapshot, error)

	// SnapshotWallet does the same for a single wallet address.
	SnapshotWallet(ctx context.Context, walletAddress string) (*entity.BalanceSnapshot, error)

	// Render builds the report table from a snapshot without writing it.
	Render(snapshot *entity.BalanceSnapshot) entity.Report

	// GenerateReport takes a snapshot and writes the rendered report.
	GenerateReport(ctx context.Context) (entity.Report, error)
}
