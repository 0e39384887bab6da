package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"bizbooks/internal/core/security"
	"bizbooks/internal/core/tx"
	"bizbooks/internal/core/types"
	"bizbooks/pkg/logger"
)

// Service renders financial reports.
type Service struct {
	loader SnapshotLoader
	txm    tx.ReadOnlyManager
	writer WorkbookWriter
	now    func() time.Time
}

// NewService creates a new reports service.
func NewService(loader SnapshotLoader, txm tx.ReadOnlyManager, writer WorkbookWriter) *Service {
	return &Service{loader: loader, txm: txm, writer: writer, now: time.Now}
}

// Generate builds the workbook for r from one read-only snapshot and encodes
// it. Nothing is returned unless the whole file was written.
func (s *Service) Generate(ctx context.Context, p security.Principal, r types.DateRange) (*Report, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}

	generatedAt := s.now().UTC()
	var buf bytes.Buffer
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		snap, err := s.loader.LoadSnapshot(ctx, p.UserID, r)
		if err != nil {
			return err
		}
		return s.writer.Write(&buf, Compose(snap, generatedAt))
	})
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	report := &Report{
		Filename:    Filename(r, generatedAt, s.writer.Extension()),
		ContentType: s.writer.ContentType(),
		Data:        buf.Bytes(),
	}
	logger.Info(ctx, "report generated", "period", r.Label(), "bytes", len(report.Data))
	return report, nil
}

// Filename names a report after its period, or the generation date for the
// whole history.
func Filename(r types.DateRange, generatedAt time.Time, ext string) string {
	switch {
	case r.IsAllTime():
		return fmt.Sprintf("report_all_%s%s", generatedAt.Format("20060102"), ext)
	case r.Start == nil:
		return fmt.Sprintf("report_until_%s%s", r.End.Format(types.DateLayout), ext)
	case r.End == nil:
		return fmt.Sprintf("report_from_%s%s", r.Start.Format(types.DateLayout), ext)
	default:
		return fmt.Sprintf("report_%s_%s%s", r.Start.Format(types.DateLayout), r.End.Format(types.DateLayout), ext)
	}
}
