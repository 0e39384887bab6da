package reports

import (
	"context"
	"io"

	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/analytics"
)

// SnapshotLoader reads the data a report is built from, using the
// transaction carried by ctx.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, userID int64, r types.DateRange) (*analytics.Snapshot, error)
}

// WorkbookWriter encodes a workbook into a spreadsheet file.
type WorkbookWriter interface {
	ContentType() string
	Extension() string
	Write(w io.Writer, wb *Workbook) error
}
