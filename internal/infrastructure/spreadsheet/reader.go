package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bizbooks/internal/domain/journal"
)

var _ journal.SheetReader = (*Reader)(nil)

// Reader reads import rows from the first sheet of an xlsx file.
type Reader struct{}

// NewReader creates an xlsx reader.
func NewReader() *Reader { return &Reader{} }

// ReadRows returns the formatted cell text of the first sheet, header included.
func (r *Reader) ReadRows(in io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
