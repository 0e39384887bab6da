// Package spreadsheet encodes report workbooks and decodes import sheets as
// xlsx files using excelize.
package spreadsheet

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bizbooks/internal/domain/reports"
)

const (
	// ContentType is the MIME type of xlsx files.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	moneyFormat   = "$#,##0.00"
	costFormat    = "$#,##0.0000"
	percentFormat = "0.00%"
	numberFormat  = "#,##0.000"
	dateFormat    = "yyyy-mm-dd hh:mm"

	minColWidth = 10
	maxColWidth = 48
)

var _ reports.WorkbookWriter = (*Writer)(nil)

// Writer renders reports.Workbook values as xlsx.
type Writer struct{}

// NewWriter creates an xlsx writer.
func NewWriter() *Writer { return &Writer{} }

func (w *Writer) ContentType() string { return ContentType }

func (w *Writer) Extension() string { return ".xlsx" }

type styles struct {
	title, header   int
	money, cost     int
	percent, number int
	date            int
}

func newStyles(f *excelize.File) (*styles, error) {
	var s styles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}}},
		{&s.header, &excelize.Style{
			Font:   &excelize.Font{Bold: true},
			Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
			Border: []excelize.Border{{Type: "bottom", Color: "808080", Style: 1}},
		}},
		{&s.money, &excelize.Style{CustomNumFmt: strPtr(moneyFormat)}},
		{&s.cost, &excelize.Style{CustomNumFmt: strPtr(costFormat)}},
		{&s.percent, &excelize.Style{CustomNumFmt: strPtr(percentFormat)}},
		{&s.number, &excelize.Style{CustomNumFmt: strPtr(numberFormat)}},
		{&s.date, &excelize.Style{CustomNumFmt: strPtr(dateFormat)}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, fmt.Errorf("new style: %w", err)
		}
		*d.dst = id
	}
	return &s, nil
}

func strPtr(s string) *string { return &s }

// Write encodes wb into out. Sheets appear in workbook order.
func (w *Writer) Write(out io.Writer, wb *reports.Workbook) error {
	if len(wb.Sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	first := f.GetSheetName(0)
	for i, sheet := range wb.Sheets {
		if i == 0 {
			if err := f.SetSheetName(first, sheet.Name); err != nil {
				return fmt.Errorf("rename sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("new sheet %q: %w", sheet.Name, err)
		}
		if err := writeSheet(f, st, sheet); err != nil {
			return fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, st *styles, sheet reports.Sheet) error {
	widths := make(map[int]int)
	track := func(col int, s string) {
		if n := utf8.RuneCountInString(s) + 2; n > widths[col] {
			widths[col] = n
		}
	}

	row := 1
	for bi, block := range sheet.Blocks {
		if bi > 0 {
			row++
		}
		if block.Title != "" {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet.Name, cell, block.Title); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet.Name, cell, cell, st.title); err != nil {
				return err
			}
			row++
		}

		for col, h := range block.Header {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet.Name, cell, h); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet.Name, cell, cell, st.header); err != nil {
				return err
			}
			track(col+1, h)
		}
		row++

		for _, cells := range block.Rows {
			for col, c := range cells {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return err
				}
				text, err := setCell(f, st, sheet.Name, cell, c)
				if err != nil {
					return err
				}
				track(col+1, text)
			}
			row++
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		width = max(minColWidth, min(width, maxColWidth))
		if err := f.SetColWidth(sheet.Name, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}

// setCell writes one typed cell and returns its approximate display text.
func setCell(f *excelize.File, st *styles, sheet, cell string, c reports.Cell) (string, error) {
	style := 0
	var value any
	switch c.Kind {
	case reports.KindMoney:
		value, style = float(c.Value), st.money
	case reports.KindCost:
		value, style = float(c.Value), st.cost
	case reports.KindNumber:
		value, style = float(c.Value), st.number
	case reports.KindPercent:
		d, _ := c.Value.(decimal.Decimal)
		value, style = d.Shift(-2).InexactFloat64(), st.percent
	case reports.KindDate:
		t, _ := c.Value.(time.Time)
		value, style = t.UTC(), st.date
	default:
		value = c.Value
	}

	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return "", err
	}
	if style != 0 {
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return "", err
		}
	}
	if c.Kind == reports.KindDate {
		return dateFormat, nil
	}
	return fmt.Sprint(c.Value), nil
}

func float(v any) float64 {
	d, _ := v.(decimal.Decimal)
	return d.InexactFloat64()
}
