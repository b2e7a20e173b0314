package mdbtab

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// ReadXLSX reads one sheet of an Excel workbook with a header row.
//
// Cells are read by their stored value, not their display text,
// so number formats do not change what is loaded.
// Number cells with a date or time format become time.Time in UTC,
// boolean cells become bool and text cells stay strings unless they are a missing value.
// With WithRawStrings every cell is read as its display text instead.
func ReadXLSX(r io.Reader, opts ...Option) ([]bson.D, error) {
	cfg := newConfig(opts)

	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = workbook.Close() }()

	sheet := cfg.sheet
	if sheet == "" {
		sheets := workbook.GetSheetList()
		if len(sheets) < 1 {
			return nil, fmt.Errorf("workbook has no sheets: %w", ErrNoHeader)
		}
		sheet = sheets[0]
	}

	if cfg.rawStrings {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		return toDocuments(rows, func(_, _ int, cell string) (interface{}, error) {
			return cellValue(cell, true), nil
		})
	}

	rows, err := workbook.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	reader := &sheetReader{
		workbook:   workbook,
		sheet:      sheet,
		dateStyles: make(map[int]bool),
	}
	if props, err := workbook.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		reader.date1904 = *props.Date1904
	}

	return toDocuments(rows, reader.value)
}

////////////////////////////////////////////////////////////////////////////////

// sheetReader converts raw cell values using the cell type and number format.
type sheetReader struct {
	workbook   *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func (s *sheetReader) value(row, col int, cell string) (interface{}, error) {
	if cell == "" {
		return nil, nil
	}

	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return nil, err
	}
	cellType, err := s.workbook.GetCellType(s.sheet, name)
	if err != nil {
		return nil, fmt.Errorf("cell type %s: %w", name, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return cell == "1" || strings.EqualFold(cell, "true"), nil
	case excelize.CellTypeError:
		return nil, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		if isMissing(strings.TrimSpace(cell)) {
			return nil, nil
		}
		return cell, nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, cell); err == nil {
			return t.UTC(), nil
		}
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		isDate, err := s.dateFormatted(name)
		if err != nil {
			return nil, err
		}
		if isDate {
			if serial, err := strconv.ParseFloat(cell, 64); err == nil {
				return excelize.ExcelDateToTime(serial, s.date1904)
			}
		}
	}

	return cellValue(cell, false), nil
}

// dateFormatted reports whether the named cell has a date or time number format.
func (s *sheetReader) dateFormatted(name string) (bool, error) {
	styleID, err := s.workbook.GetCellStyle(s.sheet, name)
	if err != nil {
		return false, fmt.Errorf("cell style %s: %w", name, err)
	}
	if isDate, found := s.dateStyles[styleID]; found {
		return isDate, nil
	}

	style, err := s.workbook.GetStyle(styleID)
	if err != nil {
		return false, fmt.Errorf("style %d: %w", styleID, err)
	}
	isDate := dateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = dateFormatCode(*style.CustomNumFmt)
	}
	s.dateStyles[styleID] = isDate

	return isDate, nil
}

// dateNumFmt reports whether a built-in number format ID shows a date or time.
func dateNumFmt(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 27 && id <= 36) || (id >= 45 && id <= 47) || (id >= 50 && id <= 58)
}

// dateFormatCode reports whether a custom number format code shows a date or time.
// Quoted text, bracketed sections and escaped characters are ignored.
func dateFormatCode(code string) bool {
	if strings.EqualFold(code, "general") {
		return false
	}

	var quoted, bracketed, escaped bool
	for _, ch := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = ch != '"'
		case bracketed:
			bracketed = ch != ']'
		case ch == '\\' || ch == '_' || ch == '*':
			escaped = true
		case ch == '"':
			quoted = true
		case ch == '[':
			bracketed = true
		case strings.ContainsRune("ymdhs", ch):
			return true
		}
	}

	return false
}
