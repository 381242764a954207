package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the configured sheet, or the first one, of an OOXML workbook
func (l *Loader) readXLSX(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]
	if l.config.Sheet != "" {
		idx, err := f.GetSheetIndex(l.config.Sheet)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("sheet %q not found (have %v)", l.config.Sheet, sheets)
		}
		sheet = l.config.Sheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	l.logger.Debug("xlsx: sheet %q, %d rows", sheet, len(rows))
	return rows, nil
}
