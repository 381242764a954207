package excel

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Office 2003 XML workbook, the layout MetaTrader 5 uses for optimization reports.
// Element names match in any namespace, so the ss: prefix is optional.
type xmlWorkbook struct {
	Worksheets []xmlWorksheet `xml:"Worksheet"`
}

type xmlWorksheet struct {
	Name  string   `xml:"Name,attr"`
	Table xmlTable `xml:"Table"`
}

type xmlTable struct {
	Rows []xmlRow `xml:"Row"`
}

type xmlRow struct {
	Index int       `xml:"Index,attr"`
	Cells []xmlCell `xml:"Cell"`
}

type xmlCell struct {
	Index int      `xml:"Index,attr"`
	Data  *xmlData `xml:"Data"`
}

type xmlData struct {
	Type string `xml:"Type,attr"`
	Text string `xml:",chardata"`
}

func (l *Loader) readSpreadsheetML(raw []byte) ([][]string, error) {
	text, enc, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(bytes.NewReader(text))
	// The bytes are UTF-8 by now whatever the declaration says.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	var wb xmlWorkbook
	if err := dec.Decode(&wb); err != nil {
		return nil, fmt.Errorf("failed to parse SpreadsheetML: %w", err)
	}
	if len(wb.Worksheets) == 0 {
		return nil, fmt.Errorf("SpreadsheetML has no Worksheet element")
	}

	ws := wb.Worksheets[0]
	if l.config.Sheet != "" {
		found := false
		for _, w := range wb.Worksheets {
			if w.Name == l.config.Sheet {
				ws, found = w, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("sheet %q not found", l.config.Sheet)
		}
	}
	l.logger.Debug("xml: encoding %s, worksheet %q, %d rows", enc, ws.Name, len(ws.Table.Rows))

	maxColumns := l.config.MaxColumns
	if maxColumns <= 0 {
		maxColumns = DefaultMaxColumns
	}
	return spreadsheetRows(ws.Table.Rows, maxColumns)
}

// spreadsheetRows lays cells out positionally. A cell's ss:Index is 1-based and skips the
// cells in between, which stay empty. Row indexes are ignored: skipped rows would be blank and
// blank rows are dropped anyway.
func spreadsheetRows(xmlRows []xmlRow, maxColumns int) ([][]string, error) {
	rows := make([][]string, 0, len(xmlRows))
	for i, xr := range xmlRows {
		row := make([]string, 0, len(xr.Cells))
		for _, c := range xr.Cells {
			if c.Index > maxColumns || (c.Index <= 0 && len(row) >= maxColumns) {
				return nil, fmt.Errorf("row %d: cell beyond column limit %d", i+1, maxColumns)
			}
			for len(row) < c.Index-1 {
				row = append(row, "")
			}
			cell := ""
			if c.Data != nil {
				cell = c.Data.Text
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
