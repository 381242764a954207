package excel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"optiscope/domain/core"
	"optiscope/domain/optimization"
	"optiscope/internal"
)

// Loader reads optimization reports from CSV, XLSX and SpreadsheetML files
type Loader struct {
	config  LoaderConfig
	coercer *CellCoercer
	logger  *internal.Logger
}

// NewLoader creates a loader with the given configuration
func NewLoader(config LoaderConfig, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{
		config:  config,
		coercer: NewCellCoercer(config.CoercionConfig),
		logger:  logger.With("Loader"),
	}
}

// Load reads a report from disk
func (l *Loader) Load(path string) (*optimization.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("report file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()
	return l.LoadReader(filepath.Base(path), f)
}

// LoadReader reads a report from r. name is used for format detection by extension and
// as the table's source name; content sniffing decides when the extension is unknown.
func (l *Loader) LoadReader(name string, r io.Reader) (*optimization.Table, error) {
	start := time.Now()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	format, err := DetectFormat(name, raw)
	if err != nil {
		return nil, err
	}

	data, err := l.ReadRaw(format, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file %s: %w", strings.ToUpper(string(format)), name, err)
	}

	records := make([][]optimization.Value, len(data.Rows))
	for i, row := range data.Rows {
		records[i] = l.coercer.CoerceRow(row)
	}
	table := optimization.NewTable(data.Headers, records)
	table.Source = optimization.Source{
		Name:   name,
		Format: string(format),
		Hash:   core.NewHash(raw),
	}

	l.logger.Info("%s loaded in %.2fms (%s, %d columns, %d rows, %s)",
		name, float64(time.Since(start).Nanoseconds())/1e6, format, len(table.Columns), table.Len(), table.Source.Hash.Short())
	return table, nil
}

// ReadRaw parses file bytes of a known format into header and row text
func (l *Loader) ReadRaw(format Format, raw []byte) (*RawData, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = l.readCSV(raw)
	case FormatXLSX:
		rows, err = l.readXLSX(raw)
	case FormatSpreadsheetML:
		rows, err = l.readSpreadsheetML(raw)
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return l.processRows(rows), nil
}

// DetectFormat picks the reader from the file extension, falling back to the content.
func DetectFormat(name string, raw []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".xml":
		return FormatSpreadsheetML, nil
	case ".xls":
		// MetaTrader saves SpreadsheetML under .xls; real OOXML starts with a zip header.
		if bytes.HasPrefix(raw, []byte("PK\x03\x04")) {
			return FormatXLSX, nil
		}
		return FormatSpreadsheetML, nil
	}

	switch {
	case bytes.HasPrefix(raw, []byte("PK\x03\x04")):
		return FormatXLSX, nil
	case looksLikeXML(raw):
		return FormatSpreadsheetML, nil
	case len(raw) > 0:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: cannot tell the format of %q", core.ErrUnsupportedFormat, name)
}

func looksLikeXML(raw []byte) bool {
	text, _, err := decodeText(raw[:min(len(raw), 512)])
	if err != nil {
		return false
	}
	return bytes.HasPrefix(bytes.TrimSpace(text), []byte("<"))
}

// processRows trims cells, makes headers unique and drops rows with no content
func (l *Loader) processRows(rows [][]string) *RawData {
	data := &RawData{Headers: []string{}, Rows: [][]string{}}

	// The header is the first row with any content.
	start := 0
	for start < len(rows) && blankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return data
	}
	data.Headers = uniqueHeaders(rows[start])

	for _, row := range rows[start+1:] {
		if blankRow(row) {
			continue
		}
		if l.config.MaxRows > 0 && len(data.Rows) >= l.config.MaxRows {
			l.logger.Warn("row limit %d reached, remaining rows ignored", l.config.MaxRows)
			break
		}
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
		}
		data.Rows = append(data.Rows, cells)
	}
	return data
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// uniqueHeaders trims names, labels blanks "Unnamed_<n>" and suffixes repeats "_2", "_3".
func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed_" + strconv.Itoa(i+1)
		}
		candidate := name
		for n := 2; seen[candidate]; n++ {
			candidate = name + "_" + strconv.Itoa(n)
		}
		seen[candidate] = true
		headers[i] = candidate
	}
	return headers
}
