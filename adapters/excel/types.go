package excel

// Format names the file layout a table was read from
type Format string

const (
	FormatCSV           Format = "csv"
	FormatXLSX          Format = "xlsx"
	FormatSpreadsheetML Format = "xml"
)

// RawData is a sheet of trimmed cell text before coercion
type RawData struct {
	Headers []string   // Column headers, unique and non-empty
	Rows    [][]string // Data rows in file order
}
