package excel

// LoaderConfig holds configuration for reading optimization reports
type LoaderConfig struct {
	// Delimiter forces the CSV field separator; zero means auto-detect among , ; and tab.
	Delimiter      rune           `json:"delimiter"`
	// Sheet selects a worksheet by name for XLSX and SpreadsheetML; empty means the first one.
	Sheet          string         `json:"sheet"`
	// MaxRows caps the number of data rows read; zero means no limit.
	MaxRows        int            `json:"max_rows"`
	// MaxColumns bounds the positional width a SpreadsheetML cell may claim through ss:Index;
	// zero means DefaultMaxColumns.
	MaxColumns     int            `json:"max_columns"`
	CoercionConfig CoercionConfig `json:"coercion_config"`
}

// DefaultMaxColumns matches the XLSX column limit (XFD).
const DefaultMaxColumns = 16384

// DefaultLoaderConfig returns sensible defaults for report loading
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		MaxColumns:     DefaultMaxColumns,
		CoercionConfig: DefaultCoercionConfig(),
	}
}
