package excel

// ExportConfig holds settings for sweep export
type ExportConfig struct {
	SheetName   string `json:"sheet_name"`
	WithSummary bool   `json:"with_summary"`
}

// SummarySheet is the sheet holding per-column summaries.
const SummarySheet = "Summary"

// DefaultExportConfig returns sensible defaults for sweep export
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		SheetName:   "Sweep",
		WithSummary: true,
	}
}
