package model

// Record is one parsed log file. Path is the primary key: the file's
// root-relative path with forward-slash separators on every platform.
// Records are created fresh on each scan and never mutated afterwards.
type Record struct {
	Path   string           `json:"path"`
	Fields map[string]Value `json:"fields"`
}

// ScanWarning is a non-fatal file-level or field-level failure recorded
// during a scan.
type ScanWarning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ScanSummary is recomputed on every scan. matched_files <= total_files and
// parsed_records <= matched_files always hold.
type ScanSummary struct {
	TotalFiles    int `json:"total_files"`
	MatchedFiles  int `json:"matched_files"`
	ParsedRecords int `json:"parsed_records"`
	WarningCount  int `json:"warning_count"`
}
