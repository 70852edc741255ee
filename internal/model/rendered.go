package model

// RenderedRow carries the raw (post-computed) values used for sorting and
// programmatic access, plus the parallel display text per visible column.
type RenderedRow struct {
	Path    string            `json:"path"`
	Values  map[string]Value  `json:"values"`
	Display map[string]string `json:"display"`
}

// RenderedTable is the engine's output for one render pass. Recomputed on
// every call, never persisted.
type RenderedTable struct {
	AllColumns     []string      `json:"all_columns"`
	VisibleColumns []string      `json:"visible_columns"`
	Rows           []RenderedRow `json:"rows"`
}
