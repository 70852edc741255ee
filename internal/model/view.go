package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

var validate = validator.New()

// ComputedColumn derives a per-row value by evaluating Expr against the
// row's raw fields. Name may shadow a raw field, in which case the computed
// value wins for both display and sort.
type ComputedColumn struct {
	Name string `json:"name" validate:"required"`
	Expr string `json:"expr" validate:"required"`
}

// SortConfig orders the non-pinned rows. An empty By keeps scan order.
type SortConfig struct {
	By        string `json:"by,omitempty"`
	Direction string `json:"direction" validate:"omitempty,oneof=asc desc"`
}

// ColumnConfig is the column-shape half of a view. Format and Computed are
// optional in persisted files; views saved before those features existed
// load with them empty.
type ColumnConfig struct {
	Order    []string          `json:"order"`
	Hidden   []string          `json:"hidden"`
	Alias    map[string]string `json:"alias"`
	Format   map[string]string `json:"format,omitempty"`
	Computed []ComputedColumn  `json:"computed,omitempty"`
}

// RowConfig is the row-ordering half of a view. PinnedIDs order is user
// intent and significant.
type RowConfig struct {
	PinnedIDs []string   `json:"pinned_ids"`
	Sort      SortConfig `json:"sort"`
}

// View is a named, persisted presentation configuration bound to a root.
// Edits produce new snapshots; render treats a View as read-only input.
type View struct {
	Name    string       `json:"name" validate:"required"`
	Pattern string       `json:"pattern" validate:"required"`
	Columns ColumnConfig `json:"columns"`
	Rows    RowConfig    `json:"rows"`
}

// DefaultView seeds a freshly created view.
func DefaultView(name, pattern string) View {
	v := View{Name: name, Pattern: pattern}
	v.Normalize()
	return v
}

// Normalize fills the defaults a hand-edited or legacy view file may omit,
// so consumers never see nil maps or an empty sort direction.
func (v *View) Normalize() {
	if len(v.Columns.Order) == 0 {
		v.Columns.Order = []string{"path"}
	}
	if v.Columns.Hidden == nil {
		v.Columns.Hidden = []string{}
	}
	if v.Columns.Alias == nil {
		v.Columns.Alias = map[string]string{}
	}
	if v.Columns.Format == nil {
		v.Columns.Format = map[string]string{}
	}
	if v.Columns.Computed == nil {
		v.Columns.Computed = []ComputedColumn{}
	}
	if v.Rows.PinnedIDs == nil {
		v.Rows.PinnedIDs = []string{}
	}
	if v.Rows.Sort.Direction == "" {
		v.Rows.Sort.Direction = SortAsc
	}
}

// ValidateName rejects empty names and names that would escape the views
// directory.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("view name cannot be empty")
	}
	if strings.ContainsAny(trimmed, `/\`) {
		return "", fmt.Errorf("view name %q cannot include path separators", trimmed)
	}
	return trimmed, nil
}

// Validate checks structural validity: non-empty name without separators, a
// compilable pattern, non-blank computed definitions with unique names.
// Alias uniqueness is a save-time concern enforced by the render engine.
func (v *View) Validate() error {
	if err := validate.Struct(v); err != nil {
		return err
	}
	if _, err := ValidateName(v.Name); err != nil {
		return err
	}
	if _, err := regexp.Compile(v.Pattern); err != nil {
		return fmt.Errorf("invalid regex pattern: %w", err)
	}
	seen := make(map[string]struct{}, len(v.Columns.Computed))
	for _, c := range v.Columns.Computed {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Expr) == "" {
			return fmt.Errorf("computed column name and expr cannot be blank")
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("computed column names must be unique: %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// Clone deep-copies a view so edits on the copy never leak into the
// snapshot a render is reading.
func (v View) Clone() View {
	out := v
	out.Columns.Order = append([]string(nil), v.Columns.Order...)
	out.Columns.Hidden = append([]string(nil), v.Columns.Hidden...)
	out.Columns.Alias = make(map[string]string, len(v.Columns.Alias))
	for k, a := range v.Columns.Alias {
		out.Columns.Alias[k] = a
	}
	out.Columns.Format = make(map[string]string, len(v.Columns.Format))
	for k, f := range v.Columns.Format {
		out.Columns.Format[k] = f
	}
	out.Columns.Computed = append([]ComputedColumn(nil), v.Columns.Computed...)
	out.Rows.PinnedIDs = append([]string(nil), v.Rows.PinnedIDs...)
	return out
}
