// Package engine turns cached raw records plus a view snapshot into the
// exact table the user sees. Rendering is pure: the same records and view
// always produce the same table, and nothing here touches the filesystem.
package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/logview-dev/logview/internal/expr"
	"github.com/logview-dev/logview/internal/format"
	"github.com/logview-dev/logview/internal/model"
)

var numericString = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)$`)

// AliasConflictError rejects a save whose alias mapping assigns the same
// display label to more than one column. The persisted view is untouched.
type AliasConflictError struct {
	Alias   string
	Columns []string
}

func (e *AliasConflictError) Error() string {
	return fmt.Sprintf("alias %q is assigned to multiple columns: %s",
		e.Alias, strings.Join(e.Columns, ", "))
}

// ValidateForSave enforces the persistence-boundary invariants render
// itself does not care about: alias values must be unique. Blank aliases
// are ignored.
func ValidateForSave(view model.View) error {
	byAlias := make(map[string][]string)
	for column, alias := range view.Columns.Alias {
		if strings.TrimSpace(alias) == "" {
			continue
		}
		byAlias[alias] = append(byAlias[alias], column)
	}
	aliases := make([]string, 0, len(byAlias))
	for alias := range byAlias {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		columns := byAlias[alias]
		if len(columns) > 1 {
			sort.Strings(columns)
			return &AliasConflictError{Alias: alias, Columns: columns}
		}
	}
	return nil
}

// Render applies the view to the records: resolve columns, evaluate
// computed columns, produce display text, and order rows pinned-first.
func Render(records []model.Record, view model.View) model.RenderedTable {
	allColumns := resolveColumns(records, view)

	hidden := make(map[string]struct{}, len(view.Columns.Hidden))
	for _, name := range view.Columns.Hidden {
		hidden[name] = struct{}{}
	}
	visible := make([]string, 0, len(allColumns))
	for _, name := range allColumns {
		if _, ok := hidden[name]; !ok {
			visible = append(visible, name)
		}
	}

	rows := make([]model.RenderedRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, buildRow(rec, view, allColumns, visible))
	}
	rows = orderRows(rows, view)

	return model.RenderedTable{
		AllColumns:     allColumns,
		VisibleColumns: visible,
		Rows:           rows,
	}
}

// resolveColumns builds the stable union: configured order first, then
// columns discovered across the records in first-seen order, then computed
// names in definition order. First occurrence wins; later re-occurrences
// are dropped, not moved.
func resolveColumns(records []model.Record, view model.View) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, name := range view.Columns.Order {
		add(name)
	}
	add("path")
	for _, rec := range records {
		keys := make([]string, 0, len(rec.Fields))
		for key := range rec.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			add(key)
		}
	}
	for _, computed := range view.Columns.Computed {
		add(computed.Name)
	}
	return out
}

// buildRow evaluates computed columns against the record's raw fields only
// (computed columns never see each other), then renders display text for
// the visible columns.
func buildRow(rec model.Record, view model.View, allColumns, visible []string) model.RenderedRow {
	raw := make(map[string]model.Value, len(rec.Fields)+1)
	raw["path"] = model.String(rec.Path)
	for name, v := range rec.Fields {
		raw[name] = v
	}

	values := make(map[string]model.Value, len(allColumns))
	for name, v := range raw {
		values[name] = v
	}
	for _, computed := range view.Columns.Computed {
		result, err := expr.Evaluate(computed.Expr, raw)
		if err != nil {
			result = model.ErrorValue(err.Message)
		}
		values[computed.Name] = result
	}

	display := make(map[string]string, len(visible))
	for _, column := range visible {
		v, present := values[column]
		if !present {
			display[column] = "null"
			continue
		}
		if v.IsError() {
			// Error markers show their own text; templates do not apply.
			display[column] = v.Text()
			continue
		}
		display[column] = format.Render(view.Columns.Format[column], v)
	}

	return model.RenderedRow{Path: rec.Path, Values: values, Display: display}
}

// orderRows puts pinned rows first, in pinned_ids order, then the rest
// sorted by the view's sort column (or left in scan order). Pinned rows are
// never interleaved with or reordered by the column sort.
func orderRows(rows []model.RenderedRow, view model.View) []model.RenderedRow {
	pinnedIndex := make(map[string]int, len(view.Rows.PinnedIDs))
	for i, id := range view.Rows.PinnedIDs {
		pinnedIndex[id] = i
	}

	pinned := make([]model.RenderedRow, 0, len(pinnedIndex))
	others := make([]model.RenderedRow, 0, len(rows))
	for _, row := range rows {
		if _, ok := pinnedIndex[row.Path]; ok {
			pinned = append(pinned, row)
		} else {
			others = append(others, row)
		}
	}
	sort.SliceStable(pinned, func(i, j int) bool {
		return pinnedIndex[pinned[i].Path] < pinnedIndex[pinned[j].Path]
	})

	if by := view.Rows.Sort.By; by != "" {
		desc := view.Rows.Sort.Direction == model.SortDesc
		sort.SliceStable(others, func(i, j int) bool {
			a := sortKeyFor(others[i].Values, by)
			b := sortKeyFor(others[j].Values, by)
			return a.less(b, desc)
		})
	}

	return append(pinned, others...)
}

// sortKey ranks values numeric < text < null. Direction applies only to the
// comparison within a rank class; null and missing values sort last either
// way.
type sortKey struct {
	rank int // 0 numeric, 1 text, 2 null/missing
	num  float64
	str  string
}

func sortKeyFor(values map[string]model.Value, column string) sortKey {
	v, ok := values[column]
	if !ok || v.Kind == model.KindNull {
		return sortKey{rank: 2}
	}
	switch v.Kind {
	case model.KindNumber:
		return sortKey{rank: 0, num: v.Num}
	case model.KindString:
		trimmed := strings.TrimSpace(v.Str)
		if numericString.MatchString(trimmed) {
			if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return sortKey{rank: 0, num: n}
			}
		}
		return sortKey{rank: 1, str: v.Str}
	default:
		// Bools and error markers compare as their text.
		return sortKey{rank: 1, str: v.Text()}
	}
}

func (a sortKey) less(b sortKey, desc bool) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	switch a.rank {
	case 0:
		if desc {
			return a.num > b.num
		}
		return a.num < b.num
	case 1:
		if desc {
			return a.str > b.str
		}
		return a.str < b.str
	default:
		return false
	}
}
