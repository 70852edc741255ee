// Package scanner turns a directory tree of flat JSON log files into a set
// of records under a lenient-failure policy: every per-file or per-field
// problem degrades to a warning and never aborts the walk.
package scanner

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/logview-dev/logview/internal/model"
)

// DefaultIgnoredDirs are skipped during the walk: version control,
// dependency installs, virtualenvs, and the directory holding view files.
var DefaultIgnoredDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	".venv":        {},
	".logview":     {},
}

// Result is one scan's output. Records and Warnings are in lexical path
// order so repeated scans of an unchanged tree are byte-for-byte identical.
type Result struct {
	Records  []model.Record      `json:"records"`
	Warnings []model.ScanWarning `json:"warnings"`
	Summary  model.ScanSummary   `json:"summary"`
}

// Scan walks root, matches each file's root-relative path against pattern
// (a regular expression, searched unanchored), and parses every match as a
// flat JSON object. A nil ignoreDirs falls back to DefaultIgnoredDirs.
//
// Only two failures escape as errors: a root that is missing or not a
// directory, and a pattern that does not compile. Everything below that
// boundary becomes a warning.
func Scan(root, pattern string, ignoreDirs map[string]struct{}) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project root does not exist or is not a directory: %s", absRoot)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}

	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoredDirs
	}

	res := &Result{
		Records:  []model.Record{},
		Warnings: []model.ScanWarning{},
	}

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: warn and keep walking the rest.
			rel := relPath(absRoot, path)
			res.Warnings = append(res.Warnings, model.ScanWarning{
				Path:    rel,
				Message: fmt.Sprintf("Failed to read path: %v", err),
			})
			return nil
		}
		if d.IsDir() {
			if path != absRoot {
				if _, skip := ignoreDirs[d.Name()]; skip {
					return fs.SkipDir
				}
			}
			return nil
		}

		res.Summary.TotalFiles++
		rel := relPath(absRoot, path)
		if !re.MatchString(rel) {
			return nil
		}
		res.Summary.MatchedFiles++

		rec, warnings, ok := parseFile(path, rel)
		res.Warnings = append(res.Warnings, warnings...)
		if ok {
			res.Records = append(res.Records, rec)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", absRoot, walkErr)
	}

	res.Summary.ParsedRecords = len(res.Records)
	res.Summary.WarningCount = len(res.Warnings)
	return res, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// parseFile reads one matched file. A read or parse failure yields a
// file-level warning and no record; a non-scalar field yields a field-level
// warning and a null value while the rest of the record parses normally.
func parseFile(path, rel string) (model.Record, []model.ScanWarning, bool) {
	var warnings []model.ScanWarning

	raw, err := os.ReadFile(path)
	if err != nil {
		warnings = append(warnings, model.ScanWarning{
			Path:    rel,
			Message: fmt.Sprintf("Failed to read file: %v", err),
		})
		return model.Record{}, warnings, false
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		warnings = append(warnings, model.ScanWarning{
			Path:    rel,
			Message: fmt.Sprintf("Failed to parse JSON file: %v", err),
		})
		return model.Record{}, warnings, false
	}

	obj, isObject := decoded.(map[string]any)
	if !isObject {
		warnings = append(warnings, model.ScanWarning{
			Path:    rel,
			Message: "JSON root is not an object; file skipped.",
		})
		return model.Record{}, warnings, false
	}

	rec := model.Record{Path: rel, Fields: make(map[string]model.Value, len(obj))}

	// Sorted keys keep field-level warning order stable across runs.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == "path" {
			// The root-relative path always wins over a same-named payload key.
			continue
		}
		value, scalar := model.FromScalar(obj[key])
		if !scalar {
			warnings = append(warnings, model.ScanWarning{
				Path:    rel,
				Message: fmt.Sprintf("Field '%s' is not a scalar (array/object); coerced to null.", key),
			})
		}
		rec.Fields[key] = value
	}

	return rec, warnings, true
}
