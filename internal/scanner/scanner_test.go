package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logview-dev/logview/internal/model"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestScan_RecordsWarningsAndSummary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "run/a.scaler.json", `{"loss": 0.5, "step": 10, "ok": true, "note": null}`)
	writeFile(t, root, "run/b.scaler.json", `{"loss": 0.9, "tags": ["x"], "meta": {"k": 1}}`)
	writeFile(t, root, "run/broken.scaler.json", `{not json`)
	writeFile(t, root, "run/list.scaler.json", `[1, 2, 3]`)
	writeFile(t, root, "run/other.txt", `ignored by pattern`)
	writeFile(t, root, ".git/config.scaler.json", `{"never": 1}`)
	writeFile(t, root, "node_modules/dep/x.scaler.json", `{"never": 1}`)
	writeFile(t, root, ".logview/views/default.json", `{"name":"default"}`)

	res, err := Scan(root, `\.scaler\.json$`, nil)
	require.NoError(t, err)

	// Ignored directories do not even count toward total_files.
	assert.Equal(t, 5, res.Summary.TotalFiles)
	assert.Equal(t, 4, res.Summary.MatchedFiles)
	assert.Equal(t, 2, res.Summary.ParsedRecords)
	assert.Equal(t, res.Summary.WarningCount, len(res.Warnings))
	assert.LessOrEqual(t, res.Summary.MatchedFiles, res.Summary.TotalFiles)
	assert.LessOrEqual(t, res.Summary.ParsedRecords, res.Summary.MatchedFiles)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "run/a.scaler.json", res.Records[0].Path)
	assert.Equal(t, "run/b.scaler.json", res.Records[1].Path)

	a := res.Records[0]
	assert.Equal(t, model.Number(0.5), a.Fields["loss"])
	assert.Equal(t, model.Number(10), a.Fields["step"])
	assert.Equal(t, model.BoolValue(true), a.Fields["ok"])
	assert.Equal(t, model.Null(), a.Fields["note"])

	// Non-scalar fields coerce to null with a field-level warning while the
	// rest of the record parses normally.
	b := res.Records[1]
	assert.Equal(t, model.Number(0.9), b.Fields["loss"])
	assert.Equal(t, model.Null(), b.Fields["tags"])
	assert.Equal(t, model.Null(), b.Fields["meta"])

	var fieldWarnings, fileWarnings int
	for _, w := range res.Warnings {
		switch w.Path {
		case "run/b.scaler.json":
			fieldWarnings++
		case "run/broken.scaler.json", "run/list.scaler.json":
			fileWarnings++
		default:
			t.Fatalf("unexpected warning path %q", w.Path)
		}
	}
	assert.Equal(t, 2, fieldWarnings)
	assert.Equal(t, 2, fileWarnings)
}

func TestScan_PathFieldAlwaysWinsOverPayload(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "x.json", `{"path": "liar", "v": 1}`)

	res, err := Scan(root, `\.json$`, nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "x.json", res.Records[0].Path)
	_, hasPathField := res.Records[0].Fields["path"]
	assert.False(t, hasPathField)
}

func TestScan_IsIdempotentForUnchangedTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b/two.json", `{"v": 2}`)
	writeFile(t, root, "a/one.json", `{"v": 1}`)
	writeFile(t, root, "a/bad.json", `nope`)

	first, err := Scan(root, `\.json$`, nil)
	require.NoError(t, err)
	second, err := Scan(root, `\.json$`, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Warnings, second.Warnings)

	// Lexical path order.
	require.Len(t, first.Records, 2)
	assert.Equal(t, "a/one.json", first.Records[0].Path)
	assert.Equal(t, "b/two.json", first.Records[1].Path)
}

func TestScan_PatternIsRegexNotGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "metrics.json", `{"v": 1}`)
	writeFile(t, root, "metricsXjson", `{"v": 2}`)

	// Unescaped dot matches any character: both files match.
	res, err := Scan(root, `metrics.json`, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.MatchedFiles)
}

func TestScan_StructuralFailures(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), `.*`, nil)
	require.Error(t, err)

	_, err = Scan(t.TempDir(), `([`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid regex pattern")
}

func TestScan_EmptyRoot(t *testing.T) {
	res, err := Scan(t.TempDir(), `.*`, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ScanSummary{}, res.Summary)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Warnings)
}
