package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logview-dev/logview/internal/model"
)

func testRow() map[string]model.Value {
	return map[string]model.Value{
		"path": model.String("run/a.json"),
		"loss": model.Number(0.5),
		"step": model.Number(10),
		"name": model.String("alpha"),
		"ok":   model.BoolValue(true),
		"gone": model.Null(),
	}
}

func TestEvaluate_Values(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want model.Value
	}{
		{"multiply fields", `row["loss"] * row["step"]`, model.Number(5)},
		{"arithmetic precedence", `1 + 2 * 3`, model.Number(7)},
		{"parentheses", `(1 + 2) * 3`, model.Number(9)},
		{"unary minus", `-row["step"]`, model.Number(-10)},
		{"modulo", `row["step"] % 3`, model.Number(1)},
		{"string concat", `row["name"] + "-v2"`, model.String("alpha-v2")},
		{"single quoted strings", `'a' + 'b'`, model.String("ab")},
		{"numeric comparison", `row["loss"] < 1`, model.BoolValue(true)},
		{"string comparison", `row["name"] >= "alpha"`, model.BoolValue(true)},
		{"equality across kinds is false", `row["step"] == "10"`, model.BoolValue(false)},
		{"null equality", `row["gone"] == null`, model.BoolValue(true)},
		{"logical and", `row["ok"] && row["loss"] < 1`, model.BoolValue(true)},
		{"logical or short-circuits", `true || row["nope"] == 1`, model.BoolValue(true)},
		{"not", `!row["ok"]`, model.BoolValue(false)},
		{"literals", `null == null`, model.BoolValue(true)},
		{"path is addressable", `row["path"]`, model.String("run/a.json")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.expr, testRow())
			require.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		contains string
	}{
		{"missing field", `row["missing"] * 2`, `unknown field "missing"`},
		{"divide by zero", `row["step"] / 0`, "division by zero"},
		{"modulo by zero", `row["step"] % 0`, "modulo by zero"},
		{"type mismatch add", `row["name"] + 1`, "cannot add"},
		{"type mismatch multiply", `row["name"] * 2`, "requires number operands"},
		{"null arithmetic", `row["gone"] + 1`, "cannot add"},
		{"ordering across kinds", `row["name"] < 1`, "cannot compare"},
		{"bool arithmetic", `row["ok"] + 1`, "cannot add"},
		{"and on non-bool", `1 && true`, "requires bool operands"},
		{"syntax error", `row["loss"] *`, "unexpected token"},
		{"unterminated string", `row["loss`, "unterminated string"},
		{"unknown identifier", `loss * 2`, "unknown identifier"},
		{"empty expression", ``, "empty expression"},
		{"trailing garbage", `1 + 2 )`, "unexpected token"},
		{"non-string index", `row[loss]`, "row index must be a string literal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(tc.expr, testRow())
			require.NotNil(t, err)
			assert.Contains(t, err.Message, tc.contains)
		})
	}
}

func TestEvaluate_NeverSeesComputedSiblings(t *testing.T) {
	// The row map the engine hands over holds raw fields only; a computed
	// column referencing another computed column fails like any missing key.
	_, err := Evaluate(`row["other_computed"]`, testRow())
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "unknown field")
}
