// Package expr evaluates single-expression computed-column formulas against
// one record's raw fields. The grammar is deliberately small: literals,
// row["field"] lookup, arithmetic, comparison, and boolean operators over
// the typed value union. Every failure mode, from a syntax error to a
// divide by zero, comes back as an *EvalError; evaluation never panics past
// this boundary.
package expr

import (
	"fmt"

	"github.com/logview-dev/logview/internal/model"
)

// EvalError describes one failed evaluation. It is rendered into the cell
// as "ERROR: <message>" and never aborts the surrounding render pass.
type EvalError struct {
	Message string
}

func (e *EvalError) Error() string { return e.Message }

func evalErrf(format string, args ...any) *EvalError {
	return &EvalError{Message: fmt.Sprintf(format, args...)}
}

// Evaluate parses and evaluates expression against the row's raw fields.
// Computed columns are single-pass and non-chaining: the row map must hold
// scanner output only, never other computed values.
func Evaluate(expression string, row map[string]model.Value) (model.Value, *EvalError) {
	node, err := parse(expression)
	if err != nil {
		return model.Value{}, err
	}
	return node.eval(row)
}

type node interface {
	eval(row map[string]model.Value) (model.Value, *EvalError)
}

type literalNode struct{ value model.Value }

func (n literalNode) eval(map[string]model.Value) (model.Value, *EvalError) {
	return n.value, nil
}

type fieldNode struct{ name string }

func (n fieldNode) eval(row map[string]model.Value) (model.Value, *EvalError) {
	v, ok := row[n.name]
	if !ok {
		return model.Value{}, evalErrf("unknown field %q", n.name)
	}
	if v.IsError() {
		return model.Value{}, evalErrf("field %q holds an error value", n.name)
	}
	return v, nil
}

type unaryNode struct {
	op      string
	operand node
}

func (n unaryNode) eval(row map[string]model.Value) (model.Value, *EvalError) {
	v, err := n.operand.eval(row)
	if err != nil {
		return model.Value{}, err
	}
	switch n.op {
	case "-":
		if v.Kind != model.KindNumber {
			return model.Value{}, evalErrf("unary '-' requires a number, got %s", kindName(v))
		}
		return model.Number(-v.Num), nil
	case "!":
		if v.Kind != model.KindBool {
			return model.Value{}, evalErrf("unary '!' requires a bool, got %s", kindName(v))
		}
		return model.BoolValue(!v.Bool), nil
	}
	return model.Value{}, evalErrf("unknown unary operator %q", n.op)
}

type binaryNode struct {
	op          string
	left, right node
}

func (n binaryNode) eval(row map[string]model.Value) (model.Value, *EvalError) {
	left, err := n.left.eval(row)
	if err != nil {
		return model.Value{}, err
	}

	// Short-circuit booleans before evaluating the right side.
	if n.op == "&&" || n.op == "||" {
		if left.Kind != model.KindBool {
			return model.Value{}, evalErrf("'%s' requires bool operands, got %s", n.op, kindName(left))
		}
		if n.op == "&&" && !left.Bool {
			return model.BoolValue(false), nil
		}
		if n.op == "||" && left.Bool {
			return model.BoolValue(true), nil
		}
		right, err := n.right.eval(row)
		if err != nil {
			return model.Value{}, err
		}
		if right.Kind != model.KindBool {
			return model.Value{}, evalErrf("'%s' requires bool operands, got %s", n.op, kindName(right))
		}
		return model.BoolValue(right.Bool), nil
	}

	right, err := n.right.eval(row)
	if err != nil {
		return model.Value{}, err
	}

	switch n.op {
	case "+":
		if left.Kind == model.KindNumber && right.Kind == model.KindNumber {
			return model.Number(left.Num + right.Num), nil
		}
		if left.Kind == model.KindString && right.Kind == model.KindString {
			return model.String(left.Str + right.Str), nil
		}
		return model.Value{}, evalErrf("cannot add %s and %s", kindName(left), kindName(right))
	case "-", "*", "/", "%":
		if left.Kind != model.KindNumber || right.Kind != model.KindNumber {
			return model.Value{}, evalErrf("'%s' requires number operands, got %s and %s",
				n.op, kindName(left), kindName(right))
		}
		switch n.op {
		case "-":
			return model.Number(left.Num - right.Num), nil
		case "*":
			return model.Number(left.Num * right.Num), nil
		case "/":
			if right.Num == 0 {
				return model.Value{}, evalErrf("division by zero")
			}
			return model.Number(left.Num / right.Num), nil
		default:
			if right.Num == 0 {
				return model.Value{}, evalErrf("modulo by zero")
			}
			l, r := int64(left.Num), int64(right.Num)
			return model.Number(float64(l % r)), nil
		}
	case "==", "!=":
		eq := valuesEqual(left, right)
		if n.op == "!=" {
			eq = !eq
		}
		return model.BoolValue(eq), nil
	case "<", "<=", ">", ">=":
		cmp, cmpErr := compareOrdered(left, right)
		if cmpErr != nil {
			return model.Value{}, cmpErr
		}
		switch n.op {
		case "<":
			return model.BoolValue(cmp < 0), nil
		case "<=":
			return model.BoolValue(cmp <= 0), nil
		case ">":
			return model.BoolValue(cmp > 0), nil
		default:
			return model.BoolValue(cmp >= 0), nil
		}
	}
	return model.Value{}, evalErrf("unknown operator %q", n.op)
}

func valuesEqual(a, b model.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case model.KindNumber:
		return a.Num == b.Num
	case model.KindString:
		return a.Str == b.Str
	case model.KindBool:
		return a.Bool == b.Bool
	case model.KindNull:
		return true
	}
	return false
}

func compareOrdered(a, b model.Value) (int, *EvalError) {
	if a.Kind == model.KindNumber && b.Kind == model.KindNumber {
		switch {
		case a.Num < b.Num:
			return -1, nil
		case a.Num > b.Num:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.Kind == model.KindString && b.Kind == model.KindString {
		switch {
		case a.Str < b.Str:
			return -1, nil
		case a.Str > b.Str:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, evalErrf("cannot compare %s and %s", kindName(a), kindName(b))
}

func kindName(v model.Value) string {
	switch v.Kind {
	case model.KindString:
		return "string"
	case model.KindNumber:
		return "number"
	case model.KindBool:
		return "bool"
	case model.KindError:
		return "error"
	default:
		return "null"
	}
}
