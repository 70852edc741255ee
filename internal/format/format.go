// Package format applies per-column display templates to raw values. A
// template interpolates the single implicit variable d, optionally with a
// format spec: {d} or {d:<fill><align><sign><0><width>[.<prec>]<type>} with
// types d, f, e, s, x, X and %. Formatting affects display text only; it
// never feeds sorting or expression evaluation.
package format

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/logview-dev/logview/internal/model"
)

// ErrorPrefix starts every failed-template cell text.
const ErrorPrefix = "FORMAT_ERROR: "

var numericString = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)$`)

// Render produces the display text for one cell. Null and missing values
// render as the literal text "null" regardless of template; any template
// failure yields "FORMAT_ERROR: <cause>" instead of propagating.
func Render(template string, v model.Value) string {
	if v.Kind == model.KindNull {
		return "null"
	}
	if template == "" {
		return v.Text()
	}
	out, err := interpolate(template, v)
	if err != nil {
		return ErrorPrefix + err.Error()
	}
	return out
}

// interpolate expands {d} / {d:spec} placeholders; {{ and }} escape braces.
func interpolate(template string, v model.Value) (string, error) {
	var sb strings.Builder
	i := 0
	for i < len(template) {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				sb.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unbalanced '{' in template %q", template)
			}
			field := template[i+1 : i+end]
			expanded, err := expandField(field, v)
			if err != nil {
				return "", err
			}
			sb.WriteString(expanded)
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				sb.WriteByte('}')
				i += 2
				continue
			}
			return "", fmt.Errorf("single '}' in template %q", template)
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), nil
}

func expandField(field string, v model.Value) (string, error) {
	name, spec := field, ""
	if idx := strings.IndexByte(field, ':'); idx >= 0 {
		name, spec = field[:idx], field[idx+1:]
	}
	if name != "d" {
		return "", fmt.Errorf("unknown template variable %q (only 'd' is bound)", name)
	}
	return applySpec(spec, v)
}

type formatSpec struct {
	fill      byte
	align     byte // '<', '>', '^' or 0 for default
	sign      byte // '+', '-', ' ' or 0
	zero      bool
	width     int
	precision int // -1 when absent
	verb      byte // 'd', 'f', 'e', 's', 'x', 'X', '%' or 0
}

func parseSpec(spec string) (formatSpec, error) {
	fs := formatSpec{precision: -1}
	i := 0

	// [[fill]align]
	if len(spec) >= 2 && (spec[1] == '<' || spec[1] == '>' || spec[1] == '^') {
		fs.fill, fs.align = spec[0], spec[1]
		i = 2
	} else if len(spec) >= 1 && (spec[0] == '<' || spec[0] == '>' || spec[0] == '^') {
		fs.align = spec[0]
		i = 1
	}

	if i < len(spec) && (spec[i] == '+' || spec[i] == '-' || spec[i] == ' ') {
		fs.sign = spec[i]
		i++
	}
	if i < len(spec) && spec[i] == '0' {
		fs.zero = true
		i++
	}
	start := i
	for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
		i++
	}
	if i > start {
		w, err := strconv.Atoi(spec[start:i])
		if err != nil {
			return fs, fmt.Errorf("invalid width in format spec %q", spec)
		}
		fs.width = w
	}
	if i < len(spec) && spec[i] == '.' {
		i++
		start = i
		for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
			i++
		}
		if i == start {
			return fs, fmt.Errorf("missing precision digits in format spec %q", spec)
		}
		p, err := strconv.Atoi(spec[start:i])
		if err != nil {
			return fs, fmt.Errorf("invalid precision in format spec %q", spec)
		}
		fs.precision = p
	}
	if i < len(spec) {
		switch spec[i] {
		case 'd', 'f', 'e', 's', 'x', 'X', '%':
			fs.verb = spec[i]
			i++
		default:
			return fs, fmt.Errorf("unknown format type %q in spec %q", string(spec[i]), spec)
		}
	}
	if i != len(spec) {
		return fs, fmt.Errorf("malformed format spec %q", spec)
	}
	return fs, nil
}

func (fs formatSpec) numeric() bool {
	switch fs.verb {
	case 'd', 'f', 'e', 'x', 'X', '%':
		return true
	}
	// A zero flag or an explicit sign implies a numeric spec.
	return fs.verb == 0 && (fs.zero || fs.sign != 0)
}

func applySpec(spec string, v model.Value) (string, error) {
	fs, err := parseSpec(spec)
	if err != nil {
		return "", err
	}

	var body string
	if fs.numeric() {
		n, ok := asNumber(v)
		if !ok {
			return "", fmt.Errorf("cannot apply numeric format %q to %s", spec, describe(v))
		}
		body, err = formatNumber(fs, n)
		if err != nil {
			return "", err
		}
		// Zero padding without explicit alignment pads after the sign.
		if fs.zero && fs.align == 0 && len(body) < fs.width {
			body = zeroPad(body, fs.width)
		}
	} else {
		if fs.verb == 's' && v.Kind == model.KindNumber {
			body = model.FormatNumber(v.Num)
		} else {
			body = v.Text()
		}
		if fs.precision >= 0 && fs.precision < len(body) {
			body = body[:fs.precision]
		}
	}

	return pad(fs, body, fs.numeric()), nil
}

func formatNumber(fs formatSpec, n float64) (string, error) {
	var body string
	switch fs.verb {
	case 'd', 0:
		if fs.verb == 'd' && fs.precision >= 0 {
			return "", fmt.Errorf("precision is not allowed with format type 'd'")
		}
		if fs.verb == 'd' || fs.precision < 0 {
			if n != math.Trunc(n) {
				if fs.verb == 'd' {
					return "", fmt.Errorf("format type 'd' requires an integer, got %s", model.FormatNumber(n))
				}
				body = strconv.FormatFloat(n, 'g', -1, 64)
				break
			}
			body = strconv.FormatInt(int64(n), 10)
			break
		}
		body = strconv.FormatFloat(n, 'f', fs.precision, 64)
	case 'f':
		prec := fs.precision
		if prec < 0 {
			prec = 6
		}
		body = strconv.FormatFloat(n, 'f', prec, 64)
	case 'e':
		prec := fs.precision
		if prec < 0 {
			prec = 6
		}
		body = strconv.FormatFloat(n, 'e', prec, 64)
	case 'x', 'X':
		if n != math.Trunc(n) {
			return "", fmt.Errorf("format type %q requires an integer, got %s", string(fs.verb), model.FormatNumber(n))
		}
		body = strconv.FormatInt(int64(math.Abs(n)), 16)
		if fs.verb == 'X' {
			body = strings.ToUpper(body)
		}
		if n < 0 {
			body = "-" + body
		}
	case '%':
		prec := fs.precision
		if prec < 0 {
			prec = 6
		}
		body = strconv.FormatFloat(n*100, 'f', prec, 64) + "%"
	}

	if fs.sign == '+' && n >= 0 && !strings.HasPrefix(body, "+") {
		body = "+" + body
	} else if fs.sign == ' ' && n >= 0 {
		body = " " + body
	}
	return body, nil
}

// zeroPad inserts zeros between the sign and the digits.
func zeroPad(body string, width int) string {
	sign := ""
	if len(body) > 0 && (body[0] == '-' || body[0] == '+' || body[0] == ' ') {
		sign, body = body[:1], body[1:]
	}
	for len(sign)+len(body) < width {
		body = "0" + body
	}
	return sign + body
}

func pad(fs formatSpec, body string, numeric bool) string {
	if fs.width <= len(body) {
		return body
	}
	fill := fs.fill
	if fill == 0 {
		fill = ' '
	}
	align := fs.align
	if align == 0 {
		// Python defaults: numbers right-align, everything else left-aligns.
		if numeric {
			align = '>'
		} else {
			align = '<'
		}
	}
	gap := fs.width - len(body)
	switch align {
	case '<':
		return body + strings.Repeat(string(fill), gap)
	case '^':
		left := gap / 2
		return strings.Repeat(string(fill), left) + body + strings.Repeat(string(fill), gap-left)
	default:
		return strings.Repeat(string(fill), gap) + body
	}
}

// asNumber accepts numbers directly and coerces numeric-looking strings, so
// a template like {d:.2f} works on a "0.5" scanned as a string. Bools are
// not numbers.
func asNumber(v model.Value) (float64, bool) {
	switch v.Kind {
	case model.KindNumber:
		return v.Num, true
	case model.KindString:
		trimmed := strings.TrimSpace(v.Str)
		if numericString.MatchString(trimmed) {
			n, err := strconv.ParseFloat(trimmed, 64)
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func describe(v model.Value) string {
	switch v.Kind {
	case model.KindString:
		return fmt.Sprintf("string %q", v.Str)
	case model.KindBool:
		return fmt.Sprintf("bool %v", v.Bool)
	case model.KindError:
		return "error value"
	default:
		return "value " + v.Text()
	}
}
