package expr

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/logview-dev/logview/internal/model"
)

// Precedence-climbing parser for the computed-column grammar:
//
//	expr    := or
//	or      := and ( "||" and )*
//	and     := cmp ( "&&" cmp )*
//	cmp     := add ( ("=="|"!="|"<"|"<="|">"|">=") add )?
//	add     := mul ( ("+"|"-") mul )*
//	mul     := unary ( ("*"|"/"|"%") unary )*
//	unary   := ("-"|"!") unary | primary
//	primary := number | string | "true" | "false" | "null"
//	         | "row" "[" string "]" | "(" expr ")"

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokString
	tokIdent
	tokOp
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

func lex(input string) ([]token, *EvalError) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9' || c == '.' && i+1 < len(input) && input[i+1] >= '0' && input[i+1] <= '9':
			start := i
			for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
				i++
			}
			text := input[start:i]
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, evalErrf("invalid number literal %q", text)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, num: n, pos: start})
		case c == '"' || c == '\'':
			quote := c
			start := i
			i++
			var sb strings.Builder
			closed := false
			for i < len(input) {
				if input[i] == '\\' && i+1 < len(input) {
					sb.WriteByte(input[i+1])
					i += 2
					continue
				}
				if input[i] == quote {
					closed = true
					i++
					break
				}
				sb.WriteByte(input[i])
				i++
			}
			if !closed {
				return nil, evalErrf("unterminated string literal at offset %d", start)
			}
			tokens = append(tokens, token{kind: tokString, text: sb.String(), pos: start})
		case unicode.IsLetter(rune(c)) || c == '_':
			start := i
			for i < len(input) && (unicode.IsLetter(rune(input[i])) || unicode.IsDigit(rune(input[i])) || input[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: input[start:i], pos: start})
		default:
			two := ""
			if i+1 < len(input) {
				two = input[i : i+2]
			}
			switch two {
			case "==", "!=", "<=", ">=", "&&", "||":
				tokens = append(tokens, token{kind: tokOp, text: two, pos: i})
				i += 2
				continue
			}
			switch c {
			case '+', '-', '*', '/', '%', '<', '>', '!', '(', ')', '[', ']':
				tokens = append(tokens, token{kind: tokOp, text: string(c), pos: i})
				i++
			default:
				return nil, evalErrf("unexpected character %q at offset %d", string(c), i)
			}
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(input)})
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
}

func parse(input string) (node, *EvalError) {
	if strings.TrimSpace(input) == "" {
		return nil, evalErrf("empty expression")
	}
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, evalErrf("unexpected token %q after expression", p.peek().text)
	}
	return n, nil
}

func (p *parser) peek() token  { return p.tokens[p.pos] }
func (p *parser) next() token  { t := p.tokens[p.pos]; p.pos++; return t }
func (p *parser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseOr() (node, *EvalError) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("||")
		if !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseAnd() (node, *EvalError) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("&&")
		if !ok {
			return left, nil
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseComparison() (node, *EvalError) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	op, ok := p.acceptOp("==", "!=", "<=", ">=", "<", ">")
	if !ok {
		return left, nil
	}
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return binaryNode{op: op, left: left, right: right}, nil
}

func (p *parser) parseAdditive() (node, *EvalError) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseMultiplicative() (node, *EvalError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("*", "/", "%")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, *EvalError) {
	if op, ok := p.acceptOp("-", "!"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, *EvalError) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return literalNode{value: model.Number(t.num)}, nil
	case tokString:
		return literalNode{value: model.String(t.text)}, nil
	case tokIdent:
		switch t.text {
		case "true":
			return literalNode{value: model.BoolValue(true)}, nil
		case "false":
			return literalNode{value: model.BoolValue(false)}, nil
		case "null":
			return literalNode{value: model.Null()}, nil
		case "row":
			return p.parseFieldLookup()
		default:
			return nil, evalErrf("unknown identifier %q", t.text)
		}
	case tokOp:
		if t.text == "(" {
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if _, ok := p.acceptOp(")"); !ok {
				return nil, evalErrf("expected ')' at offset %d", p.peek().pos)
			}
			return inner, nil
		}
	}
	return nil, evalErrf("unexpected token %q at offset %d", t.text, t.pos)
}

func (p *parser) parseFieldLookup() (node, *EvalError) {
	if _, ok := p.acceptOp("["); !ok {
		return nil, evalErrf("expected '[' after row")
	}
	key := p.next()
	if key.kind != tokString {
		return nil, evalErrf("row index must be a string literal")
	}
	if _, ok := p.acceptOp("]"); !ok {
		return nil, evalErrf("expected ']' after row index")
	}
	return fieldNode{name: key.text}, nil
}
