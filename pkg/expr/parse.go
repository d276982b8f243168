package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MalformedExpressionError reports an expression string that cannot be turned
// into a tree: an unknown token, a wrong argument count, or trailing input.
type MalformedExpressionError struct {
	Input  string
	Pos    int
	Reason string
}

func (e *MalformedExpressionError) Error() string {
	return fmt.Sprintf("malformed expression %q at offset %d: %s", e.Input, e.Pos, e.Reason)
}

var unaryByName = map[string]UnaryOp{
	"neg": OpNeg,
	"cos": OpCos,
	"sin": OpSin,
}

var binaryByName = map[string]BinaryOp{
	"add": OpAdd,
	"sub": OpSub,
	"mul": OpMul,
	"div": OpDiv,
	"pow": OpPow,
}

// Parse reads the canonical prefix form, e.g. "add(mul(x, x), -1)".
func Parse(s string) (ExprNode, error) {
	p := &parser{input: s}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, p.errorf("unexpected trailing input %q", p.input[p.pos:])
	}
	return node, nil
}

// MustParse is like Parse but panics on error. Intended for fixed equations.
func MustParse(s string) ExprNode {
	node, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return node
}

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...any) error {
	return &MalformedExpressionError{Input: p.input, Pos: p.pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		if p.pos >= len(p.input) {
			return p.errorf("expected %q, got end of input", c)
		}
		return p.errorf("expected %q, got %q", c, p.input[p.pos])
	}
	p.pos++
	return nil
}

func (p *parser) parseExpr() (ExprNode, error) {
	c := p.peek()
	switch {
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.parseNumber()
	case isIdentStart(c):
		return p.parseCall()
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *parser) parseNumber() (ExprNode, error) {
	start := p.pos
	if p.input[p.pos] == '-' || p.input[p.pos] == '+' {
		p.pos++
	}
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if isDigit(c) || c == '.' {
			p.pos++
			continue
		}
		if (c == 'e' || c == 'E') && p.pos > start {
			p.pos++
			if p.pos < len(p.input) && (p.input[p.pos] == '-' || p.input[p.pos] == '+') {
				p.pos++
			}
			continue
		}
		break
	}
	lit := p.input[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("invalid number %q", lit)
	}
	return &ConstNode{Val: v}, nil
}

func (p *parser) parseCall() (ExprNode, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentPart(p.input[p.pos]) {
		p.pos++
	}
	name := strings.ToLower(p.input[start:p.pos])

	if name == "x" || name == "arg0" {
		return &VarNode{}, nil
	}

	uop, isUnary := unaryByName[name]
	bop, isBinary := binaryByName[name]
	if !isUnary && !isBinary {
		p.pos = start
		return nil, p.errorf("unknown primitive %q", name)
	}

	if err := p.expect('('); err != nil {
		return nil, err
	}
	var args []ExprNode
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek() != ',' {
			break
		}
		p.pos++
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}

	if isUnary {
		if len(args) != 1 {
			return nil, &MalformedExpressionError{Input: p.input, Pos: start,
				Reason: fmt.Sprintf("%s takes 1 argument, got %d", name, len(args))}
		}
		return &UnaryNode{Op: uop, Child: args[0]}, nil
	}
	if len(args) != 2 {
		return nil, &MalformedExpressionError{Input: p.input, Pos: start,
			Reason: fmt.Sprintf("%s takes 2 arguments, got %d", name, len(args))}
	}
	return &BinaryNode{Op: bop, Left: args[0], Right: args[1]}, nil
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || unicode.IsLetter(rune(c)) }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
