package circuit

import (
	"fmt"

	"github.com/yuefan98/NLEIS-Toolbox/ecm/element"
)

// parser is a recursive-descent parser over the cleaned description.
type parser struct {
	input   string
	pos     int
	circuit *Circuit
}

// parseSeries parses a series chain: term ('-' term)*.
func (p *parser) parseSeries() (node, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	children := []node{first}

	for p.pos < len(p.input) && p.input[p.pos] == '-' {
		p.pos++

		term, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		children = append(children, term)
	}

	if len(children) == 1 {
		return children[0], nil
	}

	return seriesNode{children: children}, nil
}

// parseTerm parses one series term: an operator group or an element label.
func (p *parser) parseTerm() (node, error) {
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("%w: unexpected end of description", ErrBadDescription)
	}

	if p.peekOperator('p') {
		args, err := p.parseGroup('p')
		if err != nil {
			return nil, err
		}

		if len(args) < 2 {
			return nil, fmt.Errorf("%w: p(...) needs at least 2 operands", ErrBadDescription)
		}

		return parallelNode{children: args}, nil
	}

	if p.peekOperator('d') {
		args, err := p.parseGroup('d')
		if err != nil {
			return nil, err
		}

		if len(args) != 2 {
			return nil, fmt.Errorf("%w: d(...) takes exactly 2 operands, got %d", ErrBadDescription, len(args))
		}

		return diffNode{a: args[0], b: args[1]}, nil
	}

	return p.parseElement()
}

// peekOperator reports whether an operator group like "p(" starts at the
// current position. A following letter means the token is an element name
// instead (e.g. "p" in a hypothetical "pX" label).
func (p *parser) peekOperator(op byte) bool {
	return p.pos+1 < len(p.input) && p.input[p.pos] == op && p.input[p.pos+1] == '('
}

// parseGroup parses op '(' series (',' series)* ')'.
func (p *parser) parseGroup(op byte) ([]node, error) {
	p.pos += 2 // consume operator and '('

	var args []node

	for {
		arg, err := p.parseSeries()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("%w: unterminated %c(...)", ErrBadDescription, op)
		}

		switch p.input[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return args, nil
		default:
			return nil, fmt.Errorf("%w: unexpected %q inside %c(...)", ErrBadDescription, p.input[p.pos], op)
		}
	}
}

// parseElement parses an element label (name plus optional numeric suffix)
// and registers its parameters with the circuit.
func (p *parser) parseElement() (node, error) {
	start := p.pos

	for p.pos < len(p.input) && isNameRune(p.input[p.pos]) {
		p.pos++
	}

	label := p.input[start:p.pos]
	if label == "" {
		return nil, fmt.Errorf("%w: expected element at offset %d", ErrBadDescription, start)
	}

	el, err := element.Lookup(element.BaseName(label))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownElement, label)
	}

	return p.circuit.bindElement(label, el)
}

func isNameRune(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// bindElement assigns each element parameter either to a pinned constant or
// to the next free parameter slot.
func (c *Circuit) bindElement(label string, el element.Element) (node, error) {
	c.elements = append(c.elements, label)

	slots := make([]slot, el.NumParams())

	for i := range slots {
		key := label
		if el.NumParams() > 1 {
			key = fmt.Sprintf("%s_%d", label, i)
		}

		if v, ok := c.constants[key]; ok {
			slots[i] = slot{constant: true, value: v}
			c.markConstant(key)
			continue
		}

		slots[i] = slot{index: len(c.paramLabels)}
		c.paramLabels = append(c.paramLabels, key)
		c.lower = append(c.lower, el.Params[i].Lower)
		c.upper = append(c.upper, el.Params[i].Upper)
		c.units = append(c.units, el.Params[i].Unit)
	}

	return leafNode{el: el, slots: slots}, nil
}
