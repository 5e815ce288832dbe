// Package render turns directive-language template sources into rendered
// documents and derives CSS text from themes. Sources are parsed into an
// explicit node tree before code generation, so nested control blocks lower
// correctly.
package render

import (
	"fmt"
	"strings"

	apperrors "github.com/forgesites/themekit/pkg/errors"
)

// NodeKind discriminates parsed template nodes.
type NodeKind uint8

const (
	// KindLiteral is plain markup copied through untouched.
	KindLiteral NodeKind = iota
	// KindOutput is an interpolation: {{ expr }}.
	KindOutput
	// KindInclude is a component reference: {% include "category/id" %}.
	KindInclude
	// KindFor is an iteration block: {% for x in list %} ... {% endfor %}.
	KindFor
	// KindIf is a conditional block: {% if cond %} ... {% else %} ... {% endif %}.
	KindIf
)

// Node is one element of the parsed template tree.
type Node struct {
	Kind NodeKind

	Text string // literal markup
	Expr string // output expression, loop list path, or condition
	Var  string // loop variable name

	Category  string // include target
	Component string

	Body []*Node
	Else []*Node
}

type tokenKind uint8

const (
	tokLiteral tokenKind = iota
	tokOutput
	tokDirective
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// Parse converts raw template source into a node tree. Directives use
// {% ... %} delimiters, interpolations use {{ ... }}; everything else is
// literal markup.
func Parse(source string) ([]*Node, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}
	parser := &parser{tokens: tokens}
	nodes, err := parser.parseUntil(nil)
	if err != nil {
		return nil, err
	}
	if parser.index < len(parser.tokens) {
		leftover := parser.tokens[parser.index]
		return nil, parseError(leftover.pos, "unexpected %q outside any open block", leftover.text)
	}
	return nodes, nil
}

func lex(source string) ([]token, error) {
	var tokens []token
	offset := 0
	for offset < len(source) {
		rest := source[offset:]
		dirStart := strings.Index(rest, "{%")
		outStart := strings.Index(rest, "{{")

		next, kind := -1, tokLiteral
		switch {
		case dirStart == -1 && outStart == -1:
			tokens = append(tokens, token{kind: tokLiteral, text: rest, pos: offset})
			return tokens, nil
		case dirStart == -1 || (outStart != -1 && outStart < dirStart):
			next, kind = outStart, tokOutput
		default:
			next, kind = dirStart, tokDirective
		}

		if next > 0 {
			tokens = append(tokens, token{kind: tokLiteral, text: rest[:next], pos: offset})
		}

		closer := "%}"
		if kind == tokOutput {
			closer = "}}"
		}
		end := strings.Index(rest[next+2:], closer)
		if end == -1 {
			return nil, parseError(offset+next, "unterminated %q", rest[next:next+2])
		}

		inner := strings.TrimSpace(rest[next+2 : next+2+end])
		tokens = append(tokens, token{kind: kind, text: inner, pos: offset + next})
		offset += next + 2 + end + 2
	}
	return tokens, nil
}

type parser struct {
	tokens []token
	index  int
}

// parseUntil consumes tokens into nodes until it encounters one of the stop
// directives (which it leaves unconsumed) or runs out of input.
func (p *parser) parseUntil(stop []string) ([]*Node, error) {
	var nodes []*Node
	for p.index < len(p.tokens) {
		tok := p.tokens[p.index]
		switch tok.kind {
		case tokLiteral:
			p.index++
			nodes = append(nodes, &Node{Kind: KindLiteral, Text: tok.text})
		case tokOutput:
			p.index++
			if tok.text == "" {
				return nil, parseError(tok.pos, "empty interpolation")
			}
			nodes = append(nodes, &Node{Kind: KindOutput, Expr: tok.text})
		case tokDirective:
			keyword := directiveKeyword(tok.text)
			for _, s := range stop {
				if keyword == s {
					return nodes, nil
				}
			}
			node, err := p.parseDirective(tok)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
	}
	if len(stop) > 0 {
		return nil, parseError(len(p.tokens), "unexpected end of template, expected {%% %s %%}", stop[len(stop)-1])
	}
	return nodes, nil
}

func (p *parser) parseDirective(tok token) (*Node, error) {
	fields := strings.Fields(tok.text)
	if len(fields) == 0 {
		return nil, parseError(tok.pos, "empty directive")
	}
	switch fields[0] {
	case "include":
		p.index++
		return parseInclude(tok, fields)
	case "for":
		return p.parseFor(tok, fields)
	case "if":
		return p.parseIf(tok, fields)
	default:
		return nil, parseError(tok.pos, "unknown directive %q", fields[0])
	}
}

func parseInclude(tok token, fields []string) (*Node, error) {
	if len(fields) != 2 {
		return nil, parseError(tok.pos, "include expects a single %q argument", "category/id")
	}
	ref := strings.Trim(fields[1], `"'`)
	category, component, ok := strings.Cut(ref, "/")
	if !ok || category == "" || component == "" {
		return nil, parseError(tok.pos, "include reference %q must be category/id", ref)
	}
	return &Node{Kind: KindInclude, Category: category, Component: component}, nil
}

func (p *parser) parseFor(tok token, fields []string) (*Node, error) {
	if len(fields) != 4 || fields[2] != "in" {
		return nil, parseError(tok.pos, "for expects {%% for x in list %%}")
	}
	p.index++

	body, err := p.parseUntil([]string{"endfor"})
	if err != nil {
		return nil, err
	}
	p.index++ // consume endfor

	return &Node{Kind: KindFor, Var: fields[1], Expr: fields[3], Body: body}, nil
}

func (p *parser) parseIf(tok token, fields []string) (*Node, error) {
	if len(fields) < 2 {
		return nil, parseError(tok.pos, "if expects a condition")
	}
	p.index++

	body, err := p.parseUntil([]string{"else", "endif"})
	if err != nil {
		return nil, err
	}

	node := &Node{Kind: KindIf, Expr: strings.Join(fields[1:], " "), Body: body}
	if directiveKeyword(p.tokens[p.index].text) == "else" {
		p.index++
		elseBody, err := p.parseUntil([]string{"endif"})
		if err != nil {
			return nil, err
		}
		node.Else = elseBody
	}
	p.index++ // consume endif
	return node, nil
}

// Includes walks the tree and reports every referenced component, in
// document order, descending into nested blocks.
func Includes(nodes []*Node) []*Node {
	var found []*Node
	for _, node := range nodes {
		switch node.Kind {
		case KindInclude:
			found = append(found, node)
		case KindFor:
			found = append(found, Includes(node.Body)...)
		case KindIf:
			found = append(found, Includes(node.Body)...)
			found = append(found, Includes(node.Else)...)
		}
	}
	return found
}

func directiveKeyword(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func parseError(pos int, format string, args ...any) error {
	return apperrors.NewValidationError("template", fmt.Sprintf(format, args...)+fmt.Sprintf(" (offset %d)", pos))
}
