// Package grammar parses SPARQL 1.1 query text far enough to validate it,
// identify its top-level form (SELECT, CONSTRUCT, DESCRIBE, ASK) and produce
// a whitespace-normalized rendering that is stable under re-parsing. It is a
// query grammar only: SPARQL Update requests are rejected.
package grammar

import (
	"fmt"
	"strings"
)

// Form identifies the top-level production of a parsed query.
type Form int

// The query forms of the SPARQL 1.1 query grammar.
const (
	FormSelect Form = iota
	FormConstruct
	FormDescribe
	FormAsk
)

func (f Form) String() string {
	switch f {
	case FormSelect:
		return "SELECT"
	case FormConstruct:
		return "CONSTRUCT"
	case FormDescribe:
		return "DESCRIBE"
	case FormAsk:
		return "ASK"
	}
	return "UNKNOWN"
}

// SyntaxError reports where and why query text was rejected.
type SyntaxError struct {
	Msg  string
	Line int
	Col  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// Classify validates text as a SPARQL query and returns its normalized
// rendering together with its form. Normalization upper-cases keywords and
// collapses all inter-token whitespace to single spaces; it is idempotent,
// so the returned string classifies back to itself.
func Classify(text string) (string, Form, error) {
	toks, lerr := lexAll(text)
	if lerr != nil {
		return "", 0, lerr
	}
	p := &parser{toks: toks}
	form, perr := p.parseQuery()
	if perr != nil {
		return "", 0, perr
	}
	parts := make([]string, 0, len(p.toks))
	for _, t := range p.toks {
		if t.kind == tokEOF {
			break
		}
		parts = append(parts, t.text)
	}
	return strings.Join(parts, " "), form, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord    // bare word: keyword, "a", boolean, function name
	tokPName   // prefixed name, e.g. wd:Q243 or foaf:
	tokIRI     // <...>
	tokVar     // ?x or $x
	tokBlank   // _:id
	tokLiteral // "..." with any @lang or ^^datatype suffix attached
	tokNumber
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func lexAll(src string) ([]token, *SyntaxError) {
	l := &lexer{src: src, line: 1, col: 1}
	var toks []token
	for {
		l.skipSpace()
		line, col := l.line, l.col
		if l.pos >= len(l.src) {
			return append(toks, token{kind: tokEOF, line: line, col: col}), nil
		}
		tok, err := l.scan()
		if err != nil {
			return nil, err
		}
		tok.line, tok.col = line, col
		toks = append(toks, tok)
	}
}

func (l *lexer) errf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Line: l.line, Col: l.col}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

// skipSpace consumes whitespace and # comments.
func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.advance()
		case '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *lexer) scan() (token, *SyntaxError) {
	c := l.peekByte()
	switch {
	case c == '<' && l.looksLikeIRI():
		text, err := l.scanIRI()
		if err != nil {
			return token{}, err
		}
		return token{kind: tokIRI, text: text}, nil
	case c == '?' || c == '$':
		return l.scanVariable()
	case c == '_':
		return l.scanBlank()
	case c == '"' || c == '\'':
		return l.scanLiteral()
	case c >= '0' && c <= '9':
		return l.scanNumber()
	case (c == '+' || c == '-') && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		return l.scanNumber()
	case isWordStart(c):
		return l.scanWordOrPName()
	case c == ':':
		return l.scanWordOrPName()
	default:
		return l.scanPunct()
	}
}

// looksLikeIRI distinguishes an IRIREF from the less-than operator: an
// IRIREF closes with '>' before any whitespace, quote or brace.
func (l *lexer) looksLikeIRI() bool {
	for i := l.pos + 1; i < len(l.src); i++ {
		switch l.src[i] {
		case '>':
			return true
		case ' ', '\t', '\n', '\r', '"', '\'', '{', '}':
			return false
		}
	}
	return false
}

func (l *lexer) scanIRI() (string, *SyntaxError) {
	start := l.pos
	l.advance() // '<'
	for l.pos < len(l.src) && l.src[l.pos] != '>' {
		l.advance()
	}
	if l.pos >= len(l.src) {
		return "", l.errf("unterminated IRI")
	}
	l.advance() // '>'
	return l.src[start:l.pos], nil
}

func (l *lexer) scanVariable() (token, *SyntaxError) {
	start := l.pos
	l.advance() // '?' or '$'
	for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
		l.advance()
	}
	if l.pos == start+1 {
		return token{}, l.errf("expected variable name after %q", l.src[start:l.pos])
	}
	return token{kind: tokVar, text: l.src[start:l.pos]}, nil
}

func (l *lexer) scanBlank() (token, *SyntaxError) {
	start := l.pos
	l.advance() // '_'
	if l.peekByte() != ':' {
		return token{}, l.errf("expected ':' after '_' in blank node label")
	}
	l.advance()
	for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
		l.advance()
	}
	if l.pos == start+2 {
		return token{}, l.errf("expected blank node label after '_:'")
	}
	return token{kind: tokBlank, text: l.src[start:l.pos]}, nil
}

func (l *lexer) scanLiteral() (token, *SyntaxError) {
	start := l.pos
	quote := l.advance()
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errf("unterminated string literal")
		}
		c := l.advance()
		if c == '\\' {
			if l.pos >= len(l.src) {
				return token{}, l.errf("unterminated string literal")
			}
			l.advance()
			continue
		}
		if c == quote {
			break
		}
	}
	// Language tag or datatype annotation attaches directly to the string.
	switch l.peekByte() {
	case '@':
		l.advance()
		n := 0
		for l.pos < len(l.src) && isLangChar(l.src[l.pos]) {
			l.advance()
			n++
		}
		if n == 0 {
			return token{}, l.errf("expected language tag after '@'")
		}
	case '^':
		l.advance()
		if l.peekByte() != '^' {
			return token{}, l.errf("expected '^^' before datatype IRI")
		}
		l.advance()
		switch {
		case l.peekByte() == '<' && l.looksLikeIRI():
			if _, err := l.scanIRI(); err != nil {
				return token{}, err
			}
		case isWordStart(l.peekByte()) || l.peekByte() == ':':
			dt, err := l.scanWordOrPName()
			if err != nil {
				return token{}, err
			}
			if dt.kind != tokPName {
				return token{}, l.errf("expected datatype IRI after '^^'")
			}
		default:
			return token{}, l.errf("expected datatype IRI after '^^'")
		}
	}
	return token{kind: tokLiteral, text: l.src[start:l.pos]}, nil
}

func (l *lexer) scanNumber() (token, *SyntaxError) {
	start := l.pos
	if c := l.peekByte(); c == '+' || c == '-' {
		l.advance()
	}
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.advance()
	}
	if c := l.peekByte(); c == 'e' || c == 'E' {
		l.advance()
		if c := l.peekByte(); c == '+' || c == '-' {
			l.advance()
		}
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.advance()
		}
	}
	text := l.src[start:l.pos]
	// A trailing dot is the triple terminator, not part of the number.
	for strings.HasSuffix(text, ".") {
		text = text[:len(text)-1]
		l.pos--
		l.col--
	}
	return token{kind: tokNumber, text: text}, nil
}

func (l *lexer) scanWordOrPName() (token, *SyntaxError) {
	start := l.pos
	for l.pos < len(l.src) && isPrefixChar(l.src[l.pos]) {
		l.advance()
	}
	if l.peekByte() != ':' {
		return token{kind: tokWord, text: l.src[start:l.pos]}, nil
	}
	l.advance() // ':'
	for l.pos < len(l.src) && isLocalChar(l.src[l.pos]) {
		l.advance()
	}
	text := l.src[start:l.pos]
	// PN_LOCAL may contain dots but not end with one.
	for strings.HasSuffix(text, ".") {
		text = text[:len(text)-1]
		l.pos--
		l.col--
	}
	return token{kind: tokPName, text: text}, nil
}

func (l *lexer) scanPunct() (token, *SyntaxError) {
	c := l.advance()
	two := func(next byte) bool {
		if l.peekByte() == next {
			l.advance()
			return true
		}
		return false
	}
	switch c {
	case '{', '}', '(', ')', '.', ';', ',', '*', '=', '+', '-', '/':
		return token{kind: tokPunct, text: string(c)}, nil
	case '<':
		if two('=') {
			return token{kind: tokPunct, text: "<="}, nil
		}
		return token{kind: tokPunct, text: "<"}, nil
	case '>':
		if two('=') {
			return token{kind: tokPunct, text: ">="}, nil
		}
		return token{kind: tokPunct, text: ">"}, nil
	case '!':
		if two('=') {
			return token{kind: tokPunct, text: "!="}, nil
		}
		return token{kind: tokPunct, text: "!"}, nil
	case '&':
		if two('&') {
			return token{kind: tokPunct, text: "&&"}, nil
		}
	case '|':
		if two('|') {
			return token{kind: tokPunct, text: "||"}, nil
		}
	}
	return token{}, l.errf("unexpected character %q", string(c))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isWordStart(c) || isDigit(c) || c == '_'
}

func isPrefixChar(c byte) bool {
	return isNameChar(c) || c == '-'
}

func isLocalChar(c byte) bool {
	return isNameChar(c) || c == '-' || c == '.' || c == '%'
}

func isLangChar(c byte) bool {
	return isWordStart(c) || isDigit(c) || c == '-'
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errf(t token, format string, args ...any) *SyntaxError {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Line: t.line, Col: t.col}
}

func describeToken(t token) string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

// keyword consumes the current token if it is the given bare word,
// rewriting it to canonical case so normalization is uniform.
func (p *parser) keyword(kw string) bool {
	t := p.peek()
	if t.kind == tokWord && strings.EqualFold(t.text, kw) {
		p.toks[p.pos].text = kw
		p.pos++
		return true
	}
	return false
}

func (p *parser) punct(s string) bool {
	t := p.peek()
	if t.kind == tokPunct && t.text == s {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseQuery() (Form, *SyntaxError) {
	if err := p.parsePrologue(); err != nil {
		return 0, err
	}
	var form Form
	var err *SyntaxError
	switch {
	case p.keyword("SELECT"):
		form, err = FormSelect, p.parseSelect()
	case p.keyword("CONSTRUCT"):
		form, err = FormConstruct, p.parseConstruct()
	case p.keyword("DESCRIBE"):
		form, err = FormDescribe, p.parseDescribe()
	case p.keyword("ASK"):
		form, err = FormAsk, p.parseAsk()
	default:
		t := p.peek()
		return 0, p.errf(t, "expected SELECT, CONSTRUCT, DESCRIBE or ASK, found %s", describeToken(t))
	}
	if err != nil {
		return 0, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return 0, p.errf(t, "unexpected %s after end of query", describeToken(t))
	}
	return form, nil
}

func (p *parser) parsePrologue() *SyntaxError {
	for {
		switch {
		case p.keyword("PREFIX"):
			t := p.next()
			if t.kind != tokPName || !strings.HasSuffix(t.text, ":") {
				return p.errf(t, "expected prefix name after PREFIX, found %s", describeToken(t))
			}
			if t := p.next(); t.kind != tokIRI {
				return p.errf(t, "expected IRI in PREFIX declaration, found %s", describeToken(t))
			}
		case p.keyword("BASE"):
			if t := p.next(); t.kind != tokIRI {
				return p.errf(t, "expected IRI after BASE, found %s", describeToken(t))
			}
		default:
			return nil
		}
	}
}

func (p *parser) parseSelect() *SyntaxError {
	if !p.keyword("DISTINCT") {
		p.keyword("REDUCED")
	}
	if err := p.parseProjection(); err != nil {
		return err
	}
	p.keyword("WHERE")
	if err := p.parseGroup(); err != nil {
		return err
	}
	return p.parseModifiers()
}

func (p *parser) parseAsk() *SyntaxError {
	p.keyword("WHERE")
	if err := p.parseGroup(); err != nil {
		return err
	}
	return p.parseModifiers()
}

func (p *parser) parseConstruct() *SyntaxError {
	if err := p.parseGroup(); err != nil {
		return err
	}
	if !p.keyword("WHERE") {
		t := p.peek()
		return p.errf(t, "expected WHERE after CONSTRUCT template, found %s", describeToken(t))
	}
	if err := p.parseGroup(); err != nil {
		return err
	}
	return p.parseModifiers()
}

func (p *parser) parseDescribe() *SyntaxError {
	if !p.punct("*") {
		n := 0
		for {
			t := p.peek()
			if t.kind == tokVar || t.kind == tokIRI || t.kind == tokPName {
				p.next()
				n++
				continue
			}
			break
		}
		if n == 0 {
			t := p.peek()
			return p.errf(t, "expected variable, IRI or '*' after DESCRIBE, found %s", describeToken(t))
		}
	}
	if p.keyword("WHERE") || p.peek().kind == tokPunct && p.peek().text == "{" {
		if err := p.parseGroup(); err != nil {
			return err
		}
	}
	return p.parseModifiers()
}

func (p *parser) parseProjection() *SyntaxError {
	if p.punct("*") {
		return nil
	}
	n := 0
	for {
		t := p.peek()
		if t.kind == tokVar {
			p.next()
			n++
			continue
		}
		// Expression projection: ( expr AS ?var )
		if t.kind == tokPunct && t.text == "(" {
			if err := p.consumeBalancedParens(); err != nil {
				return err
			}
			n++
			continue
		}
		break
	}
	if n == 0 {
		t := p.peek()
		return p.errf(t, "expected variable or '*' after SELECT, found %s", describeToken(t))
	}
	return nil
}

func (p *parser) parseModifiers() *SyntaxError {
	for {
		switch {
		case p.keyword("ORDER"):
			if !p.keyword("BY") {
				t := p.peek()
				return p.errf(t, "expected BY after ORDER, found %s", describeToken(t))
			}
			if err := p.parseOrderConditions(); err != nil {
				return err
			}
		case p.keyword("LIMIT"):
			if t := p.next(); t.kind != tokNumber {
				return p.errf(t, "expected integer after LIMIT, found %s", describeToken(t))
			}
		case p.keyword("OFFSET"):
			if t := p.next(); t.kind != tokNumber {
				return p.errf(t, "expected integer after OFFSET, found %s", describeToken(t))
			}
		default:
			return nil
		}
	}
}

func (p *parser) parseOrderConditions() *SyntaxError {
	n := 0
	for {
		if p.keyword("ASC") || p.keyword("DESC") {
			if err := p.consumeBalancedParens(); err != nil {
				return err
			}
			n++
			continue
		}
		t := p.peek()
		if t.kind == tokVar {
			p.next()
			n++
			continue
		}
		if t.kind == tokPunct && t.text == "(" {
			if err := p.consumeBalancedParens(); err != nil {
				return err
			}
			n++
			continue
		}
		break
	}
	if n == 0 {
		t := p.peek()
		return p.errf(t, "expected order condition after ORDER BY, found %s", describeToken(t))
	}
	return nil
}

// parseGroup parses a group graph pattern: '{' ... '}'.
func (p *parser) parseGroup() *SyntaxError {
	if t := p.peek(); !p.punct("{") {
		return p.errf(t, "expected '{', found %s", describeToken(t))
	}
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return p.errf(t, "unexpected end of input inside graph pattern")
		case p.punct("}"):
			return nil
		case p.punct("."):
			// stray separator
		case t.kind == tokPunct && t.text == "{":
			if err := p.parseGroup(); err != nil {
				return err
			}
			for p.keyword("UNION") {
				if err := p.parseGroup(); err != nil {
					return err
				}
			}
		case p.keyword("OPTIONAL") || p.keyword("MINUS"):
			if err := p.parseGroup(); err != nil {
				return err
			}
		case p.keyword("GRAPH"):
			g := p.peek()
			if g.kind != tokVar && g.kind != tokIRI && g.kind != tokPName {
				return p.errf(g, "expected graph name after GRAPH, found %s", describeToken(g))
			}
			p.next()
			if err := p.parseGroup(); err != nil {
				return err
			}
		case p.keyword("FILTER"):
			if err := p.parseConstraint(); err != nil {
				return err
			}
		case p.keyword("BIND"):
			if err := p.consumeBalancedParens(); err != nil {
				return err
			}
		default:
			if err := p.parseTriples(); err != nil {
				return err
			}
		}
	}
}

// parseConstraint parses the body of a FILTER: a bracketed expression, a
// built-in or function call, or an EXISTS / NOT EXISTS pattern.
func (p *parser) parseConstraint() *SyntaxError {
	if p.keyword("EXISTS") {
		return p.parseGroup()
	}
	if p.keyword("NOT") {
		if !p.keyword("EXISTS") {
			t := p.peek()
			return p.errf(t, "expected EXISTS after NOT, found %s", describeToken(t))
		}
		return p.parseGroup()
	}
	t := p.peek()
	if t.kind == tokWord || t.kind == tokIRI || t.kind == tokPName {
		p.next() // function name
	}
	return p.consumeBalancedParens()
}

func (p *parser) consumeBalancedParens() *SyntaxError {
	open := p.peek()
	if !p.punct("(") {
		return p.errf(open, "expected '(', found %s", describeToken(open))
	}
	depth := 1
	for depth > 0 {
		t := p.next()
		switch {
		case t.kind == tokEOF:
			return p.errf(t, "unclosed '('")
		case t.kind == tokPunct && t.text == "(":
			depth++
		case t.kind == tokPunct && t.text == ")":
			depth--
		}
	}
	return nil
}

// parseTriples parses one triples block: a subject followed by a
// predicate-object list with ';' and ',' continuations.
func (p *parser) parseTriples() *SyntaxError {
	s := p.peek()
	if s.kind != tokVar && s.kind != tokIRI && s.kind != tokPName && s.kind != tokBlank {
		return p.errf(s, "expected triple subject, found %s", describeToken(s))
	}
	p.next()
	for {
		if err := p.parseVerb(); err != nil {
			return err
		}
		if err := p.parseObjectList(); err != nil {
			return err
		}
		if !p.punct(";") {
			break
		}
		// A trailing ';' before '.' or '}' is legal.
		if t := p.peek(); !isVerbToken(t) {
			break
		}
	}
	p.punct(".")
	return nil
}

func isVerbToken(t token) bool {
	return t.kind == tokVar || t.kind == tokIRI || t.kind == tokPName ||
		(t.kind == tokWord && strings.EqualFold(t.text, "a"))
}

func (p *parser) parseVerb() *SyntaxError {
	t := p.peek()
	if !isVerbToken(t) {
		return p.errf(t, "expected triple predicate, found %s", describeToken(t))
	}
	if t.kind == tokWord {
		p.toks[p.pos].text = "a"
	}
	p.next()
	return nil
}

func (p *parser) parseObjectList() *SyntaxError {
	for {
		if err := p.parseObject(); err != nil {
			return err
		}
		if !p.punct(",") {
			return nil
		}
	}
}

func (p *parser) parseObject() *SyntaxError {
	t := p.peek()
	switch t.kind {
	case tokVar, tokIRI, tokPName, tokBlank, tokLiteral, tokNumber:
		p.next()
		return nil
	case tokWord:
		if p.keyword("true") || p.keyword("false") {
			return nil
		}
	}
	return p.errf(t, "expected triple object, found %s", describeToken(t))
}
