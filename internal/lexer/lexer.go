// Package lexer implements the lexical analysis (tokenization) for Lox source.
package lexer

import (
	"lox-lang/internal/diag"
	"lox-lang/internal/token"
	"strconv"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source string

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	diags []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		pos:    0,
		line:   1,
		col:    1,
	}
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// The token slice always ends with an EOF token, even when errors occur.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	var tokens []token.Token
	for {
		tok, ok := l.nextToken()
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return tokens, l.diags
}

// ---- internal helpers ----

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

// match consumes the current character if it equals want.
func (l *Lexer) match(want byte) bool {
	if l.peek() != want || l.pos >= len(l.source) {
		return false
	}
	l.advance()
	return true
}

// curPos returns the current position.
func (l *Lexer) curPos() token.Pos {
	return token.Pos{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) makeToken(kind token.Kind, start token.Pos, literal any) token.Token {
	return token.Token{
		Kind:    kind,
		Lexeme:  l.source[start.Offset:l.pos],
		Literal: literal,
		Pos:     start,
	}
}

// skipWhitespace skips blanks, newlines and // comments.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekNext() == '/':
			for l.pos < len(l.source) && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// addError records a diagnostic error. Scanner errors carry no locator.
func (l *Lexer) addError(code string, pos token.Pos, msg string) {
	l.diags = append(l.diags, diag.Errorf(code, pos, "%s", msg))
}

// ---- token reading ----

// nextToken scans one token. ok is false when the input produced only a
// diagnostic and the caller should keep scanning.
func (l *Lexer) nextToken() (token.Token, bool) {
	l.skipWhitespace()

	start := l.curPos()
	if l.pos >= len(l.source) {
		return token.Token{Kind: token.EOF, Pos: start}, true
	}

	ch := l.peek()
	switch {
	case ch == '"':
		return l.readString(start)
	case isDigit(ch):
		return l.readNumber(start), true
	case isIdentStart(ch):
		return l.readIdentifier(start), true
	}
	return l.readOperator(start)
}

// readString reads a string literal. Strings may span lines.
func (l *Lexer) readString(start token.Pos) (token.Token, bool) {
	l.advance() // skip opening "
	for l.pos < len(l.source) && l.peek() != '"' {
		l.advance()
	}

	if l.pos >= len(l.source) {
		l.addError("E1002", token.Pos{Offset: l.pos, Line: l.line, Column: l.col}, "Unterminated string.")
		return token.Token{}, false
	}

	l.advance() // skip closing "
	value := l.source[start.Offset+1 : l.pos-1]
	return l.makeToken(token.STRING, start, value), true
}

// readNumber reads a number literal: digits with an optional fraction.
func (l *Lexer) readNumber(start token.Pos) token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}

	// A fraction needs at least one digit after the dot.
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // skip '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	value, _ := strconv.ParseFloat(l.source[start.Offset:l.pos], 64)
	return l.makeToken(token.NUMBER, start, value)
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier(start token.Pos) token.Token {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	kind := token.LookupIdent(l.source[start.Offset:l.pos])
	return l.makeToken(kind, start, nil)
}

// readOperator reads an operator or delimiter token.
func (l *Lexer) readOperator(start token.Pos) (token.Token, bool) {
	ch := l.advance()

	var kind token.Kind
	switch ch {
	case '(':
		kind = token.LEFT_PAREN
	case ')':
		kind = token.RIGHT_PAREN
	case '{':
		kind = token.LEFT_BRACE
	case '}':
		kind = token.RIGHT_BRACE
	case ',':
		kind = token.COMMA
	case '.':
		kind = token.DOT
	case '-':
		kind = token.MINUS
	case '+':
		kind = token.PLUS
	case ';':
		kind = token.SEMICOLON
	case '*':
		kind = token.STAR
	case '/':
		kind = token.SLASH
	case '!':
		kind = l.either('=', token.BANG_EQUAL, token.BANG)
	case '=':
		kind = l.either('=', token.EQUAL_EQUAL, token.EQUAL)
	case '<':
		kind = l.either('=', token.LESS_EQUAL, token.LESS)
	case '>':
		kind = l.either('=', token.GREATER_EQUAL, token.GREATER)
	default:
		l.addError("E1001", start, "Unexpected character.")
		return token.Token{}, false
	}
	return l.makeToken(kind, start, nil), true
}

// either returns two if the next character is next, else one.
func (l *Lexer) either(next byte, two, one token.Kind) token.Kind {
	if l.match(next) {
		return two
	}
	return one
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
