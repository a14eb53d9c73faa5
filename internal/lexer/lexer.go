// Package lexer turns source text into tokens. It is deliberately small:
// the shell grammar has bare words, literals, a handful of operators and
// the pipeline punctuation, nothing more.
package lexer

import (
	"strings"

	"github.com/PoopyPooOS/nushell/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position (after current char)
	ch           byte // current char under examination
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() token.Token {
	l.skipSpaces()
	l.skipComment()

	start := l.position

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Start: start, End: start}
	case '\n', '\r':
		l.readChar()
		return token.Token{Type: token.NEWLINE, Literal: "\n", Start: start, End: l.position}
	case ';':
		l.readChar()
		return token.Token{Type: token.SEMICOLON, Literal: ";", Start: start, End: l.position}
	case '|':
		l.readChar()
		return token.Token{Type: token.PIPE, Literal: "|", Start: start, End: l.position}
	case ',':
		l.readChar()
		return token.Token{Type: token.COMMA, Literal: ",", Start: start, End: l.position}
	case ':':
		l.readChar()
		return token.Token{Type: token.COLON, Literal: ":", Start: start, End: l.position}
	case '(':
		l.readChar()
		return token.Token{Type: token.LPAREN, Literal: "(", Start: start, End: l.position}
	case ')':
		l.readChar()
		return token.Token{Type: token.RPAREN, Literal: ")", Start: start, End: l.position}
	case '{':
		l.readChar()
		return token.Token{Type: token.LBRACE, Literal: "{", Start: start, End: l.position}
	case '}':
		l.readChar()
		return token.Token{Type: token.RBRACE, Literal: "}", Start: start, End: l.position}
	case '[':
		l.readChar()
		return token.Token{Type: token.LBRACKET, Literal: "[", Start: start, End: l.position}
	case ']':
		l.readChar()
		return token.Token{Type: token.RBRACKET, Literal: "]", Start: start, End: l.position}
	case '+':
		l.readChar()
		return token.Token{Type: token.PLUS, Literal: "+", Start: start, End: l.position}
	case '*':
		l.readChar()
		return token.Token{Type: token.ASTERISK, Literal: "*", Start: start, End: l.position}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.EQ, Literal: "==", Start: start, End: l.position}
		}
		l.readChar()
		return token.Token{Type: token.ASSIGN, Literal: "=", Start: start, End: l.position}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.NOT_EQ, Literal: "!=", Start: start, End: l.position}
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.LE, Literal: "<=", Start: start, End: l.position}
		}
		l.readChar()
		return token.Token{Type: token.LT, Literal: "<", Start: start, End: l.position}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.GE, Literal: ">=", Start: start, End: l.position}
		}
		l.readChar()
		return token.Token{Type: token.GT, Literal: ">", Start: start, End: l.position}
	case '"', '\'':
		return l.readString()
	case '$':
		return l.readVariable()
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			l.readChar()
			return token.Token{Type: token.RANGE, Literal: "..", Start: start, End: l.position}
		}
	case '-':
		next := l.peekChar()
		if next == '-' {
			return l.readLongFlag()
		}
		if isDigit(next) {
			return l.readNumber()
		}
		if isLetter(next) {
			return l.readShortFlag()
		}
		l.readChar()
		return token.Token{Type: token.MINUS, Literal: "-", Start: start, End: l.position}
	}

	if isDigit(l.ch) {
		return l.readNumber()
	}
	if isWordStart(l.ch) {
		return l.readWord()
	}

	tok := token.Token{Type: token.ILLEGAL, Literal: string(l.ch), Start: start, End: start + 1}
	l.readChar()
	return tok
}

func (l *Lexer) skipSpaces() {
	for l.ch == ' ' || l.ch == '\t' {
		l.readChar()
	}
}

// skipComment drops a # comment up to (but not including) the newline, so
// statement separation still works.
func (l *Lexer) skipComment() {
	for l.ch == '#' {
		for l.ch != '\n' && l.ch != 0 {
			l.readChar()
		}
		l.skipSpaces()
	}
}

func (l *Lexer) readString() token.Token {
	quote := l.ch
	start := l.position
	l.readChar()
	var sb strings.Builder
	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' && quote == '"' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(l.ch)
			}
		} else {
			sb.WriteByte(l.ch)
		}
		l.readChar()
	}
	if l.ch == 0 {
		return token.Token{Type: token.ILLEGAL, Literal: "unterminated string", Start: start, End: l.position}
	}
	l.readChar() // closing quote
	return token.Token{Type: token.STRING, Literal: sb.String(), Start: start, End: l.position}
}

func (l *Lexer) readVariable() token.Token {
	start := l.position
	l.readChar() // $
	nameStart := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	name := l.input[nameStart:l.position]
	if name == "" {
		return token.Token{Type: token.ILLEGAL, Literal: "$", Start: start, End: l.position}
	}
	return token.Token{Type: token.VARIABLE, Literal: name, Start: start, End: l.position}
}

func (l *Lexer) readLongFlag() token.Token {
	start := l.position
	l.readChar() // -
	l.readChar() // -
	nameStart := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '-' || l.ch == '_' {
		l.readChar()
	}
	return token.Token{Type: token.FLAG, Literal: l.input[nameStart:l.position], Start: start, End: l.position}
}

func (l *Lexer) readShortFlag() token.Token {
	start := l.position
	l.readChar() // -
	nameStart := l.position
	for isLetter(l.ch) {
		l.readChar()
	}
	return token.Token{Type: token.FLAG, Literal: l.input[nameStart:l.position], Start: start, End: l.position}
}

func (l *Lexer) readNumber() token.Token {
	start := l.position
	if l.ch == '-' {
		l.readChar()
	}
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	// A single dot continues a float; a double dot is a range operator and
	// belongs to the next token.
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lit := l.input[start:l.position]
	if isFloat {
		return token.Token{Type: token.FLOAT, Literal: lit, Start: start, End: l.position}
	}
	return token.Token{Type: token.INT, Literal: lit, Start: start, End: l.position}
}

func (l *Lexer) readWord() token.Token {
	start := l.position
	for isWordChar(l.ch) {
		l.readChar()
	}
	return token.Token{Type: token.IDENT, Literal: l.input[start:l.position], Start: start, End: l.position}
}

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWordStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch == '.' || ch == '/' || ch == '~'
}

func isWordChar(ch byte) bool {
	return isWordStart(ch) || isDigit(ch) || ch == '-'
}
