package lexer

import (
	"testing"

	"github.com/PoopyPooOS/nushell/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `let total = 40 + 2
seq 1 5 | every 2 --skip
for i in 0..3 { echo $i }
"a\nb" 'c' 3.14 -7 == != <= >=`

	tests := []struct {
		wantType    token.Type
		wantLiteral string
	}{
		{token.IDENT, "let"},
		{token.IDENT, "total"},
		{token.ASSIGN, "="},
		{token.INT, "40"},
		{token.PLUS, "+"},
		{token.INT, "2"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "seq"},
		{token.INT, "1"},
		{token.INT, "5"},
		{token.PIPE, "|"},
		{token.IDENT, "every"},
		{token.INT, "2"},
		{token.FLAG, "skip"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "for"},
		{token.IDENT, "i"},
		{token.IDENT, "in"},
		{token.INT, "0"},
		{token.RANGE, ".."},
		{token.INT, "3"},
		{token.LBRACE, "{"},
		{token.IDENT, "echo"},
		{token.VARIABLE, "i"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.STRING, "a\nb"},
		{token.STRING, "c"},
		{token.FLOAT, "3.14"},
		{token.INT, "-7"},
		{token.EQ, "=="},
		{token.NOT_EQ, "!="},
		{token.LE, "<="},
		{token.GE, ">="},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.wantType {
			t.Fatalf("tests[%d]: wrong type. want=%q, got=%q (%q)", i, tt.wantType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.wantLiteral {
			t.Fatalf("tests[%d]: wrong literal. want=%q, got=%q", i, tt.wantLiteral, tok.Literal)
		}
	}
}

func TestTokenSpans(t *testing.T) {
	input := `echo "hi"`
	l := New(input)

	first := l.NextToken()
	if first.Start != 0 || first.End != 4 {
		t.Errorf("echo span: want 0..4, got %d..%d", first.Start, first.End)
	}
	second := l.NextToken()
	if second.Start != 5 || second.End != 9 {
		t.Errorf("string span: want 5..9, got %d..%d", second.Start, second.End)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	l := New("# a comment\necho # trailing\n")

	seq := []token.Type{token.NEWLINE, token.IDENT, token.NEWLINE, token.EOF}
	for i, want := range seq {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token %d: want %q, got %q (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"oops`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("want ILLEGAL, got %q (%q)", tok.Type, tok.Literal)
	}
}
