package token

// Type tags a lexed token.
type Type string

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	IDENT    Type = "IDENT"    // bare words: command names, paths
	VARIABLE Type = "VARIABLE" // $name
	FLAG     Type = "FLAG"     // --long or -s, Literal holds the name
	INT      Type = "INT"
	FLOAT    Type = "FLOAT"
	STRING   Type = "STRING"

	ASSIGN   Type = "="
	EQ       Type = "=="
	NOT_EQ   Type = "!="
	LT       Type = "<"
	GT       Type = ">"
	LE       Type = "<="
	GE       Type = ">="
	PLUS     Type = "+"
	MINUS    Type = "-"
	ASTERISK Type = "*"
	SLASH    Type = "/"

	PIPE      Type = "|"
	SEMICOLON Type = ";"
	NEWLINE   Type = "NEWLINE"
	COMMA     Type = ","
	COLON     Type = ":"
	RANGE     Type = ".."

	LPAREN   Type = "("
	RPAREN   Type = ")"
	LBRACE   Type = "{"
	RBRACE   Type = "}"
	LBRACKET Type = "["
	RBRACKET Type = "]"
)

// Token is a lexed token with its byte range in the parsed source. The
// parser shifts Start/End by the file's offset in the engine's global
// source space before storing spans.
type Token struct {
	Type    Type
	Literal string
	Start   int
	End     int
}
