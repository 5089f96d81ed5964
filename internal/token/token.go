package token

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"
	INDENT  = "INDENT"
	DEDENT  = "DEDENT"

	// Identifiers + literals
	IDENT  = "IDENT"  // add, foobar, x, y, ...
	NUMBER = "NUMBER" // 1343456, 3.25
	STRING = "STRING" // "foobar", 'foobar'

	OPERATOR = "OPERATOR" // + - * / ( ) : , ...
	KEYWORD  = "KEYWORD"  // if, def, while, ...
	SYMBOL   = "SYMBOL"   // alternate notation, see symbols
)

// Semantic roles shared by keywords, operators and their alternate symbols.
const (
	RoleIf     = "if"
	RoleElse   = "else"
	RoleFor    = "for"
	RoleWhile  = "while"
	RoleDef    = "def"
	RolePlus   = "+"
	RoleMinus  = "-"
	RoleEquals = "♡"
)

type Token struct {
	Type     TokenType
	Literal  string
	Number   float64 // parsed value of a NUMBER token
	Role     string  // semantic role of a KEYWORD, SYMBOL or OPERATOR token, may be empty
	Position int     // the src index of the token
	Line     int
	Column   int
}

// Equal compares the lexical content of two tokens, ignoring position.
func (t Token) Equal(o Token) bool {
	return t.Type == o.Type && t.Literal == o.Literal && t.Number == o.Number && t.Role == o.Role
}

func (t Token) String() string {
	switch t.Type {
	case NEWLINE, INDENT, DEDENT, EOF:
		return string(t.Type)
	case NUMBER:
		return fmt.Sprintf("%s(%g)", t.Type, t.Number)
	default:
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	}
}

var keywords = map[string]string{
	// flow control
	"if":     RoleIf,
	"else":   RoleElse,
	"for":    RoleFor,
	"while":  RoleWhile,
	"return": "return",

	// declarations
	"def":    RoleDef,
	"class":  "class",
	"import": "import",
	"from":   "from",
	"main":   "main",

	// async
	"async": "async",
	"await": "await",
	"yield": "yield",

	// error handling
	"try":     "try",
	"except":  "except",
	"finally": "finally",
	"raise":   "raise",
}

// symbols maps each alternate-notation word onto the role of the keyword or
// operator it stands for. Symbols with an empty role lex as SYMBOL tokens but
// have no meaning in the grammar. Keys are NFC normalised.
var symbols = map[string]string{
	"﷽":  RoleDef,
	"إذا": RoleIf,
	"📿":  RoleFor,
	"♡":  RoleEquals,
	"۩":  RolePlus,

	"۝":          "",
	"☪":          "",
	"☭":          "",
	"۞":          "",
	"لَا":        "",
	"إِلَٰهَ":    "",
	"إِلَّا":     "",
	"ٱللَّٰهِ":   "",
	"ٱلسَّلَامُ": "",
	"عَلَيْكُمْ": "",
	"🕌":          "",
	"🕋":          "",
	"🌙":          "",
}

func init() {
	normalized := make(map[string]string, len(symbols))
	for word, role := range symbols {
		normalized[norm.NFC.String(word)] = role
	}
	symbols = normalized
}

// operators maps single-character operators onto their role. Alternate
// arithmetic signs share the role of their ASCII counterpart.
var operators = map[rune]string{
	'+': RolePlus, '-': RoleMinus, '*': "*", '/': "/", '%': "%",
	'=': "=", '!': "!", '<': "<", '>': ">", '&': "&", '|': "|", '^': "^",
	':': ":", ',': ",", ';': ";", '.': ".",
	'(': "(", ')': ")", '{': "{", '}': "}", '[': "[", ']': "]",
	'×': "*", '÷': "/",
}

// LookupIdent classifies a scanned word as KEYWORD, SYMBOL or IDENT and
// returns its role.
func LookupIdent(ident string) (TokenType, string) {
	if role, ok := keywords[ident]; ok {
		return KEYWORD, role
	}
	if role, ok := symbols[ident]; ok {
		return SYMBOL, role
	}
	return IDENT, ""
}

// LookupOperator returns the role of a single-character operator.
func LookupOperator(ch rune) (string, bool) {
	role, ok := operators[ch]
	return role, ok
}
