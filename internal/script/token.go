package script

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokenEOL TokenKind = iota
	TokenEOF
	TokenString  // double-quoted literal
	TokenIdent   // bare identifier (a variable name)
	TokenComment // '#' to end of line

	// Structural keywords.
	TokenAnd
	TokenIf
	TokenThen
	TokenSave
	TokenAs
	TokenCatchError // "catch-error:"

	// Command keywords.
	TokenURL
	TokenLocate
	TokenLocateNoScroll
	TokenType
	TokenClick
	TokenRefresh
	TokenTryAgain
	TokenScreenshot
	TokenReadTo
	TokenPress
	TokenChill
	TokenSelect
	TokenDragTo
	TokenUpload
)

var tokenNames = map[TokenKind]string{
	TokenEOL:            "end of line",
	TokenEOF:            "end of file",
	TokenString:         "string",
	TokenIdent:          "identifier",
	TokenComment:        "comment",
	TokenAnd:            "and",
	TokenIf:             "if",
	TokenThen:           "then",
	TokenSave:           "save",
	TokenAs:             "as",
	TokenCatchError:     "catch-error:",
	TokenURL:            "url",
	TokenLocate:         "locate",
	TokenLocateNoScroll: "locate-no-scroll",
	TokenType:           "type",
	TokenClick:          "click",
	TokenRefresh:        "refresh",
	TokenTryAgain:       "try-again",
	TokenScreenshot:     "screenshot",
	TokenReadTo:         "read-to",
	TokenPress:          "press",
	TokenChill:          "chill",
	TokenSelect:         "select",
	TokenDragTo:         "drag-to",
	TokenUpload:         "upload",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown token"
}

// keywords maps reserved words to their token kinds. Everything else that
// scans as a word is an identifier.
var keywords = map[string]TokenKind{
	"and":              TokenAnd,
	"if":               TokenIf,
	"then":             TokenThen,
	"save":             TokenSave,
	"as":               TokenAs,
	"catch-error:":     TokenCatchError,
	"url":              TokenURL,
	"locate":           TokenLocate,
	"locate-no-scroll": TokenLocateNoScroll,
	"type":             TokenType,
	"click":            TokenClick,
	"refresh":          TokenRefresh,
	"try-again":        TokenTryAgain,
	"screenshot":       TokenScreenshot,
	"read-to":          TokenReadTo,
	"press":            TokenPress,
	"chill":            TokenChill,
	"select":           TokenSelect,
	"drag-to":          TokenDragTo,
	"upload":           TokenUpload,
}

// Token is a single lexeme with its source line for error reporting.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
}
