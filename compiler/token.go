package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the prose lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIndent
	TokenIdentifier

	// Literals
	TokenNumber     // 42, 3.14, -7, 1e5
	TokenString     // "hello", 'hello'
	TokenHex        // 0x1A
	TokenBytes      // 0b1010
	TokenScientific // reserved for evaluator-produced scientific literals

	// Operators
	TokenPlus             // +
	TokenMinus            // -
	TokenMultiply         // *
	TokenDivide           // /
	TokenPower            // ^
	TokenLessThan         // <
	TokenLessThanEqual    // <=
	TokenGreaterThan      // >
	TokenGreaterThanEqual // >=
	TokenIsEqual          // ==
	TokenNotEqual         // !=
	TokenBang             // !

	// Delimiters
	TokenLParen    // (
	TokenRParen    // )
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenComma     // ,
	TokenSemicolon // ;
	TokenDot       // .
	TokenColon     // :

	keywordStart

	// Declarations and statements
	TokenDeclare
	TokenSet
	TokenTo
	TokenShow
	TokenShowLine
	TokenInput
	TokenGenerate
	TokenStop
	TokenExit
	TokenSkip
	TokenImport
	TokenAs
	TokenInc
	TokenDec
	TokenNew
	TokenParent
	TokenAwait
	TokenAsync
	TokenError
	TokenRaise
	TokenByteArray
	TokenCallback

	// Control flow
	TokenIf
	TokenThen
	TokenElse
	TokenElseIf
	TokenEndIf
	TokenChoose
	TokenWhen
	TokenOtherwise
	TokenEndChoose
	TokenTry
	TokenCapture
	TokenWhile
	TokenRepeat
	TokenTimes
	TokenEndRepeat
	TokenFor
	TokenForeach
	TokenEndForeach
	TokenFrom
	TokenStep
	TokenBy
	TokenEndFor
	TokenIterate
	TokenIn
	TokenOver
	TokenEndIterate

	// Functions and classes
	TokenFunction
	TokenReturn
	TokenEndFunction
	TokenClass
	TokenInherit
	TokenEndClass
	TokenMethod
	TokenEndMethod
	TokenInit
	TokenEndInit
	TokenThis
	TokenSecret
	TokenPublic

	// Logic and literals
	TokenAnd
	TokenOr
	TokenNot
	TokenIs
	TokenIsNot
	TokenIsIn
	TokenMod
	TokenNull
	TokenTrue
	TokenFalse

	keywordEnd
)

var tokenNames = map[TokenType]string{
	TokenEOF:              "EOF",
	TokenIndent:           "INDENT",
	TokenIdentifier:       "IDENTIFIER",
	TokenNumber:           "NUMBER",
	TokenString:           "STRING",
	TokenHex:              "HEX",
	TokenBytes:            "BYTES",
	TokenScientific:       "SCIENTIFIC",
	TokenPlus:             "+",
	TokenMinus:            "-",
	TokenMultiply:         "*",
	TokenDivide:           "/",
	TokenPower:            "^",
	TokenLessThan:         "<",
	TokenLessThanEqual:    "<=",
	TokenGreaterThan:      ">",
	TokenGreaterThanEqual: ">=",
	TokenIsEqual:          "==",
	TokenNotEqual:         "!=",
	TokenBang:             "!",
	TokenLParen:           "(",
	TokenRParen:           ")",
	TokenLBrace:           "{",
	TokenRBrace:           "}",
	TokenLBracket:         "[",
	TokenRBracket:         "]",
	TokenComma:            ",",
	TokenSemicolon:        ";",
	TokenDot:              ".",
	TokenColon:            ":",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	if name, ok := keywordNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// IsKeyword reports whether t is one of the reserved words.
func (t TokenType) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text (string tokens hold the unescaped value)
	Number  float64  // parsed value for TokenNumber
	Pos     Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type.IsKeyword() {
		return t.Type.String()
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// keywords maps reserved words, including the two-word compounds produced by
// the lexer's merge step, to their token types.
var keywords = map[string]TokenType{
	"declare":      TokenDeclare,
	"set":          TokenSet,
	"to":           TokenTo,
	"show":         TokenShow,
	"showline":     TokenShowLine,
	"null":         TokenNull,
	"input":        TokenInput,
	"generate":     TokenGenerate,
	"stop":         TokenStop,
	"exit":         TokenExit,
	"skip":         TokenSkip,
	"import":       TokenImport,
	"is":           TokenIs,
	"as":           TokenAs,
	"inc":          TokenInc,
	"dec":          TokenDec,
	"new":          TokenNew,
	"parent":       TokenParent,
	"await":        TokenAwait,
	"async":        TokenAsync,
	"error":        TokenError,
	"raise":        TokenRaise,
	"bytearray":    TokenByteArray,
	"callback":     TokenCallback,
	"if":           TokenIf,
	"then":         TokenThen,
	"else":         TokenElse,
	"else if":      TokenElseIf,
	"end if":       TokenEndIf,
	"choose":       TokenChoose,
	"when":         TokenWhen,
	"otherwise":    TokenOtherwise,
	"end choose":   TokenEndChoose,
	"try":          TokenTry,
	"capture":      TokenCapture,
	"while":        TokenWhile,
	"repeat":       TokenRepeat,
	"times":        TokenTimes,
	"end repeat":   TokenEndRepeat,
	"for":          TokenFor,
	"foreach":      TokenForeach,
	"end foreach":  TokenEndForeach,
	"from":         TokenFrom,
	"step":         TokenStep,
	"by":           TokenBy,
	"end for":      TokenEndFor,
	"iterate":      TokenIterate,
	"in":           TokenIn,
	"over":         TokenOver,
	"end iterate":  TokenEndIterate,
	"function":     TokenFunction,
	"return":       TokenReturn,
	"end function": TokenEndFunction,
	"class":        TokenClass,
	"inherit":      TokenInherit,
	"end class":    TokenEndClass,
	"method":       TokenMethod,
	"end method":   TokenEndMethod,
	"init":         TokenInit,
	"end init":     TokenEndInit,
	"this":         TokenThis,
	"secret":       TokenSecret,
	"public":       TokenPublic,
	"and":          TokenAnd,
	"or":           TokenOr,
	"not":          TokenNot,
	"true":         TokenTrue,
	"false":        TokenFalse,
	"mod":          TokenMod,
	"remind":       TokenMod,
	"is in":        TokenIsIn,
	"is not":       TokenIsNot,
}

// compoundKeywords is the closed set of two-word keywords the lexer merges.
var compoundKeywords = map[string]bool{
	"end if":       true,
	"end repeat":   true,
	"end choose":   true,
	"end function": true,
	"end class":    true,
	"end method":   true,
	"end init":     true,
	"end for":      true,
	"end iterate":  true,
	"end foreach":  true,
	"else if":      true,
	"is not":       true,
	"is in":        true,
}

// keywordNames is the reverse of keywords. "mod" wins over its "remind" alias.
var keywordNames = func() map[TokenType]string {
	names := make(map[TokenType]string, len(keywords))
	for word, typ := range keywords {
		if word == "remind" {
			continue
		}
		names[typ] = word
	}
	return names
}()

// LookupKeyword returns the keyword token type for text, if any.
func LookupKeyword(text string) (TokenType, bool) {
	typ, ok := keywords[text]
	return typ, ok
}

// IsCompoundKeyword reports whether text is one of the two-word keywords.
func IsCompoundKeyword(text string) bool {
	return compoundKeywords[text]
}

// Keywords returns every reserved word, compounds included.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for word := range keywords {
		words = append(words, word)
	}
	return words
}
