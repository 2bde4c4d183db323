package compiler

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for prose source
// ---------------------------------------------------------------------------

// LiteralMode selects how 0x and 0b literals are classified.
type LiteralMode int

const (
	// LiteralTyped emits TokenHex and TokenBytes with the raw literal text.
	LiteralTyped LiteralMode = iota
	// LiteralCompat emits TokenNumber for every numeric literal. Hex and
	// binary text does not parse as a float, so such tokens carry 0.
	LiteralCompat
)

func (m LiteralMode) String() string {
	if m == LiteralCompat {
		return "compat"
	}
	return "typed"
}

// ParseLiteralMode maps a configuration string to a LiteralMode.
func ParseLiteralMode(s string) (LiteralMode, bool) {
	switch strings.ToLower(s) {
	case "", "typed":
		return LiteralTyped, true
	case "compat":
		return LiteralCompat, true
	}
	return LiteralTyped, false
}

type options struct {
	literals    LiteralMode
	signFolding bool
}

func defaultOptions() options {
	return options{literals: LiteralTyped, signFolding: true}
}

// Option configures a Lexer.
type Option func(*options)

// WithLiteralMode sets how hex and binary literals are tokenized.
func WithLiteralMode(m LiteralMode) Option {
	return func(o *options) { o.literals = m }
}

// WithSignFolding controls whether a '-' immediately followed by a digit is
// folded into a negative number literal. When enabled (the default) "5-3"
// lexes as NUMBER(5) NUMBER(-3), not as a subtraction.
func WithSignFolding(enabled bool) Option {
	return func(o *options) { o.signFolding = enabled }
}

// Lexer tokenizes prose source code. All of its state is held by value, so
// copying a Lexer clones the scanner; lookahead relies on this.
type Lexer struct {
	input   string
	pos     int  // offset of ch
	readPos int  // offset after ch
	ch      rune // current, not yet consumed character
	line    int  // current line (1-based)
	col     int  // characters consumed on the current line
	opts    options
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string, opts ...Option) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		opts:  defaultOptions(),
	}
	for _, opt := range opts {
		opt(&l.opts)
	}
	l.load()
	return l
}

// Clone returns an independent copy of the lexer. Advancing the copy never
// affects the original.
func (l *Lexer) Clone() *Lexer {
	c := *l
	return &c
}

// load decodes the character at readPos into ch without counting it.
func (l *Lexer) load() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

// readChar consumes the current character.
func (l *Lexer) readChar() {
	if l.atEOF() {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	l.load()
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// Peek returns the next unconsumed character, or 0 at end of input.
func (l *Lexer) Peek() rune {
	if l.atEOF() {
		return 0
	}
	return l.ch
}

// PeekNext returns the character after Peek, or 0 if there is none.
func (l *Lexer) PeekNext() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.col}
}

// PeekToken reports what NextToken would return without advancing the
// lexer. ok is false at end of input.
func (l *Lexer) PeekToken() (tok Token, ok bool, err error) {
	c := l.Clone()
	tok, err = c.NextToken()
	if err != nil {
		return Token{}, false, err
	}
	if tok.Type == TokenEOF {
		return tok, false, nil
	}
	return tok, true, nil
}

// NextToken returns the next token.
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	pos := l.position()

	if l.atEOF() {
		return Token{Type: TokenEOF, Pos: pos}, nil
	}

	if l.ch == '\t' {
		start := l.pos
		for l.ch == '\t' {
			l.readChar()
		}
		return Token{Type: TokenIndent, Literal: l.input[start:l.pos], Pos: pos}, nil
	}

	switch ch := l.ch; {
	case ch == '-' && l.opts.signFolding && isDigit(l.PeekNext()):
		return l.readNumber(pos), nil

	case isDigit(ch):
		return l.readNumber(pos), nil

	case ch == '"' || ch == '\'':
		return l.readString(pos)

	case isLetter(ch) || ch == '_':
		return l.readIdentifierOrKeyword(pos), nil

	case ch == '<':
		return l.readOperator(pos, TokenLessThan, TokenLessThanEqual), nil

	case ch == '>':
		return l.readOperator(pos, TokenGreaterThan, TokenGreaterThanEqual), nil

	case ch == '!':
		return l.readOperator(pos, TokenBang, TokenNotEqual), nil

	case ch == '=':
		if l.PeekNext() != '=' {
			return Token{}, lexErrorf(pos, "invalid standalone '='")
		}
		l.readChar()
		l.readChar()
		return Token{Type: TokenIsEqual, Literal: "==", Pos: pos}, nil
	}

	if typ, ok := singleCharTokens[l.ch]; ok {
		lit := string(l.ch)
		l.readChar()
		return Token{Type: typ, Literal: lit, Pos: pos}, nil
	}

	ch := l.ch
	l.readChar()
	return Token{}, lexErrorf(pos, "unknown character %q", ch)
}

var singleCharTokens = map[rune]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMultiply,
	'/': TokenDivide,
	'^': TokenPower,
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	'[': TokenLBracket,
	']': TokenRBracket,
	',': TokenComma,
	';': TokenSemicolon,
	'.': TokenDot,
	':': TokenColon,
}

// readOperator reads a one-character operator that becomes a two-character
// operator when followed by '='.
func (l *Lexer) readOperator(pos Position, single, withEq TokenType) Token {
	first := l.ch
	l.readChar()
	if l.ch == '=' {
		l.readChar()
		return Token{Type: withEq, Literal: string(first) + "=", Pos: pos}
	}
	return Token{Type: single, Literal: string(first), Pos: pos}
}

// skipWhitespace skips spaces and newlines. Tabs are significant and left
// for NextToken.
func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && l.ch != '\t' && unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// skipWhitespaceAndComments skips whitespace, // comments and /* */ comments.
func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		l.skipWhitespace()

		if l.ch != '/' {
			return nil
		}
		switch l.PeekNext() {
		case '/':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		case '*':
			start := l.position()
			l.readChar() // consume /
			l.readChar() // consume *
			for {
				if l.atEOF() {
					return lexErrorf(start, "unterminated block comment starting at line %d", start.Line)
				}
				if l.ch == '*' && l.PeekNext() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
		default:
			return nil
		}
	}
}

// readNumber reads a decimal, hex or binary literal, including a folded
// leading minus sign.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos
	negative := l.ch == '-'
	if negative {
		l.readChar()
	}

	if !negative && l.ch == '0' && (l.PeekNext() == 'x' || l.PeekNext() == 'b') {
		typ := TokenHex
		digit := isHexDigit
		if l.PeekNext() == 'b' {
			typ = TokenBytes
			digit = isBinaryDigit
		}
		l.readChar() // 0
		l.readChar() // x or b
		for !l.atEOF() && digit(l.ch) {
			l.readChar()
		}
		literal := l.input[start:l.pos]
		if l.opts.literals == LiteralCompat {
			return Token{Type: TokenNumber, Literal: literal, Number: parseNumber(literal), Pos: pos}
		}
		return Token{Type: typ, Literal: literal, Pos: pos}
	}

	hasDecimal := false
	for !l.atEOF() {
		switch {
		case isDigit(l.ch):
			l.readChar()
			continue
		case l.ch == '.' && !hasDecimal:
			hasDecimal = true
			l.readChar()
			continue
		case l.ch == 'e' || l.ch == 'E':
			l.readChar()
			if l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
		break
	}

	literal := l.input[start:l.pos]
	return Token{Type: TokenNumber, Literal: literal, Number: parseNumber(literal), Pos: pos}
}

// parseNumber float-parses a literal, yielding 0 for text that does not
// parse. Out-of-range literals become ±Inf.
func parseNumber(literal string) float64 {
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return v
}

// readString reads a string literal delimited by the current quote character.
func (l *Lexer) readString(pos Position) (Token, error) {
	quote := l.ch
	l.readChar() // consume opening quote

	var sb strings.Builder
	for {
		if l.atEOF() {
			return Token{}, lexErrorf(pos, "unterminated string starting at line %d", pos.Line)
		}
		if l.ch == quote {
			l.readChar()
			return Token{Type: TokenString, Literal: sb.String(), Pos: pos}, nil
		}
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF() {
				return Token{}, lexErrorf(pos, "unterminated string starting at line %d", pos.Line)
			}
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			default:
				sb.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
}

// readWord consumes letters, digits and underscores.
func (l *Lexer) readWord() string {
	start := l.pos
	for !l.atEOF() && (isLetter(l.ch) || isDigit(l.ch) || l.ch == '_') {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readIdentifierOrKeyword reads an identifier, merges it with the following
// word when the pair is a compound keyword, and classifies the result.
func (l *Lexer) readIdentifierOrKeyword(pos Position) Token {
	word := l.readWord()
	if compoundPrefixes[word] {
		word = l.mergeCompound(word)
	}
	if typ, ok := keywords[word]; ok {
		return Token{Type: typ, Literal: word, Pos: pos}
	}
	return Token{Type: TokenIdentifier, Literal: word, Pos: pos}
}

// mergeCompound looks past whitespace for a second word completing a
// compound keyword. The lexer only advances when the pair matches.
func (l *Lexer) mergeCompound(first string) string {
	c := *l
	c.skipWhitespace()
	if c.atEOF() || !isLetter(c.ch) {
		return first
	}
	combined := first + " " + c.readWord()
	if !compoundKeywords[combined] {
		return first
	}
	*l = c
	return combined
}

// compoundPrefixes holds the first words of the compound keywords.
var compoundPrefixes = func() map[string]bool {
	prefixes := make(map[string]bool)
	for kw := range compoundKeywords {
		prefixes[kw[:strings.IndexByte(kw, ' ')]] = true
	}
	return prefixes
}()

// Helper functions

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isBinaryDigit(r rune) bool {
	return r == '0' || r == '1'
}

// Tokenize drains the lexer through EOF inclusive. The first error aborts.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// Tokenize returns all tokens from the input.
func Tokenize(input string, opts ...Option) ([]Token, error) {
	return NewLexer(input, opts...).Tokenize()
}
