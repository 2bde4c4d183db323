package compiler

import "fmt"

// Stage identifies which front-end phase produced an error.
type Stage string

const (
	StageLexer  Stage = "lexer"
	StageParser Stage = "parser"
)

// LexError is a terminal tokenization failure. There is no recovery: the
// caller must stop at the first one.
type LexError struct {
	Msg string
	Pos Position
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Stage returns StageLexer.
func (e *LexError) Stage() Stage { return StageLexer }

// Position returns where the error was detected.
func (e *LexError) Position() Position { return e.Pos }

// ParseError is a terminal grammar failure. Got is the offending token type.
type ParseError struct {
	Msg string
	Pos Position
	Got TokenType
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Stage returns StageParser.
func (e *ParseError) Stage() Stage { return StageParser }

// Position returns the position of the offending token.
func (e *ParseError) Position() Position { return e.Pos }

// PositionedError is implemented by both LexError and ParseError.
type PositionedError interface {
	error
	Stage() Stage
	Position() Position
}

func lexErrorf(pos Position, format string, args ...interface{}) *LexError {
	return &LexError{Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func parseErrorf(tok Token, format string, args ...interface{}) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Pos: tok.Pos, Got: tok.Type}
}
