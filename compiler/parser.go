package compiler

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for prose
// ---------------------------------------------------------------------------

// Parser parses prose source code into an AST. It holds exactly one current
// token and stops at the first error.
type Parser struct {
	lexer *Lexer
	cur   Token
}

// NewParser creates a new parser for the given input.
func NewParser(input string, opts ...Option) (*Parser, error) {
	p := &Parser{lexer: NewLexer(input, opts...)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse parses a whole program.
func Parse(input string, opts ...Option) (*Block, error) {
	p, err := NewParser(input, opts...)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

// ParseExpression parses input as a single expression.
func ParseExpression(input string, opts ...Option) (Expr, error) {
	p, err := NewParser(input, opts...)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.curIs(TokenEOF) {
		return nil, parseErrorf(p.cur, "unexpected %s after expression", p.cur.Type)
	}
	return expr, nil
}

// nextSignificant returns the next token, skipping indentation. Tabs are
// tokens for the lexer but carry no meaning in the grammar.
func nextSignificant(l *Lexer) (Token, error) {
	for {
		tok, err := l.NextToken()
		if err != nil || tok.Type != TokenIndent {
			return tok, err
		}
	}
}

// advance moves to the next token.
func (p *Parser) advance() error {
	tok, err := nextSignificant(p.lexer)
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

// curIs checks if the current token is of the given type.
func (p *Parser) curIs(t TokenType) bool {
	return p.cur.Type == t
}

// peekIs reports whether the token after the current one is of type t. The
// lexer is cloned; the parser does not move.
func (p *Parser) peekIs(t TokenType) (bool, error) {
	tok, err := nextSignificant(p.lexer.Clone())
	if err != nil {
		return false, err
	}
	return tok.Type == t, nil
}

// expect advances past the current token if it matches t.
func (p *Parser) expect(t TokenType) error {
	if !p.curIs(t) {
		return parseErrorf(p.cur, "expected %s, found %s", t, p.cur.Type)
	}
	return p.advance()
}

// expectIdent consumes an identifier and returns its name.
func (p *Parser) expectIdent() (string, error) {
	if !p.curIs(TokenIdentifier) {
		return "", parseErrorf(p.cur, "expected identifier, found %s", p.cur.Type)
	}
	name := p.cur.Literal
	return name, p.advance()
}

// looksLikeAssignment scans ahead on a cloned lexer from an identifier,
// skipping balanced [ ... ] groups, and reports whether `to` follows.
func (p *Parser) looksLikeAssignment() (bool, error) {
	l := p.lexer.Clone()
	tok, err := nextSignificant(l)
	if err != nil {
		return false, err
	}
	for tok.Type == TokenLBracket {
		depth := 1
		for depth > 0 {
			tok, err = nextSignificant(l)
			if err != nil {
				return false, err
			}
			switch tok.Type {
			case TokenLBracket:
				depth++
			case TokenRBracket:
				depth--
			case TokenEOF:
				return false, nil
			}
		}
		tok, err = nextSignificant(l)
		if err != nil {
			return false, err
		}
	}
	return tok.Type == TokenTo, nil
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

// Parse parses statements until EOF and returns the root block.
func (p *Parser) Parse() (*Block, error) {
	start := p.cur
	stmts, err := p.parseStatementList(TokenEOF)
	if err != nil {
		return nil, err
	}
	if !p.curIs(TokenEOF) {
		return nil, parseErrorf(p.cur, "unexpected %s outside of a block", p.cur.Type)
	}
	return WithPos(&Block{Statements: stmts}, start), nil
}

// parseStatementList parses statements up to terminator or any clause
// keyword that closes the enclosing arm. The returned slice is never nil.
func (p *Parser) parseStatementList(terminator TokenType) ([]Stmt, error) {
	stmts := []Stmt{}
	for {
		switch p.cur.Type {
		case terminator, TokenWhen, TokenOtherwise, TokenElse, TokenElseIf, TokenEOF:
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// parseStatement dispatches on the current token.
func (p *Parser) parseStatement() (Stmt, error) {
	switch p.cur.Type {
	case TokenDeclare:
		return p.parseDeclaration()
	case TokenSet:
		return p.parseSetStatement()
	case TokenIdentifier:
		assign, err := p.looksLikeAssignment()
		if err != nil {
			return nil, err
		}
		if assign {
			return p.parseAssignStatement()
		}
		return p.parseExpression()
	case TokenIf:
		return p.parseIfStatement()
	case TokenInput:
		call, err := p.peekIs(TokenLParen)
		if err != nil {
			return nil, err
		}
		if call {
			return p.parseExpression()
		}
		return p.parseInputStatement()
	case TokenFor:
		return p.parseForStatement()
	case TokenForeach:
		return p.parseForeachStatement()
	case TokenGenerate:
		return p.parseGenerateStatement()
	case TokenShow:
		return p.parseShowStatement()
	case TokenRepeat:
		while, err := p.peekIs(TokenWhile)
		if err != nil {
			return nil, err
		}
		if while {
			return p.parseRepeatStatement()
		}
		return p.parseRepeatTimeStatement()
	case TokenShowLine:
		return p.parseShowLnStatement()
	case TokenIterate:
		return p.parseIterateStatement()
	case TokenChoose:
		return p.parseChooseStatement()
	case TokenFunction:
		return p.parseFunctionDecl()
	case TokenReturn:
		return p.parseReturnStatement()
	case TokenClass:
		return p.parseClassDecl()
	case TokenImport:
		return p.parseImportStatement()
	case TokenFrom:
		return p.parseFromImportStatement()
	case TokenRaise:
		return p.parseRaiseException()
	case TokenTry:
		return p.parseTryCapture()
	case TokenSkip:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return WithPos(&SkipStatement{}, tok), nil
	case TokenExit:
		tok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		return WithPos(&ExitStatement{}, tok), nil
	case TokenAwait:
		return p.parseAwaitStatement()
	case TokenThis:
		return p.parseThisStatement()
	case TokenParent:
		return p.parseParentStatement()
	case TokenCallback:
		return p.parseCallback()
	case TokenEOF:
		return WithPos(&EOF{}, p.cur), nil
	}

	// Only identifiers and `this` may begin an expression statement.
	return nil, parseErrorf(p.cur, "unexpected token %s", p.cur.Type)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseDeclaration() (*Declaration, error) {
	declTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}

	var names []Expr
	for {
		target, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		names = append(names, target)
		if !p.curIs(TokenComma) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	return WithPos(&Declaration{Names: names}, declTok), nil
}

func (p *Parser) parseSetStatement() (*SetStatement, error) {
	setTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	target, err := p.parseTarget()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenTo); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return WithPos(&SetStatement{Target: target, Value: value}, setTok), nil
}

func (p *Parser) parseAssignStatement() (*AssignStatement, error) {
	assignTok := p.cur
	target, err := p.parseTarget()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenTo); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return WithPos(&AssignStatement{Target: target, Value: value}, assignTok), nil
}

func (p *Parser) parseIfStatement() (*IfStatement, error) {
	ifTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenThen); err != nil {
		return nil, err
	}
	then, err := p.parseStatementList(TokenEndIf)
	if err != nil {
		return nil, err
	}

	var elseIfs []ElseIfClause
	for p.curIs(TokenElseIf) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		c, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenThen); err != nil {
			return nil, err
		}
		body, err := p.parseStatementList(TokenEndIf)
		if err != nil {
			return nil, err
		}
		elseIfs = append(elseIfs, ElseIfClause{Condition: c, Body: body})
	}

	var elseBody []Stmt
	if p.curIs(TokenElse) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBody, err = p.parseStatementList(TokenEndIf)
		if err != nil {
			return nil, err
		}
	}

	if err := p.expect(TokenEndIf); err != nil {
		return nil, err
	}
	return WithPos(&IfStatement{
		Condition: cond,
		Then:      then,
		ElseIfs:   elseIfs,
		Else:      elseBody,
	}, ifTok), nil
}

// parseInputStatement parses `input target to input(prompt)`.
func (p *Parser) parseInputStatement() (*InputStatement, error) {
	inputTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	target, err := p.parseTarget()
	if err != nil {
		return nil, err
	}
	for _, t := range []TokenType{TokenTo, TokenInput, TokenLParen} {
		if err := p.expect(t); err != nil {
			return nil, err
		}
	}
	prompt, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return WithPos(&InputStatement{Target: target, Prompt: prompt}, inputTok), nil
}

// parseRange parses `VAR from START to END [kw STEP]` shared by for and
// generate.
func (p *Parser) parseRange(stepKw TokenType) (name string, start, end, step Expr, err error) {
	if name, err = p.expectIdent(); err != nil {
		return
	}
	if err = p.expect(TokenFrom); err != nil {
		return
	}
	if start, err = p.parseExpression(); err != nil {
		return
	}
	if err = p.expect(TokenTo); err != nil {
		return
	}
	if end, err = p.parseExpression(); err != nil {
		return
	}
	if p.curIs(stepKw) {
		if err = p.advance(); err != nil {
			return
		}
		step, err = p.parseExpression()
	}
	return
}

func (p *Parser) parseForStatement() (*ForStatement, error) {
	forTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, start, end, step, err := p.parseRange(TokenStep)
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(TokenEndFor)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEndFor); err != nil {
		return nil, err
	}
	return WithPos(&ForStatement{
		Variable: name,
		Start:    start,
		End:      end,
		Step:     step,
		Body:     body,
	}, forTok), nil
}

func (p *Parser) parseGenerateStatement() (*GenerateStatement, error) {
	genTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, start, end, by, err := p.parseRange(TokenBy)
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(TokenStop)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenStop); err != nil {
		return nil, err
	}
	return WithPos(&GenerateStatement{
		Variable: name,
		Start:    start,
		End:      end,
		By:       by,
		Body:     body,
	}, genTok), nil
}

func (p *Parser) parseForeachStatement() (*ForeachStatement, error) {
	foreachTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}

	parens := p.curIs(TokenLParen)
	if parens {
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	var vars []string
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		vars = append(vars, name)

		if parens && p.curIs(TokenRParen) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			break
		}
		if !p.curIs(TokenComma) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if err := p.expect(TokenIn); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(TokenEndForeach)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEndForeach); err != nil {
		return nil, err
	}
	return WithPos(&ForeachStatement{Variables: vars, Iterable: iterable, Body: body}, foreachTok), nil
}

func (p *Parser) parseShowStatement() (*ShowStatement, error) {
	showTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return WithPos(&ShowStatement{Expr: expr}, showTok), nil
}

func (p *Parser) parseShowLnStatement() (*ShowLnStatement, error) {
	tok := p.cur
	for _, t := range []TokenType{TokenShowLine, TokenLParen, TokenRParen} {
		if err := p.expect(t); err != nil {
			return nil, err
		}
	}
	return WithPos(&ShowLnStatement{}, tok), nil
}

func (p *Parser) parseRepeatStatement() (*RepeatStatement, error) {
	repeatTok := p.cur
	for _, t := range []TokenType{TokenRepeat, TokenWhile, TokenLParen} {
		if err := p.expect(t); err != nil {
			return nil, err
		}
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(TokenEndRepeat)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEndRepeat); err != nil {
		return nil, err
	}
	return WithPos(&RepeatStatement{Condition: cond, Body: body}, repeatTok), nil
}

func (p *Parser) parseRepeatTimeStatement() (*RepeatTimeStatement, error) {
	repeatTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	times, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenTimes); err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(TokenEndRepeat)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEndRepeat); err != nil {
		return nil, err
	}
	return WithPos(&RepeatTimeStatement{Times: times, Body: body}, repeatTok), nil
}

func (p *Parser) parseIterateStatement() (*IterateStatement, error) {
	iterTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenOver); err != nil {
		return nil, err
	}
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(TokenEndIterate)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEndIterate); err != nil {
		return nil, err
	}
	return WithPos(&IterateStatement{Variable: name, Iterable: iterable, Body: body}, iterTok), nil
}

func (p *Parser) parseChooseStatement() (*ChooseStatement, error) {
	chooseTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	subject, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	var whens []WhenClause
	for p.curIs(TokenWhen) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		body, err := p.parseStatementList(TokenEndChoose)
		if err != nil {
			return nil, err
		}
		whens = append(whens, WhenClause{Value: value, Body: body})
	}

	var otherwise []Stmt
	if p.curIs(TokenOtherwise) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		otherwise, err = p.parseStatementList(TokenEndChoose)
		if err != nil {
			return nil, err
		}
	}

	if err := p.expect(TokenEndChoose); err != nil {
		return nil, err
	}
	return WithPos(&ChooseStatement{Subject: subject, Whens: whens, Otherwise: otherwise}, chooseTok), nil
}

// parseSignature parses `NAME(PARAMS)`.
func (p *Parser) parseSignature() (string, []Stmt, error) {
	name, err := p.expectIdent()
	if err != nil {
		return "", nil, err
	}
	params, err := p.parseParenParams()
	if err != nil {
		return "", nil, err
	}
	return name, params, nil
}

// parseParenParams parses `(PARAMS)`.
func (p *Parser) parseParenParams() ([]Stmt, error) {
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseFunctionDecl() (*FunctionDecl, error) {
	funcTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, params, err := p.parseSignature()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(TokenEndFunction)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEndFunction); err != nil {
		return nil, err
	}
	return WithPos(&FunctionDecl{Name: name, Params: params, Body: body}, funcTok), nil
}

// parseParamList parses `a, b to default, ...` up to the closing paren.
func (p *Parser) parseParamList() ([]Stmt, error) {
	var params []Stmt
	if p.curIs(TokenRParen) {
		return params, nil
	}
	for {
		if !p.curIs(TokenIdentifier) {
			return nil, parseErrorf(p.cur, "expected identifier in parameter list, found %s", p.cur.Type)
		}
		paramTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		ident := WithPos(&Identifier{Name: paramTok.Literal}, paramTok)
		if p.curIs(TokenTo) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			params = append(params, WithPos(&AssignStatement{Target: ident, Value: value}, paramTok))
		} else {
			params = append(params, ident)
		}
		if !p.curIs(TokenComma) {
			return params, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseReturnStatement() (*ReturnStatement, error) {
	returnTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	var value Expr
	if startsExpression(p.cur.Type) {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	return WithPos(&ReturnStatement{Value: value}, returnTok), nil
}

func (p *Parser) parseClassDecl() (*ClassDecl, error) {
	classTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var inherit string
	if p.curIs(TokenInherit) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.curIs(TokenIdentifier) {
			return nil, parseErrorf(p.cur, "expected identifier after 'inherit', found %s", p.cur.Type)
		}
		inherit = p.cur.Literal
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	members, err := p.parseClassBody()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEndClass); err != nil {
		return nil, err
	}
	return WithPos(&ClassDecl{Name: name, Inherit: inherit, Members: members}, classTok), nil
}

// parseClassBody parses members until `end class`. Each member is stamped
// with the token that follows it.
func (p *Parser) parseClassBody() ([]Member, error) {
	var members []Member
	for !p.curIs(TokenEndClass) && !p.curIs(TokenEOF) {
		modifier := ModifierNone
		switch p.cur.Type {
		case TokenPublic:
			modifier = ModifierPublic
		case TokenSecret:
			modifier = ModifierSecret
		}
		if modifier != ModifierNone {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}

		var member Member
		switch p.cur.Type {
		case TokenDeclare:
			decl, err := p.parseDeclaration()
			if err != nil {
				return nil, err
			}
			member = WithPos(&FieldDecl{Modifier: modifier, Decl: decl}, p.cur)

		case TokenSet:
			set, err := p.parseSetStatement()
			if err != nil {
				return nil, err
			}
			member = WithPos(&FieldDecl{Modifier: modifier, Decl: set}, p.cur)

		case TokenIdentifier:
			assign, err := p.peekIs(TokenTo)
			if err != nil {
				return nil, err
			}
			if !assign {
				return nil, parseErrorf(p.cur, "unexpected identifier %q in class body", p.cur.Literal)
			}
			stmt, err := p.parseAssignStatement()
			if err != nil {
				return nil, err
			}
			member = WithPos(&FieldDecl{Modifier: modifier, Decl: stmt}, p.cur)

		case TokenMethod:
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, params, err := p.parseSignature()
			if err != nil {
				return nil, err
			}
			body, err := p.parseStatementList(TokenEndMethod)
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenEndMethod); err != nil {
				return nil, err
			}
			member = WithPos(&MethodDecl{Modifier: modifier, Name: name, Params: params, Body: body}, p.cur)

		case TokenInit:
			if err := p.advance(); err != nil {
				return nil, err
			}
			params, err := p.parseParenParams()
			if err != nil {
				return nil, err
			}
			body, err := p.parseStatementList(TokenEndInit)
			if err != nil {
				return nil, err
			}
			if err := p.expect(TokenEndInit); err != nil {
				return nil, err
			}
			member = WithPos(&ConstructorDecl{Modifier: modifier, Params: params, Body: body}, p.cur)

		default:
			return nil, parseErrorf(p.cur, "unexpected token %s in class body", p.cur.Type)
		}
		members = append(members, member)
	}
	return members, nil
}

// parseModulePath parses a string or a dotted identifier path.
func (p *Parser) parseModulePath() (string, error) {
	if p.curIs(TokenString) {
		path := p.cur.Literal
		return path, p.advance()
	}
	if !p.curIs(TokenIdentifier) {
		return "", parseErrorf(p.cur, "expected module name, found %s", p.cur.Type)
	}
	path := p.cur.Literal
	if err := p.advance(); err != nil {
		return "", err
	}
	for p.curIs(TokenDot) {
		if err := p.advance(); err != nil {
			return "", err
		}
		part, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		path += "." + part
	}
	return path, nil
}

func (p *Parser) parseImportStatement() (*ImportStatement, error) {
	importTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	var modules []string
	for {
		module, err := p.parseModulePath()
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
		if !p.curIs(TokenComma) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return WithPos(&ImportStatement{Modules: modules}, importTok), nil
}

func (p *Parser) parseFromImportStatement() (*FromImportStatement, error) {
	fromTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	module, err := p.parseModulePath()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenImport); err != nil {
		return nil, err
	}
	var names []string
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if !p.curIs(TokenComma) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return WithPos(&FromImportStatement{Module: module, Names: names}, fromTok), nil
}

func (p *Parser) parseRaiseException() (*RaiseException, error) {
	raiseTok := p.cur
	for _, t := range []TokenType{TokenRaise, TokenError, TokenLParen} {
		if err := p.expect(t); err != nil {
			return nil, err
		}
	}
	var errExpr Expr
	if !p.curIs(TokenRParen) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		errExpr = e
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return WithPos(&RaiseException{Error: errExpr}, raiseTok), nil
}

func (p *Parser) parseTryCapture() (*TryCapture, error) {
	tryTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parseStatementList(TokenCapture)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenCapture); err != nil {
		return nil, err
	}
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	captureVar, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	capture, err := p.parseStatementList(TokenStop)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenStop); err != nil {
		return nil, err
	}
	return WithPos(&TryCapture{Body: body, CaptureVar: captureVar, Capture: capture}, tryTok), nil
}

func (p *Parser) parseAwaitStatement() (*AwaitStatement, error) {
	awaitTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return WithPos(&AwaitStatement{Expr: expr}, awaitTok), nil
}

// parseThisStatement parses a statement led by `this`: either a field
// assignment `this.x to v` or an expression.
func (p *Parser) parseThisStatement() (Stmt, error) {
	thisTok := p.cur
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.curIs(TokenTo) {
		return expr, nil
	}
	if _, ok := expr.(*FieldAccess); !ok {
		return nil, parseErrorf(p.cur, "cannot assign to %s", NodeKind(expr))
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return WithPos(&AssignStatement{Target: expr, Value: value}, thisTok), nil
}

// parseParentStatement parses parent.init(...), parent.method(...) and
// parent.field.
func (p *Parser) parseParentStatement() (Stmt, error) {
	dot, err := p.peekIs(TokenDot)
	if err != nil {
		return nil, err
	}
	if !dot {
		return nil, parseErrorf(p.cur, "expected '.' after 'parent'")
	}
	if err := p.advance(); err != nil { // parent
		return nil, err
	}
	if err := p.advance(); err != nil { // .
		return nil, err
	}

	call, err := p.peekIs(TokenLParen)
	if err != nil {
		return nil, err
	}

	switch {
	case p.curIs(TokenInit) && call:
		initTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return WithPos(&ParentConstructorCall{Args: args}, initTok), nil

	case p.curIs(TokenIdentifier) && call:
		methodTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return WithPos(&ParentMethodAccess{Method: methodTok.Literal, Args: args}, methodTok), nil

	default:
		fieldTok := p.cur
		field, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		return WithPos(&ParentAccess{Field: field}, fieldTok), nil
	}
}

func (p *Parser) parseCallback() (*Callback, error) {
	callbackTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	name, params, err := p.parseSignature()
	if err != nil {
		return nil, err
	}
	return WithPos(&Callback{Name: name, Params: params}, callbackTok), nil
}
