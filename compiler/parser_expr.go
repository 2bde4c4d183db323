package compiler

// ---------------------------------------------------------------------------
// Expression parsing
// ---------------------------------------------------------------------------

// Binary operator precedence. Higher binds tighter; all are left
// associative.
var precedences = map[TokenType]int{
	TokenOr:               1,
	TokenAnd:              2,
	TokenIs:               3,
	TokenIsNot:            3,
	TokenIn:               3,
	TokenIsIn:             3,
	TokenIsEqual:          3,
	TokenNotEqual:         3,
	TokenLessThan:         4,
	TokenLessThanEqual:    4,
	TokenGreaterThan:      4,
	TokenGreaterThanEqual: 4,
	TokenPlus:             5,
	TokenMinus:            5,
	TokenMultiply:         6,
	TokenDivide:           6,
	TokenMod:              6,
	TokenPower:            7,
}

// Precedence returns the binding power of a binary operator, or 0 if t is
// not one.
func Precedence(t TokenType) int {
	return precedences[t]
}

// startsExpression reports whether a token of type t can begin an
// expression.
func startsExpression(t TokenType) bool {
	switch t {
	case TokenNumber, TokenString, TokenHex, TokenBytes, TokenScientific,
		TokenIdentifier, TokenLParen, TokenLBracket, TokenLBrace,
		TokenIf, TokenNot, TokenBang, TokenNew, TokenByteArray, TokenInput,
		TokenTrue, TokenFalse, TokenNull, TokenThis:
		return true
	}
	return false
}

func (p *Parser) parseExpression() (Expr, error) {
	return p.parseBinaryOperation(0)
}

// parseBinaryOperation is a precedence climber. Each node is stamped with
// the token that follows its right operand.
func (p *Parser) parseBinaryOperation(minPrec int) (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.cur.Type
		prec := Precedence(op)
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseBinaryOperation(prec + 1)
		if err != nil {
			return nil, err
		}
		left = WithPos(&BinaryOperation{Left: left, Operator: op, Right: right}, p.cur)
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	expr, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(expr)
}

// parsePostfix parses trailing `.field` and `.method(args)` accessors.
func (p *Parser) parsePostfix(expr Expr) (Expr, error) {
	for p.curIs(TokenDot) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.curIs(TokenIdentifier) {
			return nil, parseErrorf(p.cur, "expected identifier after '.', found %s", p.cur.Type)
		}
		fieldTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		var err error
		if expr, err = p.finishMember(expr, fieldTok, fieldTok); err != nil {
			return nil, err
		}
	}
	return expr, nil
}

// finishMember builds a method call or field access on object once the
// member name has been consumed.
func (p *Parser) finishMember(object Expr, nameTok, posTok Token) (Expr, error) {
	if p.curIs(TokenLParen) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseArgList(TokenRParen)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return WithPos(&MethodCall{Object: object, Method: nameTok.Literal, Args: args}, posTok), nil
	}
	field := WithPos(&Identifier{Name: nameTok.Literal}, nameTok)
	return WithPos(&FieldAccess{Object: object, Field: field}, posTok), nil
}

func (p *Parser) parseOperand() (Expr, error) {
	tok := p.cur
	switch tok.Type {
	case TokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil

	case TokenIf:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.parseTernary(tok)

	case TokenNot, TokenBang:
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return WithPos(&UnaryOperation{Operator: TokenNot, Operand: operand}, tok), nil

	case TokenIdentifier:
		return p.parseIdentifierExpr()

	case TokenLBracket:
		if err := p.advance(); err != nil {
			return nil, err
		}
		elems, err := p.parseArgList(TokenRBracket)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRBracket); err != nil {
			return nil, err
		}
		return WithPos(&ArrayElement{Elements: elems}, tok), nil

	case TokenLBrace:
		return p.parseDictionary()

	case TokenNew:
		if err := p.advance(); err != nil {
			return nil, err
		}
		class, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return WithPos(&ClassInstantiation{Class: class, Args: args}, tok), nil

	case TokenByteArray:
		return p.parseByteArray()

	case TokenInput:
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return WithPos(&FunctionCall{Name: "input", Args: args}, tok), nil

	case TokenThis:
		return p.parseFieldAccess()
	}

	lit, err := p.literal(tok)
	if err != nil {
		return nil, err
	}
	return lit, p.advance()
}

// literal converts a literal token into its node.
func (p *Parser) literal(tok Token) (Expr, error) {
	switch tok.Type {
	case TokenNumber:
		return WithPos(&NumberLiteral{Value: tok.Number}, tok), nil
	case TokenString:
		return WithPos(&StringLiteral{Value: tok.Literal}, tok), nil
	case TokenHex:
		return WithPos(&HexLiteral{Value: tok.Literal}, tok), nil
	case TokenBytes:
		return WithPos(&BytesLiteral{Value: tok.Literal}, tok), nil
	case TokenScientific:
		return WithPos(&ScientificLiteral{Value: parseNumber(tok.Literal)}, tok), nil
	case TokenTrue:
		return WithPos(&TrueLiteral{}, tok), nil
	case TokenFalse:
		return WithPos(&FalseLiteral{}, tok), nil
	case TokenNull:
		return WithPos(&NullLiteral{}, tok), nil
	}
	return nil, parseErrorf(tok, "expected expression, found %s", tok.Type)
}

// parseTernary parses the rest of `if c then a else b` after the `if`.
// `else if` chains nest.
func (p *Parser) parseTernary(ifTok Token) (Expr, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenThen); err != nil {
		return nil, err
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	var otherwise Expr
	switch p.cur.Type {
	case TokenElseIf:
		elseIfTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		otherwise, err = p.parseTernary(elseIfTok)
	case TokenElse:
		if err := p.advance(); err != nil {
			return nil, err
		}
		otherwise, err = p.parseExpression()
	default:
		return nil, parseErrorf(p.cur, "expected %s, found %s", TokenElse, p.cur.Type)
	}
	if err != nil {
		return nil, err
	}
	return WithPos(&Ternary{Condition: cond, Then: then, Else: otherwise}, ifTok), nil
}

// parseIdentifierExpr parses an identifier and an optional index chain,
// call, or first member access.
func (p *Parser) parseIdentifierExpr() (Expr, error) {
	tok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch p.cur.Type {
	case TokenLBracket:
		return p.parseIndexChain(tok)

	case TokenLParen:
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return WithPos(&FunctionCall{Name: tok.Literal, Args: args}, tok), nil

	case TokenDot:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.curIs(TokenIdentifier) {
			return nil, parseErrorf(p.cur, "expected identifier after '.', found %s", p.cur.Type)
		}
		nameTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		object := WithPos(&Identifier{Name: tok.Literal}, tok)
		return p.finishMember(object, nameTok, tok)
	}

	return WithPos(&Identifier{Name: tok.Literal}, tok), nil
}

// parseTarget parses an assignable name: an identifier with an optional
// chain of [index] suffixes.
func (p *Parser) parseTarget() (Expr, error) {
	if !p.curIs(TokenIdentifier) {
		return nil, parseErrorf(p.cur, "expected identifier, found %s", p.cur.Type)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.curIs(TokenLBracket) {
		return p.parseIndexChain(tok)
	}
	return WithPos(&Identifier{Name: tok.Literal}, tok), nil
}

// parseIndexChain parses `[i][j]...` after the identifier nameTok. String
// literal indices make a DictionaryAccess, anything else an ArrayAccess;
// a chain may not mix the two.
func (p *Parser) parseIndexChain(nameTok Token) (Expr, error) {
	var indices []Expr
	dict, array := false, false
	for p.curIs(TokenLBracket) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		index, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRBracket); err != nil {
			return nil, err
		}
		if _, ok := index.(*StringLiteral); ok {
			dict = true
		} else {
			array = true
		}
		indices = append(indices, index)
	}

	if dict && array {
		return nil, parseErrorf(nameTok, "mixed dictionary and array access is not supported")
	}
	if dict {
		return WithPos(&DictionaryAccess{Name: nameTok.Literal, Keys: indices}, nameTok), nil
	}
	return WithPos(&ArrayAccess{Name: nameTok.Literal, Indices: indices}, nameTok), nil
}

// parseFieldAccess parses `this.field`, `this.method(args)` or a bare
// `this`.
func (p *Parser) parseFieldAccess() (Expr, error) {
	tok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	object := WithPos(&This{}, tok)
	if !p.curIs(TokenDot) {
		return object, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	fieldTok := p.cur
	field, err := p.parseTarget()
	if err != nil {
		return nil, err
	}
	if p.curIs(TokenLParen) {
		if _, ok := field.(*Identifier); !ok {
			return nil, parseErrorf(p.cur, "expected method name before '('")
		}
		return p.finishMember(object, fieldTok, fieldTok)
	}
	return WithPos(&FieldAccess{Object: object, Field: field}, fieldTok), nil
}

// parsePath parses a dotted class path such as pkg.sub.Class.
func (p *Parser) parsePath() (Expr, error) {
	if !p.curIs(TokenIdentifier) {
		return nil, parseErrorf(p.cur, "expected class name, found %s", p.cur.Type)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	var path Expr = WithPos(&Identifier{Name: tok.Literal}, tok)
	for p.curIs(TokenDot) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.curIs(TokenIdentifier) {
			return nil, parseErrorf(p.cur, "expected identifier after '.', found %s", p.cur.Type)
		}
		fieldTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		field := WithPos(&Identifier{Name: fieldTok.Literal}, fieldTok)
		path = WithPos(&FieldAccess{Object: path, Field: field}, fieldTok)
	}
	return path, nil
}

// parseCallArgs parses `(args)`.
func (p *Parser) parseCallArgs() ([]Expr, error) {
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	args, err := p.parseArgList(TokenRParen)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return args, nil
}

// parseArgList parses comma-separated expressions up to, not including,
// the closing token.
func (p *Parser) parseArgList(closer TokenType) ([]Expr, error) {
	args := []Expr{}
	if p.curIs(closer) {
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.curIs(TokenComma) {
			return args, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseDictionary() (*Dictionary, error) {
	braceTok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	pairs := []DictPair{}
	for len(pairs) > 0 || !p.curIs(TokenRBrace) {
		if !p.curIs(TokenString) {
			return nil, parseErrorf(p.cur, "expected string key, found %s", p.cur.Type)
		}
		key := WithPos(&StringLiteral{Value: p.cur.Literal}, p.cur)
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expect(TokenColon); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, DictPair{Key: key, Value: value})
		if !p.curIs(TokenComma) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}
	return WithPos(&Dictionary{Pairs: pairs}, braceTok), nil
}

// parseByteArray parses `bytearray(a, b, c)` with up to three arguments.
func (p *Parser) parseByteArray() (*ByteArray, error) {
	tok := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	var args [3]Expr
	for i := 0; i < len(args) && !p.curIs(TokenRParen); i++ {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args[i] = arg
		if p.curIs(TokenComma) {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return WithPos(&ByteArray{Args: args}, tok), nil
}
