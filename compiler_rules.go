package yl

import "strconv"

var rules map[TokenKind]parseRule

func init() {
	rules = map[TokenKind]parseRule{
		TokLParen:   {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: PrecCall},
		TokDot:      {infix: (*Compiler).dot, precedence: PrecCall},
		TokLBracket: {infix: (*Compiler).index, precedence: PrecCall},
		TokMinus:    {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
		TokPlus:     {infix: (*Compiler).binary, precedence: PrecTerm},
		TokSlash:    {infix: (*Compiler).binary, precedence: PrecFactor},
		TokStar:     {infix: (*Compiler).binary, precedence: PrecFactor},
		TokPercent:  {infix: (*Compiler).binary, precedence: PrecFactor},
		TokBang:     {prefix: (*Compiler).unary},
		TokTilde:    {prefix: (*Compiler).unary},
		TokBangEq:   {infix: (*Compiler).binary, precedence: PrecEquality},
		TokEqEq:     {infix: (*Compiler).binary, precedence: PrecEquality},
		TokGreater:      {infix: (*Compiler).binary, precedence: PrecComparison},
		TokGreaterEq:    {infix: (*Compiler).binary, precedence: PrecComparison},
		TokLess:         {infix: (*Compiler).binary, precedence: PrecComparison},
		TokLessEq:       {infix: (*Compiler).binary, precedence: PrecComparison},
		TokAmp:          {infix: (*Compiler).binary, precedence: PrecBitAnd},
		TokPipe:         {prefix: (*Compiler).lambda, infix: (*Compiler).binary, precedence: PrecBitOr},
		TokCaret:        {infix: (*Compiler).binary, precedence: PrecBitXor},
		TokShl:          {infix: (*Compiler).binary, precedence: PrecShift},
		TokShr:          {infix: (*Compiler).binary, precedence: PrecShift},
		TokDotDot:       {infix: (*Compiler).rangeExpr, precedence: PrecRange},
		TokIdentifier:   {prefix: (*Compiler).variable},
		TokNumber:       {prefix: (*Compiler).number},
		TokString:       {prefix: (*Compiler).stringLiteral},
		TokInterpolationStart: {prefix: (*Compiler).interpolatedString},
		TokFalse: {prefix: (*Compiler).literal},
		TokTrue:  {prefix: (*Compiler).literal},
		TokNil:   {prefix: (*Compiler).literal},
		TokSelf:     {prefix: (*Compiler).selfExpr},
		TokSelfType: {prefix: (*Compiler).selfTypeExpr},
		TokSuper: {prefix: (*Compiler).superExpr},
		TokAnd:   {infix: (*Compiler).and, precedence: PrecAnd},
		TokOr:    {infix: (*Compiler).or, precedence: PrecOr},
		TokHash:  {prefix: (*Compiler).vecOrTupleOrMap},
	}
}

// TokPipe2 doesn't exist as a scanned token kind: lambdas use the
// already-defined TokPipe on both sides, so TokPipe's single rule above
// carries both the `|params| expr` prefix and the bit-or infix. The
// alias is just another name for TokPipe, not a rule of its own.
const TokPipe2 = TokPipe

func (c *Compiler) getRule(kind TokenKind) parseRule { return rules[kind] }

func (c *Compiler) expression() { c.parsePrecedence(PrecAssignment) }

func (c *Compiler) parsePrecedence(prec Precedence) {
	p := c.parser
	p.advance()
	rule := c.getRule(p.previous.Kind)
	if rule.prefix == nil {
		p.error("expect expression")
		return
	}
	canAssign := prec <= PrecAssignment
	rule.prefix(c, canAssign)

	for prec <= c.getRule(p.current.Kind).precedence {
		p.advance()
		infix := c.getRule(p.previous.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && p.match(TokEq) {
		p.error("invalid assignment target")
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.parser.consume(TokRParen, "expect ')' after expression")
}

func (c *Compiler) number(canAssign bool) {
	n, _ := strconv.ParseFloat(c.parser.previous.Lexeme, 64)
	c.emitConstant(NumberValue(n))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.parser.previous.Kind {
	case TokFalse:
		c.emitOp(OpFalse)
	case TokTrue:
		c.emitOp(OpTrue)
	case TokNil:
		c.emitOp(OpNil)
	}
}

func (c *Compiler) stringLiteral(canAssign bool) {
	lex := c.parser.previous.Lexeme
	s, err := UnescapeString(lex[1 : len(lex)-1])
	if err != nil {
		c.parser.error(err.Error())
		return
	}
	c.emitConstant(ObjectValue(c.internString(s)))
}

// interpolatedString compiles "...${e1}...${e2}..." into a sequence
// of string-constant and expression pushes followed by a single
// FORMAT_STRING that concatenates them, per §4.3/§4.5.
func (c *Compiler) interpolatedString(canAssign bool) {
	p := c.parser
	fragments := 0
	pushFragment := func(lex string) {
		s, err := UnescapeString(lex)
		if err != nil {
			p.error(err.Error())
			return
		}
		c.emitConstant(ObjectValue(c.internString(s)))
		fragments++
	}
	pushFragment(p.previous.Lexeme[1:]) // drop the opening quote
	for {
		c.expression()
		fragments++
		switch {
		case p.match(TokInterpolationMid):
			pushFragment(p.previous.Lexeme)
		case p.match(TokInterpolationEnd):
			pushFragment(p.previous.Lexeme)
			c.emitOp(OpFormatString)
			c.emitByte(byte(fragments))
			return
		default:
			p.errorAtCurrent("expect continuation of interpolated string")
			return
		}
	}
}

func (c *Compiler) unary(canAssign bool) {
	op := c.parser.previous.Kind
	c.parsePrecedence(PrecUnary)
	switch op {
	case TokMinus:
		c.emitOp(OpNegate)
	case TokBang:
		c.emitOp(OpNot)
	case TokTilde:
		c.emitOp(OpBitNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	op := c.parser.previous.Kind
	rule := c.getRule(op)
	c.parsePrecedence(rule.precedence + 1)
	switch op {
	case TokPlus:
		c.emitOp(OpAdd)
	case TokMinus:
		c.emitOp(OpSubtract)
	case TokStar:
		c.emitOp(OpMultiply)
	case TokSlash:
		c.emitOp(OpDivide)
	case TokPercent:
		c.emitOp(OpModulo)
	case TokBangEq:
		c.emitOp(OpNotEqual)
	case TokEqEq:
		c.emitOp(OpEqual)
	case TokGreater:
		c.emitOp(OpGreater)
	case TokGreaterEq:
		c.emitOp(OpGreaterEqual)
	case TokLess:
		c.emitOp(OpLess)
	case TokLessEq:
		c.emitOp(OpLessEqual)
	case TokAmp:
		c.emitOp(OpBitAnd)
	case TokPipe:
		c.emitOp(OpBitOr)
	case TokCaret:
		c.emitOp(OpBitXor)
	case TokShl:
		c.emitOp(OpShiftLeft)
	case TokShr:
		c.emitOp(OpShiftRight)
	}
}

func (c *Compiler) rangeExpr(canAssign bool) {
	c.parsePrecedence(PrecRange + 1)
	inclusive := byte(0)
	if c.parser.match(TokEq) {
		inclusive = 1
	}
	c.emitOp(OpBuildRange)
	c.emitByte(inclusive)
}

func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(OpJumpIfFalse)
	endJump := c.emitJump(OpJump)
	c.patchJump(elseJump)
	c.emitOp(OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(canAssign bool) {
	argCount := c.argumentList(TokRParen)
	c.emitOp(OpCall)
	c.emitByte(argCount)
}

func (c *Compiler) argumentList(closing TokenKind) byte {
	p := c.parser
	count := 0
	if !p.check(closing) {
		for {
			c.expression()
			count++
			if !p.match(TokComma) {
				break
			}
		}
	}
	p.consume(closing, "expect closing delimiter after arguments")
	return byte(count)
}

// dot compiles `.name`, `.name(...)` (method invocation, fused into a
// single INVOKE per §4.5), and `.name = value` assignment.
func (c *Compiler) dot(canAssign bool) {
	p := c.parser
	p.consume(TokIdentifier, "expect property name after '.'")
	name := p.previous.Lexeme
	nameConst := c.fn.Chunk.AddConstant(ObjectValue(c.internString(name)))

	switch {
	case canAssign && p.match(TokEq):
		c.expression()
		c.emitOp(OpSetProperty)
		c.emitU16(nameConst)
	case p.match(TokLParen):
		argCount := c.argumentList(TokRParen)
		c.emitOp(OpInvoke)
		c.emitU16(nameConst)
		c.emitByte(argCount)
	default:
		c.emitOp(OpGetProperty)
		c.emitU16(nameConst)
	}
}

// index compiles `x[i]` and `x[i] = v`; per §5 these desugar to
// __getitem__/__setitem__ calls on x's class, implemented at the
// opcode level as OpGetIndex/OpSetIndex which the VM resolves against
// those dunder methods.
func (c *Compiler) index(canAssign bool) {
	p := c.parser
	c.expression()
	p.consume(TokRBracket, "expect ']' after index")
	if canAssign && p.match(TokEq) {
		c.expression()
		c.emitOp(OpSetIndex)
	} else {
		c.emitOp(OpGetIndex)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.parser.previous.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp OpCode
	var wide bool
	var slotOrConst uint16

	if slot := c.resolveLocal(name); slot != -1 {
		getOp, setOp = OpGetLocal, OpSetLocal
		slotOrConst = uint16(slot)
	} else if up := c.resolveUpvalue(name); up != -1 {
		getOp, setOp = OpGetUpvalue, OpSetUpvalue
		slotOrConst = uint16(up)
	} else {
		getOp, setOp = OpGetGlobal, OpSetGlobal
		slotOrConst = c.fn.Chunk.AddConstant(ObjectValue(c.internString(name)))
		wide = true
	}

	if canAssign && isCompoundAssign(c.parser.current.Kind) {
		c.compoundAssign(getOp, setOp, slotOrConst, wide)
		return
	}
	if canAssign && c.parser.match(TokEq) {
		c.expression()
		c.emitVarOp(setOp, slotOrConst, wide)
		return
	}
	c.emitVarOp(getOp, slotOrConst, wide)
}

func (c *Compiler) emitVarOp(op OpCode, v uint16, wide bool) {
	c.emitOp(op)
	if wide {
		c.emitU16(v)
	} else {
		c.emitByte(byte(v))
	}
}

func isCompoundAssign(k TokenKind) bool {
	switch k {
	case TokPlusEq, TokMinusEq, TokStarEq, TokSlashEq, TokPercentEq,
		TokAmpEq, TokPipeEq, TokCaretEq, TokShlEq, TokShrEq:
		return true
	}
	return false
}

// compoundAssign desugars `x += e` to `x = x + e` at compile time
// (supplemented from the original's compound-assignment operators),
// reusing whichever get/set opcode pair namedVariable already chose.
func (c *Compiler) compoundAssign(getOp, setOp OpCode, v uint16, wide bool) {
	p := c.parser
	p.advance()
	op := p.previous.Kind
	c.emitVarOp(getOp, v, wide)
	c.expression()
	switch op {
	case TokPlusEq:
		c.emitOp(OpAdd)
	case TokMinusEq:
		c.emitOp(OpSubtract)
	case TokStarEq:
		c.emitOp(OpMultiply)
	case TokSlashEq:
		c.emitOp(OpDivide)
	case TokPercentEq:
		c.emitOp(OpModulo)
	case TokAmpEq:
		c.emitOp(OpBitAnd)
	case TokPipeEq:
		c.emitOp(OpBitOr)
	case TokCaretEq:
		c.emitOp(OpBitXor)
	case TokShlEq:
		c.emitOp(OpShiftLeft)
	case TokShrEq:
		c.emitOp(OpShiftRight)
	}
	c.emitVarOp(setOp, v, wide)
}

func (c *Compiler) selfExpr(canAssign bool) {
	if c.class == nil {
		c.parser.error("can't use 'self' outside a class method")
		return
	}
	c.namedVariable("self", false)
}

// selfTypeExpr compiles `Self`, which refers to the class of the
// running receiver (not necessarily the class lexically enclosing the
// method, since it's looked up via `self`'s own class at runtime --
// this matters for a method inherited by a subclass).
func (c *Compiler) selfTypeExpr(canAssign bool) {
	if c.class == nil {
		c.parser.error("can't use 'Self' outside a class method")
		return
	}
	c.namedVariable("self", false)
	c.emitOp(OpGetClass)
}

func (c *Compiler) superExpr(canAssign bool) {
	p := c.parser
	if c.class == nil {
		p.error("can't use 'super' outside a class method")
		return
	}
	if !c.class.hasSuper {
		p.error("can't use 'super' in a class with no superclass")
		return
	}
	p.consume(TokDot, "expect '.' after 'super'")
	p.consume(TokIdentifier, "expect superclass method name")
	name := p.previous.Lexeme
	nameConst := c.fn.Chunk.AddConstant(ObjectValue(c.internString(name)))

	c.namedVariable("self", false)
	if p.match(TokLParen) {
		argCount := c.argumentList(TokRParen)
		c.namedVariable("super", false)
		c.emitOp(OpSuperInvoke)
		c.emitU16(nameConst)
		c.emitByte(argCount)
	} else {
		c.namedVariable("super", false)
		c.emitOp(OpGetSuper)
		c.emitU16(nameConst)
	}
}

// lambda compiles `|a, b| expr` and `|a, b| { ... }` (§5's syntax
// summary).
func (c *Compiler) lambda(canAssign bool) {
	p := c.parser
	inner := newCompiler(p, c, funcLambda, "lambda")
	p.cur = inner
	inner.beginScope()

	if !p.check(TokPipe) {
		for {
			inner.fn.Arity++
			paramConst := inner.parseVariable("expect parameter name")
			inner.defineVariable(paramConst)
			if !p.match(TokComma) {
				break
			}
		}
	}
	p.consume(TokPipe, "expect '|' after lambda parameters")

	if p.match(TokLBrace) {
		inner.block()
	} else {
		inner.expression()
		inner.emitOp(OpReturn)
	}

	fn := inner.end()
	p.cur = c
	c.emitOp(OpClosure)
	c.emitU16(c.fn.Chunk.AddConstant(ObjectValue(fn)))
	for _, u := range inner.upvalues {
		if u.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(u.index)
	}
}

// vecOrTupleOrMap compiles the `#[...]`/`#(...)`/`#{...}` literal
// forms: `#` followed by a bracket/paren/brace picks Vec/Tuple/HashMap
// respectively, keeping all three collection literals under one
// unambiguous prefix token.
func (c *Compiler) vecOrTupleOrMap(canAssign bool) {
	p := c.parser
	switch {
	case p.match(TokLBracket):
		count := 0
		if !p.check(TokRBracket) {
			for {
				c.expression()
				count++
				if !p.match(TokComma) {
					break
				}
			}
		}
		p.consume(TokRBracket, "expect ']' after vec literal")
		c.emitOp(OpBuildVec)
		c.emitU16(uint16(count))
	case p.match(TokLParen):
		count := 0
		if !p.check(TokRParen) {
			for {
				c.expression()
				count++
				if !p.match(TokComma) {
					break
				}
			}
		}
		p.consume(TokRParen, "expect ')' after tuple literal")
		c.emitOp(OpBuildTuple)
		c.emitU16(uint16(count))
	case p.match(TokLBrace):
		count := 0
		if !p.check(TokRBrace) {
			for {
				c.expression()
				p.consume(TokColon, "expect ':' after map key")
				c.expression()
				count++
				if !p.match(TokComma) {
					break
				}
			}
		}
		p.consume(TokRBrace, "expect '}' after map literal")
		c.emitOp(OpBuildMap)
		c.emitU16(uint16(count))
	default:
		p.errorAtCurrent("expect '[', '(' or '{' after '#'")
	}
}
