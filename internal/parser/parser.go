// Package parser implements the syntax analysis for Lox.
// It uses Pratt parsing for expressions and recursive descent for statements/declarations.
package parser

import (
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// maxArgs is the limit on call arguments and function parameters.
const maxArgs = 255

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpOr         = 10 // or
	bpAnd        = 20 // and
	bpEquality   = 30 // == !=
	bpComparison = 40 // < <= > >=
	bpTerm       = 50 // + -
	bpFactor     = 60 // * /
	bpUnary      = 70 // ! -
	bpCall       = 80 // () .
)

// infixBP returns the left binding power for an infix/postfix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.OR:
		return bpOr
	case token.AND:
		return bpAnd
	case token.EQUAL_EQUAL, token.BANG_EQUAL:
		return bpEquality
	case token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpTerm
	case token.STAR, token.SLASH:
		return bpFactor
	case token.LEFT_PAREN, token.DOT:
		return bpCall
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
//
// Parse methods return nil after reporting an error that leaves the
// current declaration unusable; declaration() then synchronizes to the next
// statement boundary. Errors that do not derail parsing (too many
// arguments, invalid assignment target) are only recorded.
type Parser struct {
	tokens []token.Token
	pos    int
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice. The slice must end with EOF.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// Parse parses the whole program and returns its statements and diagnostics.
func (p *Parser) Parse() ([]ast.Stmt, []diag.Diagnostic) {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

func (p *Parser) previous() token.Token {
	if p.pos == 0 {
		return p.peek()
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

// match consumes the current token if it is one of kinds.
func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind, msg string) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	p.errorAt(p.peek(), "E2001", msg)
	return p.peek(), false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

func (p *Parser) errorAt(tok token.Token, code, msg string) {
	p.diags = append(p.diags, diag.ErrorAt(code, tok, "%s", msg))
}

// ============================================================
// Error recovery
// ============================================================

// synchronize discards tokens until a likely statement boundary.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == token.SEMICOLON {
			return
		}
		switch p.peekKind() {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}

// ============================================================
// Declarations
// ============================================================

func (p *Parser) declaration() ast.Stmt {
	var stmt ast.Stmt
	switch p.peekKind() {
	case token.CLASS:
		stmt = p.parseClassDecl()
	case token.FUN:
		p.advance()
		if fn := p.parseFunction("function"); fn != nil {
			stmt = fn
		}
	case token.VAR:
		stmt = p.parseVarDecl()
	default:
		stmt = p.parseStmt()
	}
	if stmt == nil {
		p.synchronize()
		return nil
	}
	return stmt
}

// parseClassDecl parses: class IDENT [ < IDENT ] { methods }
func (p *Parser) parseClassDecl() ast.Stmt {
	start := p.advance() // consume 'class'
	name, ok := p.expect(token.IDENT, "Expect class name.")
	if !ok {
		return nil
	}
	decl := &ast.ClassDecl{StmtBase: stmtBase(start), Name: name}

	if p.match(token.LESS) {
		superName, ok := p.expect(token.IDENT, "Expect superclass name.")
		if !ok {
			return nil
		}
		decl.Superclass = &ast.VariableExpr{ExprBase: exprBase(superName), Name: superName}
	}

	if _, ok := p.expect(token.LEFT_BRACE, "Expect '{' before class body."); !ok {
		return nil
	}
	for !p.check(token.RIGHT_BRACE) && !p.isAtEnd() {
		method := p.parseFunction("method")
		if method == nil {
			return nil
		}
		decl.Methods = append(decl.Methods, method)
	}
	if _, ok := p.expect(token.RIGHT_BRACE, "Expect '}' after class body."); !ok {
		return nil
	}
	return decl
}

// parseFunction parses: IDENT ( params ) block. kind is "function" or
// "method" and only affects error messages.
func (p *Parser) parseFunction(kind string) *ast.FuncDecl {
	name, ok := p.expect(token.IDENT, "Expect "+kind+" name.")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.LEFT_PAREN, "Expect '(' after "+kind+" name."); !ok {
		return nil
	}

	var params []token.Token
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(params) >= maxArgs {
				p.errorAt(p.peek(), "E2004", "Can't have more than 255 parameters.")
			}
			param, ok := p.expect(token.IDENT, "Expect parameter name.")
			if !ok {
				return nil
			}
			params = append(params, param)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, ok := p.expect(token.RIGHT_PAREN, "Expect ')' after parameters."); !ok {
		return nil
	}

	if _, ok := p.expect(token.LEFT_BRACE, "Expect '{' before "+kind+" body."); !ok {
		return nil
	}
	body, ok := p.parseBlockBody()
	if !ok {
		return nil
	}
	return &ast.FuncDecl{StmtBase: stmtBase(name), Name: name, Params: params, Body: body}
}

// parseVarDecl parses: var IDENT [ = expr ] ;
func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.advance() // consume 'var'
	name, ok := p.expect(token.IDENT, "Expect variable name.")
	if !ok {
		return nil
	}
	stmt := &ast.VarDeclStmt{StmtBase: stmtBase(start), Name: name}

	if p.match(token.EQUAL) {
		if stmt.Init = p.parseExpression(); stmt.Init == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.SEMICOLON, "Expect ';' after variable declaration."); !ok {
		return nil
	}
	return stmt
}

// ============================================================
// Statements
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.FOR:
		return p.parseForStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.PRINT:
		return p.parsePrintStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.LEFT_BRACE:
		start := p.advance()
		stmts, ok := p.parseBlockBody()
		if !ok {
			return nil
		}
		return &ast.BlockStmt{StmtBase: stmtBase(start), Stmts: stmts}
	default:
		return p.parseExprStmt()
	}
}

// parseBlockBody parses the statements after an opening brace up to and
// including the closing brace.
func (p *Parser) parseBlockBody() ([]ast.Stmt, bool) {
	stmts := []ast.Stmt{}
	for !p.check(token.RIGHT_BRACE) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, ok := p.expect(token.RIGHT_BRACE, "Expect '}' after block."); !ok {
		return nil, false
	}
	return stmts, true
}

// parseForStmt parses: for ( [init] ; [cond] ; [incr] ) stmt
// and desugars it into a block containing a while loop.
func (p *Parser) parseForStmt() ast.Stmt {
	start := p.advance() // consume 'for'
	if _, ok := p.expect(token.LEFT_PAREN, "Expect '(' after 'for'."); !ok {
		return nil
	}

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
	case p.check(token.VAR):
		if init = p.parseVarDecl(); init == nil {
			return nil
		}
	default:
		if init = p.parseExprStmt(); init == nil {
			return nil
		}
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		if cond = p.parseExpression(); cond == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.SEMICOLON, "Expect ';' after loop condition."); !ok {
		return nil
	}

	var incr ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		if incr = p.parseExpression(); incr == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.RIGHT_PAREN, "Expect ')' after for clauses."); !ok {
		return nil
	}

	body := p.parseStmt()
	if body == nil {
		return nil
	}

	if incr != nil {
		body = &ast.BlockStmt{
			StmtBase: stmtAt(body.GetPos()),
			Stmts:    []ast.Stmt{body, &ast.ExprStmt{StmtBase: stmtBase(start), Expr: incr}},
		}
	}
	if cond == nil {
		cond = &ast.BoolLiteral{ExprBase: exprBase(start), Value: true}
	}
	body = &ast.WhileStmt{StmtBase: stmtBase(start), Condition: cond, Body: body}
	if init != nil {
		body = &ast.BlockStmt{StmtBase: stmtBase(start), Stmts: []ast.Stmt{init, body}}
	}
	return body
}

// parseIfStmt parses: if ( expr ) stmt [ else stmt ]
func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.advance() // consume 'if'
	if _, ok := p.expect(token.LEFT_PAREN, "Expect '(' after 'if'."); !ok {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RIGHT_PAREN, "Expect ')' after if condition."); !ok {
		return nil
	}

	stmt := &ast.IfStmt{StmtBase: stmtBase(start), Condition: cond}
	if stmt.Then = p.parseStmt(); stmt.Then == nil {
		return nil
	}
	if p.match(token.ELSE) {
		if stmt.Else = p.parseStmt(); stmt.Else == nil {
			return nil
		}
	}
	return stmt
}

// parsePrintStmt parses: print expr ;
func (p *Parser) parsePrintStmt() ast.Stmt {
	start := p.advance() // consume 'print'
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	if _, ok := p.expect(token.SEMICOLON, "Expect ';' after value."); !ok {
		return nil
	}
	return &ast.PrintStmt{StmtBase: stmtBase(start), Expr: value}
}

// parseReturnStmt parses: return [expr] ;
func (p *Parser) parseReturnStmt() ast.Stmt {
	keyword := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{StmtBase: stmtBase(keyword), Keyword: keyword}

	if !p.check(token.SEMICOLON) {
		if stmt.Value = p.parseExpression(); stmt.Value == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.SEMICOLON, "Expect ';' after return value."); !ok {
		return nil
	}
	return stmt
}

// parseWhileStmt parses: while ( expr ) stmt
func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.advance() // consume 'while'
	if _, ok := p.expect(token.LEFT_PAREN, "Expect '(' after 'while'."); !ok {
		return nil
	}
	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RIGHT_PAREN, "Expect ')' after condition."); !ok {
		return nil
	}
	body := p.parseStmt()
	if body == nil {
		return nil
	}
	return &ast.WhileStmt{StmtBase: stmtBase(start), Condition: cond, Body: body}
}

// parseExprStmt parses: expr ;
func (p *Parser) parseExprStmt() ast.Stmt {
	start := p.peek()
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(token.SEMICOLON, "Expect ';' after expression."); !ok {
		return nil
	}
	return &ast.ExprStmt{StmtBase: stmtBase(start), Expr: expr}
}

// ============================================================
// Expression parsing (Pratt / precedence climbing)
// ============================================================

// parseExpression parses a full expression, including assignment.
func (p *Parser) parseExpression() ast.Expr {
	return p.parseAssignment()
}

// parseAssignment parses the right-associative assignment level. The target
// is parsed as an ordinary expression first and then checked.
func (p *Parser) parseAssignment() ast.Expr {
	expr := p.parseExpr(bpNone)
	if expr == nil {
		return nil
	}
	if !p.check(token.EQUAL) {
		return expr
	}

	equals := p.advance()
	value := p.parseAssignment()
	if value == nil {
		return nil
	}

	switch target := expr.(type) {
	case *ast.VariableExpr:
		return &ast.AssignExpr{ExprBase: target.ExprBase, Name: target.Name, Value: value}
	case *ast.GetExpr:
		return &ast.SetExpr{ExprBase: target.ExprBase, Object: target.Object, Name: target.Name, Value: value}
	}
	p.errorAt(equals, "E2003", "Invalid assignment target.")
	return expr
}

// parseExpr parses an expression with the given minimum binding power.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}
	for infixBP(p.peekKind()) > minBP {
		if left = p.led(left); left == nil {
			return nil
		}
	}
	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		return &ast.NumberLiteral{ExprBase: exprBase(tok), Value: tok.Literal.(float64)}

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{ExprBase: exprBase(tok), Value: tok.Literal.(string)}

	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.BoolLiteral{ExprBase: exprBase(tok), Value: tok.Kind == token.TRUE}

	case token.NIL:
		p.advance()
		return &ast.NilLiteral{ExprBase: exprBase(tok)}

	case token.THIS:
		p.advance()
		return &ast.ThisExpr{ExprBase: exprBase(tok), Keyword: tok}

	case token.SUPER:
		p.advance()
		if _, ok := p.expect(token.DOT, "Expect '.' after 'super'."); !ok {
			return nil
		}
		method, ok := p.expect(token.IDENT, "Expect superclass method name.")
		if !ok {
			return nil
		}
		return &ast.SuperExpr{ExprBase: exprBase(tok), Keyword: tok, Method: method}

	case token.IDENT:
		p.advance()
		return &ast.VariableExpr{ExprBase: exprBase(tok), Name: tok}

	case token.LEFT_PAREN:
		p.advance()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(token.RIGHT_PAREN, "Expect ')' after expression."); !ok {
			return nil
		}
		return &ast.GroupingExpr{ExprBase: exprBase(tok), Expr: inner}

	case token.BANG, token.MINUS:
		p.advance()
		right := p.parseExpr(bpUnary)
		if right == nil {
			return nil
		}
		return &ast.UnaryExpr{ExprBase: exprBase(tok), Op: tok, Right: right}

	default:
		p.errorAt(tok, "E2002", "Expect expression.")
		return nil
	}
}

// led handles infix/postfix (left denotation) parsing.
func (p *Parser) led(left ast.Expr) ast.Expr {
	tok := p.advance()

	switch tok.Kind {
	case token.AND, token.OR:
		right := p.parseExpr(infixBP(tok.Kind))
		if right == nil {
			return nil
		}
		return &ast.LogicalExpr{ExprBase: exprAt(left.GetPos()), Left: left, Op: tok, Right: right}

	case token.LEFT_PAREN:
		return p.finishCall(left)

	case token.DOT:
		name, ok := p.expect(token.IDENT, "Expect property name after '.'.")
		if !ok {
			return nil
		}
		return &ast.GetExpr{ExprBase: exprBase(name), Object: left, Name: name}

	default:
		// Binary infix operator (left-associative)
		right := p.parseExpr(infixBP(tok.Kind))
		if right == nil {
			return nil
		}
		return &ast.BinaryExpr{ExprBase: exprAt(left.GetPos()), Left: left, Op: tok, Right: right}
	}
}

// finishCall parses the argument list after an opening parenthesis.
func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(token.RIGHT_PAREN) {
		for {
			if len(args) >= maxArgs {
				p.errorAt(p.peek(), "E2004", "Can't have more than 255 arguments.")
			}
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	paren, ok := p.expect(token.RIGHT_PAREN, "Expect ')' after arguments.")
	if !ok {
		return nil
	}
	return &ast.CallExpr{ExprBase: exprBase(paren), Callee: callee, Paren: paren, Args: args}
}

// ============================================================
// Position helpers
// ============================================================

func exprBase(tok token.Token) ast.ExprBase { return exprAt(tok.Pos) }
func stmtBase(tok token.Token) ast.StmtBase { return stmtAt(tok.Pos) }

func exprAt(pos token.Pos) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Pos: pos}}
}

func stmtAt(pos token.Pos) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Pos: pos}}
}
