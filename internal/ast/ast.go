// Package ast defines the abstract syntax tree for Lox.
//
// Expressions and statements are closed variant sets: the marker methods are
// unexported, so only this package can add node kinds, and consumers dispatch
// with exhaustive type switches. Nodes are always handled through pointers and
// are never mutated after parsing; the resolver keys its depth map on node
// identity.
package ast

import "lox-lang/internal/token"

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetPos() token.Pos
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common position field for all AST nodes.
type NodeBase struct {
	Pos token.Pos
}

func (n NodeBase) nodeNode()         {}
func (n NodeBase) GetPos() token.Pos { return n.Pos }

// ExprBase is embedded by all expression nodes.
type ExprBase struct{ NodeBase }

func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Expressions
// ============================================================

// AssignExpr represents assignment to a variable: name = value.
type AssignExpr struct {
	ExprBase
	Name  token.Token
	Value Expr
}

// BinaryExpr represents an arithmetic, comparison or equality operation.
type BinaryExpr struct {
	ExprBase
	Left  Expr
	Op    token.Token
	Right Expr
}

// CallExpr represents a call: callee(args). Paren is the closing
// parenthesis, used to locate runtime errors.
type CallExpr struct {
	ExprBase
	Callee Expr
	Paren  token.Token
	Args   []Expr
}

// GetExpr represents property access: object.name.
type GetExpr struct {
	ExprBase
	Object Expr
	Name   token.Token
}

// GroupingExpr represents a parenthesized expression.
type GroupingExpr struct {
	ExprBase
	Expr Expr
}

// NumberLiteral represents a number literal.
type NumberLiteral struct {
	ExprBase
	Value float64
}

// StringLiteral represents a string literal.
type StringLiteral struct {
	ExprBase
	Value string
}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	ExprBase
	Value bool
}

// NilLiteral represents nil.
type NilLiteral struct {
	ExprBase
}

// LogicalExpr represents a short-circuit `and` / `or`.
type LogicalExpr struct {
	ExprBase
	Left  Expr
	Op    token.Token
	Right Expr
}

// SetExpr represents a property assignment: object.name = value.
type SetExpr struct {
	ExprBase
	Object Expr
	Name   token.Token
	Value  Expr
}

// SuperExpr represents super.method.
type SuperExpr struct {
	ExprBase
	Keyword token.Token
	Method  token.Token
}

// ThisExpr represents the 'this' keyword.
type ThisExpr struct {
	ExprBase
	Keyword token.Token
}

// UnaryExpr represents a unary operation: !x, -x.
type UnaryExpr struct {
	ExprBase
	Op    token.Token
	Right Expr
}

// VariableExpr represents a variable reference.
type VariableExpr struct {
	ExprBase
	Name token.Token
}

// ============================================================
// Statements
// ============================================================

// BlockStmt represents a block of statements: { ... }.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// ClassDecl represents a class declaration. Superclass is nil when the
// class has no `<` clause.
type ClassDecl struct {
	StmtBase
	Name       token.Token
	Superclass *VariableExpr
	Methods    []*FuncDecl
}

// ExprStmt wraps an expression used as a statement.
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// FuncDecl represents a function or method declaration.
type FuncDecl struct {
	StmtBase
	Name   token.Token
	Params []token.Token
	Body   []Stmt
}

// IfStmt represents if/else. Else is nil when absent.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt
}

// PrintStmt represents print expr;.
type PrintStmt struct {
	StmtBase
	Expr Expr
}

// ReturnStmt represents a return statement. Value may be nil.
type ReturnStmt struct {
	StmtBase
	Keyword token.Token
	Value   Expr
}

// VarDeclStmt represents a variable declaration. Init may be nil.
type VarDeclStmt struct {
	StmtBase
	Name token.Token
	Init Expr
}

// WhileStmt represents a while loop. For loops are desugared into
// while loops by the parser.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      Stmt
}
