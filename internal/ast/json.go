package ast

import "lox-lang/internal/token"

// ToMap converts an AST node to a map suitable for JSON or YAML
// serialization. This produces a tagged-union structure: every node has a
// "kind" field.
func ToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	// ---- Expressions ----
	case *AssignExpr:
		return m("AssignExpr", n.Pos, "name", n.Name.Lexeme, "value", ToMap(n.Value))
	case *BinaryExpr:
		return m("BinaryExpr", n.Pos,
			"op", n.Op.Lexeme,
			"left", ToMap(n.Left),
			"right", ToMap(n.Right))
	case *CallExpr:
		return m("CallExpr", n.Pos,
			"callee", ToMap(n.Callee),
			"args", exprSlice(n.Args))
	case *GetExpr:
		return m("GetExpr", n.Pos, "object", ToMap(n.Object), "name", n.Name.Lexeme)
	case *GroupingExpr:
		return m("GroupingExpr", n.Pos, "expr", ToMap(n.Expr))
	case *NumberLiteral:
		return m("NumberLiteral", n.Pos, "value", n.Value)
	case *StringLiteral:
		return m("StringLiteral", n.Pos, "value", n.Value)
	case *BoolLiteral:
		return m("BoolLiteral", n.Pos, "value", n.Value)
	case *NilLiteral:
		return m("NilLiteral", n.Pos)
	case *LogicalExpr:
		return m("LogicalExpr", n.Pos,
			"op", n.Op.Lexeme,
			"left", ToMap(n.Left),
			"right", ToMap(n.Right))
	case *SetExpr:
		return m("SetExpr", n.Pos,
			"object", ToMap(n.Object),
			"name", n.Name.Lexeme,
			"value", ToMap(n.Value))
	case *SuperExpr:
		return m("SuperExpr", n.Pos, "method", n.Method.Lexeme)
	case *ThisExpr:
		return m("ThisExpr", n.Pos)
	case *UnaryExpr:
		return m("UnaryExpr", n.Pos, "op", n.Op.Lexeme, "right", ToMap(n.Right))
	case *VariableExpr:
		return m("VariableExpr", n.Pos, "name", n.Name.Lexeme)

	// ---- Statements ----
	case *BlockStmt:
		return m("BlockStmt", n.Pos, "stmts", StmtSlice(n.Stmts))
	case *ClassDecl:
		result := m("ClassDecl", n.Pos, "name", n.Name.Lexeme)
		if n.Superclass != nil {
			result["superclass"] = n.Superclass.Name.Lexeme
		}
		if len(n.Methods) > 0 {
			methods := make([]interface{}, len(n.Methods))
			for i, md := range n.Methods {
				methods[i] = ToMap(md)
			}
			result["methods"] = methods
		}
		return result
	case *ExprStmt:
		return m("ExprStmt", n.Pos, "expr", ToMap(n.Expr))
	case *FuncDecl:
		return m("FuncDecl", n.Pos,
			"name", n.Name.Lexeme,
			"params", tokenNames(n.Params),
			"body", StmtSlice(n.Body))
	case *IfStmt:
		result := m("IfStmt", n.Pos,
			"condition", ToMap(n.Condition),
			"then", ToMap(n.Then))
		if n.Else != nil {
			result["else"] = ToMap(n.Else)
		}
		return result
	case *PrintStmt:
		return m("PrintStmt", n.Pos, "expr", ToMap(n.Expr))
	case *ReturnStmt:
		result := m("ReturnStmt", n.Pos)
		if n.Value != nil {
			result["value"] = ToMap(n.Value)
		}
		return result
	case *VarDeclStmt:
		result := m("VarDeclStmt", n.Pos, "name", n.Name.Lexeme)
		if n.Init != nil {
			result["init"] = ToMap(n.Init)
		}
		return result
	case *WhileStmt:
		return m("WhileStmt", n.Pos,
			"condition", ToMap(n.Condition),
			"body", ToMap(n.Body))

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// StmtSlice converts a statement list (such as a whole program) to maps.
func StmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = ToMap(s)
	}
	return result
}

// ---- helpers ----

// m builds a map with kind, position, and extra key-value pairs.
func m(kind string, pos token.Pos, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"line": pos.Line,
		"col":  pos.Column,
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = ToMap(e)
	}
	return result
}

func tokenNames(toks []token.Token) []string {
	names := make([]string, len(toks))
	for i, t := range toks {
		names[i] = t.Lexeme
	}
	return names
}
