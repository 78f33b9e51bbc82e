package syntax

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// String renders an expression back into canonical source form. The output
// re-parses to an equivalent tree; it is used in error messages and tests,
// not for execution.
func String(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

// StringStmts renders a statement list, one statement per line.
func StringStmts(stmts []Stmt) string {
	var b strings.Builder
	for i, s := range stmts {
		if i > 0 {
			b.WriteString("\n")
		}
		switch n := s.(type) {
		case *AssignStmt:
			b.WriteString(n.Name)
			b.WriteString(" = ")
			writeExpr(&b, n.X)
		case *ExprStmt:
			writeExpr(&b, n.X)
		case *ReturnStmt:
			b.WriteString("return ")
			writeExpr(&b, n.X)
		}
	}
	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *Literal:
		writeLiteral(b, n.Value)
	case *Name:
		b.WriteString(n.Ident)
	case *Attr:
		writeExpr(b, n.X)
		b.WriteString(".")
		b.WriteString(n.Name)
	case *Placeholder:
		b.WriteString("_")
	case *TupleExpr:
		b.WriteString("(")
		for i, elem := range n.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, elem)
		}
		if len(n.Elems) == 1 {
			b.WriteString(",")
		}
		b.WriteString(")")
	case *ListExpr:
		b.WriteString("[")
		for i, elem := range n.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, elem)
		}
		b.WriteString("]")
	case *CallExpr:
		writeCallee(b, n.Fn)
		b.WriteString("(")
		writeArgs(b, n.Args)
		b.WriteString(")")
	case *DispatchCall:
		// Dispatch has no source form; the incoming expression is shown
		// with a spread marker. Debug rendering only.
		writeCallee(b, n.Fn)
		b.WriteString("(...")
		writeExpr(b, n.Incoming)
		for _, arg := range n.Args {
			b.WriteString(", ")
			if arg.Name != "" {
				b.WriteString(arg.Name)
				b.WriteString(" = ")
			}
			writeExpr(b, arg.Value)
		}
		b.WriteString(")")
	case *BinaryExpr:
		b.WriteString("(")
		writeExpr(b, n.LHS)
		fmt.Fprintf(b, " %s ", n.Op)
		writeExpr(b, n.RHS)
		b.WriteString(")")
	case *UnaryExpr:
		b.WriteString(n.Op.String())
		writeExpr(b, n.X)
	case *CondExpr:
		b.WriteString("(")
		writeExpr(b, n.Cond)
		b.WriteString(" ? ")
		writeExpr(b, n.Then)
		b.WriteString(" : ")
		writeExpr(b, n.Else)
		b.WriteString(")")
	case *LambdaExpr:
		b.WriteString("\\")
		for i, p := range n.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			if p.VariadicPos {
				b.WriteString("*")
			}
			if p.VariadicKW {
				b.WriteString("**")
			}
			b.WriteString(p.Name)
			if p.Marker != "" {
				b.WriteString(": ")
				b.WriteString(p.Marker)
			}
			if p.Default != nil {
				b.WriteString(" = ")
				writeExpr(b, p.Default)
			}
		}
		b.WriteString(" -> ")
		writeExpr(b, n.Body)
	case *CaptureExpr:
		b.WriteString("(")
		b.WriteString(n.Name)
		b.WriteString(" := ")
		writeExpr(b, n.X)
		b.WriteString(")")
	}
}

// writeCallee parenthesizes callees that would not re-parse in call
// position, such as lambdas.
func writeCallee(b *strings.Builder, fn Expr) {
	switch fn.(type) {
	case *Name, *Attr, *CallExpr:
		writeExpr(b, fn)
	default:
		b.WriteString("(")
		writeExpr(b, fn)
		b.WriteString(")")
	}
}

func writeArgs(b *strings.Builder, args []Arg) {
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if arg.Name != "" {
			b.WriteString(arg.Name)
			b.WriteString(" = ")
		}
		writeExpr(b, arg.Value)
	}
}

func writeLiteral(b *strings.Builder, v cty.Value) {
	if v.IsNull() {
		b.WriteString("null")
		return
	}
	switch v.Type() {
	case cty.String:
		fmt.Fprintf(b, "%q", v.AsString())
	case cty.Bool:
		if v.True() {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case cty.Number:
		bf := v.AsBigFloat()
		b.WriteString(bf.Text('g', -1))
	default:
		fmt.Fprintf(b, "%v", v)
	}
}
