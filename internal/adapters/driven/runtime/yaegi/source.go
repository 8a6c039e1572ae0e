package yaegi

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"
)

// splitImports separates the leading import declarations of a cell from the
// statements that follow. The returned body keeps the original line
// numbering.
func splitImports(source string) ([]*ast.ImportSpec, string, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(source))
	var s scanner.Scanner
	s.Init(file, []byte(source), nil, 0)

	end := 0
	for {
		_, tok, _ := s.Scan()
		if tok != token.IMPORT {
			break
		}
		end = len(source)
		depth := 0
	decl:
		for {
			pos, tok, _ := s.Scan()
			switch tok {
			case token.EOF:
				break decl
			case token.LPAREN:
				depth++
			case token.RPAREN:
				depth--
			case token.SEMICOLON:
				if depth == 0 {
					end = min(file.Offset(pos)+1, len(source))
					break decl
				}
			}
		}
	}
	if end == 0 {
		return nil, source, nil
	}

	header := source[:end]
	f, err := parser.ParseFile(token.NewFileSet(), "", "package main;"+header, parser.ImportsOnly)
	if err != nil {
		return nil, "", err
	}
	body := strings.Repeat("\n", strings.Count(header, "\n")) + source[end:]
	return f.Imports, body, nil
}

// asStatements makes sure a body mixing declarations and statements is
// parsed as a statement list. The interpreter picks file or statement
// parsing from the first token alone.
func asStatements(body string) string {
	switch firstToken(body) {
	case token.CONST, token.TYPE, token.VAR:
		if _, err := parser.ParseFile(token.NewFileSet(), "", "package main;"+body, 0); err != nil {
			return ";" + body
		}
	}
	return body
}

// endsWithExpression reports whether the last statement of body is an
// expression. Only then does a cell have a value.
func endsWithExpression(body string) bool {
	f, err := parser.ParseFile(token.NewFileSet(), "", "package main; func _() {"+body+"\n}", 0)
	if err != nil || len(f.Decls) == 0 {
		return false
	}
	fn, ok := f.Decls[0].(*ast.FuncDecl)
	if !ok || fn.Body == nil {
		return false
	}
	stmts := fn.Body.List
	for i := len(stmts) - 1; i >= 0; i-- {
		switch stmts[i].(type) {
		case *ast.EmptyStmt:
			continue
		case *ast.ExprStmt:
			return true
		default:
			return false
		}
	}
	return false
}

func firstToken(src string) token.Token {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))
	var s scanner.Scanner
	s.Init(file, []byte(src), nil, 0)
	_, tok, _ := s.Scan()
	return tok
}
