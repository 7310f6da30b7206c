// Package noexit содержит анализатор, запрещающий прямой вызов os.Exit в функции main пакета main.
package noexit

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

// NoExitAnalyzer проверяет отсутствие прямых вызовов os.Exit в функции main пакета main.
var NoExitAnalyzer = &analysis.Analyzer{
	Name: "noexit",
	Doc:  "запрещает прямой вызов os.Exit в функции main пакета main",
	Run:  run,
}

// run обходит AST пакета main в поисках вызовов os.Exit внутри функции main.
func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			funcDecl, ok := decl.(*ast.FuncDecl)
			if !ok || funcDecl.Name.Name != "main" || funcDecl.Recv != nil {
				continue
			}

			ast.Inspect(funcDecl.Body, func(n ast.Node) bool {
				// Не заходим во вложенные функции: отложенные замыкания
				// могут завершать процесс легально
				if _, isFunc := n.(*ast.FuncLit); isFunc {
					return false
				}

				callExpr, ok := n.(*ast.CallExpr)
				if !ok {
					return true
				}
				selExpr, ok := callExpr.Fun.(*ast.SelectorExpr)
				if !ok || selExpr.Sel.Name != "Exit" {
					return true
				}

				ident, ok := selExpr.X.(*ast.Ident)
				if !ok {
					return true
				}
				if pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName); ok {
					if pkgName.Imported().Path() == "os" {
						pass.Reportf(callExpr.Pos(), "прямой вызов os.Exit в функции main запрещен")
					}
				}
				return true
			})
		}
	}

	return nil, nil
}
