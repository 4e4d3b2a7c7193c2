package rewrite

import "github.com/closuretools/modrewrite/internal/ast"

// Unwrap converts every top-level statement of the form
//
//	goog.loadModule(function(exports){ …body… return exports; })
//
// in script into a synthetic KindModuleBody node attached directly under
// the script, so the inline-module-literal form and the plain
// `goog.module(...)` file form become uniform before Recorder ever runs
// (spec.md §4.1). It only inspects the script's immediate statement
// children — it never descends into function bodies looking for nested
// loadModule calls, since those can only ever appear at script scope.
//
// Malformed shapes are left untouched with no diagnostic; Recorder will
// fail to recognize them as a module and process them as ordinary
// (non-module) statements instead, exactly as an un-rewritten
// goog.loadModule call would behave downstream.
func Unwrap(script *ast.Node) {
	if script.Kind != ast.KindScript {
		return
	}
	// Iterate over a snapshot: Replace mutates script.Children in place.
	stmts := append([]*ast.Node(nil), script.Children...)
	for _, stmt := range stmts {
		body, ok := loadModuleBody(stmt)
		if !ok {
			continue
		}
		moduleBody := ast.NewNode(ast.KindModuleBody)
		for _, s := range body {
			moduleBody.AddChild(s)
		}
		stmt.Replace(moduleBody)
	}
}

// loadModuleBody recognizes `goog.loadModule(function(exports){ ...; return
// exports; })` as a script-level expression statement and, if it matches,
// returns the wrapper's body statements with the trailing `return exports;`
// detached.
func loadModuleBody(stmt *ast.Node) ([]*ast.Node, bool) {
	if stmt.Kind != ast.KindExprStmt || len(stmt.Children) != 1 {
		return nil, false
	}
	call := stmt.Children[0]
	if call.Kind != ast.KindCall || len(call.Children) != 2 {
		return nil, false
	}
	if ast.QualifiedNameString(call.Children[0]) != "goog.loadModule" {
		return nil, false
	}
	fn := call.Children[1]
	if fn.Kind != ast.KindFuncExpr || len(fn.Params) != 1 || fn.Params[0] != "exports" {
		return nil, false
	}
	if len(fn.Children) == 0 {
		return nil, false
	}
	last := fn.Children[len(fn.Children)-1]
	if last.Kind != ast.KindReturnStmt || len(last.Children) != 1 {
		return nil, false
	}
	if ast.QualifiedNameString(last.Children[0]) != "exports" {
		return nil, false
	}
	last.Detach()
	return append([]*ast.Node(nil), fn.Children...), true
}
