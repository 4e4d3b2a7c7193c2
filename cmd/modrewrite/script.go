package main

import (
	"fmt"

	"github.com/closuretools/modrewrite/internal/ast"
)

// scriptJSON is the wire shape one synthetic script takes in an input batch
// file: a minimal, hand-writable stand-in for what a real frontend's parser
// would hand the pass directly. Kind is the node's Kind constant by name
// (e.g. "Script", "Call", "Ident") rather than its numeric value, so batch
// files stay readable and stable across a Kind renumbering.
type scriptJSON struct {
	Kind         string        `json:"kind"`
	Str          string        `json:"str,omitempty"`
	Params       []string      `json:"params,omitempty"`
	Directives   []string      `json:"directives,omitempty"`
	Children     []*scriptJSON `json:"children,omitempty"`
	JSDocStrings []string      `json:"jsdocTypeStrings,omitempty"`
}

var kindByName = map[string]ast.Kind{
	"Opaque":         ast.KindOpaque,
	"Script":         ast.KindScript,
	"ModuleBody":     ast.KindModuleBody,
	"ExprStmt":       ast.KindExprStmt,
	"ReturnStmt":     ast.KindReturnStmt,
	"VarDecl":        ast.KindVarDecl,
	"Declarator":     ast.KindDeclarator,
	"FuncDecl":       ast.KindFuncDecl,
	"FuncExpr":       ast.KindFuncExpr,
	"ClassDecl":      ast.KindClassDecl,
	"Ident":          ast.KindIdent,
	"Dot":            ast.KindDot,
	"Call":           ast.KindCall,
	"Assign":         ast.KindAssign,
	"StringLit":      ast.KindStringLit,
	"NumberLit":      ast.KindNumberLit,
	"ObjectLit":      ast.KindObjectLit,
	"Property":       ast.KindProperty,
	"ObjectPattern":  ast.KindObjectPattern,
	"PatternProp":    ast.KindPatternProp,
}

var nameByKind = func() map[ast.Kind]string {
	m := make(map[ast.Kind]string, len(kindByName))
	for name, kind := range kindByName {
		m[kind] = name
	}
	return m
}()

func (s *scriptJSON) toNode() (*ast.Node, error) {
	kind, ok := kindByName[s.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown node kind %q", s.Kind)
	}
	n := ast.NewNode(kind)
	n.Str = s.Str
	n.Params = s.Params
	n.SetDirectives(s.Directives)
	if len(s.JSDocStrings) > 0 {
		n.JSDoc = &ast.JSDoc{TypeStrings: append([]string(nil), s.JSDocStrings...)}
	}
	for _, c := range s.Children {
		child, err := c.toNode()
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func nodeToScriptJSON(n *ast.Node) *scriptJSON {
	s := &scriptJSON{
		Kind:       nameByKind[n.Kind],
		Str:        n.Str,
		Params:     n.Params,
		Directives: n.Directives,
	}
	if n.JSDoc != nil {
		s.JSDocStrings = n.JSDoc.TypeStrings
	}
	for _, c := range n.Children {
		s.Children = append(s.Children, nodeToScriptJSON(c))
	}
	return s
}

// batchEntry is one file in an input batch: a path (used as the diagnostic
// source name) plus its script tree. In --hot-swap mode the file watched on
// disk is the batch file itself, not this path.
type batchEntry struct {
	Path string      `json:"path"`
	Root *scriptJSON `json:"root"`
}
