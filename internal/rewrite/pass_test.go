package rewrite

import (
	"testing"

	"github.com/closuretools/modrewrite/internal/ast"
	"github.com/closuretools/modrewrite/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exprStmt(e *ast.Node) *ast.Node {
	s := ast.NewNode(ast.KindExprStmt)
	s.AddChild(e)
	return s
}

func moduleCall(ns string) *ast.Node {
	return exprStmt(ast.NewCall(ast.NewQualifiedName("goog.module"), ast.NewStringLit(ns)))
}

func provideCall(ns string) *ast.Node {
	return exprStmt(ast.NewCall(ast.NewQualifiedName("goog.provide"), ast.NewStringLit(ns)))
}

func requireAlias(alias, ns string) *ast.Node {
	return ast.NewVarDecl("const", alias, ast.NewCall(ast.NewQualifiedName("goog.require"), ast.NewStringLit(ns)))
}

func numberLit(text string) *ast.Node {
	n := ast.NewNode(ast.KindNumberLit)
	n.Str = text
	return n
}

func assignExports(rhs *ast.Node) *ast.Node {
	assign := ast.NewNode(ast.KindAssign)
	assign.AddChild(ast.NewIdent("exports"))
	assign.AddChild(rhs)
	return exprStmt(assign)
}

func assignExportsProp(name string, rhs *ast.Node) *ast.Node {
	lhs := ast.NewNode(ast.KindDot)
	lhs.Str = name
	lhs.AddChild(ast.NewIdent("exports"))
	assign := ast.NewNode(ast.KindAssign)
	assign.AddChild(lhs)
	assign.AddChild(rhs)
	return exprStmt(assign)
}

func source(path, contents string) *logger.Source {
	return &logger.Source{PrettyPath: path, Contents: contents}
}

func runSingle(t *testing.T, root *ast.Node) ([]*ScriptDescription, []logger.Msg) {
	t.Helper()
	log := logger.NewDeferLog()
	c := NewCompilation(log)
	descs := c.Run([]ScriptInput{{Root: root, Source: source("test.js", "")}})
	return descs, log.Done()
}

func TestModuleWithDefaultExportInlinesDeclaration(t *testing.T) {
	fn := ast.NewNode(ast.KindFuncDecl)
	fn.Str = "MyClass"

	body := []*ast.Node{
		moduleCall("my.pkg.MyClass"),
		fn,
		assignExports(ast.NewIdent("MyClass")),
	}
	root := ast.NewModuleScript(body...)

	descs, msgs := runSingle(t, root)
	require.Empty(t, msgs)
	require.Len(t, descs, 1)
	desc := descs[0]

	assert.Equal(t, "module$exports$my$pkg$MyClass", desc.BinaryNamespace)
	require.Len(t, root.Children, 1)
	assert.Equal(t, ast.KindFuncDecl, root.Children[0].Kind)
	assert.Equal(t, "module$exports$my$pkg$MyClass", root.Children[0].Str)
	assert.Equal(t, "MyClass", root.Children[0].OriginalName)
}

func TestLegacyModuleKeepsLegacyDottedName(t *testing.T) {
	body := []*ast.Node{
		moduleCall("my.pkg.Legacy"),
		exprStmt(ast.NewCall(ast.NewQualifiedName("goog.module.declareLegacyNamespace"))),
		ast.NewVarDecl("var", "x", numberLit("1")),
		assignExports(ast.NewIdent("x")),
	}
	root := ast.NewModuleScript(body...)

	descs, msgs := runSingle(t, root)
	require.Empty(t, msgs)
	desc := descs[0]
	assert.True(t, desc.DeclareLegacyNamespace)
	assert.Equal(t, "my.pkg.Legacy", desc.ExportedName())

	// goog.module('my.pkg.Legacy') must become goog.provide('my.pkg.Legacy'),
	// never disappear outright, and exports = x must become a plain
	// assignment to the dotted legacy name rather than a binary namespace
	// var declaration (spec.md §4.3, §8 scenario 2).
	require.Len(t, root.Children, 3)

	provide := root.Children[0]
	require.Equal(t, ast.KindExprStmt, provide.Kind)
	call := provide.Children[0]
	require.Equal(t, ast.KindCall, call.Kind)
	require.Len(t, call.Children, 2)
	assert.Equal(t, "goog.provide", ast.QualifiedNameString(call.Children[0]))
	assert.Equal(t, "my.pkg.Legacy", call.Children[1].Str)

	assign := root.Children[1]
	require.Equal(t, ast.KindExprStmt, assign.Kind)
	assignNode := assign.Children[0]
	require.Equal(t, ast.KindAssign, assignNode.Kind)
	assert.Equal(t, "my.pkg.Legacy", ast.QualifiedNameString(assignNode.Children[0]))
	assert.Equal(t, "module$contents$my$pkg$Legacy_x", assignNode.Children[1].Str)

	varDecl := root.Children[2]
	require.Equal(t, ast.KindVarDecl, varDecl.Kind)
	assert.Equal(t, "module$contents$my$pkg$Legacy_x", varDecl.Children[0].Children[0].Str)
}

func TestNamedRequireInlinesAliasReads(t *testing.T) {
	providerFn := ast.NewNode(ast.KindFuncDecl)
	providerFn.Str = "Widget"
	providerBody := []*ast.Node{
		moduleCall("my.pkg.Widget"),
		providerFn,
		assignExports(ast.NewIdent("Widget")),
	}
	providerRoot := ast.NewModuleScript(providerBody...)

	useCall := ast.NewCall(ast.NewQualifiedName("W"))
	consumerBody := []*ast.Node{
		moduleCall("my.pkg.Consumer"),
		requireAlias("W", "my.pkg.Widget"),
		exprStmt(useCall),
	}
	consumerRoot := ast.NewModuleScript(consumerBody...)

	log := logger.NewDeferLog()
	c := NewCompilation(log)
	c.Run([]ScriptInput{
		{Root: providerRoot, Source: source("provider.js", "")},
		{Root: consumerRoot, Source: source("consumer.js", "")},
	})
	require.False(t, log.HasErrors())

	callee := useCall.Children[0]
	assert.Equal(t, "module$exports$my$pkg$Widget", ast.QualifiedNameString(callee))
}

func TestDestructuringDefaultExportIsIllegal(t *testing.T) {
	providerBody := []*ast.Node{
		moduleCall("my.pkg.Widget"),
		assignExports(ast.NewNode(ast.KindObjectLit)),
	}
	providerRoot := ast.NewModuleScript(providerBody...)

	pattern := ast.NewNode(ast.KindObjectPattern)
	prop := ast.NewNode(ast.KindPatternProp) // Str == "" models the `{default: x}`-less shorthand-of-nothing shape
	prop.AddChild(ast.NewIdent("x"))
	pattern.AddChild(prop)

	decl := ast.NewNode(ast.KindVarDecl)
	decl.Str = "const"
	declarator := ast.NewNode(ast.KindDeclarator)
	declarator.AddChild(pattern)
	declarator.AddChild(ast.NewCall(ast.NewQualifiedName("goog.require"), ast.NewStringLit("my.pkg.Widget")))
	decl.AddChild(declarator)

	consumerRoot := ast.NewModuleScript(moduleCall("my.pkg.Consumer"), decl)

	log := logger.NewDeferLog()
	c := NewCompilation(log)
	c.Run([]ScriptInput{
		{Root: providerRoot, Source: source("provider.js", "")},
		{Root: consumerRoot, Source: source("consumer.js", "")},
	})

	msgs := log.Done()
	require.NotEmpty(t, msgs)
	assert.Equal(t, logger.MsgID_Rewriter_IllegalDestructuringDefaultExport, msgs[0].ID)
}

func TestMissingProvideIsReported(t *testing.T) {
	root := ast.NewModuleScript(
		moduleCall("my.pkg.Consumer"),
		exprStmt(ast.NewCall(ast.NewQualifiedName("goog.require"), ast.NewStringLit("never.provided"))),
	)

	_, msgs := runSingle(t, root)
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.MsgID_Rewriter_MissingModuleOrProvide, msgs[0].ID)
}

func TestInlineLoadModuleIsUnwrapped(t *testing.T) {
	fn := ast.NewNode(ast.KindFuncExpr)
	fn.Params = []string{"exports"}
	fn.AddChild(moduleCall("my.pkg.Inline"))
	fn.AddChild(assignExports(ast.NewNode(ast.KindObjectLit)))
	ret := ast.NewNode(ast.KindReturnStmt)
	ret.AddChild(ast.NewIdent("exports"))
	fn.AddChild(ret)

	call := ast.NewCall(ast.NewQualifiedName("goog.loadModule"), fn)
	root := ast.NewScript(exprStmt(call))

	descs, msgs := runSingle(t, root)
	require.Empty(t, msgs)
	require.Len(t, descs, 1)
	assert.Equal(t, "my.pkg.Inline", descs[0].LegacyNamespace)
}

func TestLegacyScriptDuplicateNamespaceIsReported(t *testing.T) {
	first := ast.NewScript(provideCall("shared.ns"))
	second := ast.NewScript(provideCall("shared.ns"))

	log := logger.NewDeferLog()
	c := NewCompilation(log)
	c.Run([]ScriptInput{
		{Root: first, Source: source("a.js", "")},
		{Root: second, Source: source("b.js", "")},
	})

	msgs := log.Done()
	require.NotEmpty(t, msgs)
	assert.Equal(t, logger.MsgID_Rewriter_DuplicateNamespace, msgs[len(msgs)-1].ID)
}

func TestObjectLiteralExportInlinesDeclarationsInPlace(t *testing.T) {
	fnA := ast.NewNode(ast.KindFuncDecl)
	fnA.Str = "a"
	fnB := ast.NewNode(ast.KindFuncDecl)
	fnB.Str = "b"

	propA := ast.NewNode(ast.KindProperty)
	propA.Str = "a"
	propB := ast.NewNode(ast.KindProperty)
	propB.Str = "b"
	obj := ast.NewNode(ast.KindObjectLit)
	obj.AddChild(propA)
	obj.AddChild(propB)

	root := ast.NewModuleScript(
		moduleCall("my.pkg.Both"),
		fnA,
		fnB,
		assignExports(obj),
	)

	descs, msgs := runSingle(t, root)
	require.Empty(t, msgs)
	desc := descs[0]

	// Every property of `exports = {a, b}` names a plain top-level function,
	// so the whole object literal is erased and each declaration becomes a
	// direct property assignment in its own position (spec.md §4.2, §8),
	// instead of surviving under a content-prefixed name with a separate
	// trailing `module$exports$....a = a;`-style assignment.
	require.Len(t, root.Children, 3)

	base := root.Children[0]
	require.Equal(t, ast.KindVarDecl, base.Kind)
	assert.Equal(t, desc.BinaryNamespace, base.Children[0].Children[0].Str)

	assignA := root.Children[1]
	require.Equal(t, ast.KindExprStmt, assignA.Kind)
	assert.Equal(t, desc.BinaryNamespace+".a", ast.QualifiedNameString(assignA.Children[0].Children[0]))
	assert.Equal(t, ast.KindFuncExpr, assignA.Children[0].Children[1].Kind)

	assignB := root.Children[2]
	require.Equal(t, ast.KindExprStmt, assignB.Kind)
	assert.Equal(t, desc.BinaryNamespace+".b", ast.QualifiedNameString(assignB.Children[0].Children[0]))
	assert.Equal(t, ast.KindFuncExpr, assignB.Children[0].Children[1].Kind)
}

func TestNamedExportWithoutDefaultCreatesBaseObject(t *testing.T) {
	helper := ast.NewNode(ast.KindFuncDecl)
	helper.Str = "helper"
	root := ast.NewModuleScript(
		moduleCall("my.pkg.Utils"),
		helper,
		assignExportsProp("helper", ast.NewIdent("helper")),
	)

	descs, msgs := runSingle(t, root)
	require.Empty(t, msgs)
	desc := descs[0]
	assert.True(t, desc.HasCreatedExportObject)

	var sawBaseDecl, sawPropAssign bool
	for _, stmt := range root.Children {
		if stmt.Kind == ast.KindVarDecl && stmt.Children[0].Children[0].Str == desc.BinaryNamespace {
			sawBaseDecl = true
		}
		if stmt.Kind == ast.KindExprStmt && stmt.Children[0].Kind == ast.KindAssign {
			sawPropAssign = true
		}
	}
	assert.True(t, sawBaseDecl)
	assert.True(t, sawPropAssign)
}
