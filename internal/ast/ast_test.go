package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewQualifiedNameRoundTrips(t *testing.T) {
	n := NewQualifiedName("a.b.C")
	assert.Equal(t, KindDot, n.Kind)
	assert.Equal(t, "a.b.C", QualifiedNameString(n))

	bare := NewQualifiedName("a")
	assert.Equal(t, KindIdent, bare.Kind)
	assert.Equal(t, "a", QualifiedNameString(bare))
}

func TestDetachRemovesFromParent(t *testing.T) {
	script := NewNode(KindScript)
	stmt := NewNode(KindExprStmt)
	script.AddChild(stmt)
	assert.Len(t, script.Children, 1)
	assert.Same(t, script, stmt.Parent)

	stmt.Detach()
	assert.Len(t, script.Children, 0)
	assert.Nil(t, stmt.Parent)
}

func TestReplacePreservesLocWhenReplacementHasNone(t *testing.T) {
	script := NewNode(KindScript)
	original := NewIdent("x")
	original.Loc.Start = 42
	script.AddChild(original)

	replacement := NewIdent("y")
	original.Replace(replacement)

	assert.Same(t, script, replacement.Parent)
	assert.Equal(t, int32(42), replacement.Loc.Start)
	assert.Nil(t, original.Parent)
	assert.Same(t, replacement, script.Children[0])
}

func TestInsertBeforeAndAfter(t *testing.T) {
	script := NewNode(KindScript)
	middle := NewNode(KindExprStmt)
	script.AddChild(middle)

	before := NewNode(KindExprStmt)
	after := NewNode(KindExprStmt)
	middle.InsertBefore(before)
	middle.InsertAfter(after)

	assert.Equal(t, []*Node{before, middle, after}, script.Children)
}

func TestCloneTreeIsDeepAndDetached(t *testing.T) {
	obj := NewNode(KindObjectLit)
	prop := NewNode(KindProperty)
	prop.Str = "a"
	prop.AddChild(NewIdent("a"))
	obj.AddChild(prop)

	clone := obj.CloneTree()
	assert.Nil(t, clone.Parent)
	assert.NotSame(t, obj.Children[0], clone.Children[0])
	assert.Equal(t, obj.Children[0].Str, clone.Children[0].Str)
	assert.Same(t, clone, clone.Children[0].Parent)
}

func TestIterateDeclarationNamesCoversDestructuring(t *testing.T) {
	decl := NewNode(KindVarDecl)
	decl.Str = "const"
	declarator := NewNode(KindDeclarator)
	pattern := NewNode(KindObjectPattern)

	propA := NewNode(KindPatternProp)
	propA.Str = "a"
	propA.AddChild(NewIdent("a"))

	propB := NewNode(KindPatternProp)
	propB.Str = "b"
	local := NewIdent("c")
	propB.AddChild(local)

	pattern.AddChild(propA)
	pattern.AddChild(propB)
	declarator.AddChild(pattern)
	decl.AddChild(declarator)

	var names []string
	decl.IterateDeclarationNames(func(name string, binding *Node) {
		names = append(names, name)
	})
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestBoolProps(t *testing.T) {
	n := NewNode(KindCall)
	assert.False(t, n.GetBoolProp(PropGoogModule))
	n.SetBoolProp(PropGoogModule, true)
	assert.True(t, n.GetBoolProp(PropGoogModule))
	n.SetBoolProp(PropGoogModule, false)
	assert.False(t, n.GetBoolProp(PropGoogModule))
}

func TestEnclosingStatementAndScript(t *testing.T) {
	script := NewNode(KindScript)
	stmt := NewNode(KindExprStmt)
	call := NewNode(KindCall)
	ident := NewIdent("goog")
	call.AddChild(ident)
	stmt.AddChild(call)
	script.AddChild(stmt)

	assert.Same(t, stmt, ident.EnclosingStatement())
	assert.Same(t, script, ident.EnclosingScript())
	assert.True(t, stmt.IsTopLevelOf(script))
}
