// Package ast defines the abstract Tree the rewrite pass consumes. The pass
// never constructs a parser-specific typed AST: node data layout is
// deliberately unspecified upstream of this package, so every node is a
// single reference-identified Node carrying a token Kind, a source
// position, optional payload strings, an optional JSDoc record, and
// ordered children. A real frontend (not part of this module) is expected
// to build a tree out of these nodes; the fresh-subtree helpers here
// (NewCall, NewQualifiedName, ...) are only what the rewrite pass itself
// needs to splice in, not a general expression builder.
package ast

import (
	"strings"

	"github.com/closuretools/modrewrite/internal/logger"
)

// Kind is the token kind of a Node. Naming follows the shape of the actual
// constructs spec.md talks about (calls, identifiers, declarations) rather
// than a full JS grammar; anything this pass doesn't need to inspect or
// rewrite is represented as KindOpaque with its children preserved as-is.
type Kind uint8

const (
	KindOpaque Kind = iota

	KindScript
	KindModuleBody // synthetic: the unwrapped body of a goog.loadModule() call

	KindExprStmt
	KindReturnStmt
	KindVarDecl // Str holds "var", "let", or "const"; children are KindDeclarator

	KindDeclarator // children: [0]=binding (KindIdent or KindObjectPattern), [1]=initializer or nil

	KindFuncDecl // Str = name; Params holds parameter names; Children are body statements
	KindFuncExpr // anonymous; Params holds parameter names; Children are body statements
	KindClassDecl

	KindIdent // Str = identifier text
	KindDot   // qualified name / member access; children: [0]=target, Str=property name
	KindCall  // children: [0]=callee, [1:]=arguments
	KindAssign

	KindStringLit // Str = literal value (unquoted)
	KindNumberLit

	KindObjectLit     // children are KindProperty
	KindProperty      // Str = key; children: [0]=value (absent for shorthand keys, which is how shorthand is represented)
	KindObjectPattern // destructuring {a, b: c}; children are KindPatternProp
	KindPatternProp   // Str = source field name; children: [0]=local binding identifier
)

// BoolProp names a boolean property a node can carry, per spec.md §6
// ("get/set boolean property (GOOG_MODULE, IS_NAMESPACE, IS_MODULE_NAME)").
type BoolProp uint8

const (
	PropGoogModule BoolProp = iota
	PropIsNamespace
	PropIsModuleName
)

// JSDoc is the parsed payload of a doc comment attached to a statement.
// TypeStrings holds every dotted type reference found in the comment (e.g.
// the argument of an `@type`, `@param`, or `@return` annotation); the
// Updater rewrites each of these in place using the longest-known-prefix
// rule (spec.md §4.3).
type JSDoc struct {
	TypeStrings []string
	IsConstMarker bool
	IsTypedef     bool
}

// Node is the single concrete type every tree in this module is built from.
// Nodes are reference-identified: two Nodes are the same node iff they are
// the same pointer. Parent/Children form a doubly-navigable tree so Detach,
// InsertBefore, and the enclosing-* queries don't need an auxiliary index.
type Node struct {
	Parent   *Node
	Children []*Node

	Kind Kind
	Loc  logger.Loc

	// Str is the kind-dependent string payload: identifier text, literal
	// text, declaration keyword, property key, or qualified-name segment.
	Str string

	// OriginalName records the pre-rewrite identifier text so diagnostics
	// can still refer to what the user wrote after a rename (spec.md §4.3:
	// "renames store the pre-rename identifier as an 'original name'
	// annotation on the node").
	OriginalName string

	JSDoc *JSDoc

	Directives []string
	boolProps  map[BoolProp]bool

	// Params holds parameter names for KindFuncDecl/KindFuncExpr nodes.
	Params []string
}

func NewNode(kind Kind) *Node {
	return &Node{Kind: kind, Loc: logger.LocInvalid}
}

func (n *Node) SetKind(kind Kind) { n.Kind = kind }
func (n *Node) SetString(s string) { n.Str = s }

func (n *Node) SetDirectives(directives []string) { n.Directives = append([]string(nil), directives...) }

func (n *Node) HasDirective(directive string) bool {
	for _, d := range n.Directives {
		if d == directive {
			return true
		}
	}
	return false
}

func (n *Node) GetBoolProp(prop BoolProp) bool {
	if n.boolProps == nil {
		return false
	}
	return n.boolProps[prop]
}

func (n *Node) SetBoolProp(prop BoolProp, value bool) {
	if n.boolProps == nil {
		if !value {
			return
		}
		n.boolProps = make(map[BoolProp]bool, 1)
	}
	n.boolProps[prop] = value
}

// AddChild appends a child and fixes up its Parent pointer. Constructors
// that build a node up-front (NewCall, NewQualifiedName, ...) use this
// instead of writing to Children directly so Parent is never stale.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) indexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Detach removes n from its parent's children. n.Parent becomes nil. This
// is how the Recorder deletes `goog.module`, `goog.require`-family and
// `goog.module.get` statements, and how the Updater deletes the `exports`
// assignments it has replaced.
func (n *Node) Detach() {
	if n.Parent == nil {
		return
	}
	i := n.indexInParent()
	if i < 0 {
		return
	}
	p := n.Parent
	p.Children = append(p.Children[:i], p.Children[i+1:]...)
	n.Parent = nil
}

// Replace swaps n for replacement in n's parent, preserving n's source
// position on the replacement node unless the replacement already carries
// one. This is the primitive behind every "rewrite this subtree in place"
// step: the Updater's alias inlining and in-place conversion of an exported
// declaration, and Unwrap's swap of a goog.loadModule statement for its
// module body. (JSDoc rewriting edits type strings, not nodes.)
func (n *Node) Replace(replacement *Node) {
	if n.Parent == nil {
		panic("Internal error: cannot replace a detached node")
	}
	if replacement.Loc == logger.LocInvalid {
		replacement.Loc = n.Loc
	}
	i := n.indexInParent()
	if i < 0 {
		panic("Internal error: node not found among its parent's children")
	}
	replacement.Parent = n.Parent
	n.Parent.Children[i] = replacement
	n.Parent = nil
}

// InsertBefore inserts sibling immediately before n under n's parent.
func (n *Node) InsertBefore(sibling *Node) {
	if n.Parent == nil {
		panic("Internal error: cannot insert relative to a detached node")
	}
	i := n.indexInParent()
	if i < 0 {
		panic("Internal error: node not found among its parent's children")
	}
	sibling.Parent = n.Parent
	children := append(n.Parent.Children, nil)
	copy(children[i+1:], children[i:])
	children[i] = sibling
	n.Parent.Children = children
}

// InsertAfter inserts sibling immediately after n under n's parent.
func (n *Node) InsertAfter(sibling *Node) {
	if n.Parent == nil {
		panic("Internal error: cannot insert relative to a detached node")
	}
	i := n.indexInParent()
	if i < 0 {
		panic("Internal error: node not found among its parent's children")
	}
	sibling.Parent = n.Parent
	children := append(n.Parent.Children, nil)
	copy(children[i+2:], children[i+1:])
	children[i+1] = sibling
	n.Parent.Children = children
}

// CloneTree makes a deep, parent-detached copy of n and its descendants.
// The rewrite pass does not call it; in particular, JSDoc/typedef info is
// not copied onto the properties of an exports object literal.
func (n *Node) CloneTree() *Node {
	clone := *n
	clone.Parent = nil
	if n.boolProps != nil {
		clone.boolProps = make(map[BoolProp]bool, len(n.boolProps))
		for k, v := range n.boolProps {
			clone.boolProps[k] = v
		}
	}
	clone.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		clone.Children[i] = c.CloneTree()
		clone.Children[i].Parent = &clone
	}
	return &clone
}

// IsStatement reports whether n's Kind is one that can stand alone as a
// statement child of a script, module body, or block.
func (n *Node) IsStatement() bool {
	switch n.Kind {
	case KindExprStmt, KindVarDecl, KindFuncDecl, KindClassDecl, KindReturnStmt:
		return true
	}
	return false
}

// EnclosingStatement walks up from n to the nearest ancestor (or n itself)
// that IsStatement.
func (n *Node) EnclosingStatement() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.IsStatement() {
			return cur
		}
	}
	return nil
}

// EnclosingScript walks up from n to the nearest KindScript or
// KindModuleBody ancestor (or n itself).
func (n *Node) EnclosingScript() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Kind == KindScript || cur.Kind == KindModuleBody {
			return cur
		}
	}
	return nil
}

// EnclosingChangeScope is the unit the compiler's change tracker reports
// invalidation for: the nearest function declaration, or the enclosing
// script/module body if n isn't inside a function. See spec.md §5
// ("reports every structural AST change to the compiler's change tracker").
func (n *Node) EnclosingChangeScope() *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Kind == KindFuncDecl {
			return cur
		}
	}
	return n.EnclosingScript()
}

// IsTopLevelOf reports whether n is an immediate statement child of root
// (a script or module body), i.e. "the immediate statement children of the
// module body" in spec.md's terms.
func (n *Node) IsTopLevelOf(root *Node) bool {
	return n.Parent == root
}

// IsBlockTopLevel reports whether n is an immediate child of any block-like
// container (script, module body, or function body) — used by let/const
// hoisting, which binds to the nearest block rather than the nearest
// function the way `var` does.
func (n *Node) IsBlockTopLevel() bool {
	if n.Parent == nil {
		return false
	}
	switch n.Parent.Kind {
	case KindScript, KindModuleBody, KindFuncDecl:
		return true
	}
	return false
}

// IterateDeclarationNames calls visit once for every identifier bound by a
// KindVarDecl node, including every field of a destructuring pattern, in
// source order. It's used to populate topLevelNames (spec.md §4.2).
func (n *Node) IterateDeclarationNames(visit func(name string, binding *Node)) {
	if n.Kind != KindVarDecl {
		return
	}
	for _, decl := range n.Children {
		if decl.Kind != KindDeclarator || len(decl.Children) == 0 {
			continue
		}
		iterateBindingNames(decl.Children[0], visit)
	}
}

func iterateBindingNames(binding *Node, visit func(name string, binding *Node)) {
	switch binding.Kind {
	case KindIdent:
		visit(binding.Str, binding)
	case KindObjectPattern:
		for _, prop := range binding.Children {
			if prop.Kind != KindPatternProp || len(prop.Children) == 0 {
				continue
			}
			iterateBindingNames(prop.Children[0], visit)
		}
	}
}

// NewIdent builds a fresh identifier node.
func NewIdent(name string) *Node {
	n := NewNode(KindIdent)
	n.Str = name
	return n
}

// NewQualifiedName builds a fresh KindDot chain for a dotted string such as
// "a.b.C", e.g. Dot(Dot(Ident("a"),"b"),"C"). A name with no dot becomes a
// bare KindIdent. This is the "helper that constructs a fresh qualified-name
// subtree from a dotted string" spec.md §6 requires.
func NewQualifiedName(dotted string) *Node {
	parts := strings.Split(dotted, ".")
	var cur *Node = NewIdent(parts[0])
	for _, part := range parts[1:] {
		dot := NewNode(KindDot)
		dot.Str = part
		dot.AddChild(cur)
		cur = dot
	}
	return cur
}

// NewCall builds a fresh call expression `callee(args...)`.
func NewCall(callee *Node, args ...*Node) *Node {
	n := NewNode(KindCall)
	n.AddChild(callee)
	for _, a := range args {
		n.AddChild(a)
	}
	return n
}

// NewStringLit builds a fresh string literal node.
func NewStringLit(value string) *Node {
	n := NewNode(KindStringLit)
	n.Str = value
	return n
}

// NewVarDecl builds `<declKind> <name> = <init>;` as a single-declarator
// KindVarDecl (declKind is "var", "let", or "const").
func NewVarDecl(declKind string, name string, init *Node) *Node {
	decl := NewNode(KindVarDecl)
	decl.Str = declKind
	declarator := NewNode(KindDeclarator)
	declarator.AddChild(NewIdent(name))
	if init != nil {
		declarator.AddChild(init)
	}
	decl.AddChild(declarator)
	return decl
}

// NewModuleScript builds a KindScript whose single child is a KindModuleBody
// holding stmts. This is the shape Recorder expects for every module,
// whether it was written as a plain `goog.module(...)` file (where a real
// frontend synthesizes the module-body node during parsing) or produced by
// Unwrap from a `goog.loadModule(...)` wrapper.
func NewModuleScript(stmts ...*Node) *Node {
	script := NewNode(KindScript)
	body := NewNode(KindModuleBody)
	script.AddChild(body)
	for _, s := range stmts {
		body.AddChild(s)
	}
	return script
}

// NewScript builds a plain (non-module) KindScript containing stmts
// directly, the shape for a legacy `goog.provide` file.
func NewScript(stmts ...*Node) *Node {
	script := NewNode(KindScript)
	for _, s := range stmts {
		script.AddChild(s)
	}
	return script
}

// QualifiedNameString reconstructs the dotted string a KindIdent/KindDot
// chain represents, or "" if n isn't such a chain. It's the inverse of
// NewQualifiedName and is used by the Recorder and Unwrap to recognize
// calls by their dotted callee name, and by the Updater when checking "is
// this read a qualified reference to a known module namespace" (spec.md
// §4.3).
func QualifiedNameString(n *Node) string {
	switch n.Kind {
	case KindIdent:
		return n.Str
	case KindDot:
		if len(n.Children) != 1 {
			return ""
		}
		base := QualifiedNameString(n.Children[0])
		if base == "" {
			return ""
		}
		return base + "." + n.Str
	default:
		return ""
	}
}
