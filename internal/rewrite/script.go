package rewrite

import (
	"github.com/closuretools/modrewrite/internal/ast"
)

// AliasTarget is what a required/forward-declared local name stands for:
// the namespace it names, plus an optional dotted field for a destructured
// binding (`const {Field} = goog.require(Namespace)`).
type AliasTarget struct {
	Namespace string
	Field     string
}

// ExportDefinition records one exported binding (spec.md §3). ExportName is
// "" for the default export (`exports = expr`).
type ExportDefinition struct {
	// Rhs is the expression assigned to this export, or nil for a
	// `@typedef` export that has no runtime value.
	Rhs *ast.Node

	// NameDecl is the binding site of the exported local when Rhs is a
	// single identifier naming a top-level declaration, or nil otherwise.
	NameDecl *ast.Node

	// OriginStmt is the top-level statement this export definition came
	// from: itself for `exports.x = rhs;`/`exports = rhs;`, or the shared
	// `exports = {...}` statement for a property of an exports object
	// literal. The Updater detaches each distinct OriginStmt exactly once,
	// after deciding (per entry) whether its declaration was renamed in
	// place or needs a generated assignment appended instead.
	OriginStmt *ast.Node

	ExportName string

	// IsDefault is true for `exports = expr`; false for `exports.X = expr`
	// and for named-exports-object-literal properties.
	IsDefault bool
}

// Inlinable reports whether this export's local declaration can be
// converted in place instead of producing a separate assignment that
// references an unchanged, content-prefixed declaration (spec.md §3's
// three conditions): the default export's declaration is renamed directly
// to the binary namespace; a named export's declaration is replaced with
// `<target>.<name> = <value>;` at its own position (spec.md §4.2's "mark
// each for in-place renaming"). Always false for a legacy module: a legacy
// module's exported name is a dotted string, never usable as a
// declaration's own identifier in this pass's Tree model.
func (e *ExportDefinition) Inlinable(declKind string, alreadyInlined bool, rhsCalleeIsBannedBuiltin bool, isLegacyModule bool) bool {
	if isLegacyModule || e.NameDecl == nil {
		return false
	}
	switch declKind {
	case "var", "let", "const", "function", "class":
	default:
		return false
	}
	if alreadyInlined {
		return false
	}
	return !rhsCalleeIsBannedBuiltin
}

// ScriptDescription is the per-script mutable record Recorder populates and
// Updater consumes (spec.md §3). One exists per managed script; a module
// script is recorded from its first child, the KindModuleBody.
type ScriptDescription struct {
	RootNode *ast.Node

	// ModuleStmt is the `goog.module(ns)` call statement the Recorder
	// detached from the body, kept alive so the Updater can decide its
	// fate once DeclareLegacyNamespace is known: rewritten into
	// goog.provide(ns) and reinserted for a legacy module, or discarded
	// for a non-legacy one (spec.md §4.3).
	ModuleStmt *ast.Node

	IsModule               bool
	DeclareLegacyNamespace bool

	LegacyNamespace string
	ContentsPrefix  string
	BinaryNamespace string
	ExportedNamespace string

	TopLevelNames map[string]bool

	// TopLevelDeclNodes maps a top-level name to the identifier node that
	// binds it (the declarator's binding identifier for var/let/const, or
	// the FuncDecl/ClassDecl node itself), so an `exports.x = x;` or
	// `exports = x;` whose right-hand side names a top-level declaration can
	// be inlined in place rather than turned into an assignment.
	TopLevelDeclNodes map[string]*ast.Node

	// RequiredNamespaces lists every namespace this module required or
	// forward-declared, by its original dotted string, whether or not it
	// was bound to a local alias. The JSDoc rewriter's longest-known-prefix
	// rule needs these even for a bare `goog.require('a.b.C');` with no
	// binding, since a.b.C's JSDoc-visible name still changes if a.b.C
	// turns out to be a module (spec.md §4.3).
	RequiredNamespaces []string

	// NamesToInlineByAlias maps an alias identifier bound at the module's
	// top level (by goog.require/goog.forwardDeclare/destructuring require)
	// to the namespace/field it stands for. The Updater resolves Namespace
	// against the GlobalState once every script has been recorded, since
	// the namespace's final exported name isn't known until then.
	NamesToInlineByAlias map[string]AliasTarget

	DefaultExportRhs       *ast.Node
	DefaultExportLocalName string
	HasDefaultExport       bool

	NamedExports map[string]bool

	// ExportsToInline maps each export's origin node to its definition: the
	// `exports = ...`/`exports.x = ...` statement, or the property node for
	// a property of an exports object literal. Every recorded export is
	// listed; the Updater decides per entry whether its declaration (the
	// definition's NameDecl) is converted in place or a separate assignment
	// is generated.
	ExportsToInline map[*ast.Node]*ExportDefinition

	WillCreateExportsObject bool
	HasCreatedExportObject  bool

	// ChildScripts is not populated by the Recorder or read by the Updater:
	// only a script's first child is recorded as its module body, and
	// further `goog.loadModule` bodies in the same script are not recorded
	// or rewritten.
	ChildScripts []*ScriptDescription
}

func NewScriptDescription(root *ast.Node) *ScriptDescription {
	return &ScriptDescription{
		RootNode:             root,
		TopLevelNames:        make(map[string]bool),
		TopLevelDeclNodes:    make(map[string]*ast.Node),
		NamesToInlineByAlias: make(map[string]AliasTarget),
		NamedExports:         make(map[string]bool),
		ExportsToInline:      make(map[*ast.Node]*ExportDefinition),
	}
}

// SetLegacyNamespace finishes deriving a module's names once its namespace
// is known (spec.md §3: ContentsPrefix/BinaryNamespace/ExportedNamespace
// are "derived").
func (s *ScriptDescription) SetLegacyNamespace(namespace string) {
	s.LegacyNamespace = namespace
	s.ContentsPrefix = ContentsPrefix(namespace)
	if s.IsModule {
		s.BinaryNamespace = BinaryNamespace(namespace)
	}
	s.ExportedNamespace = s.ExportedName()
}

// ExportedName returns the name code outside this module should reference
// it by: the legacy dotted name for a legacy script or legacy module, the
// binary namespace otherwise.
func (s *ScriptDescription) ExportedName() string {
	if !s.IsModule || s.DeclareLegacyNamespace {
		return s.LegacyNamespace
	}
	return s.BinaryNamespace
}
