package rewrite

import (
	"fmt"
	"strings"

	"github.com/closuretools/modrewrite/internal/ast"
	"github.com/closuretools/modrewrite/internal/logger"
)

// Recorder is the first of the pass's two traversals (spec.md §4.2). It
// walks a single script's top-level statements exactly once, populating a
// ScriptDescription and the shared GlobalState, and queuing every
// goog.require/goog.forwardDeclare it can't resolve immediately for the
// cross-script check that runs once every script in the compilation has
// been recorded. It never rewrites anything: renaming, alias inlining, and
// exports-object construction are the Updater's job.
type Recorder struct {
	state  *GlobalState
	log    logger.Log
	source *logger.Source
	queue  *[]UnrecognizedRequire
}

func NewRecorder(state *GlobalState, log logger.Log, source *logger.Source, queue *[]UnrecognizedRequire) *Recorder {
	return &Recorder{state: state, log: log, source: source, queue: queue}
}

// RecordScript records root, which must already be in Unwrap'd form (a
// KindModuleBody in root.Children[0] if root is a module). ok is false for
// a script this pass doesn't manage at all (no goog.module and no
// goog.provide found) — the caller should leave such a script completely
// untouched.
func (r *Recorder) RecordScript(root *ast.Node) (desc *ScriptDescription, ok bool) {
	if root.Kind != ast.KindScript || len(root.Children) == 0 {
		return nil, false
	}
	if root.Children[0].Kind == ast.KindModuleBody {
		return r.recordModule(root, root.Children[0]), true
	}
	return r.recordLegacyScript(root)
}

func (r *Recorder) recordModule(root, body *ast.Node) *ScriptDescription {
	desc := NewScriptDescription(root)
	desc.IsModule = true

	if root.HasDirective("use strict") {
		r.log.AddWarningWithID(r.source, root.Loc, logger.MsgID_Rewriter_UselessUseStrictDirective,
			"'use strict' is unnecessary in a goog.module, which is always strict")
	}

	stmts := body.Children
	if len(stmts) == 0 || !r.isCallNamed(stmts[0], "goog.module") {
		r.log.AddErrorWithID(r.source, root.Loc, logger.MsgID_Rewriter_InvalidModuleNamespace,
			"goog.module must be the first statement in the file")
		return desc
	}
	moduleStmt := stmts[0]
	call := moduleStmt.Children[0]
	ns, ok := r.stringArg(call, 0)
	if !ok || !isValidNamespace(ns) {
		r.log.AddRangeErrorWithID(r.source, statementRange(moduleStmt), logger.MsgID_Rewriter_InvalidModuleNamespace,
			fmt.Sprintf("Invalid module namespace %q", ns))
	}
	moduleStmt.Detach()
	desc.ModuleStmt = moduleStmt

	for _, stmt := range snapshot(body) {
		r.recordTopLevelStatement(desc, body, stmt)
	}

	desc.SetLegacyNamespace(ns)
	r.registerNamespace(desc, moduleStmt, ns)
	return desc
}

func (r *Recorder) recordLegacyScript(root *ast.Node) (*ScriptDescription, bool) {
	desc := NewScriptDescription(root)
	desc.IsModule = false

	var namespaces []string
	for _, stmt := range snapshot(root) {
		if stmt.Kind == ast.KindVarDecl && len(stmt.Children) == 1 && len(stmt.Children[0].Children) == 2 &&
			stmt.Children[0].Children[1].Kind == ast.KindCall &&
			ast.QualifiedNameString(stmt.Children[0].Children[1].Children[0]) == "goog.provide" {
			r.log.AddRangeErrorWithID(r.source, statementRange(stmt), logger.MsgID_Rewriter_InvalidProvideCall,
				"goog.provide does not return a value and cannot be assigned")
			continue
		}
		if !r.isCallNamed(stmt, "goog.provide") {
			continue
		}
		call := stmt.Children[0]
		ns, ok := r.stringArg(call, 0)
		if !ok || !isValidNamespace(ns) {
			r.log.AddRangeErrorWithID(r.source, statementRange(stmt), logger.MsgID_Rewriter_InvalidProvideNamespace,
				fmt.Sprintf("Invalid provide namespace %q", ns))
			continue
		}
		namespaces = append(namespaces, ns)
	}
	if len(namespaces) == 0 {
		return nil, false
	}

	for _, stmt := range snapshot(root) {
		r.recordRequireLikeStatement(desc, stmt, false /* allowInline */)
	}

	for _, ns := range namespaces {
		if r.state.IsModule(ns) {
			r.log.AddErrorWithID(r.source, root.Loc, logger.MsgID_Rewriter_DuplicateModule,
				fmt.Sprintf("Namespace %q is already provided by a goog.module", ns))
			continue
		}
		if r.state.IsLegacyScript(ns) {
			r.log.AddErrorWithID(r.source, root.Loc, logger.MsgID_Rewriter_DuplicateNamespace,
				fmt.Sprintf("Namespace %q is provided more than once", ns))
			continue
		}
		r.state.RegisterLegacyScript(root, ns)
	}
	desc.SetLegacyNamespace(namespaces[0])
	return desc, true
}

func (r *Recorder) registerNamespace(desc *ScriptDescription, moduleStmt *ast.Node, ns string) {
	if r.state.IsModule(ns) {
		r.log.AddErrorWithID(r.source, desc.RootNode.Loc, logger.MsgID_Rewriter_DuplicateModule,
			fmt.Sprintf("Module namespace %q is already registered", ns))
		return
	}
	if r.state.IsLegacyScript(ns) {
		r.log.AddErrorWithID(r.source, desc.RootNode.Loc, logger.MsgID_Rewriter_DuplicateNamespace,
			fmt.Sprintf("Namespace %q is already provided by a goog.provide", ns))
		return
	}
	r.state.RegisterModule(desc)
}

// recordTopLevelStatement dispatches a single module-body top-level
// statement to the right handler and, for anything that isn't a
// declarative call this pass recognizes, records the names it declares.
func (r *Recorder) recordTopLevelStatement(desc *ScriptDescription, body, stmt *ast.Node) {
	switch {
	case r.isCallNamed(stmt, "goog.module.declareLegacyNamespace"):
		desc.DeclareLegacyNamespace = true
		stmt.Detach()

	case r.isExportsAssignment(stmt):
		r.recordExportsAssignment(desc, stmt)

	case r.recordRequireLikeStatement(desc, stmt, true /* allowInline */):
		// handled

	case stmt.Kind == ast.KindVarDecl:
		stmt.IterateDeclarationNames(func(name string, binding *ast.Node) {
			desc.TopLevelNames[name] = true
			desc.TopLevelDeclNodes[name] = binding
		})

	case stmt.Kind == ast.KindFuncDecl, stmt.Kind == ast.KindClassDecl:
		if stmt.Str != "" {
			desc.TopLevelNames[stmt.Str] = true
			desc.TopLevelDeclNodes[stmt.Str] = stmt
		}
	}
}

// recordRequireLikeStatement recognizes goog.require, goog.requireType,
// goog.forwardDeclare, and goog.module.get in their bare, named-alias, and
// destructuring forms, queues the namespace for the cross-script check when
// no script recorded so far declares it, and
// (when allowInline is true, i.e. inside a module, not a legacy script)
// records the alias so the Updater can inline reads of it. It returns false
// when stmt isn't one of these calls at all.
func (r *Recorder) recordRequireLikeStatement(desc *ScriptDescription, stmt *ast.Node, allowInline bool) bool {
	alias, pattern, call, calleeName, ok := r.extractDeclarativeCall(stmt)
	if !ok {
		return false
	}

	var mustBeOrdered bool
	var msgID logger.MsgID
	switch calleeName {
	case "goog.require":
		mustBeOrdered, msgID = true, logger.MsgID_Rewriter_InvalidRequireNamespace
	case "goog.requireType", "goog.forwardDeclare":
		mustBeOrdered, msgID = false, logger.MsgID_Rewriter_InvalidForwardDeclareNamespace
	case "goog.module.get":
		// Recorder only ever visits top-level statements, so reaching this
		// call here already means it was written at module/script top
		// level, which goog.module.get never permits (it exists to break
		// circular requires from inside a function body).
		r.log.AddRangeErrorWithID(r.source, statementRange(stmt), logger.MsgID_Rewriter_InvalidGetCallScope,
			"goog.module.get may not be called at module top level")
		stmt.Detach()
		return true
	default:
		return false
	}

	ns, okNs := r.stringArg(call, 0)
	if !okNs || !isValidNamespace(ns) {
		r.log.AddRangeErrorWithID(r.source, statementRange(stmt), msgID, fmt.Sprintf("Invalid namespace %q", ns))
		stmt.Detach()
		return true
	}

	if !r.state.IsKnown(ns) {
		*r.queue = append(*r.queue, UnrecognizedRequire{
			Stmt:          stmt,
			Source:        r.source,
			Namespace:     ns,
			MustBeOrdered: mustBeOrdered,
		})
	}

	if allowInline {
		desc.RequiredNamespaces = append(desc.RequiredNamespaces, ns)
		if pattern != nil {
			r.recordDestructuringRequire(desc, pattern, ns)
		} else if alias != "" {
			desc.NamesToInlineByAlias[alias] = AliasTarget{Namespace: ns}
		}
	}

	stmt.Detach()
	return true
}

// recordDestructuringRequire records one alias per destructured field. The
// actual "does this name exist on the target module's exports" check can
// only run once every script in the compilation has been recorded, so it's
// deferred to the Updater; here the alias is simply mapped to
// "<namespace>.<field>" the same way a `const {x} = some.legacy.ns;`
// property read would be, pending that validation.
func (r *Recorder) recordDestructuringRequire(desc *ScriptDescription, pattern *ast.Node, ns string) {
	for _, prop := range pattern.Children {
		if prop.Kind != ast.KindPatternProp || len(prop.Children) == 0 {
			continue
		}
		local := prop.Children[0]
		if local.Kind != ast.KindIdent {
			continue
		}
		if prop.Str == "" {
			r.log.AddRangeErrorWithID(r.source, statementRange(pattern), logger.MsgID_Rewriter_IllegalDestructuringDefaultExport,
				fmt.Sprintf("Cannot destructure the default export of %q", ns))
			continue
		}
		desc.NamesToInlineByAlias[local.Str] = AliasTarget{Namespace: ns, Field: prop.Str}
	}
}

// extractDeclarativeCall recognizes the three shapes a goog.require-family
// statement can take: a bare call statement, `const alias = goog.xxx(...)`,
// and `const {a, b} = goog.xxx(...)`.
func (r *Recorder) extractDeclarativeCall(stmt *ast.Node) (alias string, pattern *ast.Node, call *ast.Node, calleeName string, ok bool) {
	switch {
	case stmt.Kind == ast.KindExprStmt && len(stmt.Children) == 1 && stmt.Children[0].Kind == ast.KindCall:
		call = stmt.Children[0]

	case stmt.Kind == ast.KindVarDecl && len(stmt.Children) == 1:
		decl := stmt.Children[0]
		if decl.Kind != ast.KindDeclarator || len(decl.Children) != 2 {
			return "", nil, nil, "", false
		}
		if decl.Children[1].Kind != ast.KindCall {
			return "", nil, nil, "", false
		}
		call = decl.Children[1]
		binding := decl.Children[0]
		switch binding.Kind {
		case ast.KindIdent:
			alias = binding.Str
		case ast.KindObjectPattern:
			pattern = binding
		default:
			return "", nil, nil, "", false
		}

	default:
		return "", nil, nil, "", false
	}

	if len(call.Children) == 0 {
		return "", nil, nil, "", false
	}
	name := ast.QualifiedNameString(call.Children[0])
	switch name {
	case "goog.require", "goog.requireType", "goog.forwardDeclare", "goog.module.get":
		return alias, pattern, call, name, true
	default:
		return "", nil, nil, "", false
	}
}

// isExportsAssignment reports whether stmt is `exports = rhs;` or
// `exports.name = rhs;`.
func (r *Recorder) isExportsAssignment(stmt *ast.Node) bool {
	if stmt.Kind != ast.KindExprStmt || len(stmt.Children) != 1 {
		return false
	}
	assign := stmt.Children[0]
	if assign.Kind != ast.KindAssign || len(assign.Children) != 2 {
		return false
	}
	lhs := assign.Children[0]
	if lhs.Kind == ast.KindIdent {
		return lhs.Str == "exports"
	}
	if lhs.Kind == ast.KindDot && len(lhs.Children) == 1 {
		return lhs.Children[0].Kind == ast.KindIdent && lhs.Children[0].Str == "exports"
	}
	return false
}

func (r *Recorder) recordExportsAssignment(desc *ScriptDescription, stmt *ast.Node) {
	assign := stmt.Children[0]
	lhs, rhs := assign.Children[0], assign.Children[1]

	if lhs.Kind == ast.KindIdent {
		if desc.HasDefaultExport || len(desc.NamedExports) > 0 {
			r.log.AddRangeErrorWithID(r.source, statementRange(stmt), logger.MsgID_Rewriter_DuplicateNamespace,
				"exports was already assigned")
		}
		if rhs.Kind == ast.KindObjectLit {
			// `exports = {a, b: expr};` is sugar for a named export per
			// property, not a default export (spec.md §3).
			r.recordExportsObjectLiteral(desc, stmt, rhs)
			return
		}
		desc.HasDefaultExport = true
		desc.DefaultExportRhs = rhs
		def := &ExportDefinition{Rhs: rhs, IsDefault: true, OriginStmt: stmt}
		if rhs.Kind == ast.KindIdent {
			desc.DefaultExportLocalName = rhs.Str
			def.NameDecl = desc.TopLevelDeclNodes[rhs.Str]
		}
		desc.ExportsToInline[stmt] = def
		return
	}

	// exports.name = rhs;
	name := lhs.Str
	if name == "" {
		r.log.AddRangeErrorWithID(r.source, statementRange(stmt), logger.MsgID_Rewriter_InvalidExportComputedProperty,
			"Exported property name must not be computed")
		return
	}
	desc.NamedExports[name] = true
	def := &ExportDefinition{Rhs: rhs, ExportName: name, OriginStmt: stmt}
	if rhs.Kind == ast.KindIdent {
		def.NameDecl = desc.TopLevelDeclNodes[rhs.Str]
	}
	desc.ExportsToInline[stmt] = def
}

// recordExportsObjectLiteral treats `exports = {a, b: expr};` as shorthand
// for a named export per property, the way goog.module treats an exports
// object literal whose values are all plain identifiers or simple
// expressions (spec.md §3). Every property becomes its own ExportDefinition
// keyed by the property node itself (stmt only ever appears once, as the
// shared OriginStmt every one of them asks the Updater to detach).
func (r *Recorder) recordExportsObjectLiteral(desc *ScriptDescription, stmt, obj *ast.Node) {
	for _, prop := range obj.Children {
		if prop.Kind != ast.KindProperty || prop.Str == "" {
			r.log.AddRangeErrorWithID(r.source, statementRange(stmt), logger.MsgID_Rewriter_InvalidExportComputedProperty,
				"Exported property name must not be computed")
			continue
		}
		desc.NamedExports[prop.Str] = true

		// A shorthand property `{foo}` has no value child at all; it means
		// `foo: foo`, so synthesize the identifier it implies. This node is
		// only ever used as a detached Rhs if the Updater ends up needing
		// to generate a standalone assignment for it — the generic rename
		// walk never sees it, since there's no live Ident node to visit for
		// a shorthand key in the first place.
		value := ast.NewIdent(prop.Str)
		if len(prop.Children) > 0 {
			value = prop.Children[0]
		}
		def := &ExportDefinition{Rhs: value, ExportName: prop.Str, OriginStmt: stmt}
		if value.Kind == ast.KindIdent {
			def.NameDecl = desc.TopLevelDeclNodes[value.Str]
		}
		desc.ExportsToInline[prop] = def
	}
}

func (r *Recorder) isCallNamed(stmt *ast.Node, dotted string) bool {
	if stmt.Kind != ast.KindExprStmt || len(stmt.Children) != 1 {
		return false
	}
	call := stmt.Children[0]
	if call.Kind != ast.KindCall || len(call.Children) == 0 {
		return false
	}
	return ast.QualifiedNameString(call.Children[0]) == dotted
}

func (r *Recorder) stringArg(call *ast.Node, index int) (string, bool) {
	if len(call.Children) <= index+1 {
		return "", false
	}
	arg := call.Children[index+1]
	if arg.Kind != ast.KindStringLit {
		return "", false
	}
	return arg.Str, true
}

func isValidNamespace(ns string) bool {
	if ns == "" {
		return false
	}
	for _, part := range strings.Split(ns, ".") {
		if !isValidIdentifier(part) {
			return false
		}
	}
	return true
}

func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		isLetter := c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if i > 0 && !isLetter && !isDigit {
			return false
		}
	}
	return true
}

// snapshot copies root's current children so callers can detach nodes from
// root while iterating without skipping or revisiting entries.
func snapshot(root *ast.Node) []*ast.Node {
	return append([]*ast.Node(nil), root.Children...)
}
