package rewrite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/closuretools/modrewrite/internal/ast"
	"github.com/closuretools/modrewrite/internal/logger"
	"github.com/closuretools/modrewrite/internal/scope"
)

// Updater is the pass's second traversal (spec.md §4.3). It only ever runs
// over scripts that recorded cleanly and only after every script in the
// compilation has been through the Recorder, since resolving an alias or
// validating a destructured import needs the full GlobalState.
type Updater struct {
	state  *GlobalState
	log    logger.Log
	source *logger.Source
}

func NewUpdater(state *GlobalState, log logger.Log, source *logger.Source) *Updater {
	return &Updater{state: state, log: log, source: source}
}

// UpdateScript rewrites desc's tree in place. Legacy (goog.provide) scripts
// are left alone beyond what the Recorder already stripped: goog.provide
// never renames a script's own top-level bindings, only registers its
// namespace for other scripts to require.
func (u *Updater) UpdateScript(desc *ScriptDescription) {
	if !desc.IsModule {
		return
	}
	body := desc.RootNode.Children[0]

	u.validateDestructuring(desc)

	renameMap := u.buildRenameMap(desc)
	moduleScope := scope.NewScope(scope.KindModule, nil)
	for name := range desc.TopLevelNames {
		moduleScope.Declare(name, false)
	}
	u.rewriteIdentifiers(body, moduleScope, desc, renameMap)
	u.rewriteJSDoc(body, desc)
	u.finishExports(desc, body, renameMap)
	u.finishModuleStmt(desc, body)
	u.unwrapModuleBody(desc)
}

// buildRenameMap decides the final name for every top-level binding: the
// binary namespace itself for a default export's declaration that's
// inlinable, module$contents$ mangling otherwise (spec.md §3, §4.3). Named
// exports are never handled here — their target is a dotted
// "<namespace>.<name>", never a legal identifier to rename a declaration
// to, so an inlinable named export's declaration is converted into an
// assignment statement in place by finishExports instead.
func (u *Updater) buildRenameMap(desc *ScriptDescription) map[string]string {
	inlineTargets := make(map[*ast.Node]string)
	for _, def := range desc.ExportsToInline {
		if !def.IsDefault || def.NameDecl == nil {
			continue
		}
		if _, already := inlineTargets[def.NameDecl]; already {
			continue
		}
		if !def.Inlinable(declKindOf(def.NameDecl), false, false, desc.DeclareLegacyNamespace) {
			continue
		}
		inlineTargets[def.NameDecl] = desc.BinaryNamespace
	}

	renameMap := make(map[string]string, len(desc.TopLevelNames))
	for name := range desc.TopLevelNames {
		if decl := desc.TopLevelDeclNodes[name]; decl != nil {
			if target, ok := inlineTargets[decl]; ok {
				renameMap[name] = target
				continue
			}
		}
		renameMap[name] = desc.ContentsPrefix + name
	}
	return renameMap
}

// declKindOf reports the textual declaration kind ("var", "let", "const",
// "function", "class") a top-level binding identifier node came from, the
// input ExportDefinition.Inlinable expects.
func declKindOf(decl *ast.Node) string {
	switch decl.Kind {
	case ast.KindFuncDecl:
		return "function"
	case ast.KindClassDecl:
		return "class"
	case ast.KindIdent:
		if decl.Parent != nil && decl.Parent.Kind == ast.KindDeclarator && decl.Parent.Parent != nil {
			return decl.Parent.Parent.Str
		}
	}
	return ""
}

// rewriteIdentifiers walks n renaming reads (and binding sites, which share
// the same KindIdent representation) of top-level names to their mangled
// form and reads of require/forwardDeclare aliases to the namespace they
// stand for. Identifiers bound by a nested function scope shadow the
// module-level binding of the same name and are left untouched.
func (u *Updater) rewriteIdentifiers(n *ast.Node, sc *scope.Scope, desc *ScriptDescription, renameMap map[string]string) {
	switch n.Kind {
	case ast.KindFuncDecl, ast.KindFuncExpr:
		// A function declaration's own name lives in Str, not a child Ident,
		// so it needs the same shadow-check-then-rename treatment as a
		// KindIdent read before descending into a new scope for its body.
		if n.Kind == ast.KindFuncDecl {
			renameDeclName(n, sc, renameMap)
		}
		inner := scope.NewScope(scope.KindFunction, sc)
		for _, p := range n.Params {
			inner.Declare(p, false)
		}
		declareOwnNames(n, inner)
		for _, c := range n.Children {
			u.rewriteIdentifiers(c, inner, desc, renameMap)
		}
		return

	case ast.KindClassDecl:
		renameDeclName(n, sc, renameMap)
		for _, c := range n.Children {
			u.rewriteIdentifiers(c, sc, desc, renameMap)
		}
		return

	case ast.KindDot, ast.KindProperty, ast.KindPatternProp:
		// Str here is a property/field name, not a standalone identifier
		// reference; only recurse into children (the target/value/local
		// binding).
		if n.Kind == ast.KindDot {
			name := ast.QualifiedNameString(n)
			if target, ok := u.state.ScriptsByNamespace[name]; ok && !target.DeclareLegacyNamespace {
				u.log.AddErrorWithID(u.source, n.Loc, logger.MsgID_Rewriter_QualifiedReferenceToGoogModule,
					fmt.Sprintf("Cannot reference goog.module %q by its qualified name; require it instead", name))
			}
		}
		for _, c := range n.Children {
			u.rewriteIdentifiers(c, sc, desc, renameMap)
		}
		return

	case ast.KindIdent:
		if sc.ShadowsLocal(n.Str) {
			return
		}
		if alias, ok := desc.NamesToInlineByAlias[n.Str]; ok {
			resolved := u.resolveAliasTarget(alias)
			if first := strings.SplitN(resolved, ".", 2)[0]; sc.ShadowsLocal(first) {
				u.log.AddErrorWithID(u.source, n.Loc, logger.MsgID_Rewriter_ImportInliningShadowsVar,
					fmt.Sprintf("Inlining %q as %q is shadowed by local variable %q", n.Str, resolved, first))
			}
			replacement := ast.NewQualifiedName(resolved)
			replacement.OriginalName = n.Str
			n.Replace(replacement)
			return
		}
		if newName, ok := renameMap[n.Str]; ok && newName != n.Str {
			n.OriginalName = n.Str
			n.Str = newName
		}
		return
	}

	for _, c := range n.Children {
		u.rewriteIdentifiers(c, sc, desc, renameMap)
	}
}

// renameDeclName renames n.Str (n must be a KindFuncDecl or KindClassDecl)
// the same way a read of that name would be renamed, using sc as the scope
// the declaration itself sits in — not the new scope its body introduces.
func renameDeclName(n *ast.Node, sc *scope.Scope, renameMap map[string]string) {
	if n.Str == "" || sc.ShadowsLocal(n.Str) {
		return
	}
	if newName, ok := renameMap[n.Str]; ok && newName != n.Str {
		n.OriginalName = n.Str
		n.Str = newName
	}
}

// declareOwnNames pre-declares every name a function body binds directly
// (not inside a nested function) into sc, so a reference earlier in the
// body than its `var`/function declaration still resolves to the local
// binding instead of being mistaken for the module-level one.
func declareOwnNames(fn *ast.Node, sc *scope.Scope) {
	for _, stmt := range fn.Children {
		switch stmt.Kind {
		case ast.KindVarDecl:
			hoist := stmt.Str == "var"
			stmt.IterateDeclarationNames(func(name string, binding *ast.Node) {
				sc.Declare(name, hoist)
			})
		case ast.KindFuncDecl, ast.KindClassDecl:
			if stmt.Str != "" {
				sc.Declare(stmt.Str, false)
			}
		}
	}
}

// resolveAliasTarget turns a recorded AliasTarget into the dotted string
// the alias should read as in the rewritten tree, using whatever the
// required namespace's ScriptDescription says it's now called — which
// might itself be a binary namespace if the target is a non-legacy module.
func (u *Updater) resolveAliasTarget(alias AliasTarget) string {
	name := alias.Namespace
	if target, ok := u.state.ScriptsByNamespace[alias.Namespace]; ok {
		name = target.ExportedName()
	}
	if alias.Field != "" {
		name += "." + alias.Field
	}
	return name
}

// validateDestructuring emits ILLEGAL_DESTRUCTURING_NOT_EXPORTED for a
// destructured require field that the target module never exports. It can
// only run now: the target module's NamedExports isn't final until every
// script in the compilation has gone through the Recorder.
func (u *Updater) validateDestructuring(desc *ScriptDescription) {
	for alias, target := range desc.NamesToInlineByAlias {
		if target.Field == "" {
			continue
		}
		producer, ok := u.state.ScriptsByNamespace[target.Namespace]
		if !ok {
			continue // a goog.provide namespace: its exported properties are not tracked
		}
		if !producer.NamedExports[target.Field] {
			u.log.AddErrorWithID(u.source, desc.RootNode.Loc, logger.MsgID_Rewriter_IllegalDestructuringNotExported,
				fmt.Sprintf("Cannot destructure %q: %q does not export it", alias, target.Namespace))
		}
	}
}

// finishExports detaches every export's OriginStmt exactly once and gives
// outside code access to this module's exports (spec.md §3, §4.2, §4.3):
//
//   - the base binding, `var <target> = rhs;` for a non-legacy module or
//     `<target> = rhs;` for a legacy one, unless the default export's own
//     declaration was inlinable (only possible for a non-legacy module: a
//     legacy module's target is a dotted legacy namespace, never a legal
//     declaration identifier);
//   - for each remaining named export, either its declaration converted in
//     place into `<target>.name = value;` (when every export sharing its
//     origin statement is inlinable and the module isn't legacy — spec.md
//     §4.2's all-or-nothing rule for an `exports = {a, b}` object literal,
//     which degenerates to a single entry for a bare `exports.name = rhs;`),
//     or a generated `<target>.name = rhs;` assignment appended at the end
//     otherwise.
func (u *Updater) finishExports(desc *ScriptDescription, body *ast.Node, renameMap map[string]string) {
	legacy := desc.DeclareLegacyNamespace
	target := desc.ExportedName()

	origins := make(map[*ast.Node]bool)
	groups := make(map[*ast.Node][]*ExportDefinition)
	var groupOrder []*ast.Node
	var def *ExportDefinition
	for _, d := range desc.ExportsToInline {
		if d.OriginStmt != nil {
			origins[d.OriginStmt] = true
		}
		if d.IsDefault {
			def = d
			continue
		}
		if _, seen := groups[d.OriginStmt]; !seen {
			groupOrder = append(groupOrder, d.OriginStmt)
		}
		groups[d.OriginStmt] = append(groups[d.OriginStmt], d)
	}
	sort.Slice(groupOrder, func(i, j int) bool { return groupOrder[i].Loc.Start < groupOrder[j].Loc.Start })

	baseInlinable := !legacy && def != nil && def.NameDecl != nil &&
		def.Inlinable(declKindOf(def.NameDecl), false, false, legacy)
	needsBase := !baseInlinable && (!legacy || def != nil)
	if needsBase {
		var rhs *ast.Node
		if def != nil {
			rhs = def.Rhs
		} else {
			rhs = ast.NewNode(ast.KindObjectLit)
		}
		baseStmt := newBaseExportStmt(target, rhs, legacy)
		if len(body.Children) > 0 {
			body.Children[0].InsertBefore(baseStmt)
		} else {
			body.AddChild(baseStmt)
		}
		desc.WillCreateExportsObject = true
		desc.HasCreatedExportObject = true
	}

	var pending []*ExportDefinition
	for _, stmt := range groupOrder {
		entries := groups[stmt]
		if !legacy && allDeclarationsInlinable(entries) {
			sort.Slice(entries, func(i, j int) bool { return entries[i].ExportName < entries[j].ExportName })
			for _, d := range entries {
				inlineDeclarationAsProperty(d, target)
			}
			desc.HasCreatedExportObject = true
			continue
		}
		pending = append(pending, entries...)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ExportName < pending[j].ExportName })

	for _, d := range pending {
		renameDetachedIdent(d.Rhs, renameMap)
		assign := ast.NewNode(ast.KindAssign)
		lhs := ast.NewQualifiedName(target + "." + d.ExportName)
		assign.AddChild(lhs)
		assign.AddChild(d.Rhs)
		stmt := ast.NewNode(ast.KindExprStmt)
		stmt.Loc = d.Rhs.Loc
		stmt.AddChild(assign)
		body.AddChild(stmt)
	}

	for origin := range origins {
		origin.Detach()
	}
}

// newBaseExportStmt builds the statement that gives outside code its first
// handle on this module's exports: `var <target> = rhs;` for a non-legacy
// module, since target is then a flat, legal identifier (the binary
// namespace), or the bare assignment `<target> = rhs;` for a legacy
// module, whose target is a dotted legacy namespace and so can never be a
// declaration's own name.
func newBaseExportStmt(target string, rhs *ast.Node, legacy bool) *ast.Node {
	if legacy {
		assign := ast.NewNode(ast.KindAssign)
		assign.AddChild(ast.NewQualifiedName(target))
		assign.AddChild(rhs)
		stmt := ast.NewNode(ast.KindExprStmt)
		stmt.AddChild(assign)
		return stmt
	}
	return ast.NewVarDecl("var", target, rhs)
}

// allDeclarationsInlinable reports whether every export in a group sharing
// one origin statement names a renameable top-level declaration — the
// all-or-nothing rule for an `exports = {...}` object literal (spec.md
// §4.2, §8: either every property is inlinable, or none are and the whole
// literal is preserved), which degenerates to a single check for the
// one-entry group a bare `exports.name = rhs;` always forms.
func allDeclarationsInlinable(entries []*ExportDefinition) bool {
	for _, d := range entries {
		if d.NameDecl == nil {
			return false
		}
		if !d.Inlinable(declKindOf(d.NameDecl), false, false, false) {
			return false
		}
	}
	return true
}

// inlineDeclarationAsProperty converts def's top-level declaration into
// `<target>.<exportName> = <value>;` at the declaration's own position
// (spec.md §4.2's "mark each for in-place renaming", §4.3's "rename in
// place every exportsToInline entry to <binaryNamespace>[.<exportName>]"),
// rather than leaving the declaration under its content-prefixed name and
// generating a separate trailing assignment for it.
func inlineDeclarationAsProperty(def *ExportDefinition, target string) {
	stmt := def.NameDecl.EnclosingStatement()
	value := declarationValue(def.NameDecl)
	assign := ast.NewNode(ast.KindAssign)
	assign.AddChild(ast.NewQualifiedName(target + "." + def.ExportName))
	assign.AddChild(value)
	replacement := ast.NewNode(ast.KindExprStmt)
	replacement.AddChild(assign)
	stmt.Replace(replacement)
}

// declarationValue extracts the expression a top-level declaration
// contributes once it's converted from a standalone statement into an
// assignment's right-hand side: the initializer for var/let/const, or an
// anonymous function/class expression carrying the same params/body
// otherwise.
func declarationValue(decl *ast.Node) *ast.Node {
	switch decl.Kind {
	case ast.KindFuncDecl:
		fn := ast.NewNode(ast.KindFuncExpr)
		fn.Params = decl.Params
		for _, c := range decl.Children {
			fn.AddChild(c)
		}
		return fn
	case ast.KindClassDecl:
		cls := ast.NewNode(ast.KindClassDecl)
		for _, c := range decl.Children {
			cls.AddChild(c)
		}
		return cls
	case ast.KindIdent:
		if decl.Parent != nil && len(decl.Parent.Children) == 2 {
			return decl.Parent.Children[1]
		}
	}
	return ast.NewIdent("undefined")
}

// finishModuleStmt disposes of the goog.module(ns) call the Recorder kept
// alive (spec.md §4.3): a legacy module gets it rewritten into a
// goog.provide(ns) call and reinserted at the very front of the module,
// where the original call sat; a non-legacy module simply leaves it gone,
// since the Recorder already detached it from the body and nothing here
// needs to replace it — the base export statement finishExports just
// produced takes its place as the module's first new statement.
func (u *Updater) finishModuleStmt(desc *ScriptDescription, body *ast.Node) {
	if desc.ModuleStmt == nil || !desc.DeclareLegacyNamespace {
		return
	}
	call := ast.NewCall(ast.NewQualifiedName("goog.provide"), ast.NewStringLit(desc.LegacyNamespace))
	stmt := ast.NewNode(ast.KindExprStmt)
	stmt.Loc = desc.ModuleStmt.Loc
	stmt.AddChild(call)
	if len(body.Children) > 0 {
		body.Children[0].InsertBefore(stmt)
	} else {
		body.AddChild(stmt)
	}
}

// renameDetachedIdent applies the top-level rename map to n if n is an
// identifier that was never part of the tree rewriteIdentifiers walked
// (namely the synthetic `foo` ast.NewIdent a shorthand `{foo}` export
// property implies, which has no live node of its own to visit). A node the
// walk already renamed has its OriginalName set and is returned unchanged.
func renameDetachedIdent(n *ast.Node, renameMap map[string]string) {
	if n.Kind != ast.KindIdent || n.OriginalName != "" {
		return
	}
	if newName, ok := renameMap[n.Str]; ok && newName != n.Str {
		n.OriginalName = n.Str
		n.Str = newName
	}
}

// unwrapModuleBody replaces root's KindModuleBody wrapper with its
// statements spliced directly into root, the flat-script shape every
// caller downstream of this pass expects (spec.md §1: "the output is a
// plain, flattened script").
func (u *Updater) unwrapModuleBody(desc *ScriptDescription) {
	root := desc.RootNode
	body := root.Children[0]
	stmts := body.Children
	root.Children = root.Children[:0]
	for _, s := range stmts {
		root.AddChild(s)
	}
}
