package rewrite

import "github.com/closuretools/modrewrite/internal/ast"

// GlobalState is the process-lifetime registry shared by every script in
// one compilation (spec.md §3). It survives hot-swap edits: HotSwapRemove
// withdraws exactly the entries one script root contributed, by identity,
// so a replacement edit can be recorded fresh without disturbing every
// other script's bookkeeping.
type GlobalState struct {
	ScriptsByNamespace map[string]*ScriptDescription

	LegacyScriptNamespaces map[string]bool

	// LegacyPrefixes is the union of every dotted prefix of every
	// goog.provide'd namespace (spec.md §4.2). No part of the pass reads
	// it: the JSDoc rewriter substitutes only the prefixes knownPrefixes
	// lists, so a legacy prefix outside that set is left as written.
	LegacyPrefixes map[string]bool

	// NamespacesByScriptRoot is the reverse index HotSwapRemove uses: which
	// namespaces did this exact script-root node register.
	NamespacesByScriptRoot map[*ast.Node]map[string]bool
}

func NewGlobalState() *GlobalState {
	return &GlobalState{
		ScriptsByNamespace:      make(map[string]*ScriptDescription),
		LegacyScriptNamespaces:  make(map[string]bool),
		LegacyPrefixes:          make(map[string]bool),
		NamespacesByScriptRoot:  make(map[*ast.Node]map[string]bool),
	}
}

func (g *GlobalState) recordRegistration(root *ast.Node, namespace string) {
	set := g.NamespacesByScriptRoot[root]
	if set == nil {
		set = make(map[string]bool)
		g.NamespacesByScriptRoot[root] = set
	}
	set[namespace] = true
}

// IsModule reports whether namespace was registered by a goog.module.
func (g *GlobalState) IsModule(namespace string) bool {
	_, ok := g.ScriptsByNamespace[namespace]
	return ok
}

// IsLegacyScript reports whether namespace was registered by goog.provide.
func (g *GlobalState) IsLegacyScript(namespace string) bool {
	return g.LegacyScriptNamespaces[namespace]
}

// IsKnown reports whether namespace has been declared by either form.
func (g *GlobalState) IsKnown(namespace string) bool {
	return g.IsModule(namespace) || g.IsLegacyScript(namespace)
}

// RegisterModule adds a goog.module namespace to the registry. The caller
// is responsible for having already checked for DUPLICATE_MODULE /
// DUPLICATE_NAMESPACE (the Recorder does this before calling in and reports
// the diagnostic itself, at the script's root node).
func (g *GlobalState) RegisterModule(desc *ScriptDescription) {
	g.ScriptsByNamespace[desc.LegacyNamespace] = desc
	g.recordRegistration(desc.RootNode, desc.LegacyNamespace)
}

// RegisterLegacyScript adds a goog.provide namespace, plus every dotted
// prefix of it, to the registry (spec.md §4.2).
func (g *GlobalState) RegisterLegacyScript(root *ast.Node, namespace string) {
	g.LegacyScriptNamespaces[namespace] = true
	g.recordRegistration(root, namespace)
	for _, prefix := range DottedPrefixes(namespace) {
		g.LegacyPrefixes[prefix] = true
	}
}

// HotSwapRemove withdraws every namespace root registered, by identity
// (spec.md §3, §5: "hot-swap removes a single script's entries by root-node
// identity").
func (g *GlobalState) HotSwapRemove(root *ast.Node) {
	namespaces := g.NamespacesByScriptRoot[root]
	for namespace := range namespaces {
		delete(g.ScriptsByNamespace, namespace)
		delete(g.LegacyScriptNamespaces, namespace)
		// Note: LegacyPrefixes is deliberately not pruned here. A prefix may
		// be shared by namespaces declared from other script roots (e.g.
		// "a.b" is a prefix of both "a.b.C" and "a.b.D"), and spec.md does
		// not define partial-prefix reference counting. The prefix set is
		// rebuilt from scratch on a full (non-hot-swap) recompile.
	}
	delete(g.NamespacesByScriptRoot, root)
}
