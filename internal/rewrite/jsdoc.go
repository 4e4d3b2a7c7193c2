package rewrite

import "github.com/closuretools/modrewrite/internal/ast"

// rewriteJSDoc rewrites every type reference recorded on n's JSDoc (and
// every descendant's) using the longest-known-prefix rule (spec.md §4.3):
// a type string's longest dotted prefix that names something this module
// knows about — an alias, a required namespace (bound to a local name or
// not), or the module's own namespace — is substituted for that prefix,
// keeping whatever dotted suffix followed it.
func (u *Updater) rewriteJSDoc(n *ast.Node, desc *ScriptDescription) {
	if n.JSDoc != nil {
		known := u.knownPrefixes(desc)
		for i, ts := range n.JSDoc.TypeStrings {
			n.JSDoc.TypeStrings[i] = rewriteTypeString(ts, known)
		}
	}
	for _, c := range n.Children {
		u.rewriteJSDoc(c, desc)
	}
}

// knownPrefixes builds the set of dotted names this module's JSDoc may
// reference and what each resolves to: every alias bound by a require
// (keyed by the alias identifier), every required namespace whether or not
// it has a local alias (keyed by its full dotted name), and the module's
// own namespace (so a self-referential type string still resolves once the
// module's own declarations have been renamed).
func (u *Updater) knownPrefixes(desc *ScriptDescription) map[string]string {
	known := make(map[string]string, len(desc.NamesToInlineByAlias)+len(desc.RequiredNamespaces)+1)
	for alias, target := range desc.NamesToInlineByAlias {
		known[alias] = u.resolveAliasTarget(target)
	}
	for _, ns := range desc.RequiredNamespaces {
		if _, already := known[ns]; already {
			continue
		}
		known[ns] = u.resolveAliasTarget(AliasTarget{Namespace: ns})
	}
	known[desc.LegacyNamespace] = desc.ExportedName()
	return known
}

// rewriteTypeString tries ts's dotted prefixes from longest to shortest
// against known, returning the first match's resolved name with ts's
// remaining suffix reattached, or ts unchanged if nothing matches.
func rewriteTypeString(ts string, known map[string]string) string {
	prefixes := DottedPrefixes(ts)
	for i := len(prefixes) - 1; i >= 0; i-- {
		prefix := prefixes[i]
		resolved, ok := known[prefix]
		if !ok {
			continue
		}
		return resolved + ts[len(prefix):]
	}
	return ts
}
