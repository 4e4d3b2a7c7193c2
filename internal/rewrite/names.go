package rewrite

import "strings"

// BinaryNamespace mangles a legacy dotted namespace into the flat identifier
// that is the runtime-visible name of a module's exports object (spec.md
// §3, §6): "module$exports$" + the namespace with every "." replaced by
// "$". It only exists for non-legacy modules.
func BinaryNamespace(legacyNamespace string) string {
	return "module$exports$" + strings.ReplaceAll(legacyNamespace, ".", "$")
}

// ContentsPrefix mangles a legacy dotted namespace into the prefix used to
// rename every module-private top-level binding: "module$contents$" + the
// namespace with "." replaced by "$", plus a trailing "_".
func ContentsPrefix(legacyNamespace string) string {
	return "module$contents$" + strings.ReplaceAll(legacyNamespace, ".", "$") + "_"
}

// DottedPrefixes returns every dotted prefix of namespace, including
// namespace itself: DottedPrefixes("a.b.c") = ["a", "a.b", "a.b.c"]. Used to
// populate the legacy-prefix set goog.provide contributes to (spec.md
// §4.2) and by the JSDoc rewriter's shorten-by-one-segment loop (§4.3).
func DottedPrefixes(namespace string) []string {
	parts := strings.Split(namespace, ".")
	prefixes := make([]string, len(parts))
	for i := range parts {
		prefixes[i] = strings.Join(parts[:i+1], ".")
	}
	return prefixes
}
