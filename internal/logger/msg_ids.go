package logger

// Stable diagnostic keys for the namespace-flattening pass, grouped under a
// single "Rewriter" namespace the way the teacher groups its own message IDs
// by subsystem (MsgID_JS_*, MsgID_CSS_*, MsgID_Bundler_*). Severities are
// fixed: every one of these is MsgKind Error except
// MsgID_Rewriter_UselessUseStrictDirective, which is a Warning and is
// disabled by default (see internal/config).
type MsgID = uint8

const (
	MsgID_None MsgID = iota

	MsgID_Rewriter_InvalidModuleNamespace
	MsgID_Rewriter_InvalidProvideNamespace
	MsgID_Rewriter_InvalidRequireNamespace
	MsgID_Rewriter_InvalidForwardDeclareNamespace
	MsgID_Rewriter_InvalidGetNamespace
	MsgID_Rewriter_InvalidProvideCall
	MsgID_Rewriter_InvalidGetCallScope
	MsgID_Rewriter_InvalidGetAlias
	MsgID_Rewriter_InvalidExportComputedProperty
	MsgID_Rewriter_UselessUseStrictDirective
	MsgID_Rewriter_DuplicateModule
	MsgID_Rewriter_DuplicateNamespace
	MsgID_Rewriter_MissingModuleOrProvide
	MsgID_Rewriter_LateProvideError
	MsgID_Rewriter_ImportInliningShadowsVar
	MsgID_Rewriter_QualifiedReferenceToGoogModule
	MsgID_Rewriter_IllegalDestructuringDefaultExport
	MsgID_Rewriter_IllegalDestructuringNotExported
)

// stableKeys mirrors the JSC_GOOG_MODULE_* string keys from spec.md §6. They
// are kept distinct from the Go-side MsgID enum so a consumer that persists
// diagnostics (e.g. across a build cache) has a name stable across releases
// even if the enum's numeric values are reordered.
var stableKeys = map[MsgID]string{
	MsgID_Rewriter_InvalidModuleNamespace:            "JSC_GOOG_MODULE_INVALID_MODULE_NAMESPACE",
	MsgID_Rewriter_InvalidProvideNamespace:           "JSC_GOOG_MODULE_INVALID_PROVIDE_NAMESPACE",
	MsgID_Rewriter_InvalidRequireNamespace:           "JSC_GOOG_MODULE_INVALID_REQUIRE_NAMESPACE",
	MsgID_Rewriter_InvalidForwardDeclareNamespace:    "JSC_GOOG_MODULE_INVALID_FORWARD_DECLARE_NAMESPACE",
	MsgID_Rewriter_InvalidGetNamespace:               "JSC_GOOG_MODULE_INVALID_GET_NAMESPACE",
	MsgID_Rewriter_InvalidProvideCall:                "JSC_GOOG_MODULE_INVALID_PROVIDE_CALL",
	MsgID_Rewriter_InvalidGetCallScope:               "JSC_GOOG_MODULE_INVALID_GET_CALL_SCOPE",
	MsgID_Rewriter_InvalidGetAlias:                   "JSC_GOOG_MODULE_INVALID_GET_ALIAS",
	MsgID_Rewriter_InvalidExportComputedProperty:     "JSC_GOOG_MODULE_INVALID_EXPORT_COMPUTED_PROPERTY",
	MsgID_Rewriter_UselessUseStrictDirective:         "JSC_USELESS_USE_STRICT_DIRECTIVE",
	MsgID_Rewriter_DuplicateModule:                   "JSC_DUPLICATE_MODULE",
	MsgID_Rewriter_DuplicateNamespace:                "JSC_DUPLICATE_NAMESPACE",
	MsgID_Rewriter_MissingModuleOrProvide:            "JSC_MISSING_MODULE_OR_PROVIDE",
	MsgID_Rewriter_LateProvideError:                  "JSC_LATE_PROVIDE_ERROR",
	MsgID_Rewriter_ImportInliningShadowsVar:          "JSC_IMPORT_INLINING_SHADOWS_VAR",
	MsgID_Rewriter_QualifiedReferenceToGoogModule:    "JSC_QUALIFIED_REFERENCE_TO_GOOG_MODULE",
	MsgID_Rewriter_IllegalDestructuringDefaultExport: "JSC_ILLEGAL_DESTRUCTURING_DEFAULT_EXPORT",
	MsgID_Rewriter_IllegalDestructuringNotExported:   "JSC_ILLEGAL_DESTRUCTURING_NOT_EXPORTED",
}

// StableKey returns the JSC_* string key spec.md §6 defines for id, or ""
// for MsgID_None.
func StableKey(id MsgID) string {
	return stableKeys[id]
}

// IsWarningByDefault reports whether id is disabled-by-default per spec.md
// §6 ("Severities are fixed ... USELESS_USE_STRICT_DIRECTIVE is disabled
// by default").
func IsWarningByDefault(id MsgID) bool {
	return id == MsgID_Rewriter_UselessUseStrictDirective
}
