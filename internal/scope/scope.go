// Package scope tracks lexical binding the way the Updater needs it to
// decide IMPORT_INLINING_SHADOWS_VAR (spec.md §4.3): when an alias read is
// inlined to its target namespace, the namespace's first dotted segment
// must not collide with a local variable declared in a scope nested inside
// the module (module-level and global bindings don't count as shadowing —
// only an intervening function, block, or catch scope does).
//
// The shape here mirrors the teacher's ComputeReservedNames: a scope is a
// node in a tree, and answering "is this name bound nearby" walks that tree
// rather than re-deriving bindings from the AST every time.
package scope

type Kind uint8

const (
	KindModule Kind = iota
	KindFunction
	KindBlock
	KindCatch
	KindClass
)

// StopsHoisting reports whether a `var` declared inside a scope of this
// kind is hoisted up to it instead of continuing further out, matching the
// teacher's ScopeKind.StopsHoisting split between block-like scopes and
// scopes that terminate hoisting.
func (k Kind) StopsHoisting() bool {
	return k == KindModule || k == KindFunction
}

type Scope struct {
	Parent   *Scope
	Children []*Scope
	Names    map[string]bool
	Kind     Kind
}

func NewScope(kind Kind, parent *Scope) *Scope {
	s := &Scope{Kind: kind, Parent: parent, Names: make(map[string]bool)}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// HoistTarget returns the scope a `var` declared inside s actually binds
// in: the nearest ancestor (including s) whose Kind.StopsHoisting.
func (s *Scope) HoistTarget() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind.StopsHoisting() {
			return cur
		}
	}
	return s
}

// Declare records name as bound in s. hoist should be true for `var`
// declarations (which bind at the nearest function/module scope) and
// false for `let`/`const`/function/class declarations (which bind at the
// block they appear in).
func (s *Scope) Declare(name string, hoist bool) {
	target := s
	if hoist {
		target = s.HoistTarget()
	}
	target.Names[name] = true
}

// IsModuleScope reports whether s is the module's top-level scope, i.e. it
// has no ancestor other than possibly the enclosing script.
func (s *Scope) IsModuleScope() bool {
	return s.Kind == KindModule
}

// ShadowsLocal reports whether name is bound in some scope strictly between
// s (inclusive) and the enclosing module scope (exclusive) — i.e. a
// "local non-global, non-module-scope variable" per spec.md §4.3. Module
// top-level bindings (topLevelNames) and anything outside the module
// entirely don't count: only an intervening function/block/catch scope
// does.
func (s *Scope) ShadowsLocal(name string) bool {
	for cur := s; cur != nil && !cur.IsModuleScope(); cur = cur.Parent {
		if cur.Names[name] {
			return true
		}
	}
	return false
}
