// Package rewrite implements the two-phase pass that flattens
// goog.module/goog.provide namespace declarations into plain, globally
// qualified names (spec.md §1-§5): Unwrap normalizes a goog.loadModule
// wrapper into the same shape a plain goog.module file already has,
// Recorder walks every script once to populate the Global Rewrite State,
// and Updater walks every successfully recorded script a second time to
// actually rename and restructure it, once every script's namespace is
// known.
package rewrite

import (
	"github.com/closuretools/modrewrite/internal/ast"
	"github.com/closuretools/modrewrite/internal/logger"
)

// ScriptInput bundles a script's root node with the source it was parsed
// from, so diagnostics can carry a file name and line/column.
type ScriptInput struct {
	Root   *ast.Node
	Source *logger.Source
}

// Compilation holds the Global Rewrite State for one batch of scripts,
// kept alive across a Run and any later HotSwap calls the way a real
// compiler keeps its module graph alive across incremental recompiles
// (spec.md §3, §5).
type Compilation struct {
	State *GlobalState
	Log   logger.Log
}

func NewCompilation(log logger.Log) *Compilation {
	return &Compilation{State: NewGlobalState(), Log: log}
}

// Run records every input, reports cross-script require problems once all
// of them are known, and — only if nothing reported an error — updates
// every script that recorded successfully. It returns one ScriptDescription
// per managed script (goog.module or goog.provide), in input order, with a
// nil entry for any input this pass didn't manage at all.
func (c *Compilation) Run(inputs []ScriptInput) []*ScriptDescription {
	var queue []UnrecognizedRequire
	descs := make([]*ScriptDescription, len(inputs))

	for i, in := range inputs {
		Unwrap(in.Root)
		rec := NewRecorder(c.State, c.Log, in.Source, &queue)
		if desc, ok := rec.RecordScript(in.Root); ok {
			descs[i] = desc
		}
	}

	ReportUnrecognizedRequires(queue, c.State, c.Log)
	if c.Log.HasErrors() {
		return descs
	}

	for i, in := range inputs {
		if descs[i] == nil {
			continue
		}
		NewUpdater(c.State, c.Log, in.Source).UpdateScript(descs[i])
	}
	return descs
}

// HotSwap re-records and re-updates a single script in place (spec.md §5):
// previousRoot's registrations are withdrawn from the Global Rewrite State
// first (by node identity), so an edited script that renamed or dropped a
// namespace doesn't leave its old entries behind, then in is recorded and
// updated fresh against the same long-lived state every other script in
// the compilation already contributed to. Pass a nil previousRoot the
// first time a script is compiled.
func (c *Compilation) HotSwap(in ScriptInput, previousRoot *ast.Node) *ScriptDescription {
	if previousRoot != nil {
		c.State.HotSwapRemove(previousRoot)
	}

	var queue []UnrecognizedRequire
	Unwrap(in.Root)
	rec := NewRecorder(c.State, c.Log, in.Source, &queue)
	desc, ok := rec.RecordScript(in.Root)

	// A hot-swap's queue is scoped to this one script: every other script's
	// requires were already validated (and, if fine, left alone) the last
	// time it ran through this same method.
	ReportUnrecognizedRequires(queue, c.State, c.Log)
	if !ok || c.Log.HasErrors() {
		return desc
	}

	NewUpdater(c.State, c.Log, in.Source).UpdateScript(desc)
	return desc
}
