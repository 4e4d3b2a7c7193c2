package rewrite

import (
	"fmt"

	"github.com/closuretools/modrewrite/internal/ast"
	"github.com/closuretools/modrewrite/internal/logger"
)

// UnrecognizedRequire is queued by the Recorder whenever a module requires
// a namespace that isn't (yet) known to be provided, and drained by the
// Unrecognized-require reporter (spec.md §4.4) after recording the whole
// compilation completes.
type UnrecognizedRequire struct {
	Stmt          *ast.Node
	Source        *logger.Source
	Namespace     string
	MustBeOrdered bool // true for goog.require, false for goog.forwardDeclare
}

// ReportUnrecognizedRequires drains queue against state, emitting
// MISSING_MODULE_OR_PROVIDE for namespaces nobody declares and
// LATE_PROVIDE_ERROR for namespaces that exist but weren't ordered before
// this require. It does not modify queue: each Run or HotSwap call builds
// its own queue and drops it afterwards, so a hot-swap recompile only
// reports problems found while recording its own script.
func ReportUnrecognizedRequires(queue []UnrecognizedRequire, state *GlobalState, log logger.Log) {
	for _, req := range queue {
		if !state.IsKnown(req.Namespace) {
			log.AddRangeErrorWithID(req.Source, statementRange(req.Stmt), logger.MsgID_Rewriter_MissingModuleOrProvide,
				fmt.Sprintf("Required namespace %q never provided", req.Namespace))
			req.Stmt.Detach()
			continue
		}
		if req.MustBeOrdered {
			log.AddRangeErrorWithID(req.Source, statementRange(req.Stmt), logger.MsgID_Rewriter_LateProvideError,
				fmt.Sprintf("Required namespace %q not provided yet", req.Namespace))
		}
	}
}

func statementRange(n *ast.Node) logger.Range {
	return logger.Range{Loc: n.Loc}
}
