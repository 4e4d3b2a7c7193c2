package logger_test

import (
	"testing"

	"github.com/closuretools/modrewrite/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestStableKeysCoverEveryMsgID(t *testing.T) {
	for id := logger.MsgID_Rewriter_InvalidModuleNamespace; id <= logger.MsgID_Rewriter_IllegalDestructuringNotExported; id++ {
		key := logger.StableKey(id)
		assert.NotEmpty(t, key, "MsgID %d has no stable JSC_* key", id)
		assert.Contains(t, key, "JSC_")
	}
	assert.Empty(t, logger.StableKey(logger.MsgID_None))
}

func TestUselessUseStrictIsTheOnlyDefaultWarning(t *testing.T) {
	for id := logger.MsgID_Rewriter_InvalidModuleNamespace; id <= logger.MsgID_Rewriter_IllegalDestructuringNotExported; id++ {
		if id == logger.MsgID_Rewriter_UselessUseStrictDirective {
			assert.True(t, logger.IsWarningByDefault(id))
		} else {
			assert.False(t, logger.IsWarningByDefault(id))
		}
	}
}

func TestDeferLogCollectsAndSorts(t *testing.T) {
	log := logger.NewDeferLog()
	src := &logger.Source{PrettyPath: "b.js", Contents: "x\ny\nz"}
	log.AddErrorWithID(src, logger.Loc{Start: 4}, logger.MsgID_Rewriter_DuplicateModule, "second")
	log.AddErrorWithID(src, logger.Loc{Start: 0}, logger.MsgID_Rewriter_DuplicateModule, "first")

	assert.True(t, log.HasErrors())
	msgs := log.Done()
	if assert.Len(t, msgs, 2) {
		assert.Equal(t, "first", msgs[0].Data.Text)
		assert.Equal(t, "second", msgs[1].Data.Text)
		assert.Equal(t, 1, msgs[0].Data.Location.Line)
		assert.Equal(t, 3, msgs[1].Data.Location.Line)
	}
}

func TestMsgStringIncludesLocation(t *testing.T) {
	src := &logger.Source{PrettyPath: "a.js", Contents: "goog.require('x');"}
	msg := logger.Msg{
		ID:   logger.MsgID_Rewriter_MissingModuleOrProvide,
		Kind: logger.Error,
		Data: logger.RangeData(src, logger.Range{Loc: logger.Loc{Start: 5}}, "Missing provide: 'x'"),
	}
	assert.Contains(t, msg.String(), "a.js:1:5: error: Missing provide: 'x'")
}
