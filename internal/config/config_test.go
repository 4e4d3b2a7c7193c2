package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closuretools/modrewrite/internal/logger"
)

func TestLoadDefaultsDisableUselessUseStrict(t *testing.T) {
	opts, err := Load("", nil)
	require.NoError(t, err)
	assert.Contains(t, opts.DisabledDiagnostics, logger.StableKey(logger.MsgID_Rewriter_UselessUseStrictDirective))
	assert.False(t, opts.HotSwap)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hot-swap: true\nwarn-only: [JSC_DUPLICATE_NAMESPACE]\n"), 0o644))

	opts, err := Load(path, nil)
	require.NoError(t, err)
	assert.True(t, opts.HotSwap)
	assert.Equal(t, []string{"JSC_DUPLICATE_NAMESPACE"}, opts.WarningOnly)
}

func TestFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hot-swap: false\n"), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse([]string{"--hot-swap=true"}))

	opts, err := Load(path, flags)
	require.NoError(t, err)
	assert.True(t, opts.HotSwap)
}

func TestFilterDropsDisabledAndDemotesWarnOnly(t *testing.T) {
	log := logger.NewDeferLog()
	opts := Options{
		DisabledDiagnostics: []string{logger.StableKey(logger.MsgID_Rewriter_InvalidModuleNamespace)},
		WarningOnly:         []string{logger.StableKey(logger.MsgID_Rewriter_DuplicateNamespace)},
	}
	filtered := opts.Filter(log)

	filtered.AddErrorWithID(nil, logger.LocInvalid, logger.MsgID_Rewriter_InvalidModuleNamespace, "dropped")
	filtered.AddErrorWithID(nil, logger.LocInvalid, logger.MsgID_Rewriter_DuplicateNamespace, "demoted")

	msgs := filtered.Done()
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.Warning, msgs[0].Kind)
	assert.False(t, filtered.HasErrors())
}
