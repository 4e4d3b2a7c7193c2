// Package config loads per-invocation options for the rewrite pass: which
// normally-enabled diagnostics are demoted to warnings or disabled outright,
// and whether hot-swap mode is active. Values come from an optional YAML
// file read by viper, overridden by pflag-backed CLI flags, mirroring the
// precedence order the retrieved pack's own viper-backed config loader uses.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/closuretools/modrewrite/internal/logger"
)

// Options is the resolved configuration for one invocation of the pass.
type Options struct {
	// DisabledDiagnostics lists MsgID stable keys (e.g.
	// "JSC_USELESS_USE_STRICT_DIRECTIVE") that should never be added to the
	// log at all.
	DisabledDiagnostics []string

	// WarningOnly lists stable keys that are normally errors but should be
	// downgraded to warnings for this invocation.
	WarningOnly []string

	// HotSwap activates watch/recompile-single-script mode in the CLI.
	HotSwap bool
}

var nameToID = buildNameToID()

func buildNameToID() map[string]logger.MsgID {
	m := make(map[string]logger.MsgID)
	for _, id := range []logger.MsgID{
		logger.MsgID_Rewriter_InvalidModuleNamespace,
		logger.MsgID_Rewriter_InvalidProvideNamespace,
		logger.MsgID_Rewriter_InvalidRequireNamespace,
		logger.MsgID_Rewriter_InvalidForwardDeclareNamespace,
		logger.MsgID_Rewriter_InvalidGetNamespace,
		logger.MsgID_Rewriter_InvalidProvideCall,
		logger.MsgID_Rewriter_InvalidGetCallScope,
		logger.MsgID_Rewriter_InvalidGetAlias,
		logger.MsgID_Rewriter_InvalidExportComputedProperty,
		logger.MsgID_Rewriter_UselessUseStrictDirective,
		logger.MsgID_Rewriter_DuplicateModule,
		logger.MsgID_Rewriter_DuplicateNamespace,
		logger.MsgID_Rewriter_MissingModuleOrProvide,
		logger.MsgID_Rewriter_LateProvideError,
		logger.MsgID_Rewriter_ImportInliningShadowsVar,
		logger.MsgID_Rewriter_QualifiedReferenceToGoogModule,
		logger.MsgID_Rewriter_IllegalDestructuringDefaultExport,
		logger.MsgID_Rewriter_IllegalDestructuringNotExported,
	} {
		m[logger.StableKey(id)] = id
	}
	return m
}

// Default mirrors spec.md §6's fixed severities: every diagnostic is an
// error except USELESS_USE_STRICT_DIRECTIVE, which is a disabled-by-default
// warning.
func Default() Options {
	return Options{
		DisabledDiagnostics: []string{logger.StableKey(logger.MsgID_Rewriter_UselessUseStrictDirective)},
	}
}

// BindFlags registers the flags Load reads back via viper, so cobra can
// print them in --help and the caller doesn't need to know their names.
func BindFlags(flags *pflag.FlagSet) {
	flags.StringSlice("disable", nil, "diagnostic keys (JSC_...) to suppress entirely")
	flags.StringSlice("warn-only", nil, "diagnostic keys (JSC_...) to downgrade from error to warning")
	flags.Bool("hot-swap", false, "treat the input batch as a single-script hot-swap recompile")
}

// Load resolves Options from an optional YAML config file and the flags
// BindFlags registered, with flag values taking precedence over the file,
// and the file's values taking precedence over Default().
func Load(configPath string, flags *pflag.FlagSet) (Options, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	opts := Default()
	v.SetDefault("disable", opts.DisabledDiagnostics)
	v.SetDefault("warn-only", opts.WarningOnly)
	v.SetDefault("hot-swap", opts.HotSwap)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Options{}, fmt.Errorf("binding flags: %w", err)
		}
	}

	return Options{
		DisabledDiagnostics: v.GetStringSlice("disable"),
		WarningOnly:         v.GetStringSlice("warn-only"),
		HotSwap:             v.GetBool("hot-swap"),
	}, nil
}

// Filter wraps sink so that a disabled diagnostic is dropped and a
// warn-only diagnostic is demoted to MsgKind Warning before reaching it.
// Any key listed in WarningOnly is demoted, with no exemption: listing
// something like MISSING_MODULE_OR_PROVIDE turns that error into a warning
// too.
func (o Options) Filter(sink logger.Log) logger.Log {
	disabled := toSet(o.DisabledDiagnostics)
	warnOnly := toSet(o.WarningOnly)

	return logger.Log{
		AddMsg: func(msg logger.Msg) {
			key := logger.StableKey(msg.ID)
			if disabled[key] {
				return
			}
			if warnOnly[key] && msg.Kind == logger.Error {
				msg.Kind = logger.Warning
			}
			sink.AddMsg(msg)
		},
		HasErrors: sink.HasErrors,
		Done:      sink.Done,
	}
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[strings.TrimSpace(k)] = true
	}
	return set
}
