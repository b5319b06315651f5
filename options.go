package props

import (
	"github.com/goliatone/go-props/pkg/activity"
	"github.com/goliatone/go-props/pkg/resource"
)

// Option configures a Table.
type Option func(*tableConfig)

type tableConfig struct {
	classpath     *resource.Classpath
	clock         TimeSource
	loadLogger    LoadLogger
	evaluator     Evaluator
	engine        string
	programCache  ProgramCache
	functions     *FunctionRegistry
	evalLogger    EvaluatorLogger
	activityHooks activity.Hooks
	channel       string
}

func applyOptions(opts []Option) tableConfig {
	cfg := tableConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.clock == nil {
		cfg.clock = systemClock{}
	}
	if cfg.loadLogger == nil {
		cfg.loadLogger = noopLoadLogger{}
	}
	if cfg.evalLogger == nil {
		cfg.evalLogger = noopEvaluatorLogger{}
	}
	if cfg.functions == nil {
		cfg.functions = NewFunctionRegistry()
	}
	registerBuiltins(cfg.functions)
	return cfg
}

// WithClasspath sets the classpath property files are resolved against.
// Without it the table parses PROPS_CLASSPATH on first load.
func WithClasspath(cp *resource.Classpath) Option {
	return func(cfg *tableConfig) {
		cfg.classpath = cp
	}
}

// WithTimeSource sets the initial clock.
func WithTimeSource(source TimeSource) Option {
	return func(cfg *tableConfig) {
		cfg.clock = source
	}
}

// WithLoadLogger attaches a logger for property file loads.
func WithLoadLogger(logger LoadLogger) Option {
	return func(cfg *tableConfig) {
		cfg.loadLogger = logger
	}
}

// WithEvaluator replaces the default expr evaluator.
func WithEvaluator(evaluator Evaluator) Option {
	return func(cfg *tableConfig) {
		cfg.evaluator = evaluator
	}
}

// WithEngine selects the engine built when no evaluator is set: "expr"
// (the default), "cel" or "js". The engine shares the table program cache
// and function registry.
func WithEngine(name string) Option {
	return func(cfg *tableConfig) {
		cfg.engine = name
	}
}

// WithProgramCache registers a cache for compiled expressions.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *tableConfig) {
		cfg.programCache = cache
	}
}

// WithEvaluatorLogger attaches an evaluator logger.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *tableConfig) {
		cfg.evalLogger = logger
	}
}

// WithActivityHooks notifies hooks after each property file load. Nil hooks
// are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *tableConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *tableConfig) {
		cfg.channel = channel
	}
}
