package props

import (
	"sync"
	"time"

	"github.com/goliatone/go-props/layering"
)

// RuleContext carries the inputs of an expression evaluation.
type RuleContext struct {
	// Props is the flat property view the expression sees.
	Props    map[string]string
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Scope labels the evaluation in logs and errors, e.g. "global".
	Scope string
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Props == nil {
		ctx.Props = map[string]string{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

func (ctx RuleContext) scopeLabel() string {
	if ctx.Scope != "" {
		return ctx.Scope
	}
	return "global"
}

// reservedBindings cannot be shadowed by property segments.
var reservedBindings = map[string]struct{}{
	"now":      {},
	"args":     {},
	"metadata": {},
	"props":    {},
	"scope":    {},
	"call":     {},
}

// bindings is the variable set shared by every engine: the fixed names plus
// each top level segment of the dotted property keys as a nested map.
func (ctx RuleContext) bindings() map[string]any {
	env := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
		"props":    ctx.Props,
		"scope":    ctx.scopeLabel(),
	}
	for key, value := range layering.Nest(ctx.Props) {
		if _, reserved := reservedBindings[key]; reserved || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type engineNamer interface {
	Engine() string
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(engineNamer); ok {
		return named.Engine()
	}
	return "custom"
}

// ProgramCache stores compiled expression programs keyed by expression
// strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryProgramCache is an unbounded, concurrency safe ProgramCache.
type MemoryProgramCache struct {
	programs sync.Map
}

// NewProgramCache returns an empty MemoryProgramCache.
func NewProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{}
}

func (c *MemoryProgramCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *MemoryProgramCache) Set(key string, value any) {
	c.programs.Store(key, value)
}
