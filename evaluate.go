package props

import (
	"fmt"
	"strings"
	"time"
)

// Engines lists the names accepted by NewEngine.
var Engines = []string{"expr", "cel", "js"}

// NewEngine builds the named evaluator with an optional cache and registry.
// The js engine returns ErrNoEvaluator unless built with the js_eval tag.
func NewEngine(name string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	var evaluator Evaluator
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "expr":
		evaluator = NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
	case "cel":
		evaluator = NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
	case "js", "javascript":
		evaluator = NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: %s engine unavailable in this build", ErrNoEvaluator, name)
	}
	return evaluator, nil
}

// Functions returns a copy of the helpers available to expressions.
func (t *Table) Functions() *FunctionRegistry {
	return t.cfg.functions.Clone()
}

// ProgramCache returns the configured program cache, which may be nil.
func (t *Table) ProgramCache() ProgramCache {
	return t.cfg.programCache
}

// Evaluate runs expr over the table values. The clock of the table provides
// now.
func (t *Table) Evaluate(expr string) (any, error) {
	return t.EvaluateWith(RuleContext{Props: t.Values()}, expr)
}

// EvaluateWith runs expr over ctx. Unset Now defaults to the table clock and
// unset Props to the table values.
func (t *Table) EvaluateWith(ctx RuleContext, expr string) (any, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, ErrEmptyExpression
	}
	evaluator, err := t.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	if ctx.Props == nil {
		ctx.Props = t.Values()
	}
	if ctx.Now == nil {
		now := t.CurrentDate()
		ctx.Now = &now
	}
	ctx = ctx.withDefaults()

	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	evalErr = wrapEvaluationError(engine, expr, ctx.scopeLabel(), evalErr)
	t.cfg.evalLogger.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Scope:    ctx.scopeLabel(),
		Duration: time.Since(start),
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

func (t *Table) resolveEvaluator() (Evaluator, error) {
	t.evalMu.Lock()
	defer t.evalMu.Unlock()
	if t.evaluator != nil {
		return t.evaluator, nil
	}
	evaluator, err := NewEngine(t.cfg.engine, t.cfg.programCache, t.cfg.functions)
	if err != nil {
		return nil, err
	}
	t.evaluator = evaluator
	return evaluator, nil
}
