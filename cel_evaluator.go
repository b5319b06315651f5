package props

import (
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	functions "github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
// Helpers are reachable through call("name", args...).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry != nil {
			e.registry = registry.Clone()
		}
	}
}

// celReserved lists words CEL refuses as identifiers.
var celReserved = map[string]struct{}{
	"as": {}, "break": {}, "const": {}, "continue": {}, "else": {}, "false": {},
	"for": {}, "function": {}, "if": {}, "import": {}, "in": {}, "let": {},
	"loop": {}, "namespace": {}, "null": {}, "package": {}, "return": {},
	"true": {}, "var": {}, "void": {}, "while": {},
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

// celEvaluator type checks against the variables present in the property
// view, so compiled programs are cached per expression and variable set.
type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Engine() string { return "cel" }

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	ctx = ctx.withDefaults()
	activation := e.activation(ctx)
	program, err := e.loadOrCompile(expression, activation)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.scopeLabel(), err)
	}
	out, _, err := program.program.Eval(activation)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.scopeLabel(), err)
	}
	return out.Value(), nil
}

// Compile defers type checking to the first evaluation because the variable
// set depends on the property view.
func (e *celEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	return &celCompiledRule{evaluator: e, expression: expression}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, activation map[string]any) (*celProgram, error) {
	variables := make([]string, 0, len(activation))
	for name := range activation {
		variables = append(variables, name)
	}
	sort.Strings(variables)
	cacheKey := "cel:" + e.registry.Fingerprint() + "\x00" + expression + "\x00" + strings.Join(variables, ",")

	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(variables)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	bundle := &celProgram{env: env, program: prg}
	if e.cache != nil {
		e.cache.Set(cacheKey, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(variables []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{}
	for _, name := range variables {
		switch name {
		case "now":
			opts = append(opts, celgo.Variable(name, celgo.TimestampType))
		case "scope":
			opts = append(opts, celgo.Variable(name, celgo.StringType))
		case "props":
			opts = append(opts, celgo.Variable(name, celgo.MapType(celgo.StringType, celgo.StringType)))
		default:
			opts = append(opts, celgo.Variable(name, celgo.DynType))
		}
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call", celgo.Overload(
			"call_dyn",
			[]*celgo.Type{celgo.StringType, celgo.DynType},
			celgo.DynType,
			celgo.FunctionBinding(e.callBinding()),
		), celgo.Overload(
			"call_dyn_dyn",
			[]*celgo.Type{celgo.StringType, celgo.DynType, celgo.DynType},
			celgo.DynType,
			celgo.FunctionBinding(e.callBinding()),
		)))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx RuleContext) map[string]any {
	activation := map[string]any{}
	for key, value := range ctx.bindings() {
		if key == "call" || !celIdentifier(key) {
			continue
		}
		activation[key] = value
	}
	return activation
}

func celIdentifier(name string) bool {
	if name == "" {
		return false
	}
	if _, reserved := celReserved[name]; reserved {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func (e *celEvaluator) callBinding() functions.FunctionOp {
	return func(values ...ref.Val) ref.Val {
		if len(values) == 0 {
			return types.NewErr("props: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("props: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	return r.evaluator.Evaluate(ctx, r.expression)
}
