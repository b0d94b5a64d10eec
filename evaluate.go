package env

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("env: evaluator not configured")

// Evaluate executes expr against the environment's current state snapshot and
// wraps the result. Object keys appear as top-level variables.
func (e *Environment) Evaluate(expr string) (Response[any], error) {
	return e.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith executes expr using ctx, falling back to the environment's
// snapshot when ctx.Snapshot is nil.
func (e *Environment) EvaluateWith(ctx RuleContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := e.resolveEvaluator()
	if err != nil {
		return Response[any]{}, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = e.Snapshot()
	}
	ctx = ctx.withDefaults()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError("", expr, ctx.objectLabel(), evalErr)
	e.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Object:   ctx.objectLabel(),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return Response[any]{}, evalErr
	}
	return Response[any]{Value: value}, nil
}

// EvaluateObject executes expr scoped to a single object's record view. The
// object's property names appear as top-level variables.
func (e *Environment) EvaluateObject(key, expr string) (Response[any], error) {
	obj, err := e.Object(key)
	if err != nil {
		return Response[any]{}, err
	}
	ctx := RuleContext{
		Snapshot: obj.Snapshot(),
		Object:   key,
	}
	return e.EvaluateWith(ctx, expr)
}

func (e *Environment) resolveEvaluator() (Evaluator, error) {
	evaluator := e.evaluator()
	if evaluator != nil {
		return evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := e.programCache(); cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := e.functionRegistry(); registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	e.withEvaluator(defaultEvaluator)
	return defaultEvaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*env.exprEvaluator":
		return "expr"
	case "*env.celEvaluator":
		return "cel"
	case "*env.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
