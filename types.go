package env

import (
	"time"

	"github.com/goliatone/go-environment/pkg/activity"
)

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

const (
	// SchemaFormatDescriptors represents the flattened field descriptors.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatOpenAPI represents OpenAPI-compatible JSON Schema documents.
	SchemaFormatOpenAPI SchemaFormat = "openapi"
)

// SchemaDocument encapsulates a generated schema output alongside its format
// identifier. Implementations must ensure Document is JSON-serialisable.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// SchemaGenerator transforms a state value into a schema document. All
// implementations MUST be safe for concurrent use and handle nil inputs by
// returning an empty schema document.
type SchemaGenerator interface {
	Generate(value any) (SchemaDocument, error)
}

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}

// RuleContext carries inputs needed when evaluating an expression against
// environment state. Snapshot holds the nested state the expression sees;
// Object optionally names the object the evaluation is scoped to.
type RuleContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Object   string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) objectLabel() string {
	if ctx.Object != "" {
		return ctx.Object
	}
	return "environment"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures an Environment at construction time.
type Option func(*envConfig)

type envConfig struct {
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	logger          EvaluatorLogger
	schemaGenerator SchemaGenerator
	activityHooks   activity.Hooks
	historyLength   int
	defaultType     string
}

func applyOptions(opts []Option) envConfig {
	cfg := envConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator configures the expression evaluator used by Evaluate.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *envConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a compiled-program cache for evaluators.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *envConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry exposes custom functions to expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *envConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithSchemaGenerator configures a custom schema generator implementation.
func WithSchemaGenerator(generator SchemaGenerator) Option {
	return func(cfg *envConfig) {
		cfg.schemaGenerator = generator
	}
}

// WithHistoryLength sets the capacity of the lazily-built history buffer.
func WithHistoryLength(length int) Option {
	return func(cfg *envConfig) {
		cfg.historyLength = length
	}
}

// WithDefaultType overrides the default object type tag. When unset the first
// registered type is the default.
func WithDefaultType(tag string) Option {
	return func(cfg *envConfig) {
		cfg.defaultType = tag
	}
}

func (e *Environment) evaluator() Evaluator {
	return e.cfg.evaluator
}

func (e *Environment) withEvaluator(ev Evaluator) {
	e.cfg.evaluator = ev
}

func (e *Environment) programCache() ProgramCache {
	return e.cfg.programCache
}

func (e *Environment) functionRegistry() *FunctionRegistry {
	return e.cfg.functions
}

func (e *Environment) evaluatorLogger() EvaluatorLogger {
	if e.cfg.logger != nil {
		return e.cfg.logger
	}
	return noopEvaluatorLogger{}
}

func (e *Environment) schemaGenerator() SchemaGenerator {
	if e == nil {
		return DefaultSchemaGenerator()
	}
	if e.cfg.schemaGenerator != nil {
		return e.cfg.schemaGenerator
	}
	return DefaultSchemaGenerator()
}
