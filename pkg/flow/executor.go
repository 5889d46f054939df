package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/models"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/prompt"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/tools"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

var tracer = otel.Tracer("agriai-flow")

// State — состояние исполнения flow.
type State string

const (
	StateIdle          State = "idle"
	StateRendering     State = "rendering"
	StateAwaitingModel State = "awaiting_model"
	StateToolLoop      State = "tool_loop"
	StateParsingOutput State = "parsing_output"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// Дефолты исполнения.
const (
	DefaultMaxToolIterations = 5
	DefaultGenerationTimeout = 60 * time.Second
)

// Observer получает события исполнения (метрики).
type Observer interface {
	FlowFinished(ctx context.Context, flow string, duration time.Duration, err error)
	ToolInvoked(ctx context.Context, flow, tool string, err error)
}

type noopObserver struct{}

func (noopObserver) FlowFinished(context.Context, string, time.Duration, error) {}
func (noopObserver) ToolInvoked(context.Context, string, string, error)         {}

// ExecutorConfig — параметры Executor.
type ExecutorConfig struct {
	MaxToolIterations int
	GenerationTimeout time.Duration

	// DefaultModel используется для всех flow без явной модели,
	// VisionModel — для flow с Vision=true.
	DefaultModel string
	VisionModel  string

	Render prompt.RenderOptions
}

// Result — результат успешного исполнения.
type Result struct {
	Flow       string
	Output     schema.Record
	Model      string
	ToolRounds int
	Trace      []State
}

// Executor исполняет flow: рендер → модель ↔ инструменты → разбор ответа.
//
// Не хранит состояния между вызовами и безопасен для конкурентного использования.
type Executor struct {
	flows    *Registry
	models   *models.Registry
	tools    *tools.Registry
	cfg      ExecutorConfig
	observer Observer
}

// NewExecutor создаёт Executor. tools может быть nil, если flow без инструментов.
func NewExecutor(flows *Registry, modelRegistry *models.Registry, toolRegistry *tools.Registry, cfg ExecutorConfig) *Executor {
	if cfg.MaxToolIterations <= 0 {
		cfg.MaxToolIterations = DefaultMaxToolIterations
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = DefaultGenerationTimeout
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.DefaultModel
	}
	if toolRegistry == nil {
		toolRegistry = tools.NewRegistry()
	}
	return &Executor{
		flows:    flows,
		models:   modelRegistry,
		tools:    toolRegistry,
		cfg:      cfg,
		observer: noopObserver{},
	}
}

// SetObserver подключает наблюдателя (метрики).
func (e *Executor) SetObserver(o Observer) {
	if o != nil {
		e.observer = o
	}
}

// Flows возвращает реестр flow.
func (e *Executor) Flows() *Registry {
	return e.flows
}

// Execute проверяет raw по InputShape и исполняет flow.
//
// Ошибки: ErrFlowNotFound, *schema.ValidationError, *GenerationBackendError,
// *OutputValidationError. ToolExecutionError наружу не выходит.
func (e *Executor) Execute(ctx context.Context, name string, raw map[string]any) (*Result, error) {
	def, err := e.flows.Get(name)
	if err != nil {
		return nil, err
	}

	input, err := def.Input.Validate(raw)
	if err != nil {
		return nil, err
	}

	return e.Run(ctx, def, input)
}

// Run исполняет flow над уже проверенным входом.
func (e *Executor) Run(ctx context.Context, def *Definition, input schema.Record) (*Result, error) {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "flow.execute", trace.WithAttributes(attribute.String("flow.name", def.Name)))
	defer span.End()

	exec := &execution{
		def:   def,
		span:  span,
		state: StateIdle,
		trace: []State{StateIdle},
	}

	result, err := e.run(ctx, exec, input)
	if err != nil {
		exec.transition(StateFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, Kind(err))
		utils.Warn("Flow failed",
			"flow", def.Name,
			"kind", Kind(err),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
	} else {
		exec.transition(StateDone)
		result.Trace = exec.trace
		utils.Info("Flow completed",
			"flow", def.Name,
			"model", result.Model,
			"tool_rounds", result.ToolRounds,
			"duration_ms", time.Since(start).Milliseconds())
	}

	e.observer.FlowFinished(ctx, def.Name, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Executor) run(ctx context.Context, exec *execution, input schema.Record) (*Result, error) {
	def := exec.def

	// 1. Rendering
	exec.transition(StateRendering)
	history, err := def.Prompt.Render(map[string]any(input), e.cfg.Render)
	if err != nil {
		// Рендер падает только на содержимом входа (например, битая картинка)
		return nil, &schema.ValidationError{
			Shape:  def.Input.Name,
			Fields: []schema.FieldError{{Field: "$", Reason: err.Error()}},
		}
	}
	history = withOutputSchema(history, def.Output)

	// 2. Выбор модели
	fallback := e.cfg.DefaultModel
	if def.Vision {
		fallback = e.cfg.VisionModel
	}
	provider, _, modelName, err := e.models.GetWithFallback(def.Model, fallback)
	if err != nil {
		return nil, &GenerationBackendError{Flow: def.Name, Model: def.Model, Err: err}
	}
	exec.span.SetAttributes(attribute.String("flow.model", modelName))

	opts := make([]any, 0, 4)
	toolDefs := e.tools.GetDefinitions(def.Tools...)
	if len(def.Tools) > 0 && len(toolDefs) > 0 {
		opts = append(opts, toolDefs)
	}
	for _, o := range def.Prompt.Config.GenerateOptions() {
		opts = append(opts, o)
	}
	opts = append(opts, llm.WithFormat(llm.FormatJSON))

	// 3. AwaitingModel ↔ ToolLoop
	rounds := 0
	var reply llm.Message
	for {
		exec.transition(StateAwaitingModel)
		reply, err = e.generate(ctx, provider, history, opts)
		if err != nil {
			return nil, &GenerationBackendError{Flow: def.Name, Model: modelName, Err: err}
		}

		if len(reply.ToolCalls) == 0 {
			break
		}
		if rounds >= e.cfg.MaxToolIterations {
			return nil, &GenerationBackendError{
				Flow:  def.Name,
				Model: modelName,
				Err:   fmt.Errorf("%w: %d rounds", ErrToolLoopLimit, rounds),
			}
		}

		exec.transition(StateToolLoop)
		rounds++
		history = append(history, reply)
		for _, call := range reply.ToolCalls {
			history = append(history, llm.ToolResult(call, e.invokeTool(ctx, def, call)))
		}
	}

	// 4. ParsingOutput
	exec.transition(StateParsingOutput)
	output, err := parseOutput(def, reply.Content)
	if err != nil {
		return nil, err
	}

	return &Result{
		Flow:       def.Name,
		Output:     output,
		Model:      modelName,
		ToolRounds: rounds,
	}, nil
}

// generate — единственная блокирующая точка, обёрнутая в generation_timeout.
func (e *Executor) generate(ctx context.Context, provider llm.Provider, history []llm.Message, opts []any) (llm.Message, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.GenerationTimeout)
	defer cancel()

	ctx, span := tracer.Start(callCtx, "flow.generate")
	defer span.End()

	reply, err := provider.Generate(ctx, history, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return llm.Message{}, fmt.Errorf("timeout after %v: %w", e.cfg.GenerationTimeout, err)
		}
		return llm.Message{}, err
	}
	return reply, nil
}

// invokeTool вызывает инструмент; любой отказ деградирует до результата по умолчанию.
func (e *Executor) invokeTool(ctx context.Context, def *Definition, call llm.ToolCall) string {
	var (
		out string
		err error
	)
	if slices.Contains(def.Tools, call.Name) {
		out, err = e.tools.Invoke(ctx, call.Name, call.Args)
	} else {
		err = &tools.ToolExecutionError{Tool: call.Name, Err: fmt.Errorf("tool not available in flow '%s'", def.Name)}
	}

	e.observer.ToolInvoked(ctx, def.Name, call.Name, err)
	if err != nil {
		utils.Warn("Tool failed, using default result",
			"flow", def.Name,
			"tool", call.Name,
			"error", err)
		return e.tools.DefaultResult(call.Name)
	}
	return out
}

// withOutputSchema добавляет системное сообщение с JSON Schema ответа
// сразу после ведущих системных сообщений промпта.
func withOutputSchema(history []llm.Message, output *schema.Shape) []llm.Message {
	schemaJSON, err := json.Marshal(output.JSONSchema())
	if err != nil {
		return history
	}
	instruction := llm.Message{
		Role:    llm.RoleSystem,
		Content: "Respond with a single JSON object that conforms to this JSON Schema:\n" + string(schemaJSON),
	}

	pos := 0
	for pos < len(history) && history[pos].Role == llm.RoleSystem {
		pos++
	}
	out := make([]llm.Message, 0, len(history)+1)
	out = append(out, history[:pos]...)
	out = append(out, instruction)
	out = append(out, history[pos:]...)
	return out
}

// execution — runtime состояние одного вызова, не разделяется между goroutines.
type execution struct {
	def   *Definition
	span  trace.Span
	state State
	trace []State
}

func (x *execution) transition(to State) {
	utils.Debug("Flow state transition", "flow", x.def.Name, "from", x.state, "to", to)
	x.span.AddEvent(string(to))
	x.state = to
	x.trace = append(x.trace, to)
}
