// Package actions — операции, доступные клиенту: исполнение flow
// и подача заявки на государственную программу.
package actions

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/vijayasainandipati/Agri-Ai-2/internal/i18n"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/store"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/flow"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

// ObjectStore — хранилище загруженных документов.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// Recorder получает исходы подачи заявок (метрики).
type Recorder interface {
	ApplicationSubmitted(ctx context.Context, schemeID string, err error)
}

// Gateway — единая точка входа для HTTP и CLI.
type Gateway struct {
	executor *flow.Executor
	apps     store.ApplicationStore
	objects  ObjectStore
	tr       *i18n.Catalog
	recorder Recorder

	now   func() time.Time
	newID func() string
}

// Option настраивает Gateway.
type Option func(*Gateway)

// WithRecorder подключает метрики заявок.
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) { g.recorder = r }
}

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// NewGateway создаёт Gateway. objects может быть nil: тогда заявки
// с документом отклоняются как ошибка хранилища.
func NewGateway(executor *flow.Executor, apps store.ApplicationStore, objects ObjectStore, tr *i18n.Catalog, opts ...Option) *Gateway {
	g := &Gateway{
		executor: executor,
		apps:     apps,
		objects:  objects,
		tr:       tr,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Flows возвращает имена зарегистрированных flow.
func (g *Gateway) Flows() []string {
	return g.executor.Flows().Names()
}

// Execute проверяет raw по входной форме flow и исполняет его.
//
// Пустой или неизвестный язык заменяется на язык по умолчанию до проверки;
// отсутствующий ключ language остаётся ошибкой проверки.
// Ошибки: flow.ErrFlowNotFound, schema.ErrValidation,
// flow.ErrGenerationBackend, flow.ErrOutputValidation.
func (g *Gateway) Execute(ctx context.Context, flowName string, raw map[string]any) (schema.Record, error) {
	input := make(map[string]any, len(raw))
	for k, v := range raw {
		input[k] = v
	}
	if lang, ok := input["language"].(string); ok && !i18n.IsKnown(lang) {
		utils.Debug("Unknown language, using default", "language", lang, "flow", flowName)
		input["language"] = i18n.DefaultLanguage
	}

	res, err := g.executor.Execute(ctx, flowName, input)
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// Notice возвращает локализованный текст для ошибки flow.
func (g *Gateway) Notice(err error, language string) (title, description string) {
	title = g.tr.Translate(i18n.PhaseSelected, "toast.genericError.title", language)

	key := "toast.backendError.description"
	switch flow.Kind(err) {
	case "validation":
		key = "toast.validationError.description"
	case "output_validation":
		key = "toast.outputError.description"
	case "not_found":
		key = "toast.flowNotFound.description"
	}
	return title, g.tr.Translate(i18n.PhaseSelected, key, language)
}
