package flow

import (
	"fmt"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/prompt"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
)

// PostValidator — дополнительная проверка уже валидного по форме результата.
type PostValidator func(out schema.Record) error

// Definition — один flow: формы входа/выхода, промпт и доступные инструменты.
// После регистрации не изменяется.
type Definition struct {
	Name   string
	Input  *schema.Shape
	Output *schema.Shape
	Prompt *prompt.PromptFile

	// Tools — имена инструментов из tools.Registry, доступных модели.
	Tools []string

	// Model — алиас модели; пусто = дефолт (vision или chat).
	Model  string
	Vision bool

	PostValidate PostValidator
}

func (d *Definition) validate() error {
	switch {
	case d == nil:
		return fmt.Errorf("flow definition is nil")
	case d.Name == "":
		return fmt.Errorf("flow name cannot be empty")
	case d.Input == nil || d.Output == nil:
		return fmt.Errorf("flow '%s': input and output shapes are required", d.Name)
	case d.Prompt == nil:
		return fmt.Errorf("flow '%s': prompt is required", d.Name)
	}
	return d.Prompt.Validate()
}

// Registry — таблица flow, заполняемая один раз при старте.
//
// После Seal доступна только на чтение, поэтому блокировки не нужны:
// Register вызывается только из init-рутины до старта обработки запросов.
type Registry struct {
	flows  map[string]*Definition
	order  []string
	sealed bool
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]*Definition)}
}

// Register добавляет flow. Ошибка если реестр запечатан, имя занято
// или определение неполное.
func (r *Registry) Register(def *Definition) error {
	if r.sealed {
		return ErrRegistrySealed
	}
	if err := def.validate(); err != nil {
		return err
	}
	if _, exists := r.flows[def.Name]; exists {
		return fmt.Errorf("flow '%s' already registered", def.Name)
	}

	r.flows[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Seal запрещает дальнейшую регистрацию.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed сообщает, запечатан ли реестр.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Get возвращает определение flow или ErrFlowNotFound.
func (r *Registry) Get(name string) (*Definition, error) {
	def, ok := r.flows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, name)
	}
	return def, nil
}

// Names возвращает имена flow в порядке регистрации.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
