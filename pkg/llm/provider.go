// Интерфейс Провайдера через который работает всё приложение.

package llm

import "context"

// Provider — контракт для любого AI-сервиса.
type Provider interface {
	// Generate принимает контекст и историю сообщений.
	// Возвращает ответ модели в унифицированном формате Message.
	//
	// opts — опциональные параметры: []tools.ToolDefinition для Function Calling
	// и/или GenerateOption для переопределения параметров генерации.
	Generate(ctx context.Context, messages []Message, opts ...any) (Message, error)
}

// ProviderFunc позволяет использовать обычную функцию как Provider.
type ProviderFunc func(ctx context.Context, messages []Message, opts ...any) (Message, error)

// Generate вызывает f.
func (f ProviderFunc) Generate(ctx context.Context, messages []Message, opts ...any) (Message, error) {
	return f(ctx, messages, opts...)
}
