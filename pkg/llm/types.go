// Базовые типы - определяем универсальный язык общения с моделями
package llm

// Role — роль автора сообщения.
type Role string

// Константы для удобства
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall — запрос модели на вызов инструмента.
type ToolCall struct {
	ID   string // Идентификатор вызова, возвращается в ответном сообщении tool
	Name string // Имя инструмента
	Args string // Сырой JSON аргументов
}

// Message — одно сообщение в истории диалога.
type Message struct {
	Role    Role
	Content string

	// Images — base64 data URI или http ссылки (vision запросы).
	Images []string

	// ToolCalls заполняется в ответе ассистента, если модель решила вызвать функции.
	ToolCalls []ToolCall

	// ToolCallID и Name заполняются в сообщениях с ролью tool.
	ToolCallID string
	Name       string
}

// ToolResult формирует сообщение с результатом выполнения инструмента.
func ToolResult(call ToolCall, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: call.ID,
		Name:       call.Name,
	}
}
