// Загрузка и Рендер - чтение файла и text/template.

package prompt

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/llm"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

// Load загружает и парсит YAML файл промпта
func Load(path string) (*PromptFile, error) {
	// 1. Проверяем наличие
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("prompt file not found: %s", path)
	}

	// 2. Читаем байты
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	return Parse(data)
}

// LoadFS загружает промпт из fs.FS (например, embed.FS).
func LoadFS(fsys fs.FS, path string) (*PromptFile, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read prompt %s: %w", path, err)
	}
	pf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("prompt %s: %w", path, err)
	}
	return pf, nil
}

// Parse парсит YAML и проверяет, что шаблоны компилируются.
func Parse(data []byte) (*PromptFile, error) {
	var pf PromptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}
	if err := pf.Validate(); err != nil {
		return nil, err
	}
	return &pf, nil
}

// Validate проверяет роли и синтаксис шаблонов без рендера.
func (pf *PromptFile) Validate() error {
	if len(pf.Messages) == 0 {
		return fmt.Errorf("prompt has no messages")
	}
	stub := template.FuncMap{"media": func(string) (string, error) { return "", nil }}
	for i, msg := range pf.Messages {
		if _, err := toRole(msg.Role); err != nil {
			return fmt.Errorf("message #%d: %w", i, err)
		}
		if _, err := template.New("msg").Funcs(stub).Parse(msg.Content); err != nil {
			return fmt.Errorf("template parse error in message #%d (%s): %w", i, msg.Role, err)
		}
	}
	return nil
}

// Render подставляет данные во все сообщения и возвращает llm сообщения.
//
// Отсутствующий ключ в data — ошибка. {{media .x}} проверяет data URI,
// при необходимости уменьшает картинку и прикрепляет её к текущему сообщению;
// в тексте плейсхолдер исчезает.
func (pf *PromptFile) Render(data any, opts RenderOptions) ([]llm.Message, error) {
	rendered := make([]llm.Message, 0, len(pf.Messages))

	for i, msg := range pf.Messages {
		role, err := toRole(msg.Role)
		if err != nil {
			return nil, fmt.Errorf("message #%d: %w", i, err)
		}

		var images []string
		funcs := template.FuncMap{
			"media": func(uri string) (string, error) {
				img, err := attachImage(uri, opts)
				if err != nil {
					return "", err
				}
				images = append(images, img)
				return "", nil
			},
		}

		// Создаем шаблон
		tmpl, err := template.New("msg").Funcs(funcs).Option("missingkey=error").Parse(msg.Content)
		if err != nil {
			return nil, fmt.Errorf("template parse error in message #%d (%s): %w", i, msg.Role, err)
		}

		// Рендерим в буфер
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("template execute error in message #%d: %w", i, err)
		}

		rendered = append(rendered, llm.Message{
			Role:    role,
			Content: strings.TrimSpace(buf.String()),
			Images:  images,
		})
	}

	return rendered, nil
}

// GenerateOptions переводит config промпта в llm опции (нулевые поля пропускаются).
func (c PromptConfig) GenerateOptions() []llm.GenerateOption {
	var opts []llm.GenerateOption
	if c.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(c.Temperature))
	}
	if c.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(c.MaxTokens))
	}
	if c.Format != "" {
		opts = append(opts, llm.WithFormat(c.Format))
	}
	return opts
}

func attachImage(uri string, opts RenderOptions) (string, error) {
	if _, _, err := utils.ParseDataURI(uri); err != nil {
		return "", err
	}
	if opts.ImageMaxWidth <= 0 {
		return uri, nil
	}
	quality := opts.ImageQuality
	if quality <= 0 {
		quality = 85
	}
	return utils.DownscaleDataURI(uri, opts.ImageMaxWidth, quality)
}

func toRole(role string) (llm.Role, error) {
	switch llm.Role(role) {
	case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant:
		return llm.Role(role), nil
	default:
		return "", fmt.Errorf("unsupported role '%s'", role)
	}
}
