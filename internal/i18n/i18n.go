// Package i18n — таблицы локализации и двухфазный поиск строки по ключу.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// DefaultLanguage — язык по умолчанию и язык fallback.
const DefaultLanguage = "English"

// Phase — фаза поиска.
type Phase int

const (
	// PhaseInitial — до выбора языка пользователем: всегда таблица по умолчанию.
	PhaseInitial Phase = iota
	// PhaseSelected — после выбора языка: выбранная таблица → по умолчанию → ключ.
	PhaseSelected
)

// Language — поддерживаемый язык интерфейса.
type Language struct {
	Name   string `json:"name"`
	Native string `json:"native"`
	Code   string `json:"code"`
}

// Languages — все языки интерфейса. Для части из них таблиц нет,
// и строки берутся из таблицы по умолчанию.
var Languages = []Language{
	{Name: "English", Native: "English", Code: "en"},
	{Name: "Hindi", Native: "हिन्दी", Code: "hi"},
	{Name: "Tamil", Native: "தமிழ்", Code: "ta"},
	{Name: "Telugu", Native: "తెలుగు", Code: "te"},
	{Name: "Kannada", Native: "ಕನ್ನಡ", Code: "kn"},
	{Name: "Malayalam", Native: "മലയാളം", Code: "ml"},
	{Name: "Bengali", Native: "বাংলা", Code: "bn"},
	{Name: "Gujarati", Native: "ગુજરાતી", Code: "gu"},
	{Name: "Marathi", Native: "मराठी", Code: "mr"},
	{Name: "Urdu", Native: "اردو", Code: "ur"},
}

type localeFile struct {
	Language string            `yaml:"language"`
	Strings  map[string]string `yaml:"strings"`
}

// Catalog — неизменяемый набор таблиц, по одной на язык.
type Catalog struct {
	tables map[string]map[string]string
}

// NewCatalog создаёт каталог из готовых таблиц (ключ внешней карты — имя языка).
func NewCatalog(tables map[string]map[string]string) *Catalog {
	return &Catalog{tables: tables}
}

// LoadFS читает все *.yaml из каталога dir.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	tables := make(map[string]map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var lf localeFile
		if err := yaml.Unmarshal(data, &lf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		if !IsKnown(lf.Language) {
			return nil, fmt.Errorf("%s: unknown language '%s'", e.Name(), lf.Language)
		}
		tables[lf.Language] = lf.Strings
	}

	if _, ok := tables[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("default locale %s is missing", DefaultLanguage)
	}
	return NewCatalog(tables), nil
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return LoadFS(localesFS, "locales")
})

// Default возвращает встроенный каталог.
func Default() (*Catalog, error) {
	return loadDefault()
}

// Translate ищет строку по ключу.
//
// PhaseInitial: таблица по умолчанию → fallback → ключ.
// PhaseSelected: таблица locale → таблица по умолчанию → fallback → ключ.
func (c *Catalog) Translate(phase Phase, key, locale string, fallback ...string) string {
	if phase == PhaseSelected {
		if s := c.tables[Normalize(locale)][key]; s != "" {
			return s
		}
	}
	if s := c.tables[DefaultLanguage][key]; s != "" {
		return s
	}
	if len(fallback) > 0 && fallback[0] != "" {
		return fallback[0]
	}
	return key
}

// Has сообщает, есть ли ключ в таблице по умолчанию.
func (c *Catalog) Has(key string) bool {
	_, ok := c.tables[DefaultLanguage][key]
	return ok
}

// Translate — то же, что Catalog.Translate для встроенного каталога.
// Если встроенный каталог не загрузился, возвращает fallback или ключ.
func Translate(phase Phase, key, locale string, fallback ...string) string {
	c, err := Default()
	if err != nil {
		return NewCatalog(nil).Translate(phase, key, locale, fallback...)
	}
	return c.Translate(phase, key, locale, fallback...)
}

// IsKnown сообщает, поддерживается ли язык.
func IsKnown(language string) bool {
	for _, l := range Languages {
		if l.Name == language {
			return true
		}
	}
	return false
}

// Normalize возвращает язык или DefaultLanguage, если язык неизвестен.
func Normalize(language string) string {
	if IsKnown(language) {
		return language
	}
	return DefaultLanguage
}
