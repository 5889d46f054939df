// Package catalog — справочник культур и государственных программ.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/vijayasainandipati/Agri-Ai-2/internal/i18n"
)

// ErrCropNotFound возвращается для неизвестного ключа культуры.
var ErrCropNotFound = errors.New("crop not found")

// CropView — культура с локализованными текстами.
type CropView struct {
	Crop
	Name        string `json:"name"`
	Description string `json:"description"`
	HowToGrow   string `json:"howToGrow"`
}

// SchemeView — программа с локализованными текстами.
type SchemeView struct {
	Scheme
	Name        string `json:"name"`
	Eligibility string `json:"eligibility"`
	Benefits    string `json:"benefits"`
}

// SchemeFilter — фильтр списка программ. Пустое поле или "All" — без ограничения.
type SchemeFilter struct {
	Search   string `form:"search"`
	State    string `form:"state"`
	Category string `form:"category"`
	Type     string `form:"type"`
	Language string `form:"language"`
}

// cropDoc — документ полнотекстового индекса (английские тексты).
type cropDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HowToGrow   string `json:"howToGrow"`
	Category    string `json:"category"`
	Hint        string `json:"hint"`
}

// Catalog — неизменяемый справочник с in-memory поисковым индексом.
type Catalog struct {
	tr     *i18n.Catalog
	index  bleve.Index
	byKey  map[string]Crop
	byName map[string]Crop
}

// New строит справочник и индексирует культуры.
func New(tr *i18n.Catalog) (*Catalog, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create crop index: %w", err)
	}

	c := &Catalog{
		tr:     tr,
		index:  index,
		byKey:  make(map[string]Crop, len(crops)),
		byName: make(map[string]Crop, len(crops)),
	}

	batch := index.NewBatch()
	for _, crop := range crops {
		c.byKey[crop.Key] = crop
		name := tr.Translate(i18n.PhaseInitial, "crop."+crop.Key+".name", i18n.DefaultLanguage)
		c.byName[strings.ToLower(name)] = crop

		doc := cropDoc{
			Name:        name,
			Description: tr.Translate(i18n.PhaseInitial, "crop."+crop.Key+".description", i18n.DefaultLanguage),
			HowToGrow:   tr.Translate(i18n.PhaseInitial, "crop."+crop.Key+".howToGrow", i18n.DefaultLanguage),
			Category:    crop.Category,
			Hint:        crop.ImageHint,
		}
		if err := batch.Index(crop.Key, doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("index crop %s: %w", crop.Key, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("index crops: %w", err)
	}

	return c, nil
}

// Close освобождает индекс.
func (c *Catalog) Close() error {
	return c.index.Close()
}

// Categories возвращает категории культур.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Crops возвращает культуры (опционально одной категории) на языке lang.
func (c *Catalog) Crops(lang, category string) []CropView {
	out := make([]CropView, 0, len(crops))
	for _, crop := range crops {
		if category != "" && category != All && crop.Category != category {
			continue
		}
		out = append(out, c.view(crop, lang))
	}
	return out
}

// Crop возвращает культуру по ключу.
func (c *Catalog) Crop(key, lang string) (CropView, error) {
	crop, ok := c.byKey[key]
	if !ok {
		return CropView{}, fmt.Errorf("%w: %s", ErrCropNotFound, key)
	}
	return c.view(crop, lang), nil
}

// LookupByName находит культуру по английскому имени (без учёта регистра).
// Используется для связи ответа модели (cropName) со справочником.
func (c *Catalog) LookupByName(name string) (Crop, bool) {
	crop, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return crop, ok
}

// SearchCrops ищет культуры по английским текстам.
func (c *Catalog) SearchCrops(ctx context.Context, query, lang string, limit int) ([]CropView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []CropView{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	match := bleve.NewMatchQuery(query)
	match.SetFuzziness(1)
	prefix := bleve.NewPrefixQuery(strings.ToLower(query))
	prefix.SetField("name")

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(match, prefix), limit, 0, false)
	res, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("crop search: %w", err)
	}

	out := make([]CropView, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if crop, ok := c.byKey[hit.ID]; ok {
			out = append(out, c.view(crop, lang))
		}
	}
	return out, nil
}

// Schemes возвращает программы, прошедшие фильтр.
//
// Поиск — подстрока в локализованном названии без учёта регистра.
// Программы со State == "All" проходят любой фильтр по штату.
func (c *Catalog) Schemes(f SchemeFilter) []SchemeView {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]SchemeView, 0, len(schemes))
	for _, s := range schemes {
		v := c.schemeView(s, f.Language)

		if search != "" && !strings.Contains(strings.ToLower(v.Name), search) {
			continue
		}
		if !matches(f.State, s.State) && s.State != All {
			continue
		}
		if !matches(f.Category, s.Category) || !matches(f.Type, s.Type) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Scheme возвращает программу по id.
func (c *Catalog) Scheme(id, lang string) (SchemeView, bool) {
	for _, s := range schemes {
		if s.ID == id {
			return c.schemeView(s, lang), true
		}
	}
	return SchemeView{}, false
}

// States возвращает "All" и отсортированный список штатов из программ.
func (c *Catalog) States() []string {
	seen := map[string]bool{}
	var states []string
	for _, s := range schemes {
		if s.State != All && !seen[s.State] {
			seen[s.State] = true
			states = append(states, s.State)
		}
	}
	sort.Strings(states)
	return append([]string{All}, states...)
}

func (c *Catalog) view(crop Crop, lang string) CropView {
	prefix := "crop." + crop.Key + "."
	return CropView{
		Crop:        crop,
		Name:        c.tr.Translate(i18n.PhaseSelected, prefix+"name", lang),
		Description: c.tr.Translate(i18n.PhaseSelected, prefix+"description", lang),
		HowToGrow:   c.tr.Translate(i18n.PhaseSelected, prefix+"howToGrow", lang),
	}
}

func (c *Catalog) schemeView(s Scheme, lang string) SchemeView {
	return SchemeView{
		Scheme:      s,
		Name:        c.tr.Translate(i18n.PhaseSelected, s.NameKey, lang),
		Eligibility: c.tr.Translate(i18n.PhaseSelected, s.EligibilityKey, lang),
		Benefits:    c.tr.Translate(i18n.PhaseSelected, s.BenefitsKey, lang),
	}
}

func matches(filter, value string) bool {
	return filter == "" || filter == All || filter == value
}
