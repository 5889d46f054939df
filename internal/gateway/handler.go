// Package gateway — HTTP поверхность сервиса (gin).
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vijayasainandipati/Agri-Ai-2/internal/actions"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/catalog"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/i18n"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/flow"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

// DefaultMaxUploadBytes — предел multipart тела по умолчанию.
const DefaultMaxUploadBytes = 10 << 20

// ReadinessCheck — зависимость, проверяемая в /ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler обрабатывает HTTP запросы.
type Handler struct {
	actions   *actions.Gateway
	catalog   *catalog.Catalog
	tr        *i18n.Catalog
	checks    []ReadinessCheck
	maxUpload int64
}

// NewHandler создаёт Handler.
func NewHandler(gw *actions.Gateway, cat *catalog.Catalog, tr *i18n.Catalog, maxUpload int64, checks ...ReadinessCheck) *Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Handler{
		actions:   gw,
		catalog:   cat,
		tr:        tr,
		checks:    checks,
		maxUpload: maxUpload,
	}
}

// ErrorBody — тело ответа с ошибкой flow.
type ErrorBody struct {
	Kind        string              `json:"kind"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Fields      []schema.FieldError `json:"fields,omitempty"`
}

// ExecuteFlow — POST /api/flows/:name (JSON или форма; файл photo → photoDataUri).
func (h *Handler) ExecuteFlow(c *gin.Context) {
	name := c.Param("name")

	raw, err := h.readFlowInput(c)
	if err != nil {
		utils.Warn("Failed to read flow input", "flow", name, "error", err)
		h.flowError(c, "", &schema.ValidationError{
			Shape:  name,
			Fields: []schema.FieldError{{Field: "$", Reason: err.Error()}},
		})
		return
	}

	language, _ := raw["language"].(string)
	out, err := h.actions.Execute(c.Request.Context(), name, raw)
	if err != nil {
		h.flowError(c, language, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": out})
}

func (h *Handler) readFlowInput(c *gin.Context) (map[string]any, error) {
	raw := map[string]any{}

	// Предел действует для любого типа тела.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&raw); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return raw, nil
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil {
			return nil, fmt.Errorf("invalid multipart body: %w", err)
		}
	} else if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}

	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			raw[key] = values[0]
		}
	}

	if fh, err := c.FormFile("photo"); err == nil {
		uri, err := fileToDataURI(fh)
		if err != nil {
			return nil, err
		}
		raw["photoDataUri"] = uri
	}
	return raw, nil
}

func fileToDataURI(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	mime := fh.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return utils.EncodeDataURI(mime, data), nil
}

// flowError переводит вид ошибки в HTTP статус и локализованное уведомление.
// Детали backend-ошибок только логируются.
func (h *Handler) flowError(c *gin.Context, language string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, flow.ErrFlowNotFound):
		status = http.StatusNotFound
	case errors.Is(err, flow.ErrOutputValidation), errors.Is(err, flow.ErrGenerationBackend):
		status = http.StatusBadGateway
	case errors.Is(err, schema.ErrValidation):
		status = http.StatusBadRequest
	}

	title, description := h.actions.Notice(err, language)
	body := ErrorBody{Kind: flow.Kind(err), Title: title, Description: description}

	var ve *schema.ValidationError
	if status == http.StatusBadRequest && errors.As(err, &ve) {
		body.Fields = ve.Fields
	}

	utils.Warn("Flow request failed",
		"flow", c.Param("name"),
		"status", status,
		"kind", body.Kind,
		"error", err)
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": body})
}

// SubmitApplication — POST /api/applications (multipart, документ в поле document).
func (h *Handler) SubmitApplication(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	language := i18n.Normalize(c.Query("language"))

	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusBadRequest, actions.SubmitResult{
			Message: h.tr.Translate(i18n.PhaseSelected, "application.invalidForm", language),
		})
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, actions.SubmitResult{
			Message: h.tr.Translate(i18n.PhaseSelected, "application.invalidForm", language),
		})
		return
	}

	fields := make(map[string]any)
	for key, values := range c.Request.PostForm {
		if len(values) > 0 && key != "language" {
			fields[key] = values[0]
		}
	}
	if l := c.Request.PostForm.Get("language"); l != "" {
		language = i18n.Normalize(l)
	}

	form := actions.ApplicationForm{Fields: fields, Language: language}
	if fh, err := c.FormFile("document"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, actions.SubmitResult{
				Message: h.tr.Translate(i18n.PhaseSelected, "application.invalidForm", language),
			})
			return
		}
		defer f.Close()
		form.Document = &actions.Document{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		}
	}

	res, err := h.actions.ApplyForScheme(c.Request.Context(), form)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, res)
	case errors.Is(err, actions.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, res)
	case errors.Is(err, schema.ErrValidation):
		c.JSON(http.StatusBadRequest, res)
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, res)
	}
}

// ListApplications — GET /api/applications.
func (h *Handler) ListApplications(c *gin.Context) {
	apps, err := h.actions.ListApplications(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"applications": apps})
	case errors.Is(err, actions.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	default:
		utils.Error("Failed to list applications", "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load applications"})
	}
}

// ListCrops — GET /api/crops?category=&language=.
func (h *Handler) ListCrops(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"crops": h.catalog.Crops(c.Query("language"), c.Query("category")),
	})
}

// ListCropCategories — GET /api/crops/categories.
func (h *Handler) ListCropCategories(c *gin.Context) {
	language := c.Query("language")
	categories := h.catalog.Categories()
	out := make([]gin.H, 0, len(categories))
	for _, cat := range categories {
		out = append(out, gin.H{
			"key":  cat.Key,
			"name": h.tr.Translate(i18n.PhaseSelected, cat.NameKey, language, cat.Label),
		})
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// GetCrop — GET /api/crops/:key.
func (h *Handler) GetCrop(c *gin.Context) {
	crop, err := h.catalog.Crop(c.Param("key"), c.Query("language"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Crop not found"})
		return
	}
	c.JSON(http.StatusOK, crop)
}

// SearchCrops — GET /api/crops/search?q=&limit=.
func (h *Handler) SearchCrops(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	crops, err := h.catalog.SearchCrops(c.Request.Context(), c.Query("q"), c.Query("language"), limit)
	if err != nil {
		utils.Error("Crop search failed", "query", c.Query("q"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"crops": crops})
}

// ListSchemes — GET /api/schemes?search=&state=&category=&type=&language=.
func (h *Handler) ListSchemes(c *gin.Context) {
	var filter catalog.SchemeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"schemes":    h.catalog.Schemes(filter),
		"states":     h.catalog.States(),
		"categories": catalog.SchemeCategories,
	})
}

// Translate — GET /api/i18n/:language/:key.
// known=false, если ключа нет в каталоге и value — это fallback или сам ключ.
func (h *Handler) Translate(c *gin.Context) {
	key := c.Param("key")
	c.JSON(http.StatusOK, gin.H{
		"key":   key,
		"value": h.tr.Translate(i18n.PhaseSelected, key, c.Param("language"), c.Query("fallback")),
		"known": h.tr.Has(key),
	})
}

// ListLanguages — GET /api/languages.
func (h *Handler) ListLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": i18n.Languages, "default": i18n.DefaultLanguage})
}

// ListFlows — GET /api/flows.
func (h *Handler) ListFlows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flows": h.actions.Flows()})
}

// Health — GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Ready — GET /ready: все зависимости отвечают.
func (h *Handler) Ready(c *gin.Context) {
	for _, check := range h.checks {
		if err := check.Check(c.Request.Context()); err != nil {
			utils.Warn("Readiness check failed", "check", check.Name, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  check.Name + " check failed",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
