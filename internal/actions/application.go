package actions

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/vijayasainandipati/Agri-Ai-2/internal/auth"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/i18n"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/store"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/flow"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/schema"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

func required(name string) schema.Field {
	return schema.Field{Name: name, Kind: schema.KindString, Required: true}
}

// ApplicationShape — форма заявки на программу.
var ApplicationShape = &schema.Shape{
	Name: "SchemeApplication",
	Fields: []schema.Field{
		required("userId"),
		required("schemeId"),
		required("schemeName"),
		required("farmerName"),
		required("landSize"),
		required("aadhaarNumber"),
		{Name: "bankAccount", Kind: schema.KindString},
		required("cropType"),
		required("address"),
	},
}

// Document — приложенный к заявке файл.
type Document struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ApplicationForm — сырые данные заявки.
type ApplicationForm struct {
	Fields   map[string]any
	Document *Document

	// Language — язык сообщения в ответе.
	Language string
}

// SubmitResult — ответ пользователю.
type SubmitResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ApplicationID string `json:"applicationId,omitempty"`
}

// ApplyForScheme сохраняет заявку от пользователя текущей сессии.
//
// Без сессии хранилища не трогаются. Ошибка возвращается вместе с
// результатом для логов и выбора HTTP-статуса: *schema.ValidationError
// или *flow.PersistenceError; ErrUnauthenticated без сессии.
func (g *Gateway) ApplyForScheme(ctx context.Context, form ApplicationForm) (SubmitResult, error) {
	msg := func(key string) string {
		return g.tr.Translate(i18n.PhaseSelected, key, form.Language)
	}

	// 1. Сессия
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return SubmitResult{Message: msg("application.authRequired")}, ErrUnauthenticated
	}

	// 2. Форма; userId берётся из сессии
	raw := make(map[string]any, len(form.Fields)+1)
	for k, v := range form.Fields {
		raw[k] = v
	}
	raw["userId"] = userID

	fields, err := ApplicationShape.Validate(raw)
	if err != nil {
		utils.Warn("Application form validation failed", "user_id", userID, "error", err)
		return SubmitResult{Message: msg("application.invalidForm")}, err
	}

	app, err := g.persist(ctx, fields, form.Document)
	if g.recorder != nil {
		g.recorder.ApplicationSubmitted(ctx, fields.String("schemeId"), err)
	}
	if err != nil {
		utils.Error("Error submitting application",
			"user_id", userID,
			"scheme_id", fields.String("schemeId"),
			"error", err)
		return SubmitResult{Message: msg("application.failed")}, err
	}

	utils.Info("Application submitted",
		"application_id", app.ID,
		"user_id", userID,
		"scheme_id", app.SchemeID,
		"has_document", app.DocumentURL != "")
	return SubmitResult{Success: true, Message: msg("application.submitted"), ApplicationID: app.ID}, nil
}

// ListApplications возвращает заявки пользователя текущей сессии.
func (g *Gateway) ListApplications(ctx context.Context) ([]store.Application, error) {
	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	apps, err := g.apps.ListByUser(ctx, userID)
	if err != nil {
		return nil, &flow.PersistenceError{Op: "list applications", Err: err}
	}
	return apps, nil
}

// persist загружает документ (если он не пустой) и добавляет запись.
func (g *Gateway) persist(ctx context.Context, fields schema.Record, doc *Document) (store.Application, error) {
	now := g.now().UTC()

	var documentURL string
	if doc != nil && doc.Size > 0 {
		if g.objects == nil {
			return store.Application{}, &flow.PersistenceError{Op: "upload document", Err: fmt.Errorf("object storage is not configured")}
		}
		key := DocumentKey(fields.String("userId"), fields.String("schemeId"), now.UnixMilli(), doc.Name)
		url, err := g.objects.Upload(ctx, key, doc.Body, doc.Size, doc.ContentType)
		if err != nil {
			return store.Application{}, &flow.PersistenceError{Op: "upload document", Err: err}
		}
		documentURL = url
	}

	app := store.Application{
		ID:            g.newID(),
		UserID:        fields.String("userId"),
		SchemeID:      fields.String("schemeId"),
		SchemeName:    fields.String("schemeName"),
		FarmerName:    fields.String("farmerName"),
		LandSize:      fields.String("landSize"),
		AadhaarNumber: fields.String("aadhaarNumber"),
		BankAccount:   fields.String("bankAccount"),
		CropType:      fields.String("cropType"),
		Address:       fields.String("address"),
		DocumentURL:   documentURL,
		Status:        store.StatusPending,
		SubmittedAt:   now,
	}
	if err := g.apps.Append(ctx, app); err != nil {
		return store.Application{}, &flow.PersistenceError{Op: "append application", Err: err}
	}
	return app, nil
}

// DocumentKey — ключ объекта: applications/<user>/<scheme>/<unixMillis>-<name>.
func DocumentKey(userID, schemeID string, unixMillis int64, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "document"
	}
	return fmt.Sprintf("%s%s/%d-%s", DocumentPrefix(userID), schemeID, unixMillis, name)
}

// DocumentPrefix — префикс всех документов пользователя.
func DocumentPrefix(userID string) string {
	return "applications/" + userID + "/"
}
