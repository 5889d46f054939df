// Package store — документное хранилище заявок на государственные программы.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
)

// StatusPending — статус новой заявки.
const StatusPending = "Pending"

// Application — запись коллекции applications.
type Application struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	SchemeID      string    `json:"schemeId"`
	SchemeName    string    `json:"schemeName"`
	FarmerName    string    `json:"farmerName"`
	LandSize      string    `json:"landSize"`
	AadhaarNumber string    `json:"aadhaarNumber"`
	BankAccount   string    `json:"bankAccount,omitempty"`
	CropType      string    `json:"cropType"`
	Address       string    `json:"address"`
	DocumentURL   string    `json:"documentUrl"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// ApplicationStore — append-only хранилище заявок.
type ApplicationStore interface {
	Append(ctx context.Context, app Application) error
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open открывает хранилище по store.driver.
func Open(ctx context.Context, cfg config.StoreConfig) (ApplicationStore, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLiteStore(ctx, cfg.DSN)
	case "postgres":
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
