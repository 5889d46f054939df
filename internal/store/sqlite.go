package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

const defaultDirPermissions = 0755

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS applications (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	scheme_id      TEXT NOT NULL,
	scheme_name    TEXT NOT NULL,
	farmer_name    TEXT NOT NULL,
	land_size      TEXT NOT NULL,
	aadhaar_number TEXT NOT NULL,
	bank_account   TEXT NOT NULL DEFAULT '',
	crop_type      TEXT NOT NULL,
	address        TEXT NOT NULL,
	document_url   TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	submitted_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id, submitted_at);
`

// SQLiteStore — хранилище заявок в файле SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore открывает (и при необходимости создаёт) базу по пути dsn.
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, defaultDirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite не любит конкурентных писателей
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	utils.Debug("SQLite store opened", "dsn", dsn)
	return &SQLiteStore{db: db}, nil
}

// Append добавляет заявку.
func (s *SQLiteStore) Append(ctx context.Context, a Application) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO applications
		(id, user_id, scheme_id, scheme_name, farmer_name, land_size, aadhaar_number,
		 bank_account, crop_type, address, document_url, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.SchemeID, a.SchemeName, a.FarmerName, a.LandSize, a.AadhaarNumber,
		a.BankAccount, a.CropType, a.Address, a.DocumentURL, a.Status, a.SubmittedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert application %s: %w", a.ID, err)
	}
	return nil
}

// ListByUser возвращает заявки пользователя, новые первыми.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, user_id, scheme_id, scheme_name, farmer_name, land_size, aadhaar_number,
		bank_account, crop_type, address, document_url, status, submitted_at
		FROM applications WHERE user_id = ? ORDER BY submitted_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.UserID, &a.SchemeID, &a.SchemeName, &a.FarmerName,
			&a.LandSize, &a.AadhaarNumber, &a.BankAccount, &a.CropType, &a.Address,
			&a.DocumentURL, &a.Status, &a.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate application rows: %w", err)
	}
	return apps, nil
}

// Ping проверяет соединение.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close закрывает базу.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
