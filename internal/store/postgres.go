package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

const postgresSchema = `
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
	submitted_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id, submitted_at);
`

// PostgresStore — хранилище заявок в PostgreSQL (pgx pool).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore подключается к базе и применяет схему.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	utils.Info("Connected to PostgreSQL database")
	return &PostgresStore{pool: pool}, nil
}

// Append добавляет заявку.
func (s *PostgresStore) Append(ctx context.Context, a Application) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO applications
		(id, user_id, scheme_id, scheme_name, farmer_name, land_size, aadhaar_number,
		 bank_account, crop_type, address, document_url, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.UserID, a.SchemeID, a.SchemeName, a.FarmerName, a.LandSize, a.AadhaarNumber,
		a.BankAccount, a.CropType, a.Address, a.DocumentURL, a.Status, a.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to insert application %s: %w", a.ID, err)
	}
	return nil
}

// ListByUser возвращает заявки пользователя, новые первыми.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	rows, err := s.pool.Query(ctx, `SELECT
		id, user_id, scheme_id, scheme_name, farmer_name, land_size, aadhaar_number,
		bank_account, crop_type, address, document_url, status, submitted_at
		FROM applications WHERE user_id = $1 ORDER BY submitted_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}

	apps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Application, error) {
		var a Application
		err := row.Scan(&a.ID, &a.UserID, &a.SchemeID, &a.SchemeName, &a.FarmerName,
			&a.LandSize, &a.AadhaarNumber, &a.BankAccount, &a.CropType, &a.Address,
			&a.DocumentURL, &a.Status, &a.SubmittedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan application rows: %w", err)
	}
	return apps, nil
}

// Ping проверяет соединение.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close закрывает пул.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
