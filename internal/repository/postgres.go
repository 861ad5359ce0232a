package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"krishisense/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

//go:embed schema.sql
var schemaSQL string

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("✅ Applied database schema")
	return nil
}

// Save stores a prediction and returns its generated id
func (r *PostgresRepository) Save(
	ctx context.Context,
	userID string,
	req *model.PredictionRequest,
	fv model.FeatureVector,
	price float64,
	advice string,
) (string, error) {
	request, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO predictions (
			id, user_id, crop, market, target_date, request, features,
			feature_embedding, predicted_price, advice
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		id, userID, req.Crop, req.Market, req.Date, request, fv,
		pgvector.NewVector(fv.Numeric()), price, advice,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save prediction: %w", err)
	}
	return id.String(), nil
}

// FindByUser returns a user's predictions, newest first
func (r *PostgresRepository) FindByUser(ctx context.Context, userID string, limit int) ([]model.PredictionRecord, error) {
	query := `
		SELECT
			id, crop, market, target_date, predicted_price, advice,
			created_at, actual_price, price_diff
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	records := []model.PredictionRecord{}
	if err := r.db.SelectContext(ctx, &records, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch predictions: %w", err)
	}
	return records, nil
}

// AggregateByRegion averages predicted prices per market and crop over the last windowDays days.
// An empty crop matches every crop.
func (r *PostgresRepository) AggregateByRegion(ctx context.Context, crop string, windowDays int) ([]model.RegionAverage, error) {
	query := `
		SELECT market, crop, AVG(predicted_price) AS avg_price
		FROM predictions
		WHERE created_at >= NOW() - make_interval(days => $1)
		  AND ($2 = '' OR crop = $2)
		GROUP BY market, crop
		ORDER BY market, crop
	`
	rows := []model.RegionAverage{}
	if err := r.db.SelectContext(ctx, &rows, query, windowDays, crop); err != nil {
		return nil, fmt.Errorf("failed to aggregate predictions: %w", err)
	}
	return rows, nil
}

// RecordActual stores the realised price and its difference from the prediction.
// It returns nil, nil when the id is malformed or unknown.
func (r *PostgresRepository) RecordActual(ctx context.Context, id string, actualPrice float64) (*model.ActualPriceUpdate, error) {
	pid, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var update model.ActualPriceUpdate
	query := `
		UPDATE predictions
		SET actual_price = $2, price_diff = $2 - predicted_price, updated_at = NOW()
		WHERE id = $1
		RETURNING id, actual_price, price_diff
	`
	err := r.db.GetContext(ctx, &update, query, pid, actualPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to record actual price: %w", err)
	}
	return &update, nil
}

// Delete removes a prediction owned by userID and reports whether a row was deleted
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	pid, ok := parseID(id)
	if !ok {
		return false, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM predictions WHERE id = $1 AND user_id = $2`, pid, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete prediction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete prediction: %w", err)
	}
	return n > 0, nil
}

// BackfillEmbeddings fills feature_embedding for rows stored before the column existed
func (r *PostgresRepository) BackfillEmbeddings(ctx context.Context) (int, []string) {
	success := 0
	var errs []string

	var pending []pendingEmbedding
	err := r.db.SelectContext(ctx, &pending, `SELECT id, features FROM predictions WHERE feature_embedding IS NULL`)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to list predictions: %v", err))
		return success, errs
	}
	if len(pending) == 0 {
		return success, errs
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errs
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE predictions SET feature_embedding = $1 WHERE id = $2`)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errs
	}
	defer stmt.Close()

	success, err = writeEmbeddings(ctx, stmt, pending)
	if err != nil {
		errs = append(errs, err.Error())
		return 0, errs
	}

	if err := tx.Commit(); err != nil {
		errs = append(errs, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errs
	}

	return success, errs
}

type pendingEmbedding struct {
	ID       uuid.UUID           `db:"id"`
	Features model.FeatureVector `db:"features"`
}

type embeddingWriter interface {
	ExecContext(ctx context.Context, args ...any) (sql.Result, error)
}

// writeEmbeddings stops at the first failed row. PostgreSQL aborts the transaction on any
// error, so nothing after it could be written.
func writeEmbeddings(ctx context.Context, w embeddingWriter, pending []pendingEmbedding) (int, error) {
	written := 0
	for _, item := range pending {
		vec := pgvector.NewVector(item.Features.Numeric())
		if _, err := w.ExecContext(ctx, vec, item.ID); err != nil {
			return written, fmt.Errorf("prediction %s: %w", item.ID, err)
		}
		written++
	}
	return written, nil
}

// parseID accepts only canonical UUIDs so malformed ids never reach the database
func parseID(id string) (uuid.UUID, bool) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return pid, true
}
