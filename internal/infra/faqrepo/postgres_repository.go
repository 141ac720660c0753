package faqrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

const uniqueViolation = "23505"

const postgresSchema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS faqs (
	id          BIGSERIAL PRIMARY KEY,
	question_id TEXT NOT NULL UNIQUE,
	question    TEXT NOT NULL,
	answer      TEXT NOT NULL,
	category    TEXT NOT NULL,
	embedding   vector,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	added_by    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS faqs_category_lower_idx ON faqs (lower(trim(category)));
CREATE INDEX IF NOT EXISTS faqs_question_idx ON faqs (question);
`

// PostgresRepository implements faq.Store using pgx and pgvector.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Close releases the pool.
func (r *PostgresRepository) Close(context.Context) error {
	r.pool.Close()
	return nil
}

// EnsureSchema creates the faqs table and its indexes when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, postgresSchema)
	return err
}

// FindAll returns every row in insertion order.
func (r *PostgresRepository) FindAll(ctx context.Context, proj faq.Projection) ([]faq.Record, error) {
	rows, err := r.pool.Query(ctx, selectColumns(proj)+` FROM faqs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []faq.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// FindOne returns the first row matching filter.
func (r *PostgresRepository) FindOne(ctx context.Context, filter faq.Filter) (faq.Record, bool, error) {
	where, args := whereClause(filter)
	rec, err := scanRecord(r.pool.QueryRow(ctx, selectColumns(faq.Projection{})+` FROM faqs`+where+` ORDER BY id LIMIT 1`, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return faq.Record{}, false, nil
	}
	if err != nil {
		return faq.Record{}, false, err
	}
	return rec, true, nil
}

// InsertOne inserts a row; a reused question_id maps to faq.ErrDuplicateIdentifier.
func (r *PostgresRepository) InsertOne(ctx context.Context, record faq.Record) (string, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO faqs (question_id, question, answer, category, embedding, created_at, added_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, insertArgs(record)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%w: %s", faq.ErrDuplicateIdentifier, record.Identifier)
		}
		return "", err
	}
	return record.Identifier, nil
}

// InsertMany inserts records in one batch, skipping identifiers that already exist.
func (r *PostgresRepository) InsertMany(ctx context.Context, records []faq.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
			INSERT INTO faqs (question_id, question, answer, category, embedding, created_at, added_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (question_id) DO NOTHING
		`, insertArgs(rec)...)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, err
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// DeleteMany removes rows matching filter.
func (r *PostgresRepository) DeleteMany(ctx context.Context, filter faq.Filter) (int64, error) {
	where, args := whereClause(filter)
	tag, err := r.pool.Exec(ctx, `DELETE FROM faqs`+where, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountDocuments counts rows matching filter.
func (r *PostgresRepository) CountDocuments(ctx context.Context, filter faq.Filter) (int64, error) {
	where, args := whereClause(filter)
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM faqs`+where, args...).Scan(&n)
	return n, err
}

// UpdateEmbedding replaces the vector of one row.
func (r *PostgresRepository) UpdateEmbedding(ctx context.Context, identifier string, embedding []float32) error {
	tag, err := r.pool.Exec(ctx, `UPDATE faqs SET embedding = $2 WHERE question_id = $1`, identifier, vectorArg(embedding))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", faq.ErrNotFound, identifier)
	}
	return nil
}

func selectColumns(proj faq.Projection) string {
	embedding := "embedding::text"
	if proj.OmitEmbedding {
		embedding = "NULL::text"
	}
	return `SELECT question_id, question, answer, category, ` + embedding + `, created_at, added_by`
}

func whereClause(filter faq.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Identifier != "" {
		args = append(args, filter.Identifier)
		conds = append(conds, "question_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Question != "" {
		args = append(args, filter.Question)
		conds = append(conds, "question = $"+strconv.Itoa(len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, "lower(trim(category)) = lower(trim($"+strconv.Itoa(len(args))+"))")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func insertArgs(rec faq.Record) []any {
	return []any{rec.Identifier, rec.Question, rec.Answer, rec.Category, vectorArg(rec.Embedding), rec.CreatedAt, rec.AddedBy}
}

// vectorArg keeps absent embeddings as SQL NULL rather than an empty vector.
func vectorArg(embedding []float32) any {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (faq.Record, error) {
	var (
		rec       faq.Record
		embedding *string
	)
	if err := row.Scan(&rec.Identifier, &rec.Question, &rec.Answer, &rec.Category, &embedding, &rec.CreatedAt, &rec.AddedBy); err != nil {
		return faq.Record{}, err
	}
	if embedding != nil {
		vec, err := parseVector(*embedding)
		if err != nil {
			return faq.Record{}, fmt.Errorf("faq %s embedding: %w", rec.Identifier, err)
		}
		rec.Embedding = vec
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

// parseVector reads pgvector's text form "[1,2,3]".
func parseVector(raw string) ([]float32, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "[")
	trimmed = strings.TrimSuffix(trimmed, "]")
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, ",")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(f))
	}
	return out, nil
}

var _ faq.Store = (*PostgresRepository)(nil)
