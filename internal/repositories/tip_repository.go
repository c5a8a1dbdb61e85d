package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/quilltips/payments-service/internal/models"
)

type TipRepository interface {
	// Create inserts a tip. Inserts are idempotent on the Stripe
	// checkout session id, so webhook redelivery is harmless.
	Create(ctx context.Context, t *models.Tip) error
	GetByStripeSessionID(ctx context.Context, sessionID string) (*models.Tip, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*models.Tip, error)
	GetAuthorTipStats(ctx context.Context, authorID uuid.UUID) (*models.TipStats, error)
}

type tipRepo struct {
	db DB
}

func NewTipRepository(db DB) TipRepository {
	return &tipRepo{db: db}
}

func baseSelectTip() string {
	return `
		SELECT id, qr_code_id, author_id, amount_cents, reader_name, message,
		       stripe_session_id, created_at
		FROM tips
	`
}

func (r *tipRepo) scanTip(row pgx.Row) (*models.Tip, error) {
	var t models.Tip
	err := row.Scan(
		&t.ID, &t.QRCodeID, &t.AuthorID, &t.AmountCents, &t.ReaderName, &t.Message,
		&t.StripeSessionID, &t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tipRepo) Create(ctx context.Context, t *models.Tip) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tips (
			id, qr_code_id, author_id, amount_cents, reader_name, message,
			stripe_session_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
		ON CONFLICT (stripe_session_id) DO NOTHING
	`,
		t.ID, t.QRCodeID, t.AuthorID, t.AmountCents, t.ReaderName, t.Message,
		t.StripeSessionID,
	)
	return err
}

func (r *tipRepo) GetByStripeSessionID(ctx context.Context, sessionID string) (*models.Tip, error) {
	row := r.db.QueryRow(ctx, baseSelectTip()+" WHERE stripe_session_id=$1", sessionID)
	return r.scanTip(row)
}

func (r *tipRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*models.Tip, error) {
	rows, err := r.db.Query(ctx, baseSelectTip()+" WHERE author_id=$1 ORDER BY created_at DESC LIMIT $2", authorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tips []*models.Tip
	for rows.Next() {
		t, err := r.scanTip(rows)
		if err != nil {
			return nil, err
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}

func (r *tipRepo) GetAuthorTipStats(ctx context.Context, authorID uuid.UUID) (*models.TipStats, error) {
	row := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount_cents), 0), MAX(created_at)
		FROM tips
		WHERE author_id=$1
	`, authorID)

	var stats models.TipStats
	if err := row.Scan(&stats.TipCount, &stats.TotalAmountCents, &stats.LastTipAt); err != nil {
		return nil, err
	}
	return &stats, nil
}
