package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/quilltips/payments-service/internal/models"
)

type QRCodeRepository interface {
	Create(ctx context.Context, q *models.QRCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.QRCode, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.QRCode, error)
	UpdateIfVersion(ctx context.Context, q *models.QRCode, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.QRCode) error) error
}

type qrCodeRepo struct {
	*BaseVersionedRepo[*models.QRCode]
	db DB
}

func NewQRCodeRepository(db DB) QRCodeRepository {
	r := &qrCodeRepo{db: db}
	selectStmt := baseSelectQRCode() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanQRCode)
	return r
}

func baseSelectQRCode() string {
	return `
		SELECT
			id, author_id, book_title, qr_code_status, is_paid, stripe_session_id,
			created_at, updated_at, row_version
		FROM qr_codes
	`
}

func (r *qrCodeRepo) scanQRCode(row pgx.Row) (*models.QRCode, error) {
	var q models.QRCode
	err := row.Scan(
		&q.ID, &q.AuthorID, &q.BookTitle, &q.QRCodeStatus, &q.IsPaid, &q.StripeSessionID,
		&q.CreatedAt, &q.UpdatedAt, &q.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *qrCodeRepo) Create(ctx context.Context, q *models.QRCode) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO qr_codes (
			id, author_id, book_title, qr_code_status, is_paid, stripe_session_id,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW(),1)
	`,
		q.ID, q.AuthorID, q.BookTitle, q.QRCodeStatus, q.IsPaid, q.StripeSessionID,
	)
	return err
}

func (r *qrCodeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.QRCode, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *qrCodeRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.QRCode, error) {
	rows, err := r.db.Query(ctx, baseSelectQRCode()+" WHERE author_id=$1 ORDER BY created_at DESC", authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*models.QRCode
	for rows.Next() {
		q, err := r.scanQRCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, q)
	}
	return codes, rows.Err()
}

func (r *qrCodeRepo) UpdateIfVersion(ctx context.Context, q *models.QRCode, expected int64) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
		UPDATE qr_codes SET
			book_title=$1, qr_code_status=$2, is_paid=$3, stripe_session_id=$4,
			updated_at=NOW(), row_version=row_version+1
		WHERE id=$5 AND row_version=$6
	`,
		q.BookTitle, q.QRCodeStatus, q.IsPaid, q.StripeSessionID,
		q.ID, expected,
	)
}

func (r *qrCodeRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.QRCode) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}
