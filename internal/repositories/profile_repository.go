package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/quilltips/payments-service/internal/models"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByStripeAccountID(ctx context.Context, acct string) (*models.Profile, error)
	ListPendingOnboarding(ctx context.Context) ([]*models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	UpdateIfVersion(ctx context.Context, p *models.Profile, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Profile) error) error
}

type profileRepo struct {
	*BaseVersionedRepo[*models.Profile]
	db DB
}

func NewProfileRepository(db DB) ProfileRepository {
	r := &profileRepo{db: db}
	selectStmt := baseSelectProfile() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, r.scanProfile)
	return r
}

func baseSelectProfile() string {
	return `
		SELECT
			id, role, name, email,
			stripe_account_id, stripe_setup_complete,
			stripe_onboarding_started_at, stripe_onboarding_completed_at,
			sent_reminder_emails,
			created_at, updated_at, row_version
		FROM profiles
	`
}

func (r *profileRepo) scanProfile(row pgx.Row) (*models.Profile, error) {
	var (
		p             models.Profile
		remindersJSON []byte
	)
	err := row.Scan(
		&p.ID, &p.Role, &p.Name, &p.Email,
		&p.StripeAccountID, &p.StripeSetupComplete,
		&p.StripeOnboardingStartedAt, &p.StripeOnboardingCompletedAt,
		&remindersJSON,
		&p.CreatedAt, &p.UpdatedAt, &p.RowVersion,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(remindersJSON) > 0 {
		if err := json.Unmarshal(remindersJSON, &p.SentReminderEmails); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (r *profileRepo) Create(ctx context.Context, p *models.Profile) error {
	reminders, err := remindersToJSON(p.SentReminderEmails)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO profiles (
			id, role, name, email,
			stripe_account_id, stripe_setup_complete,
			stripe_onboarding_started_at, stripe_onboarding_completed_at,
			sent_reminder_emails,
			created_at, updated_at, row_version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW(),1)
	`,
		p.ID, p.Role, p.Name, p.Email,
		p.StripeAccountID, p.StripeSetupComplete,
		p.StripeOnboardingStartedAt, p.StripeOnboardingCompletedAt,
		reminders,
	)
	return err
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *profileRepo) GetByStripeAccountID(ctx context.Context, acct string) (*models.Profile, error) {
	row := r.db.QueryRow(ctx, baseSelectProfile()+" WHERE stripe_account_id=$1", acct)
	return r.scanProfile(row)
}

// ListPendingOnboarding returns profiles that have a Stripe account but
// have not finished onboarding. Completed profiles never show up here,
// so the reminder sweep makes zero Stripe calls for them.
func (r *profileRepo) ListPendingOnboarding(ctx context.Context) ([]*models.Profile, error) {
	q := baseSelectProfile() + `
		WHERE stripe_account_id IS NOT NULL
		  AND stripe_onboarding_completed_at IS NULL
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) Update(ctx context.Context, p *models.Profile) error {
	_, err := r.update(ctx, p, false, 0)
	return err
}

func (r *profileRepo) UpdateIfVersion(ctx context.Context, p *models.Profile, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, p, true, expected)
}

func (r *profileRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Profile) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *profileRepo) update(ctx context.Context, p *models.Profile, check bool, expected int64) (pgconn.CommandTag, error) {
	reminders, err := remindersToJSON(p.SentReminderEmails)
	if err != nil {
		return nil, err
	}

	sql := `
		UPDATE profiles SET
			role=$1, name=$2, email=$3,
			stripe_account_id=$4, stripe_setup_complete=$5,
			stripe_onboarding_started_at=$6, stripe_onboarding_completed_at=$7,
			sent_reminder_emails=$8,
			updated_at=NOW()
	`
	args := []interface{}{
		p.Role, p.Name, p.Email,
		p.StripeAccountID, p.StripeSetupComplete,
		p.StripeOnboardingStartedAt, p.StripeOnboardingCompletedAt,
		reminders,
	}

	if check {
		sql += `, row_version=row_version+1 WHERE id=$9 AND row_version=$10`
		args = append(args, p.ID, expected)
	} else {
		sql += `, row_version=row_version+1 WHERE id=$9`
		args = append(args, p.ID)
	}

	return r.db.Exec(ctx, sql, args...)
}

func remindersToJSON(reminders []models.SentReminderEmail) ([]byte, error) {
	if reminders == nil {
		reminders = []models.SentReminderEmail{}
	}
	return json.Marshal(reminders)
}
