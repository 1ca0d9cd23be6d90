package store

import (
	"context"
	"time"

	"ahorra/internal/models"

	"github.com/google/uuid"
)

type PasswordResetStore struct {
	db DB
}

func NewPasswordResetStore(db DB) *PasswordResetStore {
	return &PasswordResetStore{db: db}
}

func (s *PasswordResetStore) Add(ctx context.Context, reset models.PasswordReset) (models.PasswordReset, error) {
	if reset.ID == "" {
		reset.ID = uuid.NewString()
	}
	if reset.CreatedAt.IsZero() {
		reset.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO password_resets (id, user_id, token, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query), reset.ID, reset.UserID, reset.Token, reset.ExpiresAt, reset.Used, reset.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.PasswordReset{}, ErrDuplicate
		}
		return models.PasswordReset{}, wrap("password_resets.add", err)
	}
	return reset, nil
}

func (s *PasswordResetStore) GetByToken(ctx context.Context, token string) (models.PasswordReset, error) {
	var reset models.PasswordReset
	query := `SELECT id, user_id, token, expires_at, used, created_at FROM password_resets WHERE token = ?`
	if err := s.db.GetContext(ctx, &reset, s.db.Rebind(query), token); err != nil {
		return models.PasswordReset{}, wrap("password_resets.get_by_token", notFoundOr(err))
	}
	return reset, nil
}

func (s *PasswordResetStore) MarkUsed(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE password_resets SET used = ? WHERE id = ?`), true, id)
	if err != nil {
		return wrap("password_resets.mark_used", err)
	}
	return wrap("password_resets.mark_used", expectAffected(result))
}
