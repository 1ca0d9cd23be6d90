package store

import (
	"context"
	"time"

	"ahorra/internal/models"

	"github.com/google/uuid"
)

type MailStore struct {
	db DB
}

func NewMailStore(db DB) *MailStore {
	return &MailStore{db: db}
}

func (s *MailStore) Add(ctx context.Context, mail models.Mail) (models.Mail, error) {
	if mail.ID == "" {
		mail.ID = uuid.NewString()
	}
	if mail.Fecha.IsZero() {
		mail.Fecha = time.Now().UTC()
	}
	query := `
		INSERT INTO mails (id, user_id, subject, body, is_read, fecha)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query), mail.ID, mail.UserID, mail.Subject, mail.Body, mail.Read, mail.Fecha)
	if err != nil {
		return models.Mail{}, wrap("mails.add", err)
	}
	return mail, nil
}

func (s *MailStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.Mail, error) {
	mails := []models.Mail{}
	query := `SELECT id, user_id, subject, body, is_read, fecha FROM mails WHERE user_id = ? ORDER BY seq DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	if err := s.db.SelectContext(ctx, &mails, s.db.Rebind(query), args...); err != nil {
		return nil, wrap("mails.list_by_user", err)
	}
	return mails, nil
}

func (s *MailStore) SetRead(ctx context.Context, userID, id string, read bool) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE mails SET is_read = ? WHERE id = ? AND user_id = ?`), read, id, userID)
	if err != nil {
		return wrap("mails.set_read", err)
	}
	return wrap("mails.set_read", expectAffected(result))
}

func (s *MailStore) Delete(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM mails WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return wrap("mails.delete", err)
	}
	return wrap("mails.delete", expectAffected(result))
}
