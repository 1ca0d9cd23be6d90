package services

import (
	"context"
	"errors"

	"ahorra/internal/models"
	"ahorra/internal/store"
	"ahorra/internal/websocket"

	"github.com/sirupsen/logrus"
)

type NoticePublisher interface {
	Publish(userID string, notice websocket.Notice)
}

type MailInput struct {
	Subject string
	Body    string
	Read    bool
}

type Mailbox struct {
	mails        store.MailRepository
	hub          NoticePublisher
	defaultLimit int
	logger       logrus.FieldLogger
}

func NewMailbox(mails store.MailRepository, hub NoticePublisher, defaultLimit int, logger logrus.FieldLogger) *Mailbox {
	return &Mailbox{mails: mails, hub: hub, defaultLimit: defaultLimit, logger: logger}
}

func (m *Mailbox) AddMail(ctx context.Context, userID string, input MailInput) (models.Mail, error) {
	if userID == "" {
		return models.Mail{}, &ValidationError{Field: "userId", Message: "recipient is required"}
	}
	return m.mails.Add(ctx, models.Mail{
		UserID:  userID,
		Subject: input.Subject,
		Body:    input.Body,
		Read:    input.Read,
	})
}

// Notify delivers a notice without ever failing the caller.
func (m *Mailbox) Notify(ctx context.Context, userID, subject, body string) {
	mail, err := m.AddMail(ctx, userID, MailInput{Subject: subject, Body: body})
	if err != nil {
		m.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"subject": subject,
		}).WithError(err).Warn("mail notification dropped")
		return
	}
	if m.hub != nil {
		m.hub.Publish(userID, websocket.Notice{Type: websocket.NoticeMail, MailID: mail.ID, Subject: mail.Subject})
	}
}

// GetMails returns the newest entries first; limit <= 0 uses the configured page size.
func (m *Mailbox) GetMails(ctx context.Context, userID string, limit int) ([]models.Mail, error) {
	if limit <= 0 {
		limit = m.defaultLimit
	}
	return m.mails.ListByUser(ctx, userID, limit)
}

func (m *Mailbox) UpdateMail(ctx context.Context, userID, id string, read bool) error {
	err := m.mails.SetRead(ctx, userID, id, read)
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "mail", Key: id}
	}
	return err
}

func (m *Mailbox) DeleteMail(ctx context.Context, userID, id string) error {
	err := m.mails.Delete(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "mail", Key: id}
	}
	return err
}
