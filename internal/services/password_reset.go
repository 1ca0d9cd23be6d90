package services

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ahorra/internal/auth"
	"ahorra/internal/models"
	"ahorra/internal/store"
	"ahorra/internal/validator"

	"github.com/sirupsen/logrus"
)

type PasswordResetService struct {
	store   store.Store
	mailbox *Mailbox
	ttl     time.Duration
	now     func() time.Time
	logger  logrus.FieldLogger
}

func NewPasswordResetService(st store.Store, mailbox *Mailbox, ttl time.Duration, logger logrus.FieldLogger) *PasswordResetService {
	return &PasswordResetService{store: st, mailbox: mailbox, ttl: ttl, now: time.Now, logger: logger}
}

// RequestReset stores a single-use token for the user behind correo and mails it.
func (s *PasswordResetService) RequestReset(ctx context.Context, correo string) (string, error) {
	user, ok, err := findUserByCorreo(ctx, s.store.Users(), correo)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &NotFoundError{Entity: "user", Key: correo}
	}
	now := s.now().UTC()
	token, err := resetToken(now)
	if err != nil {
		return "", err
	}
	reset, err := s.store.PasswordResets().Add(ctx, models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	s.logger.WithField("user_id", user.ID).Info("password reset requested")
	s.mailbox.Notify(ctx, user.ID, "Recuperación de contraseña",
		fmt.Sprintf("Usa el código %s para restablecer tu contraseña. Caduca el %s.",
			reset.Token, reset.ExpiresAt.Format("02/01/2006 15:04 MST")))
	return reset.Token, nil
}

func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if _, err := s.redeemable(ctx, s.store.PasswordResets(), token); err != nil {
		return err
	}
	if err := validator.ValidatePassword(newPassword); err != nil {
		return passwordValidationError()
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	var userID string
	err = s.store.WithTx(ctx, func(repos store.Repositories) error {
		reset, err := s.redeemable(ctx, repos.PasswordResets(), token)
		if err != nil {
			return err
		}
		userID = reset.UserID
		_, err = repos.Users().Update(ctx, reset.UserID, models.UserPatch{PasswordHash: &hash})
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Entity: "user", Key: reset.UserID}
		}
		if err != nil {
			return err
		}
		return repos.PasswordResets().MarkUsed(ctx, reset.ID)
	})
	if err != nil {
		return err
	}
	s.logger.WithField("user_id", userID).Info("password reset completed")
	return nil
}

func (s *PasswordResetService) redeemable(ctx context.Context, resets store.PasswordResetRepository, token string) (models.PasswordReset, error) {
	reset, err := resets.GetByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return models.PasswordReset{}, &NotFoundError{Entity: "reset token"}
	}
	if err != nil {
		return models.PasswordReset{}, err
	}
	if reset.Used {
		return models.PasswordReset{}, ErrResetTokenUsed
	}
	if !s.now().Before(reset.ExpiresAt) {
		return models.PasswordReset{}, ErrResetTokenExpired
	}
	return reset, nil
}

// resetToken is a random base-36 fragment followed by the base-36 millisecond timestamp.
func resetToken(now time.Time) (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	fragment := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	return fragment + strconv.FormatInt(now.UnixMilli(), 36), nil
}
