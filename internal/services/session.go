package services

import (
	"context"
	"strings"

	"ahorra/internal/auth"
	"ahorra/internal/models"
	"ahorra/internal/store"

	"github.com/sirupsen/logrus"
)

// SessionStore is the single source of truth for who is logged in.
type SessionStore struct {
	meta store.MetaRepository
}

func NewSessionStore(meta store.MetaRepository) *SessionStore {
	return &SessionStore{meta: meta}
}

func (s *SessionStore) GetCurrent(ctx context.Context) (string, bool, error) {
	correo, ok, err := s.meta.Get(ctx, models.MetaCurrentUser)
	if err != nil || !ok || correo == "" {
		return "", false, err
	}
	return correo, true, nil
}

func (s *SessionStore) SetCurrent(ctx context.Context, correo string) error {
	return s.meta.Set(ctx, models.MetaCurrentUser, correo)
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.meta.Delete(ctx, models.MetaCurrentUser)
}

type CredentialStatus string

const (
	CredentialsNotFound      CredentialStatus = "not_found"
	CredentialsWrongPassword CredentialStatus = "wrong_password"
	CredentialsOK            CredentialStatus = "ok"
)

type CredentialResult struct {
	Status CredentialStatus
	User   models.User
}

type SessionService struct {
	users    store.UserRepository
	sessions *SessionStore
	logger   logrus.FieldLogger
}

func NewSessionService(users store.UserRepository, sessions *SessionStore, logger logrus.FieldLogger) *SessionService {
	return &SessionService{users: users, sessions: sessions, logger: logger}
}

func (s *SessionService) CheckCredentials(ctx context.Context, correo, password string) (CredentialResult, error) {
	user, ok, err := findUserByCorreo(ctx, s.users, correo)
	if err != nil {
		return CredentialResult{}, err
	}
	if !ok {
		return CredentialResult{Status: CredentialsNotFound}, nil
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return CredentialResult{Status: CredentialsWrongPassword}, nil
	}
	if err := s.sessions.SetCurrent(ctx, user.Correo); err != nil {
		return CredentialResult{}, err
	}
	s.logger.WithField("user_id", user.ID).Info("session started")
	return CredentialResult{Status: CredentialsOK, User: user}, nil
}

// Logout always succeeds from the caller's view; a failed clear is only logged.
func (s *SessionService) Logout(ctx context.Context) {
	if err := s.sessions.Clear(ctx); err != nil {
		s.logger.WithError(err).Warn("clear session pointer failed")
		return
	}
	s.logger.Info("session cleared")
}

// GetCurrentUser resolves the session pointer. A missing or dangling pointer means nobody is logged in.
func (s *SessionService) GetCurrentUser(ctx context.Context) (models.User, bool, error) {
	correo, ok, err := s.sessions.GetCurrent(ctx)
	if err != nil || !ok {
		return models.User{}, false, err
	}
	return findUserByCorreo(ctx, s.users, correo)
}

// RequireCurrent fails with ErrUnauthenticated unless userID is the session user.
func (s *SessionService) RequireCurrent(ctx context.Context, userID string) (models.User, error) {
	user, ok, err := s.GetCurrentUser(ctx)
	if err != nil {
		return models.User{}, err
	}
	if !ok || user.ID != userID {
		return models.User{}, ErrUnauthenticated
	}
	return user, nil
}

func findUserByCorreo(ctx context.Context, users store.UserRepository, correo string) (models.User, bool, error) {
	correo = strings.TrimSpace(correo)
	if correo == "" {
		return models.User{}, false, nil
	}
	all, err := users.GetAll(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	for _, user := range all {
		if strings.EqualFold(user.Correo, correo) {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}
