package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"ahorra/internal/auth"
	"ahorra/internal/models"
	"ahorra/internal/store"
	"ahorra/internal/validator"

	"github.com/sirupsen/logrus"
)

const (
	cuentaDigits   = 16
	cuentaAttempts = 10
)

type RegisterRequest struct {
	Nombre    string
	Apellidos string
	Telefono  string
	Correo    string
	Password  string
	Cuenta    string
}

// ProfileUpdate is a partial replace; nil fields are left untouched.
type ProfileUpdate struct {
	Nombre    *string
	Apellidos *string
	Telefono  *string
	Correo    *string
	Password  *string
}

type UserService struct {
	store          store.Store
	mailbox        *Mailbox
	openingBalance int64
	logger         logrus.FieldLogger
}

func NewUserService(st store.Store, mailbox *Mailbox, openingBalance int64, logger logrus.FieldLogger) *UserService {
	return &UserService{store: st, mailbox: mailbox, openingBalance: openingBalance, logger: logger}
}

func (s *UserService) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	req.Correo = strings.TrimSpace(req.Correo)
	req.Telefono = validator.NormalizeTelefono(req.Telefono)
	req.Cuenta = strings.TrimSpace(req.Cuenta)
	if err := validateRegistration(req); err != nil {
		return models.User{}, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}
	var created models.User
	err = s.store.WithTx(ctx, func(repos store.Repositories) error {
		existing, err := repos.Users().GetAll(ctx)
		if err != nil {
			return err
		}
		candidate := models.User{
			Nombre:       strings.TrimSpace(req.Nombre),
			Apellidos:    strings.TrimSpace(req.Apellidos),
			Telefono:     req.Telefono,
			Correo:       req.Correo,
			PasswordHash: hash,
			Cuenta:       req.Cuenta,
		}
		if err := checkUnique(existing, candidate); err != nil {
			return err
		}
		if candidate.Cuenta == "" {
			candidate.Cuenta, err = newCuenta(existing)
			if err != nil {
				return err
			}
		}
		created, err = repos.Users().Add(ctx, candidate)
		if errors.Is(err, store.ErrDuplicate) {
			return &DuplicateError{Field: "correo"}
		}
		if err != nil {
			return err
		}
		if s.openingBalance <= 0 {
			return nil
		}
		_, err = repos.Transactions().Add(ctx, models.Transaction{
			UserID:   created.ID,
			Tipo:     models.TransactionInitial,
			Concepto: "Saldo inicial",
			Monto:    s.openingBalance,
			Fecha:    created.FechaCreacion,
		})
		return err
	})
	if err != nil {
		return models.User{}, err
	}
	s.logger.WithField("user_id", created.ID).Info("user registered")
	s.mailbox.Notify(ctx, created.ID, "Bienvenido a AhorraAPP",
		fmt.Sprintf("Hola %s, tu cuenta %s ya está activa.", created.Nombre, created.Cuenta))
	return created, nil
}

func (s *UserService) GetProfile(ctx context.Context, id string) (models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, &NotFoundError{Entity: "user", Key: id}
	}
	return user, err
}

// UpdateProfile keeps the session pointer on the user when the correo changes.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (models.User, error) {
	patch, err := s.buildPatch(update)
	if err != nil {
		return models.User{}, err
	}
	var updated models.User
	err = s.store.WithTx(ctx, func(repos store.Repositories) error {
		current, err := repos.Users().GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return &NotFoundError{Entity: "user", Key: id}
		}
		if err != nil {
			return err
		}
		existing, err := repos.Users().GetAll(ctx)
		if err != nil {
			return err
		}
		others := make([]models.User, 0, len(existing))
		for _, user := range existing {
			if user.ID != id {
				others = append(others, user)
			}
		}
		if err := checkUnique(others, patch.Apply(current)); err != nil {
			return err
		}
		updated, err = repos.Users().Update(ctx, id, patch)
		if errors.Is(err, store.ErrDuplicate) {
			return &DuplicateError{Field: "correo"}
		}
		if err != nil {
			return err
		}
		if strings.EqualFold(current.Correo, updated.Correo) {
			return nil
		}
		sessions := NewSessionStore(repos.Meta())
		pointer, ok, err := sessions.GetCurrent(ctx)
		if err != nil || !ok || !strings.EqualFold(pointer, current.Correo) {
			return err
		}
		return sessions.SetCurrent(ctx, updated.Correo)
	})
	if err != nil {
		return models.User{}, err
	}
	return updated, nil
}

func (s *UserService) buildPatch(update ProfileUpdate) (models.UserPatch, error) {
	var patch models.UserPatch
	if update.Nombre != nil {
		if err := validator.ValidateNombre(*update.Nombre); err != nil {
			return patch, &ValidationError{Field: "nombre", Message: "nombre is required"}
		}
		nombre := strings.TrimSpace(*update.Nombre)
		patch.Nombre = &nombre
	}
	if update.Apellidos != nil {
		apellidos := strings.TrimSpace(*update.Apellidos)
		patch.Apellidos = &apellidos
	}
	if update.Telefono != nil {
		telefono := validator.NormalizeTelefono(*update.Telefono)
		if err := validator.ValidateTelefono(telefono); err != nil {
			return patch, &ValidationError{Field: "telefono", Message: "telefono must have 7 to 15 digits"}
		}
		patch.Telefono = &telefono
	}
	if update.Correo != nil {
		correo := strings.TrimSpace(*update.Correo)
		if err := validator.ValidateCorreo(correo); err != nil {
			return patch, &ValidationError{Field: "correo", Message: "correo is not a valid address"}
		}
		patch.Correo = &correo
	}
	if update.Password != nil {
		if err := validator.ValidatePassword(*update.Password); err != nil {
			return patch, passwordValidationError()
		}
		hash, err := auth.HashPassword(*update.Password)
		if err != nil {
			return patch, err
		}
		patch.PasswordHash = &hash
	}
	return patch, nil
}

func validateRegistration(req RegisterRequest) error {
	if err := validator.ValidateNombre(req.Nombre); err != nil {
		return &ValidationError{Field: "nombre", Message: "nombre is required"}
	}
	if err := validator.ValidateCorreo(req.Correo); err != nil {
		return &ValidationError{Field: "correo", Message: "correo is not a valid address"}
	}
	if err := validator.ValidateTelefono(req.Telefono); err != nil {
		return &ValidationError{Field: "telefono", Message: "telefono must have 7 to 15 digits"}
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		return passwordValidationError()
	}
	if req.Cuenta != "" {
		if err := validator.ValidateCuenta(req.Cuenta); err != nil {
			return &ValidationError{Field: "cuenta", Message: "cuenta must have 16 digits"}
		}
	}
	return nil
}

func passwordValidationError() error {
	return &ValidationError{
		Field:   "password",
		Message: fmt.Sprintf("password must have at least %d characters", validator.MinPasswordLength),
	}
}

// checkUnique scans existing users the way registration always has: correo ignoring case, telefono and cuenta exactly.
func checkUnique(existing []models.User, candidate models.User) error {
	for _, user := range existing {
		switch {
		case strings.EqualFold(user.Correo, candidate.Correo):
			return &DuplicateError{Field: "correo"}
		case candidate.Telefono != "" && user.Telefono == candidate.Telefono:
			return &DuplicateError{Field: "telefono"}
		case candidate.Cuenta != "" && user.Cuenta == candidate.Cuenta:
			return &DuplicateError{Field: "cuenta"}
		}
	}
	return nil
}

func newCuenta(existing []models.User) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, user := range existing {
		taken[user.Cuenta] = struct{}{}
	}
	for i := 0; i < cuentaAttempts; i++ {
		cuenta, err := randomDigits(cuentaDigits)
		if err != nil {
			return "", err
		}
		if _, ok := taken[cuenta]; !ok {
			return cuenta, nil
		}
	}
	return "", errors.New("could not generate a free cuenta")
}

func randomDigits(n int) (string, error) {
	var b strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		digit, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		if i == 0 && digit.Sign() == 0 {
			digit = big.NewInt(1)
		}
		b.WriteString(digit.String())
	}
	return b.String(), nil
}
