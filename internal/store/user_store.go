package store

import (
	"context"
	"time"

	"ahorra/internal/models"

	"github.com/google/uuid"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, nombre, apellidos, telefono, correo, password_hash, cuenta, fecha_creacion`

func (s *UserStore) GetAll(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, s.db.Rebind(`SELECT `+userColumns+` FROM usuarios ORDER BY seq`))
	if err != nil {
		return nil, wrap("users.get_all", err)
	}
	return users, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(`SELECT `+userColumns+` FROM usuarios WHERE id = ?`), id)
	if err != nil {
		return models.User{}, wrap("users.get_by_id", notFoundOr(err))
	}
	return user, nil
}

func (s *UserStore) Add(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.FechaCreacion.IsZero() {
		user.FechaCreacion = time.Now().UTC()
	}
	query := `
		INSERT INTO usuarios (id, nombre, apellidos, telefono, correo, password_hash, cuenta, fecha_creacion)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		user.ID, user.Nombre, user.Apellidos, user.Telefono, user.Correo, user.PasswordHash, user.Cuenta, user.FechaCreacion)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, wrap("users.add", err)
	}
	return user, nil
}

func (s *UserStore) Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	updated := patch.Apply(current)
	query := `
		UPDATE usuarios
		SET nombre = ?, apellidos = ?, telefono = ?, correo = ?, password_hash = ?, cuenta = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		updated.Nombre, updated.Apellidos, updated.Telefono, updated.Correo, updated.PasswordHash, updated.Cuenta, id)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, wrap("users.update", err)
	}
	if err := expectAffected(result); err != nil {
		return models.User{}, wrap("users.update", err)
	}
	return updated, nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM usuarios WHERE id = ?`), id)
	if err != nil {
		return wrap("users.delete", err)
	}
	return wrap("users.delete", expectAffected(result))
}
