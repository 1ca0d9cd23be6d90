package store

import (
	"context"
	"database/sql"
	"errors"
)

type MetaStore struct {
	db DB
}

func NewMetaStore(db DB) *MetaStore {
	return &MetaStore{db: db}
}

func (s *MetaStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query), key, value)
	return wrap("meta.set", err)
}

func (s *MetaStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`SELECT value FROM meta WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("meta.get", err)
	}
	return value, true, nil
}

func (s *MetaStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM meta WHERE key = ?`), key)
	return wrap("meta.delete", err)
}
