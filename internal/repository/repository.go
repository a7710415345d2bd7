package repository

import (
	"context"
	"database/sql"
	"time"

	bc "boiler_controller"
	"boiler_controller/internal/control"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*bc.User, error)
	Count(ctx context.Context) (int, error)
}

// SettingsRepo keeps the restorable controller state in a single row.
type SettingsRepo interface {
	Save(ctx context.Context, p control.Persisted) error
	// Load reports found=false when nothing was saved yet.
	Load(ctx context.Context) (p control.Persisted, found bool, err error)
}

type EventRepo interface {
	Append(ctx context.Context, e bc.BoilerEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]bc.BoilerEvent, error)
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Repository struct {
	Settings  SettingsRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Settings:  NewSettingsSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
