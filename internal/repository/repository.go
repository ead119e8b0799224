package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
)

// MaxAttempts is the number of failed lookups after which a task is no longer fetched.
const MaxAttempts = 5

// Interface is the task store used by the geocoding service.
type Interface interface {
	FetchTasksForGeocoding(ctx context.Context, limit int) ([]models.Task, error)
	UpdateTaskLocation(ctx context.Context, taskID int, loc models.Location) error
	RecordFailure(ctx context.Context, taskID int, kind, errMsg string) error
}

// Repository implements Interface on top of PostgreSQL.
type Repository struct {
	db  Database
	log *slog.Logger
}

// NewRepository creates a Repository backed by db.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
