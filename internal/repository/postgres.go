package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
)

const (
	fetchTasksQuery = `
		SELECT task_id, address, geocoding_attempts
		FROM public.tasks
		WHERE latitude IS NULL
			AND is_closed = false
			AND geocoding_attempts < $1
			AND COALESCE(address, '') <> ''
		ORDER BY created_at ASC
		LIMIT $2;
	`

	updateLocationQuery = `
		UPDATE public.tasks
		SET latitude = $1,
			longitude = $2,
			street = NULLIF($3, ''),
			postal_code = NULLIF($4, ''),
			locality = NULLIF($5, ''),
			region = NULLIF($6, ''),
			country_code = NULLIF($7, ''),
			geocoding_provider = $8,
			geocoding_error = NULL,
			geocoding_error_kind = NULL
		WHERE task_id = $9;
	`

	recordFailureQuery = `
		UPDATE public.tasks
		SET geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1,
			geocoding_error_kind = $2
		WHERE task_id = $3;
	`
)

// FetchTasksForGeocoding returns up to limit open tasks that have an address,
// no coordinates yet and fewer than MaxAttempts failed lookups, oldest first.
func (r *Repository) FetchTasksForGeocoding(ctx context.Context, limit int) ([]models.Task, error) {
	rows, err := r.db.Query(ctx, fetchTasksQuery, MaxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks awaiting geocoding: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if errScan := rows.Scan(&task.ID, &task.Address, &task.Attempts); errScan != nil {
			return nil, fmt.Errorf("failed to scan task awaiting geocoding: %w", errScan)
		}
		r.log.DebugContext(ctx, "Task awaiting geocoding",
			"task", task.ID, "address", task.Address, "attempts", task.Attempts)
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return tasks, nil
}

// UpdateTaskLocation stores loc as the resolved location of the task and clears
// any error left by previous attempts. Absent address parts are stored as NULL.
func (r *Repository) UpdateTaskLocation(ctx context.Context, taskID int, loc models.Location) error {
	_, err := r.db.Exec(ctx, updateLocationQuery,
		loc.Latitude,
		loc.Longitude,
		loc.StreetName,
		loc.PostalCode,
		loc.Locality,
		loc.AdminLevel(1),
		loc.CountryCode,
		loc.ProvidedBy,
		taskID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task location: %w", err)
	}

	return nil
}

// RecordFailure counts one failed attempt for the task and keeps the error
// message and its kind for operators.
func (r *Repository) RecordFailure(ctx context.Context, taskID int, kind, errMsg string) error {
	_, err := r.db.Exec(ctx, recordFailureQuery, errMsg, kind, taskID)
	if err != nil {
		return fmt.Errorf("failed to record geocoding failure: %w", err)
	}

	return nil
}
