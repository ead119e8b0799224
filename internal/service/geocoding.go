package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/atlas-mapquest/internal/geocoding"
	"github.com/UnknownOlympus/atlas-mapquest/internal/metrics"
	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
	"github.com/UnknownOlympus/atlas-mapquest/internal/repository"
)

// Options tunes the geocoding service.
type Options struct {
	Workers       int           // Number of concurrent workers for processing
	PollInterval  time.Duration // Interval for polling geocoding updates
	AddressPrefix string        // Prefix added to every address (country, city, ...)
	ResultLimit   int           // Results requested per address, the first one is stored
}

// GeocodingService provides methods for geocoding operations,
// including logging, repository access, provider integration,
// metrics tracking, and worker management.
type GeocodingService struct {
	log      *slog.Logger         // Logger for logging service activities
	repo     repository.Interface // Interface for data repository access
	provider geocoding.Provider   // Geocoding provider for external geocoding services
	metrics  *metrics.Metrics     // Metrics for tracking service performance
	opts     Options
}

// NewGeocodingService creates a new instance of GeocodingService.
func NewGeocodingService(
	log *slog.Logger,
	repo repository.Interface,
	provider geocoding.Provider,
	metrics *metrics.Metrics,
	opts Options,
) *GeocodingService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ResultLimit < 1 {
		opts.ResultLimit = 1
	}

	return &GeocodingService{
		log:      log,
		repo:     repo,
		provider: provider,
		metrics:  metrics,
		opts:     opts,
	}
}

// Run starts the geocoding service, which periodically polls for new tasks to geocode.
// It listens for a cancellation signal from the context to gracefully stop the service.
func (gs *GeocodingService) Run(ctx context.Context) {
	ticker := time.NewTicker(gs.opts.PollInterval)
	defer ticker.Stop()

	gs.log.InfoContext(ctx, "Geocoding service started...", "provider", gs.provider.Name())

	for {
		select {
		case <-ctx.Done():
			gs.log.InfoContext(ctx, "Geocoding service stopped.")
			return
		case <-ticker.C:
			gs.log.InfoContext(ctx, "Polling for new tasks to geocode...")
			gs.processTask(ctx)
		}
	}
}

// processTask fetches tasks for geocoding from the repository, starts a worker pool to process the tasks,
// and waits for all workers to finish.
func (gs *GeocodingService) processTask(ctx context.Context) {
	taskLimit := 100
	tasks, err := gs.repo.FetchTasksForGeocoding(ctx, taskLimit)
	if err != nil {
		gs.log.ErrorContext(ctx, "Failed to fetch tasks", "error", err)
		return
	}
	if len(tasks) == 0 {
		gs.log.InfoContext(ctx, "No tasks to process.")
		return
	}

	gs.log.InfoContext(
		ctx,
		"Found tasks to process. Starting worker pool.",
		"jobs",
		len(tasks),
		"num_workers",
		gs.opts.Workers,
	)

	jobs := make(chan models.Task, len(tasks))
	var wgr sync.WaitGroup

	for i := 1; i <= gs.opts.Workers; i++ {
		wgr.Add(1)
		go gs.worker(ctx, i, &wgr, jobs)
	}

	for _, task := range tasks {
		jobs <- task
	}
	close(jobs)

	wgr.Wait()
	gs.log.InfoContext(ctx, "Processing batch finished")
}

// worker processes tasks from the jobs channel until it is closed.
func (gs *GeocodingService) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.Task) {
	defer wg.Done()
	for task := range jobs {
		gs.metrics.ActiveWorkers.Inc()
		gs.handle(ctx, idx, task)
		gs.metrics.ActiveWorkers.Dec()
	}
}

// handle geocodes a single task and stores the first location found.
// Failures consume one of the task's attempts, except credential errors:
// those are a configuration problem and would fail every task alike.
func (gs *GeocodingService) handle(ctx context.Context, idx int, task models.Task) {
	gs.log.DebugContext(ctx, "Processing task", "worker", idx, "task", task.ID, "attempts", task.Attempts)

	name := gs.provider.Name()
	query := geocoding.GeocodeQuery{Text: gs.opts.AddressPrefix + task.Address, Limit: gs.opts.ResultLimit}

	startTime := time.Now()
	locations, err := gs.provider.Geocode(ctx, query)
	gs.metrics.RequestSeconds.WithLabelValues(name).Observe(time.Since(startTime).Seconds())
	if err == nil && len(locations) == 0 {
		err = geocoding.ErrZeroResults
	}

	if err != nil {
		kind := geocoding.KindOf(err)
		gs.metrics.APIErrors.WithLabelValues(name, kind.String()).Inc()
		gs.log.ErrorContext(ctx, "Failed to geocode", "worker", idx, "task", task.ID, "kind", kind, "error", err)

		if errors.Is(err, geocoding.ErrInvalidCredentials) {
			gs.metrics.TaskProcessed.WithLabelValues("skipped").Inc()
			return
		}
		gs.metrics.TaskProcessed.WithLabelValues("failure").Inc()

		if err = gs.repo.RecordFailure(ctx, task.ID, kind.String(), err.Error()); err != nil {
			gs.log.ErrorContext(
				ctx,
				"Could not update failure count for task",
				"worker", idx,
				"task", task.ID,
				"error", err,
			)
		}
		return
	}

	gs.metrics.TaskProcessed.WithLabelValues("success").Inc()
	gs.metrics.ResultsFound.Observe(float64(len(locations)))

	if err = gs.repo.UpdateTaskLocation(ctx, task.ID, locations[0]); err != nil {
		gs.log.ErrorContext(
			ctx,
			"Failed to update location for task",
			"worker", idx,
			"task", task.ID,
			"error", err,
		)
		return
	}

	gs.log.DebugContext(ctx, "Worker successfully processed the task", "worker", idx, "task", task.ID)
}
