package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/atlas-mapquest/internal/geocoding"
	"github.com/UnknownOlympus/atlas-mapquest/internal/metrics"
	"github.com/UnknownOlympus/atlas-mapquest/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FetchTasksForGeocoding(ctx context.Context, limit int) ([]models.Task, error) {
	args := m.Called(ctx, limit)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *mockRepository) UpdateTaskLocation(ctx context.Context, taskID int, loc models.Location) error {
	return m.Called(ctx, taskID, loc).Error(0)
}

func (m *mockRepository) RecordFailure(ctx context.Context, taskID int, kind, errMsg string) error {
	return m.Called(ctx, taskID, kind, errMsg).Error(0)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Geocode(ctx context.Context, query geocoding.GeocodeQuery) ([]models.Location, error) {
	args := m.Called(ctx, query)
	locations, _ := args.Get(0).([]models.Location)
	return locations, args.Error(1)
}

func (m *mockProvider) ReverseGeocode(ctx context.Context, query geocoding.ReverseQuery) ([]models.Location, error) {
	args := m.Called(ctx, query)
	locations, _ := args.Get(0).([]models.Location)
	return locations, args.Error(1)
}

func (m *mockProvider) Name() string {
	return "mock"
}

func TestProcessTask(t *testing.T) {
	mockRepo := &mockRepository{}
	mockProvider := &mockProvider{}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)
	ctx := t.Context()
	service := NewGeocodingService(logger, mockRepo, mockProvider, appMetrics, Options{
		Workers:       2,
		PollInterval:  time.Second,
		AddressPrefix: "Ukraine, ",
		ResultLimit:   1,
	})
	query := func(address string) geocoding.GeocodeQuery {
		return geocoding.GeocodeQuery{Text: "Ukraine, " + address, Limit: 1}
	}

	t.Run("successfull processing", func(t *testing.T) {
		sampleTasks := []models.Task{{ID: 1, Address: "Kyiv"}}
		sampleLocations := []models.Location{
			{Latitude: 50.45, Longitude: 30.52, Locality: "Kyiv", ProvidedBy: "mock"},
			{Latitude: 1, Longitude: 1},
		}

		mockRepo.On("FetchTasksForGeocoding", ctx, 100).Return(sampleTasks, nil).Once()
		mockProvider.On("Geocode", ctx, query("Kyiv")).Return(sampleLocations, nil).Once()
		mockRepo.On("UpdateTaskLocation", ctx, 1, sampleLocations[0]).Return(nil).Once()

		service.processTask(ctx)

		mockRepo.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
		assert.InDelta(t, 1.0, testutil.ToFloat64(appMetrics.TaskProcessed.WithLabelValues("success")), 0)
		assert.Equal(t, 1, testutil.CollectAndCount(appMetrics.RequestSeconds))
	})

	t.Run("fetch tasks return error", func(t *testing.T) {
		mockRepo.On("FetchTasksForGeocoding", ctx, 100).Return(nil, assert.AnError).Once()

		service.processTask(ctx)

		mockRepo.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
	})

	t.Run("fetch tasks return empty list", func(t *testing.T) {
		mockRepo.On("FetchTasksForGeocoding", ctx, 100).Return([]models.Task{}, nil).Once()

		service.processTask(ctx)

		mockRepo.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
	})

	t.Run("geocoding provider returns error", func(t *testing.T) {
		sampleTasks := []models.Task{{ID: 2, Address: "Invalid Address"}}
		geocodeErr := &geocoding.Error{Kind: geocoding.KindZeroResults, URL: "https://example.test", Message: "no results"}

		mockRepo.On("FetchTasksForGeocoding", ctx, 100).Return(sampleTasks, nil).Once()
		mockProvider.On("Geocode", ctx, query("Invalid Address")).Return(nil, geocodeErr).Once()
		mockRepo.On("RecordFailure", ctx, 2, "zero_results", geocodeErr.Error()).Return(nil).Once()

		service.processTask(ctx)

		mockRepo.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
		assert.InDelta(t, 1.0, testutil.ToFloat64(appMetrics.APIErrors.WithLabelValues("mock", "zero_results")), 0)
	})

	t.Run("error to increment failure count", func(t *testing.T) {
		sampleTasks := []models.Task{{ID: 2, Address: "Invalid Address"}}
		geocodeErr := errors.New("geocoding failed")

		mockRepo.On("FetchTasksForGeocoding", ctx, 100).Return(sampleTasks, nil).Once()
		mockProvider.On("Geocode", ctx, query("Invalid Address")).Return(nil, geocodeErr).Once()
		mockRepo.On("RecordFailure", ctx, 2, "unknown", geocodeErr.Error()).Return(assert.AnError).Once()

		service.processTask(ctx)

		mockRepo.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
		assert.InDelta(t, 1.0, testutil.ToFloat64(appMetrics.APIErrors.WithLabelValues("mock", "unknown")), 0)
	})

	t.Run("invalid credentials keep the attempt budget", func(t *testing.T) {
		sampleTasks := []models.Task{{ID: 3, Address: "Lviv", Attempts: 2}}

		mockRepo.On("FetchTasksForGeocoding", ctx, 100).Return(sampleTasks, nil).Once()
		mockProvider.On("Geocode", ctx, query("Lviv")).Return(nil, geocoding.ErrInvalidCredentials).Once()

		service.processTask(ctx)

		mockRepo.AssertExpectations(t)
		mockRepo.AssertNotCalled(t, "RecordFailure", ctx, 3, mock.Anything, mock.Anything)
		mockProvider.AssertExpectations(t)
		assert.InDelta(t, 1.0, testutil.ToFloat64(appMetrics.TaskProcessed.WithLabelValues("skipped")), 0)
	})

	t.Run("empty result without error counts as failure", func(t *testing.T) {
		sampleTasks := []models.Task{{ID: 4, Address: "Odesa"}}

		mockRepo.On("FetchTasksForGeocoding", ctx, 100).Return(sampleTasks, nil).Once()
		mockProvider.On("Geocode", ctx, query("Odesa")).Return([]models.Location{}, nil).Once()
		mockRepo.On("RecordFailure", ctx, 4, "zero_results", geocoding.ErrZeroResults.Error()).Return(nil).Once()

		service.processTask(ctx)

		mockRepo.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
	})

	t.Run("error to update task location", func(t *testing.T) {
		sampleTasks := []models.Task{{ID: 1, Address: "Kyiv"}}
		sampleLocations := []models.Location{{Latitude: 50.45, Longitude: 30.52}}

		mockRepo.On("FetchTasksForGeocoding", ctx, 100).Return(sampleTasks, nil).Once()
		mockProvider.On("Geocode", ctx, query("Kyiv")).Return(sampleLocations, nil).Once()
		mockRepo.On("UpdateTaskLocation", ctx, 1, sampleLocations[0]).Return(assert.AnError).Once()

		service.processTask(ctx)

		mockRepo.AssertExpectations(t)
		mockProvider.AssertExpectations(t)
	})

	t.Run("start context cancelled", func(t *testing.T) {
		tctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()

		service.Run(tctx)
	})
}

func TestNewGeocodingService_Defaults(t *testing.T) {
	service := NewGeocodingService(slog.Default(), &mockRepository{}, &mockProvider{},
		metrics.NewMetrics(prometheus.NewRegistry()), Options{PollInterval: time.Second})

	assert.Equal(t, 1, service.opts.Workers)
	assert.Equal(t, 1, service.opts.ResultLimit)
}
