package summary

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mood-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mood-tracker/internal/models"
	"github.com/magabrotheeeer/mood-tracker/internal/storage/repository"
)

// Мок сервиса записей настроения
type TrackerServiceMock struct {
	mock.Mock
}

func (m *TrackerServiceMock) Summarize(ctx context.Context, username string) (*models.Summary, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Summary), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSummaryHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		withUser       bool
		mockSummary    *models.Summary
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:     "summary with entries",
			withUser: true,
			mockSummary: &models.Summary{
				AverageMood:  3.25,
				TotalEntries: 4,
				BestEntry:    &models.Entry{ID: 3, MoodRating: 5},
				WorstEntry:   &models.Entry{ID: 4, MoodRating: 1},
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "empty summary",
			withUser:       true,
			mockSummary:    &models.Summary{},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "no authenticated user in context",
			withUser:       false,
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "unauthorized",
		},
		{
			name:           "user not found",
			withUser:       true,
			mockErr:        repository.ErrUserNotFound,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "user not found",
		},
		{
			name:           "storage error",
			withUser:       true,
			mockErr:        errors.New("storage error"),
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "could not build summary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(TrackerServiceMock)
			if tt.mockSummary != nil || tt.mockErr != nil {
				serviceMock.On("Summarize", mock.Anything, "user1").
					Return(tt.mockSummary, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			req := httptest.NewRequest(http.MethodGet, "/tracker/summary", nil)
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.User, "user1")
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
				return
			}

			data, ok := got["data"].(map[string]any)
			assert.True(t, ok)
			assert.Equal(t, tt.mockSummary.AverageMood, data["average_mood"])
			assert.Equal(t, float64(tt.mockSummary.TotalEntries), data["total_entries"])
			if tt.mockSummary.BestEntry == nil {
				assert.Nil(t, data["best_entry"])
				assert.Nil(t, data["worst_entry"])
			} else {
				best, ok := data["best_entry"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(tt.mockSummary.BestEntry.MoodRating), best["mood_rating"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
