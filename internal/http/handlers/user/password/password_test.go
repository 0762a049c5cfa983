package password

import (
	"bytes"
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
	authservice "github.com/magabrotheeeer/mood-tracker/internal/services/auth"
	"github.com/magabrotheeeer/mood-tracker/internal/storage/repository"
)

// Мок сервиса смены пароля
type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) UpdatePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	args := m.Called(ctx, username, currentPassword, newPassword)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPasswordHandler_ServeHTTP(t *testing.T) {
	validBody := models.UpdatePasswordRequest{
		CurrentPassword: "oldpassword1",
		NewPassword:     "newpassword1",
	}

	tests := []struct {
		name             string
		requestBody      interface{}
		withUser         bool
		mockErr          error
		callService      bool
		wantStatusCode   int
		wantStatus       string
		wantError        string
		wantAuthenticate bool
	}{
		{
			name:           "successful password change",
			requestBody:    validBody,
			withUser:       true,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			withUser:       true,
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name: "validation error - missing current password",
			requestBody: models.UpdatePasswordRequest{
				NewPassword: "newpassword1",
			},
			withUser:       true,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field CurrentPassword is a required field",
		},
		{
			name:             "no authenticated user in context",
			requestBody:      validBody,
			withUser:         false,
			wantStatusCode:   http.StatusUnauthorized,
			wantStatus:       "Error",
			wantError:        "unauthorized",
			wantAuthenticate: true,
		},
		{
			name:           "new password equals current",
			requestBody:    validBody,
			withUser:       true,
			callService:    true,
			mockErr:        authservice.ErrSamePassword,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "new password must differ from current password",
		},
		{
			name:           "new password too short",
			requestBody:    validBody,
			withUser:       true,
			callService:    true,
			mockErr:        authservice.ErrPasswordTooShort,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "new password must be at least 8 characters",
		},
		{
			name:             "incorrect current password",
			requestBody:      validBody,
			withUser:         true,
			callService:      true,
			mockErr:          authservice.ErrInvalidCredentials,
			wantStatusCode:   http.StatusUnauthorized,
			wantStatus:       "Error",
			wantError:        "incorrect current password",
			wantAuthenticate: true,
		},
		{
			name:           "user not found",
			requestBody:    validBody,
			withUser:       true,
			callService:    true,
			mockErr:        repository.ErrUserNotFound,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "user not found",
		},
		{
			name:           "service error",
			requestBody:    validBody,
			withUser:       true,
			callService:    true,
			mockErr:        errors.New("storage error"),
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "could not update password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(AuthServiceMock)
			if tt.callService {
				serviceMock.On("UpdatePassword", mock.Anything,
					"user1",
					validBody.CurrentPassword,
					validBody.NewPassword,
				).Return(tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), serviceMock)

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPut, "/users/me/password", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.User, "user1")
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			if tt.wantAuthenticate {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
