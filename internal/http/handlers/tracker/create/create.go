// Package create реализует HTTP-обработчик для создания новых записей настроения.
//
// Handler принимает JSON-запрос с оценкой и заметками, валидирует их, извлекает
// имя пользователя из контекста, вызывает бизнес-логику создания записи через
// сервис и возвращает созданную запись в JSON-формате.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/mood-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mood-tracker/internal/http/response"
	"github.com/magabrotheeeer/mood-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/mood-tracker/internal/models"
	trackerservice "github.com/magabrotheeeer/mood-tracker/internal/services/tracker"
	"github.com/magabrotheeeer/mood-tracker/internal/storage/repository"
)

// Handler управляет HTTP-запросами на создание записей настроения.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания записи.
type Service interface {
	Create(ctx context.Context, username string, req models.DummyEntry) (*models.Entry, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать новую запись настроения
// @Description Создает запись с оценкой от 1 до 5 и необязательными заметками.
// @Tags Tracker
// @Accept  json
// @Produce json
// @Param request body models.DummyEntry true "Данные новой записи"
// @Success 201 {object} response.Response "Созданная запись"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tracker [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tracker.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyEntry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Int("mood_rating", req.MoodRating))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.Header().Set("WWW-Authenticate", "Bearer")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	entry, err := h.service.Create(r.Context(), username, req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Error("user not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		if errors.Is(err, trackerservice.ErrInvalidRating) {
			log.Error("invalid mood rating", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("mood rating must be between 1 and 5"))
			return
		}
		log.Error("failed to create entry", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create entry"))
		return
	}

	log.Info("created new entry", slog.Int("id", entry.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(entry))
}
