// Package list реализует HTTP-обработчик списка записей настроения пользователя.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mood-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mood-tracker/internal/http/response"
	"github.com/magabrotheeeer/mood-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/mood-tracker/internal/models"
	"github.com/magabrotheeeer/mood-tracker/internal/storage/repository"
)

// Handler управляет HTTP-запросами на получение списка записей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка записей.
type Service interface {
	List(ctx context.Context, username string, skip, limit int) ([]*models.Entry, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список записей настроения
// @Description Возвращает записи текущего пользователя, новые первыми, с пагинацией skip/limit.
// @Tags Tracker
// @Produce json
// @Param skip query int false "Сколько записей пропустить" default(0)
// @Param limit query int false "Максимум записей в ответе" default(100)
// @Success 200 {object} response.Response "Список записей"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /tracker [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tracker.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	skip, err := strconv.Atoi(r.URL.Query().Get("skip"))
	if err != nil || skip < 0 {
		skip = 0
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.Header().Set("WWW-Authenticate", "Bearer")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	entries, err := h.service.List(r.Context(), username, skip, limit)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Error("user not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to list entries", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list entries"))
		return
	}

	log.Info("listed entries", slog.Int("count", len(entries)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":   len(entries),
		"entries": entries,
	}))
}
