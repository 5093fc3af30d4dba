package handlers

import (
	"FormIntake/internal/config"
	"FormIntake/internal/middleware"
	"FormIntake/internal/repo"
	"FormIntake/internal/service"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const loginPath = "/admin"

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	recordService *service.RecordService,
	uploads http.FileSystem,
	sessions *middleware.Sessions,
	logger *zap.SugaredLogger,
	cfg *config.Config,
) (*Handler, error) {
	renderer, err := NewRenderer(logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.WithRecover)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(sessions.WithAuth)

	base := baseHandler{renderer: renderer, logger: logger, cfg: cfg}
	formHandler := NewFormHandler(recordService, base)
	adminHandler := NewAdminHandler(userService, recordService, sessions, base)

	// Публичные маршруты
	r.Get("/", formHandler.Index)
	r.Post("/submit", formHandler.Submit)
	r.Handle("/uploads/*", http.StripPrefix("/uploads", http.FileServer(uploads)))

	r.Get(loginPath, adminHandler.LoginPage)
	r.Post(loginPath+"/login", adminHandler.Login)
	r.Get("/logout", adminHandler.Logout)

	// Только для администратора
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(cfg.AdminUsername, loginPath))
		r.Get("/data", adminHandler.List)
		r.Get("/view/{index}", adminHandler.View)
		r.Get("/edit/{index}", adminHandler.Edit)
		r.Post("/update", adminHandler.Update)
		r.Get("/delete/{index}", adminHandler.Delete)
		r.Get("/download/{index}", adminHandler.Download)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		base.renderError(w, r, http.StatusNotFound, "Page not found", "The page you requested does not exist.")
	})

	return &Handler{Router: r}, nil
}

// baseHandler — общие зависимости и хелперы рендеринга.
type baseHandler struct {
	renderer *Renderer
	logger   *zap.SugaredLogger
	cfg      *config.Config
}

// page заполняет данные сессии для шаблона.
func (b baseHandler) page(r *http.Request) PageData {
	username, ok := middleware.GetUsernameFromContext(r.Context())
	return PageData{IsLoggedIn: ok, Username: username}
}

func (b baseHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message, description string) {
	d := b.page(r)
	d.Status = status
	d.Message = message
	d.Description = description
	b.renderer.Render(w, status, "error", d)
}

// fail переводит ошибку сервиса в одну из категорий ответа.
// Внутренние детали пользователю не показываются.
func (b baseHandler) fail(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		b.renderError(w, r, http.StatusNotFound, "Record not found", "The record selected for "+action+" was not found.")
	case errors.Is(err, service.ErrValidation):
		b.renderError(w, r, http.StatusBadRequest, "Invalid data", "Name, surname and phone are required.")
	default:
		b.logger.Errorw("request failed", "action", action, "uri", r.RequestURI, "error", err)
		b.renderError(w, r, http.StatusInternalServerError, "Server error", "An error occurred during "+action+".")
	}
}
