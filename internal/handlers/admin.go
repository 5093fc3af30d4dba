package handlers

import (
	"FormIntake/internal/middleware"
	"FormIntake/internal/service"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// AdminHandler — вход администратора и управление анкетами.
type AdminHandler struct {
	baseHandler
	users    *service.UserService
	records  *service.RecordService
	sessions *middleware.Sessions
}

func NewAdminHandler(users *service.UserService, records *service.RecordService, sessions *middleware.Sessions, base baseHandler) *AdminHandler {
	return &AdminHandler{baseHandler: base, users: users, records: records, sessions: sessions}
}

// indexParam разбирает {index}; нечисловой индекс считается несуществующим.
func indexParam(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return i
}

func redirectWithSuccess(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/data?success="+url.QueryEscape(msg), http.StatusFound)
}

// LoginPage показывает форму входа; уже вошедшего администратора отправляет к списку.
func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.IsAdmin(r.Context(), h.cfg.AdminUsername) {
		http.Redirect(w, r, "/data", http.StatusFound)
		return
	}
	h.renderer.Render(w, http.StatusOK, "login", h.page(r))
}

// Login проверяет учётные данные и открывает сессию.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, http.StatusBadRequest, "login", PageData{Error: "Invalid request"})
		return
	}
	username := r.PostFormValue("username")

	user, err := h.users.Login(r.Context(), username, r.PostFormValue("password"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.logger.Infow("Login: invalid credentials", "username", username)
		h.renderer.Render(w, http.StatusUnauthorized, "login", PageData{Error: "Invalid username or password"})
		return
	}
	if err != nil {
		h.fail(w, r, err, "login")
		return
	}

	if err := h.sessions.SetLoginCookie(w, user.Login); err != nil {
		h.fail(w, r, err, "login")
		return
	}
	http.Redirect(w, r, "/data", http.StatusFound)
}

// Logout завершает сессию и возвращает на главную.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

// List — все анкеты в порядке поступления.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.List(r.Context())
	if err != nil {
		h.fail(w, r, err, "loading the records")
		return
	}
	d := h.page(r)
	d.Records = records
	d.Success = r.URL.Query().Get("success")
	h.renderer.Render(w, http.StatusOK, "list", d)
}

// View — одна анкета.
func (h *AdminHandler) View(w http.ResponseWriter, r *http.Request) {
	h.showRecord(w, r, "view", "viewing")
}

// Edit — форма редактирования анкеты.
func (h *AdminHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.showRecord(w, r, "edit", "editing")
}

func (h *AdminHandler) showRecord(w http.ResponseWriter, r *http.Request, page, action string) {
	index := indexParam(chi.URLParam(r, "index"))
	rec, err := h.records.Get(r.Context(), index)
	if err != nil {
		h.fail(w, r, err, action)
		return
	}
	d := h.page(r)
	d.Record = rec
	d.Index = index
	h.renderer.Render(w, http.StatusOK, page, d)
}

// Update сохраняет изменения из формы редактирования.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Invalid form", "The submitted form could not be read.")
		return
	}
	index := indexParam(r.PostFormValue("index"))
	if err := h.records.Update(r.Context(), index, formFields(r)); err != nil {
		h.fail(w, r, err, "editing")
		return
	}
	redirectWithSuccess(w, r, "Record updated successfully")
}

// Delete удаляет анкету вместе с файлами.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	index := indexParam(chi.URLParam(r, "index"))
	if _, err := h.records.Delete(r.Context(), index); err != nil {
		h.fail(w, r, err, "deletion")
		return
	}
	redirectWithSuccess(w, r, "Record deleted successfully")
}

// Download отдаёт анкету в CSV.
func (h *AdminHandler) Download(w http.ResponseWriter, r *http.Request) {
	exp, err := h.records.ExportCSV(r.Context(), indexParam(chi.URLParam(r, "index")))
	if err != nil {
		h.fail(w, r, err, "download")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": exp.Filename})
	if disposition == "" {
		disposition = `attachment; filename="data.csv"`
	}
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Content)
}
