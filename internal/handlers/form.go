package handlers

import (
	"FormIntake/internal/model"
	"FormIntake/internal/service"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
)

// multipartMemory — сколько формы держим в памяти, остальное уходит во временные файлы.
const multipartMemory = 10 << 20

// FormHandler — публичная анкета.
type FormHandler struct {
	baseHandler
	records *service.RecordService
}

func NewFormHandler(records *service.RecordService, base baseHandler) *FormHandler {
	return &FormHandler{baseHandler: base, records: records}
}

// Index показывает пустую форму.
func (h *FormHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "index", h.page(r))
}

func formFields(r *http.Request) model.RecordFields {
	return model.RecordFields{
		Name:      strings.TrimSpace(r.FormValue("name")),
		Surname:   strings.TrimSpace(r.FormValue("surname")),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
		Residence: strings.TrimSpace(r.FormValue("residence")),
		Workplace: strings.TrimSpace(r.FormValue("workplace")),
	}
}

// formUpload достаёт файл из поля; отсутствие файла — nil без ошибки.
func formUpload(r *http.Request, field string) (*service.Upload, func(), error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return &service.Upload{Filename: hdr.Filename, Content: f}, func() { _ = f.Close() }, nil
}

// Submit принимает анкету с двумя необязательными файлами.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.cfg.UploadMaxMB)<<20)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderError(w, r, http.StatusRequestEntityTooLarge, "Upload too large", "The submitted files exceed the allowed size.")
			return
		}
		h.logger.Warnw("Submit: invalid form", "error", err)
		h.renderError(w, r, http.StatusBadRequest, "Invalid form", "The submitted form could not be read.")
		return
	}
	if r.MultipartForm != nil {
		defer func(f *multipart.Form) { _ = f.RemoveAll() }(r.MultipartForm)
	}

	document, closeDoc, err := formUpload(r, service.FieldDocument)
	if err != nil {
		h.fail(w, r, err, "saving the data")
		return
	}
	defer closeDoc()
	photo, closePhoto, err := formUpload(r, service.FieldPhoto)
	if err != nil {
		h.fail(w, r, err, "saving the data")
		return
	}
	defer closePhoto()

	if _, err := h.records.Submit(r.Context(), formFields(r), document, photo); err != nil {
		h.fail(w, r, err, "saving the data")
		return
	}

	d := h.page(r)
	d.Message = "Your data has been saved successfully!"
	h.renderer.Render(w, http.StatusOK, "success", d)
}
