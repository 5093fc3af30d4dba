package service

import (
	"FormIntake/internal/model"
	"FormIntake/internal/repo"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrValidation — не заполнено обязательное поле.
var ErrValidation = errors.New("validation error")

// Имена полей формы, под которыми приходят файлы. Используются и как префикс имени файла.
const (
	FieldDocument = "document_file"
	FieldPhoto    = "photo_file"
)

// csvDateLayout — отображаемая форма даты в CSV-выгрузке.
const csvDateLayout = "1/2/2006, 3:04:05 PM"

var csvHeader = []string{"Name", "Surname", "Phone", "Residence", "Workplace", "Date"}

// Upload — загруженный файл из multipart-формы.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Export — готовая CSV-выгрузка одной записи.
type Export struct {
	Filename string
	Content  []byte
}

// RecordService связывает хранилище анкет и хранилище вложений.
type RecordService struct {
	records     repo.RecordRepository
	attachments repo.AttachmentStore
	logger      *zap.SugaredLogger
	loc         *time.Location
}

func NewRecordService(records repo.RecordRepository, attachments repo.AttachmentStore, logger *zap.SugaredLogger) *RecordService {
	return &RecordService{records: records, attachments: attachments, logger: logger, loc: time.Local}
}

func validate(f model.RecordFields) error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(f.Surname) == "":
		return fmt.Errorf("%w: surname is required", ErrValidation)
	case strings.TrimSpace(f.Phone) == "":
		return fmt.Errorf("%w: phone is required", ErrValidation)
	}
	return nil
}

// Submit сохраняет файлы и добавляет анкету в конец коллекции.
// Если запись сохранить не удалось, уже сохранённые файлы удаляются.
func (s *RecordService) Submit(ctx context.Context, fields model.RecordFields, document, photo *Upload) (*model.Record, error) {
	if err := validate(fields); err != nil {
		return nil, err
	}

	rec := &model.Record{RecordFields: fields}
	var stored []string
	for _, u := range []struct {
		field  string
		upload *Upload
		target **string
	}{
		{FieldDocument, document, &rec.DocumentFile},
		{FieldPhoto, photo, &rec.PhotoFile},
	} {
		if u.upload == nil {
			continue
		}
		name, err := s.attachments.Store(ctx, u.field, u.upload.Filename, u.upload.Content)
		if err != nil {
			s.releaseAll(ctx, stored)
			return nil, fmt.Errorf("store %s: %w", u.field, err)
		}
		stored = append(stored, name)
		*u.target = &name
	}

	s.logger.Infow("Submit: uploaded files", "document_file", deref(rec.DocumentFile), "photo_file", deref(rec.PhotoFile))

	if err := s.records.Append(ctx, rec); err != nil {
		s.releaseAll(ctx, stored)
		return nil, fmt.Errorf("append record: %w", err)
	}
	return rec, nil
}

func (s *RecordService) List(ctx context.Context) ([]model.Record, error) {
	return s.records.List(ctx)
}

func (s *RecordService) Get(ctx context.Context, index int) (*model.Record, error) {
	return s.records.Get(ctx, index)
}

// Update меняет только изменяемые поля записи.
func (s *RecordService) Update(ctx context.Context, index int, fields model.RecordFields) error {
	if err := validate(fields); err != nil {
		return err
	}
	return s.records.Update(ctx, index, fields)
}

// Delete удаляет запись и освобождает её вложения.
// Ошибка удаления файла только логируется: запись к этому моменту уже удалена.
func (s *RecordService) Delete(ctx context.Context, index int) (*model.Record, error) {
	removed, err := s.records.Delete(ctx, index)
	if err != nil {
		return nil, err
	}
	s.releaseAll(ctx, removed.Attachments())
	return removed, nil
}

// ExportCSV строит CSV из заголовка и одной строки данных.
// Значения не экранируются от формул (ведущие =, +, -, @).
func (s *RecordService) ExportCSV(ctx context.Context, index int) (*Export, error) {
	rec, err := s.records.Get(ctx, index)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(csvHeader)
	_ = w.Write([]string{
		rec.Name,
		rec.Surname,
		rec.Phone,
		rec.Residence,
		rec.Workplace,
		rec.CreatedAt.In(s.loc).Format(csvDateLayout),
	})
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	return &Export{
		Filename: fmt.Sprintf("%s_%s_data.csv", rec.Name, rec.Surname),
		Content:  buf.Bytes(),
	}, nil
}

func (s *RecordService) releaseAll(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.attachments.Release(ctx, name); err != nil {
			s.logger.Warnw("failed to release attachment", "file", name, "error", err)
		}
	}
}

func deref(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
