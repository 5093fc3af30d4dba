package repo

import (
	"FormIntake/internal/model"
	"context"
	"time"
)

// RecordRepository — упорядоченная коллекция анкет.
// Запись адресуется позицией: индекс валиден, если 0 <= index < len.
// После удаления записи все следующие сдвигаются на одну позицию вниз.
type RecordRepository interface {
	// List возвращает полный снимок коллекции в порядке добавления.
	List(ctx context.Context) ([]model.Record, error)

	// Append проставляет CreatedAt и сохраняет запись в конец коллекции.
	Append(ctx context.Context, rec *model.Record) error

	// Get возвращает запись по индексу или ErrNotFound.
	Get(ctx context.Context, index int) (*model.Record, error)

	// Update заменяет изменяемые поля; CreatedAt и ссылки на файлы не трогает.
	Update(ctx context.Context, index int, fields model.RecordFields) error

	// Delete удаляет запись и возвращает её, чтобы вызывающий освободил вложения.
	Delete(ctx context.Context, index int) (*model.Record, error)
}

// jsonRecordRepo хранит коллекцию одним JSON-документом.
// Кеша в памяти нет: каждое чтение грузит файл целиком, каждая мутация
// переписывает его целиком. Межзапросных блокировок нет, поэтому две
// параллельные мутации могут потерять одно из изменений (last writer wins).
type jsonRecordRepo struct {
	path string
	now  func() time.Time
}

// NewJSONRecordRepository создаёт репозиторий поверх файла path.
func NewJSONRecordRepository(path string) RecordRepository {
	return &jsonRecordRepo{path: path, now: func() time.Time { return time.Now().UTC() }}
}

func (r *jsonRecordRepo) load() ([]model.Record, error) {
	records := []model.Record{}
	if err := readJSONFile(r.path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *jsonRecordRepo) List(_ context.Context) ([]model.Record, error) {
	return r.load()
}

func (r *jsonRecordRepo) Append(_ context.Context, rec *model.Record) error {
	records, err := r.load()
	if err != nil {
		return err
	}
	rec.CreatedAt = r.now()
	records = append(records, *rec)
	return writeJSONFile(r.path, records)
}

func (r *jsonRecordRepo) Get(_ context.Context, index int) (*model.Record, error) {
	records, err := r.load()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(records) {
		return nil, ErrNotFound
	}
	rec := records[index]
	return &rec, nil
}

func (r *jsonRecordRepo) Update(_ context.Context, index int, fields model.RecordFields) error {
	records, err := r.load()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(records) {
		return ErrNotFound
	}
	records[index].RecordFields = fields
	return writeJSONFile(r.path, records)
}

func (r *jsonRecordRepo) Delete(_ context.Context, index int) (*model.Record, error) {
	records, err := r.load()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(records) {
		return nil, ErrNotFound
	}
	removed := records[index]
	records = append(records[:index], records[index+1:]...)
	if err := writeJSONFile(r.path, records); err != nil {
		return nil, err
	}
	return &removed, nil
}
