package repo

import (
	"FormIntake/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// gormRecordRepo — реализация RecordRepository поверх SQL-таблицы.
// Порядок коллекции задаётся автоинкрементным id, позиционный индекс
// переводится в строку через ORDER BY id OFFSET index.
type gormRecordRepo struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormRecordRepository создаёт SQL-реализацию репозитория записей.
func NewGormRecordRepository(db *gorm.DB) RecordRepository {
	return &gormRecordRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *gormRecordRepo) List(ctx context.Context) ([]model.Record, error) {
	records := []model.Record{}
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: list records: %v", ErrPersistence, err)
	}
	return records, nil
}

func (r *gormRecordRepo) Append(ctx context.Context, rec *model.Record) error {
	rec.ID = 0
	rec.CreatedAt = r.now()
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("%w: append record: %v", ErrPersistence, err)
	}
	return nil
}

// byIndex находит строку, стоящую на позиции index.
func byIndex(tx *gorm.DB, index int) (*model.Record, error) {
	if index < 0 {
		return nil, ErrNotFound
	}
	var rec model.Record
	err := tx.Order("id").Offset(index).Limit(1).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get record %d: %v", ErrPersistence, index, err)
	}
	return &rec, nil
}

func (r *gormRecordRepo) Get(ctx context.Context, index int) (*model.Record, error) {
	return byIndex(r.db.WithContext(ctx), index)
}

func (r *gormRecordRepo) Update(ctx context.Context, index int, fields model.RecordFields) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := byIndex(tx, index)
		if err != nil {
			return err
		}
		// map, чтобы пустые строки тоже записывались
		updates := map[string]any{
			"name":      fields.Name,
			"surname":   fields.Surname,
			"phone":     fields.Phone,
			"residence": fields.Residence,
			"workplace": fields.Workplace,
		}
		if err := tx.Model(&model.Record{}).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("%w: update record %d: %v", ErrPersistence, index, err)
		}
		return nil
	})
}

func (r *gormRecordRepo) Delete(ctx context.Context, index int) (*model.Record, error) {
	var removed *model.Record
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := byIndex(tx, index)
		if err != nil {
			return err
		}
		if err := tx.Delete(&model.Record{}, rec.ID).Error; err != nil {
			return fmt.Errorf("%w: delete record %d: %v", ErrPersistence, index, err)
		}
		removed = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
