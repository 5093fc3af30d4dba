package model

import "time"

// RecordFields — изменяемые поля анкеты. Заполняются из публичной формы
// и из формы редактирования в админке.
type RecordFields struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Phone     string `json:"phone"`
	Residence string `json:"residence"`
	Workplace string `json:"workplace"`
}

// Record — одна отправленная анкета.
// Идентичность записи — её позиция в коллекции, стабильного ID нет.
type Record struct {
	ID uint `gorm:"primaryKey" json:"-"` // суррогатный ключ только для SQL-бэкенда

	RecordFields `gorm:"embedded"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`

	// Ссылки на файлы в каталоге вложений; nil — файл не загружался
	DocumentFile *string `json:"documentFile"`
	PhotoFile    *string `json:"photoFile"`
}

// Attachments возвращает имена всех файлов, привязанных к записи.
func (r *Record) Attachments() []string {
	var out []string
	for _, f := range []*string{r.DocumentFile, r.PhotoFile} {
		if f != nil && *f != "" {
			out = append(out, *f)
		}
	}
	return out
}
