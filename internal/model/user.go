package model

// User — учётная запись администратора.
type User struct {
	ID       int64  `gorm:"primaryKey" json:"-"`
	Login    string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"password"` // bcrypt-хеш, открытый пароль не хранится
}
