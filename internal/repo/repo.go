package repo

import "errors"

var (
	// ErrNotFound — запись по индексу или пользователь по логину не найдены.
	ErrNotFound = errors.New("not found")
	// ErrPersistence — не удалось прочитать или записать хранилище записей/пользователей.
	ErrPersistence = errors.New("persistence error")
	// ErrIO — ошибка файловых операций с вложениями.
	ErrIO = errors.New("attachment io error")
)
