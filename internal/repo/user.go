package repo

import (
	"FormIntake/internal/model"
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrLoginExists — пользователь с таким логином уже есть.
var ErrLoginExists = errors.New("login already exists")

// UserRepository — хранилище учётных записей администраторов.
// После начального заполнения используется только на чтение.
type UserRepository interface {
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	Count(ctx context.Context) (int64, error)
}

// jsonUserRepo хранит пользователей массивом {username, password} в JSON-файле.
type jsonUserRepo struct {
	path string
}

// NewJSONUserRepository создаёт файловый репозиторий пользователей.
func NewJSONUserRepository(path string) UserRepository {
	return &jsonUserRepo{path: path}
}

func (r *jsonUserRepo) load() ([]model.User, error) {
	users := []model.User{}
	if err := readJSONFile(r.path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *jsonUserRepo) GetUserByLogin(_ context.Context, login string) (*model.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Login == login {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *jsonUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Login == user.Login {
			return nil, ErrLoginExists
		}
	}
	user.ID = int64(len(users) + 1)
	users = append(users, *user)
	if err := writeJSONFile(r.path, users); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *jsonUserRepo) Count(_ context.Context) (int64, error) {
	users, err := r.load()
	if err != nil {
		return 0, err
	}
	return int64(len(users)), nil
}

type gormUserRepo struct {
	db *gorm.DB
}

// NewGormUserRepository создаёт SQL-реализацию репозитория пользователей.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepo{db: db}
}

func (r *gormUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("login = ?", login).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user: %v", ErrPersistence, err)
	}
	return &u, nil
}

func (r *gormUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "login"}},
		DoNothing: true,
	}).Create(user)
	if tx.Error != nil {
		if strings.Contains(strings.ToLower(tx.Error.Error()), "unique") {
			return nil, ErrLoginExists
		}
		return nil, fmt.Errorf("%w: create user: %v", ErrPersistence, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, ErrLoginExists
	}
	return user, nil
}

func (r *gormUserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: count users: %v", ErrPersistence, err)
	}
	return n, nil
}
