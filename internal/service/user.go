package service

import (
	"FormIntake/internal/model"
	"FormIntake/internal/repo"
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials — неверный логин или пароль (без уточнения, что именно).
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash сравнивается при неизвестном логине, чтобы время ответа не выдавало,
// существует ли пользователь.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)

// UserService — вход администратора и начальное заполнение учётных записей.
type UserService struct {
	repo repo.UserRepository
}

func NewUserService(r repo.UserRepository) *UserService {
	return &UserService{repo: r}
}

// Login проверяет пару логин/пароль по bcrypt-хешу.
func (s *UserService) Login(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.repo.GetUserByLogin(ctx, login)
	if errors.Is(err, repo.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin создаёт единственного администратора, если хранилище пустое.
// Возвращает true, если учётная запись была создана.
func (s *UserService) EnsureAdmin(ctx context.Context, login, password string) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.repo.CreateUser(ctx, &model.User{Login: login, Password: string(hash)}); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
