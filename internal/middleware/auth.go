package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName — имя cookie с подписанным токеном сессии.
const SessionCookieName = "session"

type ctxKey int

const (
	usernameKey ctxKey = iota
	sessionIDKey
)

// Sessions — сессии администратора на подписанных JWT-cookie.
// Срок жизни скользящий: каждый аутентифицированный запрос перевыпускает
// cookie, поэтому ttl отсчитывается от последней активности.
// Отозванные при logout токены хранятся в памяти до истечения их срока.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{
		secret:  []byte(secret),
		ttl:     ttl,
		secure:  secure,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (s *Sessions) sign(username, sessionID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Sessions) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetLoginCookie открывает новую сессию для username.
func (s *Sessions) SetLoginCookie(w http.ResponseWriter, username string) error {
	return s.issue(w, username, uuid.NewString())
}

func (s *Sessions) issue(w http.ResponseWriter, username, sessionID string) error {
	token, err := s.sign(username, sessionID)
	if err != nil {
		return err
	}
	s.setCookie(w, token, int(s.ttl/time.Second))
	return nil
}

// parse проверяет подпись, срок и отзыв токена из cookie.
func (s *Sessions) parse(r *http.Request) (*jwt.RegisteredClaims, error) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("session token without subject or id")
	}
	if s.isRevoked(claims.ID) {
		return nil, errors.New("session revoked")
	}
	return claims, nil
}

func (s *Sessions) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[id]
	if !ok {
		return false
	}
	if s.now().After(until) {
		delete(s.revoked, id)
		return false
	}
	return true
}

func (s *Sessions) revoke(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, until := range s.revoked {
		if now.After(until) {
			delete(s.revoked, k)
		}
	}
	// последний выпущенный токен живёт не дольше ttl от текущего момента
	s.revoked[id] = now.Add(s.ttl)
}

// WithAuth кладёт имя пользователя в контекст, если cookie сессии валидна,
// и продлевает сессию. Без cookie или с невалидной cookie запрос идёт дальше анонимно.
func (s *Sessions) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.parse(r)
		if err != nil {
			if !errors.Is(err, http.ErrNoCookie) {
				sugar.Debugw("session rejected", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		if err := s.issue(w, claims.Subject, claims.ID); err != nil {
			sugar.Warnw("session refresh failed", "error", err)
		}
		ctx := context.WithValue(r.Context(), usernameKey, claims.Subject)
		ctx = context.WithValue(ctx, sessionIDKey, claims.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logout безусловно завершает сессию: отзывает токен и стирает cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := r.Context().Value(sessionIDKey).(string); ok && id != "" {
		s.revoke(id)
	} else if claims, err := s.parse(r); err == nil {
		s.revoke(claims.ID)
	}
	s.setCookie(w, "", -1)
}

// GetUsernameFromContext возвращает имя пользователя аутентифицированной сессии.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(usernameKey).(string)
	return v, ok && v != ""
}

// IsAdmin — сессия аутентифицирована и принадлежит администратору.
func IsAdmin(ctx context.Context, admin string) bool {
	u, ok := GetUsernameFromContext(ctx)
	return ok && u == admin
}

// RequireAdmin пропускает только сессию администратора,
// остальных перенаправляет на страницу входа.
func RequireAdmin(admin, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdmin(r.Context(), admin) {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
