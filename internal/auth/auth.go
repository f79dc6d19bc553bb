// Package auth: учётные записи учителей и сессии по токену.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Carsk101/acutea/internal/db"
	"github.com/Carsk101/acutea/internal/models"
)

var (
	ErrInvalidInput       = errors.New("некорректные данные")
	ErrEmailTaken         = errors.New("пользователь с таким email уже зарегистрирован")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrNoSession          = errors.New("сессия не найдена или истекла")
)

const DefaultTTL = 7 * 24 * time.Hour

type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateSession(ctx context.Context, s models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type EventKind string

const (
	SignedUp  EventKind = "signed_up"
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
	Expired   EventKind = "expired"
)

type Event struct {
	Kind    EventKind
	Session models.Session
}

// Listener вызывается синхронно, в той же горутине, что и изменение сессии.
type Listener func(Event)

type Provider struct {
	store    Store
	ttl      time.Duration
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
	cost     int

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

type Option func(*Provider)

func WithTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option { return func(p *Provider) { p.now = now } }

// WithBcryptCost: для тестов, где DefaultCost слишком медленный.
func WithBcryptCost(cost int) Option { return func(p *Provider) { p.cost = cost } }

func NewProvider(store Store, log *zap.Logger, opts ...Option) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Provider{
		store:     store,
		ttl:       DefaultTTL,
		log:       log,
		validate:  validator.New(),
		now:       time.Now,
		cost:      bcrypt.DefaultCost,
		listeners: map[int]Listener{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Subscribe регистрирует слушателя; возвращённая функция снимает подписку.
func (p *Provider) Subscribe(l Listener) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) emit(kind EventKind, s models.Session) {
	p.mu.RLock()
	ls := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		ls = append(ls, l)
	}
	p.mu.RUnlock()

	ev := Event{Kind: kind, Session: s}
	for _, l := range ls {
		l(ev)
	}
}

func (p *Provider) check(c *Credentials) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if err := p.validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			switch fe.Field() {
			case "Email":
				return fmt.Errorf("%w: укажите корректный email", ErrInvalidInput)
			case "Password":
				return fmt.Errorf("%w: пароль должен быть не короче 6 символов", ErrInvalidInput)
			}
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (p *Provider) SignUp(ctx context.Context, c Credentials) (*models.Session, error) {
	if err := p.check(&c); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), p.cost)
	if err != nil {
		return nil, err
	}
	u, err := p.store.CreateUser(ctx, c.Email, string(hash))
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s, err := p.open(ctx, u)
	if err != nil {
		return nil, err
	}
	p.log.Info("новый пользователь", zap.Int64("user_id", u.ID))
	p.emit(SignedUp, *s)
	return s, nil
}

func (p *Provider) SignIn(ctx context.Context, c Credentials) (*models.Session, error) {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Email == "" || c.Password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := p.store.GetUserByEmail(ctx, c.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(c.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	s, err := p.open(ctx, *u)
	if err != nil {
		return nil, err
	}
	p.emit(SignedIn, *s)
	return s, nil
}

func (p *Provider) open(ctx context.Context, u models.User) (*models.Session, error) {
	now := p.now().UTC()
	s := models.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		Email:     u.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}
	if err := p.store.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SignOut закрывает сессию. Неизвестный токен: ErrNoSession.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	s, err := p.lookup(ctx, token)
	if err != nil {
		return err
	}
	if err := p.store.DeleteSession(ctx, token); err != nil {
		return err
	}
	p.emit(SignedOut, *s)
	return nil
}

// Current возвращает живую сессию. Истёкшая удаляется и считается отсутствующей.
func (p *Provider) Current(ctx context.Context, token string) (*models.Session, error) {
	s, err := p.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.Expired(p.now()) {
		if err := p.store.DeleteSession(ctx, token); err != nil {
			p.log.Warn("не удалось удалить истёкшую сессию", zap.Error(err))
		}
		p.emit(Expired, *s)
		return nil, ErrNoSession
	}
	return s, nil
}

func (p *Provider) lookup(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	s, err := p.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return s, nil
}
