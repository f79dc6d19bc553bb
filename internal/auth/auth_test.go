package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Carsk101/acutea/internal/auth"
	"github.com/Carsk101/acutea/internal/testutil/memstore"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newProvider(t *testing.T) (*auth.Provider, *memstore.Store, *clock) {
	t.Helper()
	st := memstore.New()
	clk := &clock{t: time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)}
	p := auth.NewProvider(st, nil,
		auth.WithTTL(time.Hour),
		auth.WithClock(clk.now),
		auth.WithBcryptCost(bcrypt.MinCost),
	)
	return p, st, clk
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newProvider(t)

	var events []auth.Event
	unsubscribe := p.Subscribe(func(e auth.Event) { events = append(events, e) })

	s, err := p.SignUp(ctx, auth.Credentials{Email: " Teacher@Example.com ", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Email != "teacher@example.com" || s.Token == "" {
		t.Fatalf("неожиданная сессия: %+v", s)
	}

	t.Run("duplicate_email", func(t *testing.T) {
		_, err := p.SignUp(ctx, auth.Credentials{Email: "teacher@example.com", Password: "secret2"})
		if !errors.Is(err, auth.ErrEmailTaken) {
			t.Fatalf("ожидали ErrEmailTaken, получили %v", err)
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := p.SignIn(ctx, auth.Credentials{Email: "teacher@example.com", Password: "nope!!"})
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("ожидали ErrInvalidCredentials, получили %v", err)
		}
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := p.SignIn(ctx, auth.Credentials{Email: "ghost@example.com", Password: "secret1"})
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("ожидали ErrInvalidCredentials, получили %v", err)
		}
	})

	s2, err := p.SignIn(ctx, auth.Credentials{Email: "TEACHER@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if s2.UserID != s.UserID || s2.Token == s.Token {
		t.Fatalf("вход должен открыть новую сессию того же пользователя: %+v / %+v", s, s2)
	}

	unsubscribe()
	if _, err := p.SignIn(ctx, auth.Credentials{Email: "teacher@example.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].Kind != auth.SignedUp || events[1].Kind != auth.SignedIn {
		t.Fatalf("неожиданные события: %+v", events)
	}
}

func TestSignUpValidation(t *testing.T) {
	p, _, _ := newProvider(t)
	cases := []struct {
		name string
		cred auth.Credentials
	}{
		{"empty_email", auth.Credentials{Password: "secret1"}},
		{"bad_email", auth.Credentials{Email: "not-an-email", Password: "secret1"}},
		{"short_password", auth.Credentials{Email: "a@b.co", Password: "12345"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.SignUp(context.Background(), tc.cred)
			if !errors.Is(err, auth.ErrInvalidInput) {
				t.Fatalf("ожидали ErrInvalidInput, получили %v", err)
			}
		})
	}
}

func TestCurrentAndSignOut(t *testing.T) {
	ctx := context.Background()
	p, st, clk := newProvider(t)

	var kinds []auth.EventKind
	p.Subscribe(func(e auth.Event) { kinds = append(kinds, e.Kind) })

	s, err := p.SignUp(ctx, auth.Credentials{Email: "t@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Current(ctx, s.Token)
	if err != nil {
		t.Fatal(err)
	}
	if got.UserID != s.UserID {
		t.Fatalf("не та сессия: %+v", got)
	}

	if _, err := p.Current(ctx, ""); !errors.Is(err, auth.ErrNoSession) {
		t.Fatalf("пустой токен: ожидали ErrNoSession, получили %v", err)
	}

	t.Run("expired_session_removed", func(t *testing.T) {
		clk.t = clk.t.Add(2 * time.Hour)
		if _, err := p.Current(ctx, s.Token); !errors.Is(err, auth.ErrNoSession) {
			t.Fatalf("ожидали ErrNoSession, получили %v", err)
		}
		if st.SessionCount() != 0 {
			t.Fatalf("истёкшая сессия должна быть удалена")
		}
	})

	s2, err := p.SignIn(ctx, auth.Credentials{Email: "t@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SignOut(ctx, s2.Token); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Current(ctx, s2.Token); !errors.Is(err, auth.ErrNoSession) {
		t.Fatalf("после выхода ожидали ErrNoSession, получили %v", err)
	}
	if err := p.SignOut(ctx, s2.Token); !errors.Is(err, auth.ErrNoSession) {
		t.Fatalf("повторный выход: ожидали ErrNoSession, получили %v", err)
	}

	want := []auth.EventKind{auth.SignedUp, auth.Expired, auth.SignedIn, auth.SignedOut}
	if len(kinds) != len(want) {
		t.Fatalf("события: %v, ожидали %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("события: %v, ожидали %v", kinds, want)
		}
	}
}
