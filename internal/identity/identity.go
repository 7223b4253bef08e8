// Package identity authenticates users: account registration and login
// backed by the store, HS256 session tokens, and a change feed that
// observers subscribe to for sign-in and sign-out events.
package identity

import (
	"context"
	"net/mail"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	"quickcart/internal/store"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid session token")
)

// Identity is the authenticated-user view handed to the rest of the
// application. The stored Account never leaves this package.
type Identity struct {
	ID          string
	DisplayName string
	Email       string
}

// Source is the slice of the identity service the rest of the
// application depends on.
type Source interface {
	Current(ctx context.Context, token string) (Identity, error)
	Changes() (<-chan *Identity, func())
	SignOut(ctx context.Context) error
	DeleteIdentity(ctx context.Context, id string) error
}

// Account is the stored credential document. Email is unique.
type Account struct {
	ID          string             `bson:"_id,omitempty"`
	DisplayName string             `bson:"displayName"`
	Email       string             `bson:"email"`
	Password    []byte             `bson:"password"`
	CreatedAt   primitive.DateTime `bson:"createdAt"`
}

type logger interface {
	Debugf(format string, v ...any)
	Errorf(format string, v ...any)
}

type Service struct {
	Accounts      store.Collection[Account]
	AuthSecretKey jwk.Key
	Logger        logger

	mu      sync.Mutex
	subs    map[int]chan *Identity
	nextSub int
}

const tokenIssuer = "quickcart-app"

// Register creates an account and returns the identity with a fresh
// session token. The email must be well formed and not already taken.
func (s *Service) Register(ctx context.Context, displayName, email, password string) (Identity, string, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return Identity{}, "", errors.Wrapf(ErrInvalidCredentials, "invalid email: %s", email)
	}

	existing, err := s.Accounts.Find(ctx, store.Filter{store.Eq("email", email)})
	if err != nil {
		return Identity{}, "", errors.WithMessagef(err, "error finding Account with email: %s", email)
	}
	if len(existing) > 0 {
		return Identity{}, "", errors.Wrapf(ErrEmailTaken, "email: %s", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, "", errors.Wrap(err, "error generating bcrypt from password")
	}
	a := Account{
		DisplayName: displayName,
		Email:       email,
		Password:    hash,
		CreatedAt:   primitive.NewDateTimeFromTime(time.Now()),
	}
	id, err := s.Accounts.Insert(ctx, a)
	if err != nil {
		return Identity{}, "", errors.WithMessagef(err, "error inserting Account with email: %s", email)
	}

	ident := Identity{ID: id, DisplayName: displayName, Email: email}
	token, err := s.createSessionToken(id)
	if err != nil {
		return Identity{}, "", err
	}
	s.broadcast(&ident)
	s.Logger.Debugf("Register: Created Account with ID: %s, email: %s", id, email)
	return ident, token, nil
}

// Login verifies the credentials and returns the identity with a fresh
// session token. Unknown email and wrong password both report
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Identity, string, error) {
	accounts, err := s.Accounts.Find(ctx, store.Filter{store.Eq("email", email)})
	if err != nil {
		return Identity{}, "", errors.WithMessagef(err, "error finding Account with email: %s", email)
	}
	if len(accounts) == 0 {
		return Identity{}, "", errors.Wrapf(ErrInvalidCredentials, "no Account with email: %s", email)
	}
	a := accounts[0]
	if err = bcrypt.CompareHashAndPassword(a.Password, []byte(password)); err != nil {
		return Identity{}, "", errors.Wrapf(ErrInvalidCredentials, "password mismatch for Account with ID: %s", a.ID)
	}

	ident := Identity{ID: a.ID, DisplayName: a.DisplayName, Email: a.Email}
	token, err := s.createSessionToken(a.ID)
	if err != nil {
		return Identity{}, "", err
	}
	s.broadcast(&ident)
	return ident, token, nil
}

// Current resolves a session token to the identity it was issued for.
// Expired, malformed and mis-signed tokens all report ErrInvalidToken.
func (s *Service) Current(ctx context.Context, token string) (Identity, error) {
	t, err := jwt.Parse([]byte(token), jwt.WithKey(jwa.HS256, s.AuthSecretKey), jwt.WithValidate(true))
	if err != nil {
		return Identity{}, errors.Wrapf(ErrInvalidToken, "error parsing session token: %v", err)
	}
	if t.Issuer() != tokenIssuer {
		return Identity{}, errors.Wrapf(ErrInvalidToken, "unexpected issuer: %s", t.Issuer())
	}

	a, err := s.Accounts.Get(ctx, t.Subject())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Identity{}, errors.Wrapf(ErrInvalidToken, "no Account with ID: %s", t.Subject())
		}
		return Identity{}, errors.WithMessagef(err, "error finding Account with ID: %s", t.Subject())
	}
	return Identity{ID: a.ID, DisplayName: a.DisplayName, Email: a.Email}, nil
}

// SignOut notifies subscribers that no identity is current. Session
// tokens are stateless and are not revoked here; they lapse at
// expiration.
func (s *Service) SignOut(ctx context.Context) error {
	s.broadcast(nil)
	return nil
}

// DeleteIdentity removes the stored account. Outstanding tokens for it
// stop resolving immediately.
func (s *Service) DeleteIdentity(ctx context.Context, id string) error {
	if err := s.Accounts.Delete(ctx, id); err != nil {
		return errors.WithMessagef(err, "error deleting Account with ID: %s", id)
	}
	s.broadcast(nil)
	return nil
}

// Changes subscribes to sign-in and sign-out events: the channel
// receives the identity on sign-in and nil on sign-out. The returned
// function unsubscribes; calling it again is harmless. Subscribing
// again after unsubscribing starts a fresh feed.
func (s *Service) Changes() (<-chan *Identity, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = map[int]chan *Identity{}
	}
	key := s.nextSub
	s.nextSub++
	ch := make(chan *Identity, 8)
	s.subs[key] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, key)
			close(ch)
		})
	}
	return ch, unsubscribe
}

func (s *Service) broadcast(ident *Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ident:
		default:
			// A stalled subscriber misses the event rather than
			// blocking sign-in.
		}
	}
}

func (s *Service) createSessionToken(accountID string) (string, error) {
	t, err := jwt.NewBuilder().
		Subject(accountID).
		Issuer(tokenIssuer).
		Expiration(time.Now().AddDate(0, 0, 90)).
		Build()
	if err != nil {
		return "", errors.Wrapf(err, "error creating session token for Account with ID: %s", accountID)
	}
	signed, err := jwt.Sign(t, jwt.WithKey(jwa.HS256, s.AuthSecretKey))
	if err != nil {
		return "", errors.Wrapf(err, "error signing session token for Account with ID: %s", accountID)
	}
	return string(signed), nil
}
