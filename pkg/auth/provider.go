package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("account exists with that email")
)

// Identity is the stable handle the managed identity provider issues for a
// signed-in user.
type Identity struct {
	UID   string
	Email string
}

// Provider abstracts the managed identity service. The real implementation
// lives outside this module; memoryProvider below backs tests and local dev.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
	Current() (Identity, bool)
	// DeleteCurrent removes the signed-in user's identity-provider account
	// and ends the session. Used both for account deletion and for rolling
	// back a signup whose backend half failed.
	DeleteCurrent(ctx context.Context) error
	SignOut()
}

// SessionRestorer is implemented by providers that can adopt an identity
// obtained out of band. The CLI uses it to resume a session from a backend
// login in a process where the in-memory provider has no record of the user.
type SessionRestorer interface {
	Restore(ident Identity)
}

type memoryRecord struct {
	uid  string
	hash []byte
}

type memoryProvider struct {
	mu      sync.Mutex
	users   map[string]memoryRecord
	current *Identity
}

// NewMemoryProvider returns an in-process identity provider. UIDs are random
// UUIDs, passwords are bcrypt-hashed, and at most one session is active, which
// matches how the managed provider behaves on a device.
func NewMemoryProvider() Provider {
	return &memoryProvider{users: make(map[string]memoryRecord)}
}

func (p *memoryProvider) SignUp(_ context.Context, email, password string) (Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.users[email]; exists {
		return Identity{}, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, err
	}

	ident := Identity{UID: uuid.NewString(), Email: email}
	p.users[email] = memoryRecord{uid: ident.UID, hash: hash}
	p.current = &ident
	return ident, nil
}

func (p *memoryProvider) SignIn(_ context.Context, email, password string) (Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, ok := p.users[email]
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.hash, []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	ident := Identity{UID: rec.uid, Email: email}
	p.current = &ident
	return ident, nil
}

func (p *memoryProvider) Current() (Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Identity{}, false
	}
	return *p.current, true
}

func (p *memoryProvider) DeleteCurrent(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return ErrNotAuthenticated
	}
	delete(p.users, p.current.Email)
	p.current = nil
	return nil
}

// Restore adopts an identity issued elsewhere without requiring a local
// credential record.
func (p *memoryProvider) Restore(ident Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = &ident
}

func (p *memoryProvider) SignOut() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
}
